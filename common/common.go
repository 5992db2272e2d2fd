// Package common holds process-wide helpers shared by the relay binaries.
package common

// Version is set at build time via -ldflags.
var Version = "dev"
