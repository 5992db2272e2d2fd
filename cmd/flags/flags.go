package flags

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ruteri/connection-relay/api"
	"github.com/ruteri/connection-relay/common"
	"github.com/urfave/cli/v2"
)

func SetupLogger(cCtx *cli.Context) (log *slog.Logger) {
	logJSON := cCtx.Bool(LogJsonFlag.Name)
	logDebug := cCtx.Bool(LogDebugFlag.Name)
	logUID := cCtx.Bool(LogUidFlag.Name)
	logService := cCtx.String(LogServiceFlag.Name)

	logger := common.SetupLogger(&common.LoggingOpts{
		Debug:   logDebug,
		JSON:    logJSON,
		Service: logService,
		Version: common.Version,
	})

	if logUID {
		id := uuid.Must(uuid.NewRandom())
		logger = logger.With("uid", id.String())
	}
	return logger
}

func ConfigureServer(cCtx *cli.Context, logger *slog.Logger) *api.HTTPServerConfig {
	drainDuration := time.Duration(cCtx.Int64(DrainSecondsFlag.Name)) * time.Second

	return &api.HTTPServerConfig{
		ListenAddr:               cCtx.String(ListenAddrFlag.Name),
		MetricsAddr:              cCtx.String(MetricsAddrFlag.Name),
		Log:                      logger,
		EnablePprof:              cCtx.Bool(PprofFlag.Name),
		DrainDuration:            drainDuration,
		GracefulShutdownDuration: 30 * time.Second,
		ReadTimeout:              60 * time.Second,
		WriteTimeout:             30 * time.Second,
	}
}

// RelayPrivateKey returns the relay key material from --private-key, or the
// contents of --private-key-file. Exactly one must be set.
func RelayPrivateKey(cCtx *cli.Context) (string, error) {
	inline := cCtx.String(PrivateKeyFlag.Name)
	file := cCtx.String(PrivateKeyFileFlag.Name)

	switch {
	case inline != "" && file != "":
		return "", fmt.Errorf("only one of --%s and --%s may be set", PrivateKeyFlag.Name, PrivateKeyFileFlag.Name)
	case inline != "":
		return inline, nil
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("could not read relay private key: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	default:
		return "", errors.New("relay private key is required")
	}
}

var ListenAddrFlag = &cli.StringFlag{
	Name:    "listen-addr",
	Value:   "127.0.0.1:8080",
	Usage:   "address to listen on for API",
	EnvVars: []string{"RELAY_LISTEN_ADDR"},
}

var PlatformURLFlag = &cli.StringFlag{
	Name:     "platform-url",
	Required: true,
	Usage:    "base URL of the connection platform",
	EnvVars:  []string{"RELAY_PLATFORM_URL"},
}

var PlatformTokenFlag = &cli.StringFlag{
	Name:    "platform-token",
	Usage:   "bearer token for the connection platform",
	EnvVars: []string{"RELAY_PLATFORM_TOKEN"},
}

var PrivateKeyFlag = &cli.StringFlag{
	Name:    "private-key",
	Usage:   "relay private key (PEM or JWK)",
	EnvVars: []string{"RELAY_PRIVATE_KEY"},
}

var PrivateKeyFileFlag = &cli.StringFlag{
	Name:    "private-key-file",
	Usage:   "file holding the relay private key",
	EnvVars: []string{"RELAY_PRIVATE_KEY_FILE"},
}

var CipherFlag = &cli.StringFlag{
	Name:    "cipher",
	Value:   "jwe",
	Usage:   "ciphertext format shared with the platform and browsers: 'jwe' or 'ecies'",
	EnvVars: []string{"RELAY_CIPHER"},
}

var PlatformTimeoutFlag = &cli.DurationFlag{
	Name:    "platform-timeout",
	Value:   10 * time.Second,
	Usage:   "timeout for each connection platform request",
	EnvVars: []string{"RELAY_PLATFORM_TIMEOUT"},
}

var LogJsonFlag = &cli.BoolFlag{
	Name:  "log-json",
	Value: false,
	Usage: "log in JSON format",
}
var LogDebugFlag = &cli.BoolFlag{
	Name:  "log-debug",
	Value: false,
	Usage: "log debug messages",
}
var LogUidFlag = &cli.BoolFlag{
	Name:  "log-uid",
	Value: false,
	Usage: "generate a uuid and add to all log messages",
}
var LogServiceFlag = &cli.StringFlag{
	Name:  "log-service",
	Value: "connection-relay",
	Usage: "add 'service' tag to logs",
}

var PprofFlag = &cli.BoolFlag{
	Name:  "pprof",
	Value: false,
	Usage: "enable pprof debug endpoint",
}
var DrainSecondsFlag = &cli.Int64Flag{
	Name:  "drain-seconds",
	Value: 45,
	Usage: "seconds to wait in drain HTTP request",
}
var MetricsAddrFlag = &cli.StringFlag{
	Name:    "metrics-addr",
	Value:   "127.0.0.1:8090",
	Usage:   "address to listen on for Prometheus metrics",
	EnvVars: []string{"RELAY_METRICS_ADDR"},
}

var LogFlags = []cli.Flag{
	LogJsonFlag,
	LogDebugFlag,
	LogUidFlag,
	LogServiceFlag,
}

var CommonFlags = append([]cli.Flag{
	PprofFlag,
	DrainSecondsFlag,
	MetricsAddrFlag,
}, LogFlags...)

var RelayFlags = []cli.Flag{
	ListenAddrFlag,
	PlatformURLFlag,
	PlatformTokenFlag,
	PrivateKeyFlag,
	PrivateKeyFileFlag,
	CipherFlag,
	PlatformTimeoutFlag,
}
