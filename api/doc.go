/*
Package api holds the wire types and server configuration shared by the
connection relay's HTTP surface.

Subpackages:

 1. platform - client for the third-party connection platform
 2. relayhandler - HTTP handler and client for the client config endpoint

The client config endpoint accepts a browser session's public key and returns
the user's connection state encrypted for that key:

	POST /api/client-config/{local_user_id}
	{"publicKey": "<PEM, JWK or base64url key>"}

	200 OK
	{"encrypted": "<ciphertext>"}
*/
package api
