/*
Command relay-server serves the connection relay API.

Configuration comes from flags, the environment, or a .env file in the
working directory:

	RELAY_PLATFORM_URL      base URL of the connection platform (required)
	RELAY_PLATFORM_TOKEN    bearer token for the platform
	RELAY_PRIVATE_KEY       relay private key, PEM or JWK
	RELAY_PRIVATE_KEY_FILE  file holding the relay private key
	RELAY_CIPHER            "jwe" (default) or "ecies"
	RELAY_LISTEN_ADDR       API listen address
	RELAY_METRICS_ADDR      Prometheus listen address

Example:

	relay-server --platform-url https://platform.example --private-key-file relay.pem --log-json
*/
package main
