/*
Package httpserver runs the connection relay's HTTP API.

It mounts the client config endpoint from relayhandler alongside the
operational endpoints, and runs the Prometheus metrics server on a separate
address.

# Endpoints

  - POST /api/client-config/{local_user_id} - Sealed client config for a browser session
  - GET /livez - Liveness check
  - GET /readyz - Readiness check
  - GET /drain - Mark server as not ready
  - GET /undrain - Mark server as ready
  - /debug/* - pprof, when enabled

Every request is logged through httplogger.
*/
package httpserver
