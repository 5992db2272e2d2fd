/*
Package relayhandler serves the connection relay's client config endpoint.

	POST /api/client-config/{local_user_id}

The request body carries the browser session's public key. The handler asks
an interfaces.ClientConfigProvider for the user's connection state sealed to
that key and returns it as {"encrypted": "..."}.

Status codes:
  - 200 OK: envelope sealed for the caller
  - 400 Bad Request: malformed body, empty user id or unusable public key
  - 502 Bad Gateway: the connection platform could not be reached or refused the request
  - 500 Internal Server Error: the stored connection could not be unlocked, or sealing failed

Error bodies are generic; details are only logged.

Client wraps the endpoint for tools and tests.
*/
package relayhandler
