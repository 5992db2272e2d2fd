// Package platform implements the client side of the remote identity
// platform's connection API.
//
// Two operations are consumed:
//
//	GET  <base>/api/apps/connection/<localUserId>  existing connection, 404 if none
//	POST <base>/api/apps/connection/<localUserId>  new connection invitation
//
// Every request carries Accept: application/json and the configured bearer
// token (see BearerTransport). Non-2xx responses surface as *StatusError.
package platform
