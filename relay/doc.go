/*
Package relay implements the encryption boundary between a local application,
the remote identity platform and the end user's browser session.

For every call the relay:

 1. fetches the user's connection from the platform,
 2. unlocks it with the relay key if it exists, or requests a new connection
    invitation if it does not,
 3. wraps the result in a ConfigEnvelope tagged "connected" or "connect_request",
 4. serializes the envelope to JSON and seals it for the recipient's public key.

Nothing is cached between calls; each call re-resolves state with the platform.
Errors are not retried. Because underlying errors may carry platform details,
callers should log them and answer end users with a generic message.
*/
package relay
