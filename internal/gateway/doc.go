// Package gateway provides a websocket implementation of the
// domain.Connection interface.
//
// A Client dials the gateway, negotiates the wire codec as a websocket
// subprotocol and binds the session to the local device with a hello
// handshake. The hello names the device by public key and fingerprint; it
// identifies the device but proves nothing about key possession.
//
// Requests are correlated with responses by a ULID request id. A single read
// loop routes responses and appends pushed events to an unbounded queue, so a
// slow Events() consumer never holds up responses. A second goroutine drains
// the queue onto Events() in arrival order. A keepalive loop pings the gateway and closes the client after
// repeated failures.
//
// Gateway error envelopes are returned as *wire.RemoteError. Once the
// connection ends every pending and later request fails with ErrClosed.
package gateway
