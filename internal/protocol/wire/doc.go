// Package wire defines the versioned envelope exchanged with the gateway over
// a websocket, the payload carried by each message type, and the two codecs
// (JSON and deterministic CBOR) negotiated as websocket subprotocols.
//
// Every request carries a client-chosen id; the gateway answers with exactly
// one envelope bearing the same id, either the matching response type or
// TypeError. Envelopes of TypeEvent are pushed by the gateway unprompted.
package wire
