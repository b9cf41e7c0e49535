// Package login turns a freshly dialed gateway connection into an
// authenticated session.
//
// A stored session token is tried first. Without one, the service runs the
// interactive QR login: it fetches a challenge, writes the image for the
// operator, and polls the gateway at a fixed interval. The reaction to every
// phase the gateway can report lives in one transition table (qrTransitions):
// waiting phases poll again, Timeout fetches a replacement challenge,
// Confirmed completes the login (with at most one device-lock follow-up) and
// Canceled aborts.
//
// Every failure is returned to the caller and is meant to be fatal for the
// process; the only automatic renewal is the Timeout refetch. After a
// successful login the service finalizes the session and persists a freshly
// exported token.
package login
