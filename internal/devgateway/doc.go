// Package devgateway implements an in-memory gateway that speaks the wire
// protocol, for local development and end-to-end tests.
//
// The QR flow follows a script of phases consumed one per poll; the last
// phase repeats once the script is exhausted. Polls carrying anything but
// the latest challenge signature are rejected. Tokens are bound to the
// device fingerprint they were issued to. Events handed to Publish, or
// POSTed as JSON to /inject, are pushed to every logged-in session.
package devgateway
