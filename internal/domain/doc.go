// Package domain defines core data models and interfaces shared across the app.
// It contains plain types (device, token, QR login state, events) and
// contracts (Connection, Module, stores) only.
package domain
