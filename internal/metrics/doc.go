// Package metrics defines the Prometheus collectors exported by boarbot and a
// small HTTP server exposing them.
package metrics
