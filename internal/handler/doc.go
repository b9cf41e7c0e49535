// Package handler contains the modules registered with the dispatch engine
// by default.
package handler
