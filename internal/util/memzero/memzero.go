// Package memzero wipes key material held in byte slices.
package memzero

// Zero clears every slice in bs. Nil and empty slices are skipped.
func Zero(bs ...[]byte) {
	for _, b := range bs {
		clear(b)
	}
}
