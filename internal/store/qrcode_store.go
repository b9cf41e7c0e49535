package store

import (
	"fmt"

	"boarbot/internal/domain"
)

// QRCodeFileSink writes QR challenge images to a fixed path, replacing the
// previous image on every call.
type QRCodeFileSink struct {
	path string
}

// NewQRCodeFileSink returns a sink writing to path.
func NewQRCodeFileSink(path string) *QRCodeFileSink {
	return &QRCodeFileSink{path: path}
}

// Path returns the image location shown to the operator.
func (s *QRCodeFileSink) Path() string { return s.path }

// WriteQRCode replaces the image file with image.
func (s *QRCodeFileSink) WriteQRCode(image []byte) error {
	if err := writeFile(s.path, image, 0o644); err != nil {
		return fmt.Errorf("write qrcode %s: %w", s.path, err)
	}
	return nil
}

// Compile-time assertion that QRCodeFileSink implements domain.QRCodeSink.
var _ domain.QRCodeSink = (*QRCodeFileSink)(nil)
