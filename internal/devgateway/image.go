package devgateway

import (
	"encoding/base64"

	qrcode "github.com/skip2/go-qrcode"
)

const qrImageSize = 256

// qrLoginURL is what the mobile app reads from the challenge image.
func qrLoginURL(sig []byte) string {
	return "boarbot://login/qrcode?sig=" + base64.RawURLEncoding.EncodeToString(sig)
}

// renderQRCode encodes the login URL for sig as a PNG QR code.
func renderQRCode(sig []byte) ([]byte, error) {
	return qrcode.Encode(qrLoginURL(sig), qrcode.Medium, qrImageSize)
}
