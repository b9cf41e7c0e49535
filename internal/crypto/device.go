package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"boarbot/internal/domain"
)

const seedBytes = 32

type deviceModel struct {
	brand, model, product string
}

var deviceModels = []deviceModel{
	{brand: "Xiaomi", model: "MI 9", product: "cepheus"},
	{brand: "HUAWEI", model: "ELS-AN00", product: "ELS-AN00"},
	{brand: "OnePlus", model: "KB2000", product: "OnePlus8T"},
	{brand: "samsung", model: "SM-G9910", product: "o1qzcx"},
	{brand: "google", model: "Pixel 7", product: "panther"},
}

// GenerateDevice returns a new random device identity.
//
// The identity contains:
//   - a GUID and boot id (UUIDv4)
//   - IMEI (15 digits, valid Luhn check digit), IMSI, Android id, MAC address
//   - a random seed and an X25519 key pair used for the gateway handshake
func GenerateDevice() (domain.Device, error) {
	seed := make([]byte, seedBytes)
	if _, err := rand.Read(seed); err != nil {
		return domain.Device{}, fmt.Errorf("device seed: %w", err)
	}
	priv, pub, err := GenerateX25519()
	if err != nil {
		return domain.Device{}, fmt.Errorf("device key: %w", err)
	}

	imei, err := randomDigits(14)
	if err != nil {
		return domain.Device{}, err
	}
	imei += strconv.Itoa(int(luhnDigit(imei)))

	msin, err := randomDigits(10)
	if err != nil {
		return domain.Device{}, err
	}

	mac := make([]byte, 6)
	if _, err := rand.Read(mac); err != nil {
		return domain.Device{}, err
	}
	// Locally administered, unicast.
	mac[0] = (mac[0] | 0x02) &^ 0x01

	idx, err := rand.Int(rand.Reader, big.NewInt(int64(len(deviceModels))))
	if err != nil {
		return domain.Device{}, err
	}
	m := deviceModels[idx.Int64()]

	return domain.Device{
		GUID:       uuid.NewString(),
		BootID:     uuid.NewString(),
		AndroidID:  hex.EncodeToString(seed[:8]),
		IMEI:       imei,
		IMSI:       "46001" + msin,
		MACAddress: formatMAC(mac),
		Brand:      m.brand,
		Model:      m.model,
		Product:    m.product,
		OSVersion:  "13",
		Seed:       seed,
		PublicKey:  pub,
		PrivateKey: priv,
	}, nil
}

func randomDigits(n int) (string, error) {
	var b strings.Builder
	b.Grow(n)
	ten := big.NewInt(10)
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		b.WriteByte(byte('0' + d.Int64()))
	}
	return b.String(), nil
}

// luhnDigit returns the check digit that makes digits+check Luhn-valid.
func luhnDigit(digits string) byte {
	sum := 0
	double := true
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return byte((10 - sum%10) % 10)
}

func formatMAC(b []byte) string {
	parts := make([]string, len(b))
	for i, x := range b {
		parts[i] = fmt.Sprintf("%02X", x)
	}
	return strings.Join(parts, ":")
}
