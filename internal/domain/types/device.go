package types

// Device is the persistent fingerprint that identifies this installation to
// the gateway. It is generated once and must stay byte-for-byte stable
// afterwards: the gateway associates sessions and tokens with it. The key
// pair names the device; it is not used to authenticate it.
type Device struct {
	GUID       string `json:"guid"`
	BootID     string `json:"boot_id"`
	AndroidID  string `json:"android_id"`
	IMEI       string `json:"imei"`
	IMSI       string `json:"imsi"`
	MACAddress string `json:"mac_address"`
	Brand      string `json:"brand"`
	Model      string `json:"model"`
	Product    string `json:"product"`
	OSVersion  string `json:"os_version"`
	Seed       []byte `json:"seed"`

	PublicKey  X25519Public  `json:"public_key"`
	PrivateKey X25519Private `json:"private_key"`
}
