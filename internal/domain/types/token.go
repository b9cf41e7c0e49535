package types

// SessionToken is the reusable credential exported by the gateway after a
// completed login. It is only valid together with the Device it was issued
// under, recorded in Device.
type SessionToken struct {
	Account     UIN         `json:"account"`
	Device      Fingerprint `json:"device"`
	AccessToken []byte      `json:"access_token"`
	SessionKey  []byte      `json:"session_key"`
	IssuedAt    int64       `json:"issued_at"`
}
