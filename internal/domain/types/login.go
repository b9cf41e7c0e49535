package types

// LoginResultKind classifies the gateway's answer to a login request.
type LoginResultKind string

const (
	LoginSuccess LoginResultKind = "success"
	// LoginDeviceLockLogin asks the client for one extra device-lock login
	// round-trip before the session is authenticated.
	LoginDeviceLockLogin LoginResultKind = "device_lock_login"
	// LoginDeviceLocked requires out-of-band verification (SMS or URL).
	LoginDeviceLocked  LoginResultKind = "device_locked"
	LoginNeedCaptcha   LoginResultKind = "need_captcha"
	LoginAccountFrozen LoginResultKind = "account_frozen"
	LoginUnknown       LoginResultKind = "unknown"
)

// LoginResult is returned by the QR, device-lock and token login primitives.
type LoginResult struct {
	Kind    LoginResultKind `json:"kind"`
	Account UIN             `json:"account,omitempty"`
	Message string          `json:"message,omitempty"`
	// VerifyURL is set when Kind is LoginDeviceLocked.
	VerifyURL string `json:"verify_url,omitempty"`
}
