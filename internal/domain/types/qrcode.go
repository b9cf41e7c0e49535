package types

// QRPhase is the state reported by the gateway for an interactive QR login.
type QRPhase string

const (
	QRPhaseImageFetch        QRPhase = "image_fetch"
	QRPhaseWaitingForScan    QRPhase = "waiting_for_scan"
	QRPhaseWaitingForConfirm QRPhase = "waiting_for_confirm"
	QRPhaseTimeout           QRPhase = "timeout"
	QRPhaseConfirmed         QRPhase = "confirmed"
	QRPhaseCanceled          QRPhase = "canceled"
)

// String returns the wire form of the phase.
func (p QRPhase) String() string { return string(p) }

// QRChallenge is one fetched QR code: the image shown to the operator and the
// signature that correlates polls with this challenge.
type QRChallenge struct {
	Image []byte `json:"image"`
	Sig   []byte `json:"sig"`
}

// QRConfirmed carries the one-time secrets released once the operator has
// confirmed the login on their phone.
type QRConfirmed struct {
	Account      UIN    `json:"account"`
	TempPassword []byte `json:"temp_password"`
	NoPicSig     []byte `json:"no_pic_sig"`
	TGTQR        []byte `json:"tgt_qr"`
}

// QRState is the result of a QR fetch or poll. Challenge is set for
// QRPhaseImageFetch and Confirmed for QRPhaseConfirmed.
type QRState struct {
	Phase     QRPhase      `json:"phase"`
	Challenge *QRChallenge `json:"challenge,omitempty"`
	Confirmed *QRConfirmed `json:"confirmed,omitempty"`
}
