package login

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"boarbot/internal/domain"
)

func TestQRTransitions_CoverEveryPhase(t *testing.T) {
	want := map[domain.QRPhase]qrAction{
		domain.QRPhaseImageFetch:        qrAdopt,
		domain.QRPhaseWaitingForScan:    qrWait,
		domain.QRPhaseWaitingForConfirm: qrWait,
		domain.QRPhaseTimeout:           qrRefetch,
		domain.QRPhaseConfirmed:         qrLogin,
		domain.QRPhaseCanceled:          qrCancel,
	}
	assert.Equal(t, want, qrTransitions)
}
