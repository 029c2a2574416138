package payment

import (
	"bytes"
	"testing"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/logger"
	"ms-restaurant/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G'}

func testOrder() models.Order {
	return models.Order{
		ID:            "order1",
		UserID:        "user1",
		Status:        models.OrderPending,
		PaymentMethod: models.PayQRCode,
		SumPrice:      22.75,
	}
}

func TestGenerateEncryptedQRProducesPNG(t *testing.T) {
	qr := NewQRGenerator("test-secret")

	png, err := qr.GenerateEncryptedQR(testOrder())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(png, pngHeader), "output should be a PNG")
}

func TestGenerateEncryptedQRUsesRandomIV(t *testing.T) {
	qr := NewQRGenerator("test-secret")
	o := testOrder()

	first, err := qr.GenerateEncryptedQR(o)
	require.NoError(t, err)
	second, err := qr.GenerateEncryptedQR(o)
	require.NoError(t, err)

	// Same order, different ciphertext: the IV is fresh per code.
	assert.NotEqual(t, first, second)
}

func TestCollectCashNeedsNothing(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_dummy")

	svc, err := NewService(logger.NewLogger())
	require.NoError(t, err)

	o := testOrder()
	o.PaymentMethod = models.PayCash

	result, err := svc.Collect(o)
	require.NoError(t, err)
	assert.Equal(t, models.PayCash, result.Method)
	assert.Empty(t, result.ClientSecret)
	assert.Empty(t, result.QRPNG)
}

func TestCollectQRCode(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_dummy")

	svc, err := NewService(logger.NewLogger())
	require.NoError(t, err)

	result, err := svc.Collect(testOrder())
	require.NoError(t, err)
	assert.Equal(t, models.PayQRCode, result.Method)
	assert.True(t, bytes.HasPrefix(result.QRPNG, pngHeader))
}

func TestCollectRejectsNonPendingOrders(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_dummy")

	svc, err := NewService(logger.NewLogger())
	require.NoError(t, err)

	for _, status := range []models.OrderStatus{
		models.OrderInProgress,
		models.OrderCompleted,
		models.OrderCancelled,
	} {
		o := testOrder()
		o.Status = status
		_, err := svc.Collect(o)
		assert.Equal(t, apperr.KindInvalidTransition, apperr.KindOf(err))
	}
}

func TestNewServiceRequiresStripeKey(t *testing.T) {
	t.Setenv("STRIPE_SECRET_KEY", "")

	_, err := NewService(logger.NewLogger())
	assert.ErrorIs(t, err, ErrStripeClientInitFailed)
}
