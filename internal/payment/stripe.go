package payment

import (
	"errors"
	"fmt"
	"math"
	"os"

	"ms-restaurant/internal/apperr"
	"ms-restaurant/internal/logger"
	"ms-restaurant/internal/models"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
)

var ErrStripeClientInitFailed = errors.New("failed to initialize Stripe client")

// Service starts payment collection for placed orders. CREDIT_CARD goes
// through stripe, QRCODE produces an encrypted QR payload, CASH settles at
// the counter and needs nothing here.
type Service struct {
	stripe *client.API
	qr     *QRGenerator
	log    *logger.Logger
}

func NewService(log *logger.Logger) (*Service, error) {
	stripeKey := os.Getenv("STRIPE_SECRET_KEY")
	if stripeKey == "" {
		log.Error("STRIPE", "STRIPE_SECRET_KEY environment variable not set")
		return nil, ErrStripeClientInitFailed
	}
	sc := client.New(stripeKey, nil)

	qrSecret := os.Getenv("PAYMENT_QR_SECRET")
	if qrSecret == "" {
		qrSecret = "dev-payment-qr-secret"
	}

	return &Service{
		stripe: sc,
		qr:     NewQRGenerator(qrSecret),
		log:    log,
	}, nil
}

type Result struct {
	Method models.PaymentMethod `json:"method"`
	// ClientSecret is set for CREDIT_CARD (stripe payment intent).
	ClientSecret string `json:"client_secret,omitempty"`
	// QRPNG is a base64 PNG for QRCODE payments.
	QRPNG []byte `json:"qr_png,omitempty"`
}

// Collect initiates payment for a pending order.
func (s *Service) Collect(order models.Order) (*Result, error) {
	if order.Status != models.OrderPending {
		return nil, apperr.InvalidTransition(fmt.Sprintf("order %s is %s; payment can only start while pending", order.ID, order.Status))
	}

	switch order.PaymentMethod {
	case models.PayCash:
		return &Result{Method: models.PayCash}, nil
	case models.PayCreditCard:
		intent, err := s.createPaymentIntent(order)
		if err != nil {
			return nil, err
		}
		return &Result{Method: models.PayCreditCard, ClientSecret: intent.ClientSecret}, nil
	case models.PayQRCode:
		png, err := s.qr.GenerateEncryptedQR(order)
		if err != nil {
			return nil, apperr.Internal("generate payment QR", err)
		}
		return &Result{Method: models.PayQRCode, QRPNG: png}, nil
	default:
		return nil, apperr.InvalidArgument(fmt.Sprintf("unknown payment method %q", order.PaymentMethod))
	}
}

// amountInCents converts a dollar total to stripe's cent unit. Rounded, not
// truncated: 19.10 is not exactly representable and would otherwise land on
// 1909.
func amountInCents(sum float64) int64 {
	return int64(math.Round(sum * 100))
}

func (s *Service) createPaymentIntent(order models.Order) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountInCents(order.SumPrice)),
		Currency: stripe.String("usd"),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("order_id", order.ID)

	intent, err := s.stripe.PaymentIntents.New(params)
	if err != nil {
		s.log.Error("STRIPE", fmt.Sprintf("Failed to create payment intent for order %s: %v", order.ID, err))
		return nil, apperr.Internal("create stripe payment intent", err)
	}

	s.log.Info("STRIPE", fmt.Sprintf("Created payment intent %s for order %s (%.2f)", intent.ID, order.ID, order.SumPrice))
	return intent, nil
}
