package services

import (
	"context"
	"errors"
	"strings"

	"github.com/aliasrafbd/hostel-management-server/apperror"
	"github.com/aliasrafbd/hostel-management-server/models"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"gorm.io/gorm"
)

// PaymentProvider creates payment intents and returns the client secret.
type PaymentProvider interface {
	CreatePaymentIntent(ctx context.Context, amount int64, currency string) (string, error)
}

type StripeProvider struct {
	sc *client.API
}

func NewStripeProvider(secretKey string) *StripeProvider {
	return &StripeProvider{sc: client.New(secretKey, nil)}
}

func (p *StripeProvider) CreatePaymentIntent(ctx context.Context, amount int64, currency string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	pi, err := p.sc.PaymentIntents.New(params)
	if err != nil {
		return "", err
	}
	return pi.ClientSecret, nil
}

// providerMessage extracts the human-readable provider message.
func providerMessage(err error) string {
	var se *stripe.Error
	if errors.As(err, &se) && se.Msg != "" {
		return se.Msg
	}
	return err.Error()
}

type PaymentService struct {
	db       *gorm.DB
	provider PaymentProvider
	currency string
	events   *EventBus
}

func NewPaymentService(db *gorm.DB, provider PaymentProvider, currency string, events *EventBus) *PaymentService {
	return &PaymentService{db: db, provider: provider, currency: strings.ToLower(currency), events: events}
}

const msgAmountRequired = "Amount is required in the request body."

// CreateIntent asks the provider for a payment intent of amount in the
// smallest currency unit. No idempotency key is sent.
func (s *PaymentService) CreateIntent(ctx context.Context, amount int64) (string, error) {
	if amount <= 0 {
		return "", apperror.Validation(msgAmountRequired)
	}
	if s.provider == nil {
		return "", apperror.Internal("payments are not configured", nil)
	}
	secret, err := s.provider.CreatePaymentIntent(ctx, amount, s.currency)
	if err != nil {
		return "", apperror.Upstream(providerMessage(err), err)
	}
	return secret, nil
}

type PaymentInput struct {
	UserEmail     string  `json:"userEmail"`
	PackageName   string  `json:"packageName"`
	Amount        float64 `json:"amount"`
	TransactionID string  `json:"transactionId"`
}

// Record appends a completed package payment.
func (s *PaymentService) Record(ctx context.Context, in PaymentInput) (*models.Payment, error) {
	if in.UserEmail == "" {
		return nil, apperror.Validation("userEmail is required")
	}
	p := models.Payment{
		UserEmail:     in.UserEmail,
		PackageName:   in.PackageName,
		Amount:        in.Amount,
		TransactionID: in.TransactionID,
	}
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return nil, wrapStore(err, "record payment")
	}
	s.events.Emit(ctx, Event{Kind: EventPaymentRecorded, UserEmail: p.UserEmail, Data: p})
	return &p, nil
}

func (s *PaymentService) ListByUser(ctx context.Context, email string) ([]models.Payment, error) {
	out := []models.Payment{}
	if err := s.db.WithContext(ctx).Where("user_email = ?", email).Order("id ASC").Find(&out).Error; err != nil {
		return nil, wrapStore(err, "list payments for %s", email)
	}
	return out, nil
}
