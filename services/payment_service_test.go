package services

import (
	"context"
	"errors"
	"testing"

	"github.com/aliasrafbd/hostel-management-server/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

type mockProvider struct {
	mock.Mock
}

func (m *mockProvider) CreatePaymentIntent(ctx context.Context, amount int64, currency string) (string, error) {
	args := m.Called(ctx, amount, currency)
	return args.String(0), args.Error(1)
}

func TestPaymentService_CreateIntent(t *testing.T) {
	provider := &mockProvider{}
	svc := NewPaymentService(newTestDB(t), provider, "USD", nil)

	provider.On("CreatePaymentIntent", mock.Anything, int64(2500), "usd").Return("pi_123_secret_abc", nil).Once()

	secret, err := svc.CreateIntent(context.Background(), 2500)
	require.NoError(t, err)
	assert.Equal(t, "pi_123_secret_abc", secret)
	provider.AssertExpectations(t)
}

func TestPaymentService_CreateIntentRejectsEmptyAmount(t *testing.T) {
	provider := &mockProvider{}
	svc := NewPaymentService(newTestDB(t), provider, "usd", nil)

	for _, amount := range []int64{0, -5} {
		_, err := svc.CreateIntent(context.Background(), amount)
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
		assert.Equal(t, msgAmountRequired, apperror.As(err).Message)
	}
	provider.AssertNotCalled(t, "CreatePaymentIntent", mock.Anything, mock.Anything, mock.Anything)
}

func TestPaymentService_ProviderFailureSurfacesMessage(t *testing.T) {
	provider := &mockProvider{}
	svc := NewPaymentService(newTestDB(t), provider, "usd", nil)

	stripeErr := &stripe.Error{Msg: "Amount must be at least $0.50 usd", HTTPStatusCode: 400}
	provider.On("CreatePaymentIntent", mock.Anything, int64(10), "usd").Return("", stripeErr).Once()
	provider.On("CreatePaymentIntent", mock.Anything, int64(20), "usd").Return("", errors.New("connection reset")).Once()

	_, err := svc.CreateIntent(context.Background(), 10)
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindUpstream))
	assert.Equal(t, "Amount must be at least $0.50 usd", apperror.As(err).Message)
	assert.ErrorIs(t, err, stripeErr)

	_, err = svc.CreateIntent(context.Background(), 20)
	assert.Equal(t, "connection reset", apperror.As(err).Message)
}

func TestPaymentService_Unconfigured(t *testing.T) {
	svc := NewPaymentService(newTestDB(t), nil, "usd", nil)

	_, err := svc.CreateIntent(context.Background(), 100)
	assert.True(t, apperror.IsKind(err, apperror.KindInternal))
}

func TestPaymentService_RecordAndList(t *testing.T) {
	rec := &recordingPublisher{}
	svc := NewPaymentService(newTestDB(t), nil, "usd", NewEventBus(nil, rec))
	ctx := context.Background()

	_, err := svc.Record(ctx, PaymentInput{PackageName: "gold"})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	p, err := svc.Record(ctx, PaymentInput{UserEmail: "p@x.test", PackageName: "gold", Amount: 49.99, TransactionID: "pi_1"})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	_, err = svc.Record(ctx, PaymentInput{UserEmail: "other@x.test", PackageName: "silver", Amount: 19.99})
	require.NoError(t, err)

	mine, err := svc.ListByUser(ctx, "p@x.test")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "pi_1", mine[0].TransactionID)

	none, err := svc.ListByUser(ctx, "ghost@x.test")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	assert.Equal(t, []string{EventPaymentRecorded, EventPaymentRecorded}, rec.kinds())
}
