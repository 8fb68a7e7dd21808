package banktransfer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	bankdomain "github.com/foodcourtlabs/foodcourt/internal/bank/domain"
	paymentdomain "github.com/foodcourtlabs/foodcourt/internal/payment/domain"
	"github.com/foodcourtlabs/foodcourt/pkg/validate"
)

type bankRepoMock struct {
	mock.Mock
}

func (m *bankRepoMock) Insert(ctx context.Context, db *gorm.DB, bank *bankdomain.BankConfig) error {
	args := m.Called(ctx, db, bank)
	return args.Error(0)
}

func (m *bankRepoMock) ListActive(ctx context.Context, db *gorm.DB) ([]bankdomain.BankConfig, error) {
	args := m.Called(ctx, db)
	return args.Get(0).([]bankdomain.BankConfig), args.Error(1)
}

func (m *bankRepoMock) IsSupported(ctx context.Context, db *gorm.DB, bankName string) (bool, error) {
	args := m.Called(ctx, db, bankName)
	return args.Bool(0), args.Error(1)
}

func validDetails() paymentdomain.PaymentDetails {
	return paymentdomain.PaymentDetails{
		Phone:      "04141234567",
		NationalID: "12345678",
		BankName:   "Banesco",
		Reference:  "REF123456",
	}
}

func TestValidateRejectsMalformedDetails(t *testing.T) {
	banks := new(bankRepoMock)
	banks.On("IsSupported", mock.Anything, mock.Anything, mock.Anything).Return(true, nil).Maybe()
	adapter := New(banks, 0, 1.0)
	ctx := context.Background()

	cases := []struct {
		name   string
		mutate func(*paymentdomain.PaymentDetails)
		field  string
	}{
		{"short phone", func(d *paymentdomain.PaymentDetails) { d.Phone = "123" }, "phone"},
		{"unknown carrier prefix", func(d *paymentdomain.PaymentDetails) { d.Phone = "04001234567" }, "phone"},
		{"short national id", func(d *paymentdomain.PaymentDetails) { d.NationalID = "123" }, "national_id"},
		{"short reference", func(d *paymentdomain.PaymentDetails) { d.Reference = "ab1" }, "reference"},
		{"missing bank", func(d *paymentdomain.PaymentDetails) { d.BankName = "" }, "bank_name"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			details := validDetails()
			tc.mutate(&details)
			err := adapter.Validate(ctx, details)
			require.Error(t, err)
			var fields validate.FieldErrors
			require.ErrorAs(t, err, &fields)
			assert.Contains(t, fields, tc.field)
		})
	}
}

func TestValidateUnsupportedBank(t *testing.T) {
	banks := new(bankRepoMock)
	banks.On("IsSupported", mock.Anything, mock.Anything, "Banco Imaginario").Return(false, nil)
	adapter := New(banks, 0, 1.0)

	details := validDetails()
	details.BankName = "Banco Imaginario"
	err := adapter.Validate(context.Background(), details)
	require.Error(t, err)
	var fields validate.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "bank_name")
	banks.AssertExpectations(t)
}

func TestValidateAcceptsAllCarrierPrefixes(t *testing.T) {
	banks := new(bankRepoMock)
	banks.On("IsSupported", mock.Anything, mock.Anything, "Banesco").Return(true, nil)
	adapter := New(banks, 0, 1.0)

	for _, prefix := range []string{"0412", "0414", "0416", "0424", "0426"} {
		details := validDetails()
		details.Phone = prefix + "1234567"
		assert.NoError(t, adapter.Validate(context.Background(), details), prefix)
	}
}

func TestAuthorizeNeverSettlesSynchronously(t *testing.T) {
	banks := new(bankRepoMock)
	adapter := New(banks, 0, 1.0)

	result, err := adapter.Authorize(context.Background(), paymentdomain.AuthorizeRequest{
		Amount:   5000,
		Currency: "VES",
		Details:  validDetails(),
	})
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.OutcomePendingVerification, result.Outcome)
	assert.NotEmpty(t, result.ProviderReference)
}

func TestAuthorizeDecline(t *testing.T) {
	banks := new(bankRepoMock)
	adapter := New(banks, 0, 0.0)

	result, err := adapter.Authorize(context.Background(), paymentdomain.AuthorizeRequest{Details: validDetails()})
	require.NoError(t, err)
	assert.Equal(t, paymentdomain.OutcomeDeclined, result.Outcome)
	assert.Equal(t, "transfer could not be confirmed with the bank", result.FailureReason)
}

func TestAuthorizeRespectsContext(t *testing.T) {
	banks := new(bankRepoMock)
	adapter := New(banks, 5*time.Second, 1.0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := adapter.Authorize(ctx, paymentdomain.AuthorizeRequest{Details: validDetails()})
	assert.ErrorIs(t, err, context.Canceled)
}
