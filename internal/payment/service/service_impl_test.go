package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	bankdomain "github.com/foodcourtlabs/foodcourt/internal/bank/domain"
	bankrepo "github.com/foodcourtlabs/foodcourt/internal/bank/repository"
	"github.com/foodcourtlabs/foodcourt/internal/clock"
	customerdomain "github.com/foodcourtlabs/foodcourt/internal/customer/domain"
	"github.com/foodcourtlabs/foodcourt/internal/migration"
	orderdomain "github.com/foodcourtlabs/foodcourt/internal/order/domain"
	orderrepo "github.com/foodcourtlabs/foodcourt/internal/order/repository"
	"github.com/foodcourtlabs/foodcourt/internal/payment/adapters"
	"github.com/foodcourtlabs/foodcourt/internal/payment/adapters/banktransfer"
	"github.com/foodcourtlabs/foodcourt/internal/payment/adapters/simcard"
	"github.com/foodcourtlabs/foodcourt/internal/payment/domain"
	paymentrepo "github.com/foodcourtlabs/foodcourt/internal/payment/repository"
	"github.com/foodcourtlabs/foodcourt/pkg/validate"
)

// intentAdapter stands in for the card-network adapter: authorization only
// opens a provider intent, settlement arrives later.
type intentAdapter struct {
	result domain.AuthorizeResult
	err    error
}

func (a *intentAdapter) Method() domain.Method { return domain.MethodCardNetwork }

func (a *intentAdapter) Validate(ctx context.Context, details domain.PaymentDetails) error {
	return nil
}

func (a *intentAdapter) Authorize(ctx context.Context, req domain.AuthorizeRequest) (*domain.AuthorizeResult, error) {
	if a.err != nil {
		return nil, a.err
	}
	result := a.result
	return &result, nil
}

type fixture struct {
	db    *gorm.DB
	node  *snowflake.Node
	order *orderdomain.Order
}

func setup(t *testing.T, list ...domain.Adapter) (domain.Service, *fixture) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, migration.AutoMigrate(gdb))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	customer := &customerdomain.Customer{
		ID:        node.Generate(),
		Email:     "maria@example.com",
		Name:      "Maria Perez",
		Phone:     "04121234567",
		CreatedAt: now,
		UpdatedAt: now,
	}
	require.NoError(t, gdb.Create(customer).Error)

	order := &orderdomain.Order{
		ID:              node.Generate(),
		CustomerID:      customer.ID,
		TotalCents:      1250,
		Currency:        "USD",
		Status:          orderdomain.StatusPending,
		Items:           datatypes.JSON(`[{"id":"arepa-reina","quantity":2}]`),
		DeliveryAddress: "Av. Libertador, Caracas",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	require.NoError(t, gdb.Create(order).Error)

	svc := New(Params{
		DB:        gdb,
		Log:       zap.NewNop(),
		Clock:     clock.NewFake(now),
		GenID:     node,
		Registry:  adapters.NewRegistry(list...),
		Repo:      paymentrepo.Provide(gdb),
		OrderRepo: orderrepo.Provide(gdb),
	})
	return svc, &fixture{db: gdb, node: node, order: order}
}

func seedBank(t *testing.T, f *fixture, name string) {
	t.Helper()
	require.NoError(t, f.db.Create(&bankdomain.BankConfig{
		ID:               f.node.Generate(),
		BankName:         name,
		Code:             "0134",
		SupportedMethods: datatypes.JSON(`["bank_transfer"]`),
		IsActive:         true,
		CreatedAt:        time.Now().UTC(),
		UpdatedAt:        time.Now().UTC(),
	}).Error)
}

func orderStatus(t *testing.T, f *fixture) orderdomain.Status {
	t.Helper()
	var order orderdomain.Order
	require.NoError(t, f.db.First(&order, "id = ?", f.order.ID).Error)
	return order.Status
}

func cardDetails() domain.PaymentDetails {
	return domain.PaymentDetails{
		CardNumber: "4111111111111111",
		ExpMonth:   12,
		ExpYear:    time.Now().UTC().Year() + 1,
		CVC:        "123",
	}
}

func transferDetails() domain.PaymentDetails {
	return domain.PaymentDetails{
		Phone:      "04141234567",
		NationalID: "12345678",
		BankName:   "Banesco",
		Reference:  "REF123456",
	}
}

func TestSubmitPaymentCardNetwork(t *testing.T) {
	svc, f := setup(t, &intentAdapter{result: domain.AuthorizeResult{
		Outcome:          domain.OutcomePending,
		ProviderIntentID: "pi_123",
		ClientSecret:     "pi_123_secret",
	}})

	txn, err := svc.SubmitPayment(context.Background(), domain.SubmitPaymentRequest{
		OrderID: f.order.ID,
		Method:  domain.MethodCardNetwork,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, txn.Status)
	assert.Equal(t, "pi_123", txn.ProviderIntentID)
	assert.Equal(t, "pi_123_secret", txn.ClientSecret)
	assert.Equal(t, int64(1250), txn.AmountCents)
	assert.Equal(t, "USD", txn.Currency)

	// the order only advances once the webhook settles the intent
	assert.Equal(t, orderdomain.StatusPending, orderStatus(t, f))
}

func TestSubmitPaymentCardNetworkProviderDown(t *testing.T) {
	svc, f := setup(t, &intentAdapter{err: fmt.Errorf("connection refused")})

	_, err := svc.SubmitPayment(context.Background(), domain.SubmitPaymentRequest{
		OrderID: f.order.ID,
		Method:  domain.MethodCardNetwork,
	})
	require.Error(t, err)

	// adapter failure rolls back the pending row
	var count int64
	require.NoError(t, f.db.Table("transactions").Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubmitPaymentSimulatedCardApproved(t *testing.T) {
	svc, f := setup(t, simcard.New(0, 1.0))

	txn, err := svc.SubmitPayment(context.Background(), domain.SubmitPaymentRequest{
		OrderID: f.order.ID,
		Method:  domain.MethodSimulatedCard,
		Details: cardDetails(),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusAuthorized, txn.Status)
	assert.NotEmpty(t, txn.AuthorizationCode)
	assert.Equal(t, orderdomain.StatusConfirmed, orderStatus(t, f))
}

func TestSubmitPaymentSimulatedCardDeclined(t *testing.T) {
	svc, f := setup(t, simcard.New(0, 0.0))

	txn, err := svc.SubmitPayment(context.Background(), domain.SubmitPaymentRequest{
		OrderID: f.order.ID,
		Method:  domain.MethodSimulatedCard,
		Details: cardDetails(),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusFailed, txn.Status)
	assert.Equal(t, "card declined", txn.FailureReason)
	// a decline keeps the order open for another attempt
	assert.Equal(t, orderdomain.StatusPending, orderStatus(t, f))
}

func TestSubmitPaymentKnownBadCard(t *testing.T) {
	svc, f := setup(t, simcard.New(0, 1.0))

	details := cardDetails()
	details.CardNumber = "4000000000009995"
	txn, err := svc.SubmitPayment(context.Background(), domain.SubmitPaymentRequest{
		OrderID: f.order.ID,
		Method:  domain.MethodSimulatedCard,
		Details: details,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, txn.Status)
	assert.Equal(t, "insufficient funds", txn.FailureReason)
}

func TestSubmitPaymentValidationWritesNothing(t *testing.T) {
	svc, f := setup(t, simcard.New(0, 1.0))

	details := cardDetails()
	details.CardNumber = "12"
	_, err := svc.SubmitPayment(context.Background(), domain.SubmitPaymentRequest{
		OrderID: f.order.ID,
		Method:  domain.MethodSimulatedCard,
		Details: details,
	})
	require.Error(t, err)
	var fields validate.FieldErrors
	require.ErrorAs(t, err, &fields)

	var count int64
	require.NoError(t, f.db.Table("transactions").Count(&count).Error)
	assert.Zero(t, count)
}

func TestSubmitPaymentUnknownMethod(t *testing.T) {
	svc, f := setup(t, simcard.New(0, 1.0))

	_, err := svc.SubmitPayment(context.Background(), domain.SubmitPaymentRequest{
		OrderID: f.order.ID,
		Method:  domain.Method("crypto"),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidMethod)
}

func TestSubmitPaymentClosedOrder(t *testing.T) {
	svc, f := setup(t, simcard.New(0, 1.0))
	require.NoError(t, f.db.Model(&orderdomain.Order{}).
		Where("id = ?", f.order.ID).
		Update("status", orderdomain.StatusCancelled).Error)

	_, err := svc.SubmitPayment(context.Background(), domain.SubmitPaymentRequest{
		OrderID: f.order.ID,
		Method:  domain.MethodSimulatedCard,
		Details: cardDetails(),
	})
	assert.ErrorIs(t, err, domain.ErrOrderClosed)
}

func TestSubmitPaymentBankTransfer(t *testing.T) {
	svc, f := setupTransfer(t, 1.0)
	seedBank(t, f, "Banesco")

	txn, err := svc.SubmitPayment(context.Background(), domain.SubmitPaymentRequest{
		OrderID: f.order.ID,
		Method:  domain.MethodBankTransfer,
		Details: transferDetails(),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPendingVerification, txn.Status)
	assert.Equal(t, domain.VerificationPending, txn.VerificationStatus)
	assert.Equal(t, "Banesco", txn.BankName)
	assert.NotEmpty(t, txn.ProviderReference)
	assert.Equal(t, orderdomain.StatusPending, orderStatus(t, f))
}

// setupTransfer rebuilds the service with a real transfer adapter wired to the
// fixture DB, since the adapter checks the bank against the configured list.
func setupTransfer(t *testing.T, successRate float64) (domain.Service, *fixture) {
	t.Helper()
	_, f := setup(t)
	adapter := banktransfer.New(bankrepo.Provide(f.db), 0, successRate)

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	return New(Params{
		DB:        f.db,
		Log:       zap.NewNop(),
		Clock:     clock.NewFake(now),
		GenID:     f.node,
		Registry:  adapters.NewRegistry(adapter),
		Repo:      paymentrepo.Provide(f.db),
		OrderRepo: orderrepo.Provide(f.db),
	}), f
}

func TestSubmitPaymentBankTransferUnsupportedBank(t *testing.T) {
	svc, f := setupTransfer(t, 1.0)
	seedBank(t, f, "Banesco")

	details := transferDetails()
	details.BankName = "Banco Imaginario"
	_, err := svc.SubmitPayment(context.Background(), domain.SubmitPaymentRequest{
		OrderID: f.order.ID,
		Method:  domain.MethodBankTransfer,
		Details: details,
	})
	require.Error(t, err)
	var fields validate.FieldErrors
	require.ErrorAs(t, err, &fields)
	assert.Contains(t, fields, "bank_name")
}

func submitTransfer(t *testing.T, svc domain.Service, f *fixture) *domain.Transaction {
	t.Helper()
	txn, err := svc.SubmitPayment(context.Background(), domain.SubmitPaymentRequest{
		OrderID: f.order.ID,
		Method:  domain.MethodBankTransfer,
		Details: transferDetails(),
	})
	require.NoError(t, err)
	require.Equal(t, domain.StatusPendingVerification, txn.Status)
	return txn
}

func TestVerifyTransferVerified(t *testing.T) {
	svc, f := setupTransfer(t, 1.0)
	seedBank(t, f, "Banesco")
	txn := submitTransfer(t, svc, f)

	verified, err := svc.VerifyTransfer(context.Background(), domain.VerifyTransferRequest{
		TransactionID: txn.ID,
		Verified:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCaptured, verified.Status)
	assert.Equal(t, domain.VerificationVerified, verified.VerificationStatus)
	assert.Equal(t, orderdomain.StatusConfirmed, orderStatus(t, f))

	// repeating the same outcome is a no-op
	again, err := svc.VerifyTransfer(context.Background(), domain.VerifyTransferRequest{
		TransactionID: txn.ID,
		Verified:      true,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCaptured, again.Status)
}

func TestVerifyTransferRejected(t *testing.T) {
	svc, f := setupTransfer(t, 1.0)
	seedBank(t, f, "Banesco")
	txn := submitTransfer(t, svc, f)

	rejected, err := svc.VerifyTransfer(context.Background(), domain.VerifyTransferRequest{
		TransactionID: txn.ID,
		Verified:      false,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, rejected.Status)
	assert.Equal(t, domain.VerificationRejected, rejected.VerificationStatus)
	assert.Equal(t, orderdomain.StatusCancelled, orderStatus(t, f))

	// flipping an already-applied outcome is not allowed
	_, err = svc.VerifyTransfer(context.Background(), domain.VerifyTransferRequest{
		TransactionID: txn.ID,
		Verified:      true,
	})
	assert.ErrorIs(t, err, domain.ErrNotVerifiable)
}

func TestVerifyTransferWrongMethod(t *testing.T) {
	svc, f := setup(t, simcard.New(0, 1.0))

	txn, err := svc.SubmitPayment(context.Background(), domain.SubmitPaymentRequest{
		OrderID: f.order.ID,
		Method:  domain.MethodSimulatedCard,
		Details: cardDetails(),
	})
	require.NoError(t, err)

	_, err = svc.VerifyTransfer(context.Background(), domain.VerifyTransferRequest{
		TransactionID: txn.ID,
		Verified:      true,
	})
	assert.ErrorIs(t, err, domain.ErrNotVerifiable)
}

func TestVerifyTransferUnknownTransaction(t *testing.T) {
	svc, _ := setup(t, simcard.New(0, 1.0))

	_, err := svc.VerifyTransfer(context.Background(), domain.VerifyTransferRequest{
		TransactionID: snowflake.ID(999999),
		Verified:      true,
	})
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}

func TestGetTransaction(t *testing.T) {
	svc, f := setup(t, simcard.New(0, 1.0))

	txn, err := svc.SubmitPayment(context.Background(), domain.SubmitPaymentRequest{
		OrderID: f.order.ID,
		Method:  domain.MethodSimulatedCard,
		Details: cardDetails(),
	})
	require.NoError(t, err)

	stored, err := svc.GetTransaction(context.Background(), txn.ID)
	require.NoError(t, err)
	assert.Equal(t, txn.ID, stored.ID)
	assert.Equal(t, txn.Status, stored.Status)

	_, err = svc.GetTransaction(context.Background(), snowflake.ID(123456))
	assert.ErrorIs(t, err, domain.ErrTransactionNotFound)
}
