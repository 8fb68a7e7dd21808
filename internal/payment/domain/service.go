package domain

import (
	"context"
	"errors"
	"net/http"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrTransactionNotFound = errors.New("transaction_not_found")
	ErrInvalidMethod       = errors.New("invalid_payment_method")
	ErrInvalidProvider     = errors.New("invalid_provider")
	ErrProviderNotFound    = errors.New("provider_not_found")
	ErrInvalidSignature    = errors.New("invalid_signature")
	ErrInvalidPayload      = errors.New("invalid_payload")
	ErrInvalidEvent        = errors.New("invalid_event")
	ErrEventIgnored        = errors.New("event_ignored")
	ErrOrderClosed         = errors.New("order_closed")
	ErrNotVerifiable       = errors.New("transaction_not_verifiable")
)

type SubmitPaymentRequest struct {
	OrderID snowflake.ID
	Method  Method
	Details PaymentDetails
}

type VerifyTransferRequest struct {
	TransactionID snowflake.ID
	Verified      bool
	BankReference string
}

type Service interface {
	SubmitPayment(ctx context.Context, req SubmitPaymentRequest) (*Transaction, error)
	GetTransaction(ctx context.Context, id snowflake.ID) (*Transaction, error)
	VerifyTransfer(ctx context.Context, req VerifyTransferRequest) (*Transaction, error)
}

type WebhookService interface {
	IngestWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) error
}
