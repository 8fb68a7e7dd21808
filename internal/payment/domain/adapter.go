package domain

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
)

// PaymentDetails carries the method-specific fields of a payment submission.
// Each adapter validates only the fields it needs.
type PaymentDetails struct {
	// simulated card
	CardNumber string `json:"card_number,omitempty"`
	ExpMonth   int    `json:"exp_month,omitempty"`
	ExpYear    int    `json:"exp_year,omitempty"`
	CVC        string `json:"cvc,omitempty"`

	// bank transfer
	Phone      string `json:"phone,omitempty"`
	NationalID string `json:"national_id,omitempty"`
	BankName   string `json:"bank_name,omitempty"`
	Reference  string `json:"reference,omitempty"`
}

type Outcome string

const (
	OutcomeApproved            Outcome = "approved"
	OutcomeDeclined            Outcome = "declined"
	OutcomePending             Outcome = "pending"
	OutcomePendingVerification Outcome = "pending_verification"
)

type AuthorizeRequest struct {
	OrderID  snowflake.ID
	Amount   int64
	Currency string
	Details  PaymentDetails
}

type AuthorizeResult struct {
	Outcome           Outcome
	ProviderIntentID  string
	ClientSecret      string
	AuthorizationCode string
	ProviderReference string
	FailureReason     string
}

// Adapter is the payment-authorization capability for one method. Adapters
// are constructed once at process start and injected; they hold no mutable
// shared state.
type Adapter interface {
	Method() Method
	// Validate checks the shape of method-specific details. It runs before
	// any row is written and before any simulated delay.
	Validate(ctx context.Context, details PaymentDetails) error
	// Authorize performs the payment attempt. Provider declines are reported
	// through the result outcome, not the error.
	Authorize(ctx context.Context, req AuthorizeRequest) (*AuthorizeResult, error)
}

const (
	EventTypePaymentSucceeded = "payment_succeeded"
	EventTypePaymentFailed    = "payment_failed"
	EventTypePaymentCanceled  = "payment_canceled"
)

// ProviderEvent is the canonical asynchronous provider notification parsed by
// a webhook-capable adapter.
type ProviderEvent struct {
	Provider         string
	ProviderEventID  string
	ProviderIntentID string
	Type             string
	Amount           int64
	Currency         string
	OccurredAt       time.Time
	RawPayload       []byte
}

// WebhookAdapter is implemented by adapters whose provider settles
// asynchronously. Verify runs over the raw request bytes before the payload
// is trusted.
type WebhookAdapter interface {
	Provider() string
	Verify(ctx context.Context, payload []byte, headers http.Header) error
	Parse(ctx context.Context, payload []byte) (*ProviderEvent, error)
}
