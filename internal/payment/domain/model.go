package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Method string

const (
	MethodCardNetwork   Method = "card_network"
	MethodSimulatedCard Method = "simulated_card"
	MethodBankTransfer  Method = "bank_transfer"
)

func ValidMethod(m Method) bool {
	switch m {
	case MethodCardNetwork, MethodSimulatedCard, MethodBankTransfer:
		return true
	}
	return false
}

type Status string

const (
	StatusPending             Status = "pending"
	StatusAuthorized          Status = "authorized"
	StatusCaptured            Status = "captured"
	StatusFailed              Status = "failed"
	StatusPendingVerification Status = "pending_verification"
)

// VerificationStatus tracks the human verification step for bank transfers.
// It is empty for every other method.
type VerificationStatus string

const (
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

type Transaction struct {
	ID                 snowflake.ID       `json:"id" gorm:"primaryKey"`
	OrderID            snowflake.ID       `json:"order_id" gorm:"not null;index"`
	Method             Method             `json:"method" gorm:"type:varchar(30);not null"`
	AmountCents        int64              `json:"amount_cents" gorm:"not null"`
	Currency           string             `json:"currency" gorm:"type:varchar(3);not null"`
	Status             Status             `json:"status" gorm:"type:varchar(30);not null"`
	VerificationStatus VerificationStatus `json:"verification_status,omitempty" gorm:"type:varchar(20)"`
	ProviderIntentID   string             `json:"provider_intent_id,omitempty" gorm:"type:text;index"`
	ClientSecret       string             `json:"client_secret,omitempty" gorm:"type:text"`
	AuthorizationCode  string             `json:"authorization_code,omitempty" gorm:"type:text"`
	ProviderReference  string             `json:"provider_reference,omitempty" gorm:"type:text"`
	BankName           string             `json:"bank_name,omitempty" gorm:"type:text"`
	FailureReason      string             `json:"failure_reason,omitempty" gorm:"type:text"`
	Metadata           datatypes.JSON     `json:"metadata,omitempty"`
	CreatedAt          time.Time          `json:"created_at" gorm:"not null"`
	UpdatedAt          time.Time          `json:"updated_at" gorm:"not null"`
}

func (Transaction) TableName() string { return "transactions" }

// EventRecord is an audit row for a verified provider webhook delivery. It is
// not a dedup ledger; reconciliation stays idempotent on its own.
type EventRecord struct {
	ID              snowflake.ID   `json:"id" gorm:"primaryKey"`
	Provider        string         `json:"provider" gorm:"type:text;not null"`
	ProviderEventID string         `json:"provider_event_id" gorm:"type:text;not null;index"`
	EventType       string         `json:"event_type" gorm:"type:text;not null"`
	TransactionID   *snowflake.ID  `json:"transaction_id,omitempty"`
	Payload         datatypes.JSON `json:"payload" gorm:"not null"`
	ReceivedAt      time.Time      `json:"received_at" gorm:"not null"`
	ProcessedAt     *time.Time     `json:"processed_at,omitempty"`
}

func (EventRecord) TableName() string { return "payment_events" }
