package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	customerdomain "github.com/foodcourtlabs/foodcourt/internal/customer/domain"
	paymentdomain "github.com/foodcourtlabs/foodcourt/internal/payment/domain"
	"gorm.io/datatypes"
)

const (
	CurrencyUSD = "USD"
	CurrencyVES = "VES"
)

func ValidCurrency(currency string) bool {
	return currency == CurrencyUSD || currency == CurrencyVES
}

// Item is a line item as submitted by the client. Items are stored opaquely;
// the order total is trusted as supplied rather than recomputed.
type Item struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type Order struct {
	ID                  snowflake.ID              `json:"id" gorm:"primaryKey"`
	CustomerID          snowflake.ID              `json:"customer_id" gorm:"not null;index"`
	TotalCents          int64                     `json:"total_cents" gorm:"not null"`
	Currency            string                    `json:"currency" gorm:"type:varchar(3);not null"`
	Status              Status                    `json:"status" gorm:"type:varchar(20);not null"`
	Items               datatypes.JSON            `json:"items" gorm:"not null"`
	DeliveryAddress     string                    `json:"delivery_address" gorm:"type:text;not null"`
	DeliveryNotes       string                    `json:"delivery_notes,omitempty" gorm:"type:text"`
	EstimatedDeliveryAt *time.Time                `json:"estimated_delivery_at,omitempty"`
	CreatedAt           time.Time                 `json:"created_at" gorm:"not null"`
	UpdatedAt           time.Time                 `json:"updated_at" gorm:"not null"`

	Customer     *customerdomain.Customer    `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Transactions []paymentdomain.Transaction `json:"transactions,omitempty" gorm:"foreignKey:OrderID"`
}

func (Order) TableName() string { return "orders" }
