package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

var (
	ErrOrderNotFound     = errors.New("order_not_found")
	ErrInvalidStatus     = errors.New("invalid_status")
	ErrIllegalTransition = errors.New("illegal_status_transition")
)

type CustomerInput struct {
	Email   string
	Name    string
	Phone   string
	Address string
}

type SubmitOrderRequest struct {
	Customer        CustomerInput
	Items           []Item
	Total           float64
	Currency        string
	DeliveryAddress string
	DeliveryNotes   string
}

type Service interface {
	Submit(ctx context.Context, req SubmitOrderRequest) (*Order, error)
	Get(ctx context.Context, id snowflake.ID) (*Order, error)
	ListByEmail(ctx context.Context, email string) ([]Order, error)
	UpdateStatus(ctx context.Context, id snowflake.ID, status Status) (*Order, error)
}
