package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/foodcourtlabs/foodcourt/internal/clock"
	"github.com/foodcourtlabs/foodcourt/internal/observability"
	orderdomain "github.com/foodcourtlabs/foodcourt/internal/order/domain"
	"github.com/foodcourtlabs/foodcourt/internal/payment/adapters"
	"github.com/foodcourtlabs/foodcourt/internal/payment/domain"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	Clock     clock.Clock
	GenID     *snowflake.Node
	Registry  *adapters.Registry
	Repo      domain.Repository
	OrderRepo orderdomain.Repository
	Metrics   *observability.Metrics `optional:"true"`
}

// Service reconciles asynchronous provider notifications with local
// transaction and order state. Handlers are idempotent: redelivering an event
// rewrites the same final values.
type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	clock     clock.Clock
	genID     *snowflake.Node
	registry  *adapters.Registry
	repo      domain.Repository
	orderRepo orderdomain.Repository
	metrics   *observability.Metrics
}

func New(p Params) domain.WebhookService {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("payment.webhook"),
		clock:     p.Clock,
		genID:     p.GenID,
		registry:  p.Registry,
		repo:      p.Repo,
		orderRepo: p.OrderRepo,
		metrics:   p.Metrics,
	}
}

func (s *Service) IngestWebhook(ctx context.Context, provider string, payload []byte, headers http.Header) error {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return domain.ErrInvalidProvider
	}
	adapter, ok := s.registry.WebhookByProvider(provider)
	if !ok {
		return domain.ErrProviderNotFound
	}
	if !json.Valid(payload) {
		return domain.ErrInvalidPayload
	}

	// Signature is computed over the raw bytes; nothing in the payload is
	// trusted until this passes. Fail closed.
	if err := adapter.Verify(ctx, payload, headers); err != nil {
		s.count("signature_failed")
		s.log.Warn("webhook signature verification failed", zap.String("provider", provider))
		return domain.ErrInvalidSignature
	}

	event, err := adapter.Parse(ctx, payload)
	if err != nil {
		if errors.Is(err, domain.ErrEventIgnored) {
			s.count("ignored")
			s.log.Debug("webhook event ignored", zap.String("provider", provider))
			return nil
		}
		s.count("invalid")
		return err
	}

	return s.apply(ctx, event)
}

func (s *Service) apply(ctx context.Context, event *domain.ProviderEvent) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txn, err := s.repo.FindByProviderIntentID(ctx, tx, event.ProviderIntentID)
		if err != nil {
			if errors.Is(err, domain.ErrTransactionNotFound) {
				// Providers retry delivery of stale events; an unknown
				// reference is logged and acknowledged, never an error.
				s.count("unknown_reference")
				s.log.Info("webhook for unknown provider reference",
					zap.String("provider", event.Provider),
					zap.String("provider_intent_id", event.ProviderIntentID),
					zap.String("type", event.Type))
				return s.recordEvent(ctx, tx, event, nil, false)
			}
			return err
		}

		switch event.Type {
		case domain.EventTypePaymentSucceeded:
			err = s.settle(ctx, tx, txn, domain.StatusCaptured, "", orderdomain.StatusConfirmed)
		case domain.EventTypePaymentFailed:
			err = s.settle(ctx, tx, txn, domain.StatusFailed, "payment failed at provider", "")
		case domain.EventTypePaymentCanceled:
			err = s.settle(ctx, tx, txn, domain.StatusFailed, "payment canceled at provider", orderdomain.StatusCancelled)
		default:
			s.count("ignored")
			return s.recordEvent(ctx, tx, event, &txn.ID, false)
		}
		if err != nil {
			return err
		}

		s.count("applied")
		return s.recordEvent(ctx, tx, event, &txn.ID, true)
	})
}

// settle moves the transaction to its terminal status and, when orderStatus
// is set, advances the order. Both writes are no-ops on redelivery.
func (s *Service) settle(ctx context.Context, tx *gorm.DB, txn *domain.Transaction, status domain.Status, reason string, orderStatus orderdomain.Status) error {
	if txn.Status != status {
		txn.Status = status
		txn.FailureReason = reason
		txn.UpdatedAt = s.clock.Now(ctx)
		if err := s.repo.Update(ctx, tx, txn); err != nil {
			return err
		}
	}

	if orderStatus == "" {
		return nil
	}
	order, err := s.orderRepo.FindByIDForUpdate(ctx, tx, txn.OrderID)
	if err != nil {
		return err
	}
	if order.Status == orderStatus {
		return nil
	}
	if !order.Status.CanTransitionTo(orderStatus) {
		s.log.Warn("webhook outcome conflicts with order state",
			zap.String("order_id", order.ID.String()),
			zap.String("order_status", string(order.Status)),
			zap.String("wanted", string(orderStatus)))
		return nil
	}
	return s.orderRepo.UpdateStatus(ctx, tx, order.ID, orderStatus)
}

func (s *Service) recordEvent(ctx context.Context, tx *gorm.DB, event *domain.ProviderEvent, txnID *snowflake.ID, processed bool) error {
	now := s.clock.Now(ctx)
	record := &domain.EventRecord{
		ID:              s.genID.Generate(),
		Provider:        event.Provider,
		ProviderEventID: event.ProviderEventID,
		EventType:       event.Type,
		TransactionID:   txnID,
		Payload:         event.RawPayload,
		ReceivedAt:      now,
	}
	if processed {
		record.ProcessedAt = &now
	}
	return s.repo.InsertEvent(ctx, tx, record)
}

func (s *Service) count(result string) {
	if s.metrics != nil {
		s.metrics.WebhookEvents.WithLabelValues(result).Inc()
	}
}
