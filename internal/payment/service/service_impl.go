package service

import (
	"context"
	"encoding/json"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
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

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("payment.service"),
		clock:     p.Clock,
		genID:     p.GenID,
		registry:  p.Registry,
		repo:      p.Repo,
		orderRepo: p.OrderRepo,
		metrics:   p.Metrics,
	}
}

// SubmitPayment dispatches one payment attempt. The order row stays locked
// for the duration of adapter dispatch, serializing attempts per order.
func (s *Service) SubmitPayment(ctx context.Context, req domain.SubmitPaymentRequest) (*domain.Transaction, error) {
	adapter, ok := s.registry.ByMethod(req.Method)
	if !ok || !domain.ValidMethod(req.Method) {
		return nil, domain.ErrInvalidMethod
	}

	// Shape validation happens before any row is written.
	if err := adapter.Validate(ctx, req.Details); err != nil {
		return nil, err
	}

	var txn *domain.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		order, err := s.orderRepo.FindByIDForUpdate(ctx, tx, req.OrderID)
		if err != nil {
			return err
		}
		if order.Status.Terminal() {
			return domain.ErrOrderClosed
		}

		now := s.clock.Now(ctx)
		txn = &domain.Transaction{
			ID:          s.genID.Generate(),
			OrderID:     order.ID,
			Method:      req.Method,
			AmountCents: order.TotalCents,
			Currency:    order.Currency,
			Status:      domain.StatusPending,
			BankName:    req.Details.BankName,
			Metadata:    transferMetadata(req),
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.repo.Insert(ctx, tx, txn); err != nil {
			return err
		}

		result, err := adapter.Authorize(ctx, domain.AuthorizeRequest{
			OrderID:  order.ID,
			Amount:   order.TotalCents,
			Currency: order.Currency,
			Details:  req.Details,
		})
		if err != nil {
			// Infrastructure failure, not a provider decline: roll back the
			// pending row and surface the error.
			return err
		}

		applyOutcome(txn, result)
		txn.UpdatedAt = s.clock.Now(ctx)
		if err := s.repo.Update(ctx, tx, txn); err != nil {
			return err
		}

		// Only the simulated card settles synchronously; every other method
		// confirms the order later (webhook or manual verification).
		if req.Method == domain.MethodSimulatedCard && result.Outcome == domain.OutcomeApproved {
			if order.Status.CanTransitionTo(orderdomain.StatusConfirmed) {
				if err := s.orderRepo.UpdateStatus(ctx, tx, order.ID, orderdomain.StatusConfirmed); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.PaymentAttempts.WithLabelValues(string(req.Method), string(txn.Status)).Inc()
	}
	s.log.Info("payment attempt recorded",
		zap.String("transaction_id", txn.ID.String()),
		zap.String("order_id", req.OrderID.String()),
		zap.String("method", string(req.Method)),
		zap.String("status", string(txn.Status)))

	return txn, nil
}

func (s *Service) GetTransaction(ctx context.Context, id snowflake.ID) (*domain.Transaction, error) {
	return s.repo.FindByID(ctx, nil, id)
}

// VerifyTransfer applies the manual bank-side verification outcome for a
// pending bank transfer. Repeating an already-applied outcome is a no-op.
func (s *Service) VerifyTransfer(ctx context.Context, req domain.VerifyTransferRequest) (*domain.Transaction, error) {
	var txn *domain.Transaction
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		txn, err = s.repo.FindByIDForUpdate(ctx, tx, req.TransactionID)
		if err != nil {
			return err
		}
		if txn.Method != domain.MethodBankTransfer {
			return domain.ErrNotVerifiable
		}

		requested := domain.VerificationRejected
		if req.Verified {
			requested = domain.VerificationVerified
		}
		if txn.VerificationStatus == requested {
			return nil
		}
		if txn.Status != domain.StatusPendingVerification {
			return domain.ErrNotVerifiable
		}

		txn.VerificationStatus = requested
		txn.UpdatedAt = s.clock.Now(ctx)
		if req.BankReference != "" {
			txn.ProviderReference = req.BankReference
		}

		var orderStatus orderdomain.Status
		if req.Verified {
			txn.Status = domain.StatusCaptured
			orderStatus = orderdomain.StatusConfirmed
		} else {
			txn.Status = domain.StatusFailed
			txn.FailureReason = "transfer rejected during verification"
			orderStatus = orderdomain.StatusCancelled
		}
		if err := s.repo.Update(ctx, tx, txn); err != nil {
			return err
		}

		order, err := s.orderRepo.FindByIDForUpdate(ctx, tx, txn.OrderID)
		if err != nil {
			return err
		}
		if order.Status != orderStatus && order.Status.CanTransitionTo(orderStatus) {
			return s.orderRepo.UpdateStatus(ctx, tx, order.ID, orderStatus)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("transfer verification applied",
		zap.String("transaction_id", txn.ID.String()),
		zap.Bool("verified", req.Verified),
		zap.String("status", string(txn.Status)))
	return txn, nil
}

func applyOutcome(txn *domain.Transaction, result *domain.AuthorizeResult) {
	txn.ProviderIntentID = result.ProviderIntentID
	txn.ClientSecret = result.ClientSecret
	txn.AuthorizationCode = result.AuthorizationCode
	if result.ProviderReference != "" {
		txn.ProviderReference = result.ProviderReference
	}
	txn.FailureReason = result.FailureReason

	switch result.Outcome {
	case domain.OutcomeApproved:
		txn.Status = domain.StatusAuthorized
	case domain.OutcomeDeclined:
		txn.Status = domain.StatusFailed
	case domain.OutcomePendingVerification:
		txn.Status = domain.StatusPendingVerification
		txn.VerificationStatus = domain.VerificationPending
	case domain.OutcomePending:
		txn.Status = domain.StatusPending
	}
}

func transferMetadata(req domain.SubmitPaymentRequest) datatypes.JSON {
	if req.Method != domain.MethodBankTransfer {
		return nil
	}
	meta, _ := json.Marshal(map[string]string{
		"phone":     req.Details.Phone,
		"reference": req.Details.Reference,
	})
	return meta
}
