package service

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/foodcourtlabs/foodcourt/internal/clock"
	"github.com/foodcourtlabs/foodcourt/internal/config"
	customerdomain "github.com/foodcourtlabs/foodcourt/internal/customer/domain"
	"github.com/foodcourtlabs/foodcourt/internal/observability"
	"github.com/foodcourtlabs/foodcourt/internal/order/domain"
	"github.com/foodcourtlabs/foodcourt/pkg/validate"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Cfg          config.Config
	Clock        clock.Clock
	GenID        *snowflake.Node
	Repo         domain.Repository
	CustomerRepo customerdomain.Repository
	Metrics      *observability.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	cfg          config.Config
	clock        clock.Clock
	genID        *snowflake.Node
	repo         domain.Repository
	customerRepo customerdomain.Repository
	metrics      *observability.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("order.service"),
		cfg:          p.Cfg,
		clock:        p.Clock,
		genID:        p.GenID,
		repo:         p.Repo,
		customerRepo: p.CustomerRepo,
		metrics:      p.Metrics,
	}
}

func (s *Service) Submit(ctx context.Context, req domain.SubmitOrderRequest) (*domain.Order, error) {
	if req.Currency == "" {
		req.Currency = domain.CurrencyUSD
	}
	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))

	if err := validateSubmit(req); err != nil {
		return nil, err
	}

	now := s.clock.Now(ctx)
	estimate := now.Add(time.Duration(s.estimateMinutes()) * time.Minute)

	itemsJSON, err := json.Marshal(req.Items)
	if err != nil {
		return nil, err
	}

	var order *domain.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		customer, err := s.findOrCreateCustomer(ctx, tx, req.Customer, now)
		if err != nil {
			return err
		}

		order = &domain.Order{
			ID:                  s.genID.Generate(),
			CustomerID:          customer.ID,
			TotalCents:          toCents(req.Total),
			Currency:            req.Currency,
			Status:              domain.StatusPending,
			Items:               itemsJSON,
			DeliveryAddress:     strings.TrimSpace(req.DeliveryAddress),
			DeliveryNotes:       strings.TrimSpace(req.DeliveryNotes),
			EstimatedDeliveryAt: &estimate,
			CreatedAt:           now,
			UpdatedAt:           now,
		}
		if err := s.repo.Insert(ctx, tx, order); err != nil {
			return err
		}
		order.Customer = customer
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.OrdersCreated.Inc()
	}
	s.log.Info("order submitted",
		zap.String("order_id", order.ID.String()),
		zap.String("customer_id", order.CustomerID.String()),
		zap.Int64("total_cents", order.TotalCents),
		zap.String("currency", order.Currency))

	return order, nil
}

// findOrCreateCustomer reuses an existing customer by email, first-write-wins
// on concurrent creation with the same address.
func (s *Service) findOrCreateCustomer(ctx context.Context, tx *gorm.DB, input domain.CustomerInput, now time.Time) (*customerdomain.Customer, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	existing, err := s.customerRepo.FindByEmail(ctx, tx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, customerdomain.ErrCustomerNotFound) {
		return nil, err
	}

	customer := &customerdomain.Customer{
		ID:        s.genID.Generate(),
		Email:     email,
		Name:      strings.TrimSpace(input.Name),
		Phone:     strings.TrimSpace(input.Phone),
		Address:   strings.TrimSpace(input.Address),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.customerRepo.Insert(ctx, tx, customer); err != nil {
		// Lost the race on the unique email index: reuse the winner.
		if winner, findErr := s.customerRepo.FindByEmail(ctx, tx, email); findErr == nil {
			return winner, nil
		}
		return nil, err
	}
	return customer, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (*domain.Order, error) {
	return s.repo.FindByID(ctx, nil, id)
}

func (s *Service) ListByEmail(ctx context.Context, email string) ([]domain.Order, error) {
	customer, err := s.customerRepo.FindByEmail(ctx, nil, email)
	if err != nil {
		if errors.Is(err, customerdomain.ErrCustomerNotFound) {
			return []domain.Order{}, nil
		}
		return nil, err
	}
	return s.repo.ListByCustomer(ctx, nil, customer.ID)
}

func (s *Service) UpdateStatus(ctx context.Context, id snowflake.ID, status domain.Status) (*domain.Order, error) {
	if !domain.ValidStatus(status) {
		return nil, domain.ErrInvalidStatus
	}

	var order *domain.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := s.repo.FindByIDForUpdate(ctx, tx, id)
		if err != nil {
			return err
		}
		if !current.Status.CanTransitionTo(status) {
			return domain.ErrIllegalTransition
		}
		if current.Status != status {
			if err := s.repo.UpdateStatus(ctx, tx, id, status); err != nil {
				return err
			}
		}
		current.Status = status
		order = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("order status updated",
		zap.String("order_id", id.String()),
		zap.String("status", string(status)))
	return order, nil
}

func (s *Service) estimateMinutes() int {
	if s.cfg.Delivery.EstimateMinutes > 0 {
		return s.cfg.Delivery.EstimateMinutes
	}
	return 45
}

func validateSubmit(req domain.SubmitOrderRequest) error {
	errs := validate.FieldErrors{}
	if !validate.Email(req.Customer.Email) {
		errs.Add("customer.email", "invalid email address")
	}
	if !validate.MobilePhone(req.Customer.Phone) {
		errs.Add("customer.phone", "invalid mobile number")
	}
	if strings.TrimSpace(req.Customer.Name) == "" {
		errs.Add("customer.name", "name is required")
	}
	if len(req.Items) == 0 {
		errs.Add("items", "at least one item is required")
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			errs.Add("items", "item quantity must be positive")
			break
		}
	}
	if req.Total <= 0 {
		errs.Add("total", "total must be positive")
	}
	if !domain.ValidCurrency(req.Currency) {
		errs.Add("currency", "currency must be USD or VES")
	}
	if strings.TrimSpace(req.DeliveryAddress) == "" {
		errs.Add("delivery_address", "delivery address is required")
	}
	return errs.OrNil()
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
