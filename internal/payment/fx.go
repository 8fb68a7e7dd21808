package payment

import (
	"time"

	"go.uber.org/fx"

	bankdomain "github.com/foodcourtlabs/foodcourt/internal/bank/domain"
	"github.com/foodcourtlabs/foodcourt/internal/config"
	"github.com/foodcourtlabs/foodcourt/internal/payment/adapters"
	"github.com/foodcourtlabs/foodcourt/internal/payment/adapters/banktransfer"
	"github.com/foodcourtlabs/foodcourt/internal/payment/adapters/cardnet"
	"github.com/foodcourtlabs/foodcourt/internal/payment/adapters/simcard"
	"github.com/foodcourtlabs/foodcourt/internal/payment/repository"
	paymentservice "github.com/foodcourtlabs/foodcourt/internal/payment/service"
	"github.com/foodcourtlabs/foodcourt/internal/payment/webhook"
)

var Module = fx.Module("payment",
	fx.Provide(repository.Provide),
	fx.Provide(NewAdapterRegistry),
	fx.Provide(paymentservice.New),
	fx.Provide(webhook.New),
)

// NewAdapterRegistry builds every adapter once at startup and injects them;
// adapters are plain values, not process-wide singletons.
func NewAdapterRegistry(cfg config.Config, banks bankdomain.Repository) *adapters.Registry {
	delay := time.Duration(cfg.Payment.Simulator.DelayMillis) * time.Millisecond
	return adapters.NewRegistry(
		cardnet.New(cfg.Payment.CardNet.BaseURL, cfg.Payment.CardNet.APIKey, cfg.Payment.CardNet.WebhookSecret),
		simcard.New(delay, cfg.Payment.Simulator.CardSuccessRate),
		banktransfer.New(banks, delay, cfg.Payment.Simulator.TransferSuccessRate),
	)
}
