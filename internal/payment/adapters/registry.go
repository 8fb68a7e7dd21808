package adapters

import (
	"strings"

	"github.com/foodcourtlabs/foodcourt/internal/payment/domain"
)

// Registry holds the adapters constructed at startup, keyed by payment
// method, plus the webhook-capable subset keyed by provider name.
type Registry struct {
	byMethod   map[domain.Method]domain.Adapter
	byProvider map[string]domain.WebhookAdapter
}

func NewRegistry(list ...domain.Adapter) *Registry {
	r := &Registry{
		byMethod:   make(map[domain.Method]domain.Adapter, len(list)),
		byProvider: make(map[string]domain.WebhookAdapter),
	}
	for _, adapter := range list {
		r.byMethod[adapter.Method()] = adapter
		if wa, ok := adapter.(domain.WebhookAdapter); ok {
			r.byProvider[strings.ToLower(wa.Provider())] = wa
		}
	}
	return r
}

func (r *Registry) ByMethod(method domain.Method) (domain.Adapter, bool) {
	adapter, ok := r.byMethod[method]
	return adapter, ok
}

func (r *Registry) WebhookByProvider(provider string) (domain.WebhookAdapter, bool) {
	adapter, ok := r.byProvider[strings.ToLower(strings.TrimSpace(provider))]
	return adapter, ok
}
