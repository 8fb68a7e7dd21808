package order

import (
	"github.com/foodcourtlabs/foodcourt/internal/order/repository"
	"github.com/foodcourtlabs/foodcourt/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
