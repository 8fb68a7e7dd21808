package bank

import (
	"github.com/foodcourtlabs/foodcourt/internal/bank/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("bank",
	fx.Provide(repository.Provide),
)
