package observability

import (
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

func NewLogger() (*zap.Logger, error) {
	if os.Getenv("FOODCOURT_DEV_LOG") != "" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

var Module = fx.Module("observability",
	fx.Provide(NewLogger),
	fx.Provide(NewMetrics),
)
