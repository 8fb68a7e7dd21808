package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/foodcourtlabs/foodcourt/internal/config"
	"github.com/foodcourtlabs/foodcourt/internal/observability"
	orderdomain "github.com/foodcourtlabs/foodcourt/internal/order/domain"
	paymentdomain "github.com/foodcourtlabs/foodcourt/internal/payment/domain"
	"github.com/foodcourtlabs/foodcourt/internal/ratelimit"
)

type Params struct {
	fx.In

	Cfg        config.Config
	Log        *zap.Logger
	OrderSvc   orderdomain.Service
	PaymentSvc paymentdomain.Service
	WebhookSvc paymentdomain.WebhookService
	Metrics    *observability.Metrics
	Limiter    *ratelimit.Limiter `optional:"true"`
}

type Server struct {
	cfg        config.Config
	log        *zap.Logger
	orderSvc   orderdomain.Service
	paymentSvc paymentdomain.Service
	webhookSvc paymentdomain.WebhookService
	metrics    *observability.Metrics
	limiter    *ratelimit.Limiter
}

func NewServer(p Params) *Server {
	return &Server{
		cfg:        p.Cfg,
		log:        p.Log.Named("server"),
		orderSvc:   p.OrderSvc,
		paymentSvc: p.PaymentSvc,
		webhookSvc: p.WebhookSvc,
		metrics:    p.Metrics,
		limiter:    p.Limiter,
	}
}

func NewEngine(log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	return engine
}

func (s *Server) RegisterRoutes(engine *gin.Engine) {
	engine.GET("/healthz", s.Health)
	engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	// Webhooks stay outside the rate limiter: providers control the retry
	// cadence, not our clients.
	engine.POST("/webhooks/:provider", s.IngestWebhook)

	api := engine.Group("/api")
	if s.limiter != nil {
		api.Use(s.limiter.Middleware())
	}

	api.POST("/orders", s.SubmitOrder)
	api.GET("/orders", s.ListOrders)
	api.GET("/orders/:id", s.GetOrder)
	api.PATCH("/orders/:id/status", s.UpdateOrderStatus)

	api.POST("/orders/:id/payments/card", s.SubmitCardPayment)
	api.POST("/orders/:id/payments/simulated-card", s.SubmitSimulatedCardPayment)
	api.POST("/orders/:id/payments/bank-transfer", s.SubmitBankTransferPayment)

	api.GET("/transactions/:id", s.GetTransaction)
	api.POST("/payments/transfers/:id/verify", s.VerifyTransfer)
}

func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func RunHTTP(lc fx.Lifecycle, cfg config.Config, log *zap.Logger, engine *gin.Engine, srv *Server) {
	srv.RegisterRoutes(engine)

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: engine,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.Server.Addr))
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return httpServer.Shutdown(ctx)
		},
	})
}

var Module = fx.Module("server",
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(RunHTTP),
)
