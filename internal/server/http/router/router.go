package router

import (
	"log/slog"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/fx"

	"github.com/polkiloo/routeshop/internal/config"
	"github.com/polkiloo/routeshop/internal/observability"
	"github.com/polkiloo/routeshop/internal/server/http/handlers"
	"github.com/polkiloo/routeshop/internal/server/http/middleware"
)

const (
	webhookSecretHeader = "X-Webhook-Token"
	gatewaySecretHeader = "X-Gateway-Token"
)

// Params groups router dependencies.
type Params struct {
	fx.In

	Facade handlers.ShopFacade
	Config *config.Config
	Logger *slog.Logger
}

// Setup configures gin router with handlers and middleware.
func Setup(p Params) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(gin.Recovery())
	engine.Use(otelgin.Middleware(observability.ServiceName))
	engine.Use(middleware.RequestLogger(p.Logger))
	engine.Use(middleware.DecompressRequest())
	engine.Use(gzip.Gzip(gzip.DefaultCompression))

	buyerHandler := handlers.NewBuyerHandler(p.Facade)
	operatorHandler := handlers.NewOperatorHandler(p.Facade)
	gatewayHandler := handlers.NewGatewayHandler(p.Facade, p.Facade)

	engine.GET("/healthz", handlers.Health)
	engine.POST("/webhook", middleware.SharedSecret(webhookSecretHeader, p.Config.WebhookSecret), gatewayHandler.Webhook)

	api := engine.Group("/api")

	// token issuance is only exposed when the gateway has its own secret
	if p.Config.GatewaySecret != "" {
		api.POST("/gateway/token", middleware.SharedSecret(gatewaySecretHeader, p.Config.GatewaySecret), gatewayHandler.Token)
	}

	buyer := api.Group("/buyer")
	buyer.Use(middleware.AuthRequired(p.Facade))
	buyer.POST("/start", buyerHandler.Start)
	buyer.POST("/checkout", buyerHandler.Checkout)
	buyer.POST("/proof", buyerHandler.Proof)
	buyer.GET("/purchases", buyerHandler.Purchases)
	buyer.POST("/support", buyerHandler.Support)

	operator := api.Group("/operator")
	operator.Use(middleware.AuthRequired(p.Facade), middleware.OperatorOnly(p.Facade))
	operator.POST("/orders/:id/approve", operatorHandler.Approve)
	operator.POST("/orders/:id/reject", operatorHandler.Reject)
	operator.POST("/orders/cancel-pending", operatorHandler.CancelPending)
	operator.POST("/rejection", operatorHandler.Rejection)
	operator.POST("/actions", operatorHandler.Action)
	operator.GET("/stats", operatorHandler.Stats)
	operator.POST("/instructors", operatorHandler.AddInstructor)
	operator.GET("/payouts", operatorHandler.Payouts)
	operator.POST("/payouts/:code/settle", operatorHandler.Settle)
	operator.POST("/disputes/:buyer/close", operatorHandler.CloseDispute)

	return engine
}
