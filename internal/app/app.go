package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"

	"github.com/polkiloo/routeshop/internal/config"
	"github.com/polkiloo/routeshop/internal/server/http/handlers"
	"github.com/polkiloo/routeshop/internal/usecase"
	"github.com/polkiloo/routeshop/internal/worker"
)

// Module wires application services, runtime components, and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		NewShopFacade,
		func(f *ShopFacade) handlers.ShopFacade { return f },
		newHTTPServer,
		newReconciler,
		newExpiryScheduler,
		func(s *worker.ExpiryScheduler) usecase.DraftTimer { return s },
	),
	fx.Invoke(registerLifecycle),
)

type serverParams struct {
	fx.In

	Config *config.Config
	Router *gin.Engine
}

func newHTTPServer(p serverParams) *http.Server {
	return &http.Server{
		Addr:    p.Config.RunAddress,
		Handler: p.Router,
	}
}

type workerParams struct {
	fx.In

	Facade *ShopFacade
	Config *config.Config
	Logger *slog.Logger
	Tracer trace.Tracer `optional:"true"`
}

func newReconciler(p workerParams) *worker.Reconciler {
	return worker.NewReconciler(
		p.Facade,
		p.Config.ReconcileInterval,
		p.Config.ReconcileWorkers,
		p.Logger,
		p.Tracer,
	)
}

func newExpiryScheduler(logger *slog.Logger) *worker.ExpiryScheduler {
	return worker.NewExpiryScheduler(logger)
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Reconciler *worker.Reconciler
	Expiry     *worker.ExpiryScheduler
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	polling := p.Config.PaymentMode == config.PaymentModeStatement

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting routeshop",
				slog.String("addr", p.Server.Addr),
				slog.String("payment_mode", p.Config.PaymentMode),
			)
			if polling {
				p.Reconciler.Start(ctx)
			}
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown()
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if polling {
				p.Reconciler.Stop()
			}

			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			err := p.Server.Shutdown(shutdownCtx)
			p.Expiry.Stop()
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			p.Logger.Info("routeshop stopped")
			return nil
		},
	})
}
