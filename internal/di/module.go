package di

import (
	"go.uber.org/fx"

	"github.com/polkiloo/routeshop/internal/adapter/events"
	"github.com/polkiloo/routeshop/internal/adapter/ledger"
	"github.com/polkiloo/routeshop/internal/adapter/telegram"
	"github.com/polkiloo/routeshop/internal/app"
	"github.com/polkiloo/routeshop/internal/catalog"
	"github.com/polkiloo/routeshop/internal/config"
	"github.com/polkiloo/routeshop/internal/logger"
	"github.com/polkiloo/routeshop/internal/observability"
	"github.com/polkiloo/routeshop/internal/pkg/auth"
	"github.com/polkiloo/routeshop/internal/pkg/cardhash"
	"github.com/polkiloo/routeshop/internal/server/http/router"
	"github.com/polkiloo/routeshop/internal/storage/postgres"
	"github.com/polkiloo/routeshop/internal/storage/session"
	"github.com/polkiloo/routeshop/internal/usecase"
)

// Module composes the whole application graph; opts may replace any provided value.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		observability.Module,
		auth.Module,
		cardhash.Module,
		catalog.Module,
		postgres.Module,
		session.Module,
		ledger.Module,
		telegram.Module,
		events.Module,
		usecase.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
