package telegram

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/routeshop/internal/config"
	"github.com/polkiloo/routeshop/internal/usecase"
)

// Module exposes the Telegram notifier to fx graph.
var Module = fx.Provide(newNotifier)

type notifierParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newNotifier(p notifierParams) (usecase.Notifier, error) {
	return NewNotifier(p.Config.TelegramAPIURL, p.Config.BotToken, p.Logger)
}
