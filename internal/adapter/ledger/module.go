package ledger

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/polkiloo/routeshop/internal/config"
	"github.com/polkiloo/routeshop/internal/usecase"
)

// Module exposes the ledger client to fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (usecase.Ledger, error) {
	return NewHTTPClient(p.Config.LedgerURL, Options{
		Token:      p.Config.LedgerToken,
		Account:    p.Config.LedgerAccount,
		WebhookURL: p.Config.WebhookURL,
	}, p.Logger)
}
