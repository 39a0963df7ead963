package auth

import (
	"go.uber.org/fx"

	"github.com/polkiloo/routeshop/internal/config"
)

// Module provides the token strategy via fx.
var Module = fx.Provide(newTokenStrategy)

type strategyParams struct {
	fx.In

	Config *config.Config
}

func newTokenStrategy(p strategyParams) Strategy {
	return NewHMACStrategy(p.Config.AuthSecret, Options{})
}
