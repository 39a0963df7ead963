package cardhash

import (
	"go.uber.org/fx"

	"github.com/polkiloo/routeshop/internal/config"
)

// Module provides the card hasher peppered from configuration.
var Module = fx.Provide(func(cfg *config.Config) Hasher {
	return NewArgon2Hasher(cfg.CardPepper)
})
