package catalog

import (
	"go.uber.org/fx"

	"github.com/polkiloo/routeshop/internal/config"
)

// Module provides the default catalog priced from configuration.
var Module = fx.Provide(func(cfg *config.Config) *Catalog {
	return New(DefaultProducts, cfg.PriceSingle, cfg.PriceBundle)
})
