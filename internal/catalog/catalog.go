// Package catalog holds the fixed set of route videos the shop sells.
package catalog

import (
	"fmt"
	"strings"

	domainErrors "github.com/polkiloo/routeshop/internal/domain/errors"
)

// BundleKey selects every product at the bundle price.
const BundleKey = "khust_all"

// Product is a single route video.
type Product struct {
	Key   string
	Title string
	Link  string
}

// Item is a purchasable selection: a single product or the bundle.
type Item struct {
	Key      string
	Title    string
	Products []string
	Amount   int64
}

// Catalog resolves selections into products and prices.
type Catalog struct {
	products    []Product
	byKey       map[string]Product
	priceSingle int64
	priceBundle int64
}

// DefaultProducts are the Khust exam routes.
var DefaultProducts = []Product{
	{Key: "khust_route1", Title: "Маршрут №1", Link: "https://youtu.be/mxtsqKmXWSI"},
	{Key: "khust_route8", Title: "Маршрут №8", Link: "https://youtu.be/7VwtAAaQWE8"},
	{Key: "khust_route6", Title: "Маршрут №6", Link: "https://youtu.be/RnpOEKIddZw"},
	{Key: "khust_route2", Title: "Маршрут №2", Link: "https://youtu.be/RllCGT6dOPc"},
}

// New builds a catalog over the given products.
func New(products []Product, priceSingle, priceBundle int64) *Catalog {
	c := &Catalog{
		products:    append([]Product(nil), products...),
		byKey:       make(map[string]Product, len(products)),
		priceSingle: priceSingle,
		priceBundle: priceBundle,
	}
	for _, p := range products {
		c.byKey[p.Key] = p
	}
	return c
}

// Items lists every purchasable selection, bundle last.
func (c *Catalog) Items() []Item {
	items := make([]Item, 0, len(c.products)+1)
	for _, p := range c.products {
		items = append(items, Item{Key: p.Key, Title: p.Title, Products: []string{p.Key}, Amount: c.priceSingle})
	}
	return append(items, c.bundle())
}

// Resolve maps a selection key to its item.
func (c *Catalog) Resolve(key string) (Item, error) {
	key = strings.TrimPrefix(strings.TrimSpace(key), "buy_")
	if key == BundleKey {
		return c.bundle(), nil
	}
	p, ok := c.byKey[key]
	if !ok {
		return Item{}, fmt.Errorf("%w: unknown catalog item %q", domainErrors.ErrValidation, key)
	}
	return Item{Key: p.Key, Title: p.Title, Products: []string{p.Key}, Amount: c.priceSingle}, nil
}

// Fulfillment returns one link per product, in product order.
func (c *Catalog) Fulfillment(products []string) ([]string, error) {
	links := make([]string, 0, len(products))
	for _, key := range products {
		p, ok := c.byKey[key]
		if !ok {
			return nil, fmt.Errorf("%w: unknown product %q", domainErrors.ErrValidation, key)
		}
		links = append(links, p.Link)
	}
	return links, nil
}

// Titles renders product keys as human readable titles.
func (c *Catalog) Titles(products []string) string {
	titles := make([]string, 0, len(products))
	for _, key := range products {
		if p, ok := c.byKey[key]; ok {
			titles = append(titles, p.Title)
			continue
		}
		titles = append(titles, key)
	}
	return strings.Join(titles, ", ")
}

func (c *Catalog) bundle() Item {
	keys := make([]string, 0, len(c.products))
	for _, p := range c.products {
		keys = append(keys, p.Key)
	}
	return Item{
		Key:      BundleKey,
		Title:    fmt.Sprintf("Всі %d маршрути", len(c.products)),
		Products: keys,
		Amount:   c.priceBundle,
	}
}
