package seed

import (
	"context"
	"fmt"

	"eshop/internal/domain"
	"github.com/shopspring/decimal"
)

type categoryWriter interface {
	EnsureByName(ctx context.Context, name string) (*domain.Category, error)
}

type productWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type productSeed struct {
	Category    string
	Name        string
	Description string
	Price       string
	Image       string
}

var demoProducts = []productSeed{
	{"Books", "Go in Depth", "Deep dive into Go programming techniques.", "49.99", "Go+Book"},
	{"Books", "Web Services Unleashed", "Comprehensive guide for web service developers.", "59.99", "Web+Book"},
	{"Electronics", "Noise Cancelling Headphones", "Wireless over-ear headphones with ANC.", "199.99", "Headphones"},
	{"Electronics", "4K Monitor", "27-inch UHD monitor with HDR.", "329.99", "4K+Monitor"},
	{"Electronics", "Smart Speaker", "Voice assistant for your smart home.", "99.99", "Smart+Speaker"},
	{"Home & Kitchen", "Chef Knife Set", "Professional stainless steel knives.", "89.99", "Knife+Set"},
	{"Home & Kitchen", "Espresso Machine", "Compact espresso machine for home baristas.", "249.99", "Espresso+Machine"},
	{"Home & Kitchen", "Air Fryer", "Healthier frying with little to no oil.", "129.99", "Air+Fryer"},
	{"Fitness", "Yoga Mat", "Non-slip mat for yoga and workouts.", "29.99", "Yoga+Mat"},
	{"Fitness", "Adjustable Dumbbells", "Space-saving dumbbell pair with quick weight changes.", "199.99", "Dumbbells"},
	{"Fitness", "Resistance Bands", "Set of resistance bands for strength training.", "24.99", "Resistance+Bands"},
	{"Fitness", "Stainless Steel Water Bottle", "Insulated bottle to keep drinks cold or hot.", "19.99", "Water+Bottle"},
}

// Apply inserts the demo catalog. It is idempotent: categories are matched by
// name and products by (category, name).
func Apply(ctx context.Context, categories categoryWriter, products productWriter) (int, error) {
	ids := make(map[string]string)
	for _, p := range demoProducts {
		if _, ok := ids[p.Category]; ok {
			continue
		}
		c, err := categories.EnsureByName(ctx, p.Category)
		if err != nil {
			return 0, fmt.Errorf("ensure category %s: %w", p.Category, err)
		}
		ids[p.Category] = c.ID
	}

	for _, p := range demoProducts {
		_, err := products.Upsert(ctx, domain.Product{
			Name:        p.Name,
			Description: p.Description,
			Price:       decimal.RequireFromString(p.Price),
			ImageURL:    "https://via.placeholder.com/300x200?text=" + p.Image,
			CategoryID:  ids[p.Category],
		})
		if err != nil {
			return 0, fmt.Errorf("upsert product %s: %w", p.Name, err)
		}
	}
	return len(demoProducts), nil
}
