package store

import (
	"context"

	"github.com/erazemk/mechatrack/internal/model"
)

// DefaultParts is the starter stock of common parts.
var DefaultParts = []model.NewItem{
	part("Engine Block", "Engine and Powertrain", 2, 45000),
	part("Piston Set", "Engine and Powertrain", 8, 12000),
	part("Brake Pads (Front)", "Brakes", 15, 2500),
	part("Brake Disc", "Brakes", 10, 6000),
	part("Oil Filter", "Maintenance", 30, 800),
	part("Air Filter", "Maintenance", 25, 1200),
}

func part(name, category string, quantity int, price float64) model.NewItem {
	return model.NewItem{Name: name, Category: &category, Quantity: &quantity, Price: &price}
}

// SeedParts inserts each part whose name is not in stock yet and returns
// the items it created.
func SeedParts(ctx context.Context, items *Items, parts []model.NewItem) ([]model.Item, error) {
	created := []model.Item{}
	for _, p := range parts {
		existing, err := items.FindByName(ctx, p.Name)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			continue
		}
		item, err := items.Create(ctx, p)
		if err != nil {
			return nil, err
		}
		created = append(created, *item)
	}
	return created, nil
}
