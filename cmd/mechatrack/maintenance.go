package main

import (
	"context"
	"fmt"

	"github.com/erazemk/mechatrack/internal/store"
)

// seed adds the default parts that are not in stock yet.
func seed(ctx context.Context, a *app) error {
	created, err := store.SeedParts(ctx, &store.Items{DB: a.db}, store.DefaultParts)
	if err != nil {
		return err
	}

	for _, item := range created {
		fmt.Fprintf(a.stdout, "Added %s (%s): %d in stock\n", item.Name, item.Category.Label(), item.Quantity)
	}
	fmt.Fprintf(a.stdout, "Seeded %d of %d default parts.\n", len(created), len(store.DefaultParts))
	return nil
}

// dedupeJobs removes repeated jobs for the same customer and vehicle.
func dedupeJobs(ctx context.Context, a *app) error {
	groups, err := (&store.Jobs{DB: a.db}).Dedupe(ctx)
	if err != nil {
		return err
	}

	removed := 0
	for _, g := range groups {
		for _, job := range g.Removed {
			fmt.Fprintf(a.stdout, "Removed job %d (%s, %s), duplicate of %d\n", job.ID, job.CustomerName, job.VehicleReg, g.KeepID)
			removed++
		}
	}
	fmt.Fprintf(a.stdout, "Removed %d duplicate jobs.\n", removed)
	return nil
}
