package db

import (
	"context"

	"flight-booking/internal/models"

	"github.com/uptrace/bun"
)

// Migrate creates the three tables if they are absent. It is safe to run on
// every startup; existing tables and their rows are left untouched.
func Migrate(db *bun.DB) error {
	ctx := context.Background()

	tables := []interface{}{
		(*models.Passenger)(nil),
		(*models.Flight)(nil),
		(*models.Ticket)(nil),
	}
	for _, m := range tables {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}
