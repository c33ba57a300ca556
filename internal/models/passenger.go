package models

import (
	"github.com/uptrace/bun"
)

// Passenger is created on first booking with a previously unseen email.
// Email is the identity key: repeat bookings reuse the existing row and
// never touch the stored name.
type Passenger struct {
	bun.BaseModel `bun:"table:passengers"`

	PassengerID int64  `bun:"passenger_id,pk,autoincrement" json:"passenger_id"`
	Name        string `bun:"name,notnull" json:"name"`
	Email       string `bun:"email,unique,notnull" json:"email"`
}
