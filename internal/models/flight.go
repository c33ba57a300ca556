package models

import (
	"github.com/uptrace/bun"
)

type Flight struct {
	bun.BaseModel `bun:"table:flights"`

	FlightID    int64  `bun:"flight_id,pk,autoincrement" json:"flight_id"`
	Airline     string `bun:"airline,notnull" json:"airline"`
	Origin      string `bun:"origin,notnull" json:"origin"`
	Destination string `bun:"destination,notnull" json:"destination"`
	// DepartureTime is stored exactly as entered, e.g. "2025-04-20 10:30AM".
	DepartureTime  string  `bun:"departure_time,notnull" json:"departure_time"`
	SeatsAvailable int     `bun:"seats_available,notnull" json:"seats_available"`
	Price          float64 `bun:"price,notnull" json:"price"`
}

type AddFlightRequest struct {
	Airline       string  `json:"airline"`
	Origin        string  `json:"origin"`
	Destination   string  `json:"destination"`
	DepartureTime string  `json:"departure_time"`
	Seats         int     `json:"seats"`
	Price         float64 `json:"price"`
}
