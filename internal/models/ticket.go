package models

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	TicketStatusBooked    = "Booked"
	TicketStatusCancelled = "Cancelled"
)

// Ticket rows are never deleted. Status moves Booked -> Cancelled exactly
// once; Cancelled is terminal.
type Ticket struct {
	bun.BaseModel `bun:"table:tickets"`

	TicketID    int64     `bun:"ticket_id,pk,autoincrement" json:"ticket_id"`
	PassengerID int64     `bun:"passenger_id,notnull" json:"passenger_id"`
	FlightID    int64     `bun:"flight_id,notnull" json:"flight_id"`
	Status      string    `bun:"status,notnull,default:'Booked'" json:"status"`
	BookedAt    time.Time `bun:"booked_at,nullzero" json:"booked_at"`
}

// TicketSummary is the joined row shown on the Manage Tickets and View Data
// surfaces: ticket joined with its passenger and flight.
type TicketSummary struct {
	TicketID      int64  `bun:"ticket_id" json:"ticket_id"`
	Passenger     string `bun:"passenger" json:"passenger"`
	Airline       string `bun:"airline" json:"airline"`
	Origin        string `bun:"origin" json:"origin"`
	Destination   string `bun:"destination" json:"destination"`
	DepartureTime string `bun:"departure_time" json:"departure_time"`
	Status        string `bun:"status" json:"status"`
}

type BookingRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	FlightID int64  `json:"flight_id"`
}

type UpdatePassengerRequest struct {
	Name string `json:"name"`
}
