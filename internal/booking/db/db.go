package db

import (
	"context"
	"database/sql"
	"errors"

	"flight-booking/internal/models"

	"github.com/uptrace/bun"
)

// Sentinel errors surfaced by the transactional operations. The service
// layer maps these onto its public taxonomy.
var (
	ErrNoSeats          = errors.New("no seats available")
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrAlreadyCancelled = errors.New("ticket already cancelled")
)

type DB struct {
	Bun *bun.DB
}

// ---------------- FLIGHTS ----------------

func (d *DB) CreateFlight(flight *models.Flight) error {
	_, err := d.Bun.NewInsert().Model(flight).Exec(context.Background())
	return err
}

func (d *DB) ListFlights() ([]models.Flight, error) {
	var flights []models.Flight
	err := d.Bun.NewSelect().
		Model(&flights).
		Order("flight_id").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return flights, nil
}

// ListAvailableFlights returns flights that still have seats. Sold-out
// flights (seats_available = 0) are excluded.
func (d *DB) ListAvailableFlights() ([]models.Flight, error) {
	var flights []models.Flight
	err := d.Bun.NewSelect().
		Model(&flights).
		Where("seats_available > 0").
		Order("flight_id").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return flights, nil
}

func (d *DB) GetFlightByID(id int64) (*models.Flight, error) {
	var flight models.Flight
	err := d.Bun.NewSelect().
		Model(&flight).
		Where("flight_id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &flight, nil
}

// GetAvailableFlightByID re-fetches a flight with the seats_available > 0
// constraint, so a flight sold out since the listing is treated as absent.
func (d *DB) GetAvailableFlightByID(id int64) (*models.Flight, error) {
	var flight models.Flight
	err := d.Bun.NewSelect().
		Model(&flight).
		Where("flight_id = ?", id).
		Where("seats_available > 0").
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &flight, nil
}

// ---------------- PASSENGERS ----------------

func (d *DB) CreatePassenger(passenger *models.Passenger) error {
	_, err := d.Bun.NewInsert().Model(passenger).Exec(context.Background())
	return err
}

func (d *DB) GetPassengerByEmail(email string) (*models.Passenger, error) {
	var passenger models.Passenger
	err := d.Bun.NewSelect().
		Model(&passenger).
		Where("email = ?", email).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &passenger, nil
}

func (d *DB) UpdatePassengerName(email, name string) (int64, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Passenger)(nil)).
		Set("name = ?", name).
		Where("email = ?", email).
		Exec(context.Background())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// ---------------- TICKETS ----------------

func (d *DB) GetTicketByID(id int64) (*models.Ticket, error) {
	var ticket models.Ticket
	err := d.Bun.NewSelect().
		Model(&ticket).
		Where("ticket_id = ?", id).
		Limit(1).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// BookTicket inserts the ticket and takes one seat from its flight in a
// single transaction: either both rows persist or neither does.
//
// The seat decrement is a conditional UPDATE guarded by seats_available > 0.
// A zero affected-row count means the flight sold out between the
// availability check and here, so the transaction rolls back with ErrNoSeats
// and seats_available can never go below zero.
func (d *DB) BookTicket(ticket *models.Ticket) error {
	ctx := context.Background()
	return d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewUpdate().
			Model((*models.Flight)(nil)).
			Set("seats_available = seats_available - 1").
			Where("flight_id = ?", ticket.FlightID).
			Where("seats_available > 0").
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrNoSeats
		}

		ticket.Status = models.TicketStatusBooked
		_, err = tx.NewInsert().Model(ticket).Exec(ctx)
		return err
	})
}

// CancelTicket flips a Booked ticket to Cancelled and returns its seat to
// the flight, both in one transaction.
//
// The status flip is conditional on the current status being Booked, so
// cancelling an already-cancelled ticket fails with ErrAlreadyCancelled
// instead of crediting the flight a second seat.
func (d *DB) CancelTicket(id int64) (*models.Ticket, error) {
	ctx := context.Background()
	var ticket models.Ticket
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		err := tx.NewSelect().
			Model(&ticket).
			Where("ticket_id = ?", id).
			Limit(1).
			Scan(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrTicketNotFound
			}
			return err
		}

		res, err := tx.NewUpdate().
			Model((*models.Ticket)(nil)).
			Set("status = ?", models.TicketStatusCancelled).
			Where("ticket_id = ?", id).
			Where("status = ?", models.TicketStatusBooked).
			Exec(ctx)
		if err != nil {
			return err
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrAlreadyCancelled
		}

		_, err = tx.NewUpdate().
			Model((*models.Flight)(nil)).
			Set("seats_available = seats_available + 1").
			Where("flight_id = ?", ticket.FlightID).
			Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	ticket.Status = models.TicketStatusCancelled
	return &ticket, nil
}

// ---------------- RELATION QUERIES ----------------

// ListTicketSummaries joins tickets with their passenger and flight rows
// for the Manage Tickets and View Data surfaces.
func (d *DB) ListTicketSummaries() ([]models.TicketSummary, error) {
	var summaries []models.TicketSummary
	err := d.Bun.NewSelect().
		Model((*models.Ticket)(nil)).
		ColumnExpr("ticket.ticket_id").
		ColumnExpr("p.name AS passenger").
		ColumnExpr("f.airline, f.origin, f.destination, f.departure_time").
		ColumnExpr("ticket.status").
		Join("JOIN passengers p ON p.passenger_id = ticket.passenger_id").
		Join("JOIN flights f ON f.flight_id = ticket.flight_id").
		Order("ticket.ticket_id").
		Scan(context.Background(), &summaries)
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

func (d *DB) GetTicketSummary(id int64) (*models.TicketSummary, error) {
	var summary models.TicketSummary
	err := d.Bun.NewSelect().
		Model((*models.Ticket)(nil)).
		ColumnExpr("ticket.ticket_id").
		ColumnExpr("p.name AS passenger").
		ColumnExpr("f.airline, f.origin, f.destination, f.departure_time").
		ColumnExpr("ticket.status").
		Join("JOIN passengers p ON p.passenger_id = ticket.passenger_id").
		Join("JOIN flights f ON f.flight_id = ticket.flight_id").
		Where("ticket.ticket_id = ?", id).
		Limit(1).
		Scan(context.Background(), &summary)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}
