package db_test

import (
	"context"
	"database/sql"
	"testing"

	bookingdb "flight-booking/internal/booking/db"
	"flight-booking/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) (*bookingdb.DB, *bun.DB) {
	// Connect to an in-memory SQLite DB for testing
	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	if err != nil {
		t.Fatalf("Failed to connect to in-memory database: %v", err)
	}
	// One connection so every query sees the same in-memory database
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	if err := bookingdb.Migrate(bunDB); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return &bookingdb.DB{Bun: bunDB}, bunDB
}

func addTestFlight(t *testing.T, d *bookingdb.DB, seats int) *models.Flight {
	flight := &models.Flight{
		Airline:        "Acme Air",
		Origin:         "VIE",
		Destination:    "LIS",
		DepartureTime:  "2025-04-20 10:30AM",
		SeatsAvailable: seats,
		Price:          100.0,
	}
	require.NoError(t, d.CreateFlight(flight))
	require.NotZero(t, flight.FlightID)
	return flight
}

func addTestPassenger(t *testing.T, d *bookingdb.DB, name, email string) *models.Passenger {
	passenger := &models.Passenger{Name: name, Email: email}
	require.NoError(t, d.CreatePassenger(passenger))
	require.NotZero(t, passenger.PassengerID)
	return passenger
}

func TestMigrateIsIdempotent(t *testing.T) {
	d, bunDB := setupTestDB(t)
	defer bunDB.Close()

	flight := addTestFlight(t, d, 5)

	// Running schema creation again must not touch existing rows
	require.NoError(t, bookingdb.Migrate(bunDB))

	got, err := d.GetFlightByID(flight.FlightID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.SeatsAvailable)
}

func TestListAvailableFlightsExcludesSoldOut(t *testing.T) {
	d, bunDB := setupTestDB(t)
	defer bunDB.Close()

	open := addTestFlight(t, d, 3)
	soldOut := addTestFlight(t, d, 0)

	available, err := d.ListAvailableFlights()
	require.NoError(t, err)
	assert.Len(t, available, 1)
	assert.Equal(t, open.FlightID, available[0].FlightID)

	all, err := d.ListFlights()
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// The sold-out flight is still reachable by ID, just not bookable
	_, err = d.GetFlightByID(soldOut.FlightID)
	assert.NoError(t, err)
	_, err = d.GetAvailableFlightByID(soldOut.FlightID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestBookTicketDecrementsSeats(t *testing.T) {
	d, bunDB := setupTestDB(t)
	defer bunDB.Close()

	flight := addTestFlight(t, d, 5)
	passenger := addTestPassenger(t, d, "Bob", "bob@x.com")

	ticket := &models.Ticket{PassengerID: passenger.PassengerID, FlightID: flight.FlightID}
	require.NoError(t, d.BookTicket(ticket))
	assert.NotZero(t, ticket.TicketID)
	assert.Equal(t, models.TicketStatusBooked, ticket.Status)

	got, err := d.GetFlightByID(flight.FlightID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.SeatsAvailable)

	stored, err := d.GetTicketByID(ticket.TicketID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusBooked, stored.Status)
	assert.Equal(t, passenger.PassengerID, stored.PassengerID)
}

func TestBookTicketSoldOut(t *testing.T) {
	d, bunDB := setupTestDB(t)
	defer bunDB.Close()

	flight := addTestFlight(t, d, 0)
	passenger := addTestPassenger(t, d, "Bob", "bob@x.com")

	ticket := &models.Ticket{PassengerID: passenger.PassengerID, FlightID: flight.FlightID}
	err := d.BookTicket(ticket)
	assert.ErrorIs(t, err, bookingdb.ErrNoSeats)

	// The transaction rolled back: no ticket row, seats still zero
	count, err := bunDB.NewSelect().Model((*models.Ticket)(nil)).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	got, err := d.GetFlightByID(flight.FlightID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.SeatsAvailable)
}

func TestBookTicketLastSeat(t *testing.T) {
	d, bunDB := setupTestDB(t)
	defer bunDB.Close()

	flight := addTestFlight(t, d, 1)
	passenger := addTestPassenger(t, d, "Bob", "bob@x.com")

	first := &models.Ticket{PassengerID: passenger.PassengerID, FlightID: flight.FlightID}
	require.NoError(t, d.BookTicket(first))

	second := &models.Ticket{PassengerID: passenger.PassengerID, FlightID: flight.FlightID}
	err := d.BookTicket(second)
	assert.ErrorIs(t, err, bookingdb.ErrNoSeats)

	got, err := d.GetFlightByID(flight.FlightID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.SeatsAvailable)
}

func TestCancelTicketReturnsSeatOnce(t *testing.T) {
	d, bunDB := setupTestDB(t)
	defer bunDB.Close()

	flight := addTestFlight(t, d, 5)
	passenger := addTestPassenger(t, d, "Bob", "bob@x.com")

	ticket := &models.Ticket{PassengerID: passenger.PassengerID, FlightID: flight.FlightID}
	require.NoError(t, d.BookTicket(ticket))

	cancelled, err := d.CancelTicket(ticket.TicketID)
	require.NoError(t, err)
	assert.Equal(t, models.TicketStatusCancelled, cancelled.Status)
	assert.Equal(t, flight.FlightID, cancelled.FlightID)

	got, err := d.GetFlightByID(flight.FlightID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.SeatsAvailable)

	// Cancelling again must not credit a second seat
	_, err = d.CancelTicket(ticket.TicketID)
	assert.ErrorIs(t, err, bookingdb.ErrAlreadyCancelled)

	got, err = d.GetFlightByID(flight.FlightID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.SeatsAvailable)
}

func TestCancelTicketNotFound(t *testing.T) {
	d, bunDB := setupTestDB(t)
	defer bunDB.Close()

	_, err := d.CancelTicket(42)
	assert.ErrorIs(t, err, bookingdb.ErrTicketNotFound)
}

func TestUpdatePassengerName(t *testing.T) {
	d, bunDB := setupTestDB(t)
	defer bunDB.Close()

	addTestPassenger(t, d, "Bob", "bob@x.com")

	affected, err := d.UpdatePassengerName("bob@x.com", "Robert")
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	passenger, err := d.GetPassengerByEmail("bob@x.com")
	require.NoError(t, err)
	assert.Equal(t, "Robert", passenger.Name)

	affected, err = d.UpdatePassengerName("nobody@x.com", "Nobody")
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

func TestListTicketSummaries(t *testing.T) {
	d, bunDB := setupTestDB(t)
	defer bunDB.Close()

	flight := addTestFlight(t, d, 5)
	passenger := addTestPassenger(t, d, "Bob", "bob@x.com")

	ticket := &models.Ticket{PassengerID: passenger.PassengerID, FlightID: flight.FlightID}
	require.NoError(t, d.BookTicket(ticket))

	summaries, err := d.ListTicketSummaries()
	require.NoError(t, err)
	require.Len(t, summaries, 1)

	row := summaries[0]
	assert.Equal(t, ticket.TicketID, row.TicketID)
	assert.Equal(t, "Bob", row.Passenger)
	assert.Equal(t, "Acme Air", row.Airline)
	assert.Equal(t, "VIE", row.Origin)
	assert.Equal(t, "LIS", row.Destination)
	assert.Equal(t, models.TicketStatusBooked, row.Status)

	single, err := d.GetTicketSummary(ticket.TicketID)
	require.NoError(t, err)
	assert.Equal(t, row, *single)

	_, err = d.GetTicketSummary(999)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

// Round trip covering the whole ledger: add a flight, book it, check the
// listings, cancel, check again.
func TestBookingRoundTrip(t *testing.T) {
	d, bunDB := setupTestDB(t)
	defer bunDB.Close()

	flight := &models.Flight{
		Airline:        "A",
		Origin:         "X",
		Destination:    "Y",
		DepartureTime:  "2025-04-20 10:30AM",
		SeatsAvailable: 5,
		Price:          100.0,
	}
	require.NoError(t, d.CreateFlight(flight))

	available, err := d.ListAvailableFlights()
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, 5, available[0].SeatsAvailable)
	assert.Equal(t, 100.0, available[0].Price)

	passenger := addTestPassenger(t, d, "Bob", "bob@x.com")
	ticket := &models.Ticket{PassengerID: passenger.PassengerID, FlightID: flight.FlightID}
	require.NoError(t, d.BookTicket(ticket))

	got, err := d.GetFlightByID(flight.FlightID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.SeatsAvailable)

	summaries, err := d.ListTicketSummaries()
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "Bob", summaries[0].Passenger)
	assert.Equal(t, "A", summaries[0].Airline)
	assert.Equal(t, "X", summaries[0].Origin)
	assert.Equal(t, "Y", summaries[0].Destination)
	assert.Equal(t, models.TicketStatusBooked, summaries[0].Status)

	_, err = d.CancelTicket(ticket.TicketID)
	require.NoError(t, err)

	got, err = d.GetFlightByID(flight.FlightID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.SeatsAvailable)
}
