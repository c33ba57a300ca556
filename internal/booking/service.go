package booking

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"flight-booking/internal/booking/db"
	"flight-booking/internal/logger"
	"flight-booking/internal/models"

	"github.com/google/uuid"
)

type DBLayer interface {
	CreateFlight(flight *models.Flight) error
	ListFlights() ([]models.Flight, error)
	ListAvailableFlights() ([]models.Flight, error)
	GetAvailableFlightByID(id int64) (*models.Flight, error)
	CreatePassenger(passenger *models.Passenger) error
	GetPassengerByEmail(email string) (*models.Passenger, error)
	UpdatePassengerName(email, name string) (int64, error)
	BookTicket(ticket *models.Ticket) error
	CancelTicket(id int64) (*models.Ticket, error)
	GetTicketSummary(id int64) (*models.TicketSummary, error)
	ListTicketSummaries() ([]models.TicketSummary, error)
}

// FlightLock serializes bookings per flight_id. Optional: the conditional
// seat decrement in the store is the hard guarantee, the lock just keeps
// concurrent bookings on one flight from racing to the same last seat.
type FlightLock interface {
	LockFlight(flightID int64, token string) (bool, error)
	UnlockFlight(flightID int64, token string) error
}

type EventPublisher interface {
	PublishFlightAdded(flight models.Flight) error
	PublishTicketBooked(ticket models.Ticket, passenger models.Passenger) error
	PublishTicketCancelled(ticket models.Ticket) error
}

type BookingService struct {
	DB     DBLayer
	Redis  FlightLock
	Kafka  EventPublisher
	Logger *logger.Logger
}

func NewBookingService(dbLayer DBLayer, lock FlightLock, publisher EventPublisher, log *logger.Logger) *BookingService {
	return &BookingService{DB: dbLayer, Redis: lock, Kafka: publisher, Logger: log}
}

// ---------------- FLIGHTS ----------------

func (s *BookingService) ListAvailableFlights() ([]models.Flight, error) {
	return s.DB.ListAvailableFlights()
}

func (s *BookingService) ListFlights() ([]models.Flight, error) {
	return s.DB.ListFlights()
}

// AddFlight accepts inputs as given: no route or departure-time validation,
// only the non-negativity the input layer promises.
func (s *BookingService) AddFlight(req models.AddFlightRequest) (*models.Flight, error) {
	if req.Seats < 0 || req.Price < 0 {
		return nil, fmt.Errorf("%w: seats and price must be non-negative", ErrInvalidInput)
	}

	flight := &models.Flight{
		Airline:        req.Airline,
		Origin:         req.Origin,
		Destination:    req.Destination,
		DepartureTime:  req.DepartureTime,
		SeatsAvailable: req.Seats,
		Price:          req.Price,
	}
	if err := s.DB.CreateFlight(flight); err != nil {
		return nil, err
	}

	if s.Kafka != nil {
		if err := s.Kafka.PublishFlightAdded(*flight); err != nil {
			s.logKafkaError("flight_added", err)
		}
	}
	return flight, nil
}

// ---------------- BOOKING ----------------

// BookFlight books one seat on the flight for the passenger identified by
// email, creating the passenger row on first contact. The stored name of an
// existing passenger is left alone even when the submitted name differs:
// email is the identity key (UpdatePassengerName exists for corrections).
func (s *BookingService) BookFlight(req models.BookingRequest) (*models.Ticket, error) {
	if req.Name == "" || req.Email == "" {
		return nil, fmt.Errorf("%w: name and email are required", ErrInvalidInput)
	}

	if s.Redis != nil {
		token := uuid.NewString()
		ok, err := s.Redis.LockFlight(req.FlightID, token)
		if err != nil {
			return nil, fmt.Errorf("flight lock error: %w", err)
		}
		if !ok {
			return nil, ErrNotAvailable
		}
		defer func() {
			_ = s.Redis.UnlockFlight(req.FlightID, token)
		}()
	}

	// Freshness check: the flight may have sold out since it was listed.
	_, err := s.DB.GetAvailableFlightByID(req.FlightID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotAvailable
		}
		return nil, err
	}

	passenger, err := s.getOrCreatePassenger(req.Name, req.Email)
	if err != nil {
		return nil, err
	}

	ticket := &models.Ticket{
		PassengerID: passenger.PassengerID,
		FlightID:    req.FlightID,
		Status:      models.TicketStatusBooked,
		BookedAt:    time.Now(),
	}
	if err := s.DB.BookTicket(ticket); err != nil {
		if errors.Is(err, db.ErrNoSeats) {
			return nil, ErrNotAvailable
		}
		return nil, err
	}

	if s.Kafka != nil {
		if err := s.Kafka.PublishTicketBooked(*ticket, *passenger); err != nil {
			s.logKafkaError("ticket_booked", err)
		}
	}
	return ticket, nil
}

func (s *BookingService) getOrCreatePassenger(name, email string) (*models.Passenger, error) {
	passenger, err := s.DB.GetPassengerByEmail(email)
	if err == nil {
		return passenger, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	passenger = &models.Passenger{Name: name, Email: email}
	if err := s.DB.CreatePassenger(passenger); err != nil {
		return nil, err
	}
	return passenger, nil
}

// ---------------- TICKETS ----------------

func (s *BookingService) ListTickets() ([]models.TicketSummary, error) {
	return s.DB.ListTicketSummaries()
}

func (s *BookingService) GetTicket(id int64) (*models.TicketSummary, error) {
	summary, err := s.DB.GetTicketSummary(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return summary, nil
}

// CancelTicket transitions the ticket to Cancelled and returns its seat to
// the flight. A missing ticket is an error, not a silent no-op, and a
// repeated cancellation does not credit the seat twice.
func (s *BookingService) CancelTicket(id int64) (*models.Ticket, error) {
	ticket, err := s.DB.CancelTicket(id)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrTicketNotFound):
			return nil, ErrNotFound
		case errors.Is(err, db.ErrAlreadyCancelled):
			return nil, ErrAlreadyCancelled
		}
		return nil, err
	}

	if s.Kafka != nil {
		if err := s.Kafka.PublishTicketCancelled(*ticket); err != nil {
			s.logKafkaError("ticket_cancelled", err)
		}
	}
	return ticket, nil
}

// ---------------- PASSENGERS ----------------

// UpdatePassengerName is the explicit path for changing a stored passenger
// name; booking never does this implicitly.
func (s *BookingService) UpdatePassengerName(email, name string) error {
	if name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	affected, err := s.DB.UpdatePassengerName(email, name)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *BookingService) logKafkaError(event string, err error) {
	if s.Logger != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("publish %s failed: %v", event, err))
	}
}
