package kafka

import (
	"context"
	"encoding/json"
	"time"

	"flight-booking/internal/models"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// BookingEvent is the wire format published for every ledger mutation.
type BookingEvent struct {
	EventID       string    `json:"event_id"`
	Type          string    `json:"type"`
	TicketID      int64     `json:"ticket_id,omitempty"`
	FlightID      int64     `json:"flight_id"`
	PassengerName string    `json:"passenger_name,omitempty"`
	Email         string    `json:"email,omitempty"`
	Status        string    `json:"status,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

type Producer struct {
	Writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
		Topic:   topic,
	})
	return &Producer{Writer: writer}
}

// PublishFlightAdded streams the flight creation event.
func (p *Producer) PublishFlightAdded(flight models.Flight) error {
	return p.publish(BookingEvent{
		EventID:    uuid.NewString(),
		Type:       "flight_added",
		FlightID:   flight.FlightID,
		OccurredAt: time.Now(),
	})
}

// PublishTicketBooked streams the booking event.
func (p *Producer) PublishTicketBooked(ticket models.Ticket, passenger models.Passenger) error {
	return p.publish(BookingEvent{
		EventID:       uuid.NewString(),
		Type:          "ticket_booked",
		TicketID:      ticket.TicketID,
		FlightID:      ticket.FlightID,
		PassengerName: passenger.Name,
		Email:         passenger.Email,
		Status:        ticket.Status,
		OccurredAt:    time.Now(),
	})
}

// PublishTicketCancelled streams the cancellation event.
func (p *Producer) PublishTicketCancelled(ticket models.Ticket) error {
	return p.publish(BookingEvent{
		EventID:    uuid.NewString(),
		Type:       "ticket_cancelled",
		TicketID:   ticket.TicketID,
		FlightID:   ticket.FlightID,
		Status:     ticket.Status,
		OccurredAt: time.Now(),
	})
}

func (p *Producer) publish(event BookingEvent) error {
	msgBytes, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(event.EventID),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	if p.Writer != nil {
		return p.Writer.Close()
	}
	return nil
}
