package booking_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"flight-booking/internal/booking"
	"flight-booking/internal/booking/qrpass"
	"flight-booking/internal/logger"
	"flight-booking/internal/models"
	"flight-booking/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	BookingService *booking.BookingService
	Logger         *logger.Logger
}

func NewHandler(bookingService *booking.BookingService, log *logger.Logger) *Handler {
	return &Handler{BookingService: bookingService, Logger: log}
}

func (h *Handler) Register(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/flights", h.ListFlights)
		r.Post("/flights", h.AddFlight)
		r.Get("/tickets", h.ListTickets)
		r.Post("/tickets", h.BookTicket)
		r.Get("/tickets/{ticketID}", h.GetTicket)
		r.Get("/tickets/{ticketID}/qr", h.TicketQR)
		r.Delete("/tickets/{ticketID}", h.CancelTicket)
		r.Put("/passengers/{email}", h.UpdatePassenger)
	})
}

// ListFlights serves the Manage Flights and View Data tables; with
// ?available=true it serves the Book a Flight table instead.
func (h *Handler) ListFlights(w http.ResponseWriter, r *http.Request) {
	var (
		flights []models.Flight
		err     error
	)
	if r.URL.Query().Get("available") == "true" {
		flights, err = h.BookingService.ListAvailableFlights()
	} else {
		flights, err = h.BookingService.ListFlights()
	}
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListFlights: %v", err))
		h.writeError(w, "Failed to list flights", err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("flights", flights))
}

func (h *Handler) AddFlight(w http.ResponseWriter, r *http.Request) {
	var req models.AddFlightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("AddFlight: failed to decode request body: %v", err))
		h.writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	flight, err := h.BookingService.AddFlight(req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("AddFlight: %v", err))
		h.writeError(w, "Failed to add flight", err)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("AddFlight: flight %d added", flight.FlightID))
	h.writeJSON(w, http.StatusCreated, utils.SuccessResponse("flight added", flight))
}

func (h *Handler) BookTicket(w http.ResponseWriter, r *http.Request) {
	var req models.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("BookTicket: failed to decode request body: %v", err))
		h.writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	ticket, err := h.BookingService.BookFlight(req)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("BookTicket: booking failed: %v", err))
		h.writeError(w, "Booking failed", err)
		return
	}

	h.Logger.LogBooking("BOOK", ticket.TicketID, fmt.Sprintf("flight=%d passenger=%d", ticket.FlightID, ticket.PassengerID))
	h.writeJSON(w, http.StatusCreated, utils.SuccessResponse("booking confirmed", ticket))
}

func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	tickets, err := h.BookingService.ListTickets()
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("ListTickets: %v", err))
		h.writeError(w, "Failed to list tickets", err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("tickets", tickets))
}

func (h *Handler) GetTicket(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ticketID(w, r)
	if !ok {
		return
	}

	summary, err := h.BookingService.GetTicket(id)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("GetTicket: %v", err))
		h.writeError(w, "Failed to get ticket", err)
		return
	}
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("ticket", summary))
}

// TicketQR renders the ticket's boarding-pass QR as a PNG.
func (h *Handler) TicketQR(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ticketID(w, r)
	if !ok {
		return
	}

	summary, err := h.BookingService.GetTicket(id)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("TicketQR: %v", err))
		h.writeError(w, "Failed to get ticket", err)
		return
	}

	png, err := qrpass.Generate(*summary)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("TicketQR: failed to generate QR: %v", err))
		h.writeError(w, "Failed to generate QR", err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (h *Handler) CancelTicket(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ticketID(w, r)
	if !ok {
		return
	}

	ticket, err := h.BookingService.CancelTicket(id)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("CancelTicket: %v", err))
		h.writeError(w, "Cancellation failed", err)
		return
	}

	h.Logger.LogBooking("CANCEL", ticket.TicketID, fmt.Sprintf("flight=%d seat returned", ticket.FlightID))
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("ticket cancelled", ticket))
}

func (h *Handler) UpdatePassenger(w http.ResponseWriter, r *http.Request) {
	email := chi.URLParam(r, "email")

	var req models.UpdatePassengerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdatePassenger: failed to decode request body: %v", err))
		h.writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid request body", err.Error()))
		return
	}

	if err := h.BookingService.UpdatePassengerName(email, req.Name); err != nil {
		h.Logger.Error("API", fmt.Sprintf("UpdatePassenger: %v", err))
		h.writeError(w, "Failed to update passenger", err)
		return
	}

	h.Logger.Info("API", fmt.Sprintf("UpdatePassenger: name updated for %s", email))
	h.writeJSON(w, http.StatusOK, utils.SuccessResponse("passenger updated", nil))
}

func (h *Handler) ticketID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "ticketID"), 10, 64)
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, utils.ErrorResponse("Invalid ticket ID", err.Error()))
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, message string, err error) {
	h.writeJSON(w, statusForError(err), utils.ErrorResponse(message, err.Error()))
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.Logger.Error("API", fmt.Sprintf("failed to encode response: %v", err))
	}
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, booking.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, booking.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, booking.ErrNotAvailable), errors.Is(err, booking.ErrAlreadyCancelled):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
