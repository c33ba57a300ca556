package qrpass

import (
	"encoding/json"

	"flight-booking/internal/models"

	"github.com/skip2/go-qrcode"
)

// Generate renders a ticket's joined summary as a QR PNG, suitable for a
// printable boarding pass. The payload is plain JSON; the ticket ID is what
// the gate would look up, nothing here is a secret.
func Generate(summary models.TicketSummary) ([]byte, error) {
	data, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}
	return qrcode.Encode(string(data), qrcode.Medium, 256)
}
