package qrpass_test

import (
	"testing"

	"flight-booking/internal/booking/qrpass"
	"flight-booking/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateProducesPNG(t *testing.T) {
	summary := models.TicketSummary{
		TicketID:      1,
		Passenger:     "Bob",
		Airline:       "Acme Air",
		Origin:        "VIE",
		Destination:   "LIS",
		DepartureTime: "2025-04-20 10:30AM",
		Status:        models.TicketStatusBooked,
	}

	png, err := qrpass.Generate(summary)
	require.NoError(t, err)
	require.NotEmpty(t, png)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, png[:8])
}
