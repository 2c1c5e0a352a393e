package validator

import (
	"testing"
	"time"

	"hotelops/pkg/logger"
	"hotelops/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCreate(t *testing.T) {
	today := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	v := NewBookingValidator(logger.Discard())

	tests := []struct {
		name   string
		req    model.CreateBookingRequest
		fields []string
	}{
		{
			name: "valid",
			req:  model.CreateBookingRequest{RoomID: "r1", StartDate: "2024-06-01", EndDate: "2024-06-02", PaymentMethod: "card"},
		},
		{
			name:   "same day",
			req:    model.CreateBookingRequest{RoomID: "r1", StartDate: "2024-06-03", EndDate: "2024-06-03", PaymentMethod: "on_site"},
			fields: []string{"end_date"},
		},
		{
			name:   "in the past",
			req:    model.CreateBookingRequest{RoomID: "r1", StartDate: "2024-05-31", EndDate: "2024-06-03", PaymentMethod: "card"},
			fields: []string{"start_date"},
		},
		{
			name:   "everything missing",
			req:    model.CreateBookingRequest{},
			fields: []string{"room_id", "start_date", "end_date", "payment_method"},
		},
		{
			name:   "wrong date format",
			req:    model.CreateBookingRequest{RoomID: "r1", StartDate: "01.06.2024", EndDate: "2024-06-03", PaymentMethod: "paypal"},
			fields: []string{"start_date", "payment_method"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateCreate(&tt.req, today)
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}

			var validationErrs ValidationErrors
			require.ErrorAs(t, err, &validationErrs)
			fields := validationErrs.Fields()
			assert.Len(t, fields, len(tt.fields))
			for _, field := range tt.fields {
				assert.Contains(t, fields, field)
			}
		})
	}
}
