package validator

import (
	"testing"
	"time"

	"hotelops/pkg/logger"
	"hotelops/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator() *CheckInValidator {
	v := NewCheckInValidator(logger.Discard(), time.UTC, 64)
	v.now = func() time.Time { return time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC) }
	return v
}

func validRequest() *model.CheckInRequest {
	return &model.CheckInRequest{
		BookingID:  "665f1f77bcf86cd799439011",
		GuestEmail: "alice@example.com",
		Profile: model.GuestProfile{
			FirstName:      "Alice",
			LastName:       "Smith",
			BirthDate:      "1990-04-12",
			Nationality:    "GB",
			DocumentType:   model.DocumentTypePassport,
			DocumentNumber: "X1234567",
			Phone:          "+447911123456",
		},
		Document: []byte("scan"),
	}
}

func TestValidateCheckIn_Valid(t *testing.T) {
	assert.NoError(t, newTestValidator().ValidateCheckIn(validRequest()))
}

func TestValidateCheckIn_SingleField(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.CheckInRequest)
		field  string
	}{
		{"missing first name", func(r *model.CheckInRequest) { r.Profile.FirstName = "" }, "first_name"},
		{"bad birth date", func(r *model.CheckInRequest) { r.Profile.BirthDate = "12/04/1990" }, "birth_date"},
		{"turns 18 tomorrow", func(r *model.CheckInRequest) { r.Profile.BirthDate = "2006-06-16" }, "birth_date"},
		{"unknown country", func(r *model.CheckInRequest) { r.Profile.Nationality = "XX" }, "nationality"},
		{"unknown document type", func(r *model.CheckInRequest) { r.Profile.DocumentType = "library_card" }, "document_type"},
		{"short document number", func(r *model.CheckInRequest) { r.Profile.DocumentNumber = "AB12" }, "document_number"},
		{"lowercase document number", func(r *model.CheckInRequest) { r.Profile.DocumentNumber = "ab12345" }, "document_number"},
		{"bad phone", func(r *model.CheckInRequest) { r.Profile.Phone = "0791112" }, "phone"},
		{"missing document", func(r *model.CheckInRequest) { r.Document = nil }, "document"},
		{"oversized document", func(r *model.CheckInRequest) { r.Document = make([]byte, 65) }, "document"},
		{"bad email", func(r *model.CheckInRequest) { r.GuestEmail = "alice" }, "guest_email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			err := newTestValidator().ValidateCheckIn(req)
			require.Error(t, err)

			var validationErrs ValidationErrors
			require.ErrorAs(t, err, &validationErrs)
			assert.Len(t, validationErrs, 1, "got %v", validationErrs)
			assert.Contains(t, validationErrs.Fields(), tt.field)
		})
	}
}

func TestValidateCheckIn_ReportsEveryField(t *testing.T) {
	req := validRequest()
	req.Profile.LastName = ""
	req.Profile.BirthDate = "2010-01-01"
	req.Profile.DocumentNumber = "??"
	req.Document = nil

	err := newTestValidator().ValidateCheckIn(req)

	var validationErrs ValidationErrors
	require.ErrorAs(t, err, &validationErrs)
	fields := validationErrs.Fields()
	assert.Len(t, fields, 4)
	assert.Equal(t, "guest must be at least 18 years old", fields["birth_date"])
	for _, field := range []string{"last_name", "document_number", "document"} {
		assert.Contains(t, fields, field)
	}
}

func TestValidateEmail(t *testing.T) {
	v := newTestValidator()
	assert.NoError(t, v.ValidateEmail("invitee_email", "bob@example.com"))
	assert.Error(t, v.ValidateEmail("invitee_email", "bob"))
	assert.Error(t, v.ValidateEmail("invitee_email", ""))
}
