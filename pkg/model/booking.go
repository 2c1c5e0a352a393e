package model

import (
	"time"
)

const (
	BookingStatusPending   = "PENDING"
	BookingStatusActive    = "ACTIVE"
	BookingStatusCompleted = "COMPLETED"
	BookingStatusCancelled = "CANCELLED"

	PaymentMethodCard   = "card"
	PaymentMethodOnSite = "on_site"
)

// BlockingStatuses are the statuses that hold a room for their date range.
var BlockingStatuses = []string{
	BookingStatusPending,
	BookingStatusActive,
	BookingStatusCompleted,
}

type Booking struct {
	ID               string     `json:"id,omitempty" bson:"_id,omitempty"`
	BookingNumber    string     `json:"booking_number" bson:"booking_number"`
	RoomID           string     `json:"room_id" bson:"room_id"`
	OwnerID          string     `json:"owner_id" bson:"owner_id"`
	OwnerEmail       string     `json:"owner_email" bson:"owner_email"`
	StartDate        time.Time  `json:"start_date" bson:"start_date"`
	EndDate          time.Time  `json:"end_date" bson:"end_date"`
	Status           string     `json:"status" bson:"status"`
	Paid             bool       `json:"paid" bson:"paid"`
	PaymentMethod    string     `json:"payment_method" bson:"payment_method"`
	PaymentSessionID string     `json:"payment_session_id,omitempty" bson:"payment_session_id,omitempty"`
	PaymentIntentID  string     `json:"payment_intent_id,omitempty" bson:"payment_intent_id,omitempty"`
	CheckoutURL      string     `json:"checkout_url,omitempty" bson:"checkout_url,omitempty"`
	TotalAmount      int64      `json:"total_amount" bson:"total_amount"`
	Currency         string     `json:"currency" bson:"currency"`
	CancellationDate *time.Time `json:"cancellation_date,omitempty" bson:"cancellation_date,omitempty"`
	PresenceVersion  int64      `json:"-" bson:"presence_version"`
	CreatedAt        time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at" bson:"updated_at"`
}

func (b *Booking) IsTerminal() bool {
	return b.Status == BookingStatusCancelled || b.Status == BookingStatusCompleted
}

// Covers reports whether day falls inside the booking's inclusive date range.
func (b *Booking) Covers(day time.Time) bool {
	return !day.Before(b.StartDate) && !day.After(b.EndDate)
}

func (b *Booking) Nights() int {
	return int(b.EndDate.Sub(b.StartDate).Hours() / 24)
}

// CreateBookingRequest carries calendar dates as YYYY-MM-DD strings.
type CreateBookingRequest struct {
	RoomID        string `json:"room_id" validate:"required"`
	StartDate     string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate       string `json:"end_date" validate:"required,datetime=2006-01-02"`
	PaymentMethod string `json:"payment_method" validate:"required,oneof=card on_site"`
}
