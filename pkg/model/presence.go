package model

import "time"

const (
	DocumentTypePassport       = "passport"
	DocumentTypeIDCard         = "id_card"
	DocumentTypeDrivingLicense = "driving_license"

	CheckOutReasonManual = "manual"
	CheckOutReasonAuto   = "auto"
)

// GuestProfile is the identity data captured at check-in.
type GuestProfile struct {
	FirstName      string `json:"first_name" bson:"first_name" validate:"required,min=1,max=100"`
	LastName       string `json:"last_name" bson:"last_name" validate:"required,min=1,max=100"`
	BirthDate      string `json:"birth_date" bson:"birth_date" validate:"required,datetime=2006-01-02,adult"`
	Nationality    string `json:"nationality" bson:"nationality" validate:"required,iso3166_1_alpha2"`
	DocumentType   string `json:"document_type" bson:"document_type" validate:"required,oneof=passport id_card driving_license"`
	DocumentNumber string `json:"document_number" bson:"document_number" validate:"required,document_number"`
	Phone          string `json:"phone,omitempty" bson:"phone,omitempty" validate:"omitempty,e164"`
	Address        string `json:"address,omitempty" bson:"address,omitempty" validate:"omitempty,max=200"`
}

// CheckIn is an append-only record of a guest entering a booked room.
type CheckIn struct {
	ID          string       `json:"id,omitempty" bson:"_id,omitempty"`
	BookingID   string       `json:"booking_id" bson:"booking_id"`
	GuestID     string       `json:"guest_id" bson:"guest_id"`
	GuestEmail  string       `json:"guest_email" bson:"guest_email"`
	Profile     GuestProfile `json:"profile" bson:"profile"`
	Document    []byte       `json:"-" bson:"document"`
	CheckedInAt time.Time    `json:"checked_in_at" bson:"checked_in_at"`
}

// CheckOut is an append-only record of a guest leaving a booked room.
type CheckOut struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty"`
	BookingID    string    `json:"booking_id" bson:"booking_id"`
	GuestID      string    `json:"guest_id" bson:"guest_id"`
	GuestEmail   string    `json:"guest_email" bson:"guest_email"`
	Reason       string    `json:"reason" bson:"reason"`
	CheckedOutAt time.Time `json:"checked_out_at" bson:"checked_out_at"`
}

type RoomInvite struct {
	ID           string    `json:"id,omitempty" bson:"_id,omitempty"`
	BookingID    string    `json:"booking_id" bson:"booking_id"`
	InviterEmail string    `json:"inviter_email" bson:"inviter_email"`
	InviteeEmail string    `json:"invitee_email" bson:"invitee_email"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

type CheckInRequest struct {
	BookingID  string       `json:"booking_id"`
	GuestEmail string       `json:"guest_email"`
	Profile    GuestProfile `json:"profile"`
	Document   []byte       `json:"document"`
}

type CheckOutRequest struct {
	BookingID      string `json:"booking_id"`
	RequesterEmail string `json:"-"`
}

type InviteRequest struct {
	InviteeEmail string `json:"invitee_email"`
}

// CheckedInStatus summarizes a guest's presence on one booking.
type CheckedInStatus struct {
	BookingID   string    `json:"booking_id"`
	RoomID      string    `json:"room_id"`
	CheckedInAt time.Time `json:"checked_in_at"`
	Present     bool      `json:"present"`
}

type GuestRoom struct {
	RoomID      string    `json:"room_id"`
	RoomNumber  string    `json:"room_number"`
	BookingID   string    `json:"booking_id"`
	CheckedInAt time.Time `json:"checked_in_at"`
}

type PresentGuest struct {
	BookingID   string    `json:"booking_id"`
	GuestEmail  string    `json:"guest_email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	CheckedInAt time.Time `json:"checked_in_at"`
}
