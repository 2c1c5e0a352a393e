// Package notify queues guest emails on Kafka and delivers them over SMTP.
package notify

import (
	"context"

	"hotelops/pkg/documents"
	"hotelops/pkg/model"
)

const (
	EventBookingConfirmation = "email.booking_confirmation"
	EventCancellationNotice  = "email.cancellation_notice"
	EventRoomInvite          = "email.room_invite"
)

type Notifier interface {
	SendBookingConfirmation(ctx context.Context, booking *model.Booking, docs []*documents.Document) error
	SendCancellationNotice(ctx context.Context, booking *model.Booking, doc *documents.Document) error
	SendInviteNotice(ctx context.Context, invite *model.RoomInvite) error
}

// EmailJob is the payload published to the notifications topic.
type EmailJob struct {
	To          []string     `json:"to"`
	Subject     string       `json:"subject"`
	HTMLBody    string       `json:"html_body"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

type Attachment struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Content     []byte `json:"content"`
}
