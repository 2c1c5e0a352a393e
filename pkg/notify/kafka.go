package notify

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"hotelops/pkg/dates"
	"hotelops/pkg/documents"
	"hotelops/pkg/kafka"
	"hotelops/pkg/logger"
	"hotelops/pkg/middleware"
	"hotelops/pkg/model"
)

const eventSource = "hotelops"

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type kafkaNotifier struct {
	publisher Publisher
	log       *logger.Logger
}

func NewKafkaNotifier(publisher Publisher, log *logger.Logger) Notifier {
	return &kafkaNotifier{
		publisher: publisher,
		log:       log,
	}
}

func (n *kafkaNotifier) SendBookingConfirmation(ctx context.Context, booking *model.Booking, docs []*documents.Document) error {
	body := fmt.Sprintf("<p>Your booking <strong>%s</strong> from %s to %s is confirmed.</p>",
		template.HTMLEscapeString(booking.BookingNumber),
		dates.Format(booking.StartDate),
		dates.Format(booking.EndDate),
	)
	if booking.CheckoutURL != "" {
		body += fmt.Sprintf(`<p><a href="%s">Complete your payment</a></p>`, template.HTMLEscapeString(booking.CheckoutURL))
	}

	job := EmailJob{
		To:          []string{booking.OwnerEmail},
		Subject:     fmt.Sprintf("Booking confirmation %s", booking.BookingNumber),
		HTMLBody:    body,
		Attachments: attachments(docs...),
	}
	return n.publish(ctx, EventBookingConfirmation, booking.ID, job)
}

func (n *kafkaNotifier) SendCancellationNotice(ctx context.Context, booking *model.Booking, doc *documents.Document) error {
	job := EmailJob{
		To:      []string{booking.OwnerEmail},
		Subject: fmt.Sprintf("Booking %s cancelled", booking.BookingNumber),
		HTMLBody: fmt.Sprintf("<p>Your booking <strong>%s</strong> has been cancelled.</p>",
			template.HTMLEscapeString(booking.BookingNumber)),
		Attachments: attachments(doc),
	}
	return n.publish(ctx, EventCancellationNotice, booking.ID, job)
}

func (n *kafkaNotifier) SendInviteNotice(ctx context.Context, invite *model.RoomInvite) error {
	job := EmailJob{
		To:      []string{invite.InviteeEmail},
		Subject: "You have been invited to share a room",
		HTMLBody: fmt.Sprintf("<p>%s invited you to their room. Use booking reference <strong>%s</strong> to check in.</p>",
			template.HTMLEscapeString(invite.InviterEmail),
			template.HTMLEscapeString(invite.BookingID)),
	}
	return n.publish(ctx, EventRoomInvite, invite.BookingID, job)
}

func (n *kafkaNotifier) publish(ctx context.Context, eventType, key string, job EmailJob) error {
	msg, err := kafka.NewMessage().
		WithKey(key).
		WithValue(job).
		WithEventType(eventType).
		WithSource(eventSource).
		WithSchemaVersion("1").
		WithCorrelationID(middleware.RequestID(ctx)).
		Build()
	if err != nil {
		return fmt.Errorf("build %s: %w", eventType, err)
	}

	if err := n.publisher.Publish(ctx, msg); err != nil {
		return fmt.Errorf("publish %s: %w", eventType, err)
	}

	n.log.Info("Email queued",
		"event_type", eventType,
		"key", key,
		"event_id", msg.GetEventID(),
		"to", strings.Join(job.To, ","),
	)
	return nil
}

func attachments(docs ...*documents.Document) []Attachment {
	var out []Attachment
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		out = append(out, Attachment{
			Name:        doc.Name,
			ContentType: doc.ContentType,
			Content:     doc.Content,
		})
	}
	return out
}
