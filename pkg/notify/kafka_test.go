package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"hotelops/pkg/documents"
	"hotelops/pkg/kafka"
	"hotelops/pkg/logger"
	"hotelops/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	messages []kafka.Message
	err      error
}

func (p *recordingPublisher) Publish(_ context.Context, msg kafka.Message) error {
	if p.err != nil {
		return p.err
	}
	p.messages = append(p.messages, msg)
	return nil
}

func decodeJob(t *testing.T, msg kafka.Message) EmailJob {
	t.Helper()
	var job EmailJob
	require.NoError(t, msg.DecodeValue(&job))
	return job
}

func TestSendBookingConfirmation(t *testing.T) {
	pub := &recordingPublisher{}
	n := NewKafkaNotifier(pub, logger.Discard())
	booking := &model.Booking{
		ID:            "b-1",
		BookingNumber: "BK-20240601-ABCDEF12",
		OwnerEmail:    "alice@example.com",
		StartDate:     time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:       time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC),
		CheckoutURL:   "https://pay.example.com/s/1",
	}
	docs := []*documents.Document{
		{Type: documents.TypeConfirmation, Name: "c.html", ContentType: documents.ContentTypeHTML, Content: []byte("c")},
		nil,
		{Type: documents.TypeInvoice, Name: "i.html", ContentType: documents.ContentTypeHTML, Content: []byte("i")},
	}

	require.NoError(t, n.SendBookingConfirmation(context.Background(), booking, docs))
	require.Len(t, pub.messages, 1)

	msg := pub.messages[0]
	assert.Equal(t, "b-1", msg.Key)
	assert.Equal(t, EventBookingConfirmation, msg.GetEventType())

	job := decodeJob(t, msg)
	assert.Equal(t, []string{"alice@example.com"}, job.To)
	assert.Contains(t, job.Subject, "BK-20240601-ABCDEF12")
	assert.Contains(t, job.HTMLBody, "2024-06-01")
	assert.Contains(t, job.HTMLBody, "https://pay.example.com/s/1")
	require.Len(t, job.Attachments, 2)
	assert.Equal(t, []byte("i"), job.Attachments[1].Content)
}

func TestSendInviteNotice(t *testing.T) {
	pub := &recordingPublisher{}
	n := NewKafkaNotifier(pub, logger.Discard())

	err := n.SendInviteNotice(context.Background(), &model.RoomInvite{
		BookingID:    "b-1",
		InviterEmail: "alice@example.com",
		InviteeEmail: "bob@example.com",
	})
	require.NoError(t, err)

	job := decodeJob(t, pub.messages[0])
	assert.Equal(t, []string{"bob@example.com"}, job.To)
	assert.Contains(t, job.HTMLBody, "alice@example.com")
	assert.Equal(t, EventRoomInvite, pub.messages[0].GetEventType())
}

func TestSendCancellationNotice_PublishFailure(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	n := NewKafkaNotifier(pub, logger.Discard())

	err := n.SendCancellationNotice(context.Background(), &model.Booking{ID: "b-1", OwnerEmail: "a@example.com"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), EventCancellationNotice)
}
