package notify

import (
	"context"
	"errors"
	"testing"

	"hotelops/pkg/kafka"
	"hotelops/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wneessen/go-mail"
)

type fakeSender struct {
	sent []*mail.Msg
	err  error
}

func (f *fakeSender) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, messages...)
	return nil
}

func jobMessage(job any) kafka.Message {
	msg, err := kafka.NewMessage().WithKey("b-1").WithValue(job).WithEventType(EventBookingConfirmation).Build()
	if err != nil {
		panic(err)
	}
	return msg
}

func TestMailer_HandleMessage(t *testing.T) {
	client := &fakeSender{}
	m := newMailer(client, "reservations@hotel.example", logger.Discard())

	err := m.HandleMessage(context.Background(), jobMessage(EmailJob{
		To:       []string{"alice@example.com"},
		Subject:  "Booking confirmation",
		HTMLBody: "<p>hi</p>",
		Attachments: []Attachment{
			{Name: "invoice.html", ContentType: "text/html", Content: []byte("<html></html>")},
		},
	}))
	require.NoError(t, err)
	require.Len(t, client.sent, 1)

	msg := client.sent[0]
	recipients, err := msg.GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"alice@example.com"}, recipients)
	assert.Equal(t, []string{"Booking confirmation"}, msg.GetGenHeader(mail.HeaderSubject))
	assert.Len(t, msg.GetAttachments(), 1)
}

func TestMailer_MalformedPayloadIsPermanent(t *testing.T) {
	m := newMailer(&fakeSender{}, "reservations@hotel.example", logger.Discard())

	msg, err := kafka.NewMessage().WithKey("b-1").WithRawValue([]byte("{not json")).Build()
	require.NoError(t, err)
	err = m.HandleMessage(context.Background(), msg)

	require.Error(t, err)
	assert.Equal(t, kafka.ErrorTypePermanent, kafka.ClassifyError(err))
}

func TestMailer_InvalidRecipientIsPermanent(t *testing.T) {
	m := newMailer(&fakeSender{}, "reservations@hotel.example", logger.Discard())

	err := m.HandleMessage(context.Background(), jobMessage(EmailJob{To: []string{"not an address"}}))

	require.Error(t, err)
	assert.False(t, kafka.ShouldRetry(err, 0, 3))
}

func TestMailer_SMTPFailureIsRetried(t *testing.T) {
	m := newMailer(&fakeSender{err: errors.New("421 service not available")}, "reservations@hotel.example", logger.Discard())

	err := m.HandleMessage(context.Background(), jobMessage(EmailJob{To: []string{"alice@example.com"}, Subject: "x"}))

	require.Error(t, err)
	assert.True(t, kafka.ShouldRetry(err, 0, 3))
}

func TestMailer_RejectedRecipientIsPermanent(t *testing.T) {
	m := newMailer(&fakeSender{err: &mail.SendError{Reason: mail.ErrSMTPRcptTo}}, "reservations@hotel.example", logger.Discard())

	err := m.HandleMessage(context.Background(), jobMessage(EmailJob{To: []string{"alice@example.com"}, Subject: "x"}))

	require.Error(t, err)
	assert.Equal(t, kafka.ErrorTypePermanent, kafka.ClassifyError(err))
}
