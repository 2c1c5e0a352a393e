package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"hotelops/pkg/kafka"
	"hotelops/pkg/logger"

	"github.com/wneessen/go-mail"
)

type sender interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer turns queued email jobs into SMTP deliveries.
type Mailer struct {
	client sender
	from   string
	log    *logger.Logger
}

func NewSMTPMailer(cfg SMTPConfig, log *logger.Logger) (*Mailer, error) {
	opts := []mail.Option{mail.WithPort(cfg.Port)}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}

	return newMailer(client, cfg.From, log), nil
}

func newMailer(client sender, from string, log *logger.Logger) *Mailer {
	return &Mailer{
		client: client,
		from:   from,
		log:    log,
	}
}

// HandleMessage is a kafka.MessageHandler. Malformed jobs fail permanently,
// SMTP failures are retried by the consumer.
func (m *Mailer) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var job EmailJob
	if err := msg.DecodeValue(&job); err != nil {
		return kafka.NewPermanentError("deserialization failed", err)
	}

	if err := m.Deliver(ctx, &job); err != nil {
		return err
	}

	m.log.Info("Email delivered", "event_type", msg.GetEventType(), "event_id", msg.GetEventID(), "recipients", len(job.To))
	return nil
}

func (m *Mailer) Deliver(ctx context.Context, job *EmailJob) error {
	msg, err := m.buildMessage(job)
	if err != nil {
		return kafka.NewPermanentError("invalid recipient", err)
	}

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return deliveryError(err)
	}
	return nil
}

// A 5xx reply to MAIL FROM or RCPT TO will not change on retry.
func deliveryError(err error) error {
	var sendErr *mail.SendError
	if errors.As(err, &sendErr) && !sendErr.IsTemp() {
		switch sendErr.Reason {
		case mail.ErrSMTPMailFrom, mail.ErrSMTPRcptTo:
			return kafka.NewPermanentError("smtp rejected message", err)
		}
	}
	return kafka.NewTransientError("smtp delivery failed", err)
}

func (m *Mailer) buildMessage(job *EmailJob) (*mail.Msg, error) {
	if len(job.To) == 0 {
		return nil, errors.New("email job has no recipients")
	}

	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(job.To...); err != nil {
		return nil, fmt.Errorf("set to address: %w", err)
	}
	msg.Subject(job.Subject)
	msg.SetBodyString(mail.TypeTextHTML, job.HTMLBody)

	for _, a := range job.Attachments {
		msg.AttachReadSeeker(a.Name, bytes.NewReader(a.Content))
	}

	return msg, nil
}
