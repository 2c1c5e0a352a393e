package testutil

import (
	"context"
	"fmt"
	"sync"

	"hotelops/pkg/documents"
	"hotelops/pkg/model"
	"hotelops/pkg/payment"
)

// Payments is a scripted payment.Gateway.
type Payments struct {
	mu sync.Mutex

	CreateErr  error
	OutcomeErr error
	RefundErr  error
	Status     payment.Status
	// OnCreate runs before a checkout session is created.
	OnCreate func(ctx context.Context)

	Sessions     []string
	OutcomeCalls int
	Refunds      []string
}

func (p *Payments) CreateCheckoutSession(ctx context.Context, bookingRef string, amount int64, currency string) (*payment.Session, error) {
	if p.OnCreate != nil {
		p.OnCreate(ctx)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.CreateErr != nil {
		return nil, p.CreateErr
	}
	id := fmt.Sprintf("cs_test_%d", len(p.Sessions)+1)
	p.Sessions = append(p.Sessions, bookingRef)
	return &payment.Session{ID: id, URL: "https://checkout.test/" + id}, nil
}

func (p *Payments) GetPaymentOutcome(_ context.Context, _ string) (*payment.Status, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.OutcomeCalls++
	if p.OutcomeErr != nil {
		return nil, p.OutcomeErr
	}
	status := p.Status
	return &status, nil
}

func (p *Payments) Refund(_ context.Context, paymentIntentRef string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Refunds = append(p.Refunds, paymentIntentRef)
	return p.RefundErr
}

// Renderer produces tiny placeholder documents.
type Renderer struct {
	Err error
}

func (r *Renderer) render(t documents.Type, booking *model.Booking) (*documents.Document, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return &documents.Document{
		Type:        t,
		Name:        booking.BookingNumber + "-" + string(t) + ".html",
		ContentType: documents.ContentTypeHTML,
		Content:     []byte(string(t)),
	}, nil
}

func (r *Renderer) RenderBookingConfirmation(booking *model.Booking, _ *model.Room) (*documents.Document, error) {
	return r.render(documents.TypeConfirmation, booking)
}

func (r *Renderer) RenderInvoice(booking *model.Booking, _ *model.Room) (*documents.Document, error) {
	return r.render(documents.TypeInvoice, booking)
}

func (r *Renderer) RenderCancellationNotice(booking *model.Booking, _ *model.Room) (*documents.Document, error) {
	return r.render(documents.TypeCancellation, booking)
}

// Documents records stored documents by booking id.
type Documents struct {
	mu     sync.Mutex
	Err    error
	Stored map[string][]documents.Type
}

func (d *Documents) StoreDocument(_ context.Context, bookingID string, doc *documents.Document) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.Err != nil {
		return "", d.Err
	}
	if d.Stored == nil {
		d.Stored = map[string][]documents.Type{}
	}
	d.Stored[bookingID] = append(d.Stored[bookingID], doc.Type)
	return "mem://" + bookingID + "/" + doc.Name, nil
}

// Notifier records every notification it is asked to send.
type Notifier struct {
	mu  sync.Mutex
	Err error

	Confirmations []string
	Cancellations []string
	Invites       []string
}

func (n *Notifier) SendBookingConfirmation(_ context.Context, booking *model.Booking, _ []*documents.Document) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.Confirmations = append(n.Confirmations, booking.ID)
	return n.Err
}

func (n *Notifier) SendCancellationNotice(_ context.Context, booking *model.Booking, _ *documents.Document) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.Cancellations = append(n.Cancellations, booking.ID)
	return n.Err
}

func (n *Notifier) SendInviteNotice(_ context.Context, invite *model.RoomInvite) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.Invites = append(n.Invites, invite.InviteeEmail)
	return n.Err
}

// Locks is a scripted smartlock.Locks.
type Locks struct {
	mu sync.Mutex

	Unreachable bool
	QueryErr    error
	UnlockErr   error
	Unlocked    []string
}

func (l *Locks) QueryLockReachable(_ context.Context, _ string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.QueryErr != nil {
		return false, l.QueryErr
	}
	return !l.Unreachable, nil
}

func (l *Locks) Unlock(_ context.Context, lockID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.UnlockErr != nil {
		return l.UnlockErr
	}
	l.Unlocked = append(l.Unlocked, lockID)
	return nil
}
