// Package documents renders booking paperwork and stores it for later retrieval.
package documents

import (
	"context"

	"hotelops/pkg/model"
)

type Type string

const (
	TypeConfirmation Type = "confirmation"
	TypeInvoice      Type = "invoice"
	TypeCancellation Type = "cancellation"
)

const ContentTypeHTML = "text/html; charset=utf-8"

type Document struct {
	Type        Type
	Name        string
	ContentType string
	Content     []byte
}

type Renderer interface {
	RenderBookingConfirmation(booking *model.Booking, room *model.Room) (*Document, error)
	RenderInvoice(booking *model.Booking, room *model.Room) (*Document, error)
	RenderCancellationNotice(booking *model.Booking, room *model.Room) (*Document, error)
}

// Store persists rendered documents and returns the location they were written to.
type Store interface {
	StoreDocument(ctx context.Context, bookingID string, doc *Document) (string, error)
}
