package handler

import (
	"context"
	"net/http"

	"hotelops/internal/bookings/service"
	guestsservice "hotelops/internal/guests/service"
	apperrors "hotelops/pkg/errors"
	httputil "hotelops/pkg/http"
	"hotelops/pkg/logger"
	"hotelops/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	guests  guestsservice.GuestService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, guests guestsservice.GuestService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		guests:  guests,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	guest, err := h.caller(r)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	var req model.CreateBookingRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Create", err)
		return
	}

	booking, err := h.service.CreateBooking(r.Context(), guest.ID, &req)
	if err != nil {
		h.writeError(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.authorize(r, ps.ByName("id"), false)
	if err != nil {
		h.writeError(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) MyBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	guest, err := h.caller(r)
	if err != nil {
		h.writeError(w, "MyBookings", err)
		return
	}

	bookings, err := h.service.ListByOwner(r.Context(), guest.ID)
	if err != nil {
		h.writeError(w, "MyBookings", err)
		return
	}

	if err := httputil.WriteSuccess(w, bookings); err != nil {
		h.log.Error("failed to write success response", "handler", "MyBookings", "operation", "WriteSuccess", "error", err)
	}
}

// UpdatePaymentStatus reconciles the booking with the payment provider. It is
// called when the guest returns from the hosted checkout page.
func (h *BookingHandler) UpdatePaymentStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, ps, "UpdatePaymentStatus", false, h.service.UpdatePaymentStatus)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, ps, "Cancel", false, h.service.CancelBooking)
}

func (h *BookingHandler) MarkPaid(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.transition(w, r, ps, "MarkPaid", true, h.service.MarkAsPaidManually)
}

type transitionFunc func(ctx context.Context, bookingID string) (*model.Booking, error)

func (h *BookingHandler) transition(w http.ResponseWriter, r *http.Request, ps httprouter.Params, name string, staffOnly bool, fn transitionFunc) {
	id := ps.ByName("id")
	if _, err := h.authorize(r, id, staffOnly); err != nil {
		h.writeError(w, name, err)
		return
	}

	booking, err := fn(r.Context(), id)
	if err != nil {
		h.writeError(w, name, err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", name, "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) caller(r *http.Request) (*model.Guest, error) {
	email, err := httputil.Identity(r)
	if err != nil {
		return nil, err
	}
	guest, err := h.guests.GetByEmail(r.Context(), email)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeNotFound) {
			return nil, apperrors.Forbidden("Unknown guest")
		}
		return nil, err
	}
	return guest, nil
}

// authorize loads the booking for its owner or for staff.
func (h *BookingHandler) authorize(r *http.Request, bookingID string, staffOnly bool) (*model.Booking, error) {
	guest, err := h.caller(r)
	if err != nil {
		return nil, err
	}

	booking, err := h.service.GetByID(r.Context(), bookingID)
	if err != nil {
		return nil, err
	}

	if guest.IsStaff() {
		return booking, nil
	}
	if staffOnly || booking.OwnerID != guest.ID {
		return nil, apperrors.Forbidden("Not allowed to access this booking")
	}
	return booking, nil
}

func (h *BookingHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings", h.Create)
	router.GET("/api/v1/bookings/:id", h.GetByID)
	router.POST("/api/v1/bookings/:id/payment-status", h.UpdatePaymentStatus)
	router.POST("/api/v1/bookings/:id/cancel", h.Cancel)
	router.POST("/api/v1/bookings/:id/mark-paid", h.MarkPaid)
	router.GET("/api/v1/me/bookings", h.MyBookings)
}
