package handler

import (
	"net/http"

	"hotelops/internal/checkins/service"
	httputil "hotelops/pkg/http"
	"hotelops/pkg/logger"
	"hotelops/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type CheckInHandler struct {
	service service.CheckInService
	log     *logger.Logger
}

func NewCheckInHandler(service service.CheckInService, log *logger.Logger) *CheckInHandler {
	return &CheckInHandler{
		service: service,
		log:     log,
	}
}

type checkOutResponse struct {
	BookingID  string `json:"booking_id"`
	CheckedOut int    `json:"checked_out"`
}

// CheckIn checks the calling guest into the booking.
func (h *CheckInHandler) CheckIn(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	email, err := httputil.Identity(r)
	if err != nil {
		h.writeError(w, "CheckIn", err)
		return
	}

	var req model.CheckInRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "CheckIn", err)
		return
	}
	req.BookingID = ps.ByName("id")
	req.GuestEmail = email

	checkIn, err := h.service.CheckIn(r.Context(), &req)
	if err != nil {
		h.writeError(w, "CheckIn", err)
		return
	}

	if err := httputil.WriteCreated(w, checkIn); err != nil {
		h.log.Error("failed to write created response", "handler", "CheckIn", "operation", "WriteCreated", "error", err)
	}
}

// AddToRoom checks another guest in on behalf of the caller.
func (h *CheckInHandler) AddToRoom(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requester, err := httputil.Identity(r)
	if err != nil {
		h.writeError(w, "AddToRoom", err)
		return
	}

	var req model.CheckInRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "AddToRoom", err)
		return
	}
	req.BookingID = ps.ByName("id")

	checkIn, err := h.service.AddToRoom(r.Context(), requester, &req)
	if err != nil {
		h.writeError(w, "AddToRoom", err)
		return
	}

	if err := httputil.WriteCreated(w, checkIn); err != nil {
		h.log.Error("failed to write created response", "handler", "AddToRoom", "operation", "WriteCreated", "error", err)
	}
}

func (h *CheckInHandler) Invite(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	owner, err := httputil.Identity(r)
	if err != nil {
		h.writeError(w, "Invite", err)
		return
	}

	var req model.InviteRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Invite", err)
		return
	}

	invite, err := h.service.Invite(r.Context(), ps.ByName("id"), owner, req.InviteeEmail)
	if err != nil {
		h.writeError(w, "Invite", err)
		return
	}

	if err := httputil.WriteCreated(w, invite); err != nil {
		h.log.Error("failed to write created response", "handler", "Invite", "operation", "WriteCreated", "error", err)
	}
}

func (h *CheckInHandler) CheckOut(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requester, err := httputil.Identity(r)
	if err != nil {
		h.writeError(w, "CheckOut", err)
		return
	}

	bookingID := ps.ByName("id")
	count, err := h.service.CheckOut(r.Context(), &model.CheckOutRequest{BookingID: bookingID, RequesterEmail: requester})
	if err != nil {
		h.writeError(w, "CheckOut", err)
		return
	}

	if err := httputil.WriteSuccess(w, checkOutResponse{BookingID: bookingID, CheckedOut: count}); err != nil {
		h.log.Error("failed to write success response", "handler", "CheckOut", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CheckInHandler) Remove(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	staff, err := httputil.Identity(r)
	if err != nil {
		h.writeError(w, "Remove", err)
		return
	}

	if err := h.service.Remove(r.Context(), staff, ps.ByName("id"), ps.ByName("email")); err != nil {
		h.writeError(w, "Remove", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *CheckInHandler) OpenDoor(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	email, err := httputil.Identity(r)
	if err != nil {
		h.writeError(w, "OpenDoor", err)
		return
	}

	if err := h.service.OpenDoor(r.Context(), ps.ByName("id"), email); err != nil {
		h.writeError(w, "OpenDoor", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *CheckInHandler) MyCheckIns(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	email, err := httputil.Identity(r)
	if err != nil {
		h.writeError(w, "MyCheckIns", err)
		return
	}

	statuses, err := h.service.GetCheckedInStatus(r.Context(), email)
	if err != nil {
		h.writeError(w, "MyCheckIns", err)
		return
	}

	if err := httputil.WriteSuccess(w, statuses); err != nil {
		h.log.Error("failed to write success response", "handler", "MyCheckIns", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CheckInHandler) MyRooms(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	email, err := httputil.Identity(r)
	if err != nil {
		h.writeError(w, "MyRooms", err)
		return
	}

	rooms, err := h.service.GetGuestRooms(r.Context(), email)
	if err != nil {
		h.writeError(w, "MyRooms", err)
		return
	}

	if err := httputil.WriteSuccess(w, rooms); err != nil {
		h.log.Error("failed to write success response", "handler", "MyRooms", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CheckInHandler) RoomGuests(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	requester, err := httputil.Identity(r)
	if err != nil {
		h.writeError(w, "RoomGuests", err)
		return
	}

	guests, err := h.service.GetGuests(r.Context(), ps.ByName("id"), requester)
	if err != nil {
		h.writeError(w, "RoomGuests", err)
		return
	}

	if err := httputil.WriteSuccess(w, guests); err != nil {
		h.log.Error("failed to write success response", "handler", "RoomGuests", "operation", "WriteSuccess", "error", err)
	}
}

func (h *CheckInHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *CheckInHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/bookings/:id/check-ins", h.CheckIn)
	router.POST("/api/v1/bookings/:id/guests", h.AddToRoom)
	router.DELETE("/api/v1/bookings/:id/guests/:email", h.Remove)
	router.POST("/api/v1/bookings/:id/invites", h.Invite)
	router.POST("/api/v1/bookings/:id/check-out", h.CheckOut)
	router.POST("/api/v1/bookings/:id/door", h.OpenDoor)
	router.GET("/api/v1/me/check-ins", h.MyCheckIns)
	router.GET("/api/v1/me/rooms", h.MyRooms)
	router.GET("/api/v1/rooms/:id/guests", h.RoomGuests)
}
