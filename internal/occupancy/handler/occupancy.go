package handler

import (
	"net/http"

	"hotelops/internal/occupancy/service"
	httputil "hotelops/pkg/http"
	"hotelops/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type OccupancyHandler struct {
	service service.OccupancyService
	log     *logger.Logger
}

func NewOccupancyHandler(service service.OccupancyService, log *logger.Logger) *OccupancyHandler {
	return &OccupancyHandler{
		service: service,
		log:     log,
	}
}

func (h *OccupancyHandler) GetStatus(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	status, err := h.service.GetOccupancyStatus(r.Context(), ps.ByName("id"))
	if err != nil {
		if writeErr := httputil.WriteError(w, err); writeErr != nil {
			h.log.Error("failed to write error response", "handler", "GetStatus", "operation", "WriteError", "error", writeErr)
		}
		return
	}

	if err := httputil.WriteSuccess(w, status); err != nil {
		h.log.Error("failed to write success response", "handler", "GetStatus", "operation", "WriteSuccess", "error", err)
	}
}

func (h *OccupancyHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/rooms/:id/occupancy", h.GetStatus)
}
