package handler

import (
	"net/http"

	"vaxbook/internal/slots/service"
	httputil "vaxbook/pkg/http"
	"vaxbook/pkg/logger"
	"vaxbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type SlotHandler struct {
	service service.SlotService
	log     *logger.Logger
}

func NewSlotHandler(service service.SlotService, log *logger.Logger) *SlotHandler {
	return &SlotHandler{
		service: service,
		log:     log,
	}
}

type booking struct {
	UserID            string                  `json:"user_id"`
	SlotID            string                  `json:"slot_id"`
	VaccinationStatus model.VaccinationStatus `json:"vaccination_status"`
}

func bookingOf(user *model.User) booking {
	return booking{
		UserID:            user.ID,
		SlotID:            user.RegisteredSlot,
		VaccinationStatus: user.VaccinationStatus,
	}
}

func (h *SlotHandler) ListAvailable(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	userID := r.URL.Query().Get("user_id")

	slots, err := h.service.ListAvailable(r.Context(), userID)
	if err != nil {
		h.writeError(w, "ListAvailable", err)
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "ListAvailable", "operation", "WriteSuccess", "error", err)
	}
}

func (h *SlotHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.SlotRegistration
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Register", err)
		return
	}

	user, err := h.service.Register(r.Context(), &req)
	if err != nil {
		h.writeError(w, "Register", err)
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Message: "User registered for the slot successfully",
		Data:    bookingOf(user),
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Register", "operation", "WriteJSON", "error", err)
	}
}

func (h *SlotHandler) Rebook(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req model.SlotRebook
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "Rebook", err)
		return
	}

	user, err := h.service.Rebook(r.Context(), ps.ByName("slotId"), &req)
	if err != nil {
		h.writeError(w, "Rebook", err)
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Message: "Slot updated successfully",
		Data:    bookingOf(user),
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Rebook", "operation", "WriteJSON", "error", err)
	}
}

func (h *SlotHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *SlotHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/slots/available", h.ListAvailable)
	router.POST("/api/slots/register", h.Register)
	router.PUT("/api/slots/:slotId", h.Rebook)
}
