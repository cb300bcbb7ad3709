package handler

import (
	"net/http"
	"time"

	"vaxbook/internal/admin/service"
	slotsservice "vaxbook/internal/slots/service"
	httputil "vaxbook/pkg/http"
	"vaxbook/pkg/logger"
	"vaxbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AdminHandler struct {
	service  service.AdminService
	slots    slotsservice.SlotService
	location *time.Location
	log      *logger.Logger
}

// NewAdminHandler serves the /api/admin routes. Slot creation is delegated to
// the booking service; dates in paths are read in location.
func NewAdminHandler(service service.AdminService, slots slotsservice.SlotService, location *time.Location, log *logger.Logger) *AdminHandler {
	return &AdminHandler{
		service:  service,
		slots:    slots,
		location: location,
		log:      log,
	}
}

type totalUsers struct {
	TotalUsers int64 `json:"total_users"`
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var login model.AdminLogin
	if err := httputil.DecodeJSON(r, &login); err != nil {
		h.writeError(w, "Login", err)
		return
	}

	if err := h.service.Login(r.Context(), &login); err != nil {
		h.writeError(w, "Login", err)
		return
	}

	if err := httputil.WriteMessage(w, http.StatusOK, "Admin login successful"); err != nil {
		h.log.Error("failed to write message response", "handler", "Login", "operation", "WriteMessage", "error", err)
	}
}

func (h *AdminHandler) TotalUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var filter model.UserFilter

	age, ok, err := httputil.QueryInt(r, "age")
	if err != nil {
		h.writeError(w, "TotalUsers", err)
		return
	}
	if ok {
		filter.Age = &age
	}

	query := r.URL.Query()
	filter.Pincode = query.Get("pincode")
	filter.VaccinationStatus = model.VaccinationStatus(query.Get("vaccination_status"))
	if filter.VaccinationStatus == "" {
		filter.VaccinationStatus = model.VaccinationStatus(query.Get("vaccinationStatus"))
	}

	count, err := h.service.CountUsers(r.Context(), filter)
	if err != nil {
		h.writeError(w, "TotalUsers", err)
		return
	}

	if err := httputil.WriteSuccess(w, totalUsers{TotalUsers: count}); err != nil {
		h.log.Error("failed to write success response", "handler", "TotalUsers", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AdminHandler) SlotsByDate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	date, err := httputil.ParseDate(ps.ByName("date"), h.location)
	if err != nil {
		h.writeError(w, "SlotsByDate", err)
		return
	}

	slots, err := h.service.SlotsByDate(r.Context(), date)
	if err != nil {
		h.writeError(w, "SlotsByDate", err)
		return
	}

	if err := httputil.WriteSuccess(w, slots); err != nil {
		h.log.Error("failed to write success response", "handler", "SlotsByDate", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AdminHandler) CreateSlot(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.SlotCreate
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.writeError(w, "CreateSlot", err)
		return
	}

	slot, err := h.slots.CreateSlot(r.Context(), &req)
	if err != nil {
		h.writeError(w, "CreateSlot", err)
		return
	}

	if err := httputil.WriteCreated(w, "Slot created successfully", slot); err != nil {
		h.log.Error("failed to write created response", "handler", "CreateSlot", "operation", "WriteCreated", "error", err)
	}
}

func (h *AdminHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *AdminHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/admin/login", h.Login)
	router.GET("/api/admin/users/total", h.TotalUsers)
	router.GET("/api/admin/slots/:date", h.SlotsByDate)
	router.POST("/api/admin/slots", h.CreateSlot)
}
