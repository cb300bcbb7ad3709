package handler

import (
	"net/http"

	"vaxbook/internal/users/service"
	httputil "vaxbook/pkg/http"
	"vaxbook/pkg/logger"
	"vaxbook/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type UserHandler struct {
	service service.UserService
	log     *logger.Logger
}

func NewUserHandler(service service.UserService, log *logger.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log,
	}
}

type registeredUser struct {
	UserID string `json:"user_id"`
}

func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var reg model.UserRegistration
	if err := httputil.DecodeJSON(r, &reg); err != nil {
		h.writeError(w, "Register", err)
		return
	}

	user, err := h.service.Register(r.Context(), &reg)
	if err != nil {
		h.writeError(w, "Register", err)
		return
	}

	if err := httputil.WriteCreated(w, "User registered successfully", registeredUser{UserID: user.ID}); err != nil {
		h.log.Error("failed to write created response", "handler", "Register", "operation", "WriteCreated", "error", err)
	}
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var login model.UserLogin
	if err := httputil.DecodeJSON(r, &login); err != nil {
		h.writeError(w, "Login", err)
		return
	}

	user, err := h.service.Login(r.Context(), &login)
	if err != nil {
		h.writeError(w, "Login", err)
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Message: "Login successful",
		Data:    registeredUser{UserID: user.ID},
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Login", "operation", "WriteJSON", "error", err)
	}
}

func (h *UserHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}

func (h *UserHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/users/register", h.Register)
	router.POST("/api/users/login", h.Login)
}
