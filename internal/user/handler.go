// AngelaMos | 2026
// handler.go

package user

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/resale-console/internal/core"
	"github.com/carterperez-dev/templates/resale-console/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// RegisterRoutes mounts the account routes on r, which is expected to be
// the /users sub-router shared with the verification handlers.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	loginLimiter func(http.Handler) http.Handler,
) {
	r.Post("/register", h.Register)
	r.With(loginLimiter).Post("/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(authenticator, middleware.RequireUser)
		r.Post("/logout", h.Logout)
	})

	r.Group(func(r chi.Router) {
		r.Use(authenticator, middleware.RequireAdmin)
		r.Get("/all", h.ListUsers)
		r.Get("/{userId}", h.GetUser)
		r.Put("/{userId}/status", h.UpdateStatus)
		r.Put("/{userId}/subscription", h.UpdateSubscription)
		r.Post("/{userId}/force-logout", h.ForceLogout)
		r.Delete("/{userId}", h.DeleteUser)
	})
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.Register(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, resp)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.Login(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Logout(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, LogoutResponse{
		Message:      "Logged out successfully",
		IsLoggedIn:   user.LoggedIn,
		LastLogoutAt: user.LastLogoutAt,
	})
}

func (h *Handler) ForceLogout(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.ForceLogout(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, MessageResponse{
		Message: "User logged out successfully",
		User:    ToUserResponse(user),
	})
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := ListUsersParams{
		Page:               parseIntQuery(r, "page", 1),
		Limit:              parseIntQuery(r, "limit", 10),
		Search:             q.Get("search"),
		SubscriptionStatus: q.Get("subscriptionStatus"),
		VerificationStatus: q.Get("verificationStatus"),
		LoginStatus:        q.Get("loginStatus"),
	}

	if err := h.validator.Struct(params); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.ListUsers(r.Context(), params)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, resp)
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	user, err := h.service.SetStatus(r.Context(), chi.URLParam(r, "userId"), req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, MessageResponse{
		Message: "User status updated successfully",
		User:    ToUserResponse(user),
	})
}

func (h *Handler) UpdateSubscription(w http.ResponseWriter, r *http.Request) {
	var req UpdateSubscriptionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	user, err := h.service.SetSubscription(
		r.Context(),
		chi.URLParam(r, "userId"),
		req,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, MessageResponse{
		Message: "Subscription status updated successfully",
		User:    ToUserResponse(user),
	})
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.DeleteUser(r.Context(), chi.URLParam(r, "userId"))
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, resp)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "user")
	case errors.Is(err, core.ErrDuplicateKey):
		core.JSONError(w, core.DuplicateError("User already exists"))
	case errors.Is(err, core.ErrInvalidCredentials):
		core.JSONError(w, core.UnauthorizedError("Invalid mobile number or passkey"))
	case errors.Is(err, core.ErrSecretTooLong):
		core.BadRequest(w, fmt.Sprintf("passkey must be at most %d bytes", core.MaxSecretBytes))
	default:
		core.JSONError(w, core.FromError(err))
	}
}

func parseIntQuery(r *http.Request, key string, defaultVal int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultVal
	}

	parsed, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return parsed
}
