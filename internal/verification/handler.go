// AngelaMos | 2026
// handler.go

package verification

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/templates/resale-console/internal/core"
	"github.com/carterperez-dev/templates/resale-console/internal/middleware"
	"github.com/carterperez-dev/templates/resale-console/internal/user"
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

// RegisterRoutes mounts the workflow routes on the /users sub-router.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Group(func(r chi.Router) {
		r.Use(authenticator, middleware.RequireAdminOrActiveUser)
		r.Post("/submit-payment", h.SubmitPayment)
		r.Get("/verification-status/{userId}", h.CheckStatus)
	})

	r.Group(func(r chi.Router) {
		r.Use(authenticator, middleware.RequireAdmin)
		r.Get("/verification-requests", h.ListRequests)
		r.Put("/verification-requests/{requestId}", h.Adjudicate)
		r.Put("/{userId}/verification", h.Override)
	})
}

func (h *Handler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	var req SubmitPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	caller := middleware.GetIdentity(r.Context())
	if req.UserID == "" {
		if !caller.IsUser() {
			core.BadRequest(w, "userId is required")
			return
		}
		req.UserID = caller.ID
	}

	resp, err := h.service.SubmitPayment(r.Context(), caller, req.UserID, req.TransactionID)
	if err != nil {
		writeError(w, err, "user", "transactionId is required")
		return
	}

	core.OK(w, resp)
}

func (h *Handler) CheckStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.CheckStatus(
		r.Context(),
		middleware.GetIdentity(r.Context()),
		chi.URLParam(r, "userId"),
	)
	if err != nil {
		writeError(w, err, "user", "userId is required")
		return
	}

	core.OK(w, resp)
}

func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListRequests(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, "status must be one of pending, approved, rejected, all")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, items)
}

func (h *Handler) Adjudicate(w http.ResponseWriter, r *http.Request) {
	var req AdjudicateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	reviewed, err := h.service.Adjudicate(
		r.Context(),
		chi.URLParam(r, "requestId"),
		user.RequestStatus(req.Status),
		req.Remarks,
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		writeError(w, err, "verification request", "status must be approved or rejected")
		return
	}

	core.OK(w, AdjudicateResponse{
		Message: "Verification request " + req.Status,
		Request: user.ToRequestResponse(reviewed),
	})
}

func (h *Handler) Override(w http.ResponseWriter, r *http.Request) {
	var req OverrideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.OverrideVerification(
		r.Context(),
		chi.URLParam(r, "userId"),
		*req.IsVerified,
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		writeError(w, err, "user", "isVerified is required")
		return
	}

	core.OK(w, resp)
}

// writeError maps workflow errors to responses. invalidMessage is the body
// used for core.ErrInvalidInput, which each route raises for its own field.
func writeError(w http.ResponseWriter, err error, resource, invalidMessage string) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, resource)
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "Not authorized to act for this user")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, invalidMessage)
	default:
		core.JSONError(w, core.FromError(err))
	}
}
