// AngelaMos | 2026
// service.go

// Package verification runs the payment attestation workflow: customers
// report a subscription payment, admins approve or reject it, and the
// decision is written to the owning account.
package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/carterperez-dev/templates/resale-console/internal/core"
	"github.com/carterperez-dev/templates/resale-console/internal/metrics"
	"github.com/carterperez-dev/templates/resale-console/internal/middleware"
	"github.com/carterperez-dev/templates/resale-console/internal/user"
)

const (
	RemarkSuperseded     = "Superseded by a new payment submission"
	RemarkManualApproval = "Manually verified by admin"
	RemarkManualRejected = "Manually rejected by admin"
)

type Service struct {
	store user.Store
	now   func() time.Time
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(store user.Store, opts ...Option) *Service {
	s := &Service{store: store, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitPayment records a self-reported payment for userID and opens a
// pending request. The paid flag is claimed with a conditional update in
// the same transaction as the insert, so a second submission fails with
// core.ErrAlreadyPaid and leaves no request behind.
func (s *Service) SubmitPayment(
	ctx context.Context,
	caller *middleware.Identity,
	userID, transactionID string,
) (*SubmitPaymentResponse, error) {
	ctx, span := core.StartSpan(ctx, "verification.submit_payment",
		attribute.String("user.id", userID),
	)
	defer span.End()

	if !caller.CanActFor(userID) {
		metrics.PaymentSubmissions.WithLabelValues("forbidden").Inc()
		return nil, fmt.Errorf("submit payment: %w", core.ErrForbidden)
	}

	transactionID = strings.TrimSpace(transactionID)
	if transactionID == "" {
		return nil, fmt.Errorf("submit payment: %w", core.ErrInvalidInput)
	}

	var (
		paid    *user.User
		request *user.VerificationRequest
	)
	err := s.store.WithinTx(ctx, func(tx user.Store) error {
		now := s.now()

		u, err := tx.Users().MarkPaid(ctx, userID, transactionID, now)
		if err != nil {
			return err
		}

		superseded, err := tx.Requests().ReviewPending(ctx, userID, user.Review{
			Status:     user.StatusRejected,
			Remarks:    RemarkSuperseded,
			ReviewedAt: now,
		})
		if err != nil {
			return err
		}
		if superseded > 0 {
			slog.WarnContext(ctx, "stale pending requests superseded",
				"user_id", userID,
				"count", superseded,
			)
		}

		req := &user.VerificationRequest{
			ID:            uuid.New().String(),
			UserID:        u.ID,
			Name:          u.Name,
			Mobile:        u.Mobile,
			TransactionID: transactionID,
			Status:        user.StatusPending,
		}
		if err := tx.Requests().Create(ctx, req); err != nil {
			return err
		}

		paid, request = u, req
		return nil
	})
	if err != nil {
		core.SetSpanError(ctx, err)
		metrics.PaymentSubmissions.WithLabelValues(submissionOutcome(err)).Inc()
		return nil, err
	}

	metrics.PaymentSubmissions.WithLabelValues("accepted").Inc()
	core.AddSpanEvent(ctx, "payment.submitted",
		attribute.String("request.id", request.ID),
	)
	slog.InfoContext(ctx, "payment submitted",
		"user_id", userID,
		"request_id", request.ID,
		"submitted_by", string(caller.Role),
	)

	return &SubmitPaymentResponse{
		Message:   "Payment submitted, awaiting verification",
		RequestID: request.ID,
		User:      user.ToUserResponse(paid),
	}, nil
}

func submissionOutcome(err error) string {
	switch {
	case errors.Is(err, core.ErrAlreadyPaid):
		return "already_paid"
	case errors.Is(err, core.ErrNotFound):
		return "not_found"
	}
	return "error"
}

// CheckStatus returns the account and its newest pending request, or a nil
// request when nothing is pending.
func (s *Service) CheckStatus(
	ctx context.Context,
	caller *middleware.Identity,
	userID string,
) (*StatusResponse, error) {
	if !caller.CanActFor(userID) {
		return nil, fmt.Errorf("check status: %w", core.ErrForbidden)
	}

	u, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &StatusResponse{User: user.ToUserResponse(u)}

	pending, err := s.store.Requests().LatestPending(ctx, userID)
	switch {
	case err == nil:
		r := user.ToRequestResponse(pending)
		resp.PendingRequest = &r
	case !errors.Is(err, core.ErrNotFound):
		return nil, err
	}

	return resp, nil
}

// ListRequests returns requests newest first. status may be empty or "all"
// for every request.
func (s *Service) ListRequests(
	ctx context.Context,
	status string,
) ([]RequestListItem, error) {
	filter, err := parseStatusFilter(status)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.Requests().List(ctx, filter, 0)
	if err != nil {
		return nil, err
	}

	return ToRequestList(rows), nil
}

func (s *Service) RecentRequests(
	ctx context.Context,
	limit int,
) ([]RequestListItem, error) {
	rows, err := s.store.Requests().List(ctx, "", limit)
	if err != nil {
		return nil, err
	}
	return ToRequestList(rows), nil
}

func (s *Service) CountByStatus(ctx context.Context) (map[user.RequestStatus]int, error) {
	return s.store.Requests().CountByStatus(ctx)
}

func parseStatusFilter(status string) (user.RequestStatus, error) {
	switch status {
	case "", "all":
		return "", nil
	}
	filter := user.RequestStatus(status)
	if !filter.Valid() {
		return "", fmt.Errorf("status filter %q: %w", status, core.ErrInvalidInput)
	}
	return filter, nil
}

// Adjudicate records an admin decision on a request and writes the
// verified flag of the owner in one transaction. A request may be decided
// again; the last decision wins. Owners that no longer exist are skipped.
func (s *Service) Adjudicate(
	ctx context.Context,
	requestID string,
	status user.RequestStatus,
	remarks, adminID string,
) (*user.VerificationRequest, error) {
	ctx, span := core.StartSpan(ctx, "verification.adjudicate",
		attribute.String("request.id", requestID),
		attribute.String("request.status", string(status)),
	)
	defer span.End()

	if status != user.StatusApproved && status != user.StatusRejected {
		return nil, fmt.Errorf("adjudicate: %w", core.ErrInvalidInput)
	}

	var reviewed *user.VerificationRequest
	err := s.store.WithinTx(ctx, func(tx user.Store) error {
		now := s.now()

		current, err := tx.Requests().GetByID(ctx, requestID)
		if err != nil {
			return err
		}

		// The owner row is locked before the request so this transaction
		// takes locks in the same order as payment submission and deletion.
		owner, err := tx.Users().GetByID(ctx, current.UserID)
		switch {
		case errors.Is(err, core.ErrNotFound):
			owner = nil
			slog.WarnContext(ctx, "adjudicated request has no owner",
				"request_id", requestID,
				"user_id", current.UserID,
			)
		case err != nil:
			return err
		}

		req, err := tx.Requests().Review(ctx, requestID, user.Review{
			Status:     status,
			Remarks:    strings.TrimSpace(remarks),
			ReviewedBy: adminID,
			ReviewedAt: now,
		})
		if err != nil {
			return err
		}

		if owner != nil {
			owner.SetVerified(status == user.StatusApproved, now)
			if err := tx.Users().Update(ctx, owner); err != nil {
				return err
			}
		}

		reviewed = req
		return nil
	})
	if err != nil {
		core.SetSpanError(ctx, err)
		return nil, err
	}

	metrics.Adjudications.WithLabelValues(string(status)).Inc()
	core.AddSpanEvent(ctx, "request.adjudicated")
	slog.InfoContext(ctx, "verification request adjudicated",
		"request_id", requestID,
		"user_id", reviewed.UserID,
		"status", string(status),
		"admin_id", adminID,
	)

	return reviewed, nil
}

// OverrideVerification sets the verified flag directly and resolves any
// pending request of the user with a system remark.
func (s *Service) OverrideVerification(
	ctx context.Context,
	userID string,
	verified bool,
	adminID string,
) (*OverrideResponse, error) {
	status, remark, verb := user.StatusRejected, RemarkManualRejected, "rejected"
	if verified {
		status, remark, verb = user.StatusApproved, RemarkManualApproval, "approved"
	}

	var (
		updated  *user.User
		resolved int
	)
	err := s.store.WithinTx(ctx, func(tx user.Store) error {
		now := s.now()

		u, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			return err
		}

		u.SetVerified(verified, now)
		if err := tx.Users().Update(ctx, u); err != nil {
			return err
		}

		n, err := tx.Requests().ReviewPending(ctx, userID, user.Review{
			Status:     status,
			Remarks:    remark,
			ReviewedBy: adminID,
			ReviewedAt: now,
		})
		if err != nil {
			return err
		}

		updated, resolved = u, n
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.Adjudications.WithLabelValues(string(status)).Inc()
	slog.InfoContext(ctx, "verification overridden",
		"user_id", userID,
		"verified", verified,
		"requests_resolved", resolved,
		"admin_id", adminID,
	)

	return &OverrideResponse{
		Message:          fmt.Sprintf("User verification %s successfully", verb),
		User:             user.ToUserResponse(updated),
		RequestsResolved: resolved,
	}, nil
}
