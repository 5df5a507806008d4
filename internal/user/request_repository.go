// AngelaMos | 2026
// request_repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/carterperez-dev/templates/resale-console/internal/core"
)

// RequestRepository stores verification requests. A partial unique index
// allows at most one pending request per user; inserting a second one
// fails with core.ErrDuplicateKey.
type RequestRepository interface {
	Create(ctx context.Context, req *VerificationRequest) error
	GetByID(ctx context.Context, id string) (*VerificationRequest, error)
	LatestPending(ctx context.Context, userID string) (*VerificationRequest, error)
	ListByUser(ctx context.Context, userID string) ([]VerificationRequest, error)
	List(
		ctx context.Context,
		status RequestStatus,
		limit int,
	) ([]RequestWithUser, error)
	Review(
		ctx context.Context,
		id string,
		review Review,
	) (*VerificationRequest, error)
	ReviewPending(ctx context.Context, userID string, review Review) (int, error)
	DeleteByUser(ctx context.Context, userID string) (int, error)
	CountByStatus(ctx context.Context) (map[RequestStatus]int, error)
}

const requestColumns = `
	id, user_id, name, mobile, transaction_id, status,
	reviewed_by, reviewed_at, remarks, created_at, updated_at`

type requestRepository struct {
	db core.DBTX
}

func NewRequestRepository(db core.DBTX) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(
	ctx context.Context,
	req *VerificationRequest,
) error {
	query := `
		INSERT INTO verification_requests (
			id, user_id, name, mobile, transaction_id, status, remarks
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, req, query,
		req.ID,
		req.UserID,
		req.Name,
		req.Mobile,
		req.TransactionID,
		req.Status,
		req.Remarks,
	)
	if err != nil {
		if core.IsDuplicateKey(err) {
			return fmt.Errorf("create verification request: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create verification request: %w", err)
	}

	return nil
}

func (r *requestRepository) GetByID(
	ctx context.Context,
	id string,
) (*VerificationRequest, error) {
	query := `SELECT ` + requestColumns + ` FROM verification_requests WHERE id = $1`

	var req VerificationRequest
	err := r.db.GetContext(ctx, &req, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get verification request: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get verification request: %w", err)
	}

	return &req, nil
}

func (r *requestRepository) LatestPending(
	ctx context.Context,
	userID string,
) (*VerificationRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM verification_requests
		WHERE user_id = $1 AND status = 'pending'
		ORDER BY created_at DESC
		LIMIT 1`

	var req VerificationRequest
	err := r.db.GetContext(ctx, &req, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("latest pending request: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("latest pending request: %w", err)
	}

	return &req, nil
}

func (r *requestRepository) ListByUser(
	ctx context.Context,
	userID string,
) ([]VerificationRequest, error) {
	query := `
		SELECT ` + requestColumns + `
		FROM verification_requests
		WHERE user_id = $1
		ORDER BY created_at DESC`

	reqs := []VerificationRequest{}
	if err := r.db.SelectContext(ctx, &reqs, query, userID); err != nil {
		return nil, fmt.Errorf("list user requests: %w", err)
	}

	return reqs, nil
}

// List returns requests newest first. An empty status returns every
// request; a limit of zero returns all matching rows.
func (r *requestRepository) List(
	ctx context.Context,
	status RequestStatus,
	limit int,
) ([]RequestWithUser, error) {
	query := `
		SELECT
			vr.id, vr.user_id, vr.name, vr.mobile, vr.transaction_id,
			vr.status, vr.reviewed_by, vr.reviewed_at, vr.remarks,
			vr.created_at, vr.updated_at,
			u.name AS owner_name, u.mobile AS owner_mobile,
			u.is_active AS owner_is_active, u.is_verified AS owner_is_verified
		FROM verification_requests vr
		LEFT JOIN users u ON u.id = vr.user_id
		WHERE ($1 = '' OR vr.status = $1)
		ORDER BY vr.created_at DESC`

	args := []any{string(status)}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	reqs := []RequestWithUser{}
	if err := r.db.SelectContext(ctx, &reqs, query, args...); err != nil {
		return nil, fmt.Errorf("list verification requests: %w", err)
	}

	return reqs, nil
}

func (r *requestRepository) Review(
	ctx context.Context,
	id string,
	review Review,
) (*VerificationRequest, error) {
	query := `
		UPDATE verification_requests
		SET status = $2, remarks = $3, reviewed_by = $4,
		    reviewed_at = $5, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + requestColumns

	var req VerificationRequest
	err := r.db.GetContext(ctx, &req, query,
		id,
		review.Status,
		review.Remarks,
		nullable(review.ReviewedBy),
		review.ReviewedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("review request: %w", core.ErrNotFound)
	}
	if err != nil {
		if core.IsDuplicateKey(err) {
			return nil, fmt.Errorf("review request: %w", core.ErrDuplicateKey)
		}
		return nil, fmt.Errorf("review request: %w", err)
	}

	return &req, nil
}

// ReviewPending resolves every pending request of userID and reports how
// many were changed.
func (r *requestRepository) ReviewPending(
	ctx context.Context,
	userID string,
	review Review,
) (int, error) {
	query := `
		UPDATE verification_requests
		SET status = $2, remarks = $3, reviewed_by = $4,
		    reviewed_at = $5, updated_at = NOW()
		WHERE user_id = $1 AND status = 'pending'`

	result, err := r.db.ExecContext(ctx, query,
		userID,
		review.Status,
		review.Remarks,
		nullable(review.ReviewedBy),
		review.ReviewedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("review pending requests: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("review pending requests: %w", err)
	}

	return int(rows), nil
}

func (r *requestRepository) DeleteByUser(
	ctx context.Context,
	userID string,
) (int, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM verification_requests WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete user requests: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete user requests: %w", err)
	}

	return int(rows), nil
}

func (r *requestRepository) CountByStatus(
	ctx context.Context,
) (map[RequestStatus]int, error) {
	query := `
		SELECT status, COUNT(*) AS count
		FROM verification_requests
		GROUP BY status`

	var rows []struct {
		Status RequestStatus `db:"status"`
		Count  int           `db:"count"`
	}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count requests by status: %w", err)
	}

	counts := map[RequestStatus]int{
		StatusPending:  0,
		StatusApproved: 0,
		StatusRejected: 0,
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}

	return counts, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
