// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carterperez-dev/templates/resale-console/internal/core"
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByMobile(ctx context.Context, mobile string) (*User, error)
	Update(ctx context.Context, user *User) error
	MarkPaid(
		ctx context.Context,
		id, transactionID string,
		at time.Time,
	) (*User, error)
	MarkLoggedIn(
		ctx context.Context,
		id string,
		at time.Time,
		exclusive bool,
	) (*User, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, params ListUsersParams) ([]User, int, error)
	CountActiveVerified(ctx context.Context) (int, error)
}

const userColumns = `
	id, name, mobile, passkey_hash,
	is_active, is_logged_in, subscription_paid, is_verified,
	transaction_id, subscription_date, verification_date,
	last_login_at, last_logout_at, created_at, updated_at`

type repository struct {
	db core.DBTX
	// lockRows makes GetByID take a row lock so read-modify-write inside a
	// transaction cannot lose a concurrent update.
	lockRows bool
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func newTxRepository(tx core.DBTX) Repository {
	return &repository{db: tx, lockRows: true}
}

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (
			id, name, mobile, passkey_hash,
			is_active, is_logged_in, subscription_paid, is_verified,
			transaction_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, user, query,
		user.ID,
		user.Name,
		user.Mobile,
		user.PasskeyHash,
		user.Active,
		user.LoggedIn,
		user.SubscriptionPaid,
		user.Verified,
		user.TransactionID,
	)
	if err != nil {
		if core.IsDuplicateKey(err) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if r.lockRows {
		query += ` FOR UPDATE`
	}

	var user User
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	return &user, nil
}

func (r *repository) GetByMobile(
	ctx context.Context,
	mobile string,
) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE mobile = $1`

	var user User
	err := r.db.GetContext(ctx, &user, query, mobile)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get user by mobile: %w", core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by mobile: %w", err)
	}

	return &user, nil
}

// Update writes the name and every account field of user.
func (r *repository) Update(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET name = $2,
		    is_active = $3, is_logged_in = $4,
		    subscription_paid = $5, is_verified = $6,
		    transaction_id = $7, subscription_date = $8,
		    verification_date = $9, last_login_at = $10,
		    last_logout_at = $11, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &user.UpdatedAt, query,
		user.ID,
		user.Name,
		user.Active,
		user.LoggedIn,
		user.SubscriptionPaid,
		user.Verified,
		user.TransactionID,
		user.SubscriptionDate,
		user.VerificationDate,
		user.LastLoginAt,
		user.LastLogoutAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("update user: %w", core.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	return nil
}

// MarkPaid flips subscription_paid only when it is still false, so two
// concurrent submissions cannot both succeed.
func (r *repository) MarkPaid(
	ctx context.Context,
	id, transactionID string,
	at time.Time,
) (*User, error) {
	query := `
		UPDATE users
		SET subscription_paid = true, subscription_date = $3,
		    transaction_id = $2, updated_at = NOW()
		WHERE id = $1 AND subscription_paid = false
		RETURNING ` + userColumns

	var user User
	err := r.db.GetContext(ctx, &user, query, id, transactionID, at)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.missOrConflict(ctx, "mark paid", id, core.ErrAlreadyPaid)
	}
	if err != nil {
		return nil, fmt.Errorf("mark paid: %w", err)
	}

	return &user, nil
}

// MarkLoggedIn opens a session. With exclusive set the update only applies
// while no other session is open.
func (r *repository) MarkLoggedIn(
	ctx context.Context,
	id string,
	at time.Time,
	exclusive bool,
) (*User, error) {
	query := `
		UPDATE users
		SET is_logged_in = true, last_login_at = $2, updated_at = NOW()
		WHERE id = $1 AND (NOT $3 OR is_logged_in = false)
		RETURNING ` + userColumns

	var user User
	err := r.db.GetContext(ctx, &user, query, id, at, exclusive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, r.missOrConflict(
			ctx,
			"mark logged in",
			id,
			core.ErrAlreadyLoggedIn,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("mark logged in: %w", err)
	}

	return &user, nil
}

func (r *repository) missOrConflict(
	ctx context.Context,
	op, id string,
	conflict error,
) error {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, conflict)
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("delete user: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) List(
	ctx context.Context,
	params ListUsersParams,
) ([]User, int, error) {
	params.Normalize()

	conditions := []string{"TRUE"}
	var args []any
	argIdx := 1

	if params.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(name ILIKE $%d OR mobile ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+core.EscapeLike(params.Search)+"%")
		argIdx++
	}

	flags := []struct {
		column string
		value  *bool
	}{
		{"subscription_paid", params.subscriptionPaid()},
		{"is_verified", params.verified()},
		{"is_logged_in", params.loggedIn()},
	}
	for _, f := range flags {
		if f.value == nil {
			continue
		}
		conditions = append(conditions, fmt.Sprintf("%s = $%d", f.column, argIdx))
		args = append(args, *f.value)
		argIdx++
	}

	whereClause := strings.Join(conditions, " AND ")

	countQuery := "SELECT COUNT(*) FROM users WHERE " + whereClause
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d`,
		userColumns, whereClause, argIdx, argIdx+1)

	args = append(args, params.Limit, params.Offset())

	var users []User
	if err := r.db.SelectContext(ctx, &users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}

func (r *repository) CountActiveVerified(ctx context.Context) (int, error) {
	query := `
		SELECT COUNT(*) FROM users
		WHERE is_active = true AND subscription_paid = true AND is_verified = true`

	var count int
	if err := r.db.GetContext(ctx, &count, query); err != nil {
		return 0, fmt.Errorf("count active users: %w", err)
	}

	return count, nil
}
