// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/carterperez-dev/templates/resale-console/internal/account"
)

// User is a customer account. Account state flags live in the embedded
// account.Account and only change through its transitions.
type User struct {
	ID          string `db:"id"`
	Name        string `db:"name"`
	Mobile      string `db:"mobile"`
	PasskeyHash string `db:"passkey_hash"`
	account.Account
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type RequestStatus string

const (
	StatusPending  RequestStatus = "pending"
	StatusApproved RequestStatus = "approved"
	StatusRejected RequestStatus = "rejected"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// VerificationRequest is a self-reported subscription payment awaiting
// review. Name and Mobile are snapshots taken at submission time.
type VerificationRequest struct {
	ID            string        `db:"id"`
	UserID        string        `db:"user_id"`
	Name          string        `db:"name"`
	Mobile        string        `db:"mobile"`
	TransactionID string        `db:"transaction_id"`
	Status        RequestStatus `db:"status"`
	ReviewedBy    *string       `db:"reviewed_by"`
	ReviewedAt    *time.Time    `db:"reviewed_at"`
	Remarks       string        `db:"remarks"`
	CreatedAt     time.Time     `db:"created_at"`
	UpdatedAt     time.Time     `db:"updated_at"`
}

// RequestWithUser joins the live owner fields onto a request. The owner
// columns are nil once the user has been deleted.
type RequestWithUser struct {
	VerificationRequest
	OwnerName       *string `db:"owner_name"`
	OwnerMobile     *string `db:"owner_mobile"`
	OwnerIsActive   *bool   `db:"owner_is_active"`
	OwnerIsVerified *bool   `db:"owner_is_verified"`
}

// Review is the outcome an admin records on a request.
type Review struct {
	Status     RequestStatus
	Remarks    string
	ReviewedBy string
	ReviewedAt time.Time
}
