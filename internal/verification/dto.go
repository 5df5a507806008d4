// AngelaMos | 2026
// dto.go

package verification

import (
	"github.com/carterperez-dev/templates/resale-console/internal/user"
)

type SubmitPaymentRequest struct {
	UserID        string `json:"userId"        validate:"omitempty,max=64"`
	TransactionID string `json:"transactionId" validate:"required,min=1,max=100"`
}

type AdjudicateRequest struct {
	Status  string `json:"status"  validate:"required,oneof=approved rejected"`
	Remarks string `json:"remarks" validate:"required_if=Status rejected,max=500"`
}

type OverrideRequest struct {
	IsVerified *bool `json:"isVerified" validate:"required"`
}

type SubmitPaymentResponse struct {
	Message   string            `json:"message"`
	RequestID string            `json:"requestId"`
	User      user.UserResponse `json:"user"`
}

type StatusResponse struct {
	User           user.UserResponse     `json:"user"`
	PendingRequest *user.RequestResponse `json:"pendingRequest"`
}

type OwnerSummary struct {
	Name       string `json:"name"`
	Mobile     string `json:"mobile"`
	IsActive   bool   `json:"isActive"`
	IsVerified bool   `json:"isVerified"`
}

type RequestListItem struct {
	user.RequestResponse
	Owner *OwnerSummary `json:"owner"`
}

type AdjudicateResponse struct {
	Message string               `json:"message"`
	Request user.RequestResponse `json:"request"`
}

type OverrideResponse struct {
	Message          string            `json:"message"`
	User             user.UserResponse `json:"user"`
	RequestsResolved int               `json:"requestsResolved"`
}

func ToRequestListItem(r *user.RequestWithUser) RequestListItem {
	item := RequestListItem{
		RequestResponse: user.ToRequestResponse(&r.VerificationRequest),
	}
	if r.OwnerName != nil {
		owner := &OwnerSummary{Name: *r.OwnerName}
		if r.OwnerMobile != nil {
			owner.Mobile = *r.OwnerMobile
		}
		if r.OwnerIsActive != nil {
			owner.IsActive = *r.OwnerIsActive
		}
		if r.OwnerIsVerified != nil {
			owner.IsVerified = *r.OwnerIsVerified
		}
		item.Owner = owner
	}
	return item
}

func ToRequestList(rows []user.RequestWithUser) []RequestListItem {
	items := make([]RequestListItem, 0, len(rows))
	for i := range rows {
		items = append(items, ToRequestListItem(&rows[i]))
	}
	return items
}
