// AngelaMos | 2026
// dto.go

package user

import (
	"time"
)

// MaxPage bounds the page number so the computed offset cannot overflow.
const MaxPage = 1_000_000

type RegisterRequest struct {
	Name    string `json:"name"    validate:"required,min=1,max=100"`
	Mobile  string `json:"mobile"  validate:"required,min=4,max=20"`
	Passkey string `json:"passkey" validate:"required,min=1,max=72"`
}

type LoginRequest struct {
	Mobile  string `json:"mobile"  validate:"required,max=20"`
	Passkey string `json:"passkey" validate:"required,max=72"`
}

type UpdateStatusRequest struct {
	IsActive   *bool `json:"isActive"`
	IsLoggedIn *bool `json:"isLoggedIn"`
}

type UpdateSubscriptionRequest struct {
	SubscriptionPaid *bool `json:"subscriptionPaid" validate:"required"`
	TransactionID    string `json:"transactionId"    validate:"max=100"`
}

type UserResponse struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Mobile           string     `json:"mobile"`
	IsActive         bool       `json:"isActive"`
	IsLoggedIn       bool       `json:"isLoggedIn"`
	SubscriptionPaid bool       `json:"subscriptionPaid"`
	SubscriptionDate *time.Time `json:"subscriptionDate"`
	TransactionID    string     `json:"transactionId"`
	IsVerified       bool       `json:"isVerified"`
	VerificationDate *time.Time `json:"verificationDate"`
	LastLoginAt      *time.Time `json:"lastLoginAt"`
	LastLogoutAt     *time.Time `json:"lastLogoutAt"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// RegisterResponse carries a token only when tokens are issued on
// registration.
type RegisterResponse struct {
	UserResponse
	Token     string     `json:"token,omitempty"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

type LoginResponse struct {
	UserResponse
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type LogoutResponse struct {
	Message      string     `json:"message"`
	IsLoggedIn   bool       `json:"isLoggedIn"`
	LastLogoutAt *time.Time `json:"lastLogoutAt"`
}

type MessageResponse struct {
	Message string       `json:"message"`
	User    UserResponse `json:"user"`
}

type DeletedUserResponse struct {
	Message         string         `json:"message"`
	DeletedUser     DeletedSummary `json:"deletedUser"`
	RequestsRemoved int            `json:"requestsRemoved"`
}

type DeletedSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Mobile string `json:"mobile"`
}

type RequestResponse struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Name          string     `json:"name"`
	Mobile        string     `json:"mobile"`
	TransactionID string     `json:"transactionId"`
	Status        string     `json:"status"`
	ReviewedBy    *string    `json:"reviewedBy"`
	ReviewedAt    *time.Time `json:"reviewedAt"`
	Remarks       string     `json:"remarks"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

type UserDetailResponse struct {
	User                UserResponse      `json:"user"`
	VerificationHistory []RequestResponse `json:"verificationHistory"`
}

type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	TotalPages  int  `json:"totalPages"`
	TotalUsers  int  `json:"totalUsers"`
	HasNextPage bool `json:"hasNextPage"`
	HasPrevPage bool `json:"hasPrevPage"`
}

type UserListResponse struct {
	Users      []UserResponse `json:"users"`
	Pagination Pagination     `json:"pagination"`
}

type ListUsersParams struct {
	Page               int
	Limit              int
	Search             string
	SubscriptionStatus string `validate:"omitempty,oneof=paid unpaid"`
	VerificationStatus string `validate:"omitempty,oneof=verified unverified"`
	LoginStatus        string `validate:"omitempty,oneof=online offline"`
}

func (p *ListUsersParams) Normalize() {
	p.Page = min(max(p.Page, 1), MaxPage)
	if p.Limit < 1 {
		p.Limit = 10
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
}

func (p *ListUsersParams) Offset() int {
	return (p.Page - 1) * p.Limit
}

func (p *ListUsersParams) subscriptionPaid() *bool {
	return flagFilter(p.SubscriptionStatus, "paid", "unpaid")
}

func (p *ListUsersParams) verified() *bool {
	return flagFilter(p.VerificationStatus, "verified", "unverified")
}

func (p *ListUsersParams) loggedIn() *bool {
	return flagFilter(p.LoginStatus, "online", "offline")
}

func flagFilter(value, yes, no string) *bool {
	var b bool
	switch value {
	case yes:
		b = true
	case no:
		b = false
	default:
		return nil
	}
	return &b
}

func NewPagination(page, limit, total int) Pagination {
	totalPages := 0
	if limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		CurrentPage: page,
		TotalPages:  totalPages,
		TotalUsers:  total,
		HasNextPage: page < totalPages,
		HasPrevPage: page > 1,
	}
}

func ToUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:               u.ID,
		Name:             u.Name,
		Mobile:           u.Mobile,
		IsActive:         u.Active,
		IsLoggedIn:       u.LoggedIn,
		SubscriptionPaid: u.SubscriptionPaid,
		SubscriptionDate: u.SubscriptionDate,
		TransactionID:    u.TransactionID,
		IsVerified:       u.Verified,
		VerificationDate: u.VerificationDate,
		LastLoginAt:      u.LastLoginAt,
		LastLogoutAt:     u.LastLogoutAt,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}

func ToUserResponseList(users []User) []UserResponse {
	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, ToUserResponse(&users[i]))
	}
	return responses
}

func ToRequestResponse(r *VerificationRequest) RequestResponse {
	return RequestResponse{
		ID:            r.ID,
		UserID:        r.UserID,
		Name:          r.Name,
		Mobile:        r.Mobile,
		TransactionID: r.TransactionID,
		Status:        string(r.Status),
		ReviewedBy:    r.ReviewedBy,
		ReviewedAt:    r.ReviewedAt,
		Remarks:       r.Remarks,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func ToRequestResponseList(reqs []VerificationRequest) []RequestResponse {
	responses := make([]RequestResponse, 0, len(reqs))
	for i := range reqs {
		responses = append(responses, ToRequestResponse(&reqs[i]))
	}
	return responses
}
