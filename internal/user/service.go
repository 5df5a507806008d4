// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/resale-console/internal/account"
	"github.com/carterperez-dev/templates/resale-console/internal/config"
	"github.com/carterperez-dev/templates/resale-console/internal/core"
	"github.com/carterperez-dev/templates/resale-console/internal/metrics"
)

type TokenIssuer interface {
	CreateToken(subject string) (string, time.Time, error)
}

type Service struct {
	store  Store
	tokens TokenIssuer
	cfg    config.AccountConfig
	now    func() time.Time
}

type ServiceOption func(*Service)

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(
	store Store,
	tokens TokenIssuer,
	cfg config.AccountConfig,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		store:  store,
		tokens: tokens,
		cfg:    cfg,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*RegisterResponse, error) {
	hash, err := core.HashSecret(req.Passkey)
	if err != nil {
		return nil, fmt.Errorf("hash passkey: %w", err)
	}

	user := &User{
		ID:          uuid.New().String(),
		Name:        strings.TrimSpace(req.Name),
		Mobile:      strings.TrimSpace(req.Mobile),
		PasskeyHash: hash,
		Account:     account.New(),
	}

	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, err
	}

	metrics.Registrations.Inc()
	slog.InfoContext(ctx, "user registered", "user_id", user.ID)

	resp := &RegisterResponse{UserResponse: ToUserResponse(user)}
	if s.cfg.IssueTokenOnRegister {
		token, expiresAt, err := s.tokens.CreateToken(user.ID)
		if err != nil {
			return nil, fmt.Errorf("create token: %w", err)
		}
		resp.Token = token
		resp.ExpiresAt = &expiresAt
	}

	return resp, nil
}

// Login checks credentials, then evaluates the account gates in order and
// opens a session. With single-session enabled the session flag is claimed
// by a conditional update, so concurrent logins yield one winner.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*LoginResponse, error) {
	users := s.store.Users()

	user, err := users.GetByMobile(ctx, strings.TrimSpace(req.Mobile))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention
			_, _ = core.VerifySecretTimingSafe(req.Passkey, nil)
			metrics.LoginOutcome(metrics.PrincipalUser, "invalid_credentials")
			return nil, fmt.Errorf("login: %w", core.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, err := core.VerifySecretTimingSafe(req.Passkey, &user.PasskeyHash)
	if err != nil {
		return nil, fmt.Errorf("verify passkey: %w", err)
	}
	if !valid {
		metrics.LoginOutcome(metrics.PrincipalUser, "invalid_credentials")
		return nil, fmt.Errorf("login: %w", core.ErrInvalidCredentials)
	}

	if err := user.CheckLogin(s.cfg.SingleSession); err != nil {
		metrics.LoginOutcome(metrics.PrincipalUser, gateOutcome(err))
		return nil, err
	}

	user, err = users.MarkLoggedIn(ctx, user.ID, s.now(), s.cfg.SingleSession)
	if err != nil {
		if errors.Is(err, core.ErrAlreadyLoggedIn) {
			metrics.LoginOutcome(metrics.PrincipalUser, gateOutcome(err))
		}
		return nil, err
	}

	token, expiresAt, err := s.tokens.CreateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}

	metrics.LoginOutcome(metrics.PrincipalUser, "")
	slog.InfoContext(ctx, "user logged in", "user_id", user.ID)

	return &LoginResponse{
		UserResponse: ToUserResponse(user),
		Token:        token,
		ExpiresAt:    expiresAt,
	}, nil
}

func gateOutcome(err error) string {
	switch {
	case errors.Is(err, core.ErrAlreadyLoggedIn):
		return "already_logged_in"
	case errors.Is(err, core.ErrAccountDeactivated):
		return "deactivated"
	case errors.Is(err, core.ErrPaymentRequired):
		return "payment_required"
	case errors.Is(err, core.ErrVerificationPending):
		return "verification_pending"
	}
	return "error"
}

// Logout closes the session of userID. The issued token stays valid until
// it expires; only the session flag changes.
func (s *Service) Logout(ctx context.Context, userID string) (*User, error) {
	user, err := s.mutate(ctx, userID, func(u *User) error {
		u.Logout(s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user logged out", "user_id", userID)
	return user, nil
}

func (s *Service) ForceLogout(ctx context.Context, userID string) (*User, error) {
	user, err := s.mutate(ctx, userID, func(u *User) error {
		u.Logout(s.now())
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user force logged out", "user_id", userID)
	return user, nil
}

// SetStatus applies the admin overrides of the active and session flags.
// isActive is applied first so deactivation always ends the session unless
// isLoggedIn explicitly reopens it.
func (s *Service) SetStatus(
	ctx context.Context,
	userID string,
	req UpdateStatusRequest,
) (*User, error) {
	user, err := s.mutate(ctx, userID, func(u *User) error {
		now := s.now()
		if req.IsActive != nil {
			u.SetActive(*req.IsActive, now)
		}
		if req.IsLoggedIn != nil {
			u.SetLoggedIn(*req.IsLoggedIn, now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user status updated",
		"user_id", userID,
		"is_active", user.Active,
		"is_logged_in", user.LoggedIn,
	)
	return user, nil
}

func (s *Service) SetSubscription(
	ctx context.Context,
	userID string,
	req UpdateSubscriptionRequest,
) (*User, error) {
	user, err := s.mutate(ctx, userID, func(u *User) error {
		if req.SubscriptionPaid == nil {
			return fmt.Errorf("set subscription: %w", core.ErrInvalidInput)
		}
		u.SetSubscription(
			*req.SubscriptionPaid,
			strings.TrimSpace(req.TransactionID),
			s.now(),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user subscription updated",
		"user_id", userID,
		"subscription_paid", user.SubscriptionPaid,
	)
	return user, nil
}

func (s *Service) mutate(
	ctx context.Context,
	userID string,
	fn func(u *User) error,
) (*User, error) {
	var out *User
	err := s.store.WithinTx(ctx, func(tx Store) error {
		user, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if err := fn(user); err != nil {
			return err
		}
		if err := tx.Users().Update(ctx, user); err != nil {
			return err
		}
		out = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetAccountState is used by the access guard on every authenticated
// request.
func (s *Service) GetAccountState(
	ctx context.Context,
	id string,
) (account.State, error) {
	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return account.State{}, err
	}
	return user.State, nil
}

func (s *Service) GetUser(
	ctx context.Context,
	userID string,
) (*UserDetailResponse, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	history, err := s.store.Requests().ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &UserDetailResponse{
		User:                ToUserResponse(user),
		VerificationHistory: ToRequestResponseList(history),
	}, nil
}

func (s *Service) ListUsers(
	ctx context.Context,
	params ListUsersParams,
) (*UserListResponse, error) {
	params.Normalize()

	users, total, err := s.store.Users().List(ctx, params)
	if err != nil {
		return nil, err
	}

	return &UserListResponse{
		Users:      ToUserResponseList(users),
		Pagination: NewPagination(params.Page, params.Limit, total),
	}, nil
}

// DeleteUser removes the user together with every verification request it
// owns.
func (s *Service) DeleteUser(
	ctx context.Context,
	userID string,
) (*DeletedUserResponse, error) {
	var resp *DeletedUserResponse

	err := s.store.WithinTx(ctx, func(tx Store) error {
		user, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			return err
		}

		removed, err := tx.Requests().DeleteByUser(ctx, userID)
		if err != nil {
			return err
		}

		if err := tx.Users().Delete(ctx, userID); err != nil {
			return err
		}

		resp = &DeletedUserResponse{
			Message: "User deleted successfully",
			DeletedUser: DeletedSummary{
				ID:     user.ID,
				Name:   user.Name,
				Mobile: user.Mobile,
			},
			RequestsRemoved: removed,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user deleted",
		"user_id", userID,
		"requests_removed", resp.RequestsRemoved,
	)
	return resp, nil
}

func (s *Service) CountActiveVerified(ctx context.Context) (int, error) {
	return s.store.Users().CountActiveVerified(ctx)
}
