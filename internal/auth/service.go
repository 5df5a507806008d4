// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/resale-console/internal/account"
	"github.com/carterperez-dev/templates/resale-console/internal/core"
	"github.com/carterperez-dev/templates/resale-console/internal/metrics"
	"github.com/carterperez-dev/templates/resale-console/internal/middleware"
)

// UserProvider is the slice of the customer store needed to resolve a token
// subject that is not an admin.
type UserProvider interface {
	GetAccountState(ctx context.Context, id string) (account.State, error)
}

type Service struct {
	repo         Repository
	jwt          *JWTManager
	userProvider UserProvider
}

func NewService(
	repo Repository,
	jwt *JWTManager,
	userProvider UserProvider,
) *Service {
	return &Service{
		repo:         repo,
		jwt:          jwt,
		userProvider: userProvider,
	}
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*LoginResponse, error) {
	admin, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention
			_, _ = core.VerifySecretTimingSafe(req.Password, nil)
			metrics.LoginOutcome(metrics.PrincipalAdmin, "invalid_credentials")
			return nil, fmt.Errorf("admin login: %w", core.ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("get admin: %w", err)
	}

	valid, err := core.VerifySecretTimingSafe(req.Password, &admin.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		metrics.LoginOutcome(metrics.PrincipalAdmin, "invalid_credentials")
		return nil, fmt.Errorf("admin login: %w", core.ErrInvalidCredentials)
	}

	token, expiresAt, err := s.jwt.CreateToken(admin.ID)
	if err != nil {
		return nil, fmt.Errorf("create token: %w", err)
	}

	metrics.LoginOutcome(metrics.PrincipalAdmin, "")
	slog.InfoContext(ctx, "admin logged in", "admin_id", admin.ID)

	return &LoginResponse{
		ID:        admin.ID,
		Email:     admin.Email,
		Token:     token,
		ExpiresAt: expiresAt,
	}, nil
}

// EnsureDefaultAdmin creates the configured admin when no admin with that
// email exists. Calling it repeatedly is a no-op.
func (s *Service) EnsureDefaultAdmin(
	ctx context.Context,
	email, password string,
) (*Admin, error) {
	existing, err := s.repo.GetByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("lookup default admin: %w", err)
	}

	hash, err := core.HashSecret(password)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}

	admin := &Admin{
		ID:           uuid.New().String(),
		Email:        NormalizeEmail(email),
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, admin); err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return s.repo.GetByEmail(ctx, email)
		}
		return nil, fmt.Errorf("create default admin: %w", err)
	}

	slog.InfoContext(ctx, "default admin created", "admin_id", admin.ID)
	return admin, nil
}

// ResolveIdentity looks the subject up as an admin first and then as a
// customer. It returns core.ErrNotFound when neither exists.
func (s *Service) ResolveIdentity(
	ctx context.Context,
	id string,
) (*middleware.Identity, error) {
	admin, err := s.repo.GetByID(ctx, id)
	if err == nil {
		return &middleware.Identity{ID: admin.ID, Role: middleware.RoleAdmin}, nil
	}
	if !errors.Is(err, core.ErrNotFound) {
		return nil, fmt.Errorf("resolve admin: %w", err)
	}

	state, err := s.userProvider.GetAccountState(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	return &middleware.Identity{
		ID:    id,
		Role:  middleware.RoleUser,
		State: state,
	}, nil
}
