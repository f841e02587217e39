package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/roadside-assist/internal/auth"
	"github.com/spec-kit/roadside-assist/internal/domain"
	"github.com/spec-kit/roadside-assist/internal/repository"
	apperrors "github.com/spec-kit/roadside-assist/pkg/util"
)

// AuthService registers accounts and issues tokens. Registration also
// provisions the role-specific profile so a mechanic or provider is usable
// from their first login.
type AuthService struct {
	users      repository.UserStore
	mechanics  repository.MechanicStore
	providers  repository.ProviderStore
	tokens     *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	UserStore     repository.UserStore
	MechanicStore repository.MechanicStore
	ProviderStore repository.ProviderStore
	Tokens        *auth.TokenManager
	BcryptCost    int
	Logger        *zap.Logger
}

// ShopInput carries provider shop details collected at registration.
type ShopInput struct {
	Name      string
	Address   string
	Latitude  float64
	Longitude float64
}

// RegisterInput carries a new account.
type RegisterInput struct {
	Name            string
	Email           string
	Phone           string
	Password        string
	Role            domain.UserRole
	Specializations []string
	Shop            *ShopInput
}

// AuthResult is the outcome of a successful login or registration.
type AuthResult struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// NewAuthService constructs the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserStore,
		mechanics:  deps.MechanicStore,
		providers:  deps.ProviderStore,
		tokens:     deps.Tokens,
		bcryptCost: deps.BcryptCost,
		logger:     deps.Logger,
	}
}

// Register creates the account plus its role profile and signs the caller
// in. Mechanics and providers start unverified and stay out of matching
// until an admin approves them.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if err := validateRegistration(input); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, apperrors.NewConflict("email is already registered", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.MapError(err)
	}

	hashed, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		Phone:        strings.TrimSpace(input.Phone),
		PasswordHash: hashed,
		Role:         input.Role,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}

	switch input.Role {
	case domain.UserRoleMechanic:
		profile := &domain.MechanicProfile{
			UserID:          user.ID,
			Specializations: input.Specializations,
			Available:       true,
			Verified:        false,
		}
		if err := s.mechanics.Create(ctx, profile); err != nil {
			return nil, apperrors.MapError(err)
		}
	case domain.UserRoleProvider:
		provider := &domain.PartsProvider{
			UserID:    user.ID,
			ShopName:  strings.TrimSpace(input.Shop.Name),
			Address:   strings.TrimSpace(input.Shop.Address),
			Latitude:  input.Shop.Latitude,
			Longitude: input.Shop.Longitude,
			Open:      true,
			Verified:  false,
		}
		if err := s.providers.Create(ctx, provider); err != nil {
			return nil, apperrors.MapError(err)
		}
	}

	if s.logger != nil {
		s.logger.Info("user registered",
			zap.String("user_id", user.ID),
			zap.String("role", string(user.Role)))
	}
	return s.issue(user)
}

// Login verifies credentials and issues a token. Credential failures are
// indistinguishable on purpose.
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	if user.Status != domain.UserStatusActive {
		return nil, apperrors.NewForbidden("account suspended")
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}
