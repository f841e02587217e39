package service

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/roadside-assist/internal/auth"
	"github.com/spec-kit/roadside-assist/internal/domain"
)

func newAuthService(env *testEnv) *AuthService {
	return NewAuthService(AuthDependencies{
		UserStore:     env.users,
		MechanicStore: env.mechanics,
		ProviderStore: env.providers,
		Tokens:        auth.NewTokenManager("test-secret", 60),
		BcryptCost:    bcrypt.MinCost,
		Logger:        zap.NewNop(),
	})
}

func TestRegisterMechanicProvisionsProfile(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthService(env)
	ctx := context.Background()

	result, err := svc.Register(ctx, RegisterInput{
		Name:            "Asha",
		Email:           "Asha@Example.com",
		Password:        "s3cret-pass",
		Role:            domain.UserRoleMechanic,
		Specializations: []string{"engine", "tires"},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if result.Token == "" {
		t.Fatal("no token issued")
	}
	if result.User.Email != "asha@example.com" {
		t.Fatalf("email = %q, want lowercased", result.User.Email)
	}

	profile, err := env.mechanics.GetByUserID(ctx, result.User.ID)
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.Verified {
		t.Fatal("new mechanic must start unverified")
	}
	if !profile.Available {
		t.Fatal("new mechanic should start available")
	}
	if len(profile.Specializations) != 2 {
		t.Fatalf("specializations = %v", profile.Specializations)
	}
}

func TestRegisterProviderRequiresShop(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthService(env)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{
		Name:     "Parts & Co",
		Email:    "parts@example.com",
		Password: "s3cret-pass",
		Role:     domain.UserRoleProvider,
	})
	assertErrCode(t, err, "VALIDATION_FAILED")

	result, err := svc.Register(ctx, RegisterInput{
		Name:     "Parts & Co",
		Email:    "parts@example.com",
		Password: "s3cret-pass",
		Role:     domain.UserRoleProvider,
		Shop: &ShopInput{
			Name:      "Parts & Co Koramangala",
			Address:   "80 Feet Rd",
			Latitude:  12.93,
			Longitude: 77.62,
		},
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	shop, err := env.providers.GetByUserID(ctx, result.User.ID)
	if err != nil {
		t.Fatalf("shop: %v", err)
	}
	if shop.Verified {
		t.Fatal("new provider must start unverified")
	}
	if !shop.Open {
		t.Fatal("new provider should start open")
	}
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthService(env)
	ctx := context.Background()

	input := RegisterInput{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "s3cret-pass",
		Role:     domain.UserRoleRequester,
	}
	if _, err := svc.Register(ctx, input); err != nil {
		t.Fatalf("first register: %v", err)
	}
	input.Email = "ASHA@example.com"
	_, err := svc.Register(ctx, input)
	assertErrCode(t, err, "CONFLICT")
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)
	svc := newAuthService(env)
	ctx := context.Background()

	if _, err := svc.Register(ctx, RegisterInput{
		Name:     "Asha",
		Email:    "asha@example.com",
		Password: "s3cret-pass",
		Role:     domain.UserRoleRequester,
	}); err != nil {
		t.Fatalf("register: %v", err)
	}

	result, err := svc.Login(ctx, "asha@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if result.Token == "" || result.ExpiresAt.IsZero() {
		t.Fatal("login issued no usable token")
	}

	_, err = svc.Login(ctx, "asha@example.com", "wrong-pass")
	assertErrCode(t, err, "UNAUTHORIZED")

	_, err = svc.Login(ctx, "nobody@example.com", "s3cret-pass")
	assertErrCode(t, err, "UNAUTHORIZED")
}
