package service

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/roadside-assist/internal/domain"
)

func TestNearestMechanicsRankedByProxyMetric(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	far := env.addMechanic(t, 13.50, 78.00, true, true)
	near := env.addMechanic(t, 12.91, 77.56, true, true)
	mid := env.addMechanic(t, 13.00, 77.70, true, true)

	ranked, err := env.matchSvc.NearestMechanics(ctx, 12.90, 77.55, 10)
	if err != nil {
		t.Fatalf("nearest: %v", err)
	}
	if len(ranked) != 3 {
		t.Fatalf("got %d candidates, want 3", len(ranked))
	}
	wantOrder := []string{near.ID, mid.ID, far.ID}
	for i, want := range wantOrder {
		if ranked[i].UserID != want {
			t.Fatalf("rank %d = %s, want %s", i, ranked[i].UserID, want)
		}
	}
}

func TestNearestMechanicsHonorsLimit(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 5; i++ {
		env.addMechanic(t, 12.90+float64(i)*0.01, 77.55, true, true)
	}

	ranked, err := env.matchSvc.NearestMechanics(context.Background(), 12.90, 77.55, 2)
	if err != nil {
		t.Fatalf("nearest: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("got %d candidates, want limit 2", len(ranked))
	}
}

func TestNearestMechanicsFiltersIneligible(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	eligible := env.addMechanic(t, 12.91, 77.56, true, true)
	env.addMechanic(t, 12.90, 77.55, false, true) // unavailable
	env.addMechanic(t, 12.90, 77.55, true, false) // unverified

	// No location.
	noLoc := env.addUser(t, domain.UserRoleMechanic)
	if err := env.mechanics.Create(ctx, &domain.MechanicProfile{
		UserID: noLoc.ID, Available: true, Verified: true,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	ranked, err := env.matchSvc.NearestMechanics(ctx, 12.90, 77.55, 10)
	if err != nil {
		t.Fatalf("nearest: %v", err)
	}
	if len(ranked) != 1 || ranked[0].UserID != eligible.ID {
		t.Fatalf("candidates = %v, want only the eligible mechanic", ranked)
	}
}

func TestNearbyProvidersRadiusAndOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	seed := func(lat, lng float64, open, verified bool) *domain.PartsProvider {
		user := env.addUser(t, domain.UserRoleProvider)
		provider := &domain.PartsProvider{
			UserID:    user.ID,
			ShopName:  "shop",
			Latitude:  lat,
			Longitude: lng,
			Open:      open,
			Verified:  verified,
		}
		if err := env.providers.Create(ctx, provider); err != nil {
			t.Fatalf("create provider: %v", err)
		}
		return provider
	}

	inner := seed(12.905, 77.555, true, true)  // under a kilometre away
	outer := seed(12.95, 77.60, true, true)    // a few kilometres away
	seed(13.90, 78.55, true, true)             // far outside the radius
	seed(12.905, 77.555, false, true)          // closed
	seed(12.905, 77.555, true, false)          // unverified

	nearby, err := env.matchSvc.NearbyProviders(ctx, 12.90, 77.55, 10)
	if err != nil {
		t.Fatalf("nearby: %v", err)
	}
	if len(nearby) != 2 {
		t.Fatalf("got %d providers, want 2 within radius", len(nearby))
	}
	if nearby[0].UserID != inner.UserID || nearby[1].UserID != outer.UserID {
		t.Fatalf("order = [%s %s], want nearest first", nearby[0].UserID, nearby[1].UserID)
	}
}

func TestEstimateArrival(t *testing.T) {
	env := newTestEnv(t)
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	lat, lng := 12.98, 77.60
	profile := &domain.MechanicProfile{CurrentLatitude: &lat, CurrentLongitude: &lng}

	eta := env.matchSvc.EstimateArrival(profile, 12.90, 77.55, now)
	if eta == nil {
		t.Fatal("eta = nil for mechanic with location")
	}
	if !eta.After(now) {
		t.Fatalf("eta %v not after now", eta)
	}

	if got := env.matchSvc.EstimateArrival(&domain.MechanicProfile{}, 12.90, 77.55, now); got != nil {
		t.Fatalf("eta = %v for mechanic without location, want nil", got)
	}
	if got := env.matchSvc.EstimateArrival(nil, 12.90, 77.55, now); got != nil {
		t.Fatalf("eta = %v for nil profile, want nil", got)
	}
}
