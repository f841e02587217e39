package service

import (
	"context"
	"testing"

	"github.com/spec-kit/roadside-assist/internal/domain"
	"github.com/spec-kit/roadside-assist/internal/events"
)

func TestUpdateLocationPersistsAndEmitsScopedEvent(t *testing.T) {
	env := newTestEnv(t)
	requester := env.addUser(t, domain.UserRoleRequester)
	mechanic := env.addMechanic(t, 12.98, 77.60, true, true)
	request := env.addPendingRequest(t, requester.ID, 12.90, 77.55)
	ctx := context.Background()

	if _, err := env.dispatchSvc.Accept(ctx, mechanic.ID, request.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	var ticks []events.Event
	env.dispatcher.Subscribe(events.EventMechanicLocationUpdated, func(_ context.Context, e events.Event) error {
		ticks = append(ticks, e)
		return nil
	})

	profile, err := env.mechanicSvc.UpdateLocation(ctx, mechanic.ID, 12.95, 77.58)
	if err != nil {
		t.Fatalf("update location: %v", err)
	}
	if profile.CurrentLatitude == nil || *profile.CurrentLatitude != 12.95 {
		t.Fatalf("latitude = %v, want 12.95", profile.CurrentLatitude)
	}
	if profile.LocationUpdatedAt == nil {
		t.Fatal("location tick timestamp not set")
	}

	if len(ticks) != 1 {
		t.Fatalf("ticks = %d, want 1", len(ticks))
	}
	payload, ok := ticks[0].Payload.(events.MechanicLocationPayload)
	if !ok {
		t.Fatalf("payload type %T", ticks[0].Payload)
	}
	if len(payload.RequestIDs) != 1 || payload.RequestIDs[0] != request.ID {
		t.Fatalf("request ids = %v, want [%s]", payload.RequestIDs, request.ID)
	}
}

func TestUpdateLocationRejectsBadCoordinates(t *testing.T) {
	env := newTestEnv(t)
	mechanic := env.addMechanic(t, 12.98, 77.60, true, true)

	_, err := env.mechanicSvc.UpdateLocation(context.Background(), mechanic.ID, 95.0, 77.60)
	assertErrCode(t, err, "VALIDATION_FAILED")
}

func TestUpdateProfileAndAvailability(t *testing.T) {
	env := newTestEnv(t)
	mechanic := env.addMechanic(t, 12.98, 77.60, true, true)
	ctx := context.Background()

	profile, err := env.mechanicSvc.UpdateProfile(ctx, mechanic.ID, UpdateProfileInput{
		Specializations: []string{"battery"},
	})
	if err != nil {
		t.Fatalf("update profile: %v", err)
	}
	if len(profile.Specializations) != 1 || profile.Specializations[0] != "battery" {
		t.Fatalf("specializations = %v", profile.Specializations)
	}
	if !profile.Available {
		t.Fatal("availability changed by a specializations-only update")
	}

	profile, err = env.mechanicSvc.SetAvailability(ctx, mechanic.ID, false)
	if err != nil {
		t.Fatalf("set availability: %v", err)
	}
	if profile.Available {
		t.Fatal("availability still true")
	}

	// Off-duty mechanics fall out of matching.
	ranked, err := env.matchSvc.NearestMechanics(ctx, 12.90, 77.55, 10)
	if err != nil {
		t.Fatalf("nearest: %v", err)
	}
	if len(ranked) != 0 {
		t.Fatalf("candidates = %v, want none", ranked)
	}
}

func TestGetProfileUnknownUser(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.mechanicSvc.GetProfile(context.Background(), "missing")
	assertErrCode(t, err, "NOT_FOUND")
}
