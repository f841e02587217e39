package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/spec-kit/roadside-assist/internal/domain"
	apperrors "github.com/spec-kit/roadside-assist/pkg/util"
)

func TestAcceptAssignsMechanicAndComputesETA(t *testing.T) {
	env := newTestEnv(t)
	requester := env.addUser(t, domain.UserRoleRequester)
	mechanic := env.addMechanic(t, 12.98, 77.60, true, true)
	request := env.addPendingRequest(t, requester.ID, 12.90, 77.55)

	accepted, err := env.dispatchSvc.Accept(context.Background(), mechanic.ID, request.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.Status != domain.RequestStatusAccepted {
		t.Fatalf("status = %s, want ACCEPTED", accepted.Status)
	}
	if accepted.MechanicID == nil || *accepted.MechanicID != mechanic.ID {
		t.Fatalf("mechanic_id = %v, want %s", accepted.MechanicID, mechanic.ID)
	}
	if accepted.AcceptedAt == nil {
		t.Fatal("accepted_at not set")
	}
	if accepted.EstimatedArrival == nil {
		t.Fatal("estimated_arrival not set for mechanic with known location")
	}
	if !accepted.EstimatedArrival.After(*accepted.AcceptedAt) {
		t.Fatalf("eta %v not after accepted_at %v", accepted.EstimatedArrival, accepted.AcceptedAt)
	}
}

func TestAcceptRaceExactlyOneWinner(t *testing.T) {
	env := newTestEnv(t)
	requester := env.addUser(t, domain.UserRoleRequester)
	request := env.addPendingRequest(t, requester.ID, 12.90, 77.55)

	const contenders = 16
	mechanicIDs := make([]string, contenders)
	for i := range mechanicIDs {
		mechanicIDs[i] = env.addMechanic(t, 12.91, 77.56, true, true).ID
	}

	var wg sync.WaitGroup
	outcomes := make([]error, contenders)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, outcomes[i] = env.dispatchSvc.Accept(context.Background(), mechanicIDs[i], request.ID)
		}(i)
	}
	wg.Wait()

	wins, conflicts := 0, 0
	for _, err := range outcomes {
		switch {
		case err == nil:
			wins++
		default:
			var domainErr *apperrors.DomainError
			if !errors.As(err, &domainErr) || domainErr.Code != "CONFLICT" {
				t.Fatalf("unexpected loser error: %v", err)
			}
			conflicts++
		}
	}
	if wins != 1 {
		t.Fatalf("winners = %d, want exactly 1", wins)
	}
	if conflicts != contenders-1 {
		t.Fatalf("conflicts = %d, want %d", conflicts, contenders-1)
	}

	final, err := env.requests.GetByID(context.Background(), request.ID)
	if err != nil {
		t.Fatalf("reload request: %v", err)
	}
	if final.Status != domain.RequestStatusAccepted || final.MechanicID == nil {
		t.Fatalf("final state %s/%v, want ACCEPTED with assignee", final.Status, final.MechanicID)
	}
}

func TestAcceptRequiresEligibleProfile(t *testing.T) {
	env := newTestEnv(t)
	requester := env.addUser(t, domain.UserRoleRequester)
	request := env.addPendingRequest(t, requester.ID, 12.90, 77.55)

	unverified := env.addMechanic(t, 12.91, 77.56, true, false)
	if _, err := env.dispatchSvc.Accept(context.Background(), unverified.ID, request.ID); err == nil {
		t.Fatal("unverified mechanic accepted a request")
	} else {
		assertErrCode(t, err, "FORBIDDEN")
	}

	unavailable := env.addMechanic(t, 12.91, 77.56, false, true)
	if _, err := env.dispatchSvc.Accept(context.Background(), unavailable.ID, request.ID); err == nil {
		t.Fatal("unavailable mechanic accepted a request")
	} else {
		assertErrCode(t, err, "CONFLICT")
	}

	plainUser := env.addUser(t, domain.UserRoleRequester)
	if _, err := env.dispatchSvc.Accept(context.Background(), plainUser.ID, request.ID); err == nil {
		t.Fatal("user without profile accepted a request")
	} else {
		assertErrCode(t, err, "FORBIDDEN")
	}
}

func TestAcceptWithoutLocationLeavesETAUnset(t *testing.T) {
	env := newTestEnv(t)
	requester := env.addUser(t, domain.UserRoleRequester)
	request := env.addPendingRequest(t, requester.ID, 12.90, 77.55)

	mechanic := env.addUser(t, domain.UserRoleMechanic)
	profile := &domain.MechanicProfile{UserID: mechanic.ID, Available: true, Verified: true}
	if err := env.mechanics.Create(context.Background(), profile); err != nil {
		t.Fatalf("create profile: %v", err)
	}

	accepted, err := env.dispatchSvc.Accept(context.Background(), mechanic.ID, request.ID)
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	if accepted.EstimatedArrival != nil {
		t.Fatalf("eta = %v, want nil for mechanic without location", accepted.EstimatedArrival)
	}
}

func TestLifecycleStartAndComplete(t *testing.T) {
	env := newTestEnv(t)
	requester := env.addUser(t, domain.UserRoleRequester)
	mechanic := env.addMechanic(t, 12.98, 77.60, true, true)
	request := env.addPendingRequest(t, requester.ID, 12.90, 77.55)
	ctx := context.Background()

	if _, err := env.dispatchSvc.Accept(ctx, mechanic.ID, request.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	started, err := env.dispatchSvc.Start(ctx, mechanic.ID, request.ID)
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if started.Status != domain.RequestStatusInProgress || started.StartedAt == nil {
		t.Fatalf("after start: %s started_at=%v", started.Status, started.StartedAt)
	}

	completed, err := env.dispatchSvc.Complete(ctx, mechanic.ID, request.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != domain.RequestStatusCompleted || completed.CompletedAt == nil {
		t.Fatalf("after complete: %s completed_at=%v", completed.Status, completed.CompletedAt)
	}
	if completed.MechanicID == nil || *completed.MechanicID != mechanic.ID {
		t.Fatal("completed request lost its mechanic assignment")
	}

	profile, err := env.mechanics.GetByUserID(ctx, mechanic.ID)
	if err != nil {
		t.Fatalf("reload profile: %v", err)
	}
	if profile.TotalJobs != 1 {
		t.Fatalf("total_jobs = %d, want 1", profile.TotalJobs)
	}
}

func TestStartRejectsForeignMechanic(t *testing.T) {
	env := newTestEnv(t)
	requester := env.addUser(t, domain.UserRoleRequester)
	assignee := env.addMechanic(t, 12.98, 77.60, true, true)
	other := env.addMechanic(t, 12.99, 77.61, true, true)
	request := env.addPendingRequest(t, requester.ID, 12.90, 77.55)
	ctx := context.Background()

	if _, err := env.dispatchSvc.Accept(ctx, assignee.ID, request.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	_, err := env.dispatchSvc.Start(ctx, other.ID, request.ID)
	assertErrCode(t, err, "FORBIDDEN")
}

func TestCompleteRequiresInProgress(t *testing.T) {
	env := newTestEnv(t)
	requester := env.addUser(t, domain.UserRoleRequester)
	mechanic := env.addMechanic(t, 12.98, 77.60, true, true)
	request := env.addPendingRequest(t, requester.ID, 12.90, 77.55)
	ctx := context.Background()

	if _, err := env.dispatchSvc.Accept(ctx, mechanic.ID, request.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	_, err := env.dispatchSvc.Complete(ctx, mechanic.ID, request.ID)
	assertErrCode(t, err, "CONFLICT")
}

func TestRejectReleasesClaim(t *testing.T) {
	env := newTestEnv(t)
	requester := env.addUser(t, domain.UserRoleRequester)
	mechanic := env.addMechanic(t, 12.98, 77.60, true, true)
	request := env.addPendingRequest(t, requester.ID, 12.90, 77.55)
	ctx := context.Background()

	if _, err := env.dispatchSvc.Accept(ctx, mechanic.ID, request.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	released, err := env.dispatchSvc.Reject(ctx, mechanic.ID, request.ID)
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	if released.Status != domain.RequestStatusPending {
		t.Fatalf("status = %s, want PENDING after reject", released.Status)
	}
	if released.MechanicID != nil || released.AcceptedAt != nil || released.EstimatedArrival != nil {
		t.Fatalf("reject left claim traces: mechanic=%v accepted_at=%v eta=%v",
			released.MechanicID, released.AcceptedAt, released.EstimatedArrival)
	}

	pending, err := env.dispatchSvc.PendingRequests(ctx)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != request.ID {
		t.Fatalf("released request missing from the pending feed: %v", pending)
	}

	// Another mechanic can now claim it.
	second := env.addMechanic(t, 12.91, 77.56, true, true)
	if _, err := env.dispatchSvc.Accept(ctx, second.ID, request.ID); err != nil {
		t.Fatalf("accept after reject: %v", err)
	}
}

func TestRejectByNonAssignedIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	requester := env.addUser(t, domain.UserRoleRequester)
	mechanic := env.addMechanic(t, 12.98, 77.60, true, true)
	other := env.addMechanic(t, 12.91, 77.56, true, true)
	request := env.addPendingRequest(t, requester.ID, 12.90, 77.55)
	ctx := context.Background()

	if _, err := env.dispatchSvc.Accept(ctx, mechanic.ID, request.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	unchanged, err := env.dispatchSvc.Reject(ctx, other.ID, request.ID)
	if err != nil {
		t.Fatalf("reject by non-assigned mechanic: %v", err)
	}
	if unchanged.Status != domain.RequestStatusAccepted {
		t.Fatalf("status = %s, want ACCEPTED unchanged", unchanged.Status)
	}
	if unchanged.MechanicID == nil || *unchanged.MechanicID != mechanic.ID {
		t.Fatalf("assignment changed: %v", unchanged.MechanicID)
	}
}

func TestRejectInProgressReleasesClaim(t *testing.T) {
	env := newTestEnv(t)
	requester := env.addUser(t, domain.UserRoleRequester)
	mechanic := env.addMechanic(t, 12.98, 77.60, true, true)
	request := env.addPendingRequest(t, requester.ID, 12.90, 77.55)
	ctx := context.Background()

	if _, err := env.dispatchSvc.Accept(ctx, mechanic.ID, request.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := env.dispatchSvc.Start(ctx, mechanic.ID, request.ID); err != nil {
		t.Fatalf("start: %v", err)
	}

	released, err := env.dispatchSvc.Reject(ctx, mechanic.ID, request.ID)
	if err != nil {
		t.Fatalf("reject of started request: %v", err)
	}
	if released.Status != domain.RequestStatusPending {
		t.Fatalf("status = %s, want PENDING after reject", released.Status)
	}
	if released.MechanicID != nil || released.AcceptedAt != nil || released.EstimatedArrival != nil {
		t.Fatalf("reject left claim traces: mechanic=%v accepted_at=%v eta=%v",
			released.MechanicID, released.AcceptedAt, released.EstimatedArrival)
	}

	pending, err := env.dispatchSvc.PendingRequests(ctx)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != request.ID {
		t.Fatalf("released request missing from the pending feed: %v", pending)
	}
}

func TestActiveAndAssignedRequests(t *testing.T) {
	env := newTestEnv(t)
	requester := env.addUser(t, domain.UserRoleRequester)
	mechanic := env.addMechanic(t, 12.98, 77.60, true, true)
	ctx := context.Background()

	first := env.addPendingRequest(t, requester.ID, 12.90, 77.55)
	if _, err := env.dispatchSvc.Accept(ctx, mechanic.ID, first.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := env.dispatchSvc.Start(ctx, mechanic.ID, first.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := env.dispatchSvc.Complete(ctx, mechanic.ID, first.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	second := env.addPendingRequest(t, requester.ID, 12.92, 77.57)
	if _, err := env.dispatchSvc.Accept(ctx, mechanic.ID, second.ID); err != nil {
		t.Fatalf("accept second: %v", err)
	}

	active, err := env.dispatchSvc.ActiveRequests(ctx, mechanic.ID)
	if err != nil {
		t.Fatalf("active: %v", err)
	}
	if len(active) != 1 || active[0].ID != second.ID {
		t.Fatalf("active = %v, want only the accepted request", active)
	}

	assigned, err := env.dispatchSvc.AssignedRequests(ctx, mechanic.ID)
	if err != nil {
		t.Fatalf("assigned: %v", err)
	}
	if len(assigned) != 2 {
		t.Fatalf("assigned = %d requests, want 2", len(assigned))
	}
}
