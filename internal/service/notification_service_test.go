package service

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/roadside-assist/internal/domain"
	"github.com/spec-kit/roadside-assist/internal/push"
)

func TestNotificationRoutingOnCreate(t *testing.T) {
	env := newTestEnv(t)
	capture := newCaptureChannel()
	NewNotificationService(capture, zap.NewNop()).Register(env.dispatcher)

	requester := env.addUser(t, domain.UserRoleRequester)
	request := env.addPendingRequest(t, requester.ID, 12.90, 77.55)

	feed := capture.byTopic(push.TopicMechanicsPending)
	if len(feed) != 1 || feed[0].Type != push.MessageNewRequest {
		t.Fatalf("mechanic feed = %v, want one NEW_REQUEST", feed)
	}
	own := capture.byTopic(push.TopicUser(requester.ID))
	if len(own) != 1 || own[0].Type != push.MessageStatusUpdate {
		t.Fatalf("user topic = %v, want one STATUS_UPDATE", own)
	}
	if got := capture.byTopic(push.TopicRequest(request.ID)); len(got) != 0 {
		t.Fatalf("request topic got %v before any transition", got)
	}
}

func TestNotificationRoutingOnAccept(t *testing.T) {
	env := newTestEnv(t)
	capture := newCaptureChannel()
	NewNotificationService(capture, zap.NewNop()).Register(env.dispatcher)

	requester := env.addUser(t, domain.UserRoleRequester)
	mechanic := env.addMechanic(t, 12.98, 77.60, true, true)
	request := env.addPendingRequest(t, requester.ID, 12.90, 77.55)

	if _, err := env.dispatchSvc.Accept(context.Background(), mechanic.ID, request.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}

	for _, topic := range []string{
		push.TopicUser(requester.ID),
		push.TopicRequest(request.ID),
		push.TopicMechanic(mechanic.ID),
	} {
		msgs := capture.byTopic(topic)
		found := false
		for _, msg := range msgs {
			if msg.Type == push.MessageStatusUpdate {
				found = true
			}
		}
		if !found {
			t.Fatalf("topic %s missing STATUS_UPDATE, got %v", topic, msgs)
		}
	}
}

func TestNotificationRoutingOnCancel(t *testing.T) {
	env := newTestEnv(t)
	capture := newCaptureChannel()
	NewNotificationService(capture, zap.NewNop()).Register(env.dispatcher)

	requester := env.addUser(t, domain.UserRoleRequester)
	mechanic := env.addMechanic(t, 12.98, 77.60, true, true)
	request := env.addPendingRequest(t, requester.ID, 12.90, 77.55)
	ctx := context.Background()

	if _, err := env.dispatchSvc.Accept(ctx, mechanic.ID, request.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := env.requestSvc.Cancel(ctx, requester.ID, request.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	// The released mechanic hears about it even though the record no longer
	// names them.
	msgs := capture.byTopic(push.TopicMechanic(mechanic.ID))
	found := false
	for _, msg := range msgs {
		if msg.Type == push.MessageRequestCancelled {
			found = true
		}
	}
	if !found {
		t.Fatalf("mechanic topic missing REQUEST_CANCELLED, got %v", msgs)
	}
}

func TestCancelOfUnclaimedRequestNotifiesNoMechanic(t *testing.T) {
	env := newTestEnv(t)
	capture := newCaptureChannel()
	NewNotificationService(capture, zap.NewNop()).Register(env.dispatcher)

	requester := env.addUser(t, domain.UserRoleRequester)
	mechanic := env.addMechanic(t, 12.98, 77.60, true, true)
	request := env.addPendingRequest(t, requester.ID, 12.90, 77.55)

	if _, err := env.requestSvc.Cancel(context.Background(), requester.ID, request.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if got := capture.byTopic(push.TopicMechanic(mechanic.ID)); len(got) != 0 {
		t.Fatalf("mechanic topic got %v for a never-claimed request", got)
	}
	for _, msg := range capture.byTopic(push.TopicMechanicsPending) {
		if msg.Type == push.MessageRequestCancelled {
			t.Fatalf("shared feed received REQUEST_CANCELLED")
		}
	}
}

func TestLocationUpdatesScopedToActiveRequests(t *testing.T) {
	env := newTestEnv(t)
	capture := newCaptureChannel()
	NewNotificationService(capture, zap.NewNop()).Register(env.dispatcher)

	requester := env.addUser(t, domain.UserRoleRequester)
	mechanic := env.addMechanic(t, 12.98, 77.60, true, true)
	ctx := context.Background()

	// Tick with no active work produces no traffic.
	if _, err := env.mechanicSvc.UpdateLocation(ctx, mechanic.ID, 12.97, 77.59); err != nil {
		t.Fatalf("update location: %v", err)
	}
	for topic := range capture.messages {
		for _, msg := range capture.byTopic(topic) {
			if msg.Type == push.MessageLocationUpdate {
				t.Fatalf("location update on %s with no active requests", topic)
			}
		}
	}

	request := env.addPendingRequest(t, requester.ID, 12.90, 77.55)
	if _, err := env.dispatchSvc.Accept(ctx, mechanic.ID, request.ID); err != nil {
		t.Fatalf("accept: %v", err)
	}
	if _, err := env.mechanicSvc.UpdateLocation(ctx, mechanic.ID, 12.95, 77.58); err != nil {
		t.Fatalf("update location: %v", err)
	}

	msgs := capture.byTopic(push.TopicRequest(request.ID))
	found := false
	for _, msg := range msgs {
		if msg.Type == push.MessageLocationUpdate {
			found = true
		}
	}
	if !found {
		t.Fatalf("request topic missing LOCATION_UPDATE, got %v", msgs)
	}
}
