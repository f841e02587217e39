package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/roadside-assist/internal/domain"
	"github.com/spec-kit/roadside-assist/internal/events"
	"github.com/spec-kit/roadside-assist/internal/push"
	"github.com/spec-kit/roadside-assist/internal/repository/memory"
	apperrors "github.com/spec-kit/roadside-assist/pkg/util"
)

// testEnv wires the services over in-memory stores.
type testEnv struct {
	users      *memory.UserStore
	mechanics  *memory.MechanicStore
	providers  *memory.ProviderStore
	requests   *memory.RequestStore
	dispatcher events.Dispatcher

	requestSvc  *RequestService
	dispatchSvc *DispatchService
	mechanicSvc *MechanicService
	matchSvc    *MatchService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	users := memory.NewUserStore()
	mechanics := memory.NewMechanicStore(users)
	providers := memory.NewProviderStore()
	requests := memory.NewRequestStore()
	dispatcher := events.NewInMemoryDispatcher()
	logger := zap.NewNop()
	matcher := NewMatchService(mechanics, providers)

	return &testEnv{
		users:      users,
		mechanics:  mechanics,
		providers:  providers,
		requests:   requests,
		dispatcher: dispatcher,
		requestSvc: NewRequestService(RequestDependencies{
			RequestStore: requests,
			UserStore:    users,
			Dispatcher:   dispatcher,
			Logger:       logger,
		}),
		dispatchSvc: NewDispatchService(DispatchDependencies{
			RequestStore:  requests,
			MechanicStore: mechanics,
			Matcher:       matcher,
			Dispatcher:    dispatcher,
			Logger:        logger,
		}),
		mechanicSvc: NewMechanicService(MechanicDependencies{
			MechanicStore: mechanics,
			RequestStore:  requests,
			Dispatcher:    dispatcher,
			Logger:        logger,
		}),
		matchSvc: matcher,
	}
}

func (e *testEnv) addUser(t *testing.T, role domain.UserRole) *domain.User {
	t.Helper()
	user := &domain.User{
		Name:         "Test " + string(role),
		Email:        string(role) + "-" + time.Now().Format("150405.000000000") + "@example.com",
		PasswordHash: "x",
		Role:         role,
		Status:       domain.UserStatusActive,
	}
	if err := e.users.Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func (e *testEnv) addMechanic(t *testing.T, lat, lng float64, available, verified bool) *domain.User {
	t.Helper()
	user := e.addUser(t, domain.UserRoleMechanic)
	profile := &domain.MechanicProfile{
		UserID:    user.ID,
		Available: available,
		Verified:  verified,
	}
	if err := e.mechanics.Create(context.Background(), profile); err != nil {
		t.Fatalf("create mechanic profile: %v", err)
	}
	if _, err := e.mechanics.UpdateLocation(context.Background(), user.ID, lat, lng, time.Now()); err != nil {
		t.Fatalf("seed mechanic location: %v", err)
	}
	return user
}

func (e *testEnv) addPendingRequest(t *testing.T, requesterID string, lat, lng float64) *domain.ServiceRequest {
	t.Helper()
	request, err := e.requestSvc.Create(context.Background(), requesterID, CreateRequestInput{
		IssueType:   domain.IssueFlatTire,
		Description: "rear left is flat",
		Latitude:    lat,
		Longitude:   lng,
	})
	if err != nil {
		t.Fatalf("create request: %v", err)
	}
	return request
}

func assertErrCode(t *testing.T, err error, code string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", code)
	}
	var domainErr *apperrors.DomainError
	if !errors.As(err, &domainErr) {
		t.Fatalf("expected DomainError, got %T: %v", err, err)
	}
	if domainErr.Code != code {
		t.Fatalf("expected error code %s, got %s (%v)", code, domainErr.Code, err)
	}
}

// captureChannel records published push messages for assertions.
type captureChannel struct {
	mu       sync.Mutex
	messages map[string][]push.Message
}

func newCaptureChannel() *captureChannel {
	return &captureChannel{messages: make(map[string][]push.Message)}
}

func (c *captureChannel) Publish(topic string, msg push.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages[topic] = append(c.messages[topic], msg)
}

func (c *captureChannel) byTopic(topic string) []push.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]push.Message(nil), c.messages[topic]...)
}
