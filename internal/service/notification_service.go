package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/roadside-assist/internal/domain"
	"github.com/spec-kit/roadside-assist/internal/events"
	"github.com/spec-kit/roadside-assist/internal/push"
)

// NotificationService translates domain events into push messages on the
// topics clients subscribe to. It is wired to the dispatcher at startup and
// stays out of the write path: transitions commit whether or not anyone is
// listening.
type NotificationService struct {
	channel push.Channel
	logger  *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(channel push.Channel, logger *zap.Logger) *NotificationService {
	return &NotificationService{channel: channel, logger: logger}
}

// Register attaches the routing handlers to the dispatcher.
func (s *NotificationService) Register(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventRequestCreated, s.onRequestCreated)
	dispatcher.Subscribe(events.EventRequestStatusChanged, s.onStatusChanged)
	dispatcher.Subscribe(events.EventRequestCancelled, s.onRequestCancelled)
	dispatcher.Subscribe(events.EventMechanicLocationUpdated, s.onLocationUpdated)
}

// onRequestCreated announces the new request to the shared mechanic feed and
// confirms it back to the requester.
func (s *NotificationService) onRequestCreated(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.RequestCreatedPayload)
	if !ok {
		s.dropMalformed(event)
		return nil
	}
	s.publish(push.TopicMechanicsPending, push.Message{
		Type:      push.MessageNewRequest,
		Payload:   payload,
		Timestamp: event.Timestamp,
	})
	s.publish(push.TopicUser(payload.Request.RequesterID), push.Message{
		Type:      push.MessageStatusUpdate,
		Payload:   payload,
		Timestamp: event.Timestamp,
	})
	return nil
}

// onStatusChanged notifies the requester, the per-request observers and the
// assigned mechanic.
func (s *NotificationService) onStatusChanged(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.RequestStatusChangedPayload)
	if !ok {
		s.dropMalformed(event)
		return nil
	}
	msg := push.Message{
		Type:      push.MessageStatusUpdate,
		Payload:   payload,
		Timestamp: event.Timestamp,
	}
	s.publish(push.TopicUser(payload.Request.RequesterID), msg)
	s.publish(push.TopicRequest(payload.Request.ID), msg)
	if payload.Request.MechanicID != nil {
		s.publish(push.TopicMechanic(*payload.Request.MechanicID), msg)
	}
	// A rejected claim puts the request back on the shared feed.
	if payload.NewStatus == domain.RequestStatusPending {
		s.publish(push.TopicMechanicsPending, push.Message{
			Type:      push.MessageNewRequest,
			Payload:   events.RequestCreatedPayload{Request: payload.Request},
			Timestamp: event.Timestamp,
		})
	}
	return nil
}

// onRequestCancelled tells the requester, the per-request observers and,
// only when a mechanic was assigned, that mechanic. The mechanic topic comes
// from the payload because the cancelled record no longer carries an
// assignment. A never-claimed request notifies no mechanic at all.
func (s *NotificationService) onRequestCancelled(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.RequestCancelledPayload)
	if !ok {
		s.dropMalformed(event)
		return nil
	}
	msg := push.Message{
		Type:      push.MessageRequestCancelled,
		Payload:   payload,
		Timestamp: event.Timestamp,
	}
	s.publish(push.TopicUser(payload.Request.RequesterID), msg)
	s.publish(push.TopicRequest(payload.Request.ID), msg)
	if payload.MechanicID != nil {
		s.publish(push.TopicMechanic(*payload.MechanicID), msg)
	}
	return nil
}

// onLocationUpdated forwards the tick only to observers of the mechanic's
// active requests. Mechanics without live work produce no traffic.
func (s *NotificationService) onLocationUpdated(_ context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.MechanicLocationPayload)
	if !ok {
		s.dropMalformed(event)
		return nil
	}
	msg := push.Message{
		Type:      push.MessageLocationUpdate,
		Payload:   payload,
		Timestamp: event.Timestamp,
	}
	for _, requestID := range payload.RequestIDs {
		s.publish(push.TopicRequest(requestID), msg)
	}
	return nil
}

func (s *NotificationService) publish(topic string, msg push.Message) {
	if s.channel == nil {
		return
	}
	s.channel.Publish(topic, msg)
}

func (s *NotificationService) dropMalformed(event events.Event) {
	if s.logger != nil {
		s.logger.Warn("dropping event with unexpected payload type",
			zap.String("event_type", string(event.Type)),
			zap.String("event_id", event.ID))
	}
}
