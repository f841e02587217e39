package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/roadside-assist/internal/auth"
	"github.com/spec-kit/roadside-assist/internal/domain"
	"github.com/spec-kit/roadside-assist/internal/push"
	"github.com/spec-kit/roadside-assist/internal/service"
)

// WebsocketHandler upgrades authenticated clients and streams hub messages
// for the topics they are allowed to observe.
type WebsocketHandler struct {
	hub      *push.Hub
	requests *service.RequestService
	logger   *zap.Logger
}

// NewWebsocketHandler constructs handler.
func NewWebsocketHandler(hub *push.Hub, requests *service.RequestService, logger *zap.Logger) *WebsocketHandler {
	return &WebsocketHandler{hub: hub, requests: requests, logger: logger}
}

// Upgrade gates the route to websocket upgrade requests.
func (h *WebsocketHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Serve handles GET /ws. Requested topics come from the comma-separated
// topics query parameter; without one the client gets its role defaults.
// Topics the caller may not observe are silently dropped rather than
// failing the whole connection.
func (h *WebsocketHandler) Serve() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		defer conn.Close()

		principal, ok := conn.Locals(auth.PrincipalKey).(*auth.Principal)
		if !ok || principal.User == nil {
			_ = conn.WriteJSON(fiber.Map{"error": "unauthorized"})
			return
		}
		user := principal.User

		topics := h.allowedTopics(user, conn.Query("topics"))
		if len(topics) == 0 {
			_ = conn.WriteJSON(fiber.Map{"error": "no subscribable topics"})
			return
		}

		sub := h.hub.Subscribe(topics...)
		defer h.hub.Unsubscribe(sub)

		if h.logger != nil {
			h.logger.Debug("websocket subscribed",
				zap.String("user_id", user.ID),
				zap.Strings("topics", topics))
		}

		done := make(chan struct{})
		go func() {
			defer close(done)
			// The read loop only watches for client close.
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case msg, open := <-sub.C():
				if !open {
					return
				}
				if err := conn.WriteJSON(msg); err != nil {
					return
				}
			case <-done:
				return
			}
		}
	})
}

// allowedTopics filters the requested topics down to those the caller may
// observe. Private topics require ownership; per-request topics require the
// same visibility as reading the request.
func (h *WebsocketHandler) allowedTopics(user *domain.User, raw string) []string {
	requested := defaultTopics(user)
	if raw != "" {
		requested = strings.Split(raw, ",")
	}

	var allowed []string
	seen := make(map[string]struct{})
	for _, topic := range requested {
		topic = strings.TrimSpace(topic)
		if topic == "" {
			continue
		}
		if _, dup := seen[topic]; dup {
			continue
		}
		if !h.mayObserve(user, topic) {
			continue
		}
		seen[topic] = struct{}{}
		allowed = append(allowed, topic)
	}
	return allowed
}

func (h *WebsocketHandler) mayObserve(user *domain.User, topic string) bool {
	switch {
	case topic == push.TopicMechanicsPending:
		return user.Role == domain.UserRoleMechanic
	case topic == push.TopicUser(user.ID):
		return true
	case topic == push.TopicMechanic(user.ID):
		return user.Role == domain.UserRoleMechanic
	case strings.HasPrefix(topic, "request."):
		requestID := strings.TrimPrefix(topic, "request.")
		_, err := h.requests.GetByID(context.Background(), user.ID, requestID)
		return err == nil
	}
	return false
}

func defaultTopics(user *domain.User) []string {
	if user.Role == domain.UserRoleMechanic {
		return []string{push.TopicMechanicsPending, push.TopicMechanic(user.ID)}
	}
	return []string{push.TopicUser(user.ID)}
}
