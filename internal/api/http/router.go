package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/roadside-assist/internal/api/http/handlers"
	"github.com/spec-kit/roadside-assist/internal/auth"
	"github.com/spec-kit/roadside-assist/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Requests       *handlers.RequestsHandler
	Mechanic       *handlers.MechanicHandler
	Providers      *handlers.ProvidersHandler
	Match          *handlers.MatchHandler
	Admin          *handlers.AdminHandler
	Websocket      *handlers.WebsocketHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	authGroup := app.Group("/auth")
	authGroup.Post("/register", cfg.Users.Register)
	authGroup.Post("/login", cfg.Users.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Users.Me)

	requests := app.Group("/service-requests", cfg.AuthMiddleware.Handle)
	requests.Post("/", cfg.Requests.Create)
	requests.Get("/", cfg.Requests.List)
	requests.Get("/active", cfg.Requests.GetActive)
	requests.Get("/:id", cfg.Requests.Get)
	requests.Put("/:id/cancel", cfg.Requests.Cancel)

	mechanic := app.Group("/mechanic", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.UserRoleMechanic))
	mechanic.Get("/requests/pending", cfg.Mechanic.Pending)
	mechanic.Get("/requests/active", cfg.Mechanic.Active)
	mechanic.Get("/requests", cfg.Mechanic.History)
	mechanic.Put("/requests/:id/accept", cfg.Mechanic.Accept)
	mechanic.Put("/requests/:id/reject", cfg.Mechanic.Reject)
	mechanic.Put("/requests/:id/start", cfg.Mechanic.Start)
	mechanic.Put("/requests/:id/complete", cfg.Mechanic.Complete)
	mechanic.Get("/profile", cfg.Mechanic.Profile)
	mechanic.Put("/profile", cfg.Mechanic.UpdateProfile)
	mechanic.Put("/availability", cfg.Mechanic.SetAvailability)
	mechanic.Put("/location", cfg.Mechanic.UpdateLocation)

	app.Get("/providers/nearby", cfg.AuthMiddleware.Handle, cfg.Providers.Nearby)
	app.Get("/mechanics/nearby", cfg.AuthMiddleware.Handle, cfg.Match.NearbyMechanics)
	provider := app.Group("/provider", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.UserRoleProvider))
	provider.Get("/shop", cfg.Providers.MyShop)
	provider.Put("/shop/open", cfg.Providers.SetOpen)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.UserRoleAdmin))
	admin.Get("/mechanics/unverified", cfg.Admin.UnverifiedMechanics)
	admin.Put("/mechanics/:userId/verify", cfg.Admin.VerifyMechanic)
	admin.Get("/providers/unverified", cfg.Admin.UnverifiedProviders)
	admin.Put("/providers/:userId/verify", cfg.Admin.VerifyProvider)

	app.Get("/ws", cfg.Websocket.Upgrade, cfg.AuthMiddleware.Handle, cfg.Websocket.Serve())
}
