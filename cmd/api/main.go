package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/roadside-assist/internal/api/http"
	"github.com/spec-kit/roadside-assist/internal/api/http/handlers"
	"github.com/spec-kit/roadside-assist/internal/auth"
	"github.com/spec-kit/roadside-assist/internal/config"
	"github.com/spec-kit/roadside-assist/internal/events"
	"github.com/spec-kit/roadside-assist/internal/observability"
	"github.com/spec-kit/roadside-assist/internal/persistence"
	"github.com/spec-kit/roadside-assist/internal/push"
	"github.com/spec-kit/roadside-assist/internal/repository"
	"github.com/spec-kit/roadside-assist/internal/repository/memory"
	"github.com/spec-kit/roadside-assist/internal/service"
	"github.com/spec-kit/roadside-assist/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	metrics := observability.NewMetrics()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var (
		userStore     repository.UserStore
		mechanicStore repository.MechanicStore
		providerStore repository.ProviderStore
		requestStore  repository.RequestStore
	)
	if pool := pg.PoolHandle(); pool != nil {
		userStore = repository.NewUserRepository(pool)
		mechanicStore = repository.NewMechanicRepository(pool)
		providerStore = repository.NewProviderRepository(pool)
		requestStore = repository.NewRequestRepository(pool)
	} else {
		users := memory.NewUserStore()
		userStore = users
		mechanicStore = memory.NewMechanicStore(users)
		providerStore = memory.NewProviderStore()
		requestStore = memory.NewRequestStore()
	}

	dispatcher := events.NewInMemoryDispatcher()
	hub := push.NewHub(cfg.Push.SubscriberBuffer)

	channel := push.Channel(hub)
	if cfg.Push.RedisFanout && redis.Client != nil {
		channel = push.Fanout{hub, push.NewRedisChannel(redis.Client, logger)}
	}

	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	authMiddleware := auth.NewAuthMiddleware(tokens, userStore)

	matcher := service.NewMatchService(mechanicStore, providerStore)
	authService := service.NewAuthService(service.AuthDependencies{
		UserStore:     userStore,
		MechanicStore: mechanicStore,
		ProviderStore: providerStore,
		Tokens:        tokens,
		BcryptCost:    cfg.Auth.BcryptCost,
		Logger:        logger,
	})
	requestService := service.NewRequestService(service.RequestDependencies{
		RequestStore: requestStore,
		UserStore:    userStore,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	dispatchService := service.NewDispatchService(service.DispatchDependencies{
		RequestStore:  requestStore,
		MechanicStore: mechanicStore,
		Matcher:       matcher,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})
	mechanicService := service.NewMechanicService(service.MechanicDependencies{
		MechanicStore: mechanicStore,
		RequestStore:  requestStore,
		Dispatcher:    dispatcher,
		Logger:        logger,
	})
	providerService := service.NewProviderService(providerStore)
	adminService := service.NewAdminService(mechanicStore, providerStore, logger)
	notificationService := service.NewNotificationService(channel, logger)
	worker.StartNotificationWorker(notificationService, dispatcher)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Requests:       handlers.NewRequestsHandler(requestService),
		Mechanic:       handlers.NewMechanicHandler(dispatchService, mechanicService),
		Providers:      handlers.NewProvidersHandler(matcher, providerService, cfg.Dispatch.ProviderRadiusKm),
		Match:          handlers.NewMatchHandler(matcher, cfg.Dispatch.NearestLimit),
		Admin:          handlers.NewAdminHandler(adminService),
		Websocket:      handlers.NewWebsocketHandler(hub, requestService, logger),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
