package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/support-room-service/internal/api/http"
	"github.com/spec-kit/support-room-service/internal/api/http/handlers"
	"github.com/spec-kit/support-room-service/internal/auth"
	"github.com/spec-kit/support-room-service/internal/config"
	"github.com/spec-kit/support-room-service/internal/events"
	"github.com/spec-kit/support-room-service/internal/locking"
	"github.com/spec-kit/support-room-service/internal/observability"
	"github.com/spec-kit/support-room-service/internal/persistence"
	"github.com/spec-kit/support-room-service/internal/repository"
	"github.com/spec-kit/support-room-service/internal/service"
	"github.com/spec-kit/support-room-service/internal/worker"
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

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	groupRepo := repository.NewGroupRepository(pool)
	roomRepo := repository.NewRoomRepository(pool)
	membershipRepo := repository.NewMembershipRepository(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	statsCache := persistence.NewRedisStatsCache(redis, cfg.Rooms.StatsCacheTTL(), logger)

	authService := service.NewAuthService(*cfg, userRepo)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)

	allocator := service.NewAllocatorService(service.AllocatorDependencies{
		GroupRepo:      groupRepo,
		RoomRepo:       roomRepo,
		MembershipRepo: membershipRepo,
		Tx:             pg,
		Locks:          locking.NewKeyedMutex(),
		Dispatcher:     dispatcher,
		Cache:          statsCache,
		Metrics:        metrics,
		Logger:         logger,
		LockWait:       cfg.Rooms.LockWaitTimeout(),
	})
	groupService := service.NewGroupService(groupRepo, pg, cfg.Rooms.DefaultCapacity)
	roomService := service.NewRoomService(roomRepo, membershipRepo)
	statsService := service.NewStatsService(groupRepo, roomRepo, statsCache)

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics)
	usersHandler := handlers.NewUsersHandler(authService)
	groupsHandler := handlers.NewGroupsHandler(groupService, statsService)
	roomsHandler := handlers.NewRoomsHandler(allocator, roomService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         healthHandler,
		Users:          usersHandler,
		Groups:         groupsHandler,
		Rooms:          roomsHandler,
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
