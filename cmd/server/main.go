package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/smartcity/routeplanner/internal/config"
	"github.com/smartcity/routeplanner/internal/delivery/http"
	"github.com/smartcity/routeplanner/internal/logger"
	"github.com/smartcity/routeplanner/internal/repository/postgres"
	"github.com/smartcity/routeplanner/internal/screen"
	"github.com/smartcity/routeplanner/internal/service"
)

func main() {
	// Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.IsProduction(), "routeplanner")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if cfg.GoogleMapsAPIKey == "" {
		log.Warn("GOOGLE_MAPS_API_KEY is not set, provider calls will be rejected")
	}

	// Dependency Injection: Repositories
	dataRepo, closeRepo := openRepository(cfg, log)
	defer closeRepo()

	// Dependency Injection: Session store
	store, closeStore := openSessionStore(cfg, log)
	defer closeStore()

	// Dependency Injection: Services
	mapsClient := service.NewMapsClient(cfg.MapsBaseURL, cfg.GoogleMapsAPIKey, cfg.HTTPTimeout, log.Named("maps"))
	predictor := service.NewPredictionService(cfg.PredictionEndpoint, cfg.HTTPTimeout)
	routeSvc := service.NewRouteService(mapsClient, predictor, dataRepo, log.Named("route"))
	sessions := screen.NewController(store, mapsClient, routeSvc, log.Named("session"))

	collectorCtx, stopCollector := context.WithCancel(context.Background())
	collectorDone := startCollector(collectorCtx, cfg, mapsClient, dataRepo, log)

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "Route Planner API v1.0",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		Immutable:    true,
		ErrorHandler: http.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Routes
	http.SetupRoutes(app, http.NewHandler(sessions, routeSvc, mapsClient, dataRepo, log.Named("http")))

	// Graceful shutdown
	go func() {
		log.Info("server starting", zap.String("port", cfg.Port))
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}
	stopCollector()
	<-collectorDone
	routeSvc.WaitBackground()
	log.Info("server exited gracefully")
}

func openRepository(cfg *config.Config, log *zap.Logger) (service.DataRepository, func()) {
	if cfg.DatabaseURL == "" {
		log.Info("DATABASE_URL not set, running with in-memory repository")
		return postgres.NewMockRepository(), func() {}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err == nil {
		err = pool.Ping(ctx)
	}
	if err != nil {
		log.Warn("could not connect to database, running with in-memory repository", zap.Error(err))
		if pool != nil {
			pool.Close()
		}
		return postgres.NewMockRepository(), func() {}
	}

	repo := postgres.NewPostgresRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatal("failed to prepare database schema", zap.Error(err))
	}
	log.Info("connected to PostgreSQL")
	return repo, pool.Close
}

func openSessionStore(cfg *config.Config, log *zap.Logger) (screen.Store, func()) {
	if cfg.RedisURL == "" {
		return screen.NewMemoryStore(cfg.SessionTTL), func() {}
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatal("failed to parse REDIS_URL", zap.Error(err))
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("could not connect to Redis, keeping sessions in memory", zap.Error(err))
		_ = client.Close()
		return screen.NewMemoryStore(cfg.SessionTTL), func() {}
	}

	log.Info("connected to Redis")
	return screen.NewRedisStore(client, cfg.SessionTTL), func() { _ = client.Close() }
}

// startCollector launches the traffic collector when a routes file is configured.
// The returned channel is closed once the collector has stopped.
func startCollector(ctx context.Context, cfg *config.Config, maps service.MapsProvider, repo service.DataRepository, log *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	if cfg.CollectorRoutes == "" {
		close(done)
		return done
	}

	f, err := os.Open(cfg.CollectorRoutes)
	if err != nil {
		log.Error("traffic collector disabled", zap.String("file", cfg.CollectorRoutes), zap.Error(err))
		close(done)
		return done
	}
	routes, err := service.LoadRoutePairs(f)
	_ = f.Close()
	if err != nil || len(routes) == 0 {
		log.Error("traffic collector disabled, no usable routes", zap.String("file", cfg.CollectorRoutes), zap.Error(err))
		close(done)
		return done
	}

	collector := service.NewTrafficCollector(maps, repo, routes, cfg.CollectorInterval, log.Named("collector"))
	go func() {
		defer close(done)
		collector.Run(ctx)
	}()
	return done
}
