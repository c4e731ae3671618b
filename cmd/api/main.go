package main

import (
	"context"
	"net/http"
	"os"

	"activityTracker/internal/config"
	"activityTracker/internal/handlers"
	"activityTracker/internal/logger"
	"activityTracker/internal/middleware"
	"activityTracker/internal/migrations"
	activityinmem "activityTracker/internal/repository/activity/inmemory"
	activitypg "activityTracker/internal/repository/activity/postgres"
	directoryinmem "activityTracker/internal/repository/directory/inmemory"
	directorypg "activityTracker/internal/repository/directory/postgres"
	"activityTracker/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("конфигурация: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Development); err != nil {
		os.Stderr.WriteString("логгер: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	var (
		activityRepo  service.ActivityRepository
		directoryRepo service.DirectoryRepository
		statsRepo     service.StatsRepository
	)

	switch cfg.Repository.Type {
	case "inmemory":
		dir := directoryinmem.NewStorage()
		store := activityinmem.NewStorage(dir)
		activityRepo = store
		directoryRepo = dir
		statsRepo = store
		logger.Info("Хранилище: inmemory")
	default:
		ctx := context.Background()
		store, err := activitypg.New(ctx, cfg.Database.URL,
			cfg.Database.MaxConnections, cfg.Database.MinConnections, cfg.Database.IdleTimeout)
		if err != nil {
			logger.Error("Не удалось подключиться к Postgres", err)
			os.Exit(1)
		}
		defer store.Close()

		if err := migrations.Up(cfg.Database.URL); err != nil {
			logger.Error("Миграции не применились", err)
			os.Exit(1)
		}

		activityRepo = store
		directoryRepo = directorypg.New(store.Pool())
		statsRepo = store
		logger.Info("Хранилище: postgres")
	}

	activityService := service.NewActivityService(activityRepo, directoryRepo)
	directoryService := service.NewDirectoryService(directoryRepo)
	statsService := service.NewStatsService(statsRepo)

	activityHandler := handlers.NewActivityHandler(&activityService)
	directoryHandler := handlers.NewDirectoryHandler(&directoryService)
	statsHandler := handlers.NewStatsHandler(&statsService)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics)
	r.Use(middleware.RateLimit(100))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Route("/activities", func(r chi.Router) {
			r.Get("/", activityHandler.GetActivities)         // GET /api/activities
			r.Post("/", activityHandler.PostActivity)         // POST /api/activities
			r.Get("/latest-week", activityHandler.GetLatestWeek)

			r.Put("/{id}", activityHandler.UpdateActivityByID) // PUT /api/activities/{id}
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", directoryHandler.GetUsers)
			r.Post("/", directoryHandler.PostUser)
			r.Put("/{id}", directoryHandler.UpdateUserByID)
			r.Delete("/{id}", directoryHandler.DeleteUserByID)
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", directoryHandler.GetProducts)
			r.Post("/", directoryHandler.PostProduct)
			r.Put("/{id}", directoryHandler.UpdateProductByID)
			r.Delete("/{id}", directoryHandler.DeleteProductByID)
		})

		r.Get("/stats", statsHandler.GetStats)
		r.Get("/dashboard-stats", statsHandler.GetDashboardStats)
	})

	r.Get("/health", activityHandler.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	logger.Info("Server started", zap.String("addr", cfg.GetServerAddr()))
	if err := http.ListenAndServe(cfg.GetServerAddr(), r); err != nil {
		logger.Error("Сервер остановился", err)
		os.Exit(1)
	}
}
