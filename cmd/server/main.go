package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/fieldservice-timesheet-api/internal/api"
	"github.com/fieldservice-timesheet-api/internal/config"
	"github.com/fieldservice-timesheet-api/internal/database"
	"github.com/fieldservice-timesheet-api/internal/models"
	"github.com/fieldservice-timesheet-api/internal/reconcile"
	"github.com/fieldservice-timesheet-api/internal/repository"
	"github.com/fieldservice-timesheet-api/internal/service"
	"github.com/fieldservice-timesheet-api/internal/store"
	"github.com/fieldservice-timesheet-api/pkg/logger"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	// .env is optional; real deployments set the environment directly
	godotenv.Load()

	log := logger.New()
	log.Info().Msg("Starting timesheet API server...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	repos, cleanup, err := openStore(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open storage backend")
	}
	defer cleanup()

	if err := seedAdminAccount(context.Background(), repos); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed admin account")
	}

	hub := store.NewHub()
	services := service.NewServices(repos, hub, cfg, log)

	// Start background job processor
	go services.Job.StartProcessor(context.Background())
	log.Info().Msg("Background job processor started")

	router := api.NewRouter(services, hub, cfg, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.ReadTimeout,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Str("store", cfg.Store.Driver).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	services.Job.StopProcessor()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited gracefully")
}

// openStore builds the repository set for the configured backend
func openStore(cfg *config.Config, log zerolog.Logger) (*repository.Repositories, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverLocal:
		docs, err := store.Open(cfg.Store.LocalPath, log)
		if err != nil {
			return nil, nil, err
		}
		return store.NewRepositories(docs), func() { docs.Close() }, nil

	default:
		db, err := database.New(&cfg.Database, log)
		if err != nil {
			return nil, nil, err
		}

		migrationsPath := os.Getenv("MIGRATIONS_PATH")
		if migrationsPath == "" {
			migrationsPath = "./migrations"
		}
		if err := db.RunMigrations(migrationsPath); err != nil {
			db.Close()
			return nil, nil, err
		}

		return repository.New(db), func() { db.Close() }, nil
	}
}

// seedAdminAccount makes sure the protected admin login exists
func seedAdminAccount(ctx context.Context, repos *repository.Repositories) error {
	existing, err := repos.Person.GetByID(ctx, models.AdminAccountID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	return repos.Person.Upsert(ctx, &models.Person{
		ID:          models.AdminAccountID,
		DisplayName: "Administrateur",
		Initials:    "ADM",
		Role:        models.RoleAdmin,
		Password:    reconcile.DefaultPassword,
	})
}
