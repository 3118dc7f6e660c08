package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Himlaia/gestion-torneos-sub000/brackets"
	"github.com/Himlaia/gestion-torneos-sub000/config"
	"github.com/Himlaia/gestion-torneos-sub000/db"
	"github.com/Himlaia/gestion-torneos-sub000/handlers"
	"github.com/Himlaia/gestion-torneos-sub000/repositories"
	api "github.com/Himlaia/gestion-torneos-sub000/routes"
	"github.com/Himlaia/gestion-torneos-sub000/services"
	"github.com/go-chi/chi/v5"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort), slog.String("database", cfg.DatabasePath))

	dbConn, err := db.Connect(cfg.DatabasePath, 5*time.Second)
	if err != nil {
		logger.Error("failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database", slog.Any("error", err))
		}
	}()

	if err := db.Migrate(dbConn, cfg.MigrationsPath); err != nil {
		logger.Error("failed to run migrations", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("database ready")

	hub := brackets.NewHub(logger)
	go hub.Run()
	logger.Info("bracket feed hub started")

	matchRepo := repositories.NewSQLiteMatchRepository()
	teamRepo := repositories.NewSQLiteTeamRepository(dbConn)
	refereeRepo := repositories.NewSQLiteRefereeRepository(dbConn)

	seeder := brackets.NewSeeder(nil)

	tournamentService := services.NewTournamentService(dbConn, matchRepo, teamRepo, seeder, hub, logger)
	matchService := services.NewMatchService(dbConn, matchRepo, refereeRepo, hub, logger)
	teamService := services.NewTeamService(teamRepo)
	refereeService := services.NewRefereeService(refereeRepo)

	teamHandler := handlers.NewTeamHandler(teamService)
	refereeHandler := handlers.NewRefereeHandler(refereeService)
	matchHandler := handlers.NewMatchHandler(matchService, tournamentService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	webSocketHandler := handlers.NewWebSocketHandler(hub)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.AllowedOrigins,
		teamHandler,
		refereeHandler,
		matchHandler,
		tournamentHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
}
