package routes

import (
	"github.com/Himlaia/gestion-torneos-sub000/handlers"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// SetupRoutes wires all handlers onto the router.
func SetupRoutes(
	router *chi.Mux,
	allowedOrigins []string,
	teamHandler *handlers.TeamHandler,
	refereeHandler *handlers.RefereeHandler,
	matchHandler *handlers.MatchHandler,
	tournamentHandler *handlers.TournamentHandler,
	webSocketHandler *handlers.WebSocketHandler,
) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	router.Route("/teams", func(r chi.Router) {
		r.Get("/", teamHandler.ListTeamsHandler)
		r.Post("/", teamHandler.CreateTeamHandler)
		r.Get("/{teamID}", teamHandler.GetTeamHandler)
		r.Put("/{teamID}", teamHandler.UpdateTeamHandler)
		r.Delete("/{teamID}", teamHandler.DeleteTeamHandler)
	})

	router.Route("/referees", func(r chi.Router) {
		r.Get("/", refereeHandler.ListRefereesHandler)
		r.Post("/", refereeHandler.CreateRefereeHandler)
		r.Get("/{refereeID}", refereeHandler.GetRefereeHandler)
		r.Put("/{refereeID}", refereeHandler.UpdateRefereeHandler)
		r.Delete("/{refereeID}", refereeHandler.DeleteRefereeHandler)
	})

	router.Route("/matches", func(r chi.Router) {
		r.Get("/", matchHandler.ListMatchesHandler)
		r.Get("/{matchID}", matchHandler.GetMatchHandler)
		r.Post("/{matchID}/result", matchHandler.RecordResultHandler)
		r.Put("/{matchID}/schedule", matchHandler.ScheduleMatchHandler)
		r.Post("/{matchID}/cancel", matchHandler.CancelMatchHandler)
	})

	router.Route("/tournament", func(r chi.Router) {
		r.Post("/seed/random", tournamentHandler.SeedRandomHandler)
		r.Post("/seed/manual", tournamentHandler.SeedManualHandler)
		r.Get("/bracket", tournamentHandler.GetBracketHandler)
		r.Get("/champion", tournamentHandler.ChampionHandler)
		r.Delete("/", tournamentHandler.ResetHandler)
	})

	router.Get("/ws/bracket", webSocketHandler.ServeWs)
}
