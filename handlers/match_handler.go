package handlers

import (
	"net/http"

	"github.com/Himlaia/gestion-torneos-sub000/models"
	"github.com/Himlaia/gestion-torneos-sub000/services"
)

type MatchHandler struct {
	matchService      services.MatchService
	tournamentService services.TournamentService
}

func NewMatchHandler(matchService services.MatchService, tournamentService services.TournamentService) *MatchHandler {
	return &MatchHandler{matchService: matchService, tournamentService: tournamentService}
}

func (h *MatchHandler) ListMatchesHandler(w http.ResponseWriter, r *http.Request) {
	var round *models.Round
	if raw := r.URL.Query().Get("round"); raw != "" {
		parsed, err := models.ParseRound(raw)
		if err != nil {
			badRequestResponse(w, r, err)
			return
		}
		round = &parsed
	}

	var status *models.MatchStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		s := models.MatchStatus(raw)
		status = &s
	}

	matches, err := h.matchService.ListMatches(r.Context(), round, status)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) GetMatchHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.GetMatch(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) RecordResultHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.ResultInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.tournamentService.RecordResult(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) ScheduleMatchHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.ScheduleInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.ScheduleMatch(r.Context(), id, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) CancelMatchHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.matchService.CancelMatch(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
