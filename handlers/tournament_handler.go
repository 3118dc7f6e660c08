package handlers

import (
	"net/http"

	"github.com/Himlaia/gestion-torneos-sub000/brackets"
	"github.com/Himlaia/gestion-torneos-sub000/services"
)

type TournamentHandler struct {
	tournamentService services.TournamentService
}

func NewTournamentHandler(tournamentService services.TournamentService) *TournamentHandler {
	return &TournamentHandler{tournamentService: tournamentService}
}

type seedRandomRequest struct {
	TeamIDs []int64 `json:"team_ids"`
	Force   bool    `json:"force"`
}

func (h *TournamentHandler) SeedRandomHandler(w http.ResponseWriter, r *http.Request) {
	var req seedRandomRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.tournamentService.SeedRandom(r.Context(), req.TeamIDs, req.Force)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

type seedManualRequest struct {
	Pairings []brackets.Pairing `json:"pairings"`
	Force    bool               `json:"force"`
}

func (h *TournamentHandler) SeedManualHandler(w http.ResponseWriter, r *http.Request) {
	var req seedManualRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.tournamentService.SeedManual(r.Context(), req.Pairings, req.Force)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) GetBracketHandler(w http.ResponseWriter, r *http.Request) {
	bracket, err := h.tournamentService.GetBracket(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket.Rounds}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) ChampionHandler(w http.ResponseWriter, r *http.Request) {
	champion, err := h.tournamentService.Champion(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"champion_team_id": champion}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) ResetHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.tournamentService.Reset(r.Context()); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
