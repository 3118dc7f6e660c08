package handlers

import (
	"net/http"

	"github.com/Himlaia/gestion-torneos-sub000/services"
)

type TeamHandler struct {
	teamService services.TeamService
}

func NewTeamHandler(teamService services.TeamService) *TeamHandler {
	return &TeamHandler{teamService: teamService}
}

type teamRequest struct {
	Name      string  `json:"name"`
	ShortName *string `json:"short_name,omitempty"`
}

func (h *TeamHandler) CreateTeamHandler(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.teamService.CreateTeam(r.Context(), req.Name, req.ShortName)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) ListTeamsHandler(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teamService.ListTeams(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"teams": teams}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) GetTeamHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.teamService.GetTeam(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) UpdateTeamHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req teamRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	team, err := h.teamService.UpdateTeam(r.Context(), id, req.Name, req.ShortName)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"team": team}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TeamHandler) DeleteTeamHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.teamService.DeleteTeam(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
