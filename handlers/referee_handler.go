package handlers

import (
	"net/http"

	"github.com/Himlaia/gestion-torneos-sub000/services"
)

type RefereeHandler struct {
	refereeService services.RefereeService
}

func NewRefereeHandler(refereeService services.RefereeService) *RefereeHandler {
	return &RefereeHandler{refereeService: refereeService}
}

type refereeRequest struct {
	FullName string `json:"full_name"`
}

func (h *RefereeHandler) CreateRefereeHandler(w http.ResponseWriter, r *http.Request) {
	var req refereeRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	referee, err := h.refereeService.CreateReferee(r.Context(), req.FullName)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"referee": referee}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RefereeHandler) ListRefereesHandler(w http.ResponseWriter, r *http.Request) {
	referees, err := h.refereeService.ListReferees(r.Context())
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"referees": referees}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RefereeHandler) GetRefereeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "refereeID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	referee, err := h.refereeService.GetReferee(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"referee": referee}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RefereeHandler) UpdateRefereeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "refereeID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req refereeRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	referee, err := h.refereeService.UpdateReferee(r.Context(), id, req.FullName)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"referee": referee}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RefereeHandler) DeleteRefereeHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "refereeID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.refereeService.DeleteReferee(r.Context(), id); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
