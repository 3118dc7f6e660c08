package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/Himlaia/gestion-torneos-sub000/brackets"
	"github.com/Himlaia/gestion-torneos-sub000/repositories"
	"github.com/Himlaia/gestion-torneos-sub000/services"
	"github.com/go-chi/chi/v5"
)

type jsonResponse map[string]interface{}

func readJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	maxBytes := 1_048_576 // 1MB
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		var syntaxError *json.SyntaxError
		var unmarshalTypeError *json.UnmarshalTypeError
		var invalidUnmarshalError *json.InvalidUnmarshalError

		switch {
		case errors.As(err, &syntaxError):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxError.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &unmarshalTypeError):
			if unmarshalTypeError.Field != "" {
				return fmt.Errorf("body contains incorrect JSON type for field %q", unmarshalTypeError.Field)
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", unmarshalTypeError.Offset)
		case errors.Is(err, io.EOF):
			return errors.New("body must not be empty")
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			fieldName := strings.TrimPrefix(err.Error(), "json: unknown field ")
			return fmt.Errorf("body contains unknown key %s", fieldName)
		case err.Error() == "http: request body too large":
			return fmt.Errorf("body must not be larger than %d bytes", maxBytes)
		case errors.As(err, &invalidUnmarshalError):
			panic(err)
		default:
			return err
		}
	}

	err = dec.Decode(&struct{}{})
	if !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return nil
}

func writeJSON(w http.ResponseWriter, status int, data interface{}, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

func getIDFromURL(r *http.Request, param string) (int64, error) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid %s parameter", param)
	}
	return id, nil
}

func errorResponse(w http.ResponseWriter, r *http.Request, status int, message interface{}) {
	env := jsonResponse{"error": message}
	if err := writeJSON(w, status, env, nil); err != nil {
		slog.Error("failed to write error response", slog.Any("error", err))
		w.WriteHeader(http.StatusInternalServerError)
	}
}

func serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal server error", slog.String("path", r.URL.Path), slog.Any("error", err))
	errorResponse(w, r, http.StatusInternalServerError, "the server encountered a problem and could not process your request")
}

func badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func notFoundResponse(w http.ResponseWriter, r *http.Request) {
	errorResponse(w, r, http.StatusNotFound, "the requested resource could not be found")
}

func conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	errorResponse(w, r, http.StatusConflict, message)
}

func unprocessableResponse(w http.ResponseWriter, r *http.Request, err error) {
	errorResponse(w, r, http.StatusUnprocessableEntity, err.Error())
}

// mapServiceErrorToHTTP translates service and repository errors into HTTP
// responses.
func mapServiceErrorToHTTP(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	// Missing resources
	case errors.Is(err, repositories.ErrMatchNotFound),
		errors.Is(err, repositories.ErrTeamNotFound),
		errors.Is(err, repositories.ErrRefereeNotFound):
		notFoundResponse(w, r)

	// Seeding validation
	case errors.Is(err, brackets.ErrInvalidSeedCount),
		errors.Is(err, brackets.ErrInvalidPairing),
		errors.Is(err, services.ErrUnknownTeams):
		unprocessableResponse(w, r, err)

	// Result validation
	case errors.Is(err, services.ErrUnresolvedTie),
		errors.Is(err, services.ErrInvalidScore),
		errors.Is(err, services.ErrMatchNotReady),
		errors.Is(err, services.ErrTeamNameRequired),
		errors.Is(err, services.ErrRefereeNameRequired):
		unprocessableResponse(w, r, err)

	// Conflicting state
	case errors.Is(err, services.ErrBracketAlreadyStarted),
		errors.Is(err, services.ErrMatchAlreadyPlayed),
		errors.Is(err, services.ErrNextMatchPlayed),
		errors.Is(err, services.ErrMatchCancelled),
		errors.Is(err, repositories.ErrMatchSlotTaken),
		errors.Is(err, repositories.ErrTeamNameConflict),
		errors.Is(err, repositories.ErrTeamInMatches),
		errors.Is(err, repositories.ErrRefereeInMatches):
		conflictResponse(w, r, err.Error())

	default:
		serverErrorResponse(w, r, err)
	}
}
