package services

import "errors"

// Errors shared across services and the HTTP error mapping.
var (
	// Result recording
	ErrUnresolvedTie      = errors.New("level score requires a deciding penalty shoot-out")
	ErrInvalidScore       = errors.New("scores and penalties must be non-negative")
	ErrMatchNotReady      = errors.New("match is still waiting for a team and cannot be played")
	ErrMatchCancelled     = errors.New("match has been cancelled")
	ErrMatchAlreadyPlayed = errors.New("match result has already been recorded")
	ErrNextMatchPlayed    = errors.New("winner already advanced and the next round match has been played")

	// Seeding
	ErrBracketAlreadyStarted = errors.New("round of 16 has played matches; reseeding requires confirmation")
	ErrUnknownTeams          = errors.New("seeding references teams that do not exist")

	// Registries
	ErrTeamNameRequired    = errors.New("team name is required")
	ErrRefereeNameRequired = errors.New("referee name is required")
)
