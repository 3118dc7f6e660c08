package services

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/Himlaia/gestion-torneos-sub000/brackets"
	"github.com/Himlaia/gestion-torneos-sub000/models"
	"github.com/Himlaia/gestion-torneos-sub000/repositories"
)

// ScheduleInput assigns a kickoff and optionally a referee to a fixture.
type ScheduleInput struct {
	KickoffTime time.Time `json:"kickoff_time"`
	RefereeID   *int64    `json:"referee_id,omitempty"`
}

type MatchService interface {
	GetMatch(ctx context.Context, id int64) (*models.Match, error)
	ListMatches(ctx context.Context, round *models.Round, status *models.MatchStatus) ([]*models.Match, error)
	ScheduleMatch(ctx context.Context, id int64, input ScheduleInput) (*models.Match, error)
	CancelMatch(ctx context.Context, id int64) (*models.Match, error)
}

type matchService struct {
	db          *sql.DB
	matchRepo   repositories.MatchRepository
	refereeRepo repositories.RefereeRepository
	notifier    Notifier
	logger      *slog.Logger
}

func NewMatchService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	refereeRepo repositories.RefereeRepository,
	notifier Notifier,
	logger *slog.Logger,
) MatchService {
	return &matchService{
		db:          db,
		matchRepo:   matchRepo,
		refereeRepo: refereeRepo,
		notifier:    notifier,
		logger:      logger,
	}
}

func (s *matchService) GetMatch(ctx context.Context, id int64) (*models.Match, error) {
	return s.matchRepo.GetByID(ctx, s.db, id)
}

func (s *matchService) ListMatches(ctx context.Context, round *models.Round, status *models.MatchStatus) ([]*models.Match, error) {
	return s.matchRepo.List(ctx, s.db, repositories.MatchFilter{Round: round, Status: status})
}

// ScheduleMatch sets kickoff and referee. The match only moves to scheduled
// once both sides are known; a half-filled fixture keeps its date but stays
// pending until its feeder match is decided.
func (s *matchService) ScheduleMatch(ctx context.Context, id int64, input ScheduleInput) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	switch match.Status {
	case models.MatchStatusPlayed:
		return nil, ErrMatchAlreadyPlayed
	case models.MatchStatusCancelled:
		return nil, ErrMatchCancelled
	}

	if input.RefereeID != nil {
		if _, err := s.refereeRepo.GetByID(ctx, *input.RefereeID); err != nil {
			return nil, err
		}
	}

	status := models.MatchStatusPending
	if match.HasBothTeams() {
		status = models.MatchStatusScheduled
	}

	kickoff := input.KickoffTime
	if err := s.matchRepo.UpdateSchedule(ctx, s.db, id, &kickoff, input.RefereeID, status); err != nil {
		return nil, err
	}

	updated, err := s.matchRepo.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	s.logger.Info("match scheduled", slog.Int64("match_id", id), slog.Time("kickoff", kickoff))
	if s.notifier != nil {
		s.notifier.Publish(brackets.EventMatchScheduled, updated)
	}
	return updated, nil
}

// CancelMatch marks a fixture cancelled. Administrative only: the engine
// never cancels a match itself, and a played match stays played.
func (s *matchService) CancelMatch(ctx context.Context, id int64) (*models.Match, error) {
	match, err := s.matchRepo.GetByID(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	if match.Status == models.MatchStatusPlayed {
		return nil, ErrMatchAlreadyPlayed
	}
	if match.Status == models.MatchStatusCancelled {
		return match, nil
	}

	if err := s.matchRepo.UpdateStatus(ctx, s.db, id, models.MatchStatusCancelled); err != nil {
		return nil, err
	}

	match.Status = models.MatchStatusCancelled
	s.logger.Info("match cancelled", slog.Int64("match_id", id))
	return match, nil
}
