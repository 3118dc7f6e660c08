package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Himlaia/gestion-torneos-sub000/brackets"
	"github.com/Himlaia/gestion-torneos-sub000/models"
	"github.com/Himlaia/gestion-torneos-sub000/repositories"
	"golang.org/x/sync/errgroup"
)

// Notifier receives a callback after every committed bracket mutation. The
// websocket hub implements it; tests pass nil.
type Notifier interface {
	Publish(eventType string, payload interface{})
}

// ResultInput carries a final score. Penalties are only consulted when the
// regulation score is level; otherwise they are discarded.
type ResultInput struct {
	HomeScore     int  `json:"home_score"`
	AwayScore     int  `json:"away_score"`
	HomePenalties *int `json:"home_penalties,omitempty"`
	AwayPenalties *int `json:"away_penalties,omitempty"`
}

// ResultTransition tells the caller whether a recording completed the match
// for the first time or corrected an earlier result.
type ResultTransition string

const (
	TransitionFirstRecording ResultTransition = "first_recording"
	TransitionCorrection     ResultTransition = "correction"
)

// RecordedResult is returned by RecordResult.
type RecordedResult struct {
	Match        *models.Match    `json:"match"`
	WinnerTeamID int64            `json:"winner_team_id"`
	Transition   ResultTransition `json:"transition"`
	// NextMatchID is the id of the next-round match the winner was moved
	// into; nil for the Final.
	NextMatchID *int64 `json:"next_match_id,omitempty"`
}

type TournamentService interface {
	SeedRandom(ctx context.Context, teamIDs []int64, force bool) ([]*models.Match, error)
	SeedManual(ctx context.Context, pairings []brackets.Pairing, force bool) ([]*models.Match, error)
	RecordResult(ctx context.Context, matchID int64, input ResultInput) (*RecordedResult, error)
	GetBracket(ctx context.Context) (*models.Bracket, error)
	Champion(ctx context.Context) (*int64, error)
	Reset(ctx context.Context) error
}

type tournamentService struct {
	db        *sql.DB
	matchRepo repositories.MatchRepository
	teamRepo  repositories.TeamRepository
	seeder    *brackets.Seeder
	notifier  Notifier
	logger    *slog.Logger
	now       func() time.Time
}

func NewTournamentService(
	db *sql.DB,
	matchRepo repositories.MatchRepository,
	teamRepo repositories.TeamRepository,
	seeder *brackets.Seeder,
	notifier Notifier,
	logger *slog.Logger,
) TournamentService {
	return &tournamentService{
		db:        db,
		matchRepo: matchRepo,
		teamRepo:  teamRepo,
		seeder:    seeder,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *tournamentService) SeedRandom(ctx context.Context, teamIDs []int64, force bool) ([]*models.Match, error) {
	pairings, err := s.seeder.Randomize(teamIDs)
	if err != nil {
		return nil, err
	}
	return s.seed(ctx, pairings, force)
}

func (s *tournamentService) SeedManual(ctx context.Context, pairings []brackets.Pairing, force bool) ([]*models.Match, error) {
	if err := brackets.ValidatePairings(pairings); err != nil {
		return nil, err
	}
	return s.seed(ctx, pairings, force)
}

// seed wipes the bracket (guarded once results exist) and creates the eight
// Round-of-16 fixtures at slots 1..8 in pairing order. Scheduling follows the
// house policy: two matches per day starting the day after the draw, at
// 17:00 and 19:00.
func (s *tournamentService) seed(ctx context.Context, pairings []brackets.Pairing, force bool) ([]*models.Match, error) {
	ids := make([]int64, 0, brackets.TeamCount)
	for _, p := range pairings {
		ids = append(ids, p.HomeTeamID, p.AwayTeamID)
	}
	count, err := s.teamRepo.CountByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to verify seeded teams: %w", err)
	}
	if count != len(ids) {
		return nil, ErrUnknownTeams
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	openingRound := models.RoundOf16
	existing, err := s.matchRepo.List(ctx, tx, repositories.MatchFilter{Round: &openingRound})
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		if !force {
			for _, m := range existing {
				if m.IsPlayed() {
					return nil, ErrBracketAlreadyStarted
				}
			}
		}
		// A reseed invalidates everything derived from the old draw, so the
		// whole bracket goes, not just the opening round.
		if err := s.matchRepo.DeleteAll(ctx, tx); err != nil {
			return nil, err
		}
	}

	firstDay := s.firstMatchDay()
	matches := make([]*models.Match, 0, brackets.PairingCount)
	for i, p := range pairings {
		homeID, awayID := p.HomeTeamID, p.AwayTeamID
		kickoff := firstDay.AddDate(0, 0, i/2).Add(time.Duration(17+2*(i%2)) * time.Hour)
		match := &models.Match{
			Round:       openingRound,
			Slot:        i + 1,
			HomeTeamID:  &homeID,
			AwayTeamID:  &awayID,
			KickoffTime: &kickoff,
			Status:      models.MatchStatusScheduled,
		}
		if err := s.matchRepo.Create(ctx, tx, match); err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("bracket seeded", slog.Int("matches", len(matches)))
	s.notify(brackets.EventBracketSeeded, matches)
	return matches, nil
}

func (s *tournamentService) firstMatchDay() time.Time {
	t := s.now()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location()).AddDate(0, 0, 1)
}

func (s *tournamentService) RecordResult(ctx context.Context, matchID int64, input ResultInput) (*RecordedResult, error) {
	if input.HomeScore < 0 || input.AwayScore < 0 ||
		(input.HomePenalties != nil && *input.HomePenalties < 0) ||
		(input.AwayPenalties != nil && *input.AwayPenalties < 0) {
		return nil, ErrInvalidScore
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	match, err := s.matchRepo.GetByID(ctx, tx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status == models.MatchStatusCancelled {
		return nil, ErrMatchCancelled
	}
	if !match.HasBothTeams() {
		return nil, ErrMatchNotReady
	}

	winnerID, homePens, awayPens, err := decideWinner(match, input)
	if err != nil {
		return nil, err
	}

	transition := TransitionFirstRecording
	if match.IsPlayed() {
		transition = TransitionCorrection
	}

	if err := s.matchRepo.UpdateResult(ctx, tx, match.ID, input.HomeScore, input.AwayScore, homePens, awayPens, winnerID); err != nil {
		return nil, err
	}

	nextMatchID, err := s.propagateWinner(ctx, tx, match, winnerID)
	if err != nil {
		return nil, err
	}

	updated, err := s.matchRepo.GetByID(ctx, tx, match.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Info("result recorded",
		slog.Int64("match_id", match.ID),
		slog.String("round", string(match.Round)),
		slog.Int("slot", match.Slot),
		slog.Int64("winner_team_id", winnerID),
		slog.String("transition", string(transition)))
	s.notify(brackets.EventMatchRecorded, updated)

	return &RecordedResult{
		Match:        updated,
		WinnerTeamID: winnerID,
		Transition:   transition,
		NextMatchID:  nextMatchID,
	}, nil
}

// decideWinner applies the tie-break rules: the higher score wins outright
// and any supplied penalties are dropped; a level score must be decided by
// distinct penalty counts.
func decideWinner(match *models.Match, input ResultInput) (int64, *int, *int, error) {
	switch {
	case input.HomeScore > input.AwayScore:
		return *match.HomeTeamID, nil, nil, nil
	case input.AwayScore > input.HomeScore:
		return *match.AwayTeamID, nil, nil, nil
	}

	if input.HomePenalties == nil || input.AwayPenalties == nil || *input.HomePenalties == *input.AwayPenalties {
		return 0, nil, nil, ErrUnresolvedTie
	}
	if *input.HomePenalties > *input.AwayPenalties {
		return *match.HomeTeamID, input.HomePenalties, input.AwayPenalties, nil
	}
	return *match.AwayTeamID, input.HomePenalties, input.AwayPenalties, nil
}

// propagateWinner moves a decided match's winner into its slot in the next
// round. Slots (2k-1, 2k) feed slot k; the odd slot's winner takes the home
// side, the even slot's the away side. When the target match already exists
// only the owned side is touched, which also makes re-invocation after a
// correction safe; otherwise the match is created, with the sibling's winner
// on the opposite side when that match is already decided. A correction that
// would swap a side of an already played next-round match is refused, keeping
// every played match's winner one of its own sides.
func (s *tournamentService) propagateWinner(ctx context.Context, tx repositories.SQLExecutor, match *models.Match, winnerID int64) (*int64, error) {
	nextRound, ok := match.Round.Next()
	if !ok {
		// The Final: its winner is the champion, nothing left to feed.
		return nil, nil
	}

	nextSlot := brackets.NextSlot(match.Slot)
	side := brackets.SideForSlot(match.Slot)

	next, err := s.matchRepo.GetByRoundSlot(ctx, tx, nextRound, nextSlot)
	switch {
	case err == nil:
		if next.IsPlayed() {
			advanced := next.HomeTeamID
			if side == brackets.SideAway {
				advanced = next.AwayTeamID
			}
			if advanced == nil || *advanced != winnerID {
				return nil, ErrNextMatchPlayed
			}
			return &next.ID, nil
		}
		if err := s.matchRepo.UpdateTeamSide(ctx, tx, next.ID, string(side), winnerID); err != nil {
			return nil, err
		}
		return &next.ID, nil

	case errors.Is(err, repositories.ErrMatchNotFound):
		next = &models.Match{
			Round:  nextRound,
			Slot:   nextSlot,
			Status: models.MatchStatusPending,
		}
		if side == brackets.SideHome {
			next.HomeTeamID = &winnerID
		} else {
			next.AwayTeamID = &winnerID
		}

		sibling, sibErr := s.matchRepo.GetByRoundSlot(ctx, tx, match.Round, brackets.SiblingSlot(match.Slot))
		switch {
		case sibErr == nil && sibling.WinnerTeamID != nil:
			siblingWinner := *sibling.WinnerTeamID
			if side == brackets.SideHome {
				next.AwayTeamID = &siblingWinner
			} else {
				next.HomeTeamID = &siblingWinner
			}
		case sibErr != nil && !errors.Is(sibErr, repositories.ErrMatchNotFound):
			return nil, sibErr
		}

		if err := s.matchRepo.Create(ctx, tx, next); err != nil {
			return nil, err
		}
		return &next.ID, nil

	default:
		return nil, err
	}
}

// GetBracket assembles the full tree: every round in play order, matches
// ascending by slot, rounds without matches present but empty. The four
// reads run concurrently.
func (s *tournamentService) GetBracket(ctx context.Context) (*models.Bracket, error) {
	byRound := make([][]*models.Match, len(models.Rounds))

	g, gCtx := errgroup.WithContext(ctx)
	for i, round := range models.Rounds {
		i, round := i, round
		g.Go(func() error {
			matches, err := s.matchRepo.List(gCtx, s.db, repositories.MatchFilter{Round: &round})
			if err != nil {
				return fmt.Errorf("failed to list %s matches: %w", round, err)
			}
			byRound[i] = matches
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	bracket := models.NewBracket()
	for i, round := range models.Rounds {
		bracket.Rounds[round] = byRound[i]
	}
	return bracket, nil
}

// Champion returns the winner of the Final, or nil while it is undecided.
func (s *tournamentService) Champion(ctx context.Context) (*int64, error) {
	final, err := s.matchRepo.GetByRoundSlot(ctx, s.db, models.Final, 1)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !final.IsPlayed() {
		return nil, nil
	}
	return final.WinnerTeamID, nil
}

// Reset clears every match of the bracket. Teams and referees are untouched.
func (s *tournamentService) Reset(ctx context.Context) error {
	if err := s.matchRepo.DeleteAll(ctx, s.db); err != nil {
		return err
	}
	s.logger.Info("bracket reset")
	s.notify(brackets.EventBracketReset, nil)
	return nil
}

func (s *tournamentService) notify(eventType string, payload interface{}) {
	if s.notifier == nil {
		return
	}
	s.notifier.Publish(eventType, payload)
}
