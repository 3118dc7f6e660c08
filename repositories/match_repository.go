package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/Himlaia/gestion-torneos-sub000/models"
	"github.com/mattn/go-sqlite3"
)

var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrMatchSlotTaken   = errors.New("a match already exists at this round and slot")
	ErrMatchTeamInvalid = errors.New("match references an unknown team or referee")
)

// MatchFilter narrows List results. Nil fields match everything.
type MatchFilter struct {
	Round  *models.Round
	Status *models.MatchStatus
}

// MatchRepository is the match record store. All methods take an SQLExecutor
// so the progression engine can run create-or-update sequences in one
// transaction; no bracket rules live here beyond the (round, slot) uniqueness
// the schema enforces.
type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int64) (*models.Match, error)
	GetByRoundSlot(ctx context.Context, exec SQLExecutor, round models.Round, slot int) (*models.Match, error)
	List(ctx context.Context, exec SQLExecutor, filter MatchFilter) ([]*models.Match, error)
	UpdateTeamSide(ctx context.Context, exec SQLExecutor, id int64, side string, teamID int64) error
	UpdateResult(ctx context.Context, exec SQLExecutor, id int64, homeScore, awayScore int, homePenalties, awayPenalties *int, winnerTeamID int64) error
	UpdateSchedule(ctx context.Context, exec SQLExecutor, id int64, kickoff *time.Time, refereeID *int64, status models.MatchStatus) error
	UpdateStatus(ctx context.Context, exec SQLExecutor, id int64, status models.MatchStatus) error
	DeleteAll(ctx context.Context, exec SQLExecutor) error
}

type sqliteMatchRepository struct{}

func NewSQLiteMatchRepository() MatchRepository {
	return &sqliteMatchRepository{}
}

const matchColumns = `id, round, slot, home_team_id, away_team_id, kickoff_time, referee_id,
	home_score, away_score, home_penalties, away_penalties, winner_team_id, status, created_at`

func (r *sqliteMatchRepository) Create(ctx context.Context, exec SQLExecutor, match *models.Match) error {
	query := `
		INSERT INTO matches
			(round, slot, home_team_id, away_team_id, kickoff_time, referee_id, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	result, err := exec.ExecContext(ctx, query,
		match.Round,
		match.Slot,
		match.HomeTeamID,
		match.AwayTeamID,
		match.KickoffTime,
		match.RefereeID,
		match.Status,
	)
	if err != nil {
		return r.handleMatchError(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	match.ID = id
	return nil
}

func (r *sqliteMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int64) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = ?`
	return r.scanMatch(exec.QueryRowContext(ctx, query, id))
}

func (r *sqliteMatchRepository) GetByRoundSlot(ctx context.Context, exec SQLExecutor, round models.Round, slot int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE round = ? AND slot = ?`
	return r.scanMatch(exec.QueryRowContext(ctx, query, round, slot))
}

func (r *sqliteMatchRepository) List(ctx context.Context, exec SQLExecutor, filter MatchFilter) ([]*models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE 1 = 1`)

	args := make([]interface{}, 0, 2)
	if filter.Round != nil {
		queryBuilder.WriteString(" AND round = ?")
		args = append(args, *filter.Round)
	}
	if filter.Status != nil {
		queryBuilder.WriteString(" AND status = ?")
		args = append(args, *filter.Status)
	}

	queryBuilder.WriteString(` ORDER BY CASE round
		WHEN 'round_of_16' THEN 1
		WHEN 'quarter_final' THEN 2
		WHEN 'semi_final' THEN 3
		WHEN 'final' THEN 4
	END ASC, slot ASC`)

	rows, err := exec.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	matches := make([]*models.Match, 0)
	for rows.Next() {
		match, scanErr := r.scanMatchRow(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		matches = append(matches, match)
	}
	return matches, rows.Err()
}

func (r *sqliteMatchRepository) UpdateTeamSide(ctx context.Context, exec SQLExecutor, id int64, side string, teamID int64) error {
	column := "home_team_id"
	if side == "away" {
		column = "away_team_id"
	}
	query := `UPDATE matches SET ` + column + ` = ? WHERE id = ?`

	result, err := exec.ExecContext(ctx, query, teamID, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *sqliteMatchRepository) UpdateResult(ctx context.Context, exec SQLExecutor, id int64, homeScore, awayScore int, homePenalties, awayPenalties *int, winnerTeamID int64) error {
	query := `
		UPDATE matches
		SET home_score = ?, away_score = ?, home_penalties = ?, away_penalties = ?,
			winner_team_id = ?, status = ?
		WHERE id = ?`

	result, err := exec.ExecContext(ctx, query,
		homeScore, awayScore, homePenalties, awayPenalties, winnerTeamID, models.MatchStatusPlayed, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *sqliteMatchRepository) UpdateSchedule(ctx context.Context, exec SQLExecutor, id int64, kickoff *time.Time, refereeID *int64, status models.MatchStatus) error {
	query := `UPDATE matches SET kickoff_time = ?, referee_id = ?, status = ? WHERE id = ?`

	result, err := exec.ExecContext(ctx, query, kickoff, refereeID, status, id)
	if err != nil {
		return r.handleMatchError(err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *sqliteMatchRepository) UpdateStatus(ctx context.Context, exec SQLExecutor, id int64, status models.MatchStatus) error {
	result, err := exec.ExecContext(ctx, `UPDATE matches SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *sqliteMatchRepository) DeleteAll(ctx context.Context, exec SQLExecutor) error {
	_, err := exec.ExecContext(ctx, `DELETE FROM matches`)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *sqliteMatchRepository) scanMatch(row *sql.Row) (*models.Match, error) {
	match, err := r.scanMatchRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, err
	}
	return match, nil
}

func (r *sqliteMatchRepository) scanMatchRow(row rowScanner) (*models.Match, error) {
	match := &models.Match{}
	err := row.Scan(
		&match.ID,
		&match.Round,
		&match.Slot,
		&match.HomeTeamID,
		&match.AwayTeamID,
		&match.KickoffTime,
		&match.RefereeID,
		&match.HomeScore,
		&match.AwayScore,
		&match.HomePenalties,
		&match.AwayPenalties,
		&match.WinnerTeamID,
		&match.Status,
		&match.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return match, nil
}

func (r *sqliteMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return ErrMatchSlotTaken
		case sqlite3.ErrConstraintForeignKey:
			return ErrMatchTeamInvalid
		}
	}
	return err
}
