package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Himlaia/gestion-torneos-sub000/models"
	"github.com/mattn/go-sqlite3"
)

var (
	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamNameConflict = errors.New("team name is already in use")
	ErrTeamInMatches    = errors.New("team is referenced by scheduled matches")
)

type TeamRepository interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, id int64) (*models.Team, error)
	List(ctx context.Context) ([]*models.Team, error)
	CountByIDs(ctx context.Context, ids []int64) (int, error)
	Update(ctx context.Context, team *models.Team) error
	Delete(ctx context.Context, id int64) error
}

type sqliteTeamRepository struct {
	db *sql.DB
}

func NewSQLiteTeamRepository(db *sql.DB) TeamRepository {
	return &sqliteTeamRepository{db: db}
}

func (r *sqliteTeamRepository) Create(ctx context.Context, team *models.Team) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO teams (name, short_name) VALUES (?, ?)`,
		team.Name, team.ShortName)
	if err != nil {
		return r.handleTeamError(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	team.ID = id
	return nil
}

func (r *sqliteTeamRepository) GetByID(ctx context.Context, id int64) (*models.Team, error) {
	team := &models.Team{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, short_name, created_at FROM teams WHERE id = ?`, id).
		Scan(&team.ID, &team.Name, &team.ShortName, &team.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

func (r *sqliteTeamRepository) List(ctx context.Context) ([]*models.Team, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, short_name, created_at FROM teams ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	teams := make([]*models.Team, 0)
	for rows.Next() {
		team := &models.Team{}
		if scanErr := rows.Scan(&team.ID, &team.Name, &team.ShortName, &team.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		teams = append(teams, team)
	}
	return teams, rows.Err()
}

// CountByIDs returns how many of the given ids exist. The caller compares the
// count against the input size to detect unknown teams before seeding.
func (r *sqliteTeamRepository) CountByIDs(ctx context.Context, ids []int64) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	placeholders := make([]byte, 0, len(ids)*2)
	args := make([]interface{}, 0, len(ids))
	for i, id := range ids {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
		args = append(args, id)
	}

	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM teams WHERE id IN (`+string(placeholders)+`)`, args...).
		Scan(&count)
	return count, err
}

func (r *sqliteTeamRepository) Update(ctx context.Context, team *models.Team) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE teams SET name = ?, short_name = ? WHERE id = ?`,
		team.Name, team.ShortName, team.ID)
	if err != nil {
		return r.handleTeamError(err)
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *sqliteTeamRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM teams WHERE id = ?`, id)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
			return ErrTeamInMatches
		}
		return err
	}
	return checkAffectedRows(result, ErrTeamNotFound)
}

func (r *sqliteTeamRepository) handleTeamError(err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		return ErrTeamNameConflict
	}
	return err
}
