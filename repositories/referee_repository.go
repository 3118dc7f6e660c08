package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Himlaia/gestion-torneos-sub000/models"
	"github.com/mattn/go-sqlite3"
)

var (
	ErrRefereeNotFound  = errors.New("referee not found")
	ErrRefereeInMatches = errors.New("referee is assigned to matches")
)

type RefereeRepository interface {
	Create(ctx context.Context, referee *models.Referee) error
	GetByID(ctx context.Context, id int64) (*models.Referee, error)
	List(ctx context.Context) ([]*models.Referee, error)
	Update(ctx context.Context, referee *models.Referee) error
	Delete(ctx context.Context, id int64) error
}

type sqliteRefereeRepository struct {
	db *sql.DB
}

func NewSQLiteRefereeRepository(db *sql.DB) RefereeRepository {
	return &sqliteRefereeRepository{db: db}
}

func (r *sqliteRefereeRepository) Create(ctx context.Context, referee *models.Referee) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO referees (full_name) VALUES (?)`, referee.FullName)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	referee.ID = id
	return nil
}

func (r *sqliteRefereeRepository) GetByID(ctx context.Context, id int64) (*models.Referee, error) {
	referee := &models.Referee{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, full_name, created_at FROM referees WHERE id = ?`, id).
		Scan(&referee.ID, &referee.FullName, &referee.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRefereeNotFound
		}
		return nil, err
	}
	return referee, nil
}

func (r *sqliteRefereeRepository) List(ctx context.Context) ([]*models.Referee, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, full_name, created_at FROM referees ORDER BY full_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	referees := make([]*models.Referee, 0)
	for rows.Next() {
		referee := &models.Referee{}
		if scanErr := rows.Scan(&referee.ID, &referee.FullName, &referee.CreatedAt); scanErr != nil {
			return nil, scanErr
		}
		referees = append(referees, referee)
	}
	return referees, rows.Err()
}

func (r *sqliteRefereeRepository) Update(ctx context.Context, referee *models.Referee) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE referees SET full_name = ? WHERE id = ?`, referee.FullName, referee.ID)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrRefereeNotFound)
}

func (r *sqliteRefereeRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM referees WHERE id = ?`, id)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey {
			return ErrRefereeInMatches
		}
		return err
	}
	return checkAffectedRows(result, ErrRefereeNotFound)
}
