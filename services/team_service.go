package services

import (
	"context"
	"strings"

	"github.com/Himlaia/gestion-torneos-sub000/models"
	"github.com/Himlaia/gestion-torneos-sub000/repositories"
)

type TeamService interface {
	CreateTeam(ctx context.Context, name string, shortName *string) (*models.Team, error)
	GetTeam(ctx context.Context, id int64) (*models.Team, error)
	ListTeams(ctx context.Context) ([]*models.Team, error)
	UpdateTeam(ctx context.Context, id int64, name string, shortName *string) (*models.Team, error)
	DeleteTeam(ctx context.Context, id int64) error
}

type teamService struct {
	teamRepo repositories.TeamRepository
}

func NewTeamService(teamRepo repositories.TeamRepository) TeamService {
	return &teamService{teamRepo: teamRepo}
}

func (s *teamService) CreateTeam(ctx context.Context, name string, shortName *string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}
	team := &models.Team{Name: name, ShortName: shortName}
	if err := s.teamRepo.Create(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

func (s *teamService) GetTeam(ctx context.Context, id int64) (*models.Team, error) {
	return s.teamRepo.GetByID(ctx, id)
}

func (s *teamService) ListTeams(ctx context.Context) ([]*models.Team, error) {
	return s.teamRepo.List(ctx)
}

func (s *teamService) UpdateTeam(ctx context.Context, id int64, name string, shortName *string) (*models.Team, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrTeamNameRequired
	}
	team, err := s.teamRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	team.Name = name
	team.ShortName = shortName
	if err := s.teamRepo.Update(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

func (s *teamService) DeleteTeam(ctx context.Context, id int64) error {
	return s.teamRepo.Delete(ctx, id)
}
