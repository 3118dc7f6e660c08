package services

import (
	"context"
	"strings"

	"github.com/Himlaia/gestion-torneos-sub000/models"
	"github.com/Himlaia/gestion-torneos-sub000/repositories"
)

type RefereeService interface {
	CreateReferee(ctx context.Context, fullName string) (*models.Referee, error)
	GetReferee(ctx context.Context, id int64) (*models.Referee, error)
	ListReferees(ctx context.Context) ([]*models.Referee, error)
	UpdateReferee(ctx context.Context, id int64, fullName string) (*models.Referee, error)
	DeleteReferee(ctx context.Context, id int64) error
}

type refereeService struct {
	refereeRepo repositories.RefereeRepository
}

func NewRefereeService(refereeRepo repositories.RefereeRepository) RefereeService {
	return &refereeService{refereeRepo: refereeRepo}
}

func (s *refereeService) CreateReferee(ctx context.Context, fullName string) (*models.Referee, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, ErrRefereeNameRequired
	}
	referee := &models.Referee{FullName: fullName}
	if err := s.refereeRepo.Create(ctx, referee); err != nil {
		return nil, err
	}
	return referee, nil
}

func (s *refereeService) GetReferee(ctx context.Context, id int64) (*models.Referee, error) {
	return s.refereeRepo.GetByID(ctx, id)
}

func (s *refereeService) ListReferees(ctx context.Context) ([]*models.Referee, error) {
	return s.refereeRepo.List(ctx)
}

func (s *refereeService) UpdateReferee(ctx context.Context, id int64, fullName string) (*models.Referee, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, ErrRefereeNameRequired
	}
	referee, err := s.refereeRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	referee.FullName = fullName
	if err := s.refereeRepo.Update(ctx, referee); err != nil {
		return nil, err
	}
	return referee, nil
}

func (s *refereeService) DeleteReferee(ctx context.Context, id int64) error {
	return s.refereeRepo.Delete(ctx, id)
}
