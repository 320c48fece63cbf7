package devices

import (
	"context"
	"errors"

	"github.com/officina-pos/officina/internal/catalog"
)

// Service coordinates catalog operations for medical devices.
type Service struct {
	repo Repository
}

// NewService builds Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, d Device) (*Device, error) {
	if err := validate(d); err != nil {
		return nil, err
	}
	code, err := s.repo.Create(ctx, d)
	if err != nil {
		return nil, err
	}
	d.Code = code
	return &d, nil
}

func (s *Service) Get(ctx context.Context, code int64) (*Device, error) {
	return s.repo.Get(ctx, code)
}

func (s *Service) List(ctx context.Context, filters catalog.ListFilters) ([]Device, int, error) {
	if filters.Limit <= 0 || filters.Limit > 500 {
		filters.Limit = 100
	}
	return s.repo.List(ctx, filters)
}

func (s *Service) Update(ctx context.Context, code int64, d Device) error {
	if err := validate(d); err != nil {
		return err
	}
	return s.repo.Update(ctx, code, d)
}

func (s *Service) UpdateStock(ctx context.Context, code int64, stock int) error {
	if stock < 0 {
		return errors.New("devices: stock must be >= 0")
	}
	return s.repo.UpdateStock(ctx, code, stock)
}

func (s *Service) Delete(ctx context.Context, code int64) error {
	return s.repo.Delete(ctx, code)
}

func validate(d Device) error {
	if d.Name == "" {
		return errors.New("devices: name required")
	}
	if d.Price < 0 {
		return errors.New("devices: price must be >= 0")
	}
	if d.Stock < 0 {
		return errors.New("devices: stock must be >= 0")
	}
	return nil
}
