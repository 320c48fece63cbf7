package loyalty

import (
	"context"
	"errors"
	"fmt"
)

// Service coordinates loyalty-customer bookkeeping.
type Service struct {
	repo Repository
}

// NewService builds Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a new loyalty customer with a zero credit balance and a
// zero purchase accumulator.
func (s *Service) Register(ctx context.Context, req RegisterCustomerRequest) (*Customer, error) {
	customer := Customer{
		CIN:       req.CIN,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}
	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("register customer: %w", err)
	}
	return &customer, nil
}

func (s *Service) Get(ctx context.Context, cin int64) (*Customer, error) {
	return s.repo.Get(ctx, cin)
}

func (s *Service) List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error) {
	if req.Limit <= 0 || req.Limit > 1000 {
		req.Limit = 100
	}
	return s.repo.List(ctx, req)
}

// Update changes the customer's name fields.
func (s *Service) Update(ctx context.Context, cin int64, req UpdateCustomerRequest) (*Customer, error) {
	customer, err := s.repo.Get(ctx, cin)
	if err != nil {
		return nil, err
	}
	if req.FirstName != nil {
		customer.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		customer.LastName = *req.LastName
	}
	if err := s.repo.Update(ctx, *customer); err != nil {
		return nil, fmt.Errorf("update customer: %w", err)
	}
	return customer, nil
}

// AdjustCredit applies a manual credit adjustment. The balance is signed, so
// deductions may push it below zero.
func (s *Service) AdjustCredit(ctx context.Context, cin int64, amount float64, direction string) (*Customer, error) {
	if amount <= 0 {
		return nil, errors.New("loyalty: adjustment amount must be > 0")
	}
	customer, err := s.repo.Get(ctx, cin)
	if err != nil {
		return nil, err
	}
	switch direction {
	case "add":
		customer.AdjustCredit(amount)
	case "deduct":
		customer.AdjustCredit(-amount)
	default:
		return nil, fmt.Errorf("loyalty: unknown adjustment direction %q", direction)
	}
	if err := s.repo.Update(ctx, *customer); err != nil {
		return nil, fmt.Errorf("adjust credit: %w", err)
	}
	return customer, nil
}

func (s *Service) Delete(ctx context.Context, cin int64) error {
	return s.repo.Delete(ctx, cin)
}
