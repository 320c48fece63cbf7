package medicaments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Service coordinates catalog operations for pharmaceutical items. When a
// redis client is provided, get-by-code reads through a short-lived cache.
type Service struct {
	repo   Repository
	cache  *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewService builds Service. cache may be nil to disable caching.
func NewService(repo Repository, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

func cacheKey(code int64) string {
	return fmt.Sprintf("medicament:%d", code)
}

// Create validates variant attributes and inserts the item; the storage layer
// assigns the code.
func (s *Service) Create(ctx context.Context, m Medicament) (*Medicament, error) {
	if err := validateVariant(m); err != nil {
		return nil, err
	}
	code, err := s.repo.Create(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("create medicament: %w", err)
	}
	m.Code = code
	return &m, nil
}

// Get fetches a medicament by code, preferring the cache.
func (s *Service) Get(ctx context.Context, code int64) (*Medicament, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, cacheKey(code)).Bytes()
		if err == nil {
			var m Medicament
			if err := json.Unmarshal(raw, &m); err == nil {
				return &m, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("medicament cache read failed", slog.Any("error", err))
		}
	}

	m, err := s.repo.Get(ctx, code)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if raw, err := json.Marshal(m); err == nil {
			if err := s.cache.Set(ctx, cacheKey(code), raw, s.ttl).Err(); err != nil {
				s.logger.Warn("medicament cache write failed", slog.Any("error", err))
			}
		}
	}
	return m, nil
}

// GetByName fetches a medicament by name, case-insensitively.
func (s *Service) GetByName(ctx context.Context, name string) (*Medicament, error) {
	return s.repo.GetByName(ctx, name)
}

// List returns matching medicaments plus the unfiltered match count.
func (s *Service) List(ctx context.Context, filters ListFilters) ([]Medicament, int, error) {
	if filters.Limit <= 0 || filters.Limit > 500 {
		filters.Limit = 100
	}
	return s.repo.List(ctx, filters)
}

// Update replaces the mutable attributes of an item. The code and kind are
// fixed for the row's lifetime.
func (s *Service) Update(ctx context.Context, code int64, m Medicament) error {
	if err := validateVariant(m); err != nil {
		return err
	}
	if err := s.repo.Update(ctx, code, m); err != nil {
		return err
	}
	s.invalidate(ctx, code)
	return nil
}

// UpdateStock sets the absolute stock count for an item.
func (s *Service) UpdateStock(ctx context.Context, code int64, stock int) error {
	if stock < 0 {
		return errors.New("medicaments: stock must be >= 0")
	}
	if err := s.repo.UpdateStock(ctx, code, stock); err != nil {
		return err
	}
	s.invalidate(ctx, code)
	return nil
}

// DeleteByCode removes a single item.
func (s *Service) DeleteByCode(ctx context.Context, code int64) error {
	if err := s.repo.DeleteByCode(ctx, code); err != nil {
		return err
	}
	s.invalidate(ctx, code)
	return nil
}

// DeleteByName removes every item sharing the given name and reports how many
// rows went away.
func (s *Service) DeleteByName(ctx context.Context, name string) (int64, error) {
	return s.repo.DeleteByName(ctx, name)
}

// ListExpiringWithin returns items whose expiry date falls inside the window,
// soonest first.
func (s *Service) ListExpiringWithin(ctx context.Context, months int) ([]Medicament, error) {
	if months < 0 {
		return nil, errors.New("medicaments: months must be >= 0")
	}
	return s.repo.ListExpiringWithin(ctx, months)
}

// MarkdownExpiring discounts every item expiring inside the window and
// returns the number of items touched. Rows change one at a time so each
// discounted item's cache entry is invalidated alongside.
func (s *Service) MarkdownExpiring(ctx context.Context, months int, percent float64) (int64, error) {
	if percent <= 0 || percent >= 100 {
		return 0, errors.New("medicaments: markdown percent must be in (0, 100)")
	}
	if months < 0 {
		return 0, errors.New("medicaments: months must be >= 0")
	}

	items, err := s.repo.ListExpiringWithin(ctx, months)
	if err != nil {
		return 0, err
	}

	var touched int64
	for _, item := range items {
		if !item.ExpiresWithin(months) {
			continue
		}
		item.ApplyMarkdown(percent)
		if err := s.repo.Update(ctx, item.Code, item); err != nil {
			return touched, err
		}
		s.invalidate(ctx, item.Code)
		touched++
	}
	return touched, nil
}

// Stats aggregates catalog pricing figures.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	return s.repo.Stats(ctx)
}

func (s *Service) invalidate(ctx context.Context, code int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cacheKey(code)).Err(); err != nil {
		s.logger.Warn("medicament cache invalidation failed", slog.Any("error", err))
	}
}

func validateVariant(m Medicament) error {
	switch m.Kind {
	case KindChemical:
		if m.PlantSource != "" {
			return errors.New("medicaments: chemical item cannot carry a plant source")
		}
	case KindHerbal:
		if m.ActiveCompound != "" || m.MinimumAge != 0 {
			return errors.New("medicaments: herbal item cannot carry chemical attributes")
		}
	default:
		return fmt.Errorf("medicaments: unknown kind %q", m.Kind)
	}
	if m.Price < 0 {
		return errors.New("medicaments: price must be >= 0")
	}
	if m.Stock < 0 {
		return errors.New("medicaments: stock must be >= 0")
	}
	return nil
}
