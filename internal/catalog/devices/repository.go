package devices

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/officina-pos/officina/internal/catalog"
	"github.com/officina-pos/officina/internal/platform/httpx"
)

// ErrNotFound indicates a missing device row.
var ErrNotFound = fmt.Errorf("device: %w", httpx.ErrNotFound)

// Repository persists medical devices in PostgreSQL.
type Repository interface {
	Create(ctx context.Context, d Device) (int64, error)
	Get(ctx context.Context, code int64) (*Device, error)
	List(ctx context.Context, filters catalog.ListFilters) ([]Device, int, error)
	Update(ctx context.Context, code int64, d Device) error
	UpdateStock(ctx context.Context, code int64, stock int) error
	Delete(ctx context.Context, code int64) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed Repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, d Device) (int64, error) {
	var code int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO devices (name, price, stock) VALUES ($1, $2, $3) RETURNING code`,
		d.Name, d.Price, d.Stock,
	).Scan(&code)
	if err != nil {
		return 0, fmt.Errorf("devices: insert: %w", err)
	}
	return code, nil
}

func (r *repository) Get(ctx context.Context, code int64) (*Device, error) {
	var d Device
	err := r.db.QueryRow(ctx,
		`SELECT code, name, price, stock, created_at, updated_at FROM devices WHERE code = $1`, code,
	).Scan(&d.Code, &d.Name, &d.Price, &d.Stock, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("devices: get: %w", err)
	}
	return &d, nil
}

func (r *repository) List(ctx context.Context, filters catalog.ListFilters) ([]Device, int, error) {
	query := `SELECT code, name, price, stock, created_at, updated_at FROM devices WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM devices WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if filters.Prefix != "" {
		argCount++
		clause := ` AND name ILIKE $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, filters.Prefix+"%")
	}
	if filters.Search != "" {
		argCount++
		clause := ` AND name ILIKE $` + strconv.Itoa(argCount)
		query += clause
		countQuery += clause
		args = append(args, "%"+filters.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("devices: count: %w", err)
	}

	if filters.SortBy == "price" {
		query += ` ORDER BY price`
	} else {
		query += ` ORDER BY name`
	}
	if filters.SortDir == "desc" {
		query += ` DESC`
	}

	if filters.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, filters.Limit)
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		args = append(args, filters.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("devices: list: %w", err)
	}
	defer rows.Close()

	var items []Device
	for rows.Next() {
		var d Device
		if err := rows.Scan(&d.Code, &d.Name, &d.Price, &d.Stock, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}

func (r *repository) Update(ctx context.Context, code int64, d Device) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE devices SET name = $2, price = $3, updated_at = NOW() WHERE code = $1`,
		code, d.Name, d.Price)
	if err != nil {
		return fmt.Errorf("devices: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateStock(ctx context.Context, code int64, stock int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE devices SET stock = $2, updated_at = NOW() WHERE code = $1`, code, stock)
	if err != nil {
		return fmt.Errorf("devices: update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, code int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM devices WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("devices: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
