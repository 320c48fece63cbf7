package loyalty

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/officina-pos/officina/internal/platform/httpx"
)

var (
	// ErrNotFound indicates a missing customer row.
	ErrNotFound = fmt.Errorf("customer: %w", httpx.ErrNotFound)
	// ErrDuplicateCIN indicates a registration with an already-known identity number.
	ErrDuplicateCIN = fmt.Errorf("customer cin: %w", httpx.ErrDuplicate)
)

const uniqueViolation = "23505"

// Repository persists loyalty customers in PostgreSQL.
type Repository interface {
	Create(ctx context.Context, c Customer) error
	Get(ctx context.Context, cin int64) (*Customer, error)
	List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error)
	Update(ctx context.Context, c Customer) error
	Delete(ctx context.Context, cin int64) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed Repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, c Customer) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO loyalty_customers (cin, first_name, last_name, credit, total_purchases)
		 VALUES ($1, $2, $3, $4, $5)`,
		c.CIN, c.FirstName, c.LastName, c.Credit, c.TotalPurchases)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrDuplicateCIN
		}
		return fmt.Errorf("loyalty: insert: %w", err)
	}
	return nil
}

func (r *repository) Get(ctx context.Context, cin int64) (*Customer, error) {
	var c Customer
	err := r.db.QueryRow(ctx,
		`SELECT cin, first_name, last_name, credit, total_purchases, created_at, updated_at
		 FROM loyalty_customers WHERE cin = $1`, cin,
	).Scan(&c.CIN, &c.FirstName, &c.LastName, &c.Credit, &c.TotalPurchases, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("loyalty: get: %w", err)
	}
	return &c, nil
}

func (r *repository) List(ctx context.Context, req ListCustomersRequest) ([]Customer, int, error) {
	query := `SELECT cin, first_name, last_name, credit, total_purchases, created_at, updated_at
		FROM loyalty_customers WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM loyalty_customers WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	if req.Search != "" {
		argCount++
		clause := ` AND (first_name ILIKE $` + strconv.Itoa(argCount) + ` OR last_name ILIKE $` + strconv.Itoa(argCount) + `)`
		query += clause
		countQuery += clause
		args = append(args, "%"+req.Search+"%")
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("loyalty: count: %w", err)
	}

	query += ` ORDER BY last_name, first_name`
	if req.Limit > 0 {
		argCount++
		query += ` LIMIT $` + strconv.Itoa(argCount)
		args = append(args, req.Limit)
		argCount++
		query += ` OFFSET $` + strconv.Itoa(argCount)
		args = append(args, req.Offset)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("loyalty: list: %w", err)
	}
	defer rows.Close()

	var customers []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.CIN, &c.FirstName, &c.LastName, &c.Credit, &c.TotalPurchases, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, err
		}
		customers = append(customers, c)
	}
	return customers, total, rows.Err()
}

func (r *repository) Update(ctx context.Context, c Customer) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE loyalty_customers
		 SET first_name = $2, last_name = $3, credit = $4, total_purchases = $5, updated_at = NOW()
		 WHERE cin = $1`,
		c.CIN, c.FirstName, c.LastName, c.Credit, c.TotalPurchases)
	if err != nil {
		return fmt.Errorf("loyalty: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, cin int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM loyalty_customers WHERE cin = $1`, cin)
	if err != nil {
		return fmt.Errorf("loyalty: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
