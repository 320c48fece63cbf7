package medicaments

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/officina-pos/officina/internal/platform/httpx"
)

// ErrNotFound indicates a missing medicament row.
var ErrNotFound = fmt.Errorf("medicament: %w", httpx.ErrNotFound)

// Repository persists medicaments in PostgreSQL.
type Repository interface {
	Create(ctx context.Context, m Medicament) (int64, error)
	Get(ctx context.Context, code int64) (*Medicament, error)
	GetByName(ctx context.Context, name string) (*Medicament, error)
	List(ctx context.Context, filters ListFilters) ([]Medicament, int, error)
	Update(ctx context.Context, code int64, m Medicament) error
	UpdateStock(ctx context.Context, code int64, stock int) error
	DeleteByCode(ctx context.Context, code int64) error
	DeleteByName(ctx context.Context, name string) (int64, error)
	ListExpiringWithin(ctx context.Context, months int) ([]Medicament, error)
	Stats(ctx context.Context) (Stats, error)
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed Repository.
func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const medicamentColumns = `code, serial_no, name, category, kind, price, expiry_date, stock,
	active_compound, minimum_age, plant_source, created_at, updated_at`

func (r *repository) Create(ctx context.Context, m Medicament) (int64, error) {
	query := `INSERT INTO medicaments
		(serial_no, name, category, kind, price, expiry_date, stock, active_compound, minimum_age, plant_source)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING code`

	var code int64
	err := r.db.QueryRow(ctx, query,
		m.SerialNo, m.Name, m.Category, string(m.Kind), m.Price,
		expiryParam(m.Expiry), m.Stock,
		textParam(m.ActiveCompound), intParam(m.MinimumAge), textParam(m.PlantSource),
	).Scan(&code)
	if err != nil {
		return 0, fmt.Errorf("medicaments: insert: %w", err)
	}
	return code, nil
}

func (r *repository) Get(ctx context.Context, code int64) (*Medicament, error) {
	query := `SELECT ` + medicamentColumns + ` FROM medicaments WHERE code = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, code))
}

func (r *repository) GetByName(ctx context.Context, name string) (*Medicament, error) {
	query := `SELECT ` + medicamentColumns + ` FROM medicaments WHERE LOWER(name) = LOWER($1) ORDER BY code LIMIT 1`
	return r.scanOne(r.db.QueryRow(ctx, query, name))
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]Medicament, int, error) {
	query := `SELECT ` + medicamentColumns + ` FROM medicaments WHERE 1=1`
	countQuery := `SELECT COUNT(*) FROM medicaments WHERE 1=1`
	args := []interface{}{}
	argCount := 0

	appendCond := func(format string, value interface{}) {
		argCount++
		clause := ` AND ` + fmt.Sprintf(format, "$"+strconv.Itoa(argCount))
		query += clause
		countQuery += clause
		args = append(args, value)
	}

	if filters.Prefix != "" {
		appendCond(`name ILIKE %s`, filters.Prefix+"%")
	}
	if filters.Search != "" {
		appendCond(`name ILIKE %s`, "%"+filters.Search+"%")
	}
	if filters.Kind != "" {
		appendCond(`kind = %s`, string(filters.Kind))
	}
	if filters.Category != "" {
		appendCond(`LOWER(category) = LOWER(%s)`, filters.Category)
	}

	var total int
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("medicaments: count: %w", err)
	}

	query += ` ORDER BY ` + sortOrder(filters.SortBy, filters.SortDir)

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
		return nil, 0, fmt.Errorf("medicaments: list: %w", err)
	}
	defer rows.Close()

	items, err := scanAll(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (r *repository) Update(ctx context.Context, code int64, m Medicament) error {
	query := `UPDATE medicaments SET
		serial_no = $2, name = $3, category = $4, price = $5, expiry_date = $6,
		active_compound = $7, minimum_age = $8, plant_source = $9, updated_at = NOW()
		WHERE code = $1`
	tag, err := r.db.Exec(ctx, query, code,
		m.SerialNo, m.Name, m.Category, m.Price, expiryParam(m.Expiry),
		textParam(m.ActiveCompound), intParam(m.MinimumAge), textParam(m.PlantSource))
	if err != nil {
		return fmt.Errorf("medicaments: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateStock(ctx context.Context, code int64, stock int) error {
	tag, err := r.db.Exec(ctx, `UPDATE medicaments SET stock = $2, updated_at = NOW() WHERE code = $1`, code, stock)
	if err != nil {
		return fmt.Errorf("medicaments: update stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) DeleteByCode(ctx context.Context, code int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM medicaments WHERE code = $1`, code)
	if err != nil {
		return fmt.Errorf("medicaments: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) DeleteByName(ctx context.Context, name string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM medicaments WHERE LOWER(name) = LOWER($1)`, name)
	if err != nil {
		return 0, fmt.Errorf("medicaments: delete by name: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return 0, ErrNotFound
	}
	return tag.RowsAffected(), nil
}

func (r *repository) ListExpiringWithin(ctx context.Context, months int) ([]Medicament, error) {
	query := `SELECT ` + medicamentColumns + ` FROM medicaments
		WHERE expiry_date IS NOT NULL AND expiry_date <= (CURRENT_DATE + ($1 || ' months')::interval)
		ORDER BY expiry_date`
	rows, err := r.db.Query(ctx, query, months)
	if err != nil {
		return nil, fmt.Errorf("medicaments: list expiring: %w", err)
	}
	defer rows.Close()
	return scanAll(rows)
}

func (r *repository) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{ByKind: map[Kind]int{}}
	query := `SELECT COUNT(*),
		COALESCE(AVG(price), 0), COALESCE(MIN(price), 0), COALESCE(MAX(price), 0), COALESCE(SUM(price), 0)
		FROM medicaments`
	if err := r.db.QueryRow(ctx, query).Scan(&stats.Count, &stats.AvgPrice, &stats.MinPrice, &stats.MaxPrice, &stats.TotalPrice); err != nil {
		return Stats{}, fmt.Errorf("medicaments: stats: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT kind, COUNT(*) FROM medicaments GROUP BY kind`)
	if err != nil {
		return Stats{}, fmt.Errorf("medicaments: stats by kind: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var kind string
		var count int
		if err := rows.Scan(&kind, &count); err != nil {
			return Stats{}, err
		}
		stats.ByKind[Kind(kind)] = count
	}
	return stats, rows.Err()
}

func (r *repository) scanOne(row pgx.Row) (*Medicament, error) {
	m, err := scanMedicament(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func scanAll(rows pgx.Rows) ([]Medicament, error) {
	var items []Medicament
	for rows.Next() {
		m, err := scanMedicament(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *m)
	}
	return items, rows.Err()
}

func scanMedicament(row pgx.Row) (*Medicament, error) {
	var m Medicament
	var kind string
	var expiry pgtype.Date
	var compound, plant pgtype.Text
	var minAge pgtype.Int4
	err := row.Scan(&m.Code, &m.SerialNo, &m.Name, &m.Category, &kind, &m.Price, &expiry, &m.Stock,
		&compound, &minAge, &plant, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.Kind = Kind(kind)
	if expiry.Valid {
		t := expiry.Time
		m.Expiry = &t
	}
	m.ActiveCompound = compound.String
	m.MinimumAge = int(minAge.Int32)
	m.PlantSource = plant.String
	return &m, nil
}

func expiryParam(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: *t, Valid: true}
}

func textParam(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func intParam(v int) pgtype.Int4 {
	return pgtype.Int4{Int32: int32(v), Valid: v != 0}
}

func sortOrder(sortBy, sortDir string) string {
	column := "name"
	switch sortBy {
	case "price":
		column = "price"
	case "code":
		column = "code"
	case "expiry":
		column = "expiry_date"
	}
	if sortDir == "desc" {
		return column + " DESC"
	}
	return column + " ASC"
}
