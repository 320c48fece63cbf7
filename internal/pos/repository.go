package pos

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/officina-pos/officina/internal/catalog/devices"
	"github.com/officina-pos/officina/internal/catalog/medicaments"
	"github.com/officina-pos/officina/internal/loyalty"
	"github.com/officina-pos/officina/internal/platform/db"
)

// Repository opens transactions spanning stock and loyalty state. Every
// purchase commits both sides atomically or not at all.
type Repository interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error
}

// TxRepository is the per-transaction data surface of a purchase. Lookups take
// row locks so concurrent purchases of the same item serialize.
type TxRepository interface {
	MedicamentByName(ctx context.Context, name string) (*medicaments.Medicament, error)
	DeviceByCode(ctx context.Context, code int64) (*devices.Device, error)
	CustomerByCIN(ctx context.Context, cin int64) (*loyalty.Customer, error)
	SetMedicamentStock(ctx context.Context, code int64, stock int) error
	SetDeviceStock(ctx context.Context, code int64, stock int) error
	SaveCustomerTotals(ctx context.Context, c *loyalty.Customer) error
}

type repository struct {
	db *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL-backed Repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error {
	return db.WithTx(ctx, r.db, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) MedicamentByName(ctx context.Context, name string) (*medicaments.Medicament, error) {
	query := `SELECT code, name, category, kind, price, stock FROM medicaments
		WHERE LOWER(name) = LOWER($1) ORDER BY code LIMIT 1 FOR UPDATE`

	var m medicaments.Medicament
	var kind string
	err := r.tx.QueryRow(ctx, query, name).Scan(&m.Code, &m.Name, &m.Category, &kind, &m.Price, &m.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("pos: medicament by name: %w", err)
	}
	m.Kind = medicaments.Kind(kind)
	return &m, nil
}

func (r *txRepository) DeviceByCode(ctx context.Context, code int64) (*devices.Device, error) {
	query := `SELECT code, name, price, stock FROM devices WHERE code = $1 FOR UPDATE`

	var d devices.Device
	err := r.tx.QueryRow(ctx, query, code).Scan(&d.Code, &d.Name, &d.Price, &d.Stock)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("pos: device by code: %w", err)
	}
	return &d, nil
}

func (r *txRepository) CustomerByCIN(ctx context.Context, cin int64) (*loyalty.Customer, error) {
	query := `SELECT cin, first_name, last_name, credit, total_purchases
		FROM loyalty_customers WHERE cin = $1 FOR UPDATE`

	var c loyalty.Customer
	err := r.tx.QueryRow(ctx, query, cin).Scan(&c.CIN, &c.FirstName, &c.LastName, &c.Credit, &c.TotalPurchases)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("pos: customer by cin: %w", err)
	}
	return &c, nil
}

func (r *txRepository) SetMedicamentStock(ctx context.Context, code int64, stock int) error {
	tag, err := r.tx.Exec(ctx, `UPDATE medicaments SET stock = $2, updated_at = NOW() WHERE code = $1`, code, stock)
	if err != nil {
		return fmt.Errorf("pos: set medicament stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *txRepository) SetDeviceStock(ctx context.Context, code int64, stock int) error {
	tag, err := r.tx.Exec(ctx, `UPDATE devices SET stock = $2, updated_at = NOW() WHERE code = $1`, code, stock)
	if err != nil {
		return fmt.Errorf("pos: set device stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *txRepository) SaveCustomerTotals(ctx context.Context, c *loyalty.Customer) error {
	query := `UPDATE loyalty_customers
		SET credit = $2, total_purchases = $3, updated_at = NOW() WHERE cin = $1`
	tag, err := r.tx.Exec(ctx, query, c.CIN, c.Credit, c.TotalPurchases)
	if err != nil {
		return fmt.Errorf("pos: save customer totals: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrCustomerNotFound
	}
	return nil
}
