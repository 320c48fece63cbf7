package pos

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/officina-pos/officina/internal/catalog/devices"
	"github.com/officina-pos/officina/internal/catalog/medicaments"
	"github.com/officina-pos/officina/internal/loyalty"
	"github.com/officina-pos/officina/internal/platform/httpx"
)

type fakeRepo struct {
	medicaments map[int64]medicaments.Medicament
	devices     map[int64]devices.Device
	customers   map[int64]loyalty.Customer

	failCustomerSave bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		medicaments: map[int64]medicaments.Medicament{},
		devices:     map[int64]devices.Device{},
		customers:   map[int64]loyalty.Customer{},
	}
}

// WithTx snapshots state and restores it when fn fails, mirroring a database
// rollback.
func (f *fakeRepo) WithTx(ctx context.Context, fn func(ctx context.Context, tx TxRepository) error) error {
	meds := make(map[int64]medicaments.Medicament, len(f.medicaments))
	for k, v := range f.medicaments {
		meds[k] = v
	}
	devs := make(map[int64]devices.Device, len(f.devices))
	for k, v := range f.devices {
		devs[k] = v
	}
	custs := make(map[int64]loyalty.Customer, len(f.customers))
	for k, v := range f.customers {
		custs[k] = v
	}

	if err := fn(ctx, f); err != nil {
		f.medicaments = meds
		f.devices = devs
		f.customers = custs
		return err
	}
	return nil
}

func (f *fakeRepo) MedicamentByName(_ context.Context, name string) (*medicaments.Medicament, error) {
	for _, m := range f.medicaments {
		if strings.EqualFold(m.Name, name) {
			out := m
			return &out, nil
		}
	}
	return nil, ErrItemNotFound
}

func (f *fakeRepo) DeviceByCode(_ context.Context, code int64) (*devices.Device, error) {
	d, ok := f.devices[code]
	if !ok {
		return nil, ErrItemNotFound
	}
	out := d
	return &out, nil
}

func (f *fakeRepo) CustomerByCIN(_ context.Context, cin int64) (*loyalty.Customer, error) {
	c, ok := f.customers[cin]
	if !ok {
		return nil, ErrCustomerNotFound
	}
	out := c
	return &out, nil
}

func (f *fakeRepo) SetMedicamentStock(_ context.Context, code int64, stock int) error {
	m, ok := f.medicaments[code]
	if !ok {
		return ErrItemNotFound
	}
	m.Stock = stock
	f.medicaments[code] = m
	return nil
}

func (f *fakeRepo) SetDeviceStock(_ context.Context, code int64, stock int) error {
	d, ok := f.devices[code]
	if !ok {
		return ErrItemNotFound
	}
	d.Stock = stock
	f.devices[code] = d
	return nil
}

func (f *fakeRepo) SaveCustomerTotals(_ context.Context, c *loyalty.Customer) error {
	if f.failCustomerSave {
		return errors.New("customer store unavailable")
	}
	if _, ok := f.customers[c.CIN]; !ok {
		return ErrCustomerNotFound
	}
	f.customers[c.CIN] = *c
	return nil
}

func newTestService(repo *fakeRepo) *Service {
	return NewService(repo, slog.New(slog.DiscardHandler))
}

func TestPurchaseMedicamentChemicalDiscount(t *testing.T) {
	repo := newFakeRepo()
	repo.medicaments[1] = medicaments.Medicament{Code: 1, Name: "Doliprane", Category: "analgesic", Kind: medicaments.KindChemical, Price: 10, Stock: 3}
	repo.customers[77] = loyalty.Customer{CIN: 77, FirstName: "Amina", LastName: "Karim"}
	svc := newTestService(repo)

	result, err := svc.PurchaseMedicament(context.Background(), MedicamentPurchaseInput{Name: "doliprane", CIN: 77})
	require.NoError(t, err)
	require.InDelta(t, 8.0, result.PricePaid, 1e-9)
	require.False(t, result.BonusApplied)
	require.Equal(t, 2, result.RemainingStock)
	require.InDelta(t, 8.0, repo.customers[77].TotalPurchases, 1e-9)
	require.Equal(t, 2, repo.medicaments[1].Stock)
}

func TestPurchaseMedicamentHerbalDiscount(t *testing.T) {
	repo := newFakeRepo()
	repo.medicaments[1] = medicaments.Medicament{Code: 1, Name: "Arnica", Category: "topical", Kind: medicaments.KindHerbal, Price: 20, Stock: 1}
	repo.customers[77] = loyalty.Customer{CIN: 77}
	svc := newTestService(repo)

	result, err := svc.PurchaseMedicament(context.Background(), MedicamentPurchaseInput{Name: "Arnica", CIN: 77})
	require.NoError(t, err)
	require.InDelta(t, 18.0, result.PricePaid, 1e-9)
}

func TestPurchaseDeviceInstallment(t *testing.T) {
	repo := newFakeRepo()
	repo.devices[5] = devices.Device{Code: 5, Name: "Tensiometer", Price: 300, Stock: 2}
	repo.customers[77] = loyalty.Customer{CIN: 77}
	svc := newTestService(repo)

	result, err := svc.PurchaseDevice(context.Background(), DevicePurchaseInput{Code: 5, CIN: 77})
	require.NoError(t, err)
	require.InDelta(t, 100.0, result.PricePaid, 1e-9)
	require.Equal(t, 1, repo.devices[5].Stock)
}

func TestPurchaseAccumulatesThenExhaustsStock(t *testing.T) {
	repo := newFakeRepo()
	repo.medicaments[1] = medicaments.Medicament{Code: 1, Name: "Doliprane", Category: "analgesic", Kind: medicaments.KindChemical, Price: 10, Stock: 1}
	repo.customers[77] = loyalty.Customer{CIN: 77, TotalPurchases: 95}
	svc := newTestService(repo)

	result, err := svc.PurchaseMedicament(context.Background(), MedicamentPurchaseInput{Name: "Doliprane", CIN: 77})
	require.NoError(t, err)
	require.InDelta(t, 8.0, result.PricePaid, 1e-9)
	require.False(t, result.BonusApplied)
	require.InDelta(t, 103.0, result.CustomerTotal, 1e-9)
	require.Equal(t, 0, result.RemainingStock)

	_, err = svc.PurchaseMedicament(context.Background(), MedicamentPurchaseInput{Name: "Doliprane", CIN: 77})
	require.ErrorIs(t, err, httpx.ErrOutOfStock)

	var oos *OutOfStockError
	require.ErrorAs(t, err, &oos)
	require.Equal(t, "Doliprane", oos.Item)
	require.Equal(t, 0, oos.Available)

	require.InDelta(t, 103.0, repo.customers[77].TotalPurchases, 1e-9)
}

func TestPurchaseBonusResetsBeforeAccumulating(t *testing.T) {
	repo := newFakeRepo()
	repo.medicaments[1] = medicaments.Medicament{Code: 1, Name: "Doliprane", Category: "analgesic", Kind: medicaments.KindChemical, Price: 10, Stock: 5}
	repo.customers[77] = loyalty.Customer{CIN: 77, TotalPurchases: 103}
	svc := newTestService(repo)

	result, err := svc.PurchaseMedicament(context.Background(), MedicamentPurchaseInput{Name: "Doliprane", CIN: 77})
	require.NoError(t, err)
	require.True(t, result.BonusApplied)
	require.InDelta(t, 6.8, result.PricePaid, 1e-9)
	require.InDelta(t, 6.8, result.CustomerTotal, 1e-9)
	require.InDelta(t, 6.8, repo.customers[77].TotalPurchases, 1e-9)
}

func TestPurchaseBonusAtExactThreshold(t *testing.T) {
	repo := newFakeRepo()
	repo.medicaments[1] = medicaments.Medicament{Code: 1, Name: "Doliprane", Category: "analgesic", Kind: medicaments.KindChemical, Price: 10, Stock: 1}
	repo.customers[77] = loyalty.Customer{CIN: 77, TotalPurchases: 100}
	svc := newTestService(repo)

	result, err := svc.PurchaseMedicament(context.Background(), MedicamentPurchaseInput{Name: "Doliprane", CIN: 77})
	require.NoError(t, err)
	require.True(t, result.BonusApplied)
	require.InDelta(t, 6.8, result.PricePaid, 1e-9)
}

func TestPurchaseUnknownItem(t *testing.T) {
	repo := newFakeRepo()
	repo.customers[77] = loyalty.Customer{CIN: 77}
	svc := newTestService(repo)

	_, err := svc.PurchaseMedicament(context.Background(), MedicamentPurchaseInput{Name: "Ghost", CIN: 77})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestPurchaseUnknownCustomer(t *testing.T) {
	repo := newFakeRepo()
	repo.medicaments[1] = medicaments.Medicament{Code: 1, Name: "Doliprane", Kind: medicaments.KindChemical, Price: 10, Stock: 1}
	svc := newTestService(repo)

	_, err := svc.PurchaseMedicament(context.Background(), MedicamentPurchaseInput{Name: "Doliprane", CIN: 404})
	require.ErrorIs(t, err, ErrCustomerNotFound)
	require.Equal(t, 1, repo.medicaments[1].Stock)
}

func TestPurchaseRollsBackOnPartialFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.medicaments[1] = medicaments.Medicament{Code: 1, Name: "Doliprane", Kind: medicaments.KindChemical, Price: 10, Stock: 4}
	repo.customers[77] = loyalty.Customer{CIN: 77, TotalPurchases: 50}
	repo.failCustomerSave = true
	svc := newTestService(repo)

	_, err := svc.PurchaseMedicament(context.Background(), MedicamentPurchaseInput{Name: "Doliprane", CIN: 77})
	require.Error(t, err)
	require.Equal(t, 4, repo.medicaments[1].Stock)
	require.InDelta(t, 50.0, repo.customers[77].TotalPurchases, 1e-9)
}

func TestPurchaseRequestID(t *testing.T) {
	repo := newFakeRepo()
	repo.medicaments[1] = medicaments.Medicament{Code: 1, Name: "Doliprane", Kind: medicaments.KindChemical, Price: 10, Stock: 2}
	repo.customers[77] = loyalty.Customer{CIN: 77}
	svc := newTestService(repo)

	_, err := svc.PurchaseMedicament(context.Background(), MedicamentPurchaseInput{Name: "Doliprane", CIN: 77, RequestID: "not-a-uuid"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	result, err := svc.PurchaseMedicament(context.Background(), MedicamentPurchaseInput{Name: "Doliprane", CIN: 77})
	require.NoError(t, err)
	require.NotEmpty(t, result.RequestID)
}

func TestQuoteBasket(t *testing.T) {
	repo := newFakeRepo()
	repo.medicaments[1] = medicaments.Medicament{Code: 1, Name: "Doliprane", Kind: medicaments.KindChemical, Price: 10, Stock: 2}
	repo.devices[5] = devices.Device{Code: 5, Name: "Tensiometer", Price: 300, Stock: 1}
	svc := newTestService(repo)

	quote, err := svc.QuoteBasket(context.Background(), []QuoteLine{
		{Kind: "medicament", Name: "Doliprane"},
		{Kind: "device", Code: 5},
	})
	require.NoError(t, err)
	require.Len(t, quote.Lines, 2)
	require.InDelta(t, 108.0, quote.Total, 1e-9)

	// Quoting never touches stock.
	require.Equal(t, 2, repo.medicaments[1].Stock)
	require.Equal(t, 1, repo.devices[5].Stock)
}

func TestQuoteBasketRejectsEmptyAndUnknownKind(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, err := svc.QuoteBasket(context.Background(), nil)
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.QuoteBasket(context.Background(), []QuoteLine{{Kind: "subscription"}})
	require.ErrorIs(t, err, httpx.ErrValidation)
}
