package loyalty

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/officina-pos/officina/internal/platform/httpx"
)

type fakeRepo struct {
	customers map[int64]Customer
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{customers: map[int64]Customer{}}
}

func (f *fakeRepo) Create(_ context.Context, c Customer) error {
	if _, exists := f.customers[c.CIN]; exists {
		return ErrDuplicateCIN
	}
	f.customers[c.CIN] = c
	return nil
}

func (f *fakeRepo) Get(_ context.Context, cin int64) (*Customer, error) {
	c, ok := f.customers[cin]
	if !ok {
		return nil, ErrNotFound
	}
	out := c
	return &out, nil
}

func (f *fakeRepo) List(_ context.Context, _ ListCustomersRequest) ([]Customer, int, error) {
	var out []Customer
	for _, c := range f.customers {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (f *fakeRepo) Update(_ context.Context, c Customer) error {
	if _, ok := f.customers[c.CIN]; !ok {
		return ErrNotFound
	}
	f.customers[c.CIN] = c
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, cin int64) error {
	if _, ok := f.customers[cin]; !ok {
		return ErrNotFound
	}
	delete(f.customers, cin)
	return nil
}

func TestRegisterStartsAtZero(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	customer, err := svc.Register(context.Background(), RegisterCustomerRequest{
		CIN: 12345, FirstName: "Amina", LastName: "Karim",
	})
	require.NoError(t, err)
	require.Equal(t, int64(12345), customer.CIN)
	require.Zero(t, customer.Credit)
	require.Zero(t, customer.TotalPurchases)
	require.Equal(t, "Amina Karim", customer.FullName())
}

func TestRegisterDuplicateCIN(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.Register(context.Background(), RegisterCustomerRequest{CIN: 1, FirstName: "A", LastName: "B"})
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), RegisterCustomerRequest{CIN: 1, FirstName: "C", LastName: "D"})
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestAdjustCredit(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	_, err := svc.Register(context.Background(), RegisterCustomerRequest{CIN: 1, FirstName: "A", LastName: "B"})
	require.NoError(t, err)

	customer, err := svc.AdjustCredit(context.Background(), 1, 50, "add")
	require.NoError(t, err)
	require.InDelta(t, 50.0, customer.Credit, 1e-9)

	// Deductions may push the balance negative.
	customer, err = svc.AdjustCredit(context.Background(), 1, 80, "deduct")
	require.NoError(t, err)
	require.InDelta(t, -30.0, customer.Credit, 1e-9)
	require.InDelta(t, -30.0, repo.customers[1].Credit, 1e-9)
}

func TestAdjustCreditRejectsBadInput(t *testing.T) {
	svc := NewService(newFakeRepo())

	_, err := svc.Register(context.Background(), RegisterCustomerRequest{CIN: 1, FirstName: "A", LastName: "B"})
	require.NoError(t, err)

	_, err = svc.AdjustCredit(context.Background(), 1, 0, "add")
	require.Error(t, err)
	_, err = svc.AdjustCredit(context.Background(), 1, 10, "transfer")
	require.Error(t, err)
	_, err = svc.AdjustCredit(context.Background(), 404, 10, "add")
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestUpdateNames(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	_, err := svc.Register(context.Background(), RegisterCustomerRequest{CIN: 1, FirstName: "A", LastName: "B"})
	require.NoError(t, err)

	first := "Yasmine"
	customer, err := svc.Update(context.Background(), 1, UpdateCustomerRequest{FirstName: &first})
	require.NoError(t, err)
	require.Equal(t, "Yasmine", customer.FirstName)
	require.Equal(t, "B", customer.LastName)
}

func TestBonusAccumulator(t *testing.T) {
	c := Customer{}
	c.AddPurchase(60)
	require.False(t, c.EligibleForBonus())
	c.AddPurchase(40)
	require.True(t, c.EligibleForBonus())
	c.ResetPurchases()
	require.Zero(t, c.TotalPurchases)
}
