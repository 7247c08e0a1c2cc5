package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweet-shop/internal/core/cache"
	"sweet-shop/internal/domain"
	"sweet-shop/pkg/utils"
)

type sweetStoreMock struct {
	CreateFunc   func(ctx context.Context, s *domain.Sweet) error
	FindByIDFunc func(ctx context.Context, id string) (*domain.Sweet, error)
	UpdateFunc   func(ctx context.Context, id string, p domain.SweetPatch) (*domain.Sweet, error)
	DeleteFunc   func(ctx context.Context, id string) error
	SearchFunc   func(ctx context.Context, f domain.SweetFilter) ([]domain.Sweet, error)

	calls int
}

func (m *sweetStoreMock) Create(ctx context.Context, s *domain.Sweet) error {
	m.calls++
	return m.CreateFunc(ctx, s)
}

func (m *sweetStoreMock) FindByID(ctx context.Context, id string) (*domain.Sweet, error) {
	m.calls++
	return m.FindByIDFunc(ctx, id)
}

func (m *sweetStoreMock) Update(ctx context.Context, id string, p domain.SweetPatch) (*domain.Sweet, error) {
	m.calls++
	return m.UpdateFunc(ctx, id, p)
}

func (m *sweetStoreMock) Delete(ctx context.Context, id string) error {
	m.calls++
	return m.DeleteFunc(ctx, id)
}

func (m *sweetStoreMock) Search(ctx context.Context, f domain.SweetFilter) ([]domain.Sweet, error) {
	m.calls++
	return m.SearchFunc(ctx, f)
}

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func str(s string) *string { return &s }

func TestCreate(t *testing.T) {
	store := &sweetStoreMock{CreateFunc: func(_ context.Context, s *domain.Sweet) error {
		s.ID = utils.NewID()
		return nil
	}}
	svc := NewService(nil, store, nil)

	sw, err := svc.Create(context.Background(), CreateInput{
		Name: "  Chocolate Truffle ", Category: "Chocolate", Price: dec("2.50"), Quantity: 10, Description: str(" "),
	})
	require.NoError(t, err)
	assert.Equal(t, "Chocolate Truffle", sw.Name)
	assert.Nil(t, sw.Description, "blank description dropped")
	assert.Equal(t, "2.50", sw.Price.StringFixed(2))
}

func TestCreate_ValidationBeforeStorage(t *testing.T) {
	store := &sweetStoreMock{}
	svc := NewService(nil, store, nil)
	ctx := context.Background()

	cases := map[string]CreateInput{
		"empty name":       {Name: " ", Category: "c", Price: dec("1")},
		"empty category":   {Name: "n", Category: "", Price: dec("1")},
		"missing price":    {Name: "n", Category: "c"},
		"negative price":   {Name: "n", Category: "c", Price: dec("-0.01")},
		"too many decimal": {Name: "n", Category: "c", Price: dec("1.005")},
		"price too high":   {Name: "n", Category: "c", Price: dec("1000000")},
		"negative qty":     {Name: "n", Category: "c", Price: dec("1"), Quantity: -1},
		"bad chars":        {Name: "50% off", Category: "c", Price: dec("1")},
		"bad url":          {Name: "n", Category: "c", Price: dec("1"), ImageURL: str("javascript:alert(1)")},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Create(ctx, in)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
	assert.Zero(t, store.calls)
}

func TestCreate_ZeroPriceIsValid(t *testing.T) {
	in := CreateInput{Name: "Free Sample", Category: "Promo", Price: dec("0")}
	assert.NoError(t, in.Validate())
}

func TestGet(t *testing.T) {
	id := utils.NewID()
	store := &sweetStoreMock{FindByIDFunc: func(_ context.Context, got string) (*domain.Sweet, error) {
		if got != id {
			return nil, fmt.Errorf("sweet %s: %w", got, domain.ErrNotFound)
		}
		return &domain.Sweet{ID: id, Name: "Fudge", Price: decimal.RequireFromString("4.00")}, nil
	}}
	svc := NewService(nil, store, nil)

	sw, err := svc.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Fudge", sw.Name)

	_, err = svc.Get(context.Background(), utils.NewID())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.Get(context.Background(), "123")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestGet_CachedAndEvicted(t *testing.T) {
	mr := miniredis.RunT(t)
	rs := cache.NewRedis(mr.Addr(), "", 0)
	t.Cleanup(func() { _ = rs.Close() })

	id := utils.NewID()
	qty := 10
	store := &sweetStoreMock{
		FindByIDFunc: func(context.Context, string) (*domain.Sweet, error) {
			return &domain.Sweet{ID: id, Name: "Fudge", Price: decimal.RequireFromString("4.25"), Quantity: qty}, nil
		},
		UpdateFunc: func(_ context.Context, _ string, p domain.SweetPatch) (*domain.Sweet, error) {
			qty = *p.Quantity
			return &domain.Sweet{ID: id, Quantity: qty}, nil
		},
	}
	svc := NewService(nil, store, cache.New(rs, time.Minute))
	ctx := context.Background()

	first, err := svc.Get(ctx, id)
	require.NoError(t, err)
	second, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, store.calls, "second read served from cache")
	assert.True(t, second.Price.Equal(first.Price))
	assert.True(t, mr.Exists("sweet:"+id))

	n := 3
	_, err = svc.Update(ctx, id, UpdateInput{Quantity: &n})
	require.NoError(t, err)
	assert.False(t, mr.Exists("sweet:"+id))

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)
}

func TestUpdate(t *testing.T) {
	id := utils.NewID()
	store := &sweetStoreMock{UpdateFunc: func(_ context.Context, got string, p domain.SweetPatch) (*domain.Sweet, error) {
		assert.Equal(t, id, got)
		require.NotNil(t, p.Name)
		assert.Equal(t, "New", *p.Name)
		assert.Nil(t, p.Category)
		return &domain.Sweet{ID: id, Name: *p.Name}, nil
	}}
	svc := NewService(nil, store, nil)

	sw, err := svc.Update(context.Background(), id, UpdateInput{Name: str(" New ")})
	require.NoError(t, err)
	assert.Equal(t, "New", sw.Name)

	_, err = svc.Update(context.Background(), id, UpdateInput{})
	assert.ErrorIs(t, err, domain.ErrValidation, "empty patch")
	_, err = svc.Update(context.Background(), id, UpdateInput{Name: str("  ")})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.Update(context.Background(), id, UpdateInput{Price: dec("-1")})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 1, store.calls)
}

func TestDelete(t *testing.T) {
	store := &sweetStoreMock{DeleteFunc: func(_ context.Context, id string) error {
		return fmt.Errorf("sweet %s: %w", id, domain.ErrNotFound)
	}}
	svc := NewService(nil, store, nil)

	assert.ErrorIs(t, svc.Delete(context.Background(), utils.NewID()), domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(context.Background(), "x"), domain.ErrValidation)
}

func TestSearch(t *testing.T) {
	store := &sweetStoreMock{SearchFunc: func(_ context.Context, f domain.SweetFilter) ([]domain.Sweet, error) {
		assert.Equal(t, "choc", f.Name)
		require.NotNil(t, f.MinPrice)
		assert.Equal(t, "1", f.MinPrice.String())
		return []domain.Sweet{{Name: "Chocolate"}}, nil
	}}
	svc := NewService(nil, store, nil)

	out, err := svc.Search(context.Background(), SearchInput{Name: " choc ", MinPrice: dec("1")})
	require.NoError(t, err)
	assert.Len(t, out, 1)

	_, err = svc.Search(context.Background(), SearchInput{MinPrice: dec("5"), MaxPrice: dec("2")})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.Search(context.Background(), SearchInput{MaxPrice: dec("-2")})
	assert.ErrorIs(t, err, domain.ErrValidation)
	_, err = svc.Search(context.Background(), SearchInput{Name: "%"})
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 1, store.calls)
}

func TestEvict_NilSafe(t *testing.T) {
	var s *Service
	s.Evict(context.Background(), "x")
}
