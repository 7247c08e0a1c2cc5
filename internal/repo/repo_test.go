package repo

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sweet-shop/internal/core/database"
	"sweet-shop/internal/domain"
	"sweet-shop/pkg/utils"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.NewGorm(database.Opts{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, AutoMigrate(context.Background(), db))
	return NewStore(db, 5*time.Second)
}

func strPtr(s string) *string { return &s }

func newSweet(name, category, price string, qty int) *domain.Sweet {
	return &domain.Sweet{Name: name, Category: category, Price: decimal.RequireFromString(price), Quantity: qty}
}

func TestSweetRepo_CreateFind(t *testing.T) {
	st := newTestStore(t)
	r := NewSweetRepo(st)
	ctx := context.Background()

	sw := newSweet("Chocolate Truffle", "Chocolate", "2.50", 100)
	sw.Description = strPtr("rich")
	require.NoError(t, r.Create(ctx, sw))
	assert.True(t, utils.IsID(sw.ID))
	assert.False(t, sw.CreatedAt.IsZero())

	got, err := r.FindByID(ctx, sw.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chocolate Truffle", got.Name)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, 100, got.Quantity)
	require.NotNil(t, got.Description)
	assert.Equal(t, "rich", *got.Description)
	assert.Nil(t, got.ImageURL)

	_, err = r.FindByID(ctx, utils.NewID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSweetRepo_Update(t *testing.T) {
	st := newTestStore(t)
	r := NewSweetRepo(st)
	ctx := context.Background()

	sw := newSweet("Gummy Bears", "Gummies", "1.25", 10)
	require.NoError(t, r.Create(ctx, sw))

	price := decimal.RequireFromString("1.75")
	got, err := r.Update(ctx, sw.ID, domain.SweetPatch{Price: &price, Name: strPtr("Gummy Bears XL")})
	require.NoError(t, err)
	assert.Equal(t, "Gummy Bears XL", got.Name)
	assert.True(t, got.Price.Equal(price))
	assert.Equal(t, "Gummies", got.Category)
	assert.False(t, got.UpdatedAt.Before(sw.UpdatedAt))

	_, err = r.Update(ctx, utils.NewID(), domain.SweetPatch{Name: strPtr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSweetRepo_Delete(t *testing.T) {
	st := newTestStore(t)
	r := NewSweetRepo(st)
	ctx := context.Background()

	sw := newSweet("Lollipop", "Hard Candy", "0.50", 1)
	require.NoError(t, r.Create(ctx, sw))
	require.NoError(t, r.Delete(ctx, sw.ID))

	_, err := r.FindByID(ctx, sw.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, r.Delete(ctx, sw.ID), domain.ErrNotFound)
}

func TestSweetRepo_Search(t *testing.T) {
	st := newTestStore(t)
	r := NewSweetRepo(st)
	ctx := context.Background()

	fixtures := []*domain.Sweet{
		newSweet("Chocolate Truffle", "Chocolate", "2.50", 5),
		newSweet("Dark Chocolate Bar", "Chocolate", "3.00", 5),
		newSweet("Gummy Bears", "Gummies", "1.25", 5),
		newSweet("Caramel Fudge", "Fudge", "4.00", 5),
	}
	for _, f := range fixtures {
		require.NoError(t, r.Create(ctx, f))
		time.Sleep(2 * time.Millisecond) // 保证 created_at 有序
	}

	all, err := r.Search(ctx, domain.SweetFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "Caramel Fudge", all[0].Name, "newest first")
	assert.Equal(t, "Chocolate Truffle", all[3].Name)

	byName, err := r.Search(ctx, domain.SweetFilter{Name: "CHOCO"})
	require.NoError(t, err)
	assert.Len(t, byName, 2)

	byCat, err := r.Search(ctx, domain.SweetFilter{Category: "gum"})
	require.NoError(t, err)
	require.Len(t, byCat, 1)
	assert.Equal(t, "Gummy Bears", byCat[0].Name)

	lo, hi := decimal.RequireFromString("2.50"), decimal.RequireFromString("3.00")
	byPrice, err := r.Search(ctx, domain.SweetFilter{MinPrice: &lo, MaxPrice: &hi})
	require.NoError(t, err)
	assert.Len(t, byPrice, 2, "price bounds are inclusive")

	paged, err := r.Search(ctx, domain.SweetFilter{Offset: 1, Limit: 2})
	require.NoError(t, err)
	require.Len(t, paged, 2)
	assert.Equal(t, "Gummy Bears", paged[0].Name)

	n, err := r.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
}

func TestSweetRepo_AdjustQuantity(t *testing.T) {
	st := newTestStore(t)
	r := NewSweetRepo(st)
	ctx := context.Background()

	sw := newSweet("Jelly Beans", "Jelly", "1.00", 10)
	require.NoError(t, r.Create(ctx, sw))

	got, err := r.AdjustQuantity(ctx, sw.ID, -4)
	require.NoError(t, err)
	assert.Equal(t, 6, got.Quantity)

	got, err = r.AdjustQuantity(ctx, sw.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 16, got.Quantity)

	_, err = r.AdjustQuantity(ctx, sw.ID, -17)
	assert.ErrorIs(t, err, domain.ErrNoRowMatched)

	got, err = r.AdjustQuantity(ctx, sw.ID, -16)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)

	_, err = r.AdjustQuantity(ctx, utils.NewID(), 1)
	assert.ErrorIs(t, err, domain.ErrNoRowMatched)
}

func TestTx_RollbackOnError(t *testing.T) {
	st := newTestStore(t)
	sweets := NewSweetRepo(st)
	ctx := context.Background()

	sw := newSweet("Toffee", "Toffee", "2.00", 5)
	require.NoError(t, sweets.Create(ctx, sw))

	err := st.RunInTx(ctx, func(ctx context.Context) error {
		if _, err := sweets.AdjustQuantity(ctx, sw.ID, -3); err != nil {
			return err
		}
		return domain.ErrInsufficientStock
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	got, err := sweets.FindByID(ctx, sw.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Quantity)
}

func TestUserRepo(t *testing.T) {
	st := newTestStore(t)
	r := NewUserRepo(st)
	ctx := context.Background()

	u := &domain.User{Email: "alice@example.com", PasswordHash: "h", Role: domain.RoleCustomer}
	require.NoError(t, r.Create(ctx, u))
	require.NotEmpty(t, u.ID)

	dup := &domain.User{Email: "alice@example.com", PasswordHash: "h2", Role: domain.RoleAdmin}
	assert.ErrorIs(t, r.Create(ctx, dup), domain.ErrAlreadyExists)

	got, err := r.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, domain.RoleCustomer, got.Role, "first user unaffected")
	assert.Equal(t, "h", got.PasswordHash)

	_, err = r.FindByID(ctx, utils.NewID())
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = r.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, r.Create(ctx, &domain.User{Email: "bob@example.com", PasswordHash: "h", Role: domain.RoleAdmin}))
	list, total, err := r.List(ctx, "", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, list, 2)

	list, total, err = r.List(ctx, "BOB", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "bob@example.com", list[0].Email)
}

func TestPurchaseRepo(t *testing.T) {
	st := newTestStore(t)
	users, sweets, purchases := NewUserRepo(st), NewSweetRepo(st), NewPurchaseRepo(st)
	ctx := context.Background()

	u := &domain.User{Email: "c@example.com", PasswordHash: "h", Role: domain.RoleCustomer}
	require.NoError(t, users.Create(ctx, u))
	sw := newSweet("Marshmallow", "Soft", "1.50", 10)
	require.NoError(t, sweets.Create(ctx, sw))

	p := &domain.Purchase{UserID: u.ID, SweetID: sw.ID, Quantity: 2,
		PricePerUnit: sw.Price, TotalAmount: decimal.RequireFromString("3.00")}
	require.NoError(t, purchases.Create(ctx, p))

	list, total, err := purchases.List(ctx, domain.PurchaseFilter{UserID: u.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.True(t, list[0].TotalAmount.Equal(decimal.RequireFromString("3")))

	bad := &domain.Purchase{UserID: u.ID, SweetID: utils.NewID(), Quantity: 1,
		PricePerUnit: decimal.Zero, TotalAmount: decimal.Zero}
	assert.ErrorIs(t, purchases.Create(ctx, bad), domain.ErrNotFound)

	// 删除商品级联删除流水
	require.NoError(t, sweets.Delete(ctx, sw.ID))
	_, total, err = purchases.List(ctx, domain.PurchaseFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)
}
