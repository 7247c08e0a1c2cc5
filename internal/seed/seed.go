package seed

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sweet-shop/internal/domain"
)

type hasher interface {
	Hash(plain string) (string, error)
}

type Admin struct {
	Email    string
	Password string
}

type sample struct {
	name, category, price string
	qty                   int
	desc, image           string
}

var samples = []sample{
	{"Chocolate Chip Cookies", "Cookies", "2.99", 50, "Delicious homemade chocolate chip cookies", "https://images.unsplash.com/photo-1499636136210-6f4ee915583e?w=400&auto=format&fit=crop"},
	{"Red Velvet Cupcake", "Cupcakes", "3.49", 30, "Rich red velvet cupcake with cream cheese frosting", "https://images.unsplash.com/photo-1486427944299-d1955d23e34d?w=400&auto=format&fit=crop"},
	{"Dark Chocolate Bar", "Chocolate", "4.99", 25, "Premium 70% dark chocolate bar", "https://images.unsplash.com/photo-1511381939415-e44015466834?w=400&auto=format&fit=crop"},
	{"Strawberry Gummy Bears", "Gummies", "1.99", 75, "Sweet and chewy strawberry flavored gummy bears", "https://images.unsplash.com/photo-1582058091505-f87a2e55a40f?w=400&auto=format&fit=crop"},
	{"Vanilla Macarons", "Macarons", "12.99", 20, "Box of 6 delicate vanilla macarons", "https://images.unsplash.com/photo-1569864358642-9d1684040f43?w=400&auto=format&fit=crop"},
	{"Caramel Lollipops", "Lollipops", "0.99", 100, "Handcrafted caramel lollipops", "https://images.unsplash.com/photo-1603893603637-80ac0bd48b64?w=400&auto=format&fit=crop"},
	{"Mint Chocolate Truffles", "Chocolate", "8.99", 15, "Luxurious mint chocolate truffles", "https://images.unsplash.com/photo-1481391319762-47dff72954d9?w=400&auto=format&fit=crop"},
	{"Rainbow Sour Strips", "Sour Candy", "2.49", 60, "Tangy rainbow colored sour strips", "https://images.unsplash.com/photo-1514517521153-1be72277b32f?w=400&auto=format&fit=crop"},
}

// Run 幂等：管理员不存在才创建，商品表为空才写样例
func Run(ctx context.Context, l *zap.Logger, users domain.UserRepository, sweets domain.SweetRepository, h hasher, admin Admin) error {
	if err := ensureAdmin(ctx, l, users, h, admin); err != nil {
		return err
	}
	n, err := sweets.Count(ctx)
	if err != nil {
		return fmt.Errorf("seed: count sweets: %w", err)
	}
	if n > 0 {
		return nil
	}
	for _, s := range samples {
		desc, img := s.desc, s.image
		sw := &domain.Sweet{
			Name:        s.name,
			Category:    s.category,
			Price:       decimal.RequireFromString(s.price),
			Quantity:    s.qty,
			Description: &desc,
			ImageURL:    &img,
		}
		if err := sweets.Create(ctx, sw); err != nil {
			return fmt.Errorf("seed: sweet %q: %w", s.name, err)
		}
	}
	l.Info("seeded sample sweets", zap.Int("count", len(samples)))
	return nil
}

func ensureAdmin(ctx context.Context, l *zap.Logger, users domain.UserRepository, h hasher, admin Admin) error {
	if admin.Email == "" || admin.Password == "" {
		return nil
	}
	_, err := users.FindByEmail(ctx, admin.Email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("seed: find admin: %w", err)
	}
	hashed, err := h.Hash(admin.Password)
	if err != nil {
		return fmt.Errorf("seed: hash admin password: %w", err)
	}
	u := &domain.User{Email: admin.Email, PasswordHash: hashed, Role: domain.RoleAdmin}
	if err := users.Create(ctx, u); err != nil && !errors.Is(err, domain.ErrAlreadyExists) {
		return fmt.Errorf("seed: create admin: %w", err)
	}
	l.Info("seeded admin account", zap.String("email", admin.Email))
	return nil
}
