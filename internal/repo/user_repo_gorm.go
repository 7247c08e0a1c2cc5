package repo

import (
	"context"
	"strings"
	"time"

	"sweet-shop/internal/domain"
	"sweet-shop/pkg/utils"
)

type UserRepo struct{ s *Store }

func NewUserRepo(s *Store) *UserRepo { return &UserRepo{s: s} }

var _ domain.UserRepository = (*UserRepo)(nil)

// Create 邮箱唯一由 uniqueIndex 保证，冲突返回 ErrAlreadyExists
func (r *UserRepo) Create(ctx context.Context, u *domain.User) error {
	db, done := r.s.scope(ctx)
	defer done()

	if u.ID == "" {
		u.ID = utils.NewID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	if err := db.Create(userFromDomain(u)).Error; err != nil {
		return mapError(ctx, err, "user", u.Email)
	}
	return nil
}

func (r *UserRepo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	db, done := r.s.scope(ctx)
	defer done()

	var m userModel
	if err := db.Take(&m, "id = ?", id).Error; err != nil {
		return nil, mapError(ctx, err, "user", id)
	}
	return m.toDomain(), nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	db, done := r.s.scope(ctx)
	defer done()

	var m userModel
	if err := db.Take(&m, "email = ?", email).Error; err != nil {
		return nil, mapError(ctx, err, "user", email)
	}
	return m.toDomain(), nil
}

// List q 为邮箱子串，按创建时间倒序
func (r *UserRepo) List(ctx context.Context, q string, offset, limit int) ([]domain.User, int64, error) {
	db, done := r.s.scope(ctx)
	defer done()

	tx := db.Model(&userModel{})
	if q = strings.TrimSpace(q); q != "" {
		tx = tx.Where("LOWER(email) LIKE ?", "%"+strings.ToLower(q)+"%")
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, mapError(ctx, err, "user", "list")
	}
	var rows []userModel
	if err := tx.Offset(offset).Limit(limit).Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, 0, mapError(ctx, err, "user", "list")
	}
	out := make([]domain.User, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].toDomain())
	}
	return out, total, nil
}
