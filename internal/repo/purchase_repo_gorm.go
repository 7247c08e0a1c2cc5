package repo

import (
	"context"
	"time"

	"gorm.io/gorm/clause"

	"sweet-shop/internal/domain"
	"sweet-shop/pkg/utils"
)

type PurchaseRepo struct{ s *Store }

func NewPurchaseRepo(s *Store) *PurchaseRepo { return &PurchaseRepo{s: s} }

var _ domain.PurchaseRepository = (*PurchaseRepo)(nil)

func (r *PurchaseRepo) Create(ctx context.Context, p *domain.Purchase) error {
	db, done := r.s.scope(ctx)
	defer done()

	if p.ID == "" {
		p.ID = utils.NewID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	m := &purchaseModel{
		ID:           p.ID,
		UserID:       p.UserID,
		SweetID:      p.SweetID,
		Quantity:     p.Quantity,
		PricePerUnit: p.PricePerUnit,
		TotalAmount:  p.TotalAmount,
		CreatedAt:    p.CreatedAt,
	}
	if err := db.Omit(clause.Associations).Create(m).Error; err != nil {
		return mapError(ctx, err, "purchase", p.ID)
	}
	return nil
}

// List 按时间倒序；Limit 为 0 时不分页
func (r *PurchaseRepo) List(ctx context.Context, f domain.PurchaseFilter) ([]domain.Purchase, int64, error) {
	db, done := r.s.scope(ctx)
	defer done()

	tx := db.Model(&purchaseModel{})
	if f.UserID != "" {
		tx = tx.Where("user_id = ?", f.UserID)
	}
	if f.SweetID != "" {
		tx = tx.Where("sweet_id = ?", f.SweetID)
	}
	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, mapError(ctx, err, "purchase", "list")
	}
	if f.Offset > 0 {
		tx = tx.Offset(f.Offset)
	}
	if f.Limit > 0 {
		tx = tx.Limit(f.Limit)
	}
	var rows []purchaseModel
	if err := tx.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, 0, mapError(ctx, err, "purchase", "list")
	}
	out := make([]domain.Purchase, 0, len(rows))
	for i := range rows {
		out = append(out, rows[i].toDomain())
	}
	return out, total, nil
}
