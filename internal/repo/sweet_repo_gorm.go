package repo

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"sweet-shop/internal/domain"
	"sweet-shop/pkg/utils"
)

type SweetRepo struct{ s *Store }

func NewSweetRepo(s *Store) *SweetRepo { return &SweetRepo{s: s} }

var _ domain.SweetRepository = (*SweetRepo)(nil)

func (r *SweetRepo) Create(ctx context.Context, sw *domain.Sweet) error {
	db, done := r.s.scope(ctx)
	defer done()

	if sw.ID == "" {
		sw.ID = utils.NewID()
	}
	now := time.Now().UTC()
	sw.CreatedAt, sw.UpdatedAt = now, now
	m := sweetFromDomain(sw)
	if err := db.Omit(clause.Associations).Create(m).Error; err != nil {
		return mapError(ctx, err, "sweet", sw.ID)
	}
	return nil
}

func (r *SweetRepo) FindByID(ctx context.Context, id string) (*domain.Sweet, error) {
	db, done := r.s.scope(ctx)
	defer done()
	return r.find(ctx, db, id)
}

func (r *SweetRepo) find(ctx context.Context, db *gorm.DB, id string) (*domain.Sweet, error) {
	var m sweetModel
	if err := db.Take(&m, "id = ?", id).Error; err != nil {
		return nil, mapError(ctx, err, "sweet", id)
	}
	return m.toDomain(), nil
}

// Update 部分更新并回读；在同一事务内完成以保证返回的是本次写入后的行
func (r *SweetRepo) Update(ctx context.Context, id string, p domain.SweetPatch) (*domain.Sweet, error) {
	var out *domain.Sweet
	err := r.s.RunInTx(ctx, func(ctx context.Context) error {
		db, done := r.s.scope(ctx)
		defer done()

		res := db.Model(&sweetModel{}).Where("id = ?", id).Updates(patchColumns(p))
		if res.Error != nil {
			return mapError(ctx, res.Error, "sweet", id)
		}
		sw, err := r.find(ctx, db, id)
		if err != nil {
			return err
		}
		out = sw
		return nil
	})
	return out, err
}

func patchColumns(p domain.SweetPatch) map[string]any {
	cols := map[string]any{"updated_at": time.Now().UTC()}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Category != nil {
		cols["category"] = *p.Category
	}
	if p.Price != nil {
		cols["price"] = *p.Price
	}
	if p.Quantity != nil {
		cols["quantity"] = *p.Quantity
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	if p.ImageURL != nil {
		cols["image_url"] = *p.ImageURL
	}
	return cols
}

func (r *SweetRepo) Delete(ctx context.Context, id string) error {
	db, done := r.s.scope(ctx)
	defer done()

	res := db.Delete(&sweetModel{}, "id = ?", id)
	if res.Error != nil {
		return mapError(ctx, res.Error, "sweet", id)
	}
	if res.RowsAffected == 0 {
		return mapError(ctx, gorm.ErrRecordNotFound, "sweet", id)
	}
	return nil
}

// Search 名称/分类大小写不敏感子串匹配，价格闭区间，按创建时间倒序
func (r *SweetRepo) Search(ctx context.Context, f domain.SweetFilter) ([]domain.Sweet, error) {
	db, done := r.s.scope(ctx)
	defer done()

	q := db.Model(&sweetModel{})
	if f.Name != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(f.Name)+"%")
	}
	if f.Category != "" {
		q = q.Where("LOWER(category) LIKE ?", "%"+strings.ToLower(f.Category)+"%")
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}

	var rows []sweetModel
	if err := q.Order("created_at DESC").Order("id DESC").Find(&rows).Error; err != nil {
		return nil, mapError(ctx, err, "sweet", "search")
	}
	out := make([]domain.Sweet, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].toDomain())
	}
	return out, nil
}

func (r *SweetRepo) Count(ctx context.Context) (int64, error) {
	db, done := r.s.scope(ctx)
	defer done()

	var n int64
	if err := db.Model(&sweetModel{}).Count(&n).Error; err != nil {
		return 0, mapError(ctx, err, "sweet", "count")
	}
	return n, nil
}

// AdjustQuantity 单条条件 UPDATE：quantity + delta >= 0 才生效，不存在读改写窗口。
// 命中后在同一事务内回读；未命中返回 ErrNoRowMatched，由调用方区分不存在与库存不足
func (r *SweetRepo) AdjustQuantity(ctx context.Context, id string, delta int) (*domain.Sweet, error) {
	var out *domain.Sweet
	err := r.s.RunInTx(ctx, func(ctx context.Context) error {
		db, done := r.s.scope(ctx)
		defer done()

		res := db.Model(&sweetModel{}).
			Where("id = ? AND quantity + ? >= 0", id, delta).
			Updates(map[string]any{
				"quantity":   gorm.Expr("quantity + ?", delta),
				"updated_at": time.Now().UTC(),
			})
		if res.Error != nil {
			return mapError(ctx, res.Error, "sweet", id)
		}
		if res.RowsAffected == 0 {
			return domain.ErrNoRowMatched
		}
		sw, err := r.find(ctx, db, id)
		if err != nil {
			return err
		}
		out = sw
		return nil
	})
	return out, err
}
