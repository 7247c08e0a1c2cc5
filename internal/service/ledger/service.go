package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"sweet-shop/internal/domain"
	"sweet-shop/pkg/utils"
)

type sweetStore interface {
	FindByID(ctx context.Context, id string) (*domain.Sweet, error)
	AdjustQuantity(ctx context.Context, id string, delta int) (*domain.Sweet, error)
}

type purchaseStore interface {
	Create(ctx context.Context, p *domain.Purchase) error
	List(ctx context.Context, f domain.PurchaseFilter) ([]domain.Purchase, int64, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// evicter 库存变化后让商品缓存失效
type evicter interface {
	Evict(ctx context.Context, id string)
}

// Receipt 购买结果：扣减后的商品 + 流水
type Receipt struct {
	Sweet    *domain.Sweet    `json:"sweet"`
	Purchase *domain.Purchase `json:"purchase"`
}

type PurchasePage struct {
	Items  []domain.Purchase `json:"items"`
	Total  int64             `json:"total"`
	Offset int               `json:"offset"`
	Limit  int               `json:"limit"`
}

// Service 库存账本。并发安全完全交给存储层的条件更新，进程内不加锁
type Service struct {
	log       *zap.Logger
	sweets    sweetStore
	purchases purchaseStore
	tx        txManager
	cache     evicter
}

func NewService(log *zap.Logger, sweets sweetStore, purchases purchaseStore, tx txManager, cache evicter) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{log: log, sweets: sweets, purchases: purchases, tx: tx, cache: cache}
}

// Purchase 扣减库存并在同一事务内写购买流水。
// 库存不足、商品不存在不重试；存储瞬时故障重试一次
func (s *Service) Purchase(ctx context.Context, userID, sweetID string, quantity int) (*Receipt, error) {
	if err := validateAdjust(sweetID, quantity, MaxPurchaseQuantity); err != nil {
		observe("purchase", err)
		return nil, err
	}
	if !utils.IsID(userID) {
		err := domain.NewValidationError("user_id", "must be a valid id")
		observe("purchase", err)
		return nil, err
	}

	var rc *Receipt
	err := s.retry(ctx, "purchase", sweetID, func(ctx context.Context) error {
		return s.tx.RunInTx(ctx, func(ctx context.Context) error {
			sw, err := s.sweets.AdjustQuantity(ctx, sweetID, -quantity)
			if errors.Is(err, domain.ErrNoRowMatched) {
				return s.explainMiss(ctx, sweetID, quantity)
			}
			if err != nil {
				return err
			}
			p := &domain.Purchase{
				UserID:       userID,
				SweetID:      sweetID,
				Quantity:     quantity,
				PricePerUnit: sw.Price,
				TotalAmount:  sw.Price.Mul(decimal.NewFromInt(int64(quantity))).Round(2),
			}
			if err := s.purchases.Create(ctx, p); err != nil {
				return err
			}
			rc = &Receipt{Sweet: sw, Purchase: p}
			return nil
		})
	})
	observe("purchase", err)
	if err != nil {
		return nil, fmt.Errorf("ledger.Purchase: %w", err)
	}
	s.evict(ctx, sweetID)
	s.log.Info("purchase",
		zap.String("user_id", userID),
		zap.String("sweet_id", sweetID),
		zap.Int("quantity", quantity),
		zap.Int("remaining", rc.Sweet.Quantity),
		zap.String("total", rc.Purchase.TotalAmount.StringFixed(2)),
	)
	return rc, nil
}

// explainMiss 条件更新未命中：区分商品不存在与库存不足
func (s *Service) explainMiss(ctx context.Context, sweetID string, requested int) error {
	sw, err := s.sweets.FindByID(ctx, sweetID)
	if err != nil {
		return err
	}
	// 重读时可能已有补货提交，此时库存数不能解释本次失败，不再报告
	if sw.Quantity >= requested {
		return fmt.Errorf("sweet %s: requested %d: %w", sweetID, requested, domain.ErrInsufficientStock)
	}
	return fmt.Errorf("sweet %s: requested %d, available %d: %w",
		sweetID, requested, sw.Quantity, domain.ErrInsufficientStock)
}

// Restock 增加库存，并发补货不会丢失更新
func (s *Service) Restock(ctx context.Context, sweetID string, quantity int) (*domain.Sweet, error) {
	if err := validateAdjust(sweetID, quantity, MaxRestockQuantity); err != nil {
		observe("restock", err)
		return nil, err
	}

	var out *domain.Sweet
	err := s.retry(ctx, "restock", sweetID, func(ctx context.Context) error {
		sw, err := s.sweets.AdjustQuantity(ctx, sweetID, quantity)
		if errors.Is(err, domain.ErrNoRowMatched) {
			return fmt.Errorf("sweet %s: %w", sweetID, domain.ErrNotFound)
		}
		if err != nil {
			return err
		}
		out = sw
		return nil
	})
	observe("restock", err)
	if err != nil {
		return nil, fmt.Errorf("ledger.Restock: %w", err)
	}
	s.evict(ctx, sweetID)
	s.log.Info("restock",
		zap.String("sweet_id", sweetID),
		zap.Int("added", quantity),
		zap.Int("quantity", out.Quantity),
	)
	return out, nil
}

// History 当前用户的购买记录，新的在前
func (s *Service) History(ctx context.Context, userID string, offset, limit int) (*PurchasePage, error) {
	if !utils.IsID(userID) {
		return nil, domain.NewValidationError("user_id", "must be a valid id")
	}
	return s.ListPurchases(ctx, domain.PurchaseFilter{UserID: userID, Offset: offset, Limit: limit})
}

func (s *Service) ListPurchases(ctx context.Context, f domain.PurchaseFilter) (*PurchasePage, error) {
	var c domain.Collector
	if f.UserID != "" && !utils.IsID(f.UserID) {
		c.Add("user_id", "must be a valid id")
	}
	if f.SweetID != "" && !utils.IsID(f.SweetID) {
		c.Add("sweet_id", "must be a valid id")
	}
	if err := c.Err(); err != nil {
		return nil, err
	}
	offset, limit, err := validatePage(f.Offset, f.Limit)
	if err != nil {
		return nil, err
	}
	f.Offset, f.Limit = offset, limit

	items, total, err := s.purchases.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("ledger.ListPurchases: %w", err)
	}
	return &PurchasePage{Items: items, Total: total, Offset: offset, Limit: limit}, nil
}

// retry 仅对 StorageUnavailable 重试一次，每次都是新事务
func (s *Service) retry(ctx context.Context, op, sweetID string, fn func(ctx context.Context) error) error {
	err := fn(ctx)
	if err == nil || !errors.Is(err, domain.ErrStorageUnavailable) || ctx.Err() != nil {
		return err
	}
	s.log.Warn("ledger storage unavailable, retrying once",
		zap.String("op", op), zap.String("sweet_id", sweetID), zap.Error(err))
	return fn(ctx)
}

func (s *Service) evict(ctx context.Context, id string) {
	if s.cache != nil {
		s.cache.Evict(ctx, id)
	}
}
