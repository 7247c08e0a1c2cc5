package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Purchase 购买流水，与库存扣减在同一事务内落库
type Purchase struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	SweetID      string          `json:"sweet_id"`
	Quantity     int             `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	CreatedAt    time.Time       `json:"created_at"`
}

type PurchaseFilter struct {
	UserID  string
	SweetID string
	Offset  int
	Limit   int
}

type PurchaseRepository interface {
	Create(ctx context.Context, p *Purchase) error
	List(ctx context.Context, f PurchaseFilter) ([]Purchase, int64, error)
}

// TxManager 在 fn 内的所有仓储调用共享同一事务；fn 返回错误则整体回滚
type TxManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}
