package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// 价格以 JSON 数字输出
func init() { decimal.MarshalJSONWithoutQuotes = true }

// Sweet 库存商品；Quantity >= 0 且 Price >= 0 始终成立
type Sweet struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Category    string          `json:"category"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	Description *string         `json:"description,omitempty"`
	ImageURL    *string         `json:"image_url,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// SweetPatch 部分更新，nil 字段保持不变
type SweetPatch struct {
	Name        *string
	Category    *string
	Price       *decimal.Decimal
	Quantity    *int
	Description *string
	ImageURL    *string
}

func (p SweetPatch) Empty() bool {
	return p.Name == nil && p.Category == nil && p.Price == nil &&
		p.Quantity == nil && p.Description == nil && p.ImageURL == nil
}

// SweetFilter 搜索条件：名称/分类为子串匹配，价格为闭区间；零值不做约束
type SweetFilter struct {
	Name     string
	Category string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Offset   int
	Limit    int // 0 表示不限
}

type SweetRepository interface {
	Create(ctx context.Context, s *Sweet) error
	FindByID(ctx context.Context, id string) (*Sweet, error)
	Update(ctx context.Context, id string, p SweetPatch) (*Sweet, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, f SweetFilter) ([]Sweet, error)
	Count(ctx context.Context) (int64, error)

	// AdjustQuantity 以单条条件语句执行 quantity += delta，仅当结果不为负时生效；
	// 未命中返回 ErrNoRowMatched，成功返回更新后的行
	AdjustQuantity(ctx context.Context, id string, delta int) (*Sweet, error)
}
