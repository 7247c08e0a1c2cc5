package repo

import (
	"time"

	"github.com/shopspring/decimal"

	"sweet-shop/internal/domain"
)

// 持久化模型与 domain 实体分离，gorm tag 只出现在这里

type userModel struct {
	ID           string    `gorm:"type:varchar(36);primaryKey"`
	Email        string    `gorm:"size:255;not null;uniqueIndex"`
	PasswordHash string    `gorm:"size:255;not null"`
	Role         string    `gorm:"size:16;not null;default:customer;index"`
	CreatedAt    time.Time `gorm:"not null;index"`
}

func (userModel) TableName() string { return "users" }

type sweetModel struct {
	ID          string          `gorm:"type:varchar(36);primaryKey"`
	Name        string          `gorm:"size:255;not null;index"`
	Category    string          `gorm:"size:100;not null;index"`
	Price       decimal.Decimal `gorm:"type:decimal(10,2);not null;check:chk_sweets_price,price >= 0"`
	Quantity    int             `gorm:"not null;default:0;check:chk_sweets_quantity,quantity >= 0"`
	Description *string         `gorm:"size:1000"`
	ImageURL    *string         `gorm:"column:image_url;size:500"`
	CreatedAt   time.Time       `gorm:"not null;index"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

func (sweetModel) TableName() string { return "sweets" }

type purchaseModel struct {
	ID           string          `gorm:"type:varchar(36);primaryKey"`
	UserID       string          `gorm:"type:varchar(36);not null;index"`
	SweetID      string          `gorm:"type:varchar(36);not null;index"`
	Quantity     int             `gorm:"not null;check:chk_purchases_quantity,quantity > 0"`
	PricePerUnit decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CreatedAt    time.Time       `gorm:"not null;index"`

	User  userModel  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Sweet sweetModel `gorm:"foreignKey:SweetID;constraint:OnDelete:CASCADE"`
}

func (purchaseModel) TableName() string { return "purchases" }

// Models 建表顺序：被引用方在前
func Models() []any { return []any{&userModel{}, &sweetModel{}, &purchaseModel{}} }

func (m *userModel) toDomain() *domain.User {
	return &domain.User{
		ID:           m.ID,
		Email:        m.Email,
		PasswordHash: m.PasswordHash,
		Role:         domain.Role(m.Role),
		CreatedAt:    m.CreatedAt.UTC(),
	}
}

func userFromDomain(u *domain.User) *userModel {
	return &userModel{
		ID:           u.ID,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		Role:         u.Role.String(),
		CreatedAt:    u.CreatedAt,
	}
}

func (m *sweetModel) toDomain() *domain.Sweet {
	return &domain.Sweet{
		ID:          m.ID,
		Name:        m.Name,
		Category:    m.Category,
		Price:       m.Price,
		Quantity:    m.Quantity,
		Description: m.Description,
		ImageURL:    m.ImageURL,
		CreatedAt:   m.CreatedAt.UTC(),
		UpdatedAt:   m.UpdatedAt.UTC(),
	}
}

func sweetFromDomain(s *domain.Sweet) *sweetModel {
	return &sweetModel{
		ID:          s.ID,
		Name:        s.Name,
		Category:    s.Category,
		Price:       s.Price,
		Quantity:    s.Quantity,
		Description: s.Description,
		ImageURL:    s.ImageURL,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func (m *purchaseModel) toDomain() domain.Purchase {
	return domain.Purchase{
		ID:           m.ID,
		UserID:       m.UserID,
		SweetID:      m.SweetID,
		Quantity:     m.Quantity,
		PricePerUnit: m.PricePerUnit,
		TotalAmount:  m.TotalAmount,
		CreatedAt:    m.CreatedAt.UTC(),
	}
}
