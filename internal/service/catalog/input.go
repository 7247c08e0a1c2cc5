package catalog

import (
	"strings"

	"github.com/shopspring/decimal"

	"sweet-shop/internal/domain"
	"sweet-shop/internal/service/validate"
)

var maxPrice = decimal.RequireFromString("999999.99")

type CreateInput struct {
	Name        string           `json:"name" validate:"required,max=255,label"`
	Category    string           `json:"category" validate:"required,max=100,label"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	Quantity    int              `json:"quantity" validate:"gte=0,lte=999999"`
	Description *string          `json:"description" validate:"omitempty,max=1000"`
	ImageURL    *string          `json:"image_url" validate:"omitempty,max=500,web_url"`
}

func (i *CreateInput) Validate() error {
	i.Name = strings.TrimSpace(i.Name)
	i.Category = strings.TrimSpace(i.Category)
	i.Description = trimPtr(i.Description)
	i.ImageURL = trimPtr(i.ImageURL)

	err := validate.Struct(i)
	return join(err, checkPrice(i.Price))
}

// UpdateInput 仅非 nil 字段参与更新
type UpdateInput struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=255,label"`
	Category    *string          `json:"category" validate:"omitempty,min=1,max=100,label"`
	Price       *decimal.Decimal `json:"price"`
	Quantity    *int             `json:"quantity" validate:"omitempty,gte=0,lte=999999"`
	Description *string          `json:"description" validate:"omitempty,max=1000"`
	ImageURL    *string          `json:"image_url" validate:"omitempty,max=500,web_url"`
}

func (i *UpdateInput) Validate() error {
	var c domain.Collector
	if i.Name != nil {
		i.Name = trimPtr(i.Name)
		if *i.Name == "" {
			c.Add("name", "must not be empty")
		}
	}
	if i.Category != nil {
		i.Category = trimPtr(i.Category)
		if *i.Category == "" {
			c.Add("category", "must not be empty")
		}
	}
	i.Description = trimPtr(i.Description)
	i.ImageURL = trimPtr(i.ImageURL)
	if i.patch().Empty() {
		c.Add("body", "at least one field is required")
	}
	err := join(c.Err(), validate.Struct(i))
	if i.Price != nil {
		err = join(err, checkPrice(i.Price))
	}
	return err
}

func (i *UpdateInput) patch() domain.SweetPatch {
	return domain.SweetPatch{
		Name:        i.Name,
		Category:    i.Category,
		Price:       i.Price,
		Quantity:    i.Quantity,
		Description: i.Description,
		ImageURL:    i.ImageURL,
	}
}

// SearchInput 名称/分类子串，价格闭区间
type SearchInput struct {
	Name     string           `json:"name" validate:"omitempty,max=255,label"`
	Category string           `json:"category" validate:"omitempty,max=100,label"`
	MinPrice *decimal.Decimal `json:"minPrice"`
	MaxPrice *decimal.Decimal `json:"maxPrice"`
	Offset   int              `json:"offset" validate:"gte=0"`
	Limit    int              `json:"limit" validate:"gte=0,lte=100"`
}

func (i *SearchInput) Validate() error {
	i.Name = strings.TrimSpace(i.Name)
	i.Category = strings.TrimSpace(i.Category)

	var c domain.Collector
	if i.MinPrice != nil && i.MinPrice.IsNegative() {
		c.Add("minPrice", "must be >= 0")
	}
	if i.MaxPrice != nil && i.MaxPrice.IsNegative() {
		c.Add("maxPrice", "must be >= 0")
	}
	if i.MinPrice != nil && i.MaxPrice != nil && i.MinPrice.GreaterThan(*i.MaxPrice) {
		c.Add("minPrice", "must be <= maxPrice")
	}
	return join(validate.Struct(i), c.Err())
}

func (i *SearchInput) filter() domain.SweetFilter {
	return domain.SweetFilter{
		Name:     i.Name,
		Category: i.Category,
		MinPrice: i.MinPrice,
		MaxPrice: i.MaxPrice,
		Offset:   i.Offset,
		Limit:    i.Limit,
	}
}

func checkPrice(p *decimal.Decimal) error {
	switch {
	case p == nil:
		return nil // required 已报
	case p.IsNegative():
		return domain.NewValidationError("price", "must be >= 0")
	case p.GreaterThan(maxPrice):
		return domain.NewValidationError("price", "must be <= 999999.99")
	case !p.Equal(p.Round(2)):
		return domain.NewValidationError("price", "must have at most two decimal places")
	}
	return nil
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

// join 合并多个 ValidationError 的字段
func join(errs ...error) error {
	var c domain.Collector
	for _, err := range errs {
		if err == nil {
			continue
		}
		ve, ok := err.(*domain.ValidationError)
		if !ok {
			return err
		}
		for _, fe := range ve.Errors {
			c.Add(fe.Field, fe.Message)
		}
	}
	return c.Err()
}
