package identity

import (
	"strings"

	"sweet-shop/internal/domain"
	"sweet-shop/internal/service/validate"
)

type RegisterInput struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=128,password_strength"`
	Role     string `json:"role" validate:"omitempty,oneof=customer admin"`
}

func (i *RegisterInput) Validate() error {
	i.Email = normalizeEmail(i.Email)
	i.Role = strings.TrimSpace(i.Role)
	if i.Role == "" {
		i.Role = domain.RoleCustomer.String()
	}
	return validate.Struct(i)
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=128"`
}

func (i *LoginInput) Validate() error {
	i.Email = normalizeEmail(i.Email)
	return validate.Struct(i)
}

type ListInput struct {
	Q      string `form:"q" json:"q" validate:"max=255"`
	Offset int    `form:"offset" json:"offset" validate:"gte=0"`
	Limit  int    `form:"limit" json:"limit" validate:"gte=0,lte=100"`
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
