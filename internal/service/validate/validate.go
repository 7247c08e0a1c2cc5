package validate

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"sweet-shop/internal/domain"
)

// 商品名/分类允许的字符；也保证搜索时不会出现 LIKE 通配符
var labelRe = regexp.MustCompile(`^[a-zA-Z0-9\s\-&'.,()]+$`)

var v = newValidator()

func newValidator() *validator.Validate {
	vd := validator.New(validator.WithRequiredStructEnabled())
	vd.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = vd.RegisterValidation("label", func(fl validator.FieldLevel) bool {
		return labelRe.MatchString(fl.Field().String())
	})
	_ = vd.RegisterValidation("password_strength", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
	_ = vd.RegisterValidation("web_url", func(fl validator.FieldLevel) bool {
		u, err := url.Parse(fl.Field().String())
		return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
	})
	return vd
}

// Struct 按 validate tag 校验，失败返回 *domain.ValidationError
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return domain.NewValidationError("input", err.Error())
	}
	var c domain.Collector
	for _, fe := range ves {
		c.Add(fe.Field(), message(fe))
	}
	return c.Err()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return "must be >= " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return "must be <= " + fe.Param()
	case "gte":
		return "must be >= " + fe.Param()
	case "lte":
		return "must be <= " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "label":
		return "contains invalid characters"
	case "password_strength":
		return "must contain a lowercase letter, an uppercase letter, a digit and one of " + passwordSpecials
	case "web_url":
		return "must be a valid http(s) url"
	case "uuid":
		return "must be a valid id"
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}

func Label(s string) bool { return labelRe.MatchString(s) }

const passwordSpecials = "@$!%*?&"

// StrongPassword 至少各含一个小写、大写、数字与特殊字符
func StrongPassword(s string) bool {
	var lower, upper, digit, special bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	return lower && upper && digit && special
}
