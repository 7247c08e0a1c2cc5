package identity

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"sweet-shop/internal/domain"
	"sweet-shop/internal/service/validate"
	"sweet-shop/pkg/utils"
)

type userStore interface {
	Create(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, q string, offset, limit int) ([]domain.User, int64, error)
}

// hasher 单向哈希能力，实现见 pkg/utils.Hasher
type hasher interface {
	Hash(plain string) (string, error)
	Verify(plain, hashed string) bool
}

// issuer 签发带有效期的令牌
type issuer interface {
	Issue(uid, email, role string) (string, error)
}

type Options struct {
	EnableRegistration bool
}

type AuthResult struct {
	User  *domain.User `json:"user"`
	Token string       `json:"token"`
}

type UserPage struct {
	Items  []domain.User `json:"items"`
	Total  int64         `json:"total"`
	Offset int           `json:"offset"`
	Limit  int           `json:"limit"`
}

type Service struct {
	log    *zap.Logger
	users  userStore
	hash   hasher
	tokens issuer
	opts   Options

	// 用户不存在时也做一次比对，两条失败路径耗时相近
	dummyHash string
}

func NewService(log *zap.Logger, users userStore, h hasher, tokens issuer, opts Options) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	dummy, err := h.Hash("sweet-shop-dummy-password")
	if err != nil {
		log.Warn("dummy hash failed", zap.Error(err))
	}
	return &Service{log: log, users: users, hash: h, tokens: tokens, opts: opts, dummyHash: dummy}
}

// Register 邮箱预检只是优化，唯一约束冲突才是权威的 AlreadyExists
func (s *Service) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	if !s.opts.EnableRegistration {
		return nil, fmt.Errorf("registration disabled: %w", domain.ErrForbidden)
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil && existing != nil:
		return nil, fmt.Errorf("user %s: %w", in.Email, domain.ErrAlreadyExists)
	case err != nil && !errors.Is(err, domain.ErrNotFound):
		return nil, fmt.Errorf("identity.Register: %w", err)
	}

	hashed, err := s.hash.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("identity.Register: hash: %w", err)
	}
	u := &domain.User{Email: in.Email, PasswordHash: hashed, Role: domain.Role(in.Role)}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, fmt.Errorf("identity.Register: %w", err)
	}

	res, err := s.issue(u)
	if err != nil {
		return nil, err
	}
	s.log.Info("user registered", zap.String("user_id", u.ID), zap.String("role", u.Role.String()))
	return res, nil
}

// Login 用户不存在与密码错误返回同一个错误
func (s *Service) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	u, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("identity.Login: %w", err)
		}
		_ = s.hash.Verify(in.Password, s.dummyHash)
		return nil, domain.ErrInvalidCredentials
	}
	if !s.hash.Verify(in.Password, u.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}
	return s.issue(u)
}

// Me 令牌对应的用户，已删除则 NotFound
func (s *Service) Me(ctx context.Context, userID string) (*domain.User, error) {
	if !utils.IsID(userID) {
		return nil, domain.NewValidationError("user_id", "must be a valid id")
	}
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("identity.Me: %w", err)
	}
	return u, nil
}

func (s *Service) List(ctx context.Context, in ListInput) (*UserPage, error) {
	if err := validate.Struct(in); err != nil {
		return nil, err
	}
	if in.Limit == 0 {
		in.Limit = 20
	}
	items, total, err := s.users.List(ctx, in.Q, in.Offset, in.Limit)
	if err != nil {
		return nil, fmt.Errorf("identity.List: %w", err)
	}
	return &UserPage{Items: items, Total: total, Offset: in.Offset, Limit: in.Limit}, nil
}

func (s *Service) issue(u *domain.User) (*AuthResult, error) {
	tok, err := s.tokens.Issue(u.ID, u.Email, u.Role.String())
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResult{User: u, Token: tok}, nil
}
