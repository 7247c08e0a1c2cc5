package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"sweet-shop/internal/core/cache"
	"sweet-shop/internal/domain"
	"sweet-shop/pkg/utils"
)

type sweetStore interface {
	Create(ctx context.Context, s *domain.Sweet) error
	FindByID(ctx context.Context, id string) (*domain.Sweet, error)
	Update(ctx context.Context, id string, p domain.SweetPatch) (*domain.Sweet, error)
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, f domain.SweetFilter) ([]domain.Sweet, error)
}

type Service struct {
	log    *zap.Logger
	sweets sweetStore
	cache  *cache.Cache // nil 时不缓存
}

func NewService(log *zap.Logger, sweets sweetStore, c *cache.Cache) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{log: log, sweets: sweets, cache: c}
}

func cacheKey(id string) string { return "sweet:" + id }

func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Sweet, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	sw := &domain.Sweet{
		Name:        in.Name,
		Category:    in.Category,
		Price:       in.Price.Round(2),
		Quantity:    in.Quantity,
		Description: nilIfEmpty(in.Description),
		ImageURL:    nilIfEmpty(in.ImageURL),
	}
	if err := s.sweets.Create(ctx, sw); err != nil {
		return nil, fmt.Errorf("catalog.Create: %w", err)
	}
	s.log.Info("sweet created", zap.String("sweet_id", sw.ID), zap.String("name", sw.Name))
	return sw, nil
}

// Get 读穿透缓存；NotFound 不缓存
func (s *Service) Get(ctx context.Context, id string) (*domain.Sweet, error) {
	if !utils.IsID(id) {
		return nil, domain.NewValidationError("id", "must be a valid id")
	}
	sw, err := cache.GetOrLoadJSON(s.cache, ctx, cacheKey(id), func(ctx context.Context) (*domain.Sweet, error) {
		return s.sweets.FindByID(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("catalog.Get: %w", err)
	}
	return sw, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*domain.Sweet, error) {
	if !utils.IsID(id) {
		return nil, domain.NewValidationError("id", "must be a valid id")
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	p := in.patch()
	if p.Price != nil {
		r := p.Price.Round(2)
		p.Price = &r
	}
	sw, err := s.sweets.Update(ctx, id, p)
	if err != nil {
		return nil, fmt.Errorf("catalog.Update: %w", err)
	}
	s.Evict(ctx, id)
	return sw, nil
}

// SetImage 图片上传后回写 image_url
func (s *Service) SetImage(ctx context.Context, id, url string) (*domain.Sweet, error) {
	return s.Update(ctx, id, UpdateInput{ImageURL: &url})
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if !utils.IsID(id) {
		return domain.NewValidationError("id", "must be a valid id")
	}
	if err := s.sweets.Delete(ctx, id); err != nil {
		return fmt.Errorf("catalog.Delete: %w", err)
	}
	s.Evict(ctx, id)
	s.log.Info("sweet deleted", zap.String("sweet_id", id))
	return nil
}

// Search 空条件即列出全部，按创建时间倒序
func (s *Service) Search(ctx context.Context, in SearchInput) ([]domain.Sweet, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	out, err := s.sweets.Search(ctx, in.filter())
	if err != nil {
		return nil, fmt.Errorf("catalog.Search: %w", err)
	}
	return out, nil
}

// Evict 删除单个商品缓存；失败只记日志，TTL 兜底
func (s *Service) Evict(ctx context.Context, id string) {
	if s == nil || s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cacheKey(id)); err != nil {
		s.log.Warn("cache evict failed", zap.String("sweet_id", id), zap.Error(err))
	}
}

func nilIfEmpty(p *string) *string {
	if p == nil || *p == "" {
		return nil
	}
	return p
}
