package cache

import (
	"context"
	"encoding/json"
)

// GetOrLoadJSON 读穿透并以 JSON 编码缓存。c 为 nil 时直接回源；
// 缓存值无法解码时删除该键并回源一次
func GetOrLoadJSON[T any](
	c *Cache,
	ctx context.Context,
	key string,
	load func(ctx context.Context) (*T, error),
) (*T, error) {
	if c == nil || c.store == nil {
		return load(ctx)
	}
	var fresh *T
	b, err := c.GetOrLoad(ctx, key, func(ctx context.Context) ([]byte, error) {
		v, e := load(ctx)
		if e != nil {
			return nil, e // 错误不缓存，NotFound 也一样
		}
		fresh = v
		return json.Marshal(v)
	})
	if err != nil {
		return nil, err
	}
	if fresh != nil {
		return fresh, nil
	}
	var out T
	if e := json.Unmarshal(b, &out); e != nil {
		_ = c.Delete(ctx, key)
		return load(ctx)
	}
	return &out, nil
}
