package utils

import "github.com/google/uuid"

// NewID 生成实体主键（UUID v4 字符串）
func NewID() string { return uuid.NewString() }

// IsID 判断是否为合法主键
func IsID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
