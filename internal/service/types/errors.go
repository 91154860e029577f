// Package types 定义跨服务共享的错误类型与视图结构
// 独立成包避免 service 聚合层与各业务子包之间的循环导入
package types

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ashwinyue/procure-ai/internal/model"
)

// ErrEmptyCart 空购物车不允许结账
var ErrEmptyCart = errors.New("cart is empty")

// ValidationError 聚合的输入校验错误
// 所有越界字段收集到一条错误里一次性返回
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

// NewValidationError 创建校验错误
func NewValidationError(problems []string) *ValidationError {
	return &ValidationError{Problems: problems}
}

// DuplicateItemError 疑似重复物料
// 携带候选匹配，属于建议性拦截，调用方可显式覆盖
type DuplicateItemError struct {
	Name       string
	Category   string
	Duplicates []*model.Item
}

func (e *DuplicateItemError) Error() string {
	return fmt.Sprintf("possible duplicate item: %q already exists in category %q (%d match(es))",
		e.Name, e.Category, len(e.Duplicates))
}

// NotFoundError 资源不存在
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// CartLimitError 购物车数量越界
// 加购会自动收敛到区间内，显式更新为非法数量则直接拒绝
type CartLimitError struct {
	Quantity int
}

func (e *CartLimitError) Error() string {
	return fmt.Sprintf("quantity %d is out of range [%d, %d]",
		e.Quantity, model.CartMinQuantity, model.CartMaxQuantity)
}
