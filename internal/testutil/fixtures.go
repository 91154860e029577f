// Package testutil 提供测试辅助工具
package testutil

import (
	"testing"

	"github.com/google/uuid"

	"github.com/ashwinyue/procure-ai/internal/model"
)

// AssertHelper 提供断言相关的测试辅助
type AssertHelper struct {
	t *testing.T
}

// NewAssertHelper 创建断言辅助器
func NewAssertHelper(t *testing.T) *AssertHelper {
	return &AssertHelper{t: t}
}

// NoError 断言没有错误
func (h *AssertHelper) NoError(err error, msgAndArgs ...interface{}) {
	h.t.Helper()
	if err != nil {
		h.t.Fatalf("Unexpected error: %v %v", err, msgAndArgs)
	}
}

// Error 断言有错误
func (h *AssertHelper) Error(err error, msgAndArgs ...interface{}) {
	h.t.Helper()
	if err == nil {
		h.t.Fatal("Expected error, got nil")
	}
}

// ErrorContains 断言错误包含指定字符串
func (h *AssertHelper) ErrorContains(err error, substr string, msgAndArgs ...interface{}) {
	h.t.Helper()
	if err == nil {
		h.t.Fatal("Expected error, got nil")
	}
	if !contains(err.Error(), substr) {
		h.t.Fatalf("Error %q does not contain %q %v", err.Error(), substr, msgAndArgs)
	}
}

// Equal 断言相等
func (h *AssertHelper) Equal(expected, actual interface{}, msgAndArgs ...interface{}) {
	h.t.Helper()
	if expected != actual {
		h.t.Fatalf("Expected %v, got %v %v", expected, actual, msgAndArgs)
	}
}

// True 断言为真
func (h *AssertHelper) True(condition bool, msgAndArgs ...interface{}) {
	h.t.Helper()
	if !condition {
		h.t.Fatalf("Expected true, got false %v", msgAndArgs)
	}
}

// NewItem 构造一个合法的目录物料
func NewItem(name, category string, price float64) *model.Item {
	return &model.Item{
		ID:             uuid.New().String(),
		Name:           name,
		Category:       category,
		EstimatedPrice: price,
		Unit:           "each",
		Status:         model.ItemStatusActive,
	}
}

// NewUser 构造一个激活用户
func NewUser(email string) *model.User {
	return &model.User{
		ID:          uuid.New().String(),
		Email:       email,
		DisplayName: "Test User",
		Role:        "user",
		IsActive:    true,
	}
}

// NewCartLine 构造一条购物车行快照
func NewCartLine(cartID string, item *model.Item, quantity int) *model.CartItem {
	return &model.CartItem{
		ID:       uuid.New().String(),
		CartID:   cartID,
		ItemID:   item.ID,
		Name:     item.Name,
		Category: item.Category,
		Price:    item.EstimatedPrice,
		Quantity: quantity,
		Subtotal: item.EstimatedPrice * float64(quantity),
	}
}

func contains(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
