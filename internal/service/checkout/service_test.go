package checkout

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/ashwinyue/procure-ai/internal/model"
	"github.com/ashwinyue/procure-ai/internal/service/types"
	"github.com/ashwinyue/procure-ai/internal/testutil"
)

// mockCartRepository 只实现结账需要的读取与清空
type mockCartRepository struct {
	carts map[string]*model.Cart
}

func (m *mockCartRepository) GetByUserID(userID string) (*model.Cart, error) {
	return m.carts[userID], nil
}
func (m *mockCartRepository) Create(cart *model.Cart) error         { return nil }
func (m *mockCartRepository) CreateLine(line *model.CartItem) error { return nil }
func (m *mockCartRepository) UpdateLine(line *model.CartItem) error { return nil }
func (m *mockCartRepository) DeleteLine(id string) error            { return nil }
func (m *mockCartRepository) ClearLines(cartID string) error        { return nil }
func (m *mockCartRepository) UpdateTotal(cartID string, total float64) error {
	return nil
}

// mockPurchaseRepository 模拟事务化的结账落库
type mockPurchaseRepository struct {
	carts    *mockCartRepository
	requests []*model.PurchaseRequest
	counters map[string]int64
	failNext bool
}

func (m *mockPurchaseRepository) CreateFromCart(req *model.PurchaseRequest, cartID string) error {
	if m.failNext {
		return errors.New("tx failed")
	}
	if m.counters == nil {
		m.counters = make(map[string]int64)
	}
	m.counters[req.UserID]++
	req.Seq = m.counters[req.UserID]
	req.Number = fmt.Sprintf("PR-%06d", req.Seq)
	m.requests = append(m.requests, req)

	// 事务内清空购物车
	for _, cart := range m.carts.carts {
		if cart.ID == cartID {
			cart.Items = nil
			cart.Total = 0
		}
	}
	return nil
}

func (m *mockPurchaseRepository) ListByUserID(userID string, offset, limit int) ([]*model.PurchaseRequest, error) {
	var result []*model.PurchaseRequest
	for _, req := range m.requests {
		if req.UserID == userID {
			result = append(result, req)
		}
	}
	if offset > len(result) {
		offset = len(result)
	}
	result = result[offset:]
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockPurchaseRepository) GetByID(id string) (*model.PurchaseRequest, error) {
	for _, req := range m.requests {
		if req.ID == id {
			return req, nil
		}
	}
	return nil, nil
}

func newTestService() (*Service, *mockCartRepository, *mockPurchaseRepository) {
	carts := &mockCartRepository{carts: make(map[string]*model.Cart)}
	purchases := &mockPurchaseRepository{carts: carts}
	return NewService(carts, purchases), carts, purchases
}

func cartWith(userID string, lines ...*model.CartItem) *model.Cart {
	cart := &model.Cart{ID: "cart-" + userID, UserID: userID}
	for _, line := range lines {
		line.CartID = cart.ID
		cart.Items = append(cart.Items, *line)
		cart.Total += line.Subtotal
	}
	return cart
}

func TestCheckoutEmptyCart(t *testing.T) {
	svc, carts, _ := newTestService()
	ctx := context.Background()

	// 没有购物车
	_, err := svc.Checkout(ctx, "u1", "", model.PurchaseSourceUI)
	if !errors.Is(err, types.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}

	// 有购物车但没有行
	carts.carts["u1"] = cartWith("u1")
	_, err = svc.Checkout(ctx, "u1", "", model.PurchaseSourceUI)
	if !errors.Is(err, types.ErrEmptyCart) {
		t.Fatalf("expected ErrEmptyCart, got %v", err)
	}
}

func TestCheckoutSnapshotAndClear(t *testing.T) {
	assert := testutil.NewAssertHelper(t)
	svc, carts, _ := newTestService()
	ctx := context.Background()

	chair := testutil.NewItem("Chair", "Furniture", 100)
	desk := testutil.NewItem("Desk", "Furniture", 300)
	carts.carts["u1"] = cartWith("u1",
		testutil.NewCartLine("", chair, 2),
		testutil.NewCartLine("", desk, 1),
	)

	req, err := svc.Checkout(ctx, "u1", "quarterly restock", model.PurchaseSourceUI)
	assert.NoError(err)
	assert.Equal("PR-000001", req.Number)
	assert.Equal(2, len(req.Items))
	assert.Equal(500.0, req.Total, "total must equal the sum of line subtotals")
	assert.Equal(model.PurchaseStatusSubmitted, req.Status)
	assert.Equal("quarterly restock", req.Notes)

	// 结账后购物车清空
	assert.Equal(0, len(carts.carts["u1"].Items))
	assert.Equal(0.0, carts.carts["u1"].Total)

	// 快照不受后续目录改动影响
	chair.EstimatedPrice = 9999
	stored, err := svc.GetByID(ctx, "u1", req.ID)
	assert.NoError(err)
	for _, line := range stored.Items {
		if line.Name == "Chair" {
			assert.Equal(100.0, line.Price)
		}
	}
}

func TestCheckoutSequentialNumbers(t *testing.T) {
	assert := testutil.NewAssertHelper(t)
	svc, carts, _ := newTestService()
	ctx := context.Background()

	item := testutil.NewItem("Pen", "Office", 2)
	for i := 1; i <= 3; i++ {
		carts.carts["u1"] = cartWith("u1", testutil.NewCartLine("", item, 1))
		req, err := svc.Checkout(ctx, "u1", "", model.PurchaseSourceUI)
		assert.NoError(err)
		assert.Equal(fmt.Sprintf("PR-%06d", i), req.Number)
	}

	// 计数器按申请人独立
	carts.carts["u2"] = cartWith("u2", testutil.NewCartLine("", item, 1))
	req, err := svc.Checkout(ctx, "u2", "", model.PurchaseSourceUI)
	assert.NoError(err)
	assert.Equal("PR-000001", req.Number)
}

func TestCheckoutSourceNormalized(t *testing.T) {
	assert := testutil.NewAssertHelper(t)
	svc, carts, _ := newTestService()
	ctx := context.Background()
	item := testutil.NewItem("Pen", "Office", 2)

	carts.carts["u1"] = cartWith("u1", testutil.NewCartLine("", item, 1))
	req, err := svc.Checkout(ctx, "u1", "", "bogus")
	assert.NoError(err)
	assert.Equal(model.PurchaseSourceUI, req.Source)

	carts.carts["u1"] = cartWith("u1", testutil.NewCartLine("", item, 1))
	req, err = svc.Checkout(ctx, "u1", "", model.PurchaseSourceAgent)
	assert.NoError(err)
	assert.Equal(model.PurchaseSourceAgent, req.Source)
}

func TestCheckoutFailureKeepsCart(t *testing.T) {
	svc, carts, purchases := newTestService()
	ctx := context.Background()

	item := testutil.NewItem("Pen", "Office", 2)
	carts.carts["u1"] = cartWith("u1", testutil.NewCartLine("", item, 1))
	purchases.failNext = true

	_, err := svc.Checkout(ctx, "u1", "", model.PurchaseSourceUI)
	if err == nil {
		t.Fatal("expected error from failed transaction")
	}
	if len(carts.carts["u1"].Items) != 1 {
		t.Fatal("cart must stay intact when checkout fails")
	}
}

func TestGetByIDOwnership(t *testing.T) {
	svc, carts, _ := newTestService()
	ctx := context.Background()

	item := testutil.NewItem("Pen", "Office", 2)
	carts.carts["u1"] = cartWith("u1", testutil.NewCartLine("", item, 1))
	req, err := svc.Checkout(ctx, "u1", "", model.PurchaseSourceUI)
	if err != nil {
		t.Fatal(err)
	}

	// 别人的申请不可见
	_, err = svc.GetByID(ctx, "u2", req.ID)
	var notFound *types.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestListForUserPagination(t *testing.T) {
	assert := testutil.NewAssertHelper(t)
	svc, carts, _ := newTestService()
	ctx := context.Background()
	item := testutil.NewItem("Pen", "Office", 2)

	for i := 0; i < 5; i++ {
		carts.carts["u1"] = cartWith("u1", testutil.NewCartLine("", item, 1))
		_, err := svc.Checkout(ctx, "u1", "", model.PurchaseSourceUI)
		assert.NoError(err)
	}

	page, err := svc.ListForUser(ctx, "u1", 0, 3)
	assert.NoError(err)
	assert.Equal(3, len(page))

	rest, err := svc.ListForUser(ctx, "u1", 3, 3)
	assert.NoError(err)
	assert.Equal(2, len(rest))
}
