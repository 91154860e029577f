package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/ashwinyue/procure-ai/internal/model"
	"github.com/ashwinyue/procure-ai/internal/service/types"
	"github.com/ashwinyue/procure-ai/internal/testutil"
)

// mockCartRepository 内存购物车仓库
type mockCartRepository struct {
	carts map[string]*model.Cart // userID -> cart
}

func newMockCartRepository() *mockCartRepository {
	return &mockCartRepository{carts: make(map[string]*model.Cart)}
}

func (m *mockCartRepository) GetByUserID(userID string) (*model.Cart, error) {
	cart, ok := m.carts[userID]
	if !ok {
		return nil, nil
	}
	// 模拟从数据库重新读取
	clone := *cart
	clone.Items = append([]model.CartItem{}, cart.Items...)
	return &clone, nil
}

func (m *mockCartRepository) Create(cart *model.Cart) error {
	m.carts[cart.UserID] = cart
	return nil
}

func (m *mockCartRepository) CreateLine(line *model.CartItem) error {
	cart := m.findCart(line.CartID)
	if cart == nil {
		return errors.New("cart not found")
	}
	cart.Items = append(cart.Items, *line)
	return nil
}

func (m *mockCartRepository) UpdateLine(line *model.CartItem) error {
	cart := m.findCart(line.CartID)
	if cart == nil {
		return errors.New("cart not found")
	}
	for i := range cart.Items {
		if cart.Items[i].ID == line.ID {
			cart.Items[i] = *line
			return nil
		}
	}
	return errors.New("line not found")
}

func (m *mockCartRepository) DeleteLine(id string) error {
	for _, cart := range m.carts {
		for i := range cart.Items {
			if cart.Items[i].ID == id {
				cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
				return nil
			}
		}
	}
	return errors.New("line not found")
}

func (m *mockCartRepository) ClearLines(cartID string) error {
	cart := m.findCart(cartID)
	if cart == nil {
		return errors.New("cart not found")
	}
	cart.Items = nil
	return nil
}

func (m *mockCartRepository) UpdateTotal(cartID string, total float64) error {
	cart := m.findCart(cartID)
	if cart == nil {
		return errors.New("cart not found")
	}
	cart.Total = total
	return nil
}

func (m *mockCartRepository) findCart(cartID string) *model.Cart {
	for _, cart := range m.carts {
		if cart.ID == cartID {
			return cart
		}
	}
	return nil
}

// mockItemRepository 只实现购物车需要的读取
type mockItemRepository struct {
	items map[string]*model.Item
}

func (m *mockItemRepository) Create(item *model.Item) error { return nil }
func (m *mockItemRepository) GetByID(id string) (*model.Item, error) {
	return m.items[id], nil
}
func (m *mockItemRepository) FindByNameCategory(name, category string) ([]*model.Item, error) {
	return nil, nil
}
func (m *mockItemRepository) Search(query string, limit int, includeArchived bool) ([]*model.Item, error) {
	return nil, nil
}
func (m *mockItemRepository) ListRecent(limit int, includeArchived bool) ([]*model.Item, error) {
	return nil, nil
}
func (m *mockItemRepository) ListByIDs(ids []string) ([]*model.Item, error) { return nil, nil }
func (m *mockItemRepository) UpdateStatus(id, status string) error          { return nil }

func newTestService(items ...*model.Item) (*Service, *mockCartRepository) {
	itemRepo := &mockItemRepository{items: make(map[string]*model.Item)}
	for _, item := range items {
		itemRepo.items[item.ID] = item
	}
	cartRepo := newMockCartRepository()
	return NewService(cartRepo, itemRepo), cartRepo
}

func TestGetCreatesEmptyCart(t *testing.T) {
	assert := testutil.NewAssertHelper(t)
	svc, _ := newTestService()

	view, err := svc.Get(context.Background(), "u1")
	assert.NoError(err)
	assert.Equal(0, view.ItemCount)
	assert.Equal(0.0, view.TotalCost)
	assert.Equal("u1", view.UserID)
}

func TestAddItemSnapshotAndTotals(t *testing.T) {
	assert := testutil.NewAssertHelper(t)
	item := testutil.NewItem("Monitor", "IT Equipment", 250)
	svc, _ := newTestService(item)
	ctx := context.Background()

	view, err := svc.AddItem(ctx, "u1", item.ID, 2)
	assert.NoError(err)
	assert.Equal(1, view.ItemCount)
	assert.Equal(2, view.TotalQty)
	assert.Equal(500.0, view.TotalCost)
	assert.Equal("Monitor", view.Items[0].Name)
	assert.Equal(250.0, view.Items[0].Price)

	// 快照不随目录改动
	item.EstimatedPrice = 999
	view, err = svc.Get(ctx, "u1")
	assert.NoError(err)
	assert.Equal(250.0, view.Items[0].Price, "cart line must keep the price captured at add time")
}

func TestAddItemMergesAndClamps(t *testing.T) {
	assert := testutil.NewAssertHelper(t)
	item := testutil.NewItem("Cable", "IT Equipment", 10)
	svc, _ := newTestService(item)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "u1", item.ID, 500)
	assert.NoError(err)

	// 同一物料合并，超上限收敛到 999
	view, err := svc.AddItem(ctx, "u1", item.ID, 800)
	assert.NoError(err)
	assert.Equal(1, view.ItemCount, "same item should merge into one line")
	assert.Equal(model.CartMaxQuantity, view.Items[0].Quantity)
	assert.Equal(9990.0, view.TotalCost)
}

func TestAddItemClampsLowQuantity(t *testing.T) {
	assert := testutil.NewAssertHelper(t)
	item := testutil.NewItem("Cable", "IT Equipment", 10)
	svc, _ := newTestService(item)

	view, err := svc.AddItem(context.Background(), "u1", item.ID, -3)
	assert.NoError(err)
	assert.Equal(model.CartMinQuantity, view.Items[0].Quantity)
}

func TestAddItemUnknownItem(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.AddItem(context.Background(), "u1", "missing", 1)
	var notFound *types.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestUpdateQuantity(t *testing.T) {
	assert := testutil.NewAssertHelper(t)
	item := testutil.NewItem("Chair", "Furniture", 100)
	svc, _ := newTestService(item)
	ctx := context.Background()

	view, err := svc.AddItem(ctx, "u1", item.ID, 1)
	assert.NoError(err)
	lineID := view.Items[0].ID

	// 显式更新到 0 直接拒绝
	_, err = svc.UpdateQuantity(ctx, "u1", lineID, 0)
	var limitErr *types.CartLimitError
	if !errors.As(err, &limitErr) {
		t.Fatalf("expected CartLimitError, got %v", err)
	}

	// 超上限收敛
	view, err = svc.UpdateQuantity(ctx, "u1", lineID, 5000)
	assert.NoError(err)
	assert.Equal(model.CartMaxQuantity, view.Items[0].Quantity)

	// 正常更新重算小计
	view, err = svc.UpdateQuantity(ctx, "u1", lineID, 3)
	assert.NoError(err)
	assert.Equal(3, view.Items[0].Quantity)
	assert.Equal(300.0, view.TotalCost)
}

func TestRemoveAndClear(t *testing.T) {
	assert := testutil.NewAssertHelper(t)
	chair := testutil.NewItem("Chair", "Furniture", 100)
	desk := testutil.NewItem("Desk", "Furniture", 300)
	svc, _ := newTestService(chair, desk)
	ctx := context.Background()

	view, err := svc.AddItem(ctx, "u1", chair.ID, 1)
	assert.NoError(err)
	view, err = svc.AddItem(ctx, "u1", desk.ID, 1)
	assert.NoError(err)
	assert.Equal(2, view.ItemCount)

	var chairLine string
	for _, line := range view.Items {
		if line.ItemID == chair.ID {
			chairLine = line.ID
		}
	}

	view, err = svc.RemoveItem(ctx, "u1", chairLine)
	assert.NoError(err)
	assert.Equal(1, view.ItemCount)
	assert.Equal(300.0, view.TotalCost)

	view, err = svc.Clear(ctx, "u1")
	assert.NoError(err)
	assert.Equal(0, view.ItemCount)
	assert.Equal(0.0, view.TotalCost)
}

func TestRemoveForeignLine(t *testing.T) {
	item := testutil.NewItem("Chair", "Furniture", 100)
	svc, _ := newTestService(item)
	ctx := context.Background()

	view, err := svc.AddItem(ctx, "owner", item.ID, 1)
	if err != nil {
		t.Fatal(err)
	}

	// 别人的条目在自己购物车里找不到
	_, err = svc.RemoveItem(ctx, "intruder", view.Items[0].ID)
	var notFound *types.NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestAnalyze(t *testing.T) {
	assert := testutil.NewAssertHelper(t)
	chair := testutil.NewItem("Chair", "Furniture", 100)
	desk := testutil.NewItem("Desk", "Furniture", 300)
	svc, _ := newTestService(chair, desk)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "u1", chair.ID, 4)
	assert.NoError(err)
	_, err = svc.AddItem(ctx, "u1", desk.ID, 1)
	assert.NoError(err)

	analysis, err := svc.Analyze(ctx, "u1")
	assert.NoError(err)
	assert.Equal(2, analysis.DistinctItems)
	assert.Equal(5, analysis.ItemCount)
	assert.Equal(700.0, analysis.TotalCost)
}
