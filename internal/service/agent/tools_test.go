package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/ashwinyue/procure-ai/internal/model"
	"github.com/ashwinyue/procure-ai/internal/service/catalog"
	"github.com/ashwinyue/procure-ai/internal/service/types"
	"github.com/ashwinyue/procure-ai/internal/testutil"
)

// mockItemRepository 目录工具测试用的内存仓库
type mockItemRepository struct {
	items []*model.Item
}

func (m *mockItemRepository) Create(item *model.Item) error {
	m.items = append(m.items, item)
	return nil
}
func (m *mockItemRepository) GetByID(id string) (*model.Item, error) {
	for _, item := range m.items {
		if item.ID == id {
			return item, nil
		}
	}
	return nil, nil
}
func (m *mockItemRepository) FindByNameCategory(name, category string) ([]*model.Item, error) {
	var matches []*model.Item
	for _, item := range m.items {
		if strings.EqualFold(item.Name, name) && strings.EqualFold(item.Category, category) {
			matches = append(matches, item)
		}
	}
	return matches, nil
}
func (m *mockItemRepository) Search(query string, limit int, includeArchived bool) ([]*model.Item, error) {
	var matches []*model.Item
	for _, item := range m.items {
		if strings.Contains(strings.ToLower(item.Name), strings.ToLower(query)) {
			matches = append(matches, item)
		}
		if len(matches) >= limit {
			break
		}
	}
	return matches, nil
}
func (m *mockItemRepository) ListRecent(limit int, includeArchived bool) ([]*model.Item, error) {
	if len(m.items) > limit {
		return m.items[:limit], nil
	}
	return m.items, nil
}
func (m *mockItemRepository) ListByIDs(ids []string) ([]*model.Item, error) { return nil, nil }
func (m *mockItemRepository) UpdateStatus(id, status string) error          { return nil }

func TestParseArgsRepairsBrokenJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"valid", `{"query":"pens","limit":5}`},
		{"trailing comma", `{"query":"pens","limit":5,}`},
		{"single quotes", `{'query':'pens','limit':5}`},
		{"unquoted keys", `{query:"pens",limit:5}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var args searchCatalogArgs
			if err := parseArgs(tt.raw, &args); err != nil {
				t.Fatalf("parseArgs failed: %v", err)
			}
			if args.Query != "pens" || args.Limit != 5 {
				t.Fatalf("unexpected parse result: %+v", args)
			}
		})
	}
}

func TestParseArgsUnrepairable(t *testing.T) {
	var args searchCatalogArgs
	if err := parseArgs(`"just a string"`, &args); err == nil {
		t.Fatal("expected error for non-object arguments")
	}
}

func TestTurnContextCardClamp(t *testing.T) {
	tc := &turnContext{userID: "u1"}

	cards := make([]types.ItemCard, 25)
	tc.setCards(cards)

	if len(tc.itemCards) != maxToolResults {
		t.Fatalf("cards not clamped: got %d, want %d", len(tc.itemCards), maxToolResults)
	}
}

func TestTurnContextMetadata(t *testing.T) {
	tc := &turnContext{userID: "u1"}
	if meta := tc.metadata(); meta != nil {
		t.Fatal("empty turn should produce nil metadata")
	}

	tc.setCards([]types.ItemCard{{ID: "i1", Name: "Pen"}})
	tc.setCart(&types.CartView{ID: "c1", UserID: "u1"})
	tc.setConfirmation(&model.PurchaseRequest{Number: "PR-000001"})

	meta := tc.metadata()
	if meta == nil {
		t.Fatal("expected metadata")
	}
	for _, key := range []string{"items", "cart", "purchase_request"} {
		if _, ok := meta[key]; !ok {
			t.Fatalf("metadata missing %q", key)
		}
	}
}

func TestTurnContextRecordsErrors(t *testing.T) {
	tc := &turnContext{userID: "u1"}
	tc.record("search_catalog", `{"query":"x"}`, "", errors.New("boom"))
	tc.record("view_cart", "{}", `{"cart":{}}`, nil)

	if len(tc.actions) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(tc.actions))
	}
	if tc.actions[0].Error != "boom" {
		t.Fatalf("first action should carry the error, got %q", tc.actions[0].Error)
	}
	if tc.actions[1].Error != "" {
		t.Fatal("successful action must not carry an error")
	}
}

func TestSearchCatalogTool(t *testing.T) {
	assert := testutil.NewAssertHelper(t)

	repo := &mockItemRepository{}
	for i := 0; i < 30; i++ {
		item := testutil.NewItem("Pen", "Office", 2)
		item.Description = strings.Repeat("long description ", 30)
		repo.items = append(repo.items, item)
	}

	svc := &Service{catalog: catalog.NewService(repo, nil, "test")}
	tc := &turnContext{userID: "u1"}
	tool := &searchCatalogTool{s: svc, tc: tc}

	out, err := tool.InvokableRun(context.Background(), `{"query":"pen","limit":50}`)
	assert.NoError(err)

	var result struct {
		Count int              `json:"count"`
		Items []types.ItemCard `json:"items"`
	}
	assert.NoError(json.Unmarshal([]byte(out), &result))

	// 结果数收敛到上限
	assert.True(result.Count <= maxToolResults, "result count must be clamped")
	for _, card := range result.Items {
		if len(card.Description) > descriptionTruncateLen+3 {
			t.Fatalf("description not truncated: %d chars", len(card.Description))
		}
	}

	// 工具调用被记录，卡片进入元数据
	assert.Equal(1, len(tc.actions))
	assert.Equal("search_catalog", tc.actions[0].Tool)
	assert.True(len(tc.itemCards) > 0, "cards should land in turn metadata")
}

func TestRegisterItemToolDuplicateFlow(t *testing.T) {
	assert := testutil.NewAssertHelper(t)

	repo := &mockItemRepository{items: []*model.Item{
		testutil.NewItem("Stapler", "Office", 8),
	}}
	svc := &Service{catalog: catalog.NewService(repo, nil, "test")}
	tc := &turnContext{userID: "u1"}
	tool := &registerItemTool{s: svc, tc: tc}
	ctx := context.Background()

	// 撞车：返回候选而不是报错
	out, err := tool.InvokableRun(ctx, `{"name":"stapler","category":"office","estimated_price":9}`)
	assert.NoError(err)

	var dupResult struct {
		Duplicate  bool             `json:"duplicate"`
		Duplicates []types.ItemCard `json:"duplicates"`
	}
	assert.NoError(json.Unmarshal([]byte(out), &dupResult))
	assert.True(dupResult.Duplicate, "should flag the duplicate")
	assert.True(len(dupResult.Duplicates) > 0, "should carry candidates")
	assert.Equal(1, len(repo.items), "duplicate must not be created")

	// 显式覆盖
	out, err = tool.InvokableRun(ctx, `{"name":"stapler","category":"office","estimated_price":9,"allow_duplicate":true}`)
	assert.NoError(err)

	var okResult struct {
		Registered bool `json:"registered"`
	}
	assert.NoError(json.Unmarshal([]byte(out), &okResult))
	assert.True(okResult.Registered)
	assert.Equal(2, len(repo.items))
}

func TestStubTool(t *testing.T) {
	stub := &stubTool{name: "web_search"}

	info, err := stub.Info(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if info.Name != "web_search" {
		t.Fatalf("unexpected tool name %q", info.Name)
	}

	out, err := stub.InvokableRun(context.Background(), `{"query":"anything"}`)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "not available") {
		t.Fatalf("stub should report unavailability, got %q", out)
	}
}

func TestBuildToolsRegistry(t *testing.T) {
	svc := &Service{}
	tc := &turnContext{userID: "u1"}

	tools := svc.buildTools(context.Background(), tc)
	if len(tools) != len(toolRegistry) {
		t.Fatalf("expected %d tools, got %d", len(toolRegistry), len(tools))
	}

	want := map[string]bool{
		"search_catalog": false, "register_item": false,
		"add_to_cart": false, "update_cart_item": false,
		"remove_from_cart": false, "view_cart": false,
		"analyze_cart": false, "checkout": false,
	}
	for _, tl := range tools {
		info, err := tl.Info(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if _, ok := want[info.Name]; !ok {
			t.Fatalf("unexpected tool %q", info.Name)
		}
		want[info.Name] = true
	}
	for name, seen := range want {
		if !seen {
			t.Fatalf("tool %q missing from registry", name)
		}
	}
}
