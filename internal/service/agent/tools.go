package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/cloudwego/eino-ext/components/tool/duckduckgo/v2"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/schema"
	"github.com/kaptinlin/jsonrepair"

	"github.com/ashwinyue/procure-ai/internal/model"
	"github.com/ashwinyue/procure-ai/internal/service/catalog"
	"github.com/ashwinyue/procure-ai/internal/service/types"
)

// 工具返回的物料卡片数量范围
const (
	minToolResults = 3
	maxToolResults = 10
)

// turnContext 单轮对话的工具调用收集器
// 工具把动作日志和渲染元数据写进来，轮次结束时随助手消息一起落库
type turnContext struct {
	userID string

	mu           sync.Mutex
	actions      []model.AgentAction
	itemCards    []types.ItemCard
	cartSnapshot *types.CartView
	confirmation *model.PurchaseRequest
}

// record 记录一次工具调用
func (tc *turnContext) record(toolName, arguments, result string, err error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	action := model.AgentAction{
		Tool:      toolName,
		Arguments: arguments,
		Result:    result,
	}
	if err != nil {
		action.Error = err.Error()
	}
	tc.actions = append(tc.actions, action)
}

// setCards 记录本轮要渲染的物料卡片，数量收敛到 [3, 10]
func (tc *turnContext) setCards(cards []types.ItemCard) {
	if len(cards) > maxToolResults {
		cards = cards[:maxToolResults]
	}
	tc.mu.Lock()
	tc.itemCards = cards
	tc.mu.Unlock()
}

// setCart 记录本轮最后的购物车快照
func (tc *turnContext) setCart(view *types.CartView) {
	tc.mu.Lock()
	tc.cartSnapshot = view
	tc.mu.Unlock()
}

// setConfirmation 记录结账确认
func (tc *turnContext) setConfirmation(req *model.PurchaseRequest) {
	tc.mu.Lock()
	tc.confirmation = req
	tc.mu.Unlock()
}

// metadata 汇总成助手消息的 metadata
func (tc *turnContext) metadata() model.JSON {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	meta := model.JSON{}
	if len(tc.itemCards) > 0 {
		meta["items"] = tc.itemCards
	}
	if tc.cartSnapshot != nil {
		meta["cart"] = tc.cartSnapshot
	}
	if tc.confirmation != nil {
		meta["purchase_request"] = tc.confirmation
	}
	if len(meta) == 0 {
		return nil
	}
	return meta
}

// parseArgs 解析工具参数
// LLM 生成的 JSON 偶尔带尾逗号或单引号，先修复再重试一次
func parseArgs(raw string, v interface{}) error {
	if err := json.Unmarshal([]byte(raw), v); err == nil {
		return nil
	}
	repaired, err := jsonrepair.JSONRepair(raw)
	if err != nil {
		return fmt.Errorf("invalid tool arguments: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), v); err != nil {
		return fmt.Errorf("invalid tool arguments: %w", err)
	}
	return nil
}

// toolResult 序列化工具结果
func toolResult(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return `{"error":"failed to encode result"}`
	}
	return string(data)
}

// toolError 工具级错误返回给模型，让它自己解释给用户
func toolError(message string) string {
	return toolResult(map[string]string{"error": message})
}

// ========== 工具注册表 ==========

// toolBuilder 把一轮的收集器绑定成可调用工具
type toolBuilder func(s *Service, tc *turnContext) tool.BaseTool

// toolRegistry 固定的工具集合
// 新工具在这里登记，不在调用点写分支
var toolRegistry = []toolBuilder{
	func(s *Service, tc *turnContext) tool.BaseTool { return &searchCatalogTool{s: s, tc: tc} },
	func(s *Service, tc *turnContext) tool.BaseTool { return &registerItemTool{s: s, tc: tc} },
	func(s *Service, tc *turnContext) tool.BaseTool { return &addToCartTool{s: s, tc: tc} },
	func(s *Service, tc *turnContext) tool.BaseTool { return &updateCartItemTool{s: s, tc: tc} },
	func(s *Service, tc *turnContext) tool.BaseTool { return &removeFromCartTool{s: s, tc: tc} },
	func(s *Service, tc *turnContext) tool.BaseTool { return &viewCartTool{s: s, tc: tc} },
	func(s *Service, tc *turnContext) tool.BaseTool { return &analyzeCartTool{s: s, tc: tc} },
	func(s *Service, tc *turnContext) tool.BaseTool { return &checkoutTool{s: s, tc: tc} },
}

// buildTools 为一轮对话构建工具集
func (s *Service) buildTools(ctx context.Context, tc *turnContext) []tool.BaseTool {
	tools := make([]tool.BaseTool, 0, len(toolRegistry)+1)
	for _, build := range toolRegistry {
		tools = append(tools, build(s, tc))
	}

	if s.webSearchEnabled {
		tools = append(tools, newWebSearchTool(ctx))
	}

	return tools
}

// stubTool 占位工具
type stubTool struct {
	name string
}

func (t *stubTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: t.name,
		Desc: t.name + " (unavailable)",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {
				Type:     schema.String,
				Desc:     "The query string",
				Required: true,
			},
		}),
	}, nil
}

func (t *stubTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	return fmt.Sprintf(`{"error":"%s is not available"}`, t.name), nil
}

// newWebSearchTool 创建供应商资料检索工具
func newWebSearchTool(ctx context.Context) tool.InvokableTool {
	searchTool, err := duckduckgo.NewTextSearchTool(ctx, &duckduckgo.Config{
		ToolName:   "web_search",
		ToolDesc:   "Search the web for supplier and product information using DuckDuckGo. Use this when the catalog has no matching item and you need external references.",
		MaxResults: 5,
	})
	if err != nil {
		log.Printf("Warning: failed to create web search tool: %v", err)
		return &stubTool{name: "web_search"}
	}
	return searchTool
}

// ========== search_catalog ==========

type searchCatalogTool struct {
	s  *Service
	tc *turnContext
}

type searchCatalogArgs struct {
	Query string `json:"query"`
	Limit int    `json:"limit"`
}

func (t *searchCatalogTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: "search_catalog",
		Desc: "Search the procurement catalog by name, category or description. Always search before registering a new item.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"query": {
				Type:     schema.String,
				Desc:     "Search keywords, e.g. item name or category",
				Required: true,
			},
			"limit": {
				Type: schema.Integer,
				Desc: "Maximum number of results, between 3 and 10",
			},
		}),
	}, nil
}

func (t *searchCatalogTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var args searchCatalogArgs
	if err := parseArgs(argumentsInJSON, &args); err != nil {
		t.tc.record("search_catalog", argumentsInJSON, "", err)
		return toolError(err.Error()), nil
	}

	limit := args.Limit
	if limit < minToolResults {
		limit = minToolResults
	}
	if limit > maxToolResults {
		limit = maxToolResults
	}

	items, err := t.s.catalog.Search(ctx, &catalog.SearchRequest{Query: args.Query, Limit: limit})
	if err != nil {
		t.tc.record("search_catalog", argumentsInJSON, "", err)
		return toolError("catalog search failed"), nil
	}

	cards := make([]types.ItemCard, 0, len(items))
	for _, item := range items {
		cards = append(cards, types.ItemCard{
			ID:          item.ID,
			Name:        item.Name,
			Category:    item.Category,
			Description: truncateDescription(item.Description),
			Price:       item.EstimatedPrice,
			Unit:        item.Unit,
			Supplier:    item.PreferredSupplier,
		})
	}
	t.tc.setCards(cards)

	result := toolResult(map[string]interface{}{"count": len(cards), "items": cards})
	t.tc.record("search_catalog", argumentsInJSON, result, nil)
	return result, nil
}

// ========== register_item ==========

type registerItemTool struct {
	s  *Service
	tc *turnContext
}

type registerItemArgs struct {
	Name              string  `json:"name"`
	Category          string  `json:"category"`
	Description       string  `json:"description"`
	EstimatedPrice    float64 `json:"estimated_price"`
	Unit              string  `json:"unit"`
	PreferredSupplier string  `json:"preferred_supplier"`
	AllowDuplicate    bool    `json:"allow_duplicate"`
}

func (t *registerItemTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: "register_item",
		Desc: "Register a new item in the catalog. If a duplicate is reported, confirm with the user before retrying with allow_duplicate=true.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"name": {
				Type:     schema.String,
				Desc:     "Item name, 2-200 characters",
				Required: true,
			},
			"category": {
				Type:     schema.String,
				Desc:     "Item category, 2-100 characters",
				Required: true,
			},
			"description": {
				Type: schema.String,
				Desc: "Optional description",
			},
			"estimated_price": {
				Type:     schema.Number,
				Desc:     "Estimated unit price, must be positive",
				Required: true,
			},
			"unit": {
				Type: schema.String,
				Desc: "Unit of measure, defaults to 'each'",
			},
			"preferred_supplier": {
				Type: schema.String,
				Desc: "Optional preferred supplier",
			},
			"allow_duplicate": {
				Type: schema.Boolean,
				Desc: "Set true only after the user confirmed a near-duplicate is intended",
			},
		}),
	}, nil
}

func (t *registerItemTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var args registerItemArgs
	if err := parseArgs(argumentsInJSON, &args); err != nil {
		t.tc.record("register_item", argumentsInJSON, "", err)
		return toolError(err.Error()), nil
	}

	item, err := t.s.catalog.Create(ctx, &catalog.CreateItemRequest{
		Name:              args.Name,
		Category:          args.Category,
		Description:       args.Description,
		EstimatedPrice:    args.EstimatedPrice,
		Unit:              args.Unit,
		PreferredSupplier: args.PreferredSupplier,
		CreatedBy:         t.tc.userID,
		AllowDuplicate:    args.AllowDuplicate,
	})
	if err != nil {
		var dup *types.DuplicateItemError
		if errors.As(err, &dup) {
			cards := make([]types.ItemCard, 0, len(dup.Duplicates))
			for _, d := range dup.Duplicates {
				cards = append(cards, types.ItemCard{
					ID:       d.ID,
					Name:     d.Name,
					Category: d.Category,
					Price:    d.EstimatedPrice,
					Unit:     d.Unit,
				})
			}
			t.tc.setCards(cards)
			result := toolResult(map[string]interface{}{
				"duplicate":  true,
				"message":    "similar items already exist, ask the user before registering again with allow_duplicate=true",
				"duplicates": cards,
			})
			t.tc.record("register_item", argumentsInJSON, result, nil)
			return result, nil
		}
		t.tc.record("register_item", argumentsInJSON, "", err)
		return toolError(err.Error()), nil
	}

	t.tc.setCards([]types.ItemCard{{
		ID:       item.ID,
		Name:     item.Name,
		Category: item.Category,
		Price:    item.EstimatedPrice,
		Unit:     item.Unit,
		Supplier: item.PreferredSupplier,
	}})

	result := toolResult(map[string]interface{}{"registered": true, "item": item})
	t.tc.record("register_item", argumentsInJSON, result, nil)
	return result, nil
}

// ========== add_to_cart ==========

type addToCartTool struct {
	s  *Service
	tc *turnContext
}

type addToCartArgs struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

func (t *addToCartTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: "add_to_cart",
		Desc: "Add a catalog item to the user's cart. Quantity is clamped to 1-999.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"item_id": {
				Type:     schema.String,
				Desc:     "Catalog item ID from search_catalog results",
				Required: true,
			},
			"quantity": {
				Type: schema.Integer,
				Desc: "Quantity to add, defaults to 1",
			},
		}),
	}, nil
}

func (t *addToCartTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var args addToCartArgs
	if err := parseArgs(argumentsInJSON, &args); err != nil {
		t.tc.record("add_to_cart", argumentsInJSON, "", err)
		return toolError(err.Error()), nil
	}
	if args.Quantity == 0 {
		args.Quantity = 1
	}

	view, err := t.s.cart.AddItem(ctx, t.tc.userID, args.ItemID, args.Quantity)
	if err != nil {
		t.tc.record("add_to_cart", argumentsInJSON, "", err)
		return toolError(err.Error()), nil
	}
	t.tc.setCart(view)

	result := toolResult(map[string]interface{}{"cart": view})
	t.tc.record("add_to_cart", argumentsInJSON, result, nil)
	return result, nil
}

// ========== update_cart_item ==========

type updateCartItemTool struct {
	s  *Service
	tc *turnContext
}

type updateCartItemArgs struct {
	LineID   string `json:"line_id"`
	Quantity int    `json:"quantity"`
}

func (t *updateCartItemTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: "update_cart_item",
		Desc: "Change the quantity of a cart line. Use remove_from_cart to delete a line.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"line_id": {
				Type:     schema.String,
				Desc:     "Cart line ID from view_cart results",
				Required: true,
			},
			"quantity": {
				Type:     schema.Integer,
				Desc:     "New quantity, between 1 and 999",
				Required: true,
			},
		}),
	}, nil
}

func (t *updateCartItemTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var args updateCartItemArgs
	if err := parseArgs(argumentsInJSON, &args); err != nil {
		t.tc.record("update_cart_item", argumentsInJSON, "", err)
		return toolError(err.Error()), nil
	}

	view, err := t.s.cart.UpdateQuantity(ctx, t.tc.userID, args.LineID, args.Quantity)
	if err != nil {
		t.tc.record("update_cart_item", argumentsInJSON, "", err)
		return toolError(err.Error()), nil
	}
	t.tc.setCart(view)

	result := toolResult(map[string]interface{}{"cart": view})
	t.tc.record("update_cart_item", argumentsInJSON, result, nil)
	return result, nil
}

// ========== remove_from_cart ==========

type removeFromCartTool struct {
	s  *Service
	tc *turnContext
}

type removeFromCartArgs struct {
	LineID string `json:"line_id"`
}

func (t *removeFromCartTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: "remove_from_cart",
		Desc: "Remove a line from the user's cart.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"line_id": {
				Type:     schema.String,
				Desc:     "Cart line ID from view_cart results",
				Required: true,
			},
		}),
	}, nil
}

func (t *removeFromCartTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var args removeFromCartArgs
	if err := parseArgs(argumentsInJSON, &args); err != nil {
		t.tc.record("remove_from_cart", argumentsInJSON, "", err)
		return toolError(err.Error()), nil
	}

	view, err := t.s.cart.RemoveItem(ctx, t.tc.userID, args.LineID)
	if err != nil {
		t.tc.record("remove_from_cart", argumentsInJSON, "", err)
		return toolError(err.Error()), nil
	}
	t.tc.setCart(view)

	result := toolResult(map[string]interface{}{"cart": view})
	t.tc.record("remove_from_cart", argumentsInJSON, result, nil)
	return result, nil
}

// ========== view_cart ==========

type viewCartTool struct {
	s  *Service
	tc *turnContext
}

func (t *viewCartTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name:        "view_cart",
		Desc:        "Show the current contents of the user's cart.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
	}, nil
}

func (t *viewCartTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	view, err := t.s.cart.Get(ctx, t.tc.userID)
	if err != nil {
		t.tc.record("view_cart", argumentsInJSON, "", err)
		return toolError(err.Error()), nil
	}
	t.tc.setCart(view)

	result := toolResult(map[string]interface{}{"cart": view})
	t.tc.record("view_cart", argumentsInJSON, result, nil)
	return result, nil
}

// ========== analyze_cart ==========

type analyzeCartTool struct {
	s  *Service
	tc *turnContext
}

func (t *analyzeCartTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name:        "analyze_cart",
		Desc:        "Summarize the cart: total quantity, distinct items and total cost.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{}),
	}, nil
}

func (t *analyzeCartTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	analysis, err := t.s.cart.Analyze(ctx, t.tc.userID)
	if err != nil {
		t.tc.record("analyze_cart", argumentsInJSON, "", err)
		return toolError(err.Error()), nil
	}

	result := toolResult(map[string]interface{}{"analysis": analysis})
	t.tc.record("analyze_cart", argumentsInJSON, result, nil)
	return result, nil
}

// ========== checkout ==========

type checkoutTool struct {
	s  *Service
	tc *turnContext
}

type checkoutArgs struct {
	Notes string `json:"notes"`
}

func (t *checkoutTool) Info(ctx context.Context) (*schema.ToolInfo, error) {
	return &schema.ToolInfo{
		Name: "checkout",
		Desc: "Submit the cart as a purchase request. Only call after the user explicitly confirmed.",
		ParamsOneOf: schema.NewParamsOneOfByParams(map[string]*schema.ParameterInfo{
			"notes": {
				Type: schema.String,
				Desc: "Optional notes for the approver",
			},
		}),
	}, nil
}

func (t *checkoutTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	var args checkoutArgs
	if err := parseArgs(argumentsInJSON, &args); err != nil {
		t.tc.record("checkout", argumentsInJSON, "", err)
		return toolError(err.Error()), nil
	}

	req, err := t.s.checkout.Checkout(ctx, t.tc.userID, args.Notes, model.PurchaseSourceAgent)
	if err != nil {
		t.tc.record("checkout", argumentsInJSON, "", err)
		return toolError(err.Error()), nil
	}
	t.tc.setConfirmation(req)

	result := toolResult(map[string]interface{}{
		"submitted": true,
		"number":    req.Number,
		"total":     req.Total,
		"items":     len(req.Items),
	})
	t.tc.record("checkout", argumentsInJSON, result, nil)
	return result, nil
}
