package handler

import (
	"github.com/ashwinyue/procure-ai/internal/service"
)

// Handlers 处理器集合
type Handlers struct {
	Auth     *AuthHandler
	Item     *ItemHandler
	Cart     *CartHandler
	Checkout *CheckoutHandler
	Agent    *AgentHandler
	Settings *SettingsHandler
	System   *SystemHandler
}

// NewHandlers 创建所有处理器
func NewHandlers(svc *service.Services, dbPinger Pinger) *Handlers {
	return &Handlers{
		Auth:     NewAuthHandler(svc),
		Item:     NewItemHandler(svc),
		Cart:     NewCartHandler(svc),
		Checkout: NewCheckoutHandler(svc),
		Agent:    NewAgentHandler(svc),
		Settings: NewSettingsHandler(svc),
		System:   NewSystemHandler(svc, dbPinger),
	}
}
