package model

// 所有模型的统一导入点
// 用于 AutoMigrate
var AllModels = []interface{}{
	&User{},
	&AuthToken{},
	&Item{},
	&Cart{},
	&CartItem{},
	&PurchaseRequest{},
	&PurchaseItem{},
	&RequestCounter{},
	&AgentConversation{},
	&AgentMessage{},
	&AgentAction{},
	&TokenUsage{},
}
