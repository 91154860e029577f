package repository

import (
	"github.com/ashwinyue/procure-ai/internal/model"
	"github.com/ashwinyue/procure-ai/internal/service/types"
	"gorm.io/gorm"
)

// usageRepositoryImpl 用量记录数据访问
type usageRepositoryImpl struct {
	db *gorm.DB
}

// NewUsageRepository 创建用量仓库
func NewUsageRepository(db *gorm.DB) UsageRepository {
	return &usageRepositoryImpl{db: db}
}

// Create 追加用量记录
func (r *usageRepositoryImpl) Create(usage *model.TokenUsage) error {
	return r.db.Create(usage).Error
}

// SummaryByUserID 按用户聚合用量，并给出按模型的细分
func (r *usageRepositoryImpl) SummaryByUserID(userID string) (*types.UsageSummary, error) {
	var byModel []types.ModelUsage
	err := r.db.Model(&model.TokenUsage{}).
		Select(`model,
			COUNT(*) AS calls,
			COALESCE(SUM(prompt_tokens), 0) AS prompt_tokens,
			COALESCE(SUM(completion_tokens), 0) AS completion_tokens,
			COALESCE(SUM(total_tokens), 0) AS total_tokens,
			COALESCE(SUM(estimated_cost), 0) AS estimated_cost`).
		Where("user_id = ?", userID).
		Group("model").
		Order("total_tokens DESC").
		Scan(&byModel).Error
	if err != nil {
		return nil, err
	}

	summary := &types.UsageSummary{ByModel: byModel}
	for _, m := range byModel {
		summary.TotalCalls += m.Calls
		summary.PromptTokens += m.PromptTokens
		summary.CompletionTokens += m.CompletionTokens
		summary.TotalTokens += m.TotalTokens
		summary.EstimatedCost += m.EstimatedCost
	}
	return summary, nil
}
