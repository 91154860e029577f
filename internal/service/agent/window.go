package agent

import (
	"github.com/ashwinyue/procure-ai/internal/model"
)

// 提示词预算
// token 数按 1 token ≈ 4 字符粗估，超出预算从最旧的消息开始丢弃
const (
	maxHistoryMessages = 20
	historyTokenBudget = 2000
	totalTokenBudget   = 3000
	charsPerToken      = 4
	// 工具结果里的描述截断长度
	descriptionTruncateLen = 150
)

// estimateTokens 粗估文本的 token 数
func estimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + charsPerToken - 1) / charsPerToken
}

// windowHistory 按条数与 token 预算裁剪历史
// 保留末尾的消息，当前用户输入的 token 从总预算里先扣掉
func windowHistory(messages []*model.AgentMessage, currentInput string) []*model.AgentMessage {
	if len(messages) > maxHistoryMessages {
		messages = messages[len(messages)-maxHistoryMessages:]
	}

	budget := historyTokenBudget
	if remaining := totalTokenBudget - estimateTokens(currentInput); remaining < budget {
		budget = remaining
	}
	if budget <= 0 {
		return nil
	}

	// 从最新往回装，装不下就停
	used := 0
	start := len(messages)
	for i := len(messages) - 1; i >= 0; i-- {
		cost := estimateTokens(messages[i].Content)
		if used+cost > budget {
			break
		}
		used += cost
		start = i
	}

	return messages[start:]
}

// truncateRunes 按字符数截断，不在多字节字符中间断开
func truncateRunes(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max])
}

// truncateDescription 截断描述，避免工具结果撑爆提示词
func truncateDescription(text string) string {
	if len([]rune(text)) <= descriptionTruncateLen {
		return text
	}
	return truncateRunes(text, descriptionTruncateLen) + "..."
}
