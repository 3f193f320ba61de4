package conversations

import (
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/ai-english-tutor/server/internal/tutor/model"
)

// MessagesManager assembles the provider message list for one turn.
type MessagesManager struct {
	maxHistory int
}

func NewMessagesManager(config model.GatewayConfig) *MessagesManager {
	return &MessagesManager{maxHistory: config.MaxHistory}
}

// BuildMessages returns [system, history..., user]. Empty entries and
// client-supplied system messages are dropped from history.
func (cm *MessagesManager) BuildMessages(systemPrompt string, history []model.ConversationMessage, message string) []*schema.Message {
	kept := make([]*schema.Message, 0, len(history))
	for _, m := range history {
		if strings.TrimSpace(m.Content) == "" || m.Role == model.RoleSystem {
			continue
		}
		kept = append(kept, m.ToSchema())
	}
	if cm.maxHistory > 0 {
		kept = trimTail(kept, cm.maxHistory)
	}

	messages := make([]*schema.Message, 0, len(kept)+2)
	messages = append(messages, schema.SystemMessage(systemPrompt))
	messages = append(messages, kept...)
	messages = append(messages, schema.UserMessage(message))
	return messages
}

// ====================== Helper function ======================
func trimTail(messages []*schema.Message, maxTurns int) []*schema.Message {
	if len(messages) <= maxTurns {
		return messages
	}
	source := messages[len(messages)-maxTurns:]
	result := make([]*schema.Message, len(source))
	copy(result, source)
	return result
}
