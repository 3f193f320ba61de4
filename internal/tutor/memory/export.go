package memory

import (
	"context"
	"time"

	"github.com/ai-english-tutor/server/internal/tutor/model"
	"github.com/ai-english-tutor/server/internal/tutor/storage"
	logx "github.com/ai-english-tutor/server/pkg/logger"
)

// Export is the backup document written by Export and read by Import.
type Export struct {
	Memory              *model.UserMemory         `json:"memory"`
	ConversationHistory []model.ConversationEntry `json:"conversationHistory"`
	ExportDate          time.Time                 `json:"exportDate"`
}

func (s *Store) Export(ctx context.Context) (*Export, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	history, err := s.loadHistory(ctx)
	if err != nil {
		return nil, err
	}
	return &Export{Memory: m, ConversationHistory: history, ExportDate: s.now()}, nil
}

// Import replaces whichever parts are present in data.
func (s *Store) Import(ctx context.Context, data *Export) error {
	if data == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if data.Memory != nil {
		normalize(data.Memory)
		if err := s.save(ctx, data.Memory); err != nil {
			return err
		}
	}
	if data.ConversationHistory != nil {
		if err := s.saveHistory(ctx, data.ConversationHistory); err != nil {
			return err
		}
	}
	logx.Info().Bool("memory", data.Memory != nil).Int("history", len(data.ConversationHistory)).Msg("user memory imported")
	return nil
}

// Clear drops the memory and conversation log and starts from defaults.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Remove(ctx, storage.KeyUserMemory); err != nil {
		return err
	}
	if err := s.kv.Remove(ctx, storage.KeyConversationHistory); err != nil {
		return err
	}
	_, err := s.load(ctx)
	return err
}
