package ports

import (
	"context"

	"github.com/TearGosling/augmenting-conv-data/internal/core/domain"
)

// ConversationCleaner defines the interface for cleaning a whole conversation.
type ConversationCleaner interface {
	Clean(ctx context.Context, conversation []domain.Turn, characterName string) domain.Result
}
