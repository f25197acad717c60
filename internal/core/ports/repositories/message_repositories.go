package repositories

import (
	"context"
	"time"

	"github.com/Vinay1727/labour-backend/internal/core/domain"
)

// MessageRepository defines persistence operations for per-deal chat messages.
type MessageRepository interface {
	// SaveMessage appends a message to a deal's conversation.
	SaveMessage(ctx context.Context, message domain.Message) error

	// ListMessagesByDeal retrieves a deal's messages in send order. When
	// since is non-nil only messages after that instant are returned, which
	// is what the polling client asks for.
	ListMessagesByDeal(ctx context.Context, dealID string, since *time.Time) ([]domain.Message, error)
}
