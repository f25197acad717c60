package services

import (
	"context"

	"github.com/Vinay1727/labour-backend/internal/core/domain"
	"github.com/Vinay1727/labour-backend/internal/dto"
)

// ChatSvcFacade defines per-deal messaging between the two participants.
type ChatSvcFacade interface {
	// SendMessage appends a message to a deal's conversation.
	SendMessage(ctx context.Context, dealID string, actor domain.Actor, req dto.SendMessageRequest) (*domain.Message, error)

	// ListMessages returns the conversation snapshot for polling clients.
	ListMessages(ctx context.Context, dealID string, requestingUserID string, params dto.ListMessagesParams) (*dto.ListMessagesResponse, error)
}
