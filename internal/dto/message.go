package dto

import (
	"time"

	"github.com/Vinay1727/labour-backend/internal/core/domain"
)

// --- Chat DTOs ---

// SendMessageRequest defines data for sending a chat message on a deal.
type SendMessageRequest struct {
	Body string `json:"body" binding:"required"`
}

// ListMessagesParams holds the polling cursor. Clients pass the timestamp of
// the last snapshot they hold; the server returns everything after it.
type ListMessagesParams struct {
	Since *time.Time `form:"since"`
}

// MessageResponse defines data returned for a chat message.
type MessageResponse struct {
	MessageID string    `json:"messageID"`
	DealID    string    `json:"dealID"`
	SenderID  string    `json:"senderID"`
	Body      string    `json:"body"`
	SentAt    time.Time `json:"sentAt"`
}

// ToMessageResponse converts domain.Message to DTO.
func ToMessageResponse(m *domain.Message) MessageResponse {
	return MessageResponse{
		MessageID: m.MessageID,
		DealID:    m.DealID,
		SenderID:  m.SenderID,
		Body:      m.Body,
		SentAt:    m.SentAt,
	}
}

// ListMessagesResponse wraps a conversation snapshot.
type ListMessagesResponse struct {
	Messages []MessageResponse `json:"messages"`
}

// ToListMessagesResponse converts a slice of domain.Message to DTO.
func ToListMessagesResponse(messages []domain.Message) ListMessagesResponse {
	list := make([]MessageResponse, len(messages))
	for i, m := range messages {
		list[i] = ToMessageResponse(&m)
	}
	return ListMessagesResponse{Messages: list}
}
