package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Vinay1727/labour-backend/internal/apperrors"
	"github.com/Vinay1727/labour-backend/internal/core/domain"
	portsrepo "github.com/Vinay1727/labour-backend/internal/core/ports/repositories"
	portssvc "github.com/Vinay1727/labour-backend/internal/core/ports/services"
	"github.com/Vinay1727/labour-backend/internal/dto"
	"github.com/Vinay1727/labour-backend/internal/middleware"
)

// chatService implements the ChatSvcFacade interface. Conversations are
// scoped to a deal and visible only to its two participants.
type chatService struct {
	messageRepo portsrepo.MessageRepository
	dealRepo    portsrepo.DealRepository
}

// NewChatService creates a new ChatService.
func NewChatService(messageRepo portsrepo.MessageRepository, dealRepo portsrepo.DealRepository) portssvc.ChatSvcFacade {
	return &chatService{
		messageRepo: messageRepo,
		dealRepo:    dealRepo,
	}
}

// Ensure chatService implements the portssvc.ChatSvcFacade interface
var _ portssvc.ChatSvcFacade = (*chatService)(nil)

// SendMessage appends a message to a deal's conversation.
func (s *chatService) SendMessage(ctx context.Context, dealID string, actor domain.Actor, req dto.SendMessageRequest) (*domain.Message, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	deal, err := s.dealRepo.FindDealByID(ctx, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to find deal %s: %w", dealID, err)
	}
	if !deal.IsParticipant(actor.UserID) {
		logger.Warn("Chat message refused", slog.String("deal_id", dealID))
		return nil, fmt.Errorf("%w: user is not a participant of deal %s", apperrors.ErrForbidden, dealID)
	}
	if deal.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: deal %s is %s, conversation is closed", apperrors.ErrValidation, dealID, deal.Status)
	}

	message := domain.Message{
		MessageID: uuid.NewString(),
		DealID:    deal.DealID,
		SenderID:  actor.UserID,
		Body:      req.Body,
		SentAt:    time.Now().UTC(),
	}

	if err := s.messageRepo.SaveMessage(ctx, message); err != nil {
		logger.Error("Failed to save message", slog.String("error", err.Error()), slog.String("deal_id", dealID))
		return nil, fmt.Errorf("failed to save message: %w", err)
	}

	return &message, nil
}

// ListMessages returns the conversation snapshot for polling clients.
func (s *chatService) ListMessages(ctx context.Context, dealID string, requestingUserID string, params dto.ListMessagesParams) (*dto.ListMessagesResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	deal, err := s.dealRepo.FindDealByID(ctx, dealID)
	if err != nil {
		return nil, fmt.Errorf("failed to find deal %s: %w", dealID, err)
	}
	if !deal.IsParticipant(requestingUserID) {
		return nil, apperrors.ErrNotFound // Obscure existence
	}

	messages, err := s.messageRepo.ListMessagesByDeal(ctx, dealID, params.Since)
	if err != nil {
		logger.Error("Failed to list messages", slog.String("error", err.Error()), slog.String("deal_id", dealID))
		return nil, fmt.Errorf("failed to retrieve messages: %w", err)
	}

	resp := dto.ToListMessagesResponse(messages)
	return &resp, nil
}
