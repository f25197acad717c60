package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Vinay1727/labour-backend/internal/apperrors"
	"github.com/Vinay1727/labour-backend/internal/core/domain"
	portsrepo "github.com/Vinay1727/labour-backend/internal/core/ports/repositories"
)

type PgxMessageRepository struct {
	BaseRepository
}

// newPgxMessageRepository creates a new repository for per-deal chat messages.
func newPgxMessageRepository(pool *pgxpool.Pool) portsrepo.MessageRepository {
	return &PgxMessageRepository{BaseRepository{Pool: pool}}
}

// Ensure PgxMessageRepository implements portsrepo.MessageRepository
var _ portsrepo.MessageRepository = (*PgxMessageRepository)(nil)

// SaveMessage appends a message to a deal's conversation.
func (r *PgxMessageRepository) SaveMessage(ctx context.Context, message domain.Message) error {
	query := `
		INSERT INTO messages (message_id, deal_id, sender_id, body, sent_at)
		VALUES ($1, $2, $3, $4, $5);
	`
	_, err := r.Pool.Exec(ctx, query,
		message.MessageID,
		message.DealID,
		message.SenderID,
		message.Body,
		message.SentAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" { // FK violation
			return fmt.Errorf("%w: deal %s does not exist", apperrors.ErrValidation, message.DealID)
		}
		return fmt.Errorf("failed to save message %s: %w", message.MessageID, err)
	}
	return nil
}

// ListMessagesByDeal retrieves a deal's messages in send order. A non-nil
// since narrows the result to messages after that instant.
func (r *PgxMessageRepository) ListMessagesByDeal(ctx context.Context, dealID string, since *time.Time) ([]domain.Message, error) {
	query := `SELECT message_id, deal_id, sender_id, body, sent_at FROM messages WHERE deal_id = $1`
	args := []interface{}{dealID}
	if since != nil {
		query += ` AND sent_at > $2`
		args = append(args, *since)
	}
	query += ` ORDER BY sent_at ASC;`

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages for deal %s: %w", dealID, err)
	}

	messages, err := pgx.CollectRows(rows, pgx.RowToStructByName[domain.Message])
	if err != nil {
		return nil, fmt.Errorf("failed to collect messages for deal %s: %w", dealID, err)
	}
	return messages, nil
}
