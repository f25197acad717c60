package domain

import "time"

// Message is one chat message between the two participants of a deal.
// Clients poll for the latest snapshot and replace their local view wholesale.
type Message struct {
	MessageID string    `json:"messageID"` // Primary Key (UUID)
	DealID    string    `json:"dealID"`
	SenderID  string    `json:"senderID"`
	Body      string    `json:"body"`
	SentAt    time.Time `json:"sentAt"`
}
