package domain

import "time"

// Review is a post-completion rating of the counterparty on a deal.
// One review per reviewer per deal.
type Review struct {
	ReviewID   string    `json:"reviewID"` // Primary Key (UUID)
	DealID     string    `json:"dealID"`
	ReviewerID string    `json:"reviewerID"`
	RevieweeID string    `json:"revieweeID"`
	Rating     int       `json:"rating"` // 1..5
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"createdAt"`
}
