package dto

import (
	"time"

	"github.com/Vinay1727/labour-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// --- Deal DTOs ---

// ApplyToJobRequest defines data for a labourer applying to a job posting.
type ApplyToJobRequest struct {
	AppliedSkill string `json:"appliedSkill"`
}

// ApproveApplicationRequest defines data for a contractor accepting an
// application. SelectedSkill may be omitted for single-skill jobs when
// inference is enabled.
type ApproveApplicationRequest struct {
	SelectedSkill string `json:"selectedSkill"`
}

// RejectCompletionRequest defines data for a contractor rejecting a
// completion request. At least one reason code is required.
type RejectCompletionRequest struct {
	ReasonCodes []string `json:"reasonCodes" binding:"required,min=1,dive,required"`
	Note        *string  `json:"note,omitempty"`
}

// ListDealsParams holds filters for listing a user's deals.
type ListDealsParams struct {
	Status *domain.DealStatus `form:"status"`
}

// RejectionEventResponse defines one rejection history entry.
type RejectionEventResponse struct {
	RejectionID string    `json:"rejectionID"`
	ReasonCodes []string  `json:"reasonCodes"`
	Note        *string   `json:"note,omitempty"`
	RejectedAt  time.Time `json:"rejectedAt"`
}

// DealResponse defines data returned for a deal.
type DealResponse struct {
	DealID                string                   `json:"dealID"`
	JobID                 string                   `json:"jobID"`
	Status                domain.DealStatus        `json:"status"`
	ContractorID          string                   `json:"contractorID"`
	LabourID              string                   `json:"labourID"`
	WorkType              string                   `json:"workType"`
	Location              string                   `json:"location"`
	WorkDate              time.Time                `json:"workDate"`
	Payment               decimal.Decimal          `json:"payment"`
	AppliedSkill          string                   `json:"appliedSkill"`
	LabourFinishRequested bool                     `json:"labourFinishRequested"`
	CompletionStatus      *domain.CompletionStatus `json:"completionStatus,omitempty"`
	RejectionHistory      []RejectionEventResponse `json:"rejectionHistory,omitempty"`
	IsReviewed            bool                     `json:"isReviewed"`
	CompletedAt           *time.Time               `json:"completedAt,omitempty"`
	CreatedAt             time.Time                `json:"createdAt"`
	LastUpdatedAt         time.Time                `json:"lastUpdatedAt"`
}

// ToDealResponse converts domain.Deal to DTO.
func ToDealResponse(d *domain.Deal) DealResponse {
	history := make([]RejectionEventResponse, len(d.RejectionHistory))
	for i, ev := range d.RejectionHistory {
		history[i] = RejectionEventResponse{
			RejectionID: ev.RejectionID,
			ReasonCodes: ev.ReasonCodes,
			Note:        ev.Note,
			RejectedAt:  ev.RejectedAt,
		}
	}
	if len(history) == 0 {
		history = nil
	}
	return DealResponse{
		DealID:                d.DealID,
		JobID:                 d.JobID,
		Status:                d.Status,
		ContractorID:          d.ContractorID,
		LabourID:              d.LabourID,
		WorkType:              d.WorkType,
		Location:              d.Location,
		WorkDate:              d.WorkDate,
		Payment:               d.Payment,
		AppliedSkill:          d.AppliedSkill,
		LabourFinishRequested: d.LabourFinishRequested,
		CompletionStatus:      d.CompletionStatus,
		RejectionHistory:      history,
		IsReviewed:            d.IsReviewed,
		CompletedAt:           d.CompletedAt,
		CreatedAt:             d.CreatedAt,
		LastUpdatedAt:         d.LastUpdatedAt,
	}
}

// ListDealsResponse wraps a list of deals.
type ListDealsResponse struct {
	Deals []DealResponse `json:"deals"`
}

// ToListDealsResponse converts a slice of domain.Deal to DTO.
func ToListDealsResponse(deals []domain.Deal) ListDealsResponse {
	list := make([]DealResponse, len(deals))
	for i, d := range deals {
		list[i] = ToDealResponse(&d)
	}
	return ListDealsResponse{Deals: list}
}
