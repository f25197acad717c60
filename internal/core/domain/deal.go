package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DealStatus indicates where a deal is in its lifecycle.
type DealStatus string

const (
	DealOpen                DealStatus = "open"
	DealApplied             DealStatus = "applied"
	DealAssigned            DealStatus = "assigned"
	DealActive              DealStatus = "active"
	DealCompletionRequested DealStatus = "completion_requested"
	DealFinished            DealStatus = "finished"
	DealCompleted           DealStatus = "completed"
	DealRejected            DealStatus = "rejected"
	DealCancelled           DealStatus = "cancelled"
)

// IsTerminal reports whether no further status transitions are permitted.
func (s DealStatus) IsTerminal() bool {
	return s == DealCompleted || s == DealRejected || s == DealCancelled
}

// CompletionStatus tracks the contractor's decision on a completion request.
type CompletionStatus string

const (
	CompletionRequested CompletionStatus = "requested"
	CompletionApproved  CompletionStatus = "approved"
	CompletionRejected  CompletionStatus = "rejected"
)

// Actor is the explicit identity+role pair every mutating deal operation
// receives. It is never inferred from ambient state.
type Actor struct {
	UserID string
	Role   UserRole
}

// RejectionEvent is one entry in a deal's append-only rejection history.
// Events are immutable once appended.
type RejectionEvent struct {
	RejectionID string    `json:"rejectionID"`
	DealID      string    `json:"dealID"`
	ReasonCodes []string  `json:"reasonCodes"`
	Note        *string   `json:"note,omitempty"`
	RejectedBy  string    `json:"rejectedBy"` // Contractor UserID
	RejectedAt  time.Time `json:"rejectedAt"`
}

// Deal represents one contractor-labour work engagement tied to a single job
// posting. It is the aggregate root owning rejection history and attendance.
type Deal struct {
	DealID       string     `json:"dealID"` // Primary Key (UUID)
	JobID        string     `json:"jobID"`
	Status       DealStatus `json:"status"`
	ContractorID string     `json:"contractorID"`
	LabourID     string     `json:"labourID"`

	WorkType     string          `json:"workType"`
	Location     string          `json:"location"`
	WorkDate     time.Time       `json:"workDate"`
	Payment      decimal.Decimal `json:"payment"`
	AppliedSkill string          `json:"appliedSkill"`

	LabourFinishRequested bool              `json:"labourFinishRequested"`
	CompletionStatus      *CompletionStatus `json:"completionStatus,omitempty"`
	RejectionHistory      []RejectionEvent  `json:"rejectionHistory,omitempty"`
	IsReviewed            bool              `json:"isReviewed"`

	Attendance []AttendanceRecord `json:"attendance,omitempty"`

	CompletedAt *time.Time `json:"completedAt,omitempty"`
	// Version supports optimistic locking; concurrent writers on the same
	// deal serialize on it and the loser sees a stale-state conflict.
	Version int64 `json:"version"`
	AuditFields
}

// ParticipantID returns the user id of the deal participant holding the role.
func (d *Deal) ParticipantID(role UserRole) string {
	if role == RoleContractor {
		return d.ContractorID
	}
	return d.LabourID
}

// IsParticipant reports whether the user is one of the deal's two parties.
func (d *Deal) IsParticipant(userID string) bool {
	return userID != "" && (userID == d.ContractorID || userID == d.LabourID)
}
