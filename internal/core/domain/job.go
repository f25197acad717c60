package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SkillSlot is one named required-worker category within a job posting,
// with its own fill capacity.
type SkillSlot struct {
	SkillName     string `json:"skillName"`
	RequiredCount int    `json:"requiredCount"`
	FilledCount   int    `json:"filledCount"`
}

// HasCapacity reports whether another labourer can still fill this slot.
func (s SkillSlot) HasCapacity() bool {
	return s.FilledCount < s.RequiredCount
}

// Job represents a contractor's work posting that labour users apply to.
type Job struct {
	JobID        string          `json:"jobID"` // Primary Key (UUID)
	ContractorID string          `json:"contractorID"`
	WorkType     string          `json:"workType"`
	Description  string          `json:"description"`
	Location     string          `json:"location"`
	WorkDate     time.Time       `json:"workDate"` // Day the work is scheduled for
	DailyWage    decimal.Decimal `json:"dailyWage"`
	Skills       []SkillSlot     `json:"skills"`
	IsActive     bool            `json:"isActive"`
	AuditFields
}

// SkillByName returns the slot for the named skill, if the job defines it.
func (j *Job) SkillByName(name string) (SkillSlot, bool) {
	for _, s := range j.Skills {
		if s.SkillName == name {
			return s, true
		}
	}
	return SkillSlot{}, false
}
