package dto

import (
	"time"

	"github.com/Vinay1727/labour-backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// --- Job DTOs ---

// SkillSlotRequest defines one required-worker category on a new posting.
type SkillSlotRequest struct {
	SkillName     string `json:"skillName" binding:"required"`
	RequiredCount int    `json:"requiredCount" binding:"required,min=1"`
}

// CreateJobRequest defines data for creating a job posting.
type CreateJobRequest struct {
	WorkType    string             `json:"workType" binding:"required"`
	Description string             `json:"description"`
	Location    string             `json:"location" binding:"required"`
	WorkDate    time.Time          `json:"workDate" binding:"required"`
	DailyWage   decimal.Decimal    `json:"dailyWage" binding:"required"`
	Skills      []SkillSlotRequest `json:"skills" binding:"required,min=1,dive"`
}

// ListJobsParams holds filters for browsing postings.
type ListJobsParams struct {
	WorkType *string `form:"workType"`
	Location *string `form:"location"`
	Limit    int     `form:"limit"`
	Offset   int     `form:"offset"`
}

// SkillSlotResponse defines one skill slot with its fill state.
type SkillSlotResponse struct {
	SkillName     string `json:"skillName"`
	RequiredCount int    `json:"requiredCount"`
	FilledCount   int    `json:"filledCount"`
}

// JobResponse defines data returned for a job posting.
type JobResponse struct {
	JobID        string              `json:"jobID"`
	ContractorID string              `json:"contractorID"`
	WorkType     string              `json:"workType"`
	Description  string              `json:"description"`
	Location     string              `json:"location"`
	WorkDate     time.Time           `json:"workDate"`
	DailyWage    decimal.Decimal     `json:"dailyWage"`
	Skills       []SkillSlotResponse `json:"skills"`
	IsActive     bool                `json:"isActive"`
	CreatedAt    time.Time           `json:"createdAt"`
}

// ToJobResponse converts domain.Job to DTO.
func ToJobResponse(j *domain.Job) JobResponse {
	skills := make([]SkillSlotResponse, len(j.Skills))
	for i, s := range j.Skills {
		skills[i] = SkillSlotResponse{
			SkillName:     s.SkillName,
			RequiredCount: s.RequiredCount,
			FilledCount:   s.FilledCount,
		}
	}
	return JobResponse{
		JobID:        j.JobID,
		ContractorID: j.ContractorID,
		WorkType:     j.WorkType,
		Description:  j.Description,
		Location:     j.Location,
		WorkDate:     j.WorkDate,
		DailyWage:    j.DailyWage,
		Skills:       skills,
		IsActive:     j.IsActive,
		CreatedAt:    j.CreatedAt,
	}
}

// ListJobsResponse wraps a list of postings.
type ListJobsResponse struct {
	Jobs []JobResponse `json:"jobs"`
}

// ToListJobsResponse converts a slice of domain.Job to DTO.
func ToListJobsResponse(jobs []domain.Job) ListJobsResponse {
	list := make([]JobResponse, len(jobs))
	for i, j := range jobs {
		list[i] = ToJobResponse(&j)
	}
	return ListJobsResponse{Jobs: list}
}
