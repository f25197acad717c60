package dto

import (
	"time"

	"github.com/Vinay1727/labour-backend/internal/core/domain"
)

// --- Attendance DTOs ---

// LocationPayload is the GPS capture sent with an attendance submission.
type LocationPayload struct {
	Latitude  float64 `json:"latitude" binding:"min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"min=-180,max=180"`
	Address   *string `json:"address,omitempty"`
}

// SubmitAttendanceRequest defines data for submitting an attendance proof.
// Location and image are both required; the two-step capture on the client
// is a hard precondition here, not a UI nicety.
type SubmitAttendanceRequest struct {
	Location *LocationPayload `json:"location"`
	ImageURL string           `json:"imageURL"`
}

// ResolveAttendanceRequest defines the contractor's decision on a record.
type ResolveAttendanceRequest struct {
	Decision domain.AttendanceStatus `json:"decision" binding:"required,oneof=approved rejected"`
}

// AttendanceResponse defines data returned for an attendance record.
type AttendanceResponse struct {
	AttendanceID string                  `json:"attendanceID"`
	DealID       string                  `json:"dealID"`
	Date         time.Time               `json:"date"`
	Timestamp    time.Time               `json:"timestamp"`
	Location     domain.GeoPoint         `json:"location"`
	ImageURL     string                  `json:"imageURL"`
	Status       domain.AttendanceStatus `json:"status"`
	ResolvedAt   *time.Time              `json:"resolvedAt,omitempty"`
}

// ToAttendanceResponse converts domain.AttendanceRecord to DTO.
func ToAttendanceResponse(r *domain.AttendanceRecord) AttendanceResponse {
	return AttendanceResponse{
		AttendanceID: r.AttendanceID,
		DealID:       r.DealID,
		Date:         r.Date,
		Timestamp:    r.Timestamp,
		Location:     r.Location,
		ImageURL:     r.ImageURL,
		Status:       r.Status,
		ResolvedAt:   r.ResolvedAt,
	}
}

// ListAttendanceResponse wraps a deal's attendance records.
type ListAttendanceResponse struct {
	Records []AttendanceResponse `json:"records"`
}

// ToListAttendanceResponse converts a slice of domain.AttendanceRecord to DTO.
func ToListAttendanceResponse(records []domain.AttendanceRecord) ListAttendanceResponse {
	list := make([]AttendanceResponse, len(records))
	for i, r := range records {
		list[i] = ToAttendanceResponse(&r)
	}
	return ListAttendanceResponse{Records: list}
}
