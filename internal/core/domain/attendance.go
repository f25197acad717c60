package domain

import "time"

// AttendanceStatus tracks the per-record approval lifecycle. Resolution is
// permanent: an approved or rejected record never changes again.
type AttendanceStatus string

const (
	AttendancePending  AttendanceStatus = "pending"
	AttendanceApproved AttendanceStatus = "approved"
	AttendanceRejected AttendanceStatus = "rejected"
)

// IsResolved reports whether the record has left the pending state.
func (s AttendanceStatus) IsResolved() bool {
	return s == AttendanceApproved || s == AttendanceRejected
}

// GeoPoint is the GPS coordinate captured with an attendance proof.
type GeoPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   *string `json:"address,omitempty"` // Optional reverse-geocoded address
}

// AttendanceRecord is one GPS+photo attendance proof submitted by a labourer
// for a deal. Records are owned by exactly one deal and are only ever
// appended, never deleted.
type AttendanceRecord struct {
	AttendanceID string           `json:"attendanceID"` // Primary Key (UUID)
	DealID       string           `json:"dealID"`
	Date         time.Time        `json:"date"`      // Calendar day the proof covers
	Timestamp    time.Time        `json:"timestamp"` // Submission instant
	Location     GeoPoint         `json:"location"`
	ImageURL     string           `json:"imageURL"`
	Status       AttendanceStatus `json:"status"`
	ResolvedBy   *string          `json:"resolvedBy,omitempty"` // Contractor UserID
	ResolvedAt   *time.Time       `json:"resolvedAt,omitempty"`
}
