package models

import (
	"time"

	"gorm.io/gorm"
)

// Appointment statuses.
const (
	StatusPending    = "pending"
	StatusApproved   = "approved"
	StatusRejected   = "rejected"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Field length limits enforced before any persistence call.
const (
	MaxFaultDescriptionLen  = 200
	MaxReasonDescriptionLen = 500
)

// appointmentTransitions is the directed graph of legal status changes.
// rejected is reachable from pending only; completed from approved or
// in_progress (an admin may close out without the in-progress step).
var appointmentTransitions = map[string][]string{
	StatusPending:    {StatusApproved, StatusRejected},
	StatusApproved:   {StatusInProgress, StatusCompleted},
	StatusInProgress: {StatusCompleted},
	StatusRejected:   {},
	StatusCompleted:  {},
}

// Appointment represents a customer's service booking.
//
// The (appointment_date, appointment_time) pair carries a partial unique
// index over non-terminal statuses: rejected and completed appointments may
// share a slot with history, but two live bookings may not. The index is a
// last-resort detector; the scheduler checks availability first.
type Appointment struct {
	ID                     uint     `gorm:"primaryKey" json:"id"`
	CustomerID             uint     `gorm:"not null;index" json:"customer_id"` // foreign key to profiles table
	Customer               Profile  `gorm:"foreignKey:CustomerID" json:"customer"`
	VehicleMake            string   `gorm:"not null" json:"vehicle_make"`
	VehicleModel           string   `gorm:"not null" json:"vehicle_model"`
	VehicleYear            int      `gorm:"not null" json:"vehicle_year"`
	FaultDescription       string   `gorm:"size:200;not null" json:"fault_description"`
	ReasonDescription      string   `gorm:"size:500;not null" json:"reason_description"`
	AppointmentDate        string   `gorm:"size:10;not null;index" json:"appointment_date"` // YYYY-MM-DD
	AppointmentTime        string   `gorm:"size:5;not null" json:"appointment_time"`        // HH:MM, 24-hour
	Status                 string   `gorm:"not null;default:'pending';index" json:"status"`
	TechnicianID           *uint    `gorm:"index" json:"technician_id,omitempty"` // nullable, set when an admin assigns
	Technician             *Profile `gorm:"foreignKey:TechnicianID" json:"technician,omitempty"`
	AdminNotes             *string  `json:"admin_notes,omitempty"`
	RejectionReason        *string  `json:"rejection_reason,omitempty"`
	EstimatedDurationHours *float64 `json:"estimated_duration_hours,omitempty"`
	PhotoS3Key             *string  `json:"photo_s3_key,omitempty"`
	PhotoURL               *string  `gorm:"-" json:"photo_url,omitempty"` // computed field, presigned URL for the vehicle photo
	Tasks                  []Task   `gorm:"foreignKey:AppointmentID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt              time.Time      `json:"created_at"`
	UpdatedAt              time.Time      `json:"updated_at"`
	DeletedAt              gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Appointment model
func (Appointment) TableName() string {
	return "appointments"
}

// IsValidStatus reports whether status is a known appointment status.
func IsValidStatus(status string) bool {
	_, ok := appointmentTransitions[status]
	return ok
}

// CanTransition reports whether an appointment may move from one status to
// another along the lifecycle graph.
func CanTransition(from, to string) bool {
	for _, next := range appointmentTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// BlocksSlot reports whether an appointment in this status occupies its
// (date, time) slot. Rejected and completed appointments free the slot.
func BlocksSlot(status string) bool {
	return status == StatusPending || status == StatusApproved
}
