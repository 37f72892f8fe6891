package models

import (
	"time"

	"gorm.io/gorm"
)

// Roles a profile may hold.
const (
	RoleCustomer   = "customer"
	RoleTechnician = "technician"
	RoleAdmin      = "admin"
)

// Profile represents a user of the shop (customer, technician, or admin).
// It is linked 1:1 to an Auth0 identity via UserID (the 'sub' claim).
type Profile struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	UserID    string         `gorm:"uniqueIndex;not null" json:"user_id"` // Auth0 user ID (from 'sub' claim)
	FullName  string         `gorm:"not null" json:"full_name"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	Phone     *string        `json:"phone,omitempty"`
	Role      string         `gorm:"not null;default:'customer'" json:"role"` // customer, technician, or admin
	IsApproved bool          `gorm:"not null;default:false" json:"is_approved"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Profile model
func (Profile) TableName() string {
	return "profiles"
}

// IsValidRole reports whether role is one of the three roles the shop knows.
func IsValidRole(role string) bool {
	return role == RoleCustomer || role == RoleTechnician || role == RoleAdmin
}

// ApprovedAtCreation returns the is_approved value a freshly provisioned
// profile gets: technicians wait for an admin, everyone else is live at once.
func ApprovedAtCreation(role string) bool {
	return role != RoleTechnician
}
