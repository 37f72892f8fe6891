package models

import (
	"time"

	"gorm.io/gorm"
)

// Message represents a message in an appointment conversation between the
// customer and the shop.
type Message struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	AppointmentID uint           `gorm:"not null;index" json:"appointment_id"` // foreign key to appointments table
	Appointment   Appointment    `gorm:"foreignKey:AppointmentID" json:"-"`    // don't include full appointment in JSON
	SenderID      uint           `gorm:"not null;index" json:"sender_id"`      // foreign key to profiles table
	Sender        Profile        `gorm:"foreignKey:SenderID" json:"sender"`
	Text          string         `gorm:"type:text;not null" json:"text"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Message model
func (Message) TableName() string {
	return "messages"
}
