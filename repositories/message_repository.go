package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/torquepoint/autoshop-api/models"
)

// GormMessageRepository implements MessageRepository over GORM.
type GormMessageRepository struct {
	db *gorm.DB
}

func (r *GormMessageRepository) Create(ctx context.Context, msg *models.Message) error {
	if err := r.db.WithContext(ctx).Create(msg).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Preload("Sender").First(msg, msg.ID).Error
}

func (r *GormMessageRepository) ListForAppointment(ctx context.Context, appointmentID uint) ([]models.Message, error) {
	var messages []models.Message
	err := r.db.WithContext(ctx).
		Preload("Sender").
		Where("appointment_id = ?", appointmentID).
		Order("created_at").
		Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
