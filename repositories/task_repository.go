package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/torquepoint/autoshop-api/models"
)

// GormTaskRepository implements TaskRepository over GORM.
type GormTaskRepository struct {
	db *gorm.DB
}

func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *GormTaskRepository) GetByID(ctx context.Context, id uint) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).Preload("Technician").First(&task, id).Error; err != nil {
		return nil, translate(err)
	}
	return &task, nil
}

func (r *GormTaskRepository) ListForTechnician(ctx context.Context, technicianID uint) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Preload("Technician").
		Where("technician_id = ?", technicianID).
		Order("created_at").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *GormTaskRepository) ListForAppointment(ctx context.Context, appointmentID uint) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Preload("Technician").
		Where("appointment_id = ?", appointmentID).
		Order("created_at").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

// Update applies updates and returns the committed record.
func (r *GormTaskRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (*models.Task, error) {
	if err := r.db.WithContext(ctx).Model(&models.Task{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, translate(err)
	}
	return r.GetByID(ctx, id)
}

// CompleteAllForAppointment transitions every task on the appointment to
// completed. Run inside the same transaction as the appointment's own status
// write so the cascade is atomic.
func (r *GormTaskRepository) CompleteAllForAppointment(ctx context.Context, appointmentID uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("appointment_id = ?", appointmentID).
		Update("status", models.TaskCompleted).Error
}
