package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/torquepoint/autoshop-api/models"
)

// GormAppointmentRepository implements AppointmentRepository over GORM.
type GormAppointmentRepository struct {
	db *gorm.DB
}

func (r *GormAppointmentRepository) Create(ctx context.Context, appt *models.Appointment) error {
	return r.db.WithContext(ctx).Create(appt).Error
}

// GetByID loads an appointment with its customer and technician projections.
func (r *GormAppointmentRepository) GetByID(ctx context.Context, id uint) (*models.Appointment, error) {
	var appt models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Technician").
		First(&appt, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &appt, nil
}

func (r *GormAppointmentRepository) ListForCustomer(ctx context.Context, customerID uint) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Technician").
		Where("customer_id = ?", customerID).
		Order("appointment_date, appointment_time").
		Find(&appts).Error
	if err != nil {
		return nil, err
	}
	return appts, nil
}

func (r *GormAppointmentRepository) ListForTechnician(ctx context.Context, technicianID uint) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Technician").
		Where("technician_id = ?", technicianID).
		Order("appointment_date, appointment_time").
		Find(&appts).Error
	if err != nil {
		return nil, err
	}
	return appts, nil
}

// List returns every appointment, optionally filtered by status.
func (r *GormAppointmentRepository) List(ctx context.Context, status string) ([]models.Appointment, error) {
	query := r.db.WithContext(ctx).
		Preload("Customer").
		Preload("Technician").
		Order("appointment_date, appointment_time")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	var appts []models.Appointment
	if err := query.Find(&appts).Error; err != nil {
		return nil, err
	}
	return appts, nil
}

// Update applies updates and returns the committed record.
func (r *GormAppointmentRepository) Update(ctx context.Context, id uint, updates map[string]interface{}) (*models.Appointment, error) {
	if err := r.db.WithContext(ctx).Model(&models.Appointment{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		return nil, translate(err)
	}
	return r.GetByID(ctx, id)
}

// CountAtSlot counts appointments occupying the exact (date, time) pair.
// Only pending and approved appointments block a slot.
func (r *GormAppointmentRepository) CountAtSlot(ctx context.Context, date, timeOfDay string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("appointment_date = ? AND appointment_time = ? AND status IN ?",
			date, timeOfDay, []string{models.StatusPending, models.StatusApproved}).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
