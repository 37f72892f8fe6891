package repositories

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/torquepoint/autoshop-api/models"
)

// ErrNotFound is returned when a requested record does not exist. Callers
// must translate it to a 404, never to an authorization failure.
var ErrNotFound = errors.New("record not found")

// ProfileRepository is the system of record for user profiles.
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	GetByID(ctx context.Context, id uint) (*models.Profile, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) (*models.Profile, error)
	ListByRole(ctx context.Context, role string) ([]models.Profile, error)
}

// AppointmentRepository is the system of record for appointments. Reads
// return committed records with Customer/Technician projections loaded; no
// caller holds a mutable reference that tracks storage.
type AppointmentRepository interface {
	Create(ctx context.Context, appt *models.Appointment) error
	GetByID(ctx context.Context, id uint) (*models.Appointment, error)
	ListForCustomer(ctx context.Context, customerID uint) ([]models.Appointment, error)
	ListForTechnician(ctx context.Context, technicianID uint) ([]models.Appointment, error)
	List(ctx context.Context, status string) ([]models.Appointment, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) (*models.Appointment, error)
	CountAtSlot(ctx context.Context, date, timeOfDay string) (int64, error)
}

// TaskRepository is the system of record for technician work orders.
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	GetByID(ctx context.Context, id uint) (*models.Task, error)
	ListForTechnician(ctx context.Context, technicianID uint) ([]models.Task, error)
	ListForAppointment(ctx context.Context, appointmentID uint) ([]models.Task, error)
	Update(ctx context.Context, id uint, updates map[string]interface{}) (*models.Task, error)
	CompleteAllForAppointment(ctx context.Context, appointmentID uint) error
}

// MessageRepository stores the customer/shop conversation per appointment.
type MessageRepository interface {
	Create(ctx context.Context, msg *models.Message) error
	ListForAppointment(ctx context.Context, appointmentID uint) ([]models.Message, error)
}

// Repos bundles every repository over one shared connection or transaction.
type Repos struct {
	Profiles     ProfileRepository
	Appointments AppointmentRepository
	Tasks        TaskRepository
	Messages     MessageRepository
}

// UnitOfWork runs a function with all repositories bound to a single
// database transaction. Used wherever two writes must commit together,
// e.g. completing an appointment and cascading completion to its tasks.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}

// New builds the GORM-backed repository set over db.
func New(db *gorm.DB) Repos {
	return Repos{
		Profiles:     &GormProfileRepository{db: db},
		Appointments: &GormAppointmentRepository{db: db},
		Tasks:        &GormTaskRepository{db: db},
		Messages:     &GormMessageRepository{db: db},
	}
}

// GormUoW implements UnitOfWork over gorm's transaction support.
type GormUoW struct {
	db *gorm.DB
}

// NewUoW creates a unit of work over db.
func NewUoW(db *gorm.DB) *GormUoW {
	return &GormUoW{db: db}
}

// WithinTx runs fn with repositories bound to one transaction; any error
// rolls the whole unit back.
func (u *GormUoW) WithinTx(ctx context.Context, fn func(r Repos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

// IsUniqueViolation reports whether err is a unique-constraint failure.
// Works with both PostgreSQL and SQLite error strings.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}

// translate maps gorm's not-found sentinel onto the repository error.
func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
