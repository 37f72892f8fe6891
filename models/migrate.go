package models

import (
	"gorm.io/gorm"
)

// Migrate runs schema migration for every model, then creates the partial
// unique index guarding confirmed booking slots: two approved appointments
// may never share a (date, time) pair. Pending appointments are exempt so
// that review-mode bookings land unchecked and an admin untangles the
// schedule; their slots stay advisory-unique at the application layer.
// Rejected and completed appointments keep their historical slot. The index
// is the last-resort detector behind the availability check; writes that
// confirm a slot handle a violation instead of surfacing it raw.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Profile{}, &Appointment{}, &Task{}, &Message{}); err != nil {
		return err
	}
	return db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_live_slot
		 ON appointments (appointment_date, appointment_time)
		 WHERE status = 'approved' AND deleted_at IS NULL`,
	).Error
}
