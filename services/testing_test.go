package services

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/torquepoint/autoshop-api/models"
	"github.com/torquepoint/autoshop-api/repositories"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := models.Migrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	return db
}

func newAppointmentService(db *gorm.DB, mode string) *AppointmentService {
	return NewAppointmentService(repositories.New(db), repositories.NewUoW(db), mode)
}

func newTaskService(db *gorm.DB) *TaskService {
	return NewTaskService(repositories.New(db), repositories.NewUoW(db))
}

func createCustomer(t *testing.T, db *gorm.DB, userID string) *models.Profile {
	t.Helper()
	profile := &models.Profile{
		UserID:     userID,
		FullName:   "Test Customer",
		Email:      userID + "@example.com",
		Role:       models.RoleCustomer,
		IsApproved: true,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("Failed to create customer: %v", err)
	}
	return profile
}

func createTechnician(t *testing.T, db *gorm.DB, userID string, approved bool) *models.Profile {
	t.Helper()
	profile := &models.Profile{
		UserID:     userID,
		FullName:   "Test Technician",
		Email:      userID + "@example.com",
		Role:       models.RoleTechnician,
		IsApproved: approved,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("Failed to create technician: %v", err)
	}
	return profile
}

func createAdmin(t *testing.T, db *gorm.DB, userID string) *models.Profile {
	t.Helper()
	profile := &models.Profile{
		UserID:     userID,
		FullName:   "Test Admin",
		Email:      userID + "@example.com",
		Role:       models.RoleAdmin,
		IsApproved: true,
	}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("Failed to create admin: %v", err)
	}
	return profile
}

func createAppointment(t *testing.T, db *gorm.DB, customerID uint, date, timeOfDay, status string) *models.Appointment {
	t.Helper()
	appt := &models.Appointment{
		CustomerID:        customerID,
		VehicleMake:       "Honda",
		VehicleModel:      "Civic",
		VehicleYear:       2020,
		FaultDescription:  "Check engine light",
		ReasonDescription: "Light came on two days ago and stays on",
		AppointmentDate:   date,
		AppointmentTime:   timeOfDay,
		Status:            status,
	}
	if err := db.Create(appt).Error; err != nil {
		t.Fatalf("Failed to create appointment: %v", err)
	}
	return appt
}

func bookingRequest(date, timeOfDay string) *BookingRequest {
	return &BookingRequest{
		Date:              date,
		Time:              timeOfDay,
		VehicleMake:       "Toyota",
		VehicleModel:      "Corolla",
		VehicleYear:       2021,
		FaultDescription:  "Rattling from the front left wheel",
		ReasonDescription: "Noise gets worse over 60 km/h, started after hitting a pothole",
	}
}
