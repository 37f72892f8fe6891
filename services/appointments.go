package services

import (
	"context"
	"fmt"
	"time"

	"github.com/torquepoint/autoshop-api/config"
	"github.com/torquepoint/autoshop-api/models"
	"github.com/torquepoint/autoshop-api/repositories"
	"github.com/torquepoint/autoshop-api/utils"
)

// createRetries bounds the insert loop that absorbs unique-index collisions
// when two customers race for the same slot. Each retry re-runs the resolver
// against the freshly committed schedule.
const createRetries = 3

// BookingRequest carries a customer's validated booking input. Time is the
// human 12-hour form from the slot picker; it is normalized before storage.
type BookingRequest struct {
	Date              string
	Time              string
	VehicleMake       string
	VehicleModel      string
	VehicleYear       int
	FaultDescription  string
	ReasonDescription string
}

// ApprovalRequest carries an admin's approve action, optionally bundled with
// a technician assignment done atomically with the status change.
type ApprovalRequest struct {
	TechnicianID           *uint
	TaskDescription        string
	EstimatedDurationHours *float64
	AdminNotes             *string
}

// AppointmentService is the appointment lifecycle state machine.
type AppointmentService struct {
	repos     repositories.Repos
	uow       repositories.UnitOfWork
	scheduler *Scheduler
	mode      string
}

// NewAppointmentService wires the state machine over the repositories.
// mode is config.BookingModeAuto or config.BookingModeReview.
func NewAppointmentService(repos repositories.Repos, uow repositories.UnitOfWork, mode string) *AppointmentService {
	return &AppointmentService{
		repos:     repos,
		uow:       uow,
		scheduler: NewScheduler(repos.Appointments),
		mode:      mode,
	}
}

// validateBooking checks field constraints before any persistence call.
func validateBooking(req *BookingRequest) error {
	if req.VehicleMake == "" {
		return &ValidationError{Field: "vehicle_make", Message: "vehicle make is required"}
	}
	if req.VehicleModel == "" {
		return &ValidationError{Field: "vehicle_model", Message: "vehicle model is required"}
	}
	if req.VehicleYear < 1900 || req.VehicleYear > time.Now().Year()+1 {
		return &ValidationError{Field: "vehicle_year", Message: "vehicle year is out of range"}
	}
	if req.FaultDescription == "" {
		return &ValidationError{Field: "fault_description", Message: "fault description is required"}
	}
	if len(req.FaultDescription) > models.MaxFaultDescriptionLen {
		return &ValidationError{Field: "fault_description", Message: fmt.Sprintf("must be at most %d characters", models.MaxFaultDescriptionLen)}
	}
	if len(req.ReasonDescription) > models.MaxReasonDescriptionLen {
		return &ValidationError{Field: "reason_description", Message: fmt.Sprintf("must be at most %d characters", models.MaxReasonDescriptionLen)}
	}
	return nil
}

// Book creates an appointment for customer.
//
// In auto mode the requested slot runs through the resolver: success at the
// requested time creates the appointment approved; success after rescheduling
// also records the original request in admin notes; resolver exhaustion fails
// the booking outright and nothing is created. In review mode the appointment
// is created pending with no availability check and an admin sorts out the
// schedule.
func (s *AppointmentService) Book(ctx context.Context, customer *models.Profile, req *BookingRequest) (*models.Appointment, error) {
	if d := Authorize(customer, ActionCreateAppointment, Resource{}); !d.Allowed {
		return nil, &AuthorizationError{Reason: d.Reason}
	}
	if err := validateBooking(req); err != nil {
		return nil, err
	}

	date, err := utils.ValidateDate(req.Date)
	if err != nil {
		return nil, &ValidationError{Field: "date", Message: err.Error()}
	}
	requested, err := utils.NormalizeTime(req.Time)
	if err != nil {
		return nil, &ValidationError{Field: "time", Message: err.Error()}
	}
	if !utils.IsBookingSlot(requested) {
		return nil, &ValidationError{Field: "time", Message: "time is not one of the offered booking slots"}
	}

	appt := &models.Appointment{
		CustomerID:        customer.ID,
		VehicleMake:       req.VehicleMake,
		VehicleModel:      req.VehicleModel,
		VehicleYear:       req.VehicleYear,
		FaultDescription:  req.FaultDescription,
		ReasonDescription: req.ReasonDescription,
		AppointmentDate:   date,
	}

	if s.mode == config.BookingModeReview {
		appt.AppointmentTime = requested
		appt.Status = models.StatusPending
		if err := s.repos.Appointments.Create(ctx, appt); err != nil {
			return nil, fmt.Errorf("creating appointment: %w", err)
		}
		return s.repos.Appointments.GetByID(ctx, appt.ID)
	}

	// Auto mode: resolve a slot, insert, and on a unique-index collision
	// (someone else won the slot between check and insert) resolve again.
	for attempt := 0; attempt < createRetries; attempt++ {
		resolution, err := s.scheduler.Resolve(ctx, date, requested)
		if err != nil {
			return nil, err
		}

		appt.ID = 0
		appt.AppointmentTime = resolution.FinalTime
		appt.Status = models.StatusApproved
		appt.AdminNotes = nil
		if resolution.Rescheduled {
			note := fmt.Sprintf("Original requested time: %s. Rescheduled to %s due to a scheduling conflict.",
				utils.FormatTime12(requested), utils.FormatTime12(resolution.FinalTime))
			appt.AdminNotes = &note
		}

		err = s.repos.Appointments.Create(ctx, appt)
		if err == nil {
			return s.repos.Appointments.GetByID(ctx, appt.ID)
		}
		if !repositories.IsUniqueViolation(err) {
			return nil, fmt.Errorf("creating appointment: %w", err)
		}
	}
	return nil, ErrNoSlotAvailable
}

// UpdateDetails lets the owning customer edit a pending appointment, or an
// admin edit any appointment. updates carries column/value pairs already
// validated by the caller.
func (s *AppointmentService) UpdateDetails(ctx context.Context, actor *models.Profile, id uint, updates map[string]interface{}) (*models.Appointment, error) {
	appt, err := s.repos.Appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d := Authorize(actor, ActionUpdateAppointment, Resource{Appointment: appt}); !d.Allowed {
		return nil, &AuthorizationError{Reason: d.Reason}
	}
	if fault, ok := updates["fault_description"].(string); ok && len(fault) > models.MaxFaultDescriptionLen {
		return nil, &ValidationError{Field: "fault_description", Message: fmt.Sprintf("must be at most %d characters", models.MaxFaultDescriptionLen)}
	}
	if reason, ok := updates["reason_description"].(string); ok && len(reason) > models.MaxReasonDescriptionLen {
		return nil, &ValidationError{Field: "reason_description", Message: fmt.Sprintf("must be at most %d characters", models.MaxReasonDescriptionLen)}
	}
	updated, err := s.repos.Appointments.Update(ctx, id, updates)
	if repositories.IsUniqueViolation(err) {
		// An admin moved the appointment onto an already-confirmed slot.
		return nil, ErrNoSlotAvailable
	}
	return updated, err
}

// Approve moves a pending appointment to approved, optionally bundling a
// technician assignment in the same transaction.
func (s *AppointmentService) Approve(ctx context.Context, actor *models.Profile, id uint, req *ApprovalRequest) (*models.Appointment, error) {
	appt, err := s.repos.Appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d := Authorize(actor, ActionAssignTechnician, Resource{Appointment: appt}); !d.Allowed {
		return nil, &AuthorizationError{Reason: d.Reason}
	}
	if !models.CanTransition(appt.Status, models.StatusApproved) {
		return nil, &TransitionError{From: appt.Status, To: models.StatusApproved}
	}

	updates := map[string]interface{}{"status": models.StatusApproved}
	if req.AdminNotes != nil {
		updates["admin_notes"] = *req.AdminNotes
	}

	if req.TechnicianID == nil {
		updated, err := s.repos.Appointments.Update(ctx, id, updates)
		if repositories.IsUniqueViolation(err) {
			// Another appointment was confirmed at this slot since the
			// request was made. The appointment stays pending.
			return nil, ErrNoSlotAvailable
		}
		return updated, err
	}

	// Bundled assignment: technician, duration, and the task row commit
	// atomically with the status change.
	if req.TaskDescription == "" {
		return nil, &AssignmentIncompleteError{Missing: "task description"}
	}
	if req.EstimatedDurationHours == nil {
		return nil, &AssignmentIncompleteError{Missing: "estimated duration"}
	}
	technician, err := s.repos.Profiles.GetByID(ctx, *req.TechnicianID)
	if err != nil {
		return nil, err
	}
	if technician.Role != models.RoleTechnician || !technician.IsApproved {
		return nil, &AssignmentIncompleteError{Missing: "an approved technician"}
	}

	updates["technician_id"] = *req.TechnicianID
	updates["estimated_duration_hours"] = *req.EstimatedDurationHours

	err = s.uow.WithinTx(ctx, func(r repositories.Repos) error {
		if _, err := r.Appointments.Update(ctx, id, updates); err != nil {
			return err
		}
		return r.Tasks.Create(ctx, &models.Task{
			AppointmentID:          id,
			TechnicianID:           *req.TechnicianID,
			TaskDescription:        req.TaskDescription,
			EstimatedDurationHours: *req.EstimatedDurationHours,
			Status:                 models.TaskAssigned,
		})
	})
	if repositories.IsUniqueViolation(err) {
		return nil, ErrNoSlotAvailable
	}
	if err != nil {
		return nil, fmt.Errorf("approving appointment: %w", err)
	}
	return s.repos.Appointments.GetByID(ctx, id)
}

// Reject moves a pending appointment to rejected. A non-empty reason is
// required; rejecting without one is an error, not a silent no-op.
func (s *AppointmentService) Reject(ctx context.Context, actor *models.Profile, id uint, reason string) (*models.Appointment, error) {
	appt, err := s.repos.Appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d := Authorize(actor, ActionAssignTechnician, Resource{Appointment: appt}); !d.Allowed {
		return nil, &AuthorizationError{Reason: d.Reason}
	}
	if reason == "" {
		return nil, &ValidationError{Field: "rejection_reason", Message: "a rejection reason is required"}
	}
	if !models.CanTransition(appt.Status, models.StatusRejected) {
		return nil, &TransitionError{From: appt.Status, To: models.StatusRejected}
	}
	return s.repos.Appointments.Update(ctx, id, map[string]interface{}{
		"status":           models.StatusRejected,
		"rejection_reason": reason,
	})
}

// SetStatus is the technician/admin status transition: approved→in_progress
// (assigned technician only) and approved|in_progress→completed. Completion
// cascades to every task on the appointment inside one transaction.
func (s *AppointmentService) SetStatus(ctx context.Context, actor *models.Profile, id uint, newStatus string) (*models.Appointment, error) {
	if !models.IsValidStatus(newStatus) {
		return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", newStatus)}
	}

	appt, err := s.repos.Appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d := Authorize(actor, ActionUpdateAppointmentStatus, Resource{Appointment: appt}); !d.Allowed {
		return nil, &AuthorizationError{Reason: d.Reason}
	}
	if !models.CanTransition(appt.Status, newStatus) {
		return nil, &TransitionError{From: appt.Status, To: newStatus}
	}

	switch newStatus {
	case models.StatusInProgress:
		// Only the technician on the job starts it; admins approve and
		// complete but never put an appointment in progress themselves.
		if actor.Role != models.RoleTechnician {
			return nil, &AuthorizationError{Reason: "only the assigned technician can start work"}
		}
	case models.StatusCompleted:
		err = s.uow.WithinTx(ctx, func(r repositories.Repos) error {
			if _, err := r.Appointments.Update(ctx, id, map[string]interface{}{"status": models.StatusCompleted}); err != nil {
				return err
			}
			return r.Tasks.CompleteAllForAppointment(ctx, id)
		})
		if err != nil {
			return nil, fmt.Errorf("completing appointment: %w", err)
		}
		return s.repos.Appointments.GetByID(ctx, id)
	default:
		return nil, &ValidationError{Field: "status", Message: "approval and rejection go through the admin review operations"}
	}

	return s.repos.Appointments.Update(ctx, id, map[string]interface{}{"status": newStatus})
}
