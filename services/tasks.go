package services

import (
	"context"
	"fmt"

	"github.com/torquepoint/autoshop-api/models"
	"github.com/torquepoint/autoshop-api/repositories"
)

// TaskService is the technician work-order ledger.
type TaskService struct {
	repos repositories.Repos
	uow   repositories.UnitOfWork
}

// NewTaskService wires the ledger over the repositories.
func NewTaskService(repos repositories.Repos, uow repositories.UnitOfWork) *TaskService {
	return &TaskService{repos: repos, uow: uow}
}

// AssignRequest carries an admin's assign action.
type AssignRequest struct {
	TechnicianID           uint
	TaskDescription        string
	EstimatedDurationHours float64
	AdminNotes             *string
}

// Assign creates a work order on an appointment. The appointment must be
// pending (assignment doubles as approval) or approved; if it has no
// technician yet the assignment promotes it to approved with technician_id
// set, atomically with the task insert. Multiple tasks per appointment are
// allowed.
func (s *TaskService) Assign(ctx context.Context, actor *models.Profile, appointmentID uint, req *AssignRequest) (*models.Task, error) {
	appt, err := s.repos.Appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if d := Authorize(actor, ActionAssignTechnician, Resource{Appointment: appt}); !d.Allowed {
		return nil, &AuthorizationError{Reason: d.Reason}
	}

	if req.TaskDescription == "" {
		return nil, &AssignmentIncompleteError{Missing: "task description"}
	}
	if req.EstimatedDurationHours <= 0 {
		return nil, &AssignmentIncompleteError{Missing: "estimated duration"}
	}
	if appt.Status != models.StatusPending && appt.Status != models.StatusApproved {
		return nil, &TransitionError{From: appt.Status, To: models.StatusApproved}
	}

	technician, err := s.repos.Profiles.GetByID(ctx, req.TechnicianID)
	if err != nil {
		return nil, err
	}
	if technician.Role != models.RoleTechnician || !technician.IsApproved {
		return nil, &AssignmentIncompleteError{Missing: "an approved technician"}
	}

	task := &models.Task{
		AppointmentID:          appointmentID,
		TechnicianID:           req.TechnicianID,
		TaskDescription:        req.TaskDescription,
		EstimatedDurationHours: req.EstimatedDurationHours,
		Status:                 models.TaskAssigned,
	}

	err = s.uow.WithinTx(ctx, func(r repositories.Repos) error {
		if appt.Status == models.StatusPending || appt.TechnicianID == nil {
			updates := map[string]interface{}{
				"status":                   models.StatusApproved,
				"technician_id":            req.TechnicianID,
				"estimated_duration_hours": req.EstimatedDurationHours,
			}
			if req.AdminNotes != nil {
				updates["admin_notes"] = *req.AdminNotes
			}
			if _, err := r.Appointments.Update(ctx, appointmentID, updates); err != nil {
				return err
			}
		}
		return r.Tasks.Create(ctx, task)
	})
	if repositories.IsUniqueViolation(err) {
		// Promoting to approved lost the slot to another confirmed
		// appointment; nothing was written.
		return nil, ErrNoSlotAvailable
	}
	if err != nil {
		return nil, fmt.Errorf("assigning task: %w", err)
	}
	return s.repos.Tasks.GetByID(ctx, task.ID)
}

// UpdateStatus moves a task along assigned → in_progress → completed.
// Forward only: technicians must take the immediate next step, admins may
// jump ahead, nobody moves a task backward.
func (s *TaskService) UpdateStatus(ctx context.Context, actor *models.Profile, taskID uint, newStatus string) (*models.Task, error) {
	if !models.IsValidTaskStatus(newStatus) {
		return nil, &ValidationError{Field: "status", Message: fmt.Sprintf("unknown task status %q", newStatus)}
	}

	task, err := s.repos.Tasks.GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if d := Authorize(actor, ActionUpdateTaskStatus, Resource{Task: task}); !d.Allowed {
		return nil, &AuthorizationError{Reason: d.Reason}
	}

	if actor.Role == models.RoleAdmin {
		if !models.TaskStatusForward(task.Status, newStatus) {
			return nil, &TransitionError{From: task.Status, To: newStatus}
		}
	} else if !models.TaskStatusNext(task.Status, newStatus) {
		return nil, &TransitionError{From: task.Status, To: newStatus}
	}

	return s.repos.Tasks.Update(ctx, taskID, map[string]interface{}{"status": newStatus})
}

// ListForTechnician returns the technician's ledger, gate-checked.
func (s *TaskService) ListForTechnician(ctx context.Context, actor *models.Profile) ([]models.Task, error) {
	if d := Authorize(actor, ActionViewTasks, Resource{}); !d.Allowed {
		return nil, &AuthorizationError{Reason: d.Reason}
	}
	return s.repos.Tasks.ListForTechnician(ctx, actor.ID)
}
