package services

import (
	"github.com/torquepoint/autoshop-api/models"
)

// Action identifies a protected operation checked by the gate.
type Action string

const (
	ActionCreateAppointment       Action = "create-appointment"
	ActionUpdateAppointment       Action = "update-appointment"
	ActionUpdateAppointmentStatus Action = "update-appointment-status"
	ActionViewAppointment         Action = "view-appointment"
	ActionAssignTechnician        Action = "assign-technician"
	ActionApproveTechnician       Action = "approve-technician"
	ActionViewTasks               Action = "view-tasks"
	ActionUpdateTaskStatus        Action = "update-task-status"
	ActionMessageAppointment      Action = "message-appointment"
)

// Resource carries the ownership fields of the record being acted on.
// Nil fields mean the action has no target record (e.g. creating one).
type Resource struct {
	Appointment *models.Appointment
	Task        *models.Task
}

// Decision is the gate's verdict. Reason is user-facing on denial.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow() Decision {
	return Decision{Allowed: true}
}

func deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Authorize decides whether actor may perform action on resource. It has no
// side effects and never consults storage: existence checks happen before the
// gate so a denial is always distinguishable from a missing record.
func Authorize(actor *models.Profile, action Action, resource Resource) Decision {
	if actor == nil {
		return deny("no profile for caller")
	}

	switch action {
	case ActionCreateAppointment:
		if actor.Role != models.RoleCustomer {
			return deny("only customers can book appointments")
		}
		return allow()

	case ActionUpdateAppointment:
		appt := resource.Appointment
		if appt == nil {
			return deny("no appointment to update")
		}
		switch actor.Role {
		case models.RoleAdmin:
			return allow()
		case models.RoleCustomer:
			if appt.CustomerID != actor.ID {
				return deny("appointment belongs to another customer")
			}
			if appt.Status != models.StatusPending {
				return deny("appointments can only be edited while pending")
			}
			return allow()
		default:
			return deny("technicians may only update appointment status")
		}

	case ActionUpdateAppointmentStatus:
		appt := resource.Appointment
		if appt == nil {
			return deny("no appointment to update")
		}
		if actor.Role == models.RoleAdmin {
			return allow()
		}
		if actor.Role != models.RoleTechnician {
			return deny("only the assigned technician or an admin can change status")
		}
		if !actor.IsApproved {
			return deny("technician account is awaiting approval")
		}
		if appt.TechnicianID == nil || *appt.TechnicianID != actor.ID {
			return deny("appointment is assigned to another technician")
		}
		return allow()

	case ActionViewAppointment:
		appt := resource.Appointment
		if appt == nil {
			return deny("no appointment to view")
		}
		if actor.Role == models.RoleAdmin {
			return allow()
		}
		if actor.Role == models.RoleCustomer && appt.CustomerID == actor.ID {
			return allow()
		}
		if actor.Role == models.RoleTechnician && appt.TechnicianID != nil && *appt.TechnicianID == actor.ID {
			return allow()
		}
		return deny("appointment belongs to another user")

	case ActionAssignTechnician, ActionApproveTechnician:
		if actor.Role != models.RoleAdmin {
			return deny("admin access required")
		}
		return allow()

	case ActionViewTasks:
		if actor.Role == models.RoleAdmin {
			return allow()
		}
		if actor.Role != models.RoleTechnician {
			return deny("only technicians have a task list")
		}
		if !actor.IsApproved {
			return deny("technician account is awaiting approval")
		}
		return allow()

	case ActionUpdateTaskStatus:
		task := resource.Task
		if task == nil {
			return deny("no task to update")
		}
		if actor.Role == models.RoleAdmin {
			return allow()
		}
		if actor.Role != models.RoleTechnician {
			return deny("only the assigned technician or an admin can update a task")
		}
		if !actor.IsApproved {
			return deny("technician account is awaiting approval")
		}
		if task.TechnicianID != actor.ID {
			return deny("task is assigned to another technician")
		}
		return allow()

	case ActionMessageAppointment:
		appt := resource.Appointment
		if appt == nil {
			return deny("no appointment to message on")
		}
		if actor.Role == models.RoleAdmin {
			return allow()
		}
		if actor.Role == models.RoleCustomer && appt.CustomerID == actor.ID {
			return allow()
		}
		if actor.Role == models.RoleTechnician && appt.TechnicianID != nil && *appt.TechnicianID == actor.ID {
			return allow()
		}
		return deny("conversation belongs to another appointment's participants")
	}

	return deny("unknown action")
}
