package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/torquepoint/autoshop-api/models"
	"github.com/torquepoint/autoshop-api/services"
)

// ApproveAppointmentRequest represents the request body for approving an
// appointment, optionally bundling a technician assignment.
type ApproveAppointmentRequest struct {
	TechnicianID           *uint    `json:"technician_id"`
	TaskDescription        string   `json:"task_description"`
	EstimatedDurationHours *float64 `json:"estimated_duration_hours"`
	AdminNotes             *string  `json:"admin_notes"`
}

// RejectAppointmentRequest represents the request body for rejecting an appointment
type RejectAppointmentRequest struct {
	RejectionReason string `json:"rejection_reason" binding:"required"`
}

// AssignTaskRequest represents the request body for issuing a task on an appointment
type AssignTaskRequest struct {
	TechnicianID           uint    `json:"technician_id" binding:"required"`
	TaskDescription        string  `json:"task_description" binding:"required"`
	EstimatedDurationHours float64 `json:"estimated_duration_hours" binding:"required,gt=0"`
	AdminNotes             *string `json:"admin_notes"`
}

// ApproveAppointment handles PUT /api/v1/admin/appointments/:id/approve (admins only)
func ApproveAppointment(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req ApproveAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	appt, err := getAppointmentService().Approve(c.Request.Context(), profile, id, &services.ApprovalRequest{
		TechnicianID:           req.TechnicianID,
		TaskDescription:        req.TaskDescription,
		EstimatedDurationHours: req.EstimatedDurationHours,
		AdminNotes:             req.AdminNotes,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    appt,
	})
}

// RejectAppointment handles PUT /api/v1/admin/appointments/:id/reject (admins only)
func RejectAppointment(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req RejectAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "A rejection reason is required",
				"details": err.Error(),
			},
		})
		return
	}

	appt, err := getAppointmentService().Reject(c.Request.Context(), profile, id, req.RejectionReason)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    appt,
	})
}

// AssignTask handles POST /api/v1/admin/appointments/:id/tasks - issues a work
// order for a technician, promoting the appointment to approved if needed
func AssignTask(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req AssignTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	task, err := getTaskService().Assign(c.Request.Context(), profile, id, &services.AssignRequest{
		TechnicianID:           req.TechnicianID,
		TaskDescription:        req.TaskDescription,
		EstimatedDurationHours: req.EstimatedDurationHours,
		AdminNotes:             req.AdminNotes,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    task,
	})
}

// ListTechnicians handles GET /api/v1/admin/technicians (admins only)
func ListTechnicians(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	if d := services.Authorize(profile, services.ActionApproveTechnician, services.Resource{}); !d.Allowed {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": d.Reason,
			},
		})
		return
	}

	technicians, err := getRepos().Profiles.ListByRole(c.Request.Context(), models.RoleTechnician)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    technicians,
	})
}

// ApproveTechnician handles PUT /api/v1/admin/technicians/:id/approve - flips
// the approval flag that gates a technician's dashboard access (admins only)
func ApproveTechnician(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	if d := services.Authorize(profile, services.ActionApproveTechnician, services.Resource{}); !d.Allowed {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": d.Reason,
			},
		})
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	repos := getRepos()
	technician, err := repos.Profiles.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	if technician.Role != models.RoleTechnician {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Profile is not a technician",
			},
		})
		return
	}

	technician, err = repos.Profiles.Update(c.Request.Context(), id, map[string]interface{}{"is_approved": true})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    technician,
	})
}
