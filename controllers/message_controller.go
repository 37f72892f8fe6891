package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/torquepoint/autoshop-api/models"
	"github.com/torquepoint/autoshop-api/services"
)

// SendMessageRequest represents the request body for sending a message
type SendMessageRequest struct {
	Text string `json:"text" binding:"required"`
}

// SendMessage handles POST /api/v1/appointments/:id/messages - sends a message
// on an appointment's conversation
func SendMessage(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Message text is required",
				"details": err.Error(),
			},
		})
		return
	}

	repos := getRepos()
	appt, err := repos.Appointments.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if d := services.Authorize(profile, services.ActionMessageAppointment, services.Resource{Appointment: appt}); !d.Allowed {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": d.Reason,
			},
		})
		return
	}

	message := models.Message{
		AppointmentID: appt.ID,
		SenderID:      profile.ID,
		Text:          req.Text,
	}
	if err := repos.Messages.Create(c.Request.Context(), &message); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    message,
	})
}

// ListMessages handles GET /api/v1/appointments/:id/messages - the
// appointment's conversation, visible to its participants and admins
func ListMessages(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	repos := getRepos()
	appt, err := repos.Appointments.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if d := services.Authorize(profile, services.ActionMessageAppointment, services.Resource{Appointment: appt}); !d.Allowed {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": d.Reason,
			},
		})
		return
	}

	messages, err := repos.Messages.ListForAppointment(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    messages,
	})
}
