package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// UpdateTaskStatusRequest represents the request body for a task status change
type UpdateTaskStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListMyTasks handles GET /api/v1/tasks - the caller's work-order ledger
// (approved technicians)
func ListMyTasks(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	tasks, err := getTaskService().ListForTechnician(c.Request.Context(), profile)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tasks,
	})
}

// UpdateTaskStatus handles PATCH /api/v1/tasks/:id/status - moves a task
// forward along assigned → in_progress → completed
func UpdateTaskStatus(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateTaskStatusRequest
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

	task, err := getTaskService().UpdateStatus(c.Request.Context(), profile, id, req.Status)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    task,
	})
}
