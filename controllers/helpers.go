package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/torquepoint/autoshop-api/config"
	"github.com/torquepoint/autoshop-api/middleware"
	"github.com/torquepoint/autoshop-api/models"
	"github.com/torquepoint/autoshop-api/repositories"
	"github.com/torquepoint/autoshop-api/services"
)

// getRepos builds the repository set over the active database connection.
func getRepos() repositories.Repos {
	return repositories.New(config.GetDB())
}

// getAppointmentService wires the state machine for one request.
func getAppointmentService() *services.AppointmentService {
	db := config.GetDB()
	mode := config.BookingModeAuto
	if cfg := config.GetConfig(); cfg != nil {
		mode = cfg.BookingMode
	}
	return services.NewAppointmentService(repositories.New(db), repositories.NewUoW(db), mode)
}

// getTaskService wires the task ledger for one request.
func getTaskService() *services.TaskService {
	db := config.GetDB()
	return services.NewTaskService(repositories.New(db), repositories.NewUoW(db))
}

// parseIDParam reads a numeric :id-style URL parameter. On failure it writes
// the error response and returns false.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Invalid " + name + " parameter",
			},
		})
		return 0, false
	}
	return uint(id), true
}

// currentProfile resolves the caller's profile from the JWT subject. On
// failure it writes the error response and returns false.
func currentProfile(c *gin.Context) (*models.Profile, bool) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return nil, false
	}

	profile, err := getRepos().Profiles.GetByUserID(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PROFILE_NOT_FOUND",
				"message": "User profile not found. Please create a profile first.",
			},
		})
		return nil, false
	}

	return profile, true
}

// handleServiceError maps the service layer's typed errors onto the response
// envelope. Authorization failures stay distinct from not-found.
func handleServiceError(c *gin.Context, err error) {
	var (
		validationErr *services.ValidationError
		authzErr      *services.AuthorizationError
		transitionErr *services.TransitionError
		assignErr     *services.AssignmentIncompleteError
	)

	switch {
	case errors.Is(err, repositories.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NOT_FOUND",
				"message": "The requested record does not exist",
			},
		})
	case errors.Is(err, services.ErrNoSlotAvailable):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NO_SLOT_AVAILABLE",
				"message": "No time slots are available on that date. Please choose a different date.",
			},
		})
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": validationErr.Error(),
			},
		})
	case errors.As(err, &authzErr):
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": authzErr.Reason,
			},
		})
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_TRANSITION",
				"message": transitionErr.Error(),
			},
		})
	case errors.As(err, &assignErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "ASSIGNMENT_INCOMPLETE",
				"message": assignErr.Error(),
			},
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "The operation could not be completed. Please try again.",
			},
		})
	}
}
