package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/torquepoint/autoshop-api/services"
	"github.com/torquepoint/autoshop-api/utils"
)

// UploadVehiclePhoto handles POST /api/v1/appointments/:id/photo - attaches a
// PNG photo of the fault to an appointment. The owning customer may upload
// while the appointment is pending; admins always may.
func UploadVehiclePhoto(c *gin.Context) {
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

	if d := services.Authorize(profile, services.ActionUpdateAppointment, services.Resource{Appointment: appt}); !d.Allowed {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": d.Reason,
			},
		})
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MISSING_FILE",
				"message": "A photo file is required",
			},
		})
		return
	}

	photoService := services.GetPhotoService()
	if photoService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STORAGE_UNAVAILABLE",
				"message": "Photo storage is not configured",
			},
		})
		return
	}

	s3Key, err := photoService.UploadPhoto(fileHeader)
	if err != nil {
		var uploadErr *utils.FileUploadError
		if errors.As(err, &uploadErr) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    uploadErr.Code,
					"message": uploadErr.Message,
				},
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_FAILED",
				"message": "Failed to upload photo",
			},
		})
		return
	}

	// Replacing an existing photo removes the old object.
	if appt.PhotoS3Key != nil && *appt.PhotoS3Key != s3Key {
		if err := photoService.DeletePhoto(*appt.PhotoS3Key); err != nil {
			// Orphaned object; the new key still wins.
			_ = err
		}
	}

	appt, err = repos.Appointments.Update(c.Request.Context(), id, map[string]interface{}{"photo_s3_key": s3Key})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	services.AttachPhotoURL(appt)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    appt,
	})
}
