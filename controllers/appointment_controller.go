package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/torquepoint/autoshop-api/models"
	"github.com/torquepoint/autoshop-api/services"
	"github.com/torquepoint/autoshop-api/utils"
)

// BookAppointmentRequest represents the request body for booking an appointment.
// Time comes from the slot picker in 12-hour form ("9:00 AM").
type BookAppointmentRequest struct {
	Date              string `json:"date" binding:"required"`
	Time              string `json:"time" binding:"required"`
	VehicleMake       string `json:"vehicle_make" binding:"required"`
	VehicleModel      string `json:"vehicle_model" binding:"required"`
	VehicleYear       int    `json:"vehicle_year" binding:"required"`
	FaultDescription  string `json:"fault_description" binding:"required"`
	ReasonDescription string `json:"reason_description" binding:"required"`
}

// UpdateAppointmentRequest represents the request body for editing an
// appointment. Customers may use it only while the appointment is pending.
type UpdateAppointmentRequest struct {
	VehicleMake       string `json:"vehicle_make" binding:"omitempty"`
	VehicleModel      string `json:"vehicle_model" binding:"omitempty"`
	VehicleYear       int    `json:"vehicle_year" binding:"omitempty"`
	FaultDescription  string `json:"fault_description" binding:"omitempty"`
	ReasonDescription string `json:"reason_description" binding:"omitempty"`
}

// SetStatusRequest represents the request body for a status transition.
type SetStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// BookAppointment handles POST /api/v1/appointments - books a service appointment (customers only)
func BookAppointment(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	var req BookAppointmentRequest
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

	appt, err := getAppointmentService().Book(c.Request.Context(), profile, &services.BookingRequest{
		Date:              req.Date,
		Time:              req.Time,
		VehicleMake:       req.VehicleMake,
		VehicleModel:      req.VehicleModel,
		VehicleYear:       req.VehicleYear,
		FaultDescription:  req.FaultDescription,
		ReasonDescription: req.ReasonDescription,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	services.AttachPhotoURL(appt)
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    appt,
	})
}

// ListAppointments handles GET /api/v1/appointments - lists appointments scoped to the caller's role
func ListAppointments(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}

	repos := getRepos()
	ctx := c.Request.Context()

	var (
		appts []models.Appointment
		err   error
	)
	switch profile.Role {
	case models.RoleAdmin:
		appts, err = repos.Appointments.List(ctx, c.Query("status"))
	case models.RoleTechnician:
		appts, err = repos.Appointments.ListForTechnician(ctx, profile.ID)
	default:
		appts, err = repos.Appointments.ListForCustomer(ctx, profile.ID)
	}
	if err != nil {
		handleServiceError(c, err)
		return
	}

	for i := range appts {
		services.AttachPhotoURL(&appts[i])
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    appts,
	})
}

// GetAppointment handles GET /api/v1/appointments/:id
func GetAppointment(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	appt, err := getRepos().Appointments.GetByID(c.Request.Context(), id)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if d := services.Authorize(profile, services.ActionViewAppointment, services.Resource{Appointment: appt}); !d.Allowed {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": d.Reason,
			},
		})
		return
	}

	services.AttachPhotoURL(appt)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    appt,
	})
}

// UpdateAppointment handles PUT /api/v1/appointments/:id - edits appointment
// details (owning customer while pending, or admin)
func UpdateAppointment(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req UpdateAppointmentRequest
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

	updates := make(map[string]interface{})
	if req.VehicleMake != "" {
		updates["vehicle_make"] = req.VehicleMake
	}
	if req.VehicleModel != "" {
		updates["vehicle_model"] = req.VehicleModel
	}
	if req.VehicleYear != 0 {
		updates["vehicle_year"] = req.VehicleYear
	}
	if req.FaultDescription != "" {
		updates["fault_description"] = req.FaultDescription
	}
	if req.ReasonDescription != "" {
		updates["reason_description"] = req.ReasonDescription
	}

	appt, err := getAppointmentService().UpdateDetails(c.Request.Context(), profile, id, updates)
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

// SetAppointmentStatus handles PATCH /api/v1/appointments/:id/status - the
// technician start/complete transitions (admins may also complete directly)
func SetAppointmentStatus(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req SetStatusRequest
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

	appt, err := getAppointmentService().SetStatus(c.Request.Context(), profile, id, req.Status)
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

// GetBookingSlots handles GET /api/v1/appointments/slots - the fixed slot list
// offered by the booking form
func GetBookingSlots(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    utils.BookingSlots,
	})
}
