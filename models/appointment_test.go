package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppointmentTableName(t *testing.T) {
	assert.Equal(t, "appointments", Appointment{}.TableName())
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    string
		to      string
		allowed bool
	}{
		{"pending to approved", StatusPending, StatusApproved, true},
		{"pending to rejected", StatusPending, StatusRejected, true},
		{"approved to in_progress", StatusApproved, StatusInProgress, true},
		{"approved to completed", StatusApproved, StatusCompleted, true},
		{"in_progress to completed", StatusInProgress, StatusCompleted, true},
		{"pending to in_progress", StatusPending, StatusInProgress, false},
		{"pending to completed", StatusPending, StatusCompleted, false},
		{"approved to rejected", StatusApproved, StatusRejected, false},
		{"in_progress to rejected", StatusInProgress, StatusRejected, false},
		{"rejected is terminal", StatusRejected, StatusApproved, false},
		{"completed is terminal", StatusCompleted, StatusInProgress, false},
		{"no self transition", StatusApproved, StatusApproved, false},
		{"unknown source", "limbo", StatusApproved, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestRejectedOnlyReachableFromPending(t *testing.T) {
	for _, from := range []string{StatusApproved, StatusRejected, StatusInProgress, StatusCompleted} {
		assert.False(t, CanTransition(from, StatusRejected), "rejected must not be reachable from %s", from)
	}
	assert.True(t, CanTransition(StatusPending, StatusRejected))
}

func TestBlocksSlot(t *testing.T) {
	assert.True(t, BlocksSlot(StatusPending))
	assert.True(t, BlocksSlot(StatusApproved))
	assert.False(t, BlocksSlot(StatusRejected))
	assert.False(t, BlocksSlot(StatusCompleted))
	assert.False(t, BlocksSlot(StatusInProgress))
}

func TestIsValidStatus(t *testing.T) {
	for _, status := range []string{StatusPending, StatusApproved, StatusRejected, StatusInProgress, StatusCompleted} {
		assert.True(t, IsValidStatus(status))
	}
	assert.False(t, IsValidStatus("cancelled"))
	assert.False(t, IsValidStatus(""))
}

// Optional fields must survive a JSON round trip as absent, not as empty
// strings or zeroes.
func TestAppointmentJSONRoundTrip(t *testing.T) {
	appt := Appointment{
		ID:                1,
		CustomerID:        7,
		VehicleMake:       "Subaru",
		VehicleModel:      "Outback",
		VehicleYear:       2019,
		FaultDescription:  "Grinding noise when braking",
		ReasonDescription: "Noise started after a long downhill drive last weekend",
		AppointmentDate:   "2025-06-15",
		AppointmentTime:   "09:00",
		Status:            StatusApproved,
	}

	data, err := json.Marshal(appt)
	assert.NoError(t, err)

	var raw map[string]interface{}
	assert.NoError(t, json.Unmarshal(data, &raw))
	assert.NotContains(t, raw, "technician_id")
	assert.NotContains(t, raw, "admin_notes")
	assert.NotContains(t, raw, "rejection_reason")
	assert.NotContains(t, raw, "estimated_duration_hours")
	assert.NotContains(t, raw, "photo_s3_key")
	assert.NotContains(t, raw, "photo_url")

	var decoded Appointment
	assert.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, appt.VehicleMake, decoded.VehicleMake)
	assert.Equal(t, appt.AppointmentDate, decoded.AppointmentDate)
	assert.Equal(t, appt.AppointmentTime, decoded.AppointmentTime)
	assert.Equal(t, appt.Status, decoded.Status)
	assert.Nil(t, decoded.TechnicianID)
	assert.Nil(t, decoded.AdminNotes)
	assert.Nil(t, decoded.EstimatedDurationHours)

	// Set optionals and check they come back populated
	techID := uint(3)
	notes := "Original requested time: 9:00 AM. Rescheduled to 9:30 AM due to a scheduling conflict."
	hours := 2.5
	appt.TechnicianID = &techID
	appt.AdminNotes = &notes
	appt.EstimatedDurationHours = &hours

	data, err = json.Marshal(appt)
	assert.NoError(t, err)

	var decoded2 Appointment
	assert.NoError(t, json.Unmarshal(data, &decoded2))
	assert.Equal(t, techID, *decoded2.TechnicianID)
	assert.Equal(t, notes, *decoded2.AdminNotes)
	assert.Equal(t, hours, *decoded2.EstimatedDurationHours)
}
