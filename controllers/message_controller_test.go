package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/torquepoint/autoshop-api/config"
	"github.com/torquepoint/autoshop-api/models"
)

func TestSendMessage(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	customer := createTestProfile(t, db, "auth0|customer123", models.RoleCustomer, true)
	stranger := createTestProfile(t, db, "auth0|customer456", models.RoleCustomer, true)
	technician := createTestProfile(t, db, "auth0|tech123", models.RoleTechnician, true)
	admin := createTestProfile(t, db, "auth0|admin123", models.RoleAdmin, true)

	appt := createTestAppointment(t, db, customer.ID, "2025-06-16", "09:00", models.StatusApproved)
	db.Model(appt).Update("technician_id", technician.ID)

	tests := []struct {
		name           string
		userID         string
		role           string
		requestBody    map[string]interface{}
		expectedStatus int
		expectedError  string
	}{
		{
			name:           "Customer messages their appointment",
			userID:         customer.UserID,
			role:           models.RoleCustomer,
			requestBody:    map[string]interface{}{"text": "When should I drop off the car?"},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Assigned technician replies",
			userID:         technician.UserID,
			role:           models.RoleTechnician,
			requestBody:    map[string]interface{}{"text": "Any time after 8 AM works."},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Admin can join the thread",
			userID:         admin.UserID,
			role:           models.RoleAdmin,
			requestBody:    map[string]interface{}{"text": "Reminder: loaner cars are available."},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "Stranger is not a participant",
			userID:         stranger.UserID,
			role:           models.RoleCustomer,
			requestBody:    map[string]interface{}{"text": "What about my car?"},
			expectedStatus: http.StatusForbidden,
			expectedError:  "FORBIDDEN",
		},
		{
			name:           "Empty text fails binding",
			userID:         customer.UserID,
			role:           models.RoleCustomer,
			requestBody:    map[string]interface{}{},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.POST("/appointments/:id/messages",
				mockAuthMiddleware(tt.userID, tt.role, "mock-token"),
				SendMessage,
			)

			body, _ := json.Marshal(tt.requestBody)
			req, _ := http.NewRequest(http.MethodPost,
				"/appointments/"+itoa(appt.ID)+"/messages", bytes.NewBuffer(body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response map[string]interface{}
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			if tt.expectedError != "" {
				errorData := response["error"].(map[string]interface{})
				assert.Equal(t, tt.expectedError, errorData["code"])
			} else {
				data := response["data"].(map[string]interface{})
				assert.Equal(t, tt.requestBody["text"], data["text"])
				assert.Equal(t, float64(appt.ID), data["appointment_id"])
			}
		})
	}
}

func TestListMessages(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	customer := createTestProfile(t, db, "auth0|customer123", models.RoleCustomer, true)
	stranger := createTestProfile(t, db, "auth0|customer456", models.RoleCustomer, true)
	appt := createTestAppointment(t, db, customer.ID, "2025-06-16", "09:00", models.StatusApproved)

	for _, text := range []string{"First message", "Second message"} {
		message := models.Message{
			AppointmentID: appt.ID,
			SenderID:      customer.ID,
			Text:          text,
		}
		assert.NoError(t, db.Create(&message).Error)
	}

	t.Run("Participant reads the thread in order", func(t *testing.T) {
		router := setupTestRouter()
		router.GET("/appointments/:id/messages",
			mockAuthMiddleware(customer.UserID, models.RoleCustomer, "mock-token"),
			ListMessages,
		)

		req, _ := http.NewRequest(http.MethodGet,
			"/appointments/"+itoa(appt.ID)+"/messages", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		data := response["data"].([]interface{})
		if assert.Len(t, data, 2) {
			first := data[0].(map[string]interface{})
			assert.Equal(t, "First message", first["text"])

			// Sender relationship is loaded
			sender := first["sender"].(map[string]interface{})
			assert.Equal(t, customer.Email, sender["email"])
		}
	})

	t.Run("Stranger cannot read the thread", func(t *testing.T) {
		router := setupTestRouter()
		router.GET("/appointments/:id/messages",
			mockAuthMiddleware(stranger.UserID, models.RoleCustomer, "mock-token"),
			ListMessages,
		)

		req, _ := http.NewRequest(http.MethodGet,
			"/appointments/"+itoa(appt.ID)+"/messages", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}
