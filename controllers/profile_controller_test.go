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
	"github.com/torquepoint/autoshop-api/services"
)

// setupMockAuth0Server simulates Auth0's /userinfo endpoint, keyed by the
// bearer token it receives.
func setupMockAuth0Server(userInfoMap map[string]*services.Auth0UserInfo) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/userinfo" {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		authHeader := r.Header.Get("Authorization")
		if len(authHeader) < 8 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		token := authHeader[7:]

		userInfo, exists := userInfoMap[token]
		if !exists {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(userInfo)
	}))
}

func TestCreateProfile(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	mockAuth0 := setupMockAuth0Server(map[string]*services.Auth0UserInfo{
		"token-customer": {Sub: "auth0|cust1", Email: "jordan@example.com", Name: "Jordan Avery"},
		"token-tech":     {Sub: "auth0|tech1", Email: "sam@example.com", Name: "Sam Reyes"},
		"token-noemail":  {Sub: "auth0|bad1", Name: "No Email"},
	})
	defer mockAuth0.Close()

	config.SetConfig(&config.Config{
		Auth0Domain: mockAuth0.URL,
		BookingMode: config.BookingModeAuto,
	})

	tests := []struct {
		name           string
		userID         string
		role           string
		accessToken    string
		expectedStatus int
		expectedError  string
		checkResponse  func(t *testing.T, response map[string]interface{})
	}{
		{
			name:           "Create customer profile",
			userID:         "auth0|cust1",
			role:           models.RoleCustomer,
			accessToken:    "token-customer",
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				data := response["data"].(map[string]interface{})
				assert.Equal(t, "Jordan Avery", data["full_name"])
				assert.Equal(t, "jordan@example.com", data["email"])
				assert.Equal(t, "customer", data["role"])
				assert.True(t, data["is_approved"].(bool))
			},
		},
		{
			name:           "Technician starts unapproved",
			userID:         "auth0|tech1",
			role:           models.RoleTechnician,
			accessToken:    "token-tech",
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, response map[string]interface{}) {
				data := response["data"].(map[string]interface{})
				assert.Equal(t, "technician", data["role"])
				assert.False(t, data["is_approved"].(bool))
			},
		},
		{
			name:           "Duplicate profile conflicts",
			userID:         "auth0|cust1",
			role:           models.RoleCustomer,
			accessToken:    "token-customer",
			expectedStatus: http.StatusConflict,
			expectedError:  "PROFILE_EXISTS",
		},
		{
			name:           "Missing email from Auth0",
			userID:         "auth0|bad1",
			role:           models.RoleCustomer,
			accessToken:    "token-noemail",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "MISSING_EMAIL",
		},
		{
			name:           "Auth0 rejects the token",
			userID:         "auth0|unknown",
			role:           models.RoleCustomer,
			accessToken:    "token-bogus",
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "AUTH0_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.POST("/users",
				mockAuthMiddleware(tt.userID, tt.role, tt.accessToken),
				CreateProfile,
			)

			req, _ := http.NewRequest(http.MethodPost, "/users", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response map[string]interface{}
			assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
			if tt.expectedError != "" {
				errorData := response["error"].(map[string]interface{})
				assert.Equal(t, tt.expectedError, errorData["code"])
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, response)
			}
		})
	}
}

func TestCreateProfile_UnknownRoleDefaultsToCustomer(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	mockAuth0 := setupMockAuth0Server(map[string]*services.Auth0UserInfo{
		"token-1": {Sub: "auth0|user1", Email: "casey@example.com", Name: "Casey Blake"},
	})
	defer mockAuth0.Close()

	config.SetConfig(&config.Config{
		Auth0Domain: mockAuth0.URL,
		BookingMode: config.BookingModeAuto,
	})

	router := setupTestRouter()
	router.POST("/users",
		mockAuthMiddleware("auth0|user1", "superuser", "token-1"),
		CreateProfile,
	)

	req, _ := http.NewRequest(http.MethodPost, "/users", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "customer", data["role"])
}

func TestGetMyProfile(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	customer := createTestProfile(t, db, "auth0|customer123", models.RoleCustomer, true)

	tests := []struct {
		name           string
		userID         string
		expectedStatus int
		expectedError  string
	}{
		{"Existing profile", customer.UserID, http.StatusOK, ""},
		{"No profile yet", "auth0|unknown", http.StatusNotFound, "PROFILE_NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := setupTestRouter()
			router.GET("/users/me",
				mockAuthMiddleware(tt.userID, models.RoleCustomer, "mock-token"),
				GetMyProfile,
			)

			req, _ := http.NewRequest(http.MethodGet, "/users/me", nil)
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
				assert.Equal(t, customer.Email, data["email"])
			}
		})
	}
}

func TestUpdateMyProfile(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	customer := createTestProfile(t, db, "auth0|customer123", models.RoleCustomer, true)

	router := setupTestRouter()
	router.PUT("/users/me",
		mockAuthMiddleware(customer.UserID, models.RoleCustomer, "mock-token"),
		UpdateMyProfile,
	)

	body, _ := json.Marshal(map[string]interface{}{
		"full_name": "Jordan A. Avery",
		"phone":     "555-0100",
	})
	req, _ := http.NewRequest(http.MethodPut, "/users/me", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "Jordan A. Avery", data["full_name"])
	assert.Equal(t, "555-0100", data["phone"])

	// Role and approval are not self-service and survive untouched
	assert.Equal(t, "customer", data["role"])
	assert.True(t, data["is_approved"].(bool))
}

func TestUpdateMyProfile_EmptyBody(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)

	customer := createTestProfile(t, db, "auth0|customer123", models.RoleCustomer, true)

	router := setupTestRouter()
	router.PUT("/users/me",
		mockAuthMiddleware(customer.UserID, models.RoleCustomer, "mock-token"),
		UpdateMyProfile,
	)

	req, _ := http.NewRequest(http.MethodPut, "/users/me", bytes.NewBufferString("{}"))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, customer.FullName, data["full_name"])
}
