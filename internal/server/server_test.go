package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/pakproperty/pakproperty/internal/config"
	"github.com/pakproperty/pakproperty/internal/models"
)

// newTestServer creates a server backed by a throwaway SQLite database
func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{
		Server:   config.ServerConfig{Addr: ":0", PublicURL: "http://localhost:8080"},
		Database: config.DatabaseConfig{URL: filepath.Join(t.TempDir(), "test.sqlite")},
		Redis:    config.RedisConfig{Address: "localhost:6379"},
		Logging:  config.LoggingConfig{Level: "error", Format: "console"},
	}

	srv, err := New(cfg, zerolog.Nop(), "test")
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return srv
}

// apiCall issues a JSON request against the server's router
func apiCall(t *testing.T, srv *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reqBody = bytes.NewBuffer(data)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

// registerUser creates an account and returns its bearer token and ID
func registerUser(t *testing.T, srv *Server, email, role string) (string, string) {
	t.Helper()

	w := apiCall(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":      email,
		"password":   "secret123",
		"first_name": "Test",
		"role":       role,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s failed: status %d, body %s", email, w.Code, w.Body.String())
	}

	var resp struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode register response: %v", err)
	}
	return resp.Token, resp.User.ID
}

// verifyUser marks an account's email as confirmed directly in the database
func verifyUser(t *testing.T, srv *Server, userID string) {
	t.Helper()
	if err := srv.GetDB().Model(&models.User{}).Where("id = ?", userID).
		Update("is_verified", true).Error; err != nil {
		t.Fatalf("failed to verify user: %v", err)
	}
}

func TestRegisterAndLogin(t *testing.T) {
	srv := newTestServer(t)

	token, _ := registerUser(t, srv, "tenant@example.com", "tenant")
	if token == "" {
		t.Fatal("expected a token from registration")
	}

	// Duplicate email is rejected with a clear message
	w := apiCall(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":      "tenant@example.com",
		"password":   "secret123",
		"first_name": "Other",
	})
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate email, got %d: %s", w.Code, w.Body.String())
	}

	// Login with the right password
	w = apiCall(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "tenant@example.com",
		"password": "secret123",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login failed: %d %s", w.Code, w.Body.String())
	}

	// Wrong password gets the same generic message as an unknown email
	w = apiCall(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "tenant@example.com",
		"password": "wrong-password",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for bad password, got %d", w.Code)
	}
	var errResp struct {
		Error string `json:"error"`
	}
	json.Unmarshal(w.Body.Bytes(), &errResp)
	if errResp.Error != "Invalid credentials" {
		t.Errorf("expected generic credentials message, got %q", errResp.Error)
	}
}

func TestRegister_AdminRoleRejected(t *testing.T) {
	srv := newTestServer(t)

	w := apiCall(t, srv, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":      "sneaky@example.com",
		"password":   "secret123",
		"first_name": "Sneaky",
		"role":       "admin",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for admin self-registration, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAuthMe(t *testing.T) {
	srv := newTestServer(t)
	token, _ := registerUser(t, srv, "tenant@example.com", "tenant")

	w := apiCall(t, srv, http.MethodGet, "/api/auth/me", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Email string `json:"email"`
			Role  string `json:"role"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Data.Email != "tenant@example.com" || resp.Data.Role != "tenant" {
		t.Errorf("unexpected user in /auth/me: %+v", resp.Data)
	}

	// No token
	w = apiCall(t, srv, http.MethodGet, "/api/auth/me", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without token, got %d", w.Code)
	}

	// Garbage token
	w = apiCall(t, srv, http.MethodGet, "/api/auth/me", "garbage", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for garbage token, got %d", w.Code)
	}
}

func TestCreateProperty_RoleAndVerificationGates(t *testing.T) {
	srv := newTestServer(t)

	listing := map[string]interface{}{
		"title":       "3 Bed House in DHA Phase 5",
		"type":        "house",
		"city":        "Lahore",
		"rent_amount": 120000,
		"bedrooms":    3,
	}

	// Tenants can never create listings, verified or not
	tenantToken, tenantID := registerUser(t, srv, "tenant@example.com", "tenant")
	verifyUser(t, srv, tenantID)
	w := apiCall(t, srv, http.MethodPost, "/api/properties", tenantToken, listing)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for tenant, got %d: %s", w.Code, w.Body.String())
	}

	// Owners must verify their email first
	ownerToken, ownerID := registerUser(t, srv, "owner@example.com", "owner")
	w = apiCall(t, srv, http.MethodPost, "/api/properties", ownerToken, listing)
	if w.Code != http.StatusForbidden {
		t.Errorf("expected 403 for unverified owner, got %d: %s", w.Code, w.Body.String())
	}

	verifyUser(t, srv, ownerID)
	w = apiCall(t, srv, http.MethodPost, "/api/properties", ownerToken, listing)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201 for verified owner, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPropertyOwnership(t *testing.T) {
	srv := newTestServer(t)

	ownerToken, ownerID := registerUser(t, srv, "owner@example.com", "owner")
	verifyUser(t, srv, ownerID)
	otherToken, otherID := registerUser(t, srv, "other@example.com", "owner")
	verifyUser(t, srv, otherID)

	w := apiCall(t, srv, http.MethodPost, "/api/properties", ownerToken, map[string]interface{}{
		"title":       "Flat in Clifton",
		"type":        "apartment",
		"city":        "Karachi",
		"rent_amount": 65000,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create failed: %d %s", w.Code, w.Body.String())
	}
	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &created)

	// A different owner cannot touch it
	path := "/api/properties/" + created.Data.ID
	w = apiCall(t, srv, http.MethodPut, path, otherToken, map[string]interface{}{
		"title": "Hijacked",
	})
	if w.Code != http.StatusForbidden && w.Code != http.StatusNotFound {
		t.Errorf("expected other owner to be refused, got %d: %s", w.Code, w.Body.String())
	}

	// The actual owner can
	w = apiCall(t, srv, http.MethodPut, path, ownerToken, map[string]interface{}{
		"title": "Flat in Clifton Block 2",
	})
	if w.Code != http.StatusOK {
		t.Errorf("expected owner update to succeed, got %d: %s", w.Code, w.Body.String())
	}
}

func TestListProperties_PublicWithFilters(t *testing.T) {
	srv := newTestServer(t)

	ownerToken, ownerID := registerUser(t, srv, "owner@example.com", "owner")
	verifyUser(t, srv, ownerID)

	cities := []string{"Lahore", "Karachi", "Lahore"}
	for i, city := range cities {
		w := apiCall(t, srv, http.MethodPost, "/api/properties", ownerToken, map[string]interface{}{
			"title":       fmt.Sprintf("Listing %d", i),
			"type":        "house",
			"city":        city,
			"rent_amount": 50000 * (i + 1),
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("create %d failed: %d %s", i, w.Code, w.Body.String())
		}
	}

	// No auth required for browsing
	w := apiCall(t, srv, http.MethodGet, "/api/properties?city=Lahore", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var page struct {
		Data  []models.Property `json:"data"`
		Total int64             `json:"total"`
	}
	json.Unmarshal(w.Body.Bytes(), &page)
	if page.Total != 2 {
		t.Errorf("expected 2 Lahore listings, got %d", page.Total)
	}
	for _, p := range page.Data {
		if p.City != "Lahore" {
			t.Errorf("filter leaked a %s listing", p.City)
		}
	}

	// Rent range filter
	w = apiCall(t, srv, http.MethodGet, "/api/properties?min_rent=100000", "", nil)
	json.Unmarshal(w.Body.Bytes(), &page)
	if w.Code != http.StatusOK || page.Total != 1 {
		t.Errorf("expected 1 listing above 100000, got %d (status %d)", page.Total, w.Code)
	}
}

func TestSavedProperties_DuplicateAndMissing(t *testing.T) {
	srv := newTestServer(t)

	ownerToken, ownerID := registerUser(t, srv, "owner@example.com", "owner")
	verifyUser(t, srv, ownerID)
	tenantToken, _ := registerUser(t, srv, "tenant@example.com", "tenant")

	w := apiCall(t, srv, http.MethodPost, "/api/properties", ownerToken, map[string]interface{}{
		"title":       "Room in G-13",
		"type":        "room",
		"city":        "Islamabad",
		"rent_amount": 25000,
	})
	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &created)

	savePath := "/api/saved-properties/" + created.Data.ID
	w = apiCall(t, srv, http.MethodPost, savePath, tenantToken, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("save failed: %d %s", w.Code, w.Body.String())
	}

	// Saving twice conflicts
	w = apiCall(t, srv, http.MethodPost, savePath, tenantToken, nil)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate save, got %d: %s", w.Code, w.Body.String())
	}

	// Saving a nonexistent listing is a 404
	w = apiCall(t, srv, http.MethodPost, "/api/saved-properties/does-not-exist", tenantToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown listing, got %d", w.Code)
	}

	// Unsave, then unsave again
	w = apiCall(t, srv, http.MethodDelete, savePath, tenantToken, nil)
	if w.Code != http.StatusNoContent {
		t.Errorf("unsave failed: %d %s", w.Code, w.Body.String())
	}
	w = apiCall(t, srv, http.MethodDelete, savePath, tenantToken, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 unsaving a listing that is not saved, got %d", w.Code)
	}
}

func TestInquiries_SelfInquiryRejected(t *testing.T) {
	srv := newTestServer(t)

	ownerToken, ownerID := registerUser(t, srv, "owner@example.com", "owner")
	verifyUser(t, srv, ownerID)
	tenantToken, _ := registerUser(t, srv, "tenant@example.com", "tenant")

	w := apiCall(t, srv, http.MethodPost, "/api/properties", ownerToken, map[string]interface{}{
		"title":       "House in Model Town",
		"type":        "house",
		"city":        "Lahore",
		"rent_amount": 90000,
	})
	var created struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &created)

	inquiryPath := "/api/properties/" + created.Data.ID + "/inquiries"

	// Owners cannot inquire about their own listing
	w = apiCall(t, srv, http.MethodPost, inquiryPath, ownerToken, map[string]string{
		"message": "Is this available?",
	})
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for self-inquiry, got %d: %s", w.Code, w.Body.String())
	}

	// A tenant can
	w = apiCall(t, srv, http.MethodPost, inquiryPath, tenantToken, map[string]string{
		"message": "Is this available?",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("inquiry failed: %d %s", w.Code, w.Body.String())
	}

	// It shows up as sent for the tenant and received for the owner
	var list struct {
		Sent     []models.Inquiry `json:"sent"`
		Received []models.Inquiry `json:"received"`
	}
	w = apiCall(t, srv, http.MethodGet, "/api/inquiries", tenantToken, nil)
	json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Sent) != 1 || len(list.Received) != 0 {
		t.Errorf("tenant: expected 1 sent / 0 received, got %d/%d", len(list.Sent), len(list.Received))
	}

	w = apiCall(t, srv, http.MethodGet, "/api/inquiries", ownerToken, nil)
	json.Unmarshal(w.Body.Bytes(), &list)
	if len(list.Sent) != 0 || len(list.Received) != 1 {
		t.Errorf("owner: expected 0 sent / 1 received, got %d/%d", len(list.Sent), len(list.Received))
	}
}

func TestAdminEndpoints_RequireAdminRole(t *testing.T) {
	srv := newTestServer(t)

	tenantToken, _ := registerUser(t, srv, "tenant@example.com", "tenant")
	w := apiCall(t, srv, http.MethodGet, "/api/admin/users", tenantToken, nil)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", w.Code)
	}

	var denial struct {
		Error         string   `json:"error"`
		RequiredRoles []string `json:"required_roles"`
		YourRole      string   `json:"your_role"`
	}
	json.Unmarshal(w.Body.Bytes(), &denial)
	if denial.YourRole != "tenant" || len(denial.RequiredRoles) != 1 || denial.RequiredRoles[0] != "admin" {
		t.Errorf("expected denial to name roles, got %+v", denial)
	}

	// Promote the user to admin directly, then the panel opens up
	_, adminID := registerUser(t, srv, "admin@example.com", "tenant")
	if err := srv.GetDB().Model(&models.User{}).Where("id = ?", adminID).
		Update("role", "admin").Error; err != nil {
		t.Fatalf("failed to promote admin: %v", err)
	}
	// Token carries the old role; a fresh login picks up the new one
	w = apiCall(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "admin@example.com",
		"password": "secret123",
	})
	var login struct {
		Token string `json:"token"`
	}
	json.Unmarshal(w.Body.Bytes(), &login)

	w = apiCall(t, srv, http.MethodGet, "/api/admin/stats", login.Token, nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for admin stats, got %d: %s", w.Code, w.Body.String())
	}
}

func TestDisabledAccountRejected(t *testing.T) {
	srv := newTestServer(t)

	token, userID := registerUser(t, srv, "banned@example.com", "tenant")
	if err := srv.GetDB().Model(&models.User{}).Where("id = ?", userID).
		Update("is_active", false).Error; err != nil {
		t.Fatalf("failed to disable user: %v", err)
	}

	// Existing tokens stop working
	w := apiCall(t, srv, http.MethodGet, "/api/auth/me", token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 for disabled account, got %d", w.Code)
	}

	// And logging in again is refused
	w = apiCall(t, srv, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "banned@example.com",
		"password": "secret123",
	})
	if w.Code != http.StatusUnauthorized && w.Code != http.StatusForbidden {
		t.Errorf("expected disabled login to be refused, got %d", w.Code)
	}
}
