package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestDo_DecodesAPIError tests that {"error": ...} bodies become typed errors
func TestDo_DecodesAPIError(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "Email already registered"})
	}))
	defer api.Close()

	c := New(api.URL)
	_, err := c.Register(RegisterRequest{Email: "a@b.com", Password: "pw"})
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusConflict {
		t.Errorf("expected status 409, got %d", apiErr.StatusCode)
	}
	if apiErr.Message != "Email already registered" {
		t.Errorf("expected server message, got %q", apiErr.Message)
	}
	if ErrorMessage(err, "fallback") != "Email already registered" {
		t.Errorf("ErrorMessage should surface the server message")
	}
}

// TestDo_MalformedErrorBodyFallsBack tests the generic message for bodies
// that are not the expected shape
func TestDo_MalformedErrorBodyFallsBack(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>nginx</html>"))
	}))
	defer api.Close()

	c := New(api.URL)
	_, err := c.Me()
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T", err)
	}
	if apiErr.Message != "request failed (status 502)" {
		t.Errorf("expected generic message, got %q", apiErr.Message)
	}
}

// TestErrorMessage_TransportFailureUsesFallback tests that non-API errors
// never leak raw transport detail to the user
func TestErrorMessage_TransportFailureUsesFallback(t *testing.T) {
	c := New("http://127.0.0.1:1") // nothing listens here
	_, err := c.Me()
	if err == nil {
		t.Fatal("expected connection error")
	}
	if got := ErrorMessage(err, "could not reach the server"); got != "could not reach the server" {
		t.Errorf("expected fallback message, got %q", got)
	}
}

// TestIsUnauthorized tests the 401 classifier
func TestIsUnauthorized(t *testing.T) {
	if !IsUnauthorized(&APIError{StatusCode: http.StatusUnauthorized}) {
		t.Error("expected 401 to classify as unauthorized")
	}
	if IsUnauthorized(&APIError{StatusCode: http.StatusForbidden}) {
		t.Error("403 is not unauthorized")
	}
	if IsUnauthorized(errors.New("boom")) {
		t.Error("plain errors are not unauthorized")
	}
}

// TestDo_TokenSourceConsultedPerRequest tests that the bearer header always
// reflects the token source's current value
func TestDo_TokenSourceConsultedPerRequest(t *testing.T) {
	var seen []string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]interface{}{"data": map[string]string{"id": "u1"}})
	}))
	defer api.Close()

	token := ""
	c := New(api.URL)
	c.SetTokenSource(func() string { return token })

	c.Me() // no token yet
	token = "tok-1"
	c.Me()
	token = "tok-2"
	c.Me()

	want := []string{"", "Bearer tok-1", "Bearer tok-2"}
	if len(seen) != len(want) {
		t.Fatalf("expected %d requests, got %d", len(want), len(seen))
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("request %d: expected header %q, got %q", i, want[i], seen[i])
		}
	}
}

// TestDo_NoTokenSourceSendsNoHeader tests the unauthenticated default
func TestDo_NoTokenSourceSendsNoHeader(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("expected no Authorization header, got %q", r.Header.Get("Authorization"))
		}
		json.NewEncoder(w).Encode(PropertyPage{})
	}))
	defer api.Close()

	c := New(api.URL)
	if _, err := c.ListProperties(ListFilters{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// TestListFilters_Query tests the query string builder
func TestListFilters_Query(t *testing.T) {
	cases := []struct {
		filters ListFilters
		want    string
	}{
		{ListFilters{}, ""},
		{ListFilters{City: "Lahore"}, "?city=Lahore"},
		{ListFilters{City: "Lahore", MinRent: 20000}, "?city=Lahore&min_rent=20000"},
		{ListFilters{Bedrooms: 3, Page: 2}, "?bedrooms=3&page=2"},
		{ListFilters{Page: 1}, ""}, // first page is the default
		{ListFilters{City: "DHA Phase 6"}, "?city=DHA+Phase+6"},
		{ListFilters{Type: "house", City: "Johar Town"}, "?city=Johar+Town&type=house"},
	}

	for _, tc := range cases {
		if got := tc.filters.query(); got != tc.want {
			t.Errorf("%+v: expected %q, got %q", tc.filters, tc.want, got)
		}
	}
}

// TestListProperties_EscapesFilterValues tests that multi-word filter values
// reach the server intact
func TestListProperties_EscapesFilterValues(t *testing.T) {
	var gotCity, gotType string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCity = r.URL.Query().Get("city")
		gotType = r.URL.Query().Get("type")
		json.NewEncoder(w).Encode(PropertyPage{Page: 1, Limit: 20})
	}))
	defer api.Close()

	c := New(api.URL)
	if _, err := c.ListProperties(ListFilters{City: "DHA Phase 6", Type: "house"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotCity != "DHA Phase 6" {
		t.Errorf("expected city to survive encoding, got %q", gotCity)
	}
	if gotType != "house" {
		t.Errorf("expected type filter, got %q", gotType)
	}
}
