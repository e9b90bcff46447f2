package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// requestTimeout bounds every API call; a timed-out request surfaces
// through the same error path as any other failure
const requestTimeout = 10 * time.Second

// Client represents an HTTP client for the PakProperty API.
//
// Authentication is pulled from a token source on every request, so the
// client itself never holds credential state.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokenSource func() string
}

// New creates a new API client
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// SetHTTPClient sets a custom HTTP client
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// SetTokenSource installs the function consulted for the bearer token on
// every outgoing request. A nil source or empty token sends no header.
func (c *Client) SetTokenSource(source func() string) {
	c.tokenSource = source
}

// APIError is a failure response decoded at the HTTP boundary
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is a 401 from the API
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized
}

// ErrorMessage extracts the server-provided message from err, or returns
// fallback for transport failures and malformed bodies
func ErrorMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// decodeAPIError turns a non-2xx response into an APIError, falling back
// to a generic message when the body is not the expected {"error": ...}
func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err == nil {
		var payload struct {
			Error string `json:"error"`
		}
		if jsonErr := json.Unmarshal(body, &payload); jsonErr == nil {
			apiErr.Message = payload.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("request failed (status %d)", resp.StatusCode)
	}
	return apiErr
}

// do issues an API request and decodes a JSON response into out (if non-nil)
func (c *Client) do(method, path string, body, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokenSource != nil {
		if token := c.tokenSource(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// User represents an account as returned by the API
type User struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Phone      string `json:"phone"`
	Role       string `json:"role"`
	IsVerified bool   `json:"is_verified"`
	IsActive   bool   `json:"is_active"`
	CreatedAt  string `json:"created_at"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Role      string `json:"role"`
}

// LoginResponse represents the login/registration response
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// userEnvelope wraps endpoints that respond {"data": <user>}
type userEnvelope struct {
	Data User `json:"data"`
}

// Login authenticates and returns a bearer token with the user record
func (c *Client) Login(email, password string) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(http.MethodPost, "/api/auth/login", LoginRequest{Email: email, Password: password}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and returns a bearer token with the user record
func (c *Client) Register(req RegisterRequest) (*LoginResponse, error) {
	var resp LoginResponse
	if err := c.do(http.MethodPost, "/api/auth/register", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me re-validates the current token and returns the account it belongs to
func (c *Client) Me() (*User, error) {
	var envelope userEnvelope
	if err := c.do(http.MethodGet, "/api/auth/me", nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

// ProfileUpdate carries partial profile fields; nil fields are untouched
type ProfileUpdate struct {
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`
}

// UpdateProfile updates profile fields and returns the stored record
func (c *Client) UpdateProfile(update ProfileUpdate) (*User, error) {
	var envelope userEnvelope
	if err := c.do(http.MethodPut, "/api/auth/profile", update, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Data, nil
}

// ChangePassword replaces the account password
func (c *Client) ChangePassword(currentPassword, newPassword string) error {
	body := map[string]string{
		"currentPassword": currentPassword,
		"newPassword":     newPassword,
	}
	return c.do(http.MethodPut, "/api/auth/change-password", body, nil)
}

// ForgotPassword requests a password reset email
func (c *Client) ForgotPassword(email string) error {
	return c.do(http.MethodPost, "/api/auth/forgot-password", map[string]string{"email": email}, nil)
}

// ResetPassword sets a new password using a reset token
func (c *Client) ResetPassword(resetToken, password string) error {
	return c.do(http.MethodPost, "/api/auth/reset-password/"+resetToken, map[string]string{"password": password}, nil)
}

// VerifyEmail confirms an email address using a verification token
func (c *Client) VerifyEmail(verifyToken string) error {
	return c.do(http.MethodGet, "/api/auth/verify-email/"+verifyToken, nil, nil)
}

// ResendVerification re-issues the verification email for the current user
func (c *Client) ResendVerification() error {
	return c.do(http.MethodPost, "/api/auth/resend-verification", nil, nil)
}

// Property represents a rental listing as returned by the API
type Property struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Type         string `json:"type"`
	City         string `json:"city"`
	Area         string `json:"area"`
	RentAmount   int64  `json:"rent_amount"`
	RentCurrency string `json:"rent_currency"`
	Bedrooms     int    `json:"bedrooms"`
	Bathrooms    int    `json:"bathrooms"`
	Status       string `json:"status"`
	IsFeatured   bool   `json:"is_featured"`
	Views        int64  `json:"views"`
	OwnerID      string `json:"owner_id"`
	CreatedAt    string `json:"created_at"`
}

// PropertyPage is one page of listing results
type PropertyPage struct {
	Data  []Property `json:"data"`
	Total int64      `json:"total"`
	Page  int        `json:"page"`
	Limit int        `json:"limit"`
}

// ListFilters narrows a listing search; zero values are omitted
type ListFilters struct {
	City     string
	Type     string
	MinRent  int64
	MaxRent  int64
	Bedrooms int
	Page     int
}

func (f ListFilters) query() string {
	q := url.Values{}
	if f.City != "" {
		q.Set("city", f.City)
	}
	if f.Type != "" {
		q.Set("type", f.Type)
	}
	if f.MinRent > 0 {
		q.Set("min_rent", strconv.FormatInt(f.MinRent, 10))
	}
	if f.MaxRent > 0 {
		q.Set("max_rent", strconv.FormatInt(f.MaxRent, 10))
	}
	if f.Bedrooms > 0 {
		q.Set("bedrooms", strconv.Itoa(f.Bedrooms))
	}
	if f.Page > 1 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

// ListProperties returns a page of available listings
func (c *Client) ListProperties(filters ListFilters) (*PropertyPage, error) {
	var page PropertyPage
	if err := c.do(http.MethodGet, "/api/properties"+filters.query(), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// SavedProperty links the current user to a bookmarked listing
type propertiesEnvelope struct {
	Data []Property `json:"data"`
}

// ListMine returns every listing owned by the current user, any status
func (c *Client) ListMine() ([]Property, error) {
	var envelope propertiesEnvelope
	if err := c.do(http.MethodGet, "/api/my-properties", nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

type SavedProperty struct {
	ID         string   `json:"id"`
	PropertyID string   `json:"property_id"`
	Property   Property `json:"property"`
	CreatedAt  string   `json:"created_at"`
}

// savedEnvelope wraps the saved-property list response
type savedEnvelope struct {
	Data []SavedProperty `json:"data"`
}

// ListSaved returns the current user's bookmarked listings
func (c *Client) ListSaved() ([]SavedProperty, error) {
	var envelope savedEnvelope
	if err := c.do(http.MethodGet, "/api/saved-properties", nil, &envelope); err != nil {
		return nil, err
	}
	return envelope.Data, nil
}

// SaveProperty bookmarks a listing
func (c *Client) SaveProperty(propertyID string) error {
	return c.do(http.MethodPost, "/api/saved-properties/"+propertyID, nil, nil)
}

// UnsaveProperty removes a bookmark
func (c *Client) UnsaveProperty(propertyID string) error {
	return c.do(http.MethodDelete, "/api/saved-properties/"+propertyID, nil, nil)
}

// Inquiry represents a message between a prospective tenant and an owner
type Inquiry struct {
	ID         string   `json:"id"`
	PropertyID string   `json:"property_id"`
	Message    string   `json:"message"`
	Status     string   `json:"status"`
	Reply      string   `json:"reply"`
	Property   Property `json:"property"`
	CreatedAt  string   `json:"created_at"`
}

// InquiryList groups inquiries by direction
type InquiryList struct {
	Sent     []Inquiry `json:"sent"`
	Received []Inquiry `json:"received"`
}

// ListInquiries returns inquiries the user sent and received
func (c *Client) ListInquiries() (*InquiryList, error) {
	var list InquiryList
	if err := c.do(http.MethodGet, "/api/inquiries", nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// CreateInquiry sends a message about a listing to its owner
func (c *Client) CreateInquiry(propertyID, message, phone string) error {
	body := map[string]string{"message": message}
	if phone != "" {
		body["phone"] = phone
	}
	return c.do(http.MethodPost, "/api/properties/"+propertyID+"/inquiries", body, nil)
}
