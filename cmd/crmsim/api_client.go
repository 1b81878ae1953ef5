package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// TokenRefreshHeader is the response header carrying a replacement access
// token.
const TokenRefreshHeader = "X-Token-Refresh"

// APIClient talks to the CRM backend and keeps the session current: a token
// delivered in X-Token-Refresh replaces the stored access token.
type APIClient struct {
	baseURL    string
	httpClient *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
	rotations    int
}

func NewAPIClient(baseURL string) *APIClient {
	return &APIClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Response types matching backend

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type AuthResponse struct {
	Message      string `json:"message"`
	User         User   `json:"user"`
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token"`
}

type Customer struct {
	ID           int64    `json:"id"`
	Name         string   `json:"name"`
	Phone        string   `json:"phone"`
	Tags         []string `json:"tags"`
	Notes        string   `json:"notes"`
	FollowUpDate *string  `json:"follow_up_date"`
	WhatsAppLink string   `json:"whatsapp_link"`
}

type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string `json:"error"`
	Code    string `json:"code"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("status %d: %s (%s)", e.Status, e.Message, e.Code)
	}
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

func (c *APIClient) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken
}

func (c *APIClient) Rotations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rotations
}

func (c *APIClient) Register(name, email, password string) (*User, error) {
	var result AuthResponse
	err := c.do(http.MethodPost, "/api/auth/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, http.StatusCreated, &result)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	c.setTokens(result.Token, result.RefreshToken)
	return &result.User, nil
}

func (c *APIClient) Login(email, password string) (*User, error) {
	var result AuthResponse
	err := c.do(http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, http.StatusOK, &result)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	c.setTokens(result.Token, result.RefreshToken)
	return &result.User, nil
}

func (c *APIClient) Me() (*User, error) {
	var result struct {
		User User `json:"user"`
	}
	if err := c.do(http.MethodGet, "/api/auth/me", nil, http.StatusOK, &result); err != nil {
		return nil, fmt.Errorf("me: %w", err)
	}
	return &result.User, nil
}

func (c *APIClient) Sessions() ([]Session, error) {
	var result struct {
		Sessions []Session `json:"sessions"`
	}
	if err := c.do(http.MethodGet, "/api/auth/sessions", nil, http.StatusOK, &result); err != nil {
		return nil, fmt.Errorf("sessions: %w", err)
	}
	return result.Sessions, nil
}

// Refresh trades the stored refresh token for a new access token.
func (c *APIClient) Refresh() error {
	c.mu.Lock()
	refreshToken := c.refreshToken
	c.mu.Unlock()

	var result struct {
		Token string `json:"token"`
	}
	err := c.do(http.MethodPost, "/api/auth/refresh", map[string]string{"refresh_token": refreshToken}, http.StatusOK, &result)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	c.setTokens(result.Token, refreshToken)
	return nil
}

func (c *APIClient) Logout(all bool) error {
	c.mu.Lock()
	refreshToken := c.refreshToken
	c.mu.Unlock()

	err := c.do(http.MethodPost, "/api/auth/logout", map[string]interface{}{
		"refresh_token": refreshToken,
		"all":           all,
	}, http.StatusOK, nil)
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	c.setTokens("", "")
	return nil
}

func (c *APIClient) CreateCustomer(name, phone string, tags []string, followUp string) (*Customer, error) {
	body := map[string]interface{}{
		"name":  name,
		"phone": phone,
		"tags":  tags,
	}
	if followUp != "" {
		body["follow_up_date"] = followUp
	}

	var result struct {
		Customer Customer `json:"customer"`
	}
	if err := c.do(http.MethodPost, "/api/customers", body, http.StatusCreated, &result); err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return &result.Customer, nil
}

func (c *APIClient) FollowUps(date string) ([]Customer, string, error) {
	path := "/api/customers/followups"
	if date != "" {
		path += "?date=" + date
	}

	var result struct {
		FollowUps []Customer `json:"followups"`
		Date      string     `json:"date"`
	}
	if err := c.do(http.MethodGet, path, nil, http.StatusOK, &result); err != nil {
		return nil, "", fmt.Errorf("followups: %w", err)
	}
	return result.FollowUps, result.Date, nil
}

func (c *APIClient) setTokens(access, refresh string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.accessToken = access
	c.refreshToken = refresh
}

func (c *APIClient) do(method, path string, body interface{}, wantStatus int, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return err
	}

	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if rotated := resp.Header.Get(TokenRefreshHeader); rotated != "" {
		c.mu.Lock()
		c.accessToken = rotated
		c.rotations++
		c.mu.Unlock()
	}

	if resp.StatusCode != wantStatus {
		apiErr := &APIError{Status: resp.StatusCode}
		bodyBytes, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(bodyBytes, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = string(bodyBytes)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
