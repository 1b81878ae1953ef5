package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/dom/mini-crm/internal/auth"
	"github.com/dom/mini-crm/internal/domain"
	"github.com/dom/mini-crm/internal/repository"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// UserBuilder creates test users with a builder pattern
type UserBuilder struct {
	name     string
	email    string
	password string
}

// NewUserBuilder creates a new UserBuilder with a unique email
func NewUserBuilder() *UserBuilder {
	suffix := uuid.New().String()[:8]
	return &UserBuilder{
		name:     "Test User " + suffix,
		email:    fmt.Sprintf("user_%s@example.com", suffix),
		password: "testpassword123",
	}
}

func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.name = name
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.email = email
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.password = password
	return b
}

// Build stores the user and returns it with the raw password
func (b *UserBuilder) Build(t *testing.T, users repository.UserRepository) (*domain.User, string) {
	t.Helper()

	hash, err := auth.HashPassword(b.password)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &domain.User{
		Name:         b.name,
		Email:        b.email,
		PasswordHash: hash,
	}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user, b.password
}

// AuthResponse matches the register and login response bodies
type AuthResponse struct {
	Message      string      `json:"message"`
	User         domain.User `json:"user"`
	Token        string      `json:"token"`
	RefreshToken string      `json:"refresh_token"`
}

// BuildAndAuthenticate registers the user through the API
func (b *UserBuilder) BuildAndAuthenticate(t *testing.T, ts *TestServer) *AuthResponse {
	t.Helper()

	resp := PostJSON(t, ts.URL("/api/auth/register"), "", map[string]string{
		"name":     b.name,
		"email":    b.email,
		"password": b.password,
	})
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}

	var authResp AuthResponse
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return &authResp
}

// CustomerBuilder creates test customers with a builder pattern
type CustomerBuilder struct {
	name     string
	phone    string
	tags     []string
	notes    string
	followUp *time.Time
}

func NewCustomerBuilder() *CustomerBuilder {
	return &CustomerBuilder{
		name:  "Customer " + uuid.New().String()[:8],
		phone: "532 123 45 67",
		tags:  []string{},
	}
}

func (b *CustomerBuilder) WithName(name string) *CustomerBuilder {
	b.name = name
	return b
}

func (b *CustomerBuilder) WithPhone(phone string) *CustomerBuilder {
	b.phone = phone
	return b
}

func (b *CustomerBuilder) WithTags(tags ...string) *CustomerBuilder {
	b.tags = tags
	return b
}

func (b *CustomerBuilder) WithNotes(notes string) *CustomerBuilder {
	b.notes = notes
	return b
}

func (b *CustomerBuilder) WithFollowUp(day time.Time) *CustomerBuilder {
	b.followUp = &day
	return b
}

// Build stores the customer for owner
func (b *CustomerBuilder) Build(t *testing.T, customers repository.CustomerRepository, owner *domain.User) *domain.Customer {
	t.Helper()

	customer := &domain.Customer{
		UserID: owner.ID,
		Name:   b.name,
		Phone:  b.phone,
		Tags:   b.tags,
		Notes:  b.notes,
	}
	if b.followUp != nil {
		day := datatypes.Date(*b.followUp)
		customer.FollowUpDate = &day
	}

	if err := customers.Create(context.Background(), customer); err != nil {
		t.Fatalf("failed to create customer: %v", err)
	}
	return customer
}

// PostJSON sends body as JSON, with a bearer token when token is non-empty
func PostJSON(t *testing.T, url, token string, body interface{}) *http.Response {
	t.Helper()
	return DoJSON(t, http.MethodPost, url, token, body)
}

// DoJSON sends an HTTP request with an optional JSON body and bearer token
func DoJSON(t *testing.T, method, url, token string, body interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, url, err)
	}
	return resp
}
