package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIClient_AdoptsRotatedToken(t *testing.T) {
	var seenAuth []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenAuth = append(seenAuth, r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/api/auth/login":
			json.NewEncoder(w).Encode(AuthResponse{
				Message:      "Login successful",
				User:         User{ID: 1, Email: "ana@example.com"},
				Token:        "first",
				RefreshToken: "r1",
			})
		case "/api/auth/me":
			w.Header().Set(TokenRefreshHeader, "second")
			json.NewEncoder(w).Encode(map[string]User{"user": {ID: 1}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	client := NewAPIClient(srv.URL)
	_, err := client.Login("ana@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "first", client.Token())

	_, err = client.Me()
	require.NoError(t, err)
	assert.Equal(t, "second", client.Token())
	assert.Equal(t, 1, client.Rotations())

	_, err = client.Me()
	require.NoError(t, err)
	assert.Equal(t, []string{"", "Bearer first", "Bearer second"}, seenAuth)
}

func TestAPIClient_ErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Invalid credentials","code":"invalid_credentials"}`))
	}))
	defer srv.Close()

	_, err := NewAPIClient(srv.URL).Login("ana@example.com", "wrong")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
	assert.Equal(t, "invalid_credentials", apiErr.Code)
	assert.Equal(t, "Invalid credentials", apiErr.Message)
}

func TestAPIClient_RefreshAndLogout(t *testing.T) {
	var logoutBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/register":
			w.WriteHeader(http.StatusCreated)
			json.NewEncoder(w).Encode(AuthResponse{Token: "a1", RefreshToken: "r1"})
		case "/api/auth/refresh":
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["refresh_token"] != "r1" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(map[string]string{"token": "a2"})
		case "/api/auth/logout":
			json.NewDecoder(r.Body).Decode(&logoutBody)
			w.Write([]byte(`{"message":"Logged out successfully"}`))
		}
	}))
	defer srv.Close()

	client := NewAPIClient(srv.URL)
	_, err := client.Register("Ana", "ana@example.com", "secret123")
	require.NoError(t, err)

	require.NoError(t, client.Refresh())
	assert.Equal(t, "a2", client.Token())

	require.NoError(t, client.Logout(true))
	assert.Equal(t, "r1", logoutBody["refresh_token"])
	assert.Equal(t, true, logoutBody["all"])
	assert.Empty(t, client.Token())
}
