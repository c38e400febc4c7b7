package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wompi-harness/internal/apperr"
	"wompi-harness/internal/config"
)

func newIdentityTestServer(t *testing.T, handler http.HandlerFunc) (IdentityClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	c := NewIdentityClient(&config.Identity{BaseURL: srv.URL, APIKey: "test-key"})
	return c, srv
}

func TestIdentityClientSignUp(t *testing.T) {
	var gotPath, gotKey string
	var gotBody map[string]any
	c, srv := newIdentityTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]string{
			"localId":   "uid-1",
			"email":     "ana@example.com",
			"idToken":   "jwt-token",
			"expiresIn": "3600",
		})
	})
	defer srv.Close()

	res, err := c.SignUp(context.Background(), "ana@example.com", "Test1234*")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if gotPath != "/accounts:signUp" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("key = %q", gotKey)
	}
	if gotBody["returnSecureToken"] != true {
		t.Errorf("returnSecureToken = %v", gotBody["returnSecureToken"])
	}
	if res.UserID != "uid-1" || res.IDToken != "jwt-token" {
		t.Errorf("result = %+v", res)
	}
	if res.ExpiresIn != time.Hour {
		t.Errorf("ExpiresIn = %v, want 1h", res.ExpiresIn)
	}
}

func TestIdentityClientSignInPath(t *testing.T) {
	var gotPath string
	c, srv := newIdentityTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewEncoder(w).Encode(map[string]string{"localId": "uid-1", "idToken": "t"})
	})
	defer srv.Close()

	if _, err := c.SignIn(context.Background(), "ana@example.com", "pw"); err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	if gotPath != "/accounts:signInWithPassword" {
		t.Errorf("path = %q", gotPath)
	}
}

func TestIdentityClientProviderErrors(t *testing.T) {
	tests := []struct {
		provider string
		wantCode string
	}{
		{"EMAIL_EXISTS", "auth/email-already-in-use"},
		{"EMAIL_NOT_FOUND", "auth/user-not-found"},
		{"INVALID_PASSWORD", "auth/wrong-password"},
		{"INVALID_LOGIN_CREDENTIALS", "auth/wrong-password"},
		{"WEAK_PASSWORD : Password should be at least 6 characters", "auth/weak-password"},
		{"INVALID_EMAIL", "auth/invalid-email"},
		{"TOO_MANY_ATTEMPTS_TRY_LATER", "auth/too-many-requests"},
		{"OPERATION_NOT_ALLOWED", "auth/operation-not-allowed"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			c, srv := newIdentityTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				fmt.Fprintf(w, `{"error":{"message":%q}}`, tt.provider)
			})
			defer srv.Close()

			_, err := c.SignIn(context.Background(), "ana@example.com", "pw")
			if err == nil {
				t.Fatal("SignIn() error = nil")
			}

			var idErr *apperr.IdentityError
			if !errors.As(err, &idErr) {
				t.Fatalf("error type = %T", err)
			}
			if idErr.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", idErr.Code, tt.wantCode)
			}
		})
	}
}

func TestIdentityClientEmptyProviderBody(t *testing.T) {
	c, srv := newIdentityTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	defer srv.Close()

	_, err := c.SignUp(context.Background(), "ana@example.com", "pw")
	var idErr *apperr.IdentityError
	if !errors.As(err, &idErr) {
		t.Fatalf("error type = %T", err)
	}
	if idErr.Code != "auth/unknown" {
		t.Errorf("Code = %q, want auth/unknown", idErr.Code)
	}
}
