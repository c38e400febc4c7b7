package handler

import (
	"context"
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"wompi-harness/internal/apperr"
	"wompi-harness/internal/client"
	"wompi-harness/internal/datagen"
	"wompi-harness/internal/dto"
	"wompi-harness/internal/identity"
)

type identityClientMock struct {
	SignUpFunc func(ctx context.Context, email, password string) (*client.AuthResult, error)
	SignInFunc func(ctx context.Context, email, password string) (*client.AuthResult, error)
}

func (m *identityClientMock) SignUp(ctx context.Context, email, password string) (*client.AuthResult, error) {
	return m.SignUpFunc(ctx, email, password)
}

func (m *identityClientMock) SignIn(ctx context.Context, email, password string) (*client.AuthResult, error) {
	return m.SignInFunc(ctx, email, password)
}

func okAuthResult(email string) *client.AuthResult {
	return &client.AuthResult{UserID: "uid-1", Email: email, IDToken: "tok", ExpiresIn: time.Hour}
}

func jsonContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
	return out
}

func newAuthHandler(mock *identityClientMock) *AuthHandler {
	sessions := identity.NewManager(mock)
	sessions.Start()
	return NewAuthHandler(sessions, datagen.New(rand.NewSource(1), "Test1234*"))
}

func TestRegisterFormSuggestsCredentials(t *testing.T) {
	h := newAuthHandler(&identityClientMock{})
	c, rec := jsonContext(t, http.MethodGet, "/register", "")

	if err := h.RegisterForm(c); err != nil {
		t.Fatalf("RegisterForm() error = %v", err)
	}
	got := decodeBody[dto.RegisterSuggestion](t, rec)
	if got.Email == "" || got.Password != "Test1234*" {
		t.Errorf("suggestion = %+v", got)
	}
}

func TestRegisterValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantMsg string
	}{
		{
			name:    "missing fields",
			body:    `{"email":"","password":""}`,
			wantMsg: "Por favor completa todos los campos",
		},
		{
			name:    "password mismatch",
			body:    `{"email":"a@b.co","password":"Test1234*","confirmPassword":"other"}`,
			wantMsg: "Las contraseñas no coinciden",
		},
		{
			name:    "short password",
			body:    `{"email":"a@b.co","password":"ab1","confirmPassword":"ab1"}`,
			wantMsg: "La contraseña debe tener al menos 6 caracteres",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newAuthHandler(&identityClientMock{})
			c, rec := jsonContext(t, http.MethodPost, "/register", tt.body)

			if err := h.Register(c); err != nil {
				t.Fatalf("Register() error = %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d", rec.Code)
			}
			got := decodeBody[dto.ErrorResponse](t, rec)
			if got.Error != tt.wantMsg {
				t.Errorf("error = %q, want %q", got.Error, tt.wantMsg)
			}
		})
	}
}

func TestRegisterSuccess(t *testing.T) {
	mock := &identityClientMock{
		SignUpFunc: func(ctx context.Context, email, password string) (*client.AuthResult, error) {
			return okAuthResult(email), nil
		},
	}
	h := newAuthHandler(mock)
	c, rec := jsonContext(t, http.MethodPost, "/register",
		`{"email":"ana@example.com","password":"Test1234*","confirmPassword":"Test1234*"}`)

	if err := h.Register(c); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	got := decodeBody[dto.SessionResponse](t, rec)
	if got.UserID != "uid-1" || got.Email != "ana@example.com" {
		t.Errorf("session = %+v", got)
	}
}

func TestLoginProviderError(t *testing.T) {
	mock := &identityClientMock{
		SignInFunc: func(ctx context.Context, email, password string) (*client.AuthResult, error) {
			return nil, &apperr.IdentityError{Code: "auth/wrong-password", Message: "INVALID_PASSWORD"}
		},
	}
	h := newAuthHandler(mock)
	c, rec := jsonContext(t, http.MethodPost, "/login",
		`{"email":"ana@example.com","password":"wrong"}`)

	if err := h.Login(c); err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
	got := decodeBody[dto.ErrorResponse](t, rec)
	if got.Error != "Contraseña incorrecta" || got.Code != "auth/wrong-password" {
		t.Errorf("error = %+v", got)
	}
}

func TestLogoutRedirectsHome(t *testing.T) {
	mock := &identityClientMock{
		SignInFunc: func(ctx context.Context, email, password string) (*client.AuthResult, error) {
			return okAuthResult(email), nil
		},
	}
	sessions := identity.NewManager(mock)
	sessions.Start()
	if _, err := sessions.SignIn(context.Background(), "ana@example.com", "pw"); err != nil {
		t.Fatal(err)
	}
	h := NewAuthHandler(sessions, datagen.New(rand.NewSource(1), "Test1234*"))

	c, rec := jsonContext(t, http.MethodPost, "/logout", "")
	if err := h.Logout(c); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}
	got := decodeBody[dto.RedirectResponse](t, rec)
	if got.Redirect != "/" {
		t.Errorf("redirect = %q", got.Redirect)
	}
	if sessions.Current() != nil {
		t.Error("session survived logout")
	}
}

func TestErrorJSON(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantStatus    int
		wantCanCancel bool
	}{
		{
			name:          "conflict exposes cancel affordance",
			err:           &apperr.AppError{Msg: "Ya existe un pago en proceso", Code: apperr.KindPaymentInProgress, Status: 409},
			wantStatus:    http.StatusConflict,
			wantCanCancel: true,
		},
		{
			name:       "network maps to bad gateway",
			err:        &apperr.AppError{Msg: "Error de conexión. Por favor verifica tu conexión a internet.", Code: apperr.KindNetwork},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "statusless unknown becomes 400",
			err:        &apperr.AppError{Msg: "boom", Code: apperr.KindUnknown},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := jsonContext(t, http.MethodPost, "/x", "")
			if err := errorJSON(c, tt.err); err != nil {
				t.Fatalf("errorJSON() error = %v", err)
			}
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			got := decodeBody[dto.ErrorResponse](t, rec)
			if got.CanCancel != tt.wantCanCancel {
				t.Errorf("canCancel = %v", got.CanCancel)
			}
		})
	}
}
