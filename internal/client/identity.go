package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"wompi-harness/internal/apperr"
	"wompi-harness/internal/config"
)

// IdentityClient wraps the identity provider's REST accounts API.
type IdentityClient interface {
	SignUp(ctx context.Context, email, password string) (*AuthResult, error)
	SignIn(ctx context.Context, email, password string) (*AuthResult, error)
}

// AuthResult is the provider's answer to a successful sign-up or sign-in.
type AuthResult struct {
	UserID    string
	Email     string
	IDToken   string
	ExpiresIn time.Duration
}

type identityClientImpl struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewIdentityClient(cfg *config.Identity) IdentityClient {
	return &identityClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

func (c *identityClientImpl) SignUp(ctx context.Context, email, password string) (*AuthResult, error) {
	return c.accounts(ctx, "accounts:signUp", email, password)
}

func (c *identityClientImpl) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	return c.accounts(ctx, "accounts:signInWithPassword", email, password)
}

func (c *identityClientImpl) accounts(ctx context.Context, action, email, password string) (*AuthResult, error) {
	payload, err := json.Marshal(map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal auth payload: %w", err)
	}

	url := fmt.Sprintf("%s/%s?key=%s", c.baseURL, action, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, fmt.Errorf("http new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Normalize(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read auth response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, providerError(body)
	}

	var result struct {
		LocalID   string `json:"localId"`
		Email     string `json:"email"`
		IDToken   string `json:"idToken"`
		ExpiresIn string `json:"expiresIn"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode auth response: %w", err)
	}

	expires := time.Hour
	if secs, err := strconv.Atoi(result.ExpiresIn); err == nil && secs > 0 {
		expires = time.Duration(secs) * time.Second
	}

	return &AuthResult{
		UserID:    result.LocalID,
		Email:     result.Email,
		IDToken:   result.IDToken,
		ExpiresIn: expires,
	}, nil
}

// providerCodes translates the REST API's error identifiers into the auth/
// codes the normalizer's table is keyed by.
var providerCodes = map[string]string{
	"EMAIL_EXISTS":                "auth/email-already-in-use",
	"EMAIL_NOT_FOUND":             "auth/user-not-found",
	"INVALID_PASSWORD":            "auth/wrong-password",
	"INVALID_LOGIN_CREDENTIALS":   "auth/wrong-password",
	"WEAK_PASSWORD":               "auth/weak-password",
	"INVALID_EMAIL":               "auth/invalid-email",
	"TOO_MANY_ATTEMPTS_TRY_LATER": "auth/too-many-requests",
}

func providerError(body []byte) error {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	json.Unmarshal(body, &envelope)

	raw := envelope.Error.Message
	if raw == "" {
		raw = "UNKNOWN"
	}

	// "WEAK_PASSWORD : Password should be at least 6 characters" style
	// messages carry detail after the identifier.
	identifier := strings.TrimSpace(strings.SplitN(raw, ":", 2)[0])

	code, ok := providerCodes[identifier]
	if !ok {
		code = "auth/" + strings.ToLower(strings.ReplaceAll(identifier, "_", "-"))
	}

	return &apperr.IdentityError{Code: code, Message: raw}
}
