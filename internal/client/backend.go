package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"wompi-harness/internal/apperr"
)

// TokenSource supplies the bearer token for authenticated calls.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// RequestOptions tweak a single request. Headers are merged over the JSON
// defaults; SkipAuth drops the bearer token (webhook simulation).
type RequestOptions struct {
	SkipAuth bool
	Headers  map[string]string
}

// BackendClient talks to the payment backend's /api surface. Responses decode
// into out; failures come back normalized.
type BackendClient interface {
	Get(ctx context.Context, endpoint string, out any, opts *RequestOptions) error
	Post(ctx context.Context, endpoint string, body, out any, opts *RequestOptions) error
	Put(ctx context.Context, endpoint string, body, out any, opts *RequestOptions) error
	Delete(ctx context.Context, endpoint string, out any, opts *RequestOptions) error
}

type backendClientImpl struct {
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
}

func NewBackendClient(baseURL string, tokens TokenSource) BackendClient {
	return &backendClientImpl{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL: baseURL,
		tokens:  tokens,
	}
}

func (c *backendClientImpl) Get(ctx context.Context, endpoint string, out any, opts *RequestOptions) error {
	return c.request(ctx, http.MethodGet, endpoint, nil, out, opts)
}

func (c *backendClientImpl) Post(ctx context.Context, endpoint string, body, out any, opts *RequestOptions) error {
	return c.request(ctx, http.MethodPost, endpoint, body, out, opts)
}

func (c *backendClientImpl) Put(ctx context.Context, endpoint string, body, out any, opts *RequestOptions) error {
	return c.request(ctx, http.MethodPut, endpoint, body, out, opts)
}

func (c *backendClientImpl) Delete(ctx context.Context, endpoint string, out any, opts *RequestOptions) error {
	return c.request(ctx, http.MethodDelete, endpoint, nil, out, opts)
}

func (c *backendClientImpl) request(ctx context.Context, method, endpoint string, body, out any, opts *RequestOptions) error {
	if opts == nil {
		opts = &RequestOptions{}
	}

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api"+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("http new request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	if !opts.SkipAuth {
		token, err := c.tokens.Token(ctx)
		if err != nil || token == "" {
			// Fail before issuing the request.
			return apperr.Normalize(errors.New("No authentication token available"))
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperr.Normalize(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.Normalize(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var data map[string]any
		json.Unmarshal(respBody, &data)

		message := "Request failed"
		if m, ok := data["error"].(string); ok && m != "" {
			message = m
		} else if m, ok := data["message"].(string); ok && m != "" {
			message = m
		}

		return apperr.Normalize(&apperr.HTTPError{
			Status:  resp.StatusCode,
			Message: message,
			Data:    data,
		})
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}
