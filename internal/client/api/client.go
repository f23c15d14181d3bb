// Package api is the raw wire client for the Authgate HTTP API. It performs
// single requests and maps error responses to the shared sentinel errors; it
// holds no session state.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/primesecret/authgate/internal/common"
)

// TokenPair mirrors the token issuance response. Lifetimes are milliseconds;
// the caller converts them into absolute expiry against its own clock.
type TokenPair struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	TokenType        string `json:"tokenType"`
	ExpiresIn        int64  `json:"expiresIn"`
	RefreshExpiresIn int64  `json:"refreshExpiresIn"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// HTTPClient exposes the underlying client so callers issuing authenticated
// requests share the same transport and timeout.
func (c *Client) HTTPClient() *http.Client { return c.http }

func (c *Client) BaseURL() string { return c.baseURL }

type messageResponse struct {
	Message string `json:"message"`
}

func (c *Client) post(ctx context.Context, path string, body any, out any) (int, string, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return 0, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var msg messageResponse
		_ = json.NewDecoder(resp.Body).Decode(&msg)
		return resp.StatusCode, msg.Message, nil
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, "", fmt.Errorf("decode response: %w", err)
		}
	}
	return resp.StatusCode, "", nil
}

func (c *Client) Register(ctx context.Context, email, password, name string) (*TokenPair, error) {
	var pair TokenPair
	status, msg, err := c.post(ctx, "/api/auth/register",
		map[string]string{"email": email, "password": password, "name": name}, &pair)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusOK:
		return &pair, nil
	case status == http.StatusBadRequest && msg == common.ErrEmailTaken.Error():
		return nil, common.ErrEmailTaken
	case status == http.StatusBadRequest:
		return nil, common.ErrValidation
	default:
		return nil, fmt.Errorf("register: unexpected status %d: %s", status, msg)
	}
}

func (c *Client) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	var pair TokenPair
	status, msg, err := c.post(ctx, "/api/auth/login",
		map[string]string{"email": email, "password": password}, &pair)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
		return &pair, nil
	case http.StatusUnauthorized:
		return nil, common.ErrInvalidCredentials
	case http.StatusBadRequest:
		return nil, common.ErrValidation
	default:
		return nil, fmt.Errorf("login: unexpected status %d: %s", status, msg)
	}
}

func (c *Client) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	var pair TokenPair
	status, msg, err := c.post(ctx, "/api/auth/refresh-token",
		map[string]string{"refreshToken": refreshToken}, &pair)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusOK:
		return &pair, nil
	case status == http.StatusUnauthorized && msg == common.ErrTokenExpired.Error():
		return nil, common.ErrTokenExpired
	case status == http.StatusUnauthorized:
		return nil, common.ErrInvalidToken
	case status == http.StatusBadRequest:
		return nil, common.ErrNoRefreshToken
	default:
		return nil, fmt.Errorf("refresh: unexpected status %d: %s", status, msg)
	}
}

// Logout revokes the refresh token server-side. The endpoint always reports
// success; only transport failures surface as errors.
func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	_, _, err := c.post(ctx, "/api/auth/logout",
		map[string]string{"refreshToken": refreshToken}, nil)
	return err
}
