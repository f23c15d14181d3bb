// Package guard enforces authentication on the client's outgoing traffic and
// navigation. The request guard decorates HTTP calls with the bearer token
// and transparently renews it once on rejection; the route guard decides
// whether a protected screen may open.
package guard

import (
	"bytes"
	"io"
	"net/http"
	"strings"

	"github.com/primesecret/authgate/internal/client/session"
	"github.com/primesecret/authgate/internal/common"
)

// Client wraps an http.Client with bearer injection and a single
// renew-and-retry on 401/403 responses.
//
// Requests to the auth endpoints themselves pass through untouched, so a
// login or renewal call can never recurse into another renewal.
type Client struct {
	http          *http.Client
	session       *session.Session
	onAuthFailure func()
}

// NewClient builds a guarded client. onAuthFailure runs after a failed
// renewal forced a logout; callers use it to navigate to the landing screen.
func NewClient(h *http.Client, s *session.Session, onAuthFailure func()) *Client {
	return &Client{http: h, session: s, onAuthFailure: onAuthFailure}
}

func rejected(status int) bool {
	return status == http.StatusUnauthorized || status == http.StatusForbidden
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if strings.HasPrefix(req.URL.Path, common.AuthPathPrefix) {
		return c.http.Do(req)
	}

	if token := c.session.AccessToken(); token != "" {
		req.Header.Set("Authorization", common.TokenTypeBearer+" "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if !rejected(resp.StatusCode) {
		return resp, nil
	}

	// Buffer the rejection body so it can be handed back if the retry never
	// happens.
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))

	if err := c.session.Renew(req.Context()); err != nil {
		_ = c.session.Logout(req.Context())
		if c.onAuthFailure != nil {
			c.onAuthFailure()
		}
		return resp, nil
	}

	retry, err := cloneRequest(req)
	if err != nil {
		return resp, nil
	}
	retry.Header.Set("Authorization", common.TokenTypeBearer+" "+c.session.AccessToken())

	// One retry only; a second rejection is returned as-is.
	return c.http.Do(retry)
}

// cloneRequest rebuilds req so it can be sent again. Requests with a
// non-rewindable body cannot be retried.
func cloneRequest(req *http.Request) (*http.Request, error) {
	clone := req.Clone(req.Context())
	if req.Body == nil || req.GetBody == nil {
		if req.Body != nil {
			return nil, http.ErrBodyReadAfterClose
		}
		return clone, nil
	}

	body, err := req.GetBody()
	if err != nil {
		return nil, err
	}
	clone.Body = body
	return clone, nil
}
