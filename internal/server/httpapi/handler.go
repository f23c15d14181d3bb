// Package httpapi exposes the auth service over JSON-over-HTTP endpoints and
// hosts the bearer-protected API surface.
package httpapi

import (
	"errors"
	"net/http"

	"github.com/primesecret/authgate/internal/common"
	"github.com/primesecret/authgate/internal/logging"
	"github.com/primesecret/authgate/internal/server/services"
)

type Handler struct {
	serv   *services.AuthService
	logger logging.Logger
}

func NewHandler(serv *services.AuthService, logger logging.Logger) *Handler {
	return &Handler{serv: serv, logger: logger.With("module", "httpapi")}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type tokenPairResponse struct {
	AccessToken      string `json:"accessToken"`
	RefreshToken     string `json:"refreshToken"`
	TokenType        string `json:"tokenType"`
	ExpiresIn        int64  `json:"expiresIn"`
	RefreshExpiresIn int64  `json:"refreshExpiresIn"`
}

func toTokenPairResponse(pair *services.TokenPair) tokenPairResponse {
	return tokenPairResponse{
		AccessToken:      pair.AccessToken,
		RefreshToken:     pair.RefreshToken,
		TokenType:        pair.TokenType,
		ExpiresIn:        pair.ExpiresIn,
		RefreshExpiresIn: pair.RefreshExpiresIn,
	}
}

// errStatus maps service errors to HTTP status codes per the endpoint table.
func errStatus(err error) int {
	switch {
	case errors.Is(err, common.ErrValidation), errors.Is(err, common.ErrEmailTaken):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrInvalidCredentials),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	req, err := decode[registerRequest](r.Body)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pair, err := h.serv.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		h.logger.Warn(r.Context(), "register failed", "error", err)
		writeMessage(w, errStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toTokenPairResponse(pair))
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := decode[loginRequest](r.Body)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pair, err := h.serv.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Warn(r.Context(), "login failed", "email", req.Email, "error", err)
		writeMessage(w, errStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toTokenPairResponse(pair))
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	req, err := decode[refreshRequest](r.Body)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RefreshToken == "" {
		writeMessage(w, http.StatusBadRequest, "refresh token is required")
		return
	}

	pair, err := h.serv.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.logger.Warn(r.Context(), "refresh failed", "error", err)
		writeMessage(w, errStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, toTokenPairResponse(pair))
}

// Logout never fails from the caller's perspective: revocation errors are
// logged and the success message is returned regardless.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	req, err := decode[refreshRequest](r.Body)
	if err == nil {
		if err := h.serv.Logout(r.Context(), req.RefreshToken); err != nil {
			h.logger.Warn(r.Context(), "logout revocation failed", "error", err)
		}
	}

	writeMessage(w, http.StatusOK, "Logout successful")
}

// AuditLog accepts an arbitrary JSON event from an authenticated caller and
// records it with the caller's identity, address, and user agent.
func (h *Handler) AuditLog(w http.ResponseWriter, r *http.Request) {
	event, err := decode[map[string]any](r.Body)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := ClaimsFromContext(r.Context())
	h.logger.Info(r.Context(), "audit event",
		"uid", claims.UserID,
		"email", claims.Email,
		"remote", r.RemoteAddr,
		"ua", r.UserAgent(),
		"event", event,
	)

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
