package app

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/socialite/pkg/oauth"
)

type errorResponse struct {
	Error string `json:"error"`
}

type userResponse struct {
	Provider       string         `json:"provider"`
	ID             string         `json:"id"`
	Nickname       string         `json:"nickname"`
	Name           string         `json:"name"`
	Email          *string        `json:"email"`
	Avatar         *string        `json:"avatar"`
	ApprovedScopes []string       `json:"approved_scopes,omitempty"`
	ExpiresIn      int64          `json:"expires_in,omitempty"`
	Raw            map[string]any `json:"raw"`
}

// redirect sends the browser to the provider's consent screen.
func (a *App) redirect(w http.ResponseWriter, r *http.Request) {
	client, err := a.manager.Driver(chi.URLParam(r, "driver"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	if err := client.Redirect(w, r); err != nil {
		a.fail(w, r, err)
	}
}

// callback completes the flow and renders the normalized user.
// Tokens are never echoed back.
func (a *App) callback(w http.ResponseWriter, r *http.Request) {
	client, err := a.manager.Driver(chi.URLParam(r, "driver"))
	if err != nil {
		a.fail(w, r, err)
		return
	}

	user, err := client.User(w, r)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	a.logger.InfoContext(r.Context(), "user authenticated",
		slog.String("provider", client.Name()),
		slog.String("user_id", user.ID),
	)

	writeJSON(w, http.StatusOK, userResponse{
		Provider:       client.Name(),
		ID:             user.ID,
		Nickname:       user.Nickname,
		Name:           user.Name,
		Email:          user.Email,
		Avatar:         user.Avatar,
		ApprovedScopes: user.ApprovedScopes,
		ExpiresIn:      user.ExpiresIn,
		Raw:            user.Raw,
	})
}

func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		a.logger.ErrorContext(r.Context(), "oauth flow failed", slog.Any("error", err))
	} else {
		a.logger.WarnContext(r.Context(), "oauth flow rejected", slog.Any("error", err))
	}
	writeJSON(w, status, errorResponse{Error: http.StatusText(status)})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, oauth.ErrUnknownDriver):
		return http.StatusNotFound
	case errors.Is(err, oauth.ErrInvalidState),
		errors.Is(err, oauth.ErrMissingCode),
		errors.Is(err, oauth.ErrAuthorizationDenied):
		return http.StatusBadRequest
	case errors.Is(err, oauth.ErrFetchFailed),
		errors.Is(err, oauth.ErrNilResponse),
		errors.Is(err, oauth.ErrRequestFailed),
		errors.Is(err, oauth.ErrDecodeFailed),
		errors.Is(err, oauth.ErrMissingAccessToken):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
