package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fieldstack/canvasser/internal/canvasser/service"
	"github.com/fieldstack/canvasser/pkg/httpx"
	"github.com/fieldstack/canvasser/pkg/salesdk"
	"github.com/fieldstack/canvasser/pkg/slogx"
)

// LoginHandler exchanges credentials for a bearer token.
type LoginHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Log in
//	@Description	Verifies email and password and returns a bearer token plus the signed-in user.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		salesdk.LoginRequest	true	"Credentials"
//	@Success		200		{object}	salesdk.LoginResponse
//	@Failure		400		{object}	salesdk.APIError	"invalid_credentials or missing_fields"
//	@Router			/api/auth/login [post].
func (h *LoginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req salesdk.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		salesdk.ErrMissingFields.WithDescription("Request body must be valid JSON.").WriteError(w)
		return
	}

	token, user, err := h.AuthService.Login(ctx, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			salesdk.ErrMissingFields.WriteError(w)
		case errors.Is(err, service.ErrInvalidCredentials):
			salesdk.ErrInvalidCredentials.WriteError(w)
		default:
			slogx.FromContext(ctx).Error("login failed", "err", err)
			salesdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, salesdk.LoginResponse{
		Token: token,
		User: salesdk.UserInfo{
			ID:    user.ID.String(),
			Email: user.Email,
			Name:  user.Name,
		},
	})
}
