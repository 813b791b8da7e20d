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

// RegisterHandler creates new canvasser accounts.
type RegisterHandler struct {
	AuthService *service.AuthService
}

// ServeHTTP godoc
//
//	@Summary		Register a new account
//	@Description	Creates a canvasser account. Email, password, name, and phone are all required.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		salesdk.RegisterRequest	true	"Registration details"
//	@Success		201		{object}	salesdk.RegisterResponse
//	@Failure		400		{object}	salesdk.APIError	"missing_fields"
//	@Failure		409		{object}	salesdk.APIError	"duplicate_email"
//	@Router			/api/auth/register [post].
func (h *RegisterHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req salesdk.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		salesdk.ErrMissingFields.WithDescription("Request body must be valid JSON.").WriteError(w)
		return
	}

	_, err := h.AuthService.Register(ctx, service.RegisterParams{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			salesdk.ErrMissingFields.WriteError(w)
		case errors.Is(err, service.ErrDuplicateEmail):
			salesdk.ErrDuplicateEmail.WriteError(w)
		default:
			slogx.FromContext(ctx).Error("register failed", "err", err)
			salesdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, salesdk.RegisterResponse{
		Message: "User registered successfully",
	})
}
