package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fieldstack/canvasser/internal/canvasser/domain"
	"github.com/fieldstack/canvasser/internal/canvasser/service"
	"github.com/fieldstack/canvasser/pkg/httpx"
	"github.com/fieldstack/canvasser/pkg/idx"
	"github.com/fieldstack/canvasser/pkg/salesdk"
	"github.com/fieldstack/canvasser/pkg/slogx"
)

// CheckInHandler acknowledges the start of a canvasser's working day.
type CheckInHandler struct {
	CheckInService *service.CheckInService
}

// ServeHTTP godoc
//
//	@Summary		Check in for the day
//	@Description	Reports the device location and begins the working day. The location is logged but not stored.
//	@Tags			Auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body		salesdk.CheckInRequest	true	"Current device location"
//	@Success		200		{object}	salesdk.CheckInResponse
//	@Failure		400		{object}	salesdk.APIError	"missing_location"
//	@Failure		401		{object}	salesdk.APIError	"unauthenticated"
//	@Security		BearerAuth
//	@Router			/api/auth/check-in [post].
func (h *CheckInHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := authedUserID(r)
	if !ok {
		salesdk.ErrUnauthenticated.WriteError(w)
		return
	}

	var req salesdk.CheckInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		salesdk.ErrMissingLocation.WithDescription("Request body must be valid JSON.").WriteError(w)
		return
	}

	// Both coordinates must be present; an empty location object is as
	// missing as no location at all.
	var loc *domain.Location
	if req.Location != nil && req.Location.Latitude != nil && req.Location.Longitude != nil {
		loc = &domain.Location{
			Latitude:  *req.Location.Latitude,
			Longitude: *req.Location.Longitude,
		}
	}

	if err := h.CheckInService.CheckIn(ctx, userID, loc); err != nil {
		switch {
		case errors.Is(err, service.ErrMissingLocation):
			salesdk.ErrMissingLocation.WriteError(w)
		default:
			slogx.FromContext(ctx).Error("check-in failed", "err", err)
			salesdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, salesdk.CheckInResponse{
		Message: "Checked in successfully",
	})
}

// authedUserID pulls the authenticated user id injected by the authn
// middleware.
func authedUserID(r *http.Request) (idx.ID, bool) {
	raw, ok := r.Context().Value(httpx.CtxKeyUserID).(string)
	if !ok || raw == "" {
		return idx.Zero, false
	}
	id, err := idx.Parse(raw)
	if err != nil {
		return idx.Zero, false
	}
	return id, true
}
