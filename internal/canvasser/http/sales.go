package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fieldstack/canvasser/internal/canvasser/domain"
	"github.com/fieldstack/canvasser/internal/canvasser/service"
	"github.com/fieldstack/canvasser/pkg/httpx"
	"github.com/fieldstack/canvasser/pkg/salesdk"
	"github.com/fieldstack/canvasser/pkg/slogx"
)

// SalesHandler records sales and serves the per-user daily list.
type SalesHandler struct {
	SalesService *service.SalesService
}

// HandleCreate godoc
//
//	@Summary		Record a sale
//	@Description	Records a customer transaction for the signed-in user. All four customer fields are required.
//	@Tags			Sales
//	@Accept			json
//	@Produce		json
//	@Param			request	body		salesdk.SaleInput	true	"Sale details"
//	@Success		201		{object}	salesdk.Sale
//	@Failure		400		{object}	salesdk.APIError	"missing_fields"
//	@Failure		401		{object}	salesdk.APIError	"unauthenticated"
//	@Security		BearerAuth
//	@Router			/api/sales [post].
func (h *SalesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := authedUserID(r)
	if !ok {
		salesdk.ErrUnauthenticated.WriteError(w)
		return
	}

	var req salesdk.SaleInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		salesdk.ErrMissingFields.WithDescription("Request body must be valid JSON.").WriteError(w)
		return
	}

	sale, err := h.SalesService.Record(ctx, userID, service.SaleParams{
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		CustomerEmail: req.CustomerEmail,
		DeviceModel:   req.DeviceModel,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			salesdk.ErrMissingFields.WriteError(w)
		default:
			slogx.FromContext(ctx).Error("recording sale failed", "err", err)
			salesdk.ErrServerError.WriteError(w)
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, mapSale(sale))
}

// HandleList godoc
//
//	@Summary		List today's sales
//	@Description	Returns the signed-in user's sales recorded since the start of the current day, newest first.
//	@Tags			Sales
//	@Produce		json
//	@Success		200	{array}		salesdk.Sale
//	@Failure		401	{object}	salesdk.APIError	"unauthenticated"
//	@Security		BearerAuth
//	@Router			/api/sales [get].
func (h *SalesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := authedUserID(r)
	if !ok {
		salesdk.ErrUnauthenticated.WriteError(w)
		return
	}

	sales, err := h.SalesService.ListToday(ctx, userID)
	if err != nil {
		slogx.FromContext(ctx).Error("listing sales failed", "err", err)
		salesdk.ErrServerError.WriteError(w)
		return
	}

	// Empty day serialises as [] rather than null.
	out := make([]salesdk.Sale, 0, len(sales))
	for _, s := range sales {
		out = append(out, mapSale(s))
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, out)
}

func mapSale(s domain.Sale) salesdk.Sale {
	return salesdk.Sale{
		ID:            s.ID.String(),
		UserID:        s.UserID.String(),
		CustomerName:  s.CustomerName,
		CustomerPhone: s.CustomerPhone,
		CustomerEmail: s.CustomerEmail,
		DeviceModel:   s.DeviceModel,
		CreatedAt:     s.CreatedAt,
	}
}
