package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fieldstack/canvasser/internal/canvasser/domain"
	"github.com/fieldstack/canvasser/internal/canvasser/store"
	"github.com/fieldstack/canvasser/pkg/idx"
	"github.com/fieldstack/canvasser/pkg/slogx"
)

// SalesService records sales and serves the per-user daily view.
type SalesService struct {
	Store store.Store

	// Now is injectable for tests. Defaults to time.Now.
	Now func() time.Time
}

func NewSalesService(s store.Store) *SalesService {
	return &SalesService{
		Store: s,
		Now:   time.Now,
	}
}

// SaleParams are the inputs for recording a sale. All fields are required.
type SaleParams struct {
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	DeviceModel   string
}

// Record stores a sale owned by userID, timestamped now.
func (s *SalesService) Record(ctx context.Context, userID idx.ID, p SaleParams) (domain.Sale, error) {
	p.CustomerName = strings.TrimSpace(p.CustomerName)
	p.CustomerPhone = strings.TrimSpace(p.CustomerPhone)
	p.CustomerEmail = strings.TrimSpace(p.CustomerEmail)
	p.DeviceModel = strings.TrimSpace(p.DeviceModel)

	if p.CustomerName == "" || p.CustomerPhone == "" || p.CustomerEmail == "" || p.DeviceModel == "" {
		return domain.Sale{}, ErrMissingFields
	}

	now := s.Now().UTC()
	sale := domain.Sale{
		ID:            idx.NewAt(now),
		UserID:        userID,
		CustomerName:  p.CustomerName,
		CustomerPhone: p.CustomerPhone,
		CustomerEmail: p.CustomerEmail,
		DeviceModel:   p.DeviceModel,
		CreatedAt:     now,
	}

	if err := s.Store.Sales().CreateSale(ctx, sale); err != nil {
		return domain.Sale{}, fmt.Errorf("creating sale: %w", err)
	}

	slogx.FromContext(ctx).Info("sale recorded",
		"sale_id", sale.ID.String(),
		"user_id", userID.String(),
		"device_model", sale.DeviceModel,
	)
	return sale, nil
}

// ListToday returns the user's sales since the start of the current day in
// the server's local timezone, newest first.
func (s *SalesService) ListToday(ctx context.Context, userID idx.ID) ([]domain.Sale, error) {
	since := startOfDay(s.Now())

	sales, err := s.Store.Sales().ListUserSalesSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("listing sales: %w", err)
	}
	return sales, nil
}

// startOfDay truncates t to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
