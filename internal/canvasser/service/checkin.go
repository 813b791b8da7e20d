package service

import (
	"context"
	"errors"

	"github.com/fieldstack/canvasser/internal/canvasser/domain"
	"github.com/fieldstack/canvasser/pkg/idx"
	"github.com/fieldstack/canvasser/pkg/slogx"
)

var ErrMissingLocation = errors.New("service: location is required")

// CheckInService acknowledges a canvasser starting their working day at a
// reported position. The position is logged for the operations trail but
// not stored; the client owns the checked-in state.
type CheckInService struct{}

func NewCheckInService() *CheckInService {
	return &CheckInService{}
}

// CheckIn validates and logs the reported location.
func (s *CheckInService) CheckIn(ctx context.Context, userID idx.ID, loc *domain.Location) error {
	if loc == nil {
		return ErrMissingLocation
	}

	slogx.FromContext(ctx).Info("user checked in",
		"user_id", userID.String(),
		"latitude", loc.Latitude,
		"longitude", loc.Longitude,
	)
	return nil
}
