package domain

import (
	"time"

	"github.com/fieldstack/canvasser/pkg/idx"
)

// Sale is one customer transaction recorded by a canvasser. Ownership is
// fixed at creation and never transfers.
type Sale struct {
	ID            idx.ID
	UserID        idx.ID
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	DeviceModel   string
	CreatedAt     time.Time
}

// Location is a device position reported at check-in. It is logged, not
// persisted.
type Location struct {
	Latitude  float64
	Longitude float64
}
