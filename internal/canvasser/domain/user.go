package domain

import (
	"time"

	"github.com/fieldstack/canvasser/pkg/idx"
)

// User is a registered canvasser account.
type User struct {
	ID           idx.ID
	Email        string
	PasswordHash string
	Name         string
	Phone        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
