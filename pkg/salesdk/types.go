package salesdk

import "time"

// RegisterRequest is the payload for POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

// RegisterResponse acknowledges a successful registration.
type RegisterResponse struct {
	Message string `json:"message"`
}

// LoginRequest is the payload for POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserInfo is the public view of a user returned by login.
type UserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// LoginResponse carries the bearer token and the signed-in user.
type LoginResponse struct {
	Token string   `json:"token"`
	User  UserInfo `json:"user"`
}

// Location is a device position captured at check-in time.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// LocationInput is the wire form of Location. Both coordinates are
// pointers so an absent field is distinguishable from a literal 0; the
// equator and the prime meridian are valid places to work.
type LocationInput struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// CheckInRequest is the payload for POST /api/auth/check-in. Location is a
// pointer so a missing location is distinguishable from coordinates (0, 0).
type CheckInRequest struct {
	Location *LocationInput `json:"location"`
}

// CheckInResponse acknowledges a check-in. Check-in state is not durable
// server-side; the acknowledgment is what flips the client state machine.
type CheckInResponse struct {
	Message string `json:"message"`
}

// SaleInput is the payload for POST /api/sales. All four fields are
// required.
type SaleInput struct {
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
	CustomerEmail string `json:"customerEmail"`
	DeviceModel   string `json:"deviceModel"`
}

// Sale is a recorded customer transaction owned by one user.
type Sale struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	CustomerName  string    `json:"customerName"`
	CustomerPhone string    `json:"customerPhone"`
	CustomerEmail string    `json:"customerEmail"`
	DeviceModel   string    `json:"deviceModel"`
	CreatedAt     time.Time `json:"createdAt"`
}

// HealthChecks reports the status of critical dependencies.
type HealthChecks struct {
	Database string `json:"database,omitempty"`
	Signer   string `json:"signer,omitempty"`
}

// HealthResponse is returned by the health probe endpoints.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}
