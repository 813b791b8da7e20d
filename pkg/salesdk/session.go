package salesdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrTokenExpired reports a stored token whose lifetime has passed.
var ErrTokenExpired = errors.New("salesdk: token expired")

// Session is an authenticated handle on the API. It is safe for concurrent
// use; the token is immutable once minted.
type Session struct {
	client *Client
	token  string
	user   UserInfo
}

// NewSession rebuilds a session from a previously stored token, e.g. one
// read back from a token store.
func NewSession(client *Client, token string, user UserInfo) *Session {
	return &Session{client: client, token: token, user: user}
}

// sessionClaims mirrors the access-token claims the service mints.
type sessionClaims struct {
	jwt.RegisteredClaims

	Email string `json:"email"`
	Name  string `json:"name"`
}

// NewSessionFromToken rebuilds a session from a stored token alone,
// recovering the user info from the token's claims. The signature is not
// checked here; the server remains the authority and rejects tampered
// tokens on first use. Tokens already past their expiry are refused so
// callers can discard them up front.
func NewSessionFromToken(client *Client, token string) (*Session, error) {
	var claims sessionClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("salesdk: parse stored token: %w", err)
	}
	if claims.ExpiresAt != nil && time.Now().After(claims.ExpiresAt.Time) {
		return nil, ErrTokenExpired
	}

	return NewSession(client, token, UserInfo{
		ID:    claims.Subject,
		Email: claims.Email,
		Name:  claims.Name,
	}), nil
}

// Token returns the raw bearer token for persistence.
func (s *Session) Token() string { return s.token }

// User returns the signed-in user's public info.
func (s *Session) User() UserInfo { return s.user }

// CheckIn reports the device location and begins the working day. The
// server acknowledges without storing the position durably.
func (s *Session) CheckIn(ctx context.Context, loc Location) (CheckInResponse, error) {
	var resp CheckInResponse
	err := s.client.doAuthRequest(ctx, s.token, http.MethodPost, "/api/auth/check-in", CheckInRequest{
		Location: &LocationInput{
			Latitude:  &loc.Latitude,
			Longitude: &loc.Longitude,
		},
	}, &resp)
	return resp, err
}

// RecordSale records a customer transaction for the signed-in user and
// returns the stored sale including its server-assigned id and timestamp.
func (s *Session) RecordSale(ctx context.Context, input SaleInput) (Sale, error) {
	var sale Sale
	err := s.client.doAuthRequest(ctx, s.token, http.MethodPost, "/api/sales", input, &sale)
	return sale, err
}

// ListTodaySales returns the signed-in user's sales recorded since the
// start of the current day, newest first.
func (s *Session) ListTodaySales(ctx context.Context) ([]Sale, error) {
	var sales []Sale
	err := s.client.doAuthRequest(ctx, s.token, http.MethodGet, "/api/sales", nil, &sales)
	return sales, err
}
