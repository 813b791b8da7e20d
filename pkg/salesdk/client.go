package salesdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// Client talks to the canvasser API without a session. Use Login to obtain
// a Session for the authenticated endpoints.
type Client struct {
	// BaseURL of the API, e.g. "http://localhost:8080".
	BaseURL string

	// HTTPClient used for requests. Defaults to a client with a 10s
	// timeout.
	HTTPClient *http.Client
}

// NewClient creates a client for the API at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Register creates a new account. All four fields are required; the server
// rejects incomplete requests with ErrMissingFields and an already used
// email with ErrDuplicateEmail.
func (c *Client) Register(ctx context.Context, req RegisterRequest) error {
	var resp RegisterResponse
	return c.doRequest(ctx, http.MethodPost, "/api/auth/register", req, &resp)
}

// Login exchanges credentials for a Session holding a bearer token. Wrong
// email or password yields ErrInvalidCredentials.
func (c *Client) Login(ctx context.Context, email, password string) (*Session, error) {
	var resp LoginResponse
	err := c.doRequest(ctx, http.MethodPost, "/api/auth/login", LoginRequest{
		Email:    email,
		Password: password,
	}, &resp)
	if err != nil {
		return nil, err
	}

	return &Session{
		client: c,
		token:  resp.Token,
		user:   resp.User,
	}, nil
}

// Health fetches the readiness probe, useful for smoke tests and the CLI
// status command.
func (c *Client) Health(ctx context.Context) (HealthResponse, error) {
	var resp HealthResponse
	err := c.doRequest(ctx, http.MethodGet, "/readyz", nil, &resp)
	return resp, err
}
