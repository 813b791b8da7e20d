// Package shell holds the client-side session state machine used by the
// CLI. It tracks the shift lifecycle locally; the server only ever sees
// individual requests.
package shell

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/fieldstack/canvasser/pkg/salesdk"
)

// State is the client's view of the shift lifecycle.
type State int

const (
	// LoggedOut means no valid session is held.
	LoggedOut State = iota

	// Authenticated means a bearer token is held but the day has not
	// started.
	Authenticated

	// CheckedIn means the server acknowledged the start of the working
	// day.
	CheckedIn
)

func (s State) String() string {
	switch s {
	case LoggedOut:
		return "logged out"
	case Authenticated:
		return "authenticated"
	case CheckedIn:
		return "checked in"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

var (
	ErrNotLoggedIn      = errors.New("shell: not logged in")
	ErrAlreadyCheckedIn = errors.New("shell: already checked in")
	ErrNotCheckedIn     = errors.New("shell: not checked in")
	ErrNoLocation       = errors.New("shell: no location set")
)

// Shell drives the canvasser workflow against the API. State transitions
// only happen after the server acknowledges the corresponding request, so
// a failed call leaves the shell where it was. Safe for concurrent use.
type Shell struct {
	client *salesdk.Client
	tokens TokenStore

	mu       sync.Mutex
	state    State
	session  *salesdk.Session
	location *salesdk.Location
	sales    []salesdk.Sale
}

// New creates a shell in the LoggedOut state. tokens may be nil, in which
// case sessions are not persisted across restarts.
func New(client *salesdk.Client, tokens TokenStore) *Shell {
	if tokens == nil {
		tokens = NewMemoryTokenStore()
	}
	return &Shell{
		client: client,
		tokens: tokens,
		state:  LoggedOut,
	}
}

// State returns the current lifecycle state.
func (s *Shell) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User returns the signed-in user, or false when logged out.
func (s *Shell) User() (salesdk.UserInfo, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return salesdk.UserInfo{}, false
	}
	return s.session.User(), true
}

// Register creates an account. Registration does not sign the user in.
func (s *Shell) Register(ctx context.Context, req salesdk.RegisterRequest) error {
	return s.client.Register(ctx, req)
}

// Resume restores the Authenticated state from a token persisted by an
// earlier login, so a restarted client does not force a fresh sign-in
// while the token is still live. Unusable tokens are cleared from the
// store. Returns the restored user and whether a session was resumed.
func (s *Shell) Resume() (salesdk.UserInfo, bool) {
	token, err := s.tokens.Get()
	if err != nil || token == "" {
		return salesdk.UserInfo{}, false
	}

	session, err := salesdk.NewSessionFromToken(s.client, token)
	if err != nil {
		_ = s.tokens.Clear()
		return salesdk.UserInfo{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	s.state = Authenticated
	s.sales = nil
	return session.User(), true
}

// Login signs in and moves the shell to Authenticated.
func (s *Shell) Login(ctx context.Context, email, password string) error {
	session, err := s.client.Login(ctx, email, password)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	s.state = Authenticated
	s.sales = nil

	_ = s.tokens.Set(session.Token())
	return nil
}

// Logout drops the session and returns the shell to LoggedOut.
func (s *Shell) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	s.location = nil
	s.sales = nil
	s.state = LoggedOut
	_ = s.tokens.Clear()
}

// SetLocation records the device position used for the next check-in.
func (s *Shell) SetLocation(loc salesdk.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.location = &loc
}

// CanCheckIn reports whether a check-in attempt would be sent: signed in,
// not already checked in, and a location is set.
func (s *Shell) CanCheckIn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == Authenticated && s.location != nil
}

// CheckIn reports the stored location and, on acknowledgment, moves to
// CheckedIn.
func (s *Shell) CheckIn(ctx context.Context) error {
	s.mu.Lock()
	if s.state == LoggedOut || s.session == nil {
		s.mu.Unlock()
		return ErrNotLoggedIn
	}
	if s.state == CheckedIn {
		s.mu.Unlock()
		return ErrAlreadyCheckedIn
	}
	if s.location == nil {
		s.mu.Unlock()
		return ErrNoLocation
	}
	session, loc := s.session, *s.location
	s.mu.Unlock()

	if _, err := session.CheckIn(ctx, loc); err != nil {
		return err
	}

	s.mu.Lock()
	// The session may have been dropped or replaced while the request was
	// in flight; a stale acknowledgment must not revive it.
	if s.session != session {
		s.mu.Unlock()
		return ErrNotLoggedIn
	}
	s.state = CheckedIn
	s.mu.Unlock()

	// Best effort; the day may already hold sales from an earlier session.
	_ = s.RefreshToday(ctx)
	return nil
}

// CheckOut ends the working day locally. Nothing is sent to the server;
// recorded sales stay durable there and only the local view is cleared.
func (s *Shell) CheckOut() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != CheckedIn {
		return ErrNotCheckedIn
	}
	s.state = Authenticated
	s.sales = nil
	return nil
}

// RecordSale submits a sale and prepends it to the local day view.
func (s *Shell) RecordSale(ctx context.Context, input salesdk.SaleInput) (salesdk.Sale, error) {
	s.mu.Lock()
	if s.state != CheckedIn || s.session == nil {
		s.mu.Unlock()
		return salesdk.Sale{}, ErrNotCheckedIn
	}
	session := s.session
	s.mu.Unlock()

	sale, err := session.RecordSale(ctx, input)
	if err != nil {
		return salesdk.Sale{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales = append([]salesdk.Sale{sale}, s.sales...)
	return sale, nil
}

// ResetDay drops the local day view without contacting the server. On a
// calendar-day change the old entries must disappear even if the refetch
// that follows fails.
func (s *Shell) ResetDay() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales = nil
}

// RefreshToday refetches the server's view of today's sales.
func (s *Shell) RefreshToday(ctx context.Context) error {
	s.mu.Lock()
	if s.session == nil {
		s.mu.Unlock()
		return ErrNotLoggedIn
	}
	session := s.session
	s.mu.Unlock()

	sales, err := session.ListTodaySales(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sales = sales
	return nil
}

// Sales returns a copy of the local day view, newest first.
func (s *Shell) Sales() []salesdk.Sale {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]salesdk.Sale, len(s.sales))
	copy(out, s.sales)
	return out
}
