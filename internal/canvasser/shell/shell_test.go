package shell_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/fieldstack/canvasser/internal/canvasser/shell"
	"github.com/fieldstack/canvasser/pkg/salesdk"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// fakeAPI is a minimal in-memory stand-in for the canvasser service.
type fakeAPI struct {
	mu        sync.Mutex
	sales     []salesdk.Sale
	listCalls int
	failList  bool

	// When set, check-in requests signal arrival on checkInStarted and
	// block until checkInGate closes.
	checkInStarted chan struct{}
	checkInGate    chan struct{}
}

func (f *fakeAPI) setFailList(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failList = fail
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/auth/register", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(salesdk.RegisterResponse{Message: "ok"})
	})

	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req salesdk.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Password != "correct-password" {
			salesdk.ErrInvalidCredentials.WriteError(w)
			return
		}
		_ = json.NewEncoder(w).Encode(salesdk.LoginResponse{
			Token: "test-token",
			User:  salesdk.UserInfo{ID: "01TESTUSER", Email: req.Email, Name: "Ann"},
		})
	})

	mux.HandleFunc("POST /api/auth/check-in", func(w http.ResponseWriter, r *http.Request) {
		var req salesdk.CheckInRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Location == nil {
			salesdk.ErrMissingLocation.WriteError(w)
			return
		}
		if f.checkInStarted != nil {
			f.checkInStarted <- struct{}{}
			<-f.checkInGate
		}
		_ = json.NewEncoder(w).Encode(salesdk.CheckInResponse{Message: "ok"})
	})

	mux.HandleFunc("POST /api/sales", func(w http.ResponseWriter, r *http.Request) {
		var in salesdk.SaleInput
		_ = json.NewDecoder(r.Body).Decode(&in)
		sale := salesdk.Sale{
			ID:           "01SALE",
			UserID:       "01TESTUSER",
			CustomerName: in.CustomerName,
			DeviceModel:  in.DeviceModel,
			CreatedAt:    time.Now(),
		}
		f.mu.Lock()
		f.sales = append([]salesdk.Sale{sale}, f.sales...)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(sale)
	})

	mux.HandleFunc("GET /api/sales", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.listCalls++
		fail := f.failList
		out := make([]salesdk.Sale, len(f.sales))
		copy(out, f.sales)
		f.mu.Unlock()
		if fail {
			salesdk.ErrServerError.WriteError(w)
			return
		}
		_ = json.NewEncoder(w).Encode(out)
	})

	return mux
}

func newTestShell(t *testing.T) (*shell.Shell, *fakeAPI) {
	t.Helper()

	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	return shell.New(salesdk.NewClient(srv.URL), nil), api
}

func login(t *testing.T, sh *shell.Shell) {
	t.Helper()
	require.NoError(t, sh.Login(context.Background(), "ann@example.com", "correct-password"))
}

func TestShellLifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("starts logged out", func(t *testing.T) {
		sh, _ := newTestShell(t)
		require.Equal(t, shell.LoggedOut, sh.State())
		_, ok := sh.User()
		require.False(t, ok)
	})

	t.Run("login moves to authenticated", func(t *testing.T) {
		sh, _ := newTestShell(t)
		login(t, sh)
		require.Equal(t, shell.Authenticated, sh.State())

		user, ok := sh.User()
		require.True(t, ok)
		require.Equal(t, "ann@example.com", user.Email)
	})

	t.Run("failed login stays logged out", func(t *testing.T) {
		sh, _ := newTestShell(t)
		err := sh.Login(ctx, "ann@example.com", "wrong")
		require.Error(t, err)
		require.Equal(t, shell.LoggedOut, sh.State())
	})

	t.Run("logout returns to logged out and clears the token", func(t *testing.T) {
		api := &fakeAPI{}
		srv := httptest.NewServer(api.handler())
		t.Cleanup(srv.Close)

		tokens := shell.NewMemoryTokenStore()
		sh := shell.New(salesdk.NewClient(srv.URL), tokens)
		login(t, sh)

		stored, err := tokens.Get()
		require.NoError(t, err)
		require.Equal(t, "test-token", stored)

		sh.Logout()
		require.Equal(t, shell.LoggedOut, sh.State())

		stored, err = tokens.Get()
		require.NoError(t, err)
		require.Empty(t, stored)
	})
}

func TestCheckIn(t *testing.T) {
	ctx := context.Background()

	t.Run("requires login", func(t *testing.T) {
		sh, _ := newTestShell(t)
		require.ErrorIs(t, sh.CheckIn(ctx), shell.ErrNotLoggedIn)
	})

	t.Run("requires a location", func(t *testing.T) {
		sh, _ := newTestShell(t)
		login(t, sh)
		require.False(t, sh.CanCheckIn())
		require.ErrorIs(t, sh.CheckIn(ctx), shell.ErrNoLocation)
		require.Equal(t, shell.Authenticated, sh.State())
	})

	t.Run("moves to checked in after server ack", func(t *testing.T) {
		sh, _ := newTestShell(t)
		login(t, sh)
		sh.SetLocation(salesdk.Location{Latitude: -27.47, Longitude: 153.02})
		require.True(t, sh.CanCheckIn())

		require.NoError(t, sh.CheckIn(ctx))
		require.Equal(t, shell.CheckedIn, sh.State())
	})

	t.Run("cannot check in twice", func(t *testing.T) {
		sh, _ := newTestShell(t)
		login(t, sh)
		sh.SetLocation(salesdk.Location{Latitude: -27.47, Longitude: 153.02})
		require.NoError(t, sh.CheckIn(ctx))
		require.ErrorIs(t, sh.CheckIn(ctx), shell.ErrAlreadyCheckedIn)
	})

	t.Run("logout during an in-flight check-in wins", func(t *testing.T) {
		sh, api := newTestShell(t)
		api.checkInStarted = make(chan struct{}, 1)
		api.checkInGate = make(chan struct{})

		login(t, sh)
		sh.SetLocation(salesdk.Location{Latitude: -27.47, Longitude: 153.02})

		errCh := make(chan error, 1)
		go func() { errCh <- sh.CheckIn(ctx) }()

		<-api.checkInStarted
		sh.Logout()
		close(api.checkInGate)

		require.ErrorIs(t, <-errCh, shell.ErrNotLoggedIn)
		require.Equal(t, shell.LoggedOut, sh.State())
	})
}

func mintToken(t *testing.T, email string, expiresAt time.Time) string {
	t.Helper()

	claims := jwt.MapClaims{
		"sub":   "01TESTUSER",
		"email": email,
		"name":  "Ann",
		"exp":   expiresAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-signing-key"))
	require.NoError(t, err)
	return token
}

func TestResume(t *testing.T) {
	newShellWithTokens := func(t *testing.T) (*shell.Shell, shell.TokenStore) {
		t.Helper()

		api := &fakeAPI{}
		srv := httptest.NewServer(api.handler())
		t.Cleanup(srv.Close)

		tokens := shell.NewMemoryTokenStore()
		return shell.New(salesdk.NewClient(srv.URL), tokens), tokens
	}

	t.Run("restores authenticated state from a stored token", func(t *testing.T) {
		sh, tokens := newShellWithTokens(t)
		require.NoError(t, tokens.Set(mintToken(t, "ann@example.com", time.Now().Add(time.Hour))))

		user, ok := sh.Resume()
		require.True(t, ok)
		require.Equal(t, "ann@example.com", user.Email)
		require.Equal(t, shell.Authenticated, sh.State())
	})

	t.Run("empty store stays logged out", func(t *testing.T) {
		sh, _ := newShellWithTokens(t)

		_, ok := sh.Resume()
		require.False(t, ok)
		require.Equal(t, shell.LoggedOut, sh.State())
	})

	t.Run("expired token is discarded", func(t *testing.T) {
		sh, tokens := newShellWithTokens(t)
		require.NoError(t, tokens.Set(mintToken(t, "ann@example.com", time.Now().Add(-time.Minute))))

		_, ok := sh.Resume()
		require.False(t, ok)
		require.Equal(t, shell.LoggedOut, sh.State())

		stored, err := tokens.Get()
		require.NoError(t, err)
		require.Empty(t, stored)
	})

	t.Run("garbage token is discarded", func(t *testing.T) {
		sh, tokens := newShellWithTokens(t)
		require.NoError(t, tokens.Set("not.a.jwt"))

		_, ok := sh.Resume()
		require.False(t, ok)

		stored, err := tokens.Get()
		require.NoError(t, err)
		require.Empty(t, stored)
	})
}

func TestSalesFlow(t *testing.T) {
	ctx := context.Background()

	checkIn := func(t *testing.T, sh *shell.Shell) {
		t.Helper()
		login(t, sh)
		sh.SetLocation(salesdk.Location{Latitude: -27.47, Longitude: 153.02})
		require.NoError(t, sh.CheckIn(ctx))
	}

	t.Run("recording requires checked in", func(t *testing.T) {
		sh, _ := newTestShell(t)
		login(t, sh)
		_, err := sh.RecordSale(ctx, salesdk.SaleInput{CustomerName: "Chris"})
		require.ErrorIs(t, err, shell.ErrNotCheckedIn)
	})

	t.Run("recorded sales appear newest first", func(t *testing.T) {
		sh, _ := newTestShell(t)
		checkIn(t, sh)

		_, err := sh.RecordSale(ctx, salesdk.SaleInput{CustomerName: "First"})
		require.NoError(t, err)
		_, err = sh.RecordSale(ctx, salesdk.SaleInput{CustomerName: "Second"})
		require.NoError(t, err)

		sales := sh.Sales()
		require.Len(t, sales, 2)
		require.Equal(t, "Second", sales[0].CustomerName)
		require.Equal(t, "First", sales[1].CustomerName)
	})

	t.Run("check out clears the local view only", func(t *testing.T) {
		sh, api := newTestShell(t)
		checkIn(t, sh)

		_, err := sh.RecordSale(ctx, salesdk.SaleInput{CustomerName: "Kept"})
		require.NoError(t, err)

		require.NoError(t, sh.CheckOut())
		require.Equal(t, shell.Authenticated, sh.State())
		require.Empty(t, sh.Sales())

		// The server still has the sale; a refresh brings it back.
		require.NoError(t, sh.RefreshToday(ctx))
		require.Len(t, sh.Sales(), 1)
		require.Len(t, api.sales, 1)
	})

	t.Run("check out requires checked in", func(t *testing.T) {
		sh, _ := newTestShell(t)
		login(t, sh)
		require.ErrorIs(t, sh.CheckOut(), shell.ErrNotCheckedIn)
	})
}

func TestRolloverWatcher(t *testing.T) {
	sh, api := newTestShell(t)
	login(t, sh)

	var (
		mu  sync.Mutex
		now = time.Date(2025, 7, 10, 23, 59, 0, 0, time.UTC)
	)

	w := shell.NewRolloverWatcher(sh, slog.New(slog.DiscardHandler), 10*time.Millisecond)
	w.Now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	w.Start()
	defer w.Stop()

	// Same day: no refresh triggered.
	time.Sleep(50 * time.Millisecond)
	api.mu.Lock()
	require.Zero(t, api.listCalls)
	api.mu.Unlock()

	// Cross midnight.
	mu.Lock()
	now = now.Add(2 * time.Minute)
	mu.Unlock()

	require.Eventually(t, func() bool {
		api.mu.Lock()
		defer api.mu.Unlock()
		return api.listCalls > 0
	}, time.Second, 10*time.Millisecond)
}

func TestRolloverWatcherFailedRefresh(t *testing.T) {
	ctx := context.Background()

	sh, api := newTestShell(t)
	login(t, sh)
	sh.SetLocation(salesdk.Location{Latitude: -27.47, Longitude: 153.02})
	require.NoError(t, sh.CheckIn(ctx))

	_, err := sh.RecordSale(ctx, salesdk.SaleInput{CustomerName: "Yesterday Customer"})
	require.NoError(t, err)
	require.Len(t, sh.Sales(), 1)

	api.setFailList(true)

	var (
		mu  sync.Mutex
		now = time.Date(2025, 7, 10, 23, 59, 0, 0, time.UTC)
	)

	w := shell.NewRolloverWatcher(sh, slog.New(slog.DiscardHandler), 10*time.Millisecond)
	w.Now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}

	w.Start()
	defer w.Stop()

	// Cross midnight.
	mu.Lock()
	now = now.Add(2 * time.Minute)
	mu.Unlock()

	// The old day's entries vanish even though the refetch is failing.
	require.Eventually(t, func() bool {
		return len(sh.Sales()) == 0
	}, time.Second, 10*time.Millisecond)

	api.mu.Lock()
	failedCalls := api.listCalls
	api.mu.Unlock()

	// The watcher keeps retrying while the server is down.
	require.Eventually(t, func() bool {
		api.mu.Lock()
		defer api.mu.Unlock()
		return api.listCalls > failedCalls
	}, time.Second, 10*time.Millisecond)

	// Server comes back holding a sale recorded earlier today.
	api.mu.Lock()
	api.sales = []salesdk.Sale{{
		ID:           "01TODAY",
		UserID:       "01TESTUSER",
		CustomerName: "Today Customer",
		CreatedAt:    time.Date(2025, 7, 11, 0, 0, 30, 0, time.UTC),
	}}
	api.failList = false
	api.mu.Unlock()

	require.Eventually(t, func() bool {
		sales := sh.Sales()
		return len(sales) == 1 && sales[0].CustomerName == "Today Customer"
	}, time.Second, 10*time.Millisecond)
}
