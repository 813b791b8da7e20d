package canvasser_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/fieldstack/canvasser/pkg/salesdk"
	"github.com/stretchr/testify/require"
)

func TestFullWorkflow(t *testing.T) {
	ctx := context.Background()
	_, client := newTestServer(t)

	// Register and sign in.
	require.NoError(t, client.Register(ctx, registration("ann@example.com")))

	session, err := client.Login(ctx, "ann@example.com", "correct-horse-battery")
	require.NoError(t, err)
	require.Equal(t, "ann@example.com", session.User().Email)
	require.NotEmpty(t, session.Token())

	// Check in at a location.
	ack, err := session.CheckIn(ctx, salesdk.Location{Latitude: -27.47, Longitude: 153.02})
	require.NoError(t, err)
	require.NotEmpty(t, ack.Message)

	// Record a sale and see it in the daily list.
	sale, err := session.RecordSale(ctx, salesdk.SaleInput{
		CustomerName:  "Chris Customer",
		CustomerPhone: "0411222333",
		CustomerEmail: "chris@customer.example",
		DeviceModel:   "Pixel 9",
	})
	require.NoError(t, err)
	require.NotEmpty(t, sale.ID)

	today, err := session.ListTodaySales(ctx)
	require.NoError(t, err)
	require.Len(t, today, 1)
	require.Equal(t, "Pixel 9", today[0].DeviceModel)
	require.Equal(t, sale.ID, today[0].ID)

	// A stored token alone is enough to resume the session.
	resumed, err := salesdk.NewSessionFromToken(client, session.Token())
	require.NoError(t, err)
	require.Equal(t, session.User().ID, resumed.User().ID)
	require.Equal(t, "ann@example.com", resumed.User().Email)

	again, err := resumed.ListTodaySales(ctx)
	require.NoError(t, err)
	require.Len(t, again, 1)
}

func TestRegistrationErrors(t *testing.T) {
	ctx := context.Background()
	_, client := newTestServer(t)

	t.Run("duplicate email", func(t *testing.T) {
		require.NoError(t, client.Register(ctx, registration("dup@example.com")))

		err := client.Register(ctx, registration("dup@example.com"))
		require.Error(t, err)
		require.Equal(t, salesdk.ErrDuplicateEmail.Code, apiErrorCode(t, err))
	})

	t.Run("missing fields", func(t *testing.T) {
		req := registration("incomplete@example.com")
		req.Phone = ""

		err := client.Register(ctx, req)
		require.Error(t, err)
		require.Equal(t, salesdk.ErrMissingFields.Code, apiErrorCode(t, err))
	})
}

func TestLoginErrors(t *testing.T) {
	ctx := context.Background()
	_, client := newTestServer(t)

	require.NoError(t, client.Register(ctx, registration("ann@example.com")))

	t.Run("wrong password", func(t *testing.T) {
		_, err := client.Login(ctx, "ann@example.com", "not-the-password")
		require.Error(t, err)
		require.Equal(t, salesdk.ErrInvalidCredentials.Code, apiErrorCode(t, err))
	})

	t.Run("unknown email looks identical", func(t *testing.T) {
		_, err := client.Login(ctx, "ghost@example.com", "not-the-password")
		require.Error(t, err)
		require.Equal(t, salesdk.ErrInvalidCredentials.Code, apiErrorCode(t, err))
	})
}

func TestAuthGate(t *testing.T) {
	ctx := context.Background()
	srv, client := newTestServer(t)

	t.Run("sales require a token", func(t *testing.T) {
		resp := rawPost(t, srv.URL+"/api/sales", "", salesdk.SaleInput{
			CustomerName:  "Chris",
			CustomerPhone: "0411222333",
			CustomerEmail: "chris@customer.example",
			DeviceModel:   "Pixel 9",
		})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		require.Contains(t, resp.Header.Get("WWW-Authenticate"), "Bearer")
	})

	t.Run("garbage tokens are rejected", func(t *testing.T) {
		resp := rawPost(t, srv.URL+"/api/sales", "not.a.jwt", salesdk.SaleInput{})
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("check-in without a location is rejected", func(t *testing.T) {
		require.NoError(t, client.Register(ctx, registration("loc@example.com")))
		session, err := client.Login(ctx, "loc@example.com", "correct-horse-battery")
		require.NoError(t, err)

		resp := rawPost(t, srv.URL+"/api/auth/check-in", session.Token(), salesdk.CheckInRequest{})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("check-in with incomplete coordinates is rejected", func(t *testing.T) {
		require.NoError(t, client.Register(ctx, registration("coords@example.com")))
		session, err := client.Login(ctx, "coords@example.com", "correct-horse-battery")
		require.NoError(t, err)

		for _, body := range []map[string]any{
			{"location": map[string]any{}},
			{"location": map[string]any{"latitude": -27.47}},
			{"location": map[string]any{"longitude": 153.02}},
		} {
			resp := rawPost(t, srv.URL+"/api/auth/check-in", session.Token(), body)
			require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		}

		// The origin itself is a valid position.
		ack, err := session.CheckIn(ctx, salesdk.Location{Latitude: 0, Longitude: 0})
		require.NoError(t, err)
		require.NotEmpty(t, ack.Message)
	})
}

func TestSalesIsolation(t *testing.T) {
	ctx := context.Background()
	_, client := newTestServer(t)

	require.NoError(t, client.Register(ctx, registration("ann@example.com")))
	require.NoError(t, client.Register(ctx, registration("bob@example.com")))

	ann, err := client.Login(ctx, "ann@example.com", "correct-horse-battery")
	require.NoError(t, err)
	bob, err := client.Login(ctx, "bob@example.com", "correct-horse-battery")
	require.NoError(t, err)

	_, err = ann.RecordSale(ctx, salesdk.SaleInput{
		CustomerName:  "Anns Customer",
		CustomerPhone: "0411222333",
		CustomerEmail: "c@customer.example",
		DeviceModel:   "Pixel 9",
	})
	require.NoError(t, err)

	annSales, err := ann.ListTodaySales(ctx)
	require.NoError(t, err)
	require.Len(t, annSales, 1)

	bobSales, err := bob.ListTodaySales(ctx)
	require.NoError(t, err)
	require.Empty(t, bobSales)
}

func TestSalesValidationAndOrdering(t *testing.T) {
	ctx := context.Background()
	_, client := newTestServer(t)

	require.NoError(t, client.Register(ctx, registration("ann@example.com")))
	session, err := client.Login(ctx, "ann@example.com", "correct-horse-battery")
	require.NoError(t, err)

	t.Run("incomplete sale is rejected", func(t *testing.T) {
		_, err := session.RecordSale(ctx, salesdk.SaleInput{
			CustomerName: "Only A Name",
		})
		require.Error(t, err)
		require.Equal(t, salesdk.ErrMissingFields.Code, apiErrorCode(t, err))
	})

	t.Run("list is newest first", func(t *testing.T) {
		for _, name := range []string{"First", "Second", "Third"} {
			_, err := session.RecordSale(ctx, salesdk.SaleInput{
				CustomerName:  name,
				CustomerPhone: "0411222333",
				CustomerEmail: "c@customer.example",
				DeviceModel:   "Pixel 9",
			})
			require.NoError(t, err)
		}

		sales, err := session.ListTodaySales(ctx)
		require.NoError(t, err)
		require.Len(t, sales, 3)
		require.Equal(t, "Third", sales[0].CustomerName)
		require.Equal(t, "First", sales[2].CustomerName)
	})
}

func TestSystemEndpoints(t *testing.T) {
	ctx := context.Background()
	srv, client := newTestServer(t)

	t.Run("readyz reports healthy", func(t *testing.T) {
		health, err := client.Health(ctx)
		require.NoError(t, err)
		require.Equal(t, "ok", health.Status)
		require.NotNil(t, health.Checks)
		require.Equal(t, "ok", health.Checks.Database)
		require.Equal(t, "ok", health.Checks.Signer)
	})

	t.Run("jwks publishes the signing key", func(t *testing.T) {
		resp, err := http.Get(srv.URL + "/.well-known/jwks.json")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
