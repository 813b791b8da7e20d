package service_test

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fieldstack/canvasser/internal/canvasser/service"
	"github.com/fieldstack/canvasser/internal/canvasser/store"
	"github.com/fieldstack/canvasser/internal/canvasser/store/drivers/sqlite"
	"github.com/fieldstack/canvasser/pkg/cryptox"
	"github.com/fieldstack/canvasser/pkg/jwtx"
	"github.com/stretchr/testify/require"
)

const testIssuer = "https://canvasser.test"

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "canvasser-service-test")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	require.NoError(t, s.ApplyMigrations())
	return s
}

func newTestSigner(t *testing.T) jwtx.Signer {
	t.Helper()

	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	require.NoError(t, err)
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	signer, err := jwtx.NewSignerEdDSA("test-key", pemKey)
	require.NoError(t, err)
	return signer
}

func newAuthService(t *testing.T) *service.AuthService {
	t.Helper()
	return service.NewAuthService(newTestStore(t), newTestSigner(t), testIssuer, time.Hour)
}

func validRegistration() service.RegisterParams {
	return service.RegisterParams{
		Email:    "ann@example.com",
		Password: "hunter2hunter2",
		Name:     "Ann Smith",
		Phone:    "0400123456",
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a user with a hashed password", func(t *testing.T) {
		auth := newAuthService(t)

		user, err := auth.Register(ctx, validRegistration())
		require.NoError(t, err)
		require.False(t, user.ID.IsZero())
		require.Equal(t, "ann@example.com", user.Email)
		require.NotEqual(t, "hunter2hunter2", user.PasswordHash)
		require.NoError(t, cryptox.VerifyPassword("hunter2hunter2", user.PasswordHash))
	})

	t.Run("normalises the email", func(t *testing.T) {
		auth := newAuthService(t)

		p := validRegistration()
		p.Email = "  Ann@Example.COM "
		user, err := auth.Register(ctx, p)
		require.NoError(t, err)
		require.Equal(t, "ann@example.com", user.Email)
	})

	t.Run("rejects missing fields", func(t *testing.T) {
		auth := newAuthService(t)

		for _, mutate := range []func(*service.RegisterParams){
			func(p *service.RegisterParams) { p.Email = "" },
			func(p *service.RegisterParams) { p.Password = "" },
			func(p *service.RegisterParams) { p.Name = "" },
			func(p *service.RegisterParams) { p.Phone = "" },
		} {
			p := validRegistration()
			mutate(&p)
			_, err := auth.Register(ctx, p)
			require.ErrorIs(t, err, service.ErrMissingFields)
		}
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		auth := newAuthService(t)

		_, err := auth.Register(ctx, validRegistration())
		require.NoError(t, err)

		p := validRegistration()
		p.Name = "Other Ann"
		_, err = auth.Register(ctx, p)
		require.ErrorIs(t, err, service.ErrDuplicateEmail)
	})

	t.Run("duplicate check is case insensitive", func(t *testing.T) {
		auth := newAuthService(t)

		_, err := auth.Register(ctx, validRegistration())
		require.NoError(t, err)

		p := validRegistration()
		p.Email = "ANN@EXAMPLE.COM"
		_, err = auth.Register(ctx, p)
		require.ErrorIs(t, err, service.ErrDuplicateEmail)
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("returns a verifiable token", func(t *testing.T) {
		st := newTestStore(t)
		signer := newTestSigner(t)
		auth := service.NewAuthService(st, signer, testIssuer, time.Hour)

		user, err := auth.Register(ctx, validRegistration())
		require.NoError(t, err)

		token, got, err := auth.Login(ctx, "ann@example.com", "hunter2hunter2")
		require.NoError(t, err)
		require.Equal(t, user.ID, got.ID)

		keys := jwtx.NewKeySet()
		require.NoError(t, keys.AddSigner(signer))
		verifier := jwtx.NewVerifierEdDSA(keys, testIssuer)

		claims, err := verifier.Verify(token)
		require.NoError(t, err)
		require.Equal(t, user.ID.String(), claims.Subject)
		require.Equal(t, "ann@example.com", claims.Email)
		require.Equal(t, "Ann Smith", claims.Name)
	})

	t.Run("token issued beyond the ttl no longer verifies", func(t *testing.T) {
		st := newTestStore(t)
		signer := newTestSigner(t)
		auth := service.NewAuthService(st, signer, testIssuer, time.Hour)

		// Pretend the login happened two hours ago.
		auth.Now = func() time.Time { return time.Now().Add(-2 * time.Hour) }

		_, err := auth.Register(ctx, validRegistration())
		require.NoError(t, err)

		token, _, err := auth.Login(ctx, "ann@example.com", "hunter2hunter2")
		require.NoError(t, err)

		keys := jwtx.NewKeySet()
		require.NoError(t, keys.AddSigner(signer))
		verifier := jwtx.NewVerifierEdDSA(keys, testIssuer)

		_, err = verifier.Verify(token)
		require.Error(t, err)
	})

	t.Run("wrong password yields invalid credentials", func(t *testing.T) {
		auth := newAuthService(t)

		_, err := auth.Register(ctx, validRegistration())
		require.NoError(t, err)

		_, _, err = auth.Login(ctx, "ann@example.com", "wrong-password")
		require.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("unknown email yields the same error as wrong password", func(t *testing.T) {
		auth := newAuthService(t)

		_, _, err := auth.Login(ctx, "nobody@example.com", "whatever123")
		require.ErrorIs(t, err, service.ErrInvalidCredentials)
	})

	t.Run("empty credentials are missing fields", func(t *testing.T) {
		auth := newAuthService(t)

		_, _, err := auth.Login(ctx, "", "")
		require.ErrorIs(t, err, service.ErrMissingFields)
	})
}
