package app

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"log/slog"

	"github.com/fieldstack/canvasser/pkg/idx"
	"github.com/fieldstack/canvasser/pkg/jwtx"
)

// initSigningKeys generates an ephemeral Ed25519 signing key on startup.
// Keys live only in memory, so every restart invalidates outstanding
// tokens; with a one hour TTL that is an acceptable trade for not having
// to manage key storage.
func initSigningKeys(logger *slog.Logger) (jwtx.Signer, *jwtx.KeySet, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("generating Ed25519 key: %w", err)
	}

	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, nil, fmt.Errorf("marshalling key to PKCS8: %w", err)
	}
	pemKey := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	kid := idx.New().String()
	signer, err := jwtx.NewSignerEdDSA(kid, pemKey)
	if err != nil {
		return nil, nil, fmt.Errorf("creating signer: %w", err)
	}
	if err := signer.Validate(); err != nil {
		return nil, nil, err
	}

	keys := jwtx.NewKeySet()
	if err := keys.AddSigner(signer); err != nil {
		return nil, nil, fmt.Errorf("registering signer key: %w", err)
	}

	logger.Info("generated ephemeral signing key", "kid", kid, "alg", signer.Alg())
	logger.Warn("all existing tokens are now invalid due to key rotation on startup")

	return signer, keys, nil
}
