package jwt

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() Config {
	return Config{Issuer: "contenthub", Audience: "contenthub-users", TTL: time.Hour, KID: "test"}
}

func newKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func TestGenerateAndVerify(t *testing.T) {
	m := NewManager(newKey(t), testConfig())

	tok, err := m.Generator.GenerateAccessToken(42, "alice", "laptop")
	require.NoError(t, err)
	assert.NotEmpty(t, tok.JTI)
	assert.WithinDuration(t, time.Now().Add(time.Hour), tok.ExpiresAt, 5*time.Second)

	claims, err := m.Verifier.Verify(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "laptop", claims.Device)
	assert.Equal(t, tok.JTI, claims.ID)
}

func TestVerify_RejectsForeignKeyAndAudience(t *testing.T) {
	cfg := testConfig()
	signer := NewManager(newKey(t), cfg)
	other := NewManager(newKey(t), cfg)

	tok, err := signer.Generator.GenerateAccessToken(1, "bob", "")
	require.NoError(t, err)

	_, err = other.Verifier.Verify(tok.Value)
	assert.Error(t, err)

	wrongAud := NewVerifier(&signer.Generator.priv.PublicKey, cfg.Issuer, "someone-else")
	_, err = wrongAud.Verify(tok.Value)
	assert.Error(t, err)
}

func TestVerify_RejectsExpired(t *testing.T) {
	cfg := testConfig()
	cfg.TTL = -time.Minute
	m := NewManager(newKey(t), cfg)

	tok, err := m.Generator.GenerateAccessToken(1, "bob", "")
	require.NoError(t, err)

	_, err = m.Verifier.Verify(tok.Value)
	assert.Error(t, err)
}

func TestLoadAndBuild(t *testing.T) {
	key := newKey(t)
	dir := t.TempDir()

	privPath := filepath.Join(dir, "priv.pem")
	pubPath := filepath.Join(dir, "pub.pem")

	privBytes, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(privPath, pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: privBytes}), 0o600))

	pubBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(pubPath, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: pubBytes}), 0o600))

	cfg := testConfig()
	cfg.PrivPath = privPath
	cfg.PubPath = pubPath

	m, err := LoadAndBuild(cfg)
	require.NoError(t, err)

	tok, err := m.Generator.GenerateAccessToken(7, "carol", "")
	require.NoError(t, err)
	_, err = m.Verifier.Verify(tok.Value)
	assert.NoError(t, err)

	_, err = LoadAndBuild(Config{PrivPath: filepath.Join(dir, "missing.pem")})
	assert.Error(t, err)
}
