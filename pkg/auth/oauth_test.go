package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestLoopbackRedirect(t *testing.T) {
	assert.Equal(t, "http://localhost:6789", loopbackRedirect("http://localhost"))
	assert.Equal(t, "http://127.0.0.1:6789/cb", loopbackRedirect("http://127.0.0.1:8080/cb"))
	assert.Equal(t, "http://localhost:6789/oauth2callback", loopbackRedirect("urn:ietf:wg:oauth:2.0:oob"))
	assert.Equal(t, "http://localhost:6789/oauth2callback", loopbackRedirect(""))
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", TokenFile)
	tok := &oauth2.Token{AccessToken: "a", RefreshToken: "r", Expiry: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}

	require.NoError(t, saveToken(path, tok))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := tokenFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a", loaded.AccessToken)
	assert.Equal(t, "r", loaded.RefreshToken)
}

func TestConfigRequiresSecrets(t *testing.T) {
	a := New(t.TempDir())
	_, err := a.Config()
	assert.ErrorContains(t, err, ClientSecretsFile)
}

func TestConfigPinsRedirect(t *testing.T) {
	dir := t.TempDir()
	secrets := `{"installed":{"client_id":"id","client_secret":"s","auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token","redirect_uris":["http://localhost"]}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ClientSecretsFile), []byte(secrets), 0600))

	cfg, err := New(dir).Config()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:6789", cfg.RedirectURL)
	assert.Equal(t, Scopes, cfg.Scopes)
}

func TestResetMissingTokenIsFine(t *testing.T) {
	a := New(t.TempDir())
	require.NoError(t, a.Reset())

	require.NoError(t, saveToken(a.TokenPath(), &oauth2.Token{AccessToken: "x"}))
	require.NoError(t, a.Reset())
	_, err := os.Stat(a.TokenPath())
	assert.True(t, os.IsNotExist(err))
}
