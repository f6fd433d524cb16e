// Package auth obtains and caches OAuth2 tokens for the Google APIs gantta
// talks to.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/sheets/v4"
)

const (
	// ClientSecretsFile is the OAuth client downloaded from the Google Cloud
	// console, expected in the config directory.
	ClientSecretsFile = "credentials.json"

	// TokenFile caches the access and refresh token next to the secrets.
	TokenFile = "token.json"

	// LocalhostAuthPort receives the OAuth redirect.
	LocalhostAuthPort = "6789"

	authTimeout = 5 * time.Minute
)

// Scopes covers reading plans from Sheets and publishing to Calendar.
var Scopes = []string{
	sheets.SpreadsheetsReadonlyScope,
	calendar.CalendarEventsScope,
	calendar.CalendarReadonlyScope,
}

// Authenticator loads credentials from, and stores tokens in, Dir.
type Authenticator struct {
	Dir    string
	Scopes []string
	Logger *slog.Logger
}

func New(dir string) *Authenticator {
	return &Authenticator{Dir: dir, Scopes: Scopes, Logger: slog.Default()}
}

func (a *Authenticator) TokenPath() string {
	return filepath.Join(a.Dir, TokenFile)
}

// Config builds the oauth2.Config, forcing a loopback redirect on LocalhostAuthPort.
func (a *Authenticator) Config() (*oauth2.Config, error) {
	secrets := filepath.Join(a.Dir, ClientSecretsFile)
	b, err := os.ReadFile(secrets)
	if err != nil {
		return nil, fmt.Errorf("unable to read client secret file %s: %w", secrets, err)
	}

	cfg, err := google.ConfigFromJSON(b, a.Scopes...)
	if err != nil {
		return nil, fmt.Errorf("unable to parse client secret file to config: %w", err)
	}
	cfg.RedirectURL = loopbackRedirect(cfg.RedirectURL)
	return cfg, nil
}

// loopbackRedirect keeps the scheme and path of a localhost redirect but pins
// the port; anything else (including the retired OOB URI) is replaced.
func loopbackRedirect(raw string) string {
	fallback := fmt.Sprintf("http://localhost:%s/oauth2callback", LocalhostAuthPort)
	u, err := url.Parse(raw)
	if err != nil || raw == "" {
		return fallback
	}
	if u.Hostname() != "localhost" && u.Hostname() != "127.0.0.1" {
		return fallback
	}
	u.Host = net.JoinHostPort(u.Hostname(), LocalhostAuthPort)
	return u.String()
}

// Client returns an HTTP client that refreshes its token as needed. If no
// token is cached the browser flow is started.
func (a *Authenticator) Client(ctx context.Context) (*http.Client, error) {
	cfg, err := a.Config()
	if err != nil {
		return nil, err
	}

	tok, err := tokenFromFile(a.TokenPath())
	if err != nil {
		a.Logger.Info("no cached token, starting web authorization", "path", a.TokenPath())
		tok, err = a.tokenFromWeb(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to get token from web: %w", err)
		}
		if err := saveToken(a.TokenPath(), tok); err != nil {
			return nil, err
		}
	}

	src := cfg.TokenSource(ctx, tok)
	if fresh, err := src.Token(); err == nil && fresh.AccessToken != tok.AccessToken {
		if err := saveToken(a.TokenPath(), fresh); err != nil {
			a.Logger.Warn("could not cache refreshed token", "err", err)
		}
	}
	return oauth2.NewClient(ctx, src), nil
}

// Reset deletes the cached token so the next Client call re-authorizes.
func (a *Authenticator) Reset() error {
	err := os.Remove(a.TokenPath())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not delete token file '%s': %w", a.TokenPath(), err)
	}
	return nil
}

func (a *Authenticator) tokenFromWeb(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	listener, err := net.Listen("tcp", "localhost:"+LocalhostAuthPort)
	if err != nil {
		return nil, fmt.Errorf("failed to start listener on port %s: %w", LocalhostAuthPort, err)
	}

	server := &http.Server{
		Handler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := r.URL.Query().Get("code")
			if code == "" {
				http.Error(w, "Authorization code not found", http.StatusBadRequest)
				errCh <- fmt.Errorf("authorization code not found in redirect URL")
				return
			}
			fmt.Fprintln(w, "Authentication successful! You can close this window.")
			codeCh <- code
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()
	defer server.Shutdown(context.Background())

	authURL := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
	fmt.Fprintf(os.Stderr, "Open the following URL in your browser to authorize gantta:\n%s\n", authURL)

	select {
	case code := <-codeCh:
		exchangeCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		tok, err := cfg.Exchange(exchangeCtx, code)
		if err != nil {
			return nil, fmt.Errorf("unable to retrieve token from Google: %w", err)
		}
		return tok, nil
	case err := <-errCh:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(authTimeout):
		return nil, fmt.Errorf("authorization timed out, please try again")
	}
}

func tokenFromFile(path string) (*oauth2.Token, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	tok := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(tok); err != nil {
		return nil, fmt.Errorf("failed to decode token from file %s: %w", path, err)
	}
	return tok, nil
}

func saveToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("could not create token directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("unable to cache OAuth token to %s: %w", path, err)
	}
	defer f.Close()
	return json.NewEncoder(f).Encode(tok)
}
