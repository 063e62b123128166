package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/sheets/v4"
)

// DefaultCallbackAddr is where Authorize listens for the OAuth redirect.
const DefaultCallbackAddr = "localhost:8085"

const authTimeout = 5 * time.Minute

// ErrAuthorization is returned when the browser consent flow fails.
var ErrAuthorization = errors.New("sheets authorization failed")

func oauthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       []string{sheets.SpreadsheetsScope},
	}
}

// AuthOptions configures the interactive consent flow.
type AuthOptions struct {
	// ShowURL is called with the consent URL the user must open.
	ShowURL      func(url string)
	ClientID     string
	ClientSecret string
	CallbackAddr string
	TokenFile    string
}

// Authorize runs the OAuth consent flow against a local callback server and
// returns a token carrying a refresh token. The token is saved to TokenFile
// when one is set.
func Authorize(ctx context.Context, opts AuthOptions) (*oauth2.Token, error) {
	if opts.ClientID == "" || opts.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client id and secret are required", ErrAuthorization)
	}
	if opts.CallbackAddr == "" {
		opts.CallbackAddr = DefaultCallbackAddr
	}

	stateID, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("generate state: %w", err)
	}
	state := stateID.String()

	listener, err := net.Listen("tcp", opts.CallbackAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to start callback server: %w", err)
	}

	cfg := oauthConfig(opts.ClientID, opts.ClientSecret, "http://"+listener.Addr().String()+"/callback")

	codes := make(chan string, 1)
	errs := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			errs <- fmt.Errorf("%w: state mismatch", ErrAuthorization)
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "no authorization code received", http.StatusBadRequest)
			errs <- fmt.Errorf("%w: no authorization code received", ErrAuthorization)
			return
		}
		_, _ = fmt.Fprintln(w, "Authorization complete. You can close this window.")
		codes <- code
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		if serveErr := server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			errs <- fmt.Errorf("callback server: %w", serveErr)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	authURL := cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	if opts.ShowURL != nil {
		opts.ShowURL(authURL)
	} else {
		slog.Info("open this URL to authorize Google Sheets access", "url", authURL)
	}

	var code string
	select {
	case code = <-codes:
	case err := <-errs:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(authTimeout):
		return nil, fmt.Errorf("%w: no response within %s", ErrAuthorization, authTimeout)
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: exchange code: %w", ErrAuthorization, err)
	}

	if opts.TokenFile != "" {
		if err := SaveToken(opts.TokenFile, token); err != nil {
			return token, err
		}
		slog.Info("token saved", "file", opts.TokenFile)
	}
	return token, nil
}

// LoadToken reads a token written by SaveToken.
func LoadToken(path string) (*oauth2.Token, error) {
	f, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	token := &oauth2.Token{}
	if err := json.NewDecoder(f).Decode(token); err != nil {
		return nil, fmt.Errorf("decode token: %w", err)
	}
	if token.RefreshToken == "" {
		return nil, fmt.Errorf("%w: token file has no refresh token", ErrAuthorization)
	}
	return token, nil
}

// SaveToken writes token to path with owner-only permissions.
func SaveToken(path string, token *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o600) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create token file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := json.NewEncoder(f).Encode(token); err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	return nil
}
