package sheets

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

func serviceAccountTokens(ctx context.Context, keyPath string) (oauth2.TokenSource, error) {
	key, err := os.ReadFile(keyPath) // #nosec G304
	if err != nil {
		return nil, fmt.Errorf("read service account key: %w", err)
	}
	jwt, err := google.JWTConfigFromJSON(key, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account key: %w", err)
	}
	return jwt.TokenSource(ctx), nil
}

func userTokens(ctx context.Context, config Config) (oauth2.TokenSource, error) {
	var token *oauth2.Token
	if config.RefreshToken != "" {
		token = &oauth2.Token{RefreshToken: config.RefreshToken, TokenType: "Bearer"}
	} else {
		saved, err := LoadToken(config.TokenFile)
		if err != nil {
			return nil, fmt.Errorf("load token file: %w", err)
		}
		token = saved
	}
	return oauthConfig(config.ClientID, config.ClientSecret, "").TokenSource(ctx, token), nil
}

// newService builds an authenticated Sheets client for whichever
// credentials config carries.
func newService(ctx context.Context, config Config) (*sheets.Service, error) {
	mode, err := config.authMode()
	if err != nil {
		return nil, err
	}

	var ts oauth2.TokenSource
	if mode == authServiceAccount {
		ts, err = serviceAccountTokens(ctx, config.ServiceAccountPath)
	} else {
		ts, err = userTokens(ctx, config)
	}
	if err != nil {
		return nil, err
	}

	return sheets.NewService(ctx, option.WithTokenSource(ts))
}
