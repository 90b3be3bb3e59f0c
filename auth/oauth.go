package auth

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	googleoauth "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
)

// NewGoogleOAuthConfig builds the config for the admin "Sign in with Google"
// flow.
func NewGoogleOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes:       []string{"openid", "profile", "email"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  "https://accounts.google.com/o/oauth2/auth",
			TokenURL: "https://oauth2.googleapis.com/token",
		},
	}
}

// ExchangeCode redeems an authorization code for a token.
func ExchangeCode(ctx context.Context, cfg *oauth2.Config, code string) (*oauth2.Token, error) {
	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return token, nil
}

// VerifyGoogleToken validates an access token against Google and returns the
// verified email it belongs to.
func VerifyGoogleToken(ctx context.Context, accessToken string) (string, error) {
	service, err := googleoauth.NewService(ctx, option.WithHTTPClient(http.DefaultClient))
	if err != nil {
		return "", fmt.Errorf("failed to create OAuth2 service: %w", err)
	}

	tokenInfo, err := service.Tokeninfo().AccessToken(accessToken).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to validate token: %w", err)
	}

	if tokenInfo.Email == "" || !tokenInfo.VerifiedEmail {
		return "", fmt.Errorf("email not verified or missing")
	}
	return tokenInfo.Email, nil
}
