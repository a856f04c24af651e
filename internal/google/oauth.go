// Package google adapts the Google identity provider and the Sheets API
// to the interfaces the rest of the server works against.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/schoolerp/apiserver/internal/records"
	"golang.org/x/oauth2"
	googleoauth "golang.org/x/oauth2/google"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Scopes requested during login. Spreadsheets and drive.file cover the
// per-user ERP spreadsheet; the rest identify the user.
var Scopes = []string{
	"https://www.googleapis.com/auth/userinfo.profile",
	"https://www.googleapis.com/auth/userinfo.email",
	"openid",
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/drive.file",
}

// Profile is the user identity reported by Google after login.
type Profile struct {
	Email string
	Name  string
}

// Client wraps the OAuth2 client configuration loaded from the Google
// client-secrets file. It serves both the login flow and per-user
// Sheets sessions.
type Client struct {
	cfg *oauth2.Config
}

func NewClient(secretsFile, redirectURL string) (*Client, error) {
	data, err := os.ReadFile(secretsFile)
	if err != nil {
		return nil, fmt.Errorf("read client secrets: %w", err)
	}
	cfg, err := googleoauth.ConfigFromJSON(data, Scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse client secrets: %w", err)
	}
	cfg.RedirectURL = redirectURL
	return &Client{cfg: cfg}, nil
}

// AuthCodeURL builds the provider redirect for the login flow. Offline
// access with a forced consent prompt guarantees a refresh token on
// every login, not just the first.
func (c *Client) AuthCodeURL(state string) string {
	return c.cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)
}

// Exchange trades the callback authorization code for tokens.
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := c.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return token, nil
}

// Userinfo fetches the authenticated user's email and display name.
func (c *Client) Userinfo(ctx context.Context, token *oauth2.Token) (Profile, error) {
	svc, err := oauth2api.NewService(ctx, option.WithTokenSource(c.cfg.TokenSource(ctx, token)))
	if err != nil {
		return Profile{}, fmt.Errorf("build userinfo service: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return Profile{}, wrapAPIError("fetch userinfo", err)
	}
	if info.Email == "" {
		return Profile{}, errors.New("userinfo response carries no email")
	}
	return Profile{Email: info.Email, Name: info.Name}, nil
}

// ForUser opens a Sheets session authorized by the user's refresh
// token. The token source refreshes access tokens on demand.
func (c *Client) ForUser(ctx context.Context, refreshToken string) (records.RowStore, error) {
	ts := c.cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	svc, err := sheets.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("build sheets service: %w", err)
	}
	return &SheetsStore{svc: svc}, nil
}
