// Package identity talks to the external identity provider. Members sign
// in through the provider's hosted pages; the portal only drives the
// authorization-code flow and verifies the resulting ID token. The portal
// never sees or stores member passwords.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	// ErrExchangeFailed reports that the provider rejected the code exchange.
	ErrExchangeFailed = errors.New("identity: code exchange failed")
	// ErrUserinfoFailed reports that the userinfo request failed.
	ErrUserinfoFailed = errors.New("identity: userinfo request failed")
)

const scope = "openid email profile"

// Config holds provider endpoints and client credentials.
type Config struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	UserinfoURL  string
	JWKSURL      string
	RedirectURL  string
	Issuer       string
}

// Configured reports whether the provider is fully set up. Login routes
// answer 503 when it is not, so a half-configured deploy fails loudly.
func (c Config) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.AuthURL != "" &&
		c.TokenURL != "" && c.RedirectURL != ""
}

// Configured reports whether the client's provider config is fully set up.
func (c *Client) Configured() bool {
	return c.cfg.Configured()
}

// TokenSet is the provider's response to a successful code exchange.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	IDToken      string `json:"id_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// Profile is the subset of userinfo the portal keeps.
type Profile struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}

// Client drives the authorization-code flow against one provider.
type Client struct {
	cfg  Config
	http *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// AuthCodeURL builds the provider URL the browser is redirected to.
// PRE: state and nonce are fresh random values bound to the session
func (c *Client) AuthCodeURL(state, nonce string) string {
	v := url.Values{}
	v.Set("client_id", c.cfg.ClientID)
	v.Set("redirect_uri", c.cfg.RedirectURL)
	v.Set("response_type", "code")
	v.Set("scope", scope)
	v.Set("state", state)
	v.Set("nonce", nonce)
	return c.cfg.AuthURL + "?" + v.Encode()
}

// Exchange trades an authorization code for tokens.
// PRE: code came back on the registered redirect URI
// POST: Returns the provider's token set, or ErrExchangeFailed
func (c *Client) Exchange(ctx context.Context, code string) (TokenSet, error) {
	form := url.Values{}
	form.Set("code", code)
	form.Set("client_id", c.cfg.ClientID)
	form.Set("client_secret", c.cfg.ClientSecret)
	form.Set("redirect_uri", c.cfg.RedirectURL)
	form.Set("grant_type", "authorization_code")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.TokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return TokenSet{}, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		slog.Warn("identity_event", "event", "exchange_transport_error", "error", err)
		return TokenSet{}, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		slog.Warn("identity_event", "event", "exchange_rejected", "status", resp.StatusCode)
		return TokenSet{}, fmt.Errorf("%w: status %d", ErrExchangeFailed, resp.StatusCode)
	}

	var tokens TokenSet
	if err := json.NewDecoder(resp.Body).Decode(&tokens); err != nil {
		return TokenSet{}, fmt.Errorf("%w: %v", ErrExchangeFailed, err)
	}
	if tokens.AccessToken == "" {
		return TokenSet{}, fmt.Errorf("%w: empty access token", ErrExchangeFailed)
	}
	return tokens, nil
}

// Userinfo fetches the member's profile with the access token.
// POST: Profile has a non-empty Subject, or ErrUserinfoFailed
func (c *Client) Userinfo(ctx context.Context, accessToken string) (Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.UserinfoURL, nil)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrUserinfoFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrUserinfoFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return Profile{}, fmt.Errorf("%w: status %d", ErrUserinfoFailed, resp.StatusCode)
	}

	var p Profile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return Profile{}, fmt.Errorf("%w: %v", ErrUserinfoFailed, err)
	}
	if p.Subject == "" {
		return Profile{}, fmt.Errorf("%w: userinfo missing sub", ErrUserinfoFailed)
	}
	p.Email = strings.TrimSpace(strings.ToLower(p.Email))
	return p, nil
}
