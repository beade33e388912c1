package identity_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"tunelingo/internal/adapters/identity"
)

func testConfig(tokenURL, userinfoURL string) identity.Config {
	return identity.Config{
		ClientID:     "tunelingo-portal",
		ClientSecret: "secret",
		AuthURL:      "https://idp.example.com/authorize",
		TokenURL:     tokenURL,
		UserinfoURL:  userinfoURL,
		RedirectURL:  "https://app.example.com/auth/callback",
		Issuer:       "https://idp.example.com",
	}
}

// TestAuthCodeURL includes the client registration and session binding values.
func TestAuthCodeURL(t *testing.T) {
	client := identity.NewClient(testConfig("https://idp.example.com/token", ""))

	raw := client.AuthCodeURL("state-1", "nonce-1")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("AuthCodeURL() not a URL: %v", err)
	}
	q := u.Query()
	checks := map[string]string{
		"client_id":     "tunelingo-portal",
		"redirect_uri":  "https://app.example.com/auth/callback",
		"response_type": "code",
		"state":         "state-1",
		"nonce":         "nonce-1",
	}
	for key, want := range checks {
		if got := q.Get(key); got != want {
			t.Errorf("AuthCodeURL() %s = %q, want %q", key, got, want)
		}
	}
	if !strings.Contains(q.Get("scope"), "openid") {
		t.Errorf("AuthCodeURL() scope = %q, want openid", q.Get("scope"))
	}
}

// TestExchange posts the code as a form and decodes the token set.
func TestExchange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Fatalf("ParseForm: %v", err)
		}
		if r.PostForm.Get("grant_type") != "authorization_code" {
			t.Errorf("grant_type = %q", r.PostForm.Get("grant_type"))
		}
		if r.PostForm.Get("code") != "code-1" {
			t.Errorf("code = %q", r.PostForm.Get("code"))
		}
		_, _ = w.Write([]byte(`{
			"access_token": "at-1",
			"id_token": "idt-1",
			"expires_in": 3600,
			"token_type": "Bearer"
		}`))
	}))
	defer srv.Close()

	tokens, err := identity.NewClient(testConfig(srv.URL, "")).Exchange(context.Background(), "code-1")
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}
	if tokens.AccessToken != "at-1" || tokens.IDToken != "idt-1" {
		t.Errorf("Exchange() = %+v", tokens)
	}
}

// TestExchange_Rejected maps provider rejections to ErrExchangeFailed.
func TestExchange_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "invalid_grant"}`))
	}))
	defer srv.Close()

	_, err := identity.NewClient(testConfig(srv.URL, "")).Exchange(context.Background(), "stale-code")
	if !errors.Is(err, identity.ErrExchangeFailed) {
		t.Errorf("Exchange() error = %v, want ErrExchangeFailed", err)
	}
}

// TestUserinfo sends the bearer token and normalizes the email.
func TestUserinfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer at-1" {
			t.Errorf("Authorization = %q", got)
		}
		_, _ = w.Write([]byte(`{"sub": "u1", "email": " Learner@Example.COM ", "name": "Learner"}`))
	}))
	defer srv.Close()

	p, err := identity.NewClient(testConfig("", srv.URL)).Userinfo(context.Background(), "at-1")
	if err != nil {
		t.Fatalf("Userinfo() error = %v", err)
	}
	if p.Subject != "u1" || p.Email != "learner@example.com" {
		t.Errorf("Userinfo() = %+v", p)
	}
}

// TestUserinfo_MissingSub rejects profiles without a stable subject.
func TestUserinfo_MissingSub(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"email": "x@example.com"}`))
	}))
	defer srv.Close()

	_, err := identity.NewClient(testConfig("", srv.URL)).Userinfo(context.Background(), "at-1")
	if !errors.Is(err, identity.ErrUserinfoFailed) {
		t.Errorf("Userinfo() error = %v, want ErrUserinfoFailed", err)
	}
}

// TestConfigured requires the full credential set.
func TestConfigured(t *testing.T) {
	cfg := testConfig("https://idp.example.com/token", "")
	if !cfg.Configured() {
		t.Error("Configured() = false for complete config")
	}
	cfg.ClientSecret = ""
	if cfg.Configured() {
		t.Error("Configured() = true with empty secret")
	}
}
