package backend_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"tunelingo/internal/adapters/backend"
	"tunelingo/internal/domain/grant"
)

// TestRequestGrant_Success verifies a successful grant passes the backend
// URL and cookies through untouched.
func TestRequestGrant_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("prefix"); got != "songs/golden" {
			t.Errorf("prefix = %q, want songs/golden", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("Authorization = %q, want Bearer tok-1", got)
		}
		w.Header().Add("Set-Cookie", "CloudFront-Policy=abc; Path=/")
		w.Header().Add("Set-Cookie", "CloudFront-Signature=def; Path=/")
		_, _ = w.Write([]byte(`{"success": true, "activityUrl": "https://cdn.example.com/songs/golden/index.html?sig=x"}`))
	}))
	defer srv.Close()

	client := backend.NewClient(srv.URL)
	g := client.RequestGrant(context.Background(), "songs/golden", "tok-1")
	if !g.Success {
		t.Fatalf("RequestGrant() = %+v, want success", g)
	}
	if g.ActivityURL == "" {
		t.Error("ActivityURL is empty")
	}
	if len(g.SetCookies) != 2 {
		t.Errorf("len(SetCookies) = %d, want 2", len(g.SetCookies))
	}
}

// TestRequestGrant_Anonymous verifies no Authorization header is sent
// without a token.
func TestRequestGrant_Anonymous(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Error("anonymous grant request carried an Authorization header")
		}
		_, _ = w.Write([]byte(`{"success": true, "activityUrl": "https://cdn.example.com/free"}`))
	}))
	defer srv.Close()

	g := backend.NewClient(srv.URL).RequestGrant(context.Background(), "songs/free", "")
	if !g.Success {
		t.Errorf("RequestGrant() = %+v, want success", g)
	}
}

// TestRequestGrant_FailureMapping maps backend answers to typed reasons.
func TestRequestGrant_FailureMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   grant.FailureReason
	}{
		{
			name: "error body subscription_required", status: http.StatusForbidden,
			body: `{"success": false, "error": "subscription_required"}`,
			want: grant.ReasonSubscriptionRequired,
		},
		{
			name: "error body authentication_required", status: http.StatusUnauthorized,
			body: `{"success": false, "error": "authentication_required"}`,
			want: grant.ReasonAuthenticationRequired,
		},
		{
			name: "bare 401", status: http.StatusUnauthorized,
			body: `{"success": false}`,
			want: grant.ReasonAuthenticationRequired,
		},
		{
			name: "bare 403", status: http.StatusForbidden,
			body: `{"success": false}`,
			want: grant.ReasonAccessDenied,
		},
		{
			name: "404 unknown locator", status: http.StatusNotFound,
			body: `{"success": false}`,
			want: grant.ReasonAccessDenied,
		},
		{
			name: "200 without token", status: http.StatusOK,
			body: `{"success": true}`,
			want: grant.ReasonServerError,
		},
		{
			name: "200 success false", status: http.StatusOK,
			body: `{"success": false}`,
			want: grant.ReasonServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			g := backend.NewClient(srv.URL).RequestGrant(context.Background(), "songs/x", "tok")
			if g.Success {
				t.Fatalf("RequestGrant() succeeded, want failure %s", tt.want)
			}
			if g.Reason != tt.want {
				t.Errorf("Reason = %s, want %s", g.Reason, tt.want)
			}
		})
	}
}

// TestRequestGrant_ServerError maps 5xx, malformed bodies and transport
// failures to server_error without raising.
func TestRequestGrant_ServerError(t *testing.T) {
	t.Run("5xx", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer srv.Close()
		g := backend.NewClient(srv.URL).RequestGrant(context.Background(), "songs/x", "tok")
		if g.Success || g.Reason != grant.ReasonServerError {
			t.Errorf("RequestGrant() = %+v, want server_error", g)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer srv.Close()
		g := backend.NewClient(srv.URL).RequestGrant(context.Background(), "songs/x", "tok")
		if g.Success || g.Reason != grant.ReasonServerError {
			t.Errorf("RequestGrant() = %+v, want server_error", g)
		}
	})

	t.Run("unreachable", func(t *testing.T) {
		g := backend.NewClient("http://127.0.0.1:1").RequestGrant(context.Background(), "songs/x", "tok")
		if g.Success || g.Reason != grant.ReasonServerError {
			t.Errorf("RequestGrant() = %+v, want server_error", g)
		}
	})
}
