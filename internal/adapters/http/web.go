package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"os"
	"time"

	"tunelingo/internal/adapters/backend"
	"tunelingo/internal/adapters/billing"
	"tunelingo/internal/adapters/email"
	"tunelingo/internal/adapters/http/middleware"
	"tunelingo/internal/adapters/http/perf"
	"tunelingo/internal/adapters/identity"
	accountStore "tunelingo/internal/adapters/storage/account"
	beaconStore "tunelingo/internal/adapters/storage/beacon"
	newsletterStore "tunelingo/internal/adapters/storage/newsletter"
	outboxStore "tunelingo/internal/adapters/storage/outbox"
	"tunelingo/internal/application/orchestrators"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore    accountStore.Store
	NewsletterStore newsletterStore.Store
	OutboxStore     outboxStore.Store
	BeaconStore     beaconStore.Store
}

// Clients holds the external service clients the handlers call.
type Clients struct {
	Backend  *backend.Client
	Snapshot *backend.Snapshot
	Identity *identity.Client
	Verifier *identity.Verifier
	Billing  *billing.Client
}

// loadCSRFKey reads the CSRF secret from TUNELINGO_CSRF_KEY (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey() []byte {
	if keyHex := os.Getenv("TUNELINGO_CSRF_KEY"); keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("TUNELINGO_CSRF_KEY must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if os.Getenv("TUNELINGO_ENV") == "production" {
		log.Fatal("TUNELINGO_CSRF_KEY is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (sessions won't survive restart). Set TUNELINGO_CSRF_KEY for production.")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global clients instance (set by NewMux)
var clients *Clients

// Global session store instance
var sessions *middleware.SessionStore

// RateLimitPerSecond controls the per-IP rate limit. Tests can increase this.
var RateLimitPerSecond = 10

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// Global email sender instance (set by SetEmailSender)
var emailSender email.Sender

// startGuard deduplicates concurrent start attempts per session+activity.
var startGuard = orchestrators.NewInFlightGuard()

// SetEmailSender sets the global email sender for the application.
// From and reply-to defaults live on the sender itself.
func SetEmailSender(sender email.Sender) {
	emailSender = sender
}

// NewMux wires HTTP handlers for the app.
func NewMux(staticDir string, s *Stores, c *Clients, collector *perf.Collector) http.Handler {
	stores = s
	clients = c
	perfCollector = collector
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = os.Getenv("TUNELINGO_ENV") == "production"

	mux := http.NewServeMux()
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	registerRoutes(mux)

	// CSRF key: 32-byte hex-encoded secret from env var
	csrfKey := loadCSRFKey()

	// Rate limiter: configurable requests per second per IP (OWASP A04)
	limiter := middleware.NewRateLimiter(RateLimitPerSecond, time.Second)

	// Apply middleware: Timing -> Auth -> CSRF -> SecurityHeaders -> RateLimit -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.Auth(sessions),
		middleware.RateLimit(limiter),
		middleware.Timing(collector),
	)
}
