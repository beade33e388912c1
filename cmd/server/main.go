package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "modernc.org/sqlite"

	"tunelingo/internal/adapters/backend"
	"tunelingo/internal/adapters/billing"
	emailPkg "tunelingo/internal/adapters/email"
	web "tunelingo/internal/adapters/http"
	"tunelingo/internal/adapters/http/perf"
	"tunelingo/internal/adapters/identity"
	"tunelingo/internal/adapters/storage"
	accountStore "tunelingo/internal/adapters/storage/account"
	beaconStore "tunelingo/internal/adapters/storage/beacon"
	newsletterStore "tunelingo/internal/adapters/storage/newsletter"
	outboxStore "tunelingo/internal/adapters/storage/outbox"
	"tunelingo/internal/application/orchestrators"
	"tunelingo/internal/domain/outbox"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	// Initialize database with WAL mode, foreign keys, and busy timeout
	dbPath := envOrDefault("TUNELINGO_DB", "tunelingo.db")
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	if err := storage.MigrateDB(db, dbPath); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultWindow)
	timedDB := storage.NewTimedDB(db, collector)

	acctStore := accountStore.NewSQLiteStore(timedDB)
	stores := &web.Stores{
		AccountStore:    acctStore,
		NewsletterStore: newsletterStore.NewSQLiteStore(timedDB),
		OutboxStore:     outboxStore.NewSQLiteStore(timedDB),
		BeaconStore:     beaconStore.NewSQLiteStore(timedDB),
	}

	// Seed default admin account if no accounts exist
	adminEmail := envOrDefault("TUNELINGO_ADMIN_EMAIL", "team@tunelingo.app")
	adminPassword := os.Getenv("TUNELINGO_ADMIN_PASSWORD")
	if adminPassword != "" {
		seedDeps := orchestrators.CreateAccountDeps{AccountStore: acctStore}
		if err := orchestrators.ExecuteSeedAdmin(context.Background(), seedDeps, adminEmail, adminPassword); err != nil {
			log.Fatalf("failed to seed admin: %v", err)
		}
	}

	// Backend content API: catalog, grants, favorites, share links, beacons
	backendURL := envOrDefault("TUNELINGO_BACKEND_URL", "https://api.tunelingo.app")
	backendClient := backend.NewClient(backendURL)
	backendClient.Instrument(collector)
	snapshot := backend.NewSnapshot(backendClient)

	loadCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := snapshot.Refresh(loadCtx); err != nil {
		// The site still serves; the catalog shows its degraded state
		// until a later refresh succeeds.
		log.Printf("WARNING: initial catalog load failed: %v", err)
	}
	cancel()

	refreshStopCh := make(chan struct{})
	orchestrators.StartCatalogRefresher(snapshot, 5*time.Minute, refreshStopCh)
	defer close(refreshStopCh)

	// Identity provider for member sign-in
	idpConfig := identity.Config{
		ClientID:     os.Getenv("TUNELINGO_IDP_CLIENT_ID"),
		ClientSecret: os.Getenv("TUNELINGO_IDP_CLIENT_SECRET"),
		AuthURL:      os.Getenv("TUNELINGO_IDP_AUTH_URL"),
		TokenURL:     os.Getenv("TUNELINGO_IDP_TOKEN_URL"),
		UserinfoURL:  os.Getenv("TUNELINGO_IDP_USERINFO_URL"),
		JWKSURL:      os.Getenv("TUNELINGO_IDP_JWKS_URL"),
		RedirectURL:  envOrDefault("TUNELINGO_IDP_REDIRECT_URL", "http://localhost:8080/auth/callback"),
		Issuer:       os.Getenv("TUNELINGO_IDP_ISSUER"),
	}
	if !idpConfig.Configured() {
		log.Println("WARNING: identity provider not configured — member sign-in is DISABLED")
	}

	clients := &web.Clients{
		Backend:  backendClient,
		Snapshot: snapshot,
		Identity: identity.NewClient(idpConfig),
		Verifier: identity.NewVerifier(idpConfig),
		Billing:  billing.NewClient(envOrDefault("TUNELINGO_BILLING_URL", backendURL)),
	}

	// Configure email sender
	resendKey := os.Getenv("TUNELINGO_RESEND_KEY")
	emailFrom := envOrDefault("TUNELINGO_RESEND_FROM", "TuneLingo <hello@tunelingo.app>")
	emailReply := envOrDefault("TUNELINGO_REPLY_TO", "support@tunelingo.app")
	var sender emailPkg.Sender
	if resendKey != "" {
		sender = emailPkg.NewResendSender(resendKey, emailFrom, emailReply)
		log.Println("Email sender configured (Resend)")
	} else {
		sender = emailPkg.NewNoopSender()
		if os.Getenv("TUNELINGO_ENV") == "production" {
			log.Println("WARNING: TUNELINGO_RESEND_KEY is not set — email delivery is DISABLED in production")
		} else {
			log.Println("Email sender configured (noop — set TUNELINGO_RESEND_KEY for real delivery)")
		}
	}
	web.SetEmailSender(sender)

	// Outbox worker drains queued emails and usage beacons
	executors := map[string]orchestrators.ActionExecutor{
		outbox.ActionTypeEmail:  &orchestrators.EmailExecutor{Sender: sender},
		outbox.ActionTypeBeacon: &orchestrators.BeaconExecutor{Forwarder: backendClient},
	}
	outboxStopCh := make(chan struct{})
	processor := orchestrators.NewOutboxProcessor(stores.OutboxStore, executors)
	orchestrators.StartBackgroundWorker(processor, 1*time.Minute, outboxStopCh)
	defer close(outboxStopCh)

	mux := web.NewMux("static", stores, clients, collector)

	addr := envOrDefault("TUNELINGO_ADDR", ":8080")
	log.Printf("TuneLingo %s starting on %s (env=%s, schema=%d)", version, addr, envOrDefault("TUNELINGO_ENV", "development"), storage.LatestSchemaVersion())

	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
