// Package api provides the HTTP server and main wiring for the intake service.
//
// It exposes the WhatsApp webhook endpoints that drive the conversational
// intake dialogue, plus a small operations surface for health checks and
// inquiry management. The server integrates the messaging, dialog, session,
// and store modules.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guhanims/intakebot/internal/cloudapi"
	"github.com/guhanims/intakebot/internal/dialog"
	"github.com/guhanims/intakebot/internal/messaging"
	"github.com/guhanims/intakebot/internal/session"
	"github.com/guhanims/intakebot/internal/store"
	"github.com/guhanims/intakebot/internal/twiliowhatsapp"
	"github.com/guhanims/intakebot/internal/whatsapp"
)

// Messaging backend identifiers accepted by WithBackend and $MESSAGING_BACKEND.
const (
	BackendCloud     = "cloud"     // Meta WhatsApp Cloud API (webhook-driven)
	BackendWhatsmeow = "whatsmeow" // direct connection via whatsmeow
	BackendTwilio    = "twilio"    // Twilio WhatsApp API (webhook-driven)
)

// DefaultAddr is the default listen address for the API server.
const DefaultAddr = ":8080"

// DefaultShutdownTimeout bounds graceful HTTP shutdown.
const DefaultShutdownTimeout = 10 * time.Second

// Opts holds configuration options for the API server.
type Opts struct {
	Addr          string // HTTP listen address
	VerifyToken   string // Meta webhook verification token
	Backend       string // messaging backend identifier
	SweepInterval int    // session reaper interval in minutes
}

// Option defines a configuration option for the API server.
type Option func(*Opts)

// WithAddr sets the HTTP listen address.
func WithAddr(addr string) Option {
	return func(o *Opts) { o.Addr = addr }
}

// WithVerifyToken sets the Meta webhook verification token.
func WithVerifyToken(token string) Option {
	return func(o *Opts) { o.VerifyToken = token }
}

// WithBackend selects the messaging backend (cloud, whatsmeow, or twilio).
func WithBackend(backend string) Option {
	return func(o *Opts) { o.Backend = backend }
}

// WithSweepInterval sets the session reaper interval in minutes.
func WithSweepInterval(minutes int) Option {
	return func(o *Opts) { o.SweepInterval = minutes }
}

// Server bundles the HTTP handlers with the modules they drive.
type Server struct {
	addr        string
	verifyToken string
	st          store.Store
	sessions    *session.Store
	msgService  messaging.Service
	receiver    messaging.InboundReceiver
}

// NewServer creates a Server wired to the given modules. The receiver may be
// nil for backends that deliver inbound messages over their own connection.
func NewServer(st store.Store, sessions *session.Store, msgService messaging.Service, receiver messaging.InboundReceiver, opts ...Option) *Server {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.VerifyToken == "" {
		cfg.VerifyToken = os.Getenv("WHATSAPP_VERIFY_TOKEN")
	}
	return &Server{
		addr:        cfg.Addr,
		verifyToken: cfg.VerifyToken,
		st:          st,
		sessions:    sessions,
		msgService:  msgService,
		receiver:    receiver,
	}
}

// Handler returns the HTTP handler serving all API routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/webhook", s.webhookHandler)
	mux.HandleFunc("/twilio/webhook", s.twilioWebhookHandler)
	mux.HandleFunc("/health", s.healthHandler)
	mux.HandleFunc("/inquiries", s.inquiriesHandler)
	mux.HandleFunc("/inquiries/", s.inquiryStatusHandler)
	return mux
}

// buildStore constructs the inquiry store from the configured options,
// falling back to the in-memory store when no DSN is provided.
func buildStore(storeOpts []store.Option) (store.Store, error) {
	var cfg store.Opts
	for _, opt := range storeOpts {
		opt(&cfg)
	}
	if cfg.DSN == "" {
		slog.Info("No database DSN provided, using in-memory inquiry store")
		return store.NewInMemoryStore(), nil
	}
	if store.DetectDSNType(cfg.DSN) == "postgres" {
		slog.Info("Using PostgreSQL inquiry store")
		return store.NewPostgresStore(storeOpts...)
	}
	slog.Info("Using SQLite inquiry store", "path", cfg.DSN)
	return store.NewSQLiteStore(storeOpts...)
}

// buildService constructs the messaging backend. It returns the service and,
// for webhook-driven backends, the receiver the HTTP handlers feed.
func buildService(backend string, waOpts []whatsapp.Option) (messaging.Service, messaging.InboundReceiver, error) {
	switch backend {
	case BackendWhatsmeow:
		client, err := whatsapp.NewClient(waOpts...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create whatsmeow client: %w", err)
		}
		return messaging.NewWhatsAppService(client), nil, nil
	case BackendTwilio:
		client, err := twiliowhatsapp.NewClient()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Twilio client: %w", err)
		}
		svc := messaging.NewTwilioService(client)
		return svc, svc, nil
	case BackendCloud, "":
		client, err := cloudapi.NewClient()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Cloud API client: %w", err)
		}
		svc := messaging.NewCloudService(client)
		return svc, svc, nil
	default:
		return nil, nil, fmt.Errorf("unknown messaging backend %q", backend)
	}
}

// Run wires all modules together and serves the API until SIGINT or SIGTERM.
func Run(waOpts []whatsapp.Option, storeOpts []store.Option, sessionOpts []session.Option, apiOpts []Option) error {
	var cfg Opts
	for _, opt := range apiOpts {
		opt(&cfg)
	}
	if cfg.Backend == "" {
		cfg.Backend = os.Getenv("MESSAGING_BACKEND")
	}

	st, err := buildStore(storeOpts)
	if err != nil {
		return fmt.Errorf("failed to initialize inquiry store: %w", err)
	}
	defer st.Close()

	sessions := session.NewStore(sessionOpts...)

	var reaperOpts []session.ReaperOption
	if cfg.SweepInterval > 0 {
		reaperOpts = append(reaperOpts, session.WithSweepInterval(cfg.SweepInterval))
	}
	reaper := session.NewReaper(sessions, reaperOpts...)
	if err := reaper.Start(); err != nil {
		return fmt.Errorf("failed to start session reaper: %w", err)
	}
	defer reaper.Stop()

	svc, receiver, err := buildService(cfg.Backend, waOpts)
	if err != nil {
		return err
	}
	defer svc.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	engine := dialog.NewEngine(st)
	coordinator := dialog.NewCoordinator(sessions, engine, svc)
	dispatcher := messaging.NewDispatcher(svc, coordinator.HandleEvent)

	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start messaging service: %w", err)
	}
	dispatcher.Start(ctx)

	server := NewServer(st, sessions, svc, receiver, apiOpts...)
	httpSrv := &http.Server{
		Addr:    server.addr,
		Handler: server.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server listening", "addr", server.addr, "backend", cfg.Backend)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	case sig := <-sigCh:
		slog.Info("Shutdown signal received", "signal", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
	defer shutdownCancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Stop accepting new events, then let in-flight dialogue turns finish.
	cancel()
	dispatcher.Wait()
	slog.Info("API server stopped")
	return nil
}
