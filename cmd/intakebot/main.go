package main

import (
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/guhanims/intakebot/internal/api"
	"github.com/guhanims/intakebot/internal/lockfile"
	"github.com/guhanims/intakebot/internal/session"
	"github.com/guhanims/intakebot/internal/store"
	"github.com/guhanims/intakebot/internal/util"
	"github.com/guhanims/intakebot/internal/whatsapp"
	"github.com/joho/godotenv"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for intakebot state data
	DefaultStateDir = "/var/lib/intakebot"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "intakebot.db"
)

func main() {
	// Initialize structured logger
	initializeLogger()

	// Load environment configuration
	config := loadEnvironmentConfig()

	// Parse command line flags
	flags := parseCommandLineFlags(config)

	// Ensure required directories exist
	if err := ensureDirectoriesExist(flags); err != nil {
		slog.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	// Guard the state directory against concurrent instances
	lock, err := lockfile.AcquireLock(*flags.stateDir)
	if err != nil {
		slog.Error("Failed to acquire state directory lock", "error", err)
		os.Exit(1)
	}
	defer lock.Release()

	// Build module options
	waOpts := buildWhatsAppOptions(flags)
	storeOpts := buildStoreOptions(flags)
	sessionOpts := buildSessionOptions(flags)
	apiOpts := buildAPIOptions(flags)

	// Start the service
	slog.Info("Bootstrapping intakebot with configured modules")
	slog.Debug("Module options counts", "whatsapp", len(waOpts), "store", len(storeOpts), "session", len(sessionOpts), "api", len(apiOpts))
	slog.Debug("Final configuration", "state_dir", *flags.stateDir, "dsn_set", *flags.dbDSN != "", "api_addr", *flags.apiAddr, "backend", *flags.backend)
	if err := api.Run(waOpts, storeOpts, sessionOpts, apiOpts); err != nil {
		slog.Error("intakebot failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("intakebot exited successfully")
}

// Config holds environment configuration
type Config struct {
	DatabaseURL string
	StateDir    string
	APIAddr     string
	Backend     string
	VerifyToken string
}

// Flags holds command line flag values
type Flags struct {
	qrOutput    *string
	numeric     *bool
	stateDir    *string
	dbDSN       *string
	apiAddr     *string
	backend     *string
	verifyToken *string
	sessionTTL  *int
	sweepEvery  *int
}

// initializeLogger sets up structured logging; $DEBUG enables debug level
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	} else {
		slog.Debug("successfully loaded .env file")
	}

	config := Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		StateDir:    os.Getenv("INTAKEBOT_STATE_DIR"),
		APIAddr:     os.Getenv("API_ADDR"),
		Backend:     os.Getenv("MESSAGING_BACKEND"),
		VerifyToken: os.Getenv("WHATSAPP_VERIFY_TOKEN"),
	}

	// Set default state directory if not specified
	if config.StateDir == "" {
		config.StateDir = DefaultStateDir
		slog.Debug("No INTAKEBOT_STATE_DIR set, using default", "default_state_dir", config.StateDir)
	}

	// If no database URL is provided, default to SQLite in the state directory
	if config.DatabaseURL == "" {
		config.DatabaseURL = filepath.Join(config.StateDir, DefaultDBFileName)
		slog.Debug("No database DSN provided, defaulting to SQLite", "sqlite_path", config.DatabaseURL)
	}

	slog.Debug("environment variables loaded",
		"DATABASE_URL_SET", config.DatabaseURL != "",
		"INTAKEBOT_STATE_DIR", config.StateDir,
		"API_ADDR", config.APIAddr,
		"MESSAGING_BACKEND", config.Backend,
		"WHATSAPP_VERIFY_TOKEN_SET", config.VerifyToken != "")

	return config
}

// parseCommandLineFlags parses command line arguments with environment defaults
func parseCommandLineFlags(config Config) Flags {
	flags := Flags{
		qrOutput:    flag.String("qr-output", "", "path to write login QR code (whatsmeow backend)"),
		numeric:     flag.Bool("numeric-code", false, "use numeric login code instead of QR code (whatsmeow backend)"),
		stateDir:    flag.String("state-dir", config.StateDir, "state directory for intakebot data (overrides $INTAKEBOT_STATE_DIR)"),
		dbDSN:       flag.String("db-dsn", config.DatabaseURL, "database DSN for the inquiry store (overrides $DATABASE_URL)"),
		apiAddr:     flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)"),
		backend:     flag.String("backend", config.Backend, "messaging backend: cloud, whatsmeow, or twilio (overrides $MESSAGING_BACKEND)"),
		verifyToken: flag.String("verify-token", config.VerifyToken, "Meta webhook verification token (overrides $WHATSAPP_VERIFY_TOKEN)"),
		sessionTTL:  flag.Int("session-ttl", 0, "session idle timeout in minutes (default 30)"),
		sweepEvery:  flag.Int("sweep-interval", 0, "expired session sweep interval in minutes (default 5)"),
	}

	flag.Parse()

	slog.Debug("flags parsed",
		"qrOutput", *flags.qrOutput,
		"numeric", *flags.numeric,
		"stateDir", *flags.stateDir,
		"dbDSN_set", *flags.dbDSN != "",
		"apiAddr", *flags.apiAddr,
		"backend", *flags.backend,
		"sessionTTL", *flags.sessionTTL,
		"sweepEvery", *flags.sweepEvery)

	// Update database DSN if not explicitly set but state directory is provided
	if *flags.dbDSN == config.DatabaseURL && config.DatabaseURL == filepath.Join(config.StateDir, DefaultDBFileName) && *flags.stateDir != config.StateDir {
		*flags.dbDSN = filepath.Join(*flags.stateDir, DefaultDBFileName)
		slog.Debug("Updated dbDSN based on state directory", "dsn_updated", true, "old_state_dir", config.StateDir, "new_state_dir", *flags.stateDir)
	}

	return flags
}

// ensureDirectoriesExist creates necessary directories for file-based storage
func ensureDirectoriesExist(flags Flags) error {
	// Ensure state directory exists if we're using a file-based DSN
	if !strings.Contains(*flags.dbDSN, "postgres://") && !strings.Contains(*flags.dbDSN, "host=") {
		stateDir := filepath.Dir(*flags.dbDSN)
		slog.Debug("Creating state directory for file-based database", "state_dir", stateDir)
		if err := os.MkdirAll(stateDir, 0755); err != nil {
			slog.Error("Failed to create state directory", "error", err, "state_dir", stateDir)
			return err
		}
	}
	return nil
}

// buildWhatsAppOptions constructs WhatsApp client configuration options
func buildWhatsAppOptions(flags Flags) []whatsapp.Option {
	var waOpts []whatsapp.Option
	if *flags.qrOutput != "" {
		waOpts = append(waOpts, whatsapp.WithQRCodeOutput(*flags.qrOutput))
	}
	if *flags.numeric {
		waOpts = append(waOpts, whatsapp.WithNumericCode())
	}
	if *flags.dbDSN != "" {
		waOpts = append(waOpts, whatsapp.WithDBDSN(*flags.dbDSN))
	}
	return waOpts
}

// buildStoreOptions constructs inquiry store configuration options
func buildStoreOptions(flags Flags) []store.Option {
	var storeOpts []store.Option
	if *flags.dbDSN != "" {
		if store.DetectDSNType(*flags.dbDSN) == "postgres" {
			slog.Debug("Detected PostgreSQL DSN, configuring PostgreSQL store", "dsn_type", "postgresql", "dsn_set", true)
			storeOpts = append(storeOpts, store.WithPostgresDSN(*flags.dbDSN))
		} else {
			slog.Debug("Detected SQLite DSN, configuring SQLite store", "dsn_type", "sqlite", "db_path", *flags.dbDSN)
			storeOpts = append(storeOpts, store.WithSQLiteDSN(*flags.dbDSN))
		}
	} else {
		slog.Debug("No database DSN provided, will use in-memory store")
	}
	return storeOpts
}

// buildSessionOptions constructs session store configuration options
func buildSessionOptions(flags Flags) []session.Option {
	var sessionOpts []session.Option
	if *flags.sessionTTL > 0 {
		sessionOpts = append(sessionOpts, session.WithTTL(time.Duration(*flags.sessionTTL)*time.Minute))
	}
	return sessionOpts
}

// buildAPIOptions constructs API server configuration options
func buildAPIOptions(flags Flags) []api.Option {
	var apiOpts []api.Option
	if *flags.apiAddr != "" {
		apiOpts = append(apiOpts, api.WithAddr(*flags.apiAddr))
	}
	if *flags.backend != "" {
		apiOpts = append(apiOpts, api.WithBackend(*flags.backend))
	}
	if *flags.verifyToken != "" {
		apiOpts = append(apiOpts, api.WithVerifyToken(*flags.verifyToken))
	}
	if *flags.sweepEvery > 0 {
		apiOpts = append(apiOpts, api.WithSweepInterval(*flags.sweepEvery))
	}
	return apiOpts
}
