// Package whatsapp wraps the Whatsmeow client for direct WhatsApp connectivity.
//
// It provides methods for sending text, button, and list messages and exposes
// the underlying client for event handling.
package whatsapp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/guhanims/intakebot/internal/models"
	"github.com/guhanims/intakebot/internal/store"
	"github.com/mdp/qrterminal/v3"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	waLog "go.mau.fi/whatsmeow/util/log"
	"google.golang.org/protobuf/proto"
)

// Constants for WhatsApp client configuration
const (
	// DefaultSQLitePath is the default path for the whatsmeow SQLite database
	DefaultSQLitePath = "/var/lib/intakebot/whatsmeow.db"
	// JIDSuffix is the WhatsApp JID suffix for regular users
	JIDSuffix = "s.whatsapp.net"
)

// Sender is an interface for sending WhatsApp messages (for production and testing)
type Sender interface {
	SendMessage(ctx context.Context, to string, body string) error
	SendButtons(ctx context.Context, to, body string, buttons []models.Button) error
	SendList(ctx context.Context, to, body, buttonLabel string, sections []models.ListSection) error
}

// Opts holds configuration options for the WhatsApp client.
type Opts struct {
	DBDSN       string // whatsmeow database connection string
	QRPath      string // path to write login QR code
	NumericCode bool   // use numeric login code instead of QR code
}

// Option defines a configuration option for the WhatsApp client.
type Option func(*Opts)

// WithDBDSN sets the whatsmeow database connection string.
func WithDBDSN(dsn string) Option {
	return func(o *Opts) {
		o.DBDSN = dsn
	}
}

// WithQRCodeOutput instructs the client to write the login QR code to the specified path.
func WithQRCodeOutput(path string) Option {
	return func(o *Opts) {
		o.QRPath = path
	}
}

// WithNumericCode instructs the client to use a numeric login code instead of a QR code.
func WithNumericCode() Option {
	return func(o *Opts) {
		o.NumericCode = true
	}
}

// Client wraps the Whatsmeow client for modular use
type Client struct {
	waClient *whatsmeow.Client
}

// NewClient creates a new WhatsApp client, applying any provided options for customization.
// It configures the whatsmeow session database and performs login if needed.
func NewClient(opts ...Option) (*Client, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("WhatsApp NewClient options set", "DBDSN_set", cfg.DBDSN != "", "QRPath_set", cfg.QRPath != "", "NumericCode", cfg.NumericCode)

	dbDSN := cfg.DBDSN
	if dbDSN == "" {
		dbDSN = DefaultSQLitePath
		slog.Debug("No WhatsApp database DSN provided, using default SQLite path", "default_path", dbDSN)
	}

	// Auto-detect database driver based on DSN
	var dbDriver string
	if store.DetectDSNType(dbDSN) == "postgres" {
		dbDriver = "postgres"
		slog.Debug("WhatsApp client auto-detected PostgreSQL driver", "dsn_type", "postgresql")
	} else {
		dbDriver = "sqlite3"
		slog.Debug("WhatsApp client auto-detected SQLite driver", "dsn_type", "sqlite")

		// whatsmeow strongly recommends foreign keys on SQLite
		if !strings.Contains(dbDSN, "_foreign_keys") && !strings.Contains(dbDSN, "foreign_keys") {
			slog.Warn("SQLite database for WhatsApp does not appear to have foreign keys enabled. "+
				"Consider adding '?_foreign_keys=on' to your connection string.",
				"dsn_example", "file:"+dbDSN+"?_foreign_keys=on")
		}
	}

	slog.Debug("WhatsApp NewClient initializing DB store", "driver", dbDriver, "dsn_set", dbDSN != "")
	logger := waLog.Stdout("Database", "INFO", true)
	ctx := context.Background()
	container, err := sqlstore.New(ctx, dbDriver, dbDSN, logger)
	if err != nil {
		slog.Error("Failed to initialize WhatsApp DB store", "error", err)
		return nil, fmt.Errorf("failed to initialize WhatsApp database store: %w", err)
	}

	deviceStore, err := container.GetFirstDevice(ctx)
	if err != nil {
		slog.Error("Failed to get first device from store", "error", err)
		return nil, fmt.Errorf("failed to get device from WhatsApp store: %w", err)
	}

	clientLog := waLog.Stdout("Client", "INFO", true)
	waClient := whatsmeow.NewClient(deviceStore, clientLog)

	if waClient.Store.ID == nil {
		slog.Info("WhatsApp login required; starting QR code flow")
		qrChan, _ := waClient.GetQRChannel(context.Background())
		err = waClient.Connect()
		if err != nil {
			slog.Error("Failed to connect to WhatsApp during login", "error", err)
			return nil, fmt.Errorf("failed to connect to WhatsApp during login: %w", err)
		}
		writer := io.Writer(os.Stdout)
		if cfg.QRPath != "" {
			f, ferr := os.Create(cfg.QRPath)
			if ferr != nil {
				slog.Error("Failed to create QR file", "error", ferr)
				return nil, fmt.Errorf("failed to create QR file: %w", ferr)
			}
			defer f.Close()
			writer = f
		}
		for evt := range qrChan {
			if evt.Event == "code" {
				slog.Debug("WhatsApp login event code received", "code", evt.Code)
				if cfg.NumericCode {
					fmt.Fprintln(writer, evt.Code)
				} else {
					qrterminal.GenerateHalfBlock(evt.Code, qrterminal.L, writer)
				}
			} else {
				slog.Debug("WhatsApp login event", "event", evt.Event)
				fmt.Println("Login event:", evt.Event)
			}
		}
	} else {
		slog.Debug("WhatsApp already logged in, connecting to server")
		if err := waClient.Connect(); err != nil {
			slog.Error("Failed to connect to WhatsApp server", "error", err)
			return nil, fmt.Errorf("failed to connect to WhatsApp server: %w", err)
		}
	}
	slog.Info("WhatsApp client connected successfully")
	return &Client{waClient: waClient}, nil
}

func (c *Client) checkReady(to string) error {
	if c.waClient == nil {
		return fmt.Errorf("whatsapp client not initialized")
	}
	if c.waClient.Store == nil {
		return fmt.Errorf("whatsapp client store not available")
	}
	if to == "" {
		return fmt.Errorf("recipient cannot be empty")
	}
	return nil
}

// SendMessage sends a plain text WhatsApp message to the specified recipient.
func (c *Client) SendMessage(ctx context.Context, to string, body string) error {
	if err := c.checkReady(to); err != nil {
		return err
	}
	if body == "" {
		return fmt.Errorf("message body cannot be empty")
	}

	slog.Debug("Sending WhatsApp message", "to", to, "body_length", len(body))
	jid := types.NewJID(to, JIDSuffix)
	msg := &waE2E.Message{Conversation: &body}

	_, err := c.waClient.SendMessage(ctx, jid, msg)
	if err != nil {
		slog.Error("Failed to send WhatsApp message", "error", err, "to", to)
		return fmt.Errorf("failed to send message to %s: %w", to, err)
	}

	slog.Debug("WhatsApp message sent successfully", "to", to)
	return nil
}

// SendButtons sends a quick-reply button message to the specified recipient.
func (c *Client) SendButtons(ctx context.Context, to, body string, buttons []models.Button) error {
	if err := c.checkReady(to); err != nil {
		return err
	}
	if len(buttons) == 0 {
		return fmt.Errorf("button message requires at least one button")
	}

	waButtons := make([]*waE2E.ButtonsMessage_Button, 0, len(buttons))
	for _, b := range buttons {
		waButtons = append(waButtons, &waE2E.ButtonsMessage_Button{
			ButtonID:   proto.String(b.ID),
			ButtonText: &waE2E.ButtonsMessage_Button_ButtonText{DisplayText: proto.String(b.Title)},
			Type:       waE2E.ButtonsMessage_Button_RESPONSE.Enum(),
		})
	}
	msg := &waE2E.Message{
		ButtonsMessage: &waE2E.ButtonsMessage{
			ContentText: proto.String(body),
			Buttons:     waButtons,
		},
	}

	slog.Debug("Sending WhatsApp button message", "to", to, "buttons", len(buttons))
	jid := types.NewJID(to, JIDSuffix)
	if _, err := c.waClient.SendMessage(ctx, jid, msg); err != nil {
		slog.Error("Failed to send WhatsApp button message", "error", err, "to", to)
		return fmt.Errorf("failed to send button message to %s: %w", to, err)
	}
	return nil
}

// SendList sends a single-select list message to the specified recipient.
func (c *Client) SendList(ctx context.Context, to, body, buttonLabel string, sections []models.ListSection) error {
	if err := c.checkReady(to); err != nil {
		return err
	}
	if len(sections) == 0 {
		return fmt.Errorf("list message requires at least one section")
	}

	waSections := make([]*waE2E.ListMessage_Section, 0, len(sections))
	for _, sec := range sections {
		rows := make([]*waE2E.ListMessage_Row, 0, len(sec.Rows))
		for _, r := range sec.Rows {
			rows = append(rows, &waE2E.ListMessage_Row{
				RowID:       proto.String(r.ID),
				Title:       proto.String(r.Title),
				Description: proto.String(r.Description),
			})
		}
		waSections = append(waSections, &waE2E.ListMessage_Section{
			Title: proto.String(sec.Title),
			Rows:  rows,
		})
	}
	msg := &waE2E.Message{
		ListMessage: &waE2E.ListMessage{
			Description: proto.String(body),
			ButtonText:  proto.String(buttonLabel),
			ListType:    waE2E.ListMessage_SINGLE_SELECT.Enum(),
			Sections:    waSections,
		},
	}

	slog.Debug("Sending WhatsApp list message", "to", to, "sections", len(sections))
	jid := types.NewJID(to, JIDSuffix)
	if _, err := c.waClient.SendMessage(ctx, jid, msg); err != nil {
		slog.Error("Failed to send WhatsApp list message", "error", err, "to", to)
		return fmt.Errorf("failed to send list message to %s: %w", to, err)
	}
	return nil
}

// GetClient returns the underlying whatsmeow client for event handling
func (c *Client) GetClient() *whatsmeow.Client {
	return c.waClient
}

// MockClient implements the same interface as Client but does nothing (for tests).
// Use NewMockClient() in tests to avoid real WhatsApp connections.
type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) SendMessage(ctx context.Context, to string, body string) error {
	return nil
}

func (m *MockClient) SendButtons(ctx context.Context, to, body string, buttons []models.Button) error {
	return nil
}

func (m *MockClient) SendList(ctx context.Context, to, body, buttonLabel string, sections []models.ListSection) error {
	return nil
}

var _ Sender = (*Client)(nil)
var _ Sender = (*MockClient)(nil)
