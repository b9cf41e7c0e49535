package app

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"boarbot/internal/metrics"
	"boarbot/internal/store"
)

// Wire bundles the stores, logger and metrics shared by the CLI commands.
type Wire struct {
	Config  Config
	Log     *slog.Logger
	Metrics *metrics.Metrics

	Devices *store.DeviceFileStore
	Tokens  *store.TokenFileStore
	QRCodes *store.QRCodeFileSink
	HTTP    *http.Client
}

// NewWire validates cfg and constructs the dependency graph, logging to
// logOut.
func NewWire(cfg Config, logOut io.Writer) (*Wire, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log, err := NewLogger(cfg.Log, logOut)
	if err != nil {
		return nil, fmt.Errorf("app: logger: %w", err)
	}

	tokens := store.NewTokenFileStore(cfg.TokenPath())
	if cfg.TokenPassphrase != "" {
		tokens = store.NewSealedTokenFileStore(cfg.TokenPath(), cfg.TokenPassphrase)
	}

	return &Wire{
		Config:  cfg,
		Log:     log,
		Metrics: metrics.New(),
		Devices: store.NewDeviceFileStore(cfg.DevicePath()),
		Tokens:  tokens,
		QRCodes: store.NewQRCodeFileSink(cfg.QRCodePath()),
		HTTP:    http.DefaultClient,
	}, nil
}
