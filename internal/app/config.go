package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"boarbot/internal/protocol/wire"
)

// Config holds runtime options for one bot process.
type Config struct {
	Home            string `yaml:"home"` // state directory, e.g. $HOME/.boarbot
	DeviceFile      string `yaml:"device_file"`
	TokenFile       string `yaml:"token_file"`
	QRCodeFile      string `yaml:"qrcode_file"`
	TokenPassphrase string `yaml:"token_passphrase"` // seals the token file when set

	Gateway GatewayConfig `yaml:"gateway"`
	Login   LoginConfig   `yaml:"login"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`

	// Modules lists the handler modules to register, in dispatch order.
	Modules []string `yaml:"modules"`
}

type GatewayConfig struct {
	URL            string        `yaml:"url"`
	Codec          string        `yaml:"codec"`
	Keepalive      time.Duration `yaml:"keepalive"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type LoginConfig struct {
	PollInterval time.Duration `yaml:"poll_interval"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or pretty
	Color  bool   `yaml:"color"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the metrics server
}

// KnownModules are the module names accepted in Config.Modules.
var KnownModules = []string{"logger", "echo"}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() Config {
	home := ".boarbot"
	if dir, err := os.UserHomeDir(); err == nil {
		home = filepath.Join(dir, ".boarbot")
	}
	return Config{
		Home:       home,
		DeviceFile: "device.json",
		TokenFile:  "session.token",
		QRCodeFile: "qrcode.png",
		Gateway: GatewayConfig{
			URL:            "ws://127.0.0.1:8080/ws",
			Codec:          "json",
			Keepalive:      30 * time.Second,
			RequestTimeout: 30 * time.Second,
		},
		Login:   LoginConfig{PollInterval: 5 * time.Second},
		Log:     LogConfig{Level: "info", Format: "pretty"},
		Modules: []string{"logger", "echo"},
	}
}

// LoadConfig returns the defaults overlaid with the YAML file at path.
// Environment variables referenced as ${VAR} or $VAR in the YAML are expanded
// before parsing. An empty path skips the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("app: load config: %w", err)
	}
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return Config{}, fmt.Errorf("app: parse config: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads environment variables from path. Missing files are
// ignored.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// ApplyEnv overrides fields from BOARBOT_* environment variables.
func (c *Config) ApplyEnv() {
	c.Home = EnvString("BOARBOT_HOME", c.Home)
	c.TokenPassphrase = EnvString("BOARBOT_TOKEN_PASSPHRASE", c.TokenPassphrase)
	c.Gateway.URL = EnvString("BOARBOT_GATEWAY_URL", c.Gateway.URL)
	c.Gateway.Codec = EnvString("BOARBOT_CODEC", c.Gateway.Codec)
	c.Gateway.Keepalive = EnvDuration("BOARBOT_KEEPALIVE", c.Gateway.Keepalive)
	c.Login.PollInterval = EnvDuration("BOARBOT_POLL_INTERVAL", c.Login.PollInterval)
	c.Log.Level = EnvString("BOARBOT_LOG_LEVEL", c.Log.Level)
	c.Log.Format = EnvString("BOARBOT_LOG_FORMAT", c.Log.Format)
	c.Log.Color = EnvBool("BOARBOT_LOG_COLOR", c.Log.Color)
	c.Metrics.Addr = EnvString("BOARBOT_METRICS_ADDR", c.Metrics.Addr)
	if v := EnvString("BOARBOT_MODULES", ""); v != "" {
		c.Modules = splitList(v)
	}
}

// Validate checks that the configuration is internally consistent.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Home) == "" {
		return fmt.Errorf("app: config: home is required")
	}
	if strings.TrimSpace(c.Gateway.URL) == "" {
		return fmt.Errorf("app: config: gateway url is required")
	}
	if _, err := wire.ByName(c.Gateway.Codec); err != nil {
		return fmt.Errorf("app: config: %w", err)
	}
	if c.Login.PollInterval <= 0 {
		return fmt.Errorf("app: config: poll interval must be positive, got %s", c.Login.PollInterval)
	}
	if _, err := parseLogLevel(c.Log.Level); err != nil {
		return fmt.Errorf("app: config: %w", err)
	}
	if c.Log.Format != "json" && c.Log.Format != "pretty" {
		return fmt.Errorf("app: config: unknown log format %q", c.Log.Format)
	}

	seen := make(map[string]struct{}, len(c.Modules))
	for _, m := range c.Modules {
		if !isKnownModule(m) {
			return fmt.Errorf("app: config: unknown module %q", m)
		}
		if _, dup := seen[m]; dup {
			return fmt.Errorf("app: config: duplicate module %q", m)
		}
		seen[m] = struct{}{}
	}
	return nil
}

func (c Config) DevicePath() string { return c.resolve(c.DeviceFile) }
func (c Config) TokenPath() string  { return c.resolve(c.TokenFile) }
func (c Config) QRCodePath() string { return c.resolve(c.QRCodeFile) }

func (c Config) resolve(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.Home, name)
}

func isKnownModule(name string) bool {
	for _, k := range KnownModules {
		if k == name {
			return true
		}
	}
	return false
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
