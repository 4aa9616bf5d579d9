// Package config loads satops configuration from an optional YAML or JSON file and
// SATOPS_* environment overrides.
//
// Nested keys are addressed in the environment with a double underscore, so
// smtp.password is SATOPS_SMTP__PASSWORD. Every non-secret key has a default; each
// tool validates only the sections it uses.
package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/sqlsaturday/satops/internal/layout"
	"github.com/sqlsaturday/satops/internal/logger"
	"github.com/sqlsaturday/satops/internal/paper"
)

const envPrefix = "SATOPS_"

type Config struct {
	Event     EventConfig     `json:"event"`
	Schedule  ScheduleConfig  `json:"schedule"`
	Database  DatabaseConfig  `json:"database"`
	Ticketing TicketingConfig `json:"ticketing"`
	SMTP      SMTPConfig      `json:"smtp"`
	QRCode    QRCodeConfig    `json:"qrcode"`
	Render    RenderConfig    `json:"render"`
	Output    OutputConfig    `json:"output"`
	Logging   LoggingConfig   `json:"logging"`
	Metrics   MetricsConfig   `json:"metrics"`
}

// EventConfig describes the conference printed on credentials
type EventConfig struct {
	Name          string `json:"name"`
	Date          string `json:"date"`
	Venue         string `json:"venue"`
	LogoURL       string `json:"logo_url"`
	ScheduleURL   string `json:"schedule_url"`
	RaffleTickets int    `json:"raffle_tickets"`
}

type ScheduleConfig struct {
	APIURL      string `json:"api_url"`
	RoomPrefix  string `json:"room_prefix"`
	Paper       string `json:"paper"`
	Color       string `json:"color"`
	Pagination  string `json:"pagination"`
	KeywordFile string `json:"keyword_file"`
}

type DatabaseConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
	SSLMode  string `json:"sslmode"`
	MaxConns int    `json:"max_conns"`
	MaxIdle  int    `json:"max_idle"`
}

type TicketingConfig struct {
	BaseURL string `json:"base_url"`
	Token   string `json:"token"`
	EventID string `json:"event_id"`
}

type SMTPConfig struct {
	Host     string        `json:"host"`
	Port     int           `json:"port"`
	Username string        `json:"username"`
	Password string        `json:"password"`
	From     string        `json:"from"`
	Subject  string        `json:"subject"`
	Throttle time.Duration `json:"throttle"`
}

type QRCodeConfig struct {
	// Mode is "local" (encode in process) or "remote" (generator service)
	Mode      string `json:"mode"`
	RemoteURL string `json:"remote_url"`
	Size      int    `json:"size"`
}

type RenderConfig struct {
	RemoteURL string        `json:"remote_url"`
	Timeout   time.Duration `json:"timeout"`
	NoSandbox bool          `json:"no_sandbox"`
}

type OutputConfig struct {
	Dir string `json:"dir"`
}

type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

type MetricsConfig struct {
	// Textfile, when set, receives the run metrics in prometheus text format
	Textfile string `json:"textfile"`
}

var colorPattern = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Load reads path (skipped when empty) and applies environment overrides
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		var parser koanf.Parser
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), strings.ToLower(envPrefix))
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Logging.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every unset non-secret key
func (c *Config) SetDefaults() {
	if c.Event.Name == "" {
		c.Event.Name = "SQL Saturday"
	}
	if c.Event.RaffleTickets == 0 {
		c.Event.RaffleTickets = 3
	}
	if c.Schedule.Paper == "" {
		c.Schedule.Paper = paper.Letter.Name
	}
	if c.Schedule.Color == "" {
		c.Schedule.Color = "#1f4e79"
	}
	if c.Schedule.Pagination == "" {
		c.Schedule.Pagination = string(layout.StrategyChunked)
	}
	if c.Database.Host == "" {
		c.Database.Host = "localhost"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "require"
	}
	if c.Database.MaxConns == 0 {
		c.Database.MaxConns = 4
	}
	if c.Ticketing.BaseURL == "" {
		c.Ticketing.BaseURL = "https://www.eventbriteapi.com/v3"
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.SMTP.Subject == "" {
		c.SMTP.Subject = "Your SpeedPass for " + c.Event.Name
	}
	if c.SMTP.Throttle == 0 {
		c.SMTP.Throttle = 2 * time.Second
	}
	if c.QRCode.Mode == "" {
		c.QRCode.Mode = "local"
	}
	if c.QRCode.RemoteURL == "" {
		c.QRCode.RemoteURL = "https://api.qrserver.com/v1/create-qr-code/"
	}
	if c.QRCode.Size == 0 {
		c.QRCode.Size = 256
	}
	if c.Render.Timeout == 0 {
		c.Render.Timeout = 60 * time.Second
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "."
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
}

// Validate checks the schedule section used by print-schedule
func (c *ScheduleConfig) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("schedule API URL is required")
	}
	if _, err := paper.Lookup(c.Paper); err != nil {
		return err
	}
	if err := ValidateColor(c.Color); err != nil {
		return err
	}
	if _, err := layout.ParseStrategy(c.Pagination); err != nil {
		return err
	}
	return nil
}

// Validate checks the database section
func (c *DatabaseConfig) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("database name is required")
	}
	if c.User == "" {
		return fmt.Errorf("database user is required")
	}
	return nil
}

// DSN returns the lib/pq connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// Validate checks the ticketing API section
func (c *TicketingConfig) Validate() error {
	if c.Token == "" {
		return fmt.Errorf("ticketing API token is required (SATOPS_TICKETING__TOKEN)")
	}
	if c.EventID == "" {
		return fmt.Errorf("ticketing event ID is required")
	}
	return nil
}

// Validate checks the SMTP section
func (c *SMTPConfig) Validate() error {
	if c.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if c.From == "" {
		return fmt.Errorf("SMTP from address is required")
	}
	if c.Username == "" || c.Password == "" {
		return fmt.Errorf("SMTP credentials are required (SATOPS_SMTP__USERNAME, SATOPS_SMTP__PASSWORD)")
	}
	if c.Throttle < 0 {
		return fmt.Errorf("SMTP throttle must not be negative")
	}
	return nil
}

// Validate checks the QR code section
func (c *QRCodeConfig) Validate() error {
	switch c.Mode {
	case "local", "remote":
	default:
		return fmt.Errorf("invalid qrcode mode: %s (must be 'local' or 'remote')", c.Mode)
	}
	if c.Size < 64 || c.Size > 1024 {
		return fmt.Errorf("qrcode size must be between 64 and 1024, got %d", c.Size)
	}
	return nil
}

// Validate checks the logging section
func (c *LoggingConfig) Validate() error {
	if _, err := logger.ParseLevel(c.Level); err != nil {
		return err
	}
	switch c.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid log format: %s (must be 'json' or 'console')", c.Format)
	}
	return nil
}

// ValidateColor checks a CSS hex color
func ValidateColor(color string) error {
	if !colorPattern.MatchString(color) {
		return fmt.Errorf("invalid color: %s (must be #RGB or #RRGGBB)", color)
	}
	return nil
}
