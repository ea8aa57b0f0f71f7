package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/haytac/message-formatter/internal/logging"
	"github.com/spf13/viper"
)

// AppConfig holds the application configuration.
type AppConfig struct {
	DatabasePath string          `mapstructure:"database_path"`
	Log          logging.Config  `mapstructure:"log"`
	Server       ServerConfig    `mapstructure:"server"`
	Formatter    FormatterConfig `mapstructure:"formatter"`
}

// ServerConfig configures the HTTP and WebSocket service.
type ServerConfig struct {
	Listen                string          `mapstructure:"listen"`
	DefaultLocation       string          `mapstructure:"default_location"`
	AllowedOrigins        []string        `mapstructure:"allowed_origins"`
	Sanitize              bool            `mapstructure:"sanitize"`
	CatalogRefreshSeconds int             `mapstructure:"catalog_refresh_seconds"`
	MaxMessageBytes       int64           `mapstructure:"max_message_bytes"`
	RateLimit             RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig is a per-client token bucket. RPS <= 0 disables limiting.
type RateLimitConfig struct {
	RPS   float64 `mapstructure:"rps"`
	Burst int     `mapstructure:"burst"`
}

// FormatterConfig overrides the markup the formatter emits.
type FormatterConfig struct {
	LoadingImage     string `mapstructure:"loading_image"`
	RoomRoute        string `mapstructure:"room_route"`
	DefaultEmoteSize int    `mapstructure:"default_emote_size"`
}

// CatalogRefresh returns the catalog refresh interval, zero when disabled.
func (s ServerConfig) CatalogRefresh() time.Duration {
	if s.CatalogRefreshSeconds <= 0 {
		return 0
	}
	return time.Duration(s.CatalogRefreshSeconds) * time.Second
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*AppConfig, error) {
	v := viper.New()

	v.SetDefault("database_path", "./message_formatter.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", true)
	v.SetDefault("log.time_format", time.RFC3339)
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.default_location", "http://localhost:8080/")
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.sanitize", false)
	v.SetDefault("server.catalog_refresh_seconds", 30)
	v.SetDefault("server.max_message_bytes", 64*1024)
	v.SetDefault("server.rate_limit.rps", 20)
	v.SetDefault("server.rate_limit.burst", 40)
	v.SetDefault("formatter.loading_image", "/media/img/loading.gif")
	v.SetDefault("formatter.room_route", "#!/room/")
	v.SetDefault("formatter.default_emote_size", 20)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.message-formatter")
		v.AddConfigPath("/etc/message-formatter/")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvPrefix("MSGFMT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *AppConfig) Validate() error {
	if c.DatabasePath == "" {
		return errors.New("database_path is not configured")
	}
	if c.Formatter.DefaultEmoteSize <= 0 {
		return fmt.Errorf("formatter.default_emote_size must be positive, got %d", c.Formatter.DefaultEmoteSize)
	}
	if c.Server.RateLimit.RPS > 0 && c.Server.RateLimit.Burst <= 0 {
		return fmt.Errorf("server.rate_limit.burst must be positive when rps is set")
	}
	return nil
}
