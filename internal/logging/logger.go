package logging

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config holds logging configuration.
type Config struct {
	Level      string `mapstructure:"level"`
	File       string `mapstructure:"file"`
	Console    bool   `mapstructure:"console"`
	JSON       bool   `mapstructure:"json"` // plain JSON lines on stderr instead of the console writer
	TimeFormat string `mapstructure:"time_format"`
}

// Setup initializes the global logger and returns it.
func Setup(cfg Config) zerolog.Logger {
	var writers []io.Writer

	switch {
	case cfg.JSON:
		writers = append(writers, os.Stderr)
	case cfg.Console:
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: cfg.TimeFormat})
	}

	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Error().Err(err).Str("file", cfg.File).Msg("Failed to open log file")
		} else {
			writers = append(writers, file)
		}
	}

	if len(writers) == 0 {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: cfg.TimeFormat})
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).With().Timestamp().Logger()

	level, err := ParseLevel(cfg.Level)
	if err != nil {
		log.Warn().Str("configured_level", cfg.Level).Msg("Invalid log level, defaulting to info")
	}
	zerolog.SetGlobalLevel(level)

	log.Debug().Str("level", level.String()).Msg("Logger initialized")
	return log.Logger
}

// ParseLevel parses a level name; an empty or invalid name yields info.
func ParseLevel(name string) (zerolog.Level, error) {
	if name == "" {
		return zerolog.InfoLevel, nil
	}
	level, err := zerolog.ParseLevel(name)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel, err
	}
	return level, nil
}

// Component returns the global logger tagged with a component name.
func Component(name string) zerolog.Logger {
	return log.With().Str("component", name).Logger()
}
