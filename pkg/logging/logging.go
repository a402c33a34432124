package logging

import (
	"errors"
	"io"
	"log/slog"
	"os"
)

// Name is the name of the application that the logger belongs to.
type Name string

// Config is the configuration for a logger.
type Config struct {
	// name is the name of the application.
	name Name

	// writer is the destination that logs are written to.
	writer io.Writer

	// level is the minimum level that is logged.
	level slog.Level
}

// NewConfig creates a new logging configuration with the default options.
func NewConfig(name Name) *Config {
	return &Config{
		name:   name,
		writer: os.Stdout,
		level:  slog.LevelDebug,
	}
}

// WithWriter sets the destination that logs are written to.
func (c *Config) WithWriter(w io.Writer) *Config {
	c.writer = w
	return c
}

// WithLevel sets the minimum level that is logged.
func (c *Config) WithLevel(l slog.Level) *Config {
	c.level = l
	return c
}

// CommonLogger creates the common application logger from the config provided.
func CommonLogger(c *Config) (*slog.Logger, error) {
	if c == nil {
		return nil, errors.New("no logging config provided")
	} else if c.name == "" {
		return nil, errors.New("no application name provided")
	}

	h := slog.NewJSONHandler(c.writer, &slog.HandlerOptions{
		Level: c.level,
	})

	l := slog.New(h).With(slog.String(KeyAppName, string(c.name)))

	// Set the default logger so that packages logging through the
	// default logger are tagged with the application name as well.
	slog.SetDefault(l)

	return l, nil
}
