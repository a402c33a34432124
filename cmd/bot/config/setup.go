package config

import (
	"log/slog"
	"os"

	"github.com/sproutsbot/sprouts/pkg/logging"
	"gopkg.in/yaml.v3"
)

func Parse(l *slog.Logger) {
	if envBT := os.Getenv(EnvBotToken); envBT != "" {
		l.Debug("Found bot token in environment", slog.String("key", EnvBotToken))
		BotToken = envBT
	}

	if envAppId := os.Getenv(EnvApplicationId); envAppId != "" {
		l.Debug("Found application ID in environment", slog.String("key", EnvApplicationId))
		ApplicationId = envAppId
	}

	if envMongoUri := os.Getenv(EnvMongoUri); envMongoUri != "" {
		l.Debug("Found MongoDB URI in environment", slog.String("key", EnvMongoUri))
		MongoUri = envMongoUri
	}

	if envMonitoringPort := os.Getenv(EnvMonitoringPort); envMonitoringPort != "" {
		MonitoringPort = envMonitoringPort
	} else {
		// Default to 8080 if not provided.
		MonitoringPort = "8080"

		l.Info("No monitoring port provided in environment, defaulting to 8080", slog.String("key", EnvMonitoringPort))
	}

	if envDir := os.Getenv(EnvTranscriptDir); envDir != "" {
		TranscriptDir = envDir
	} else {
		TranscriptDir = "transcripts"
	}

	if envBase := os.Getenv(EnvTranscriptBaseUrl); envBase != "" {
		TranscriptBaseUrl = envBase
	} else {
		TranscriptBaseUrl = "http://localhost:" + MonitoringPort + "/transcripts"
	}

	parseBranding(l)

	if BotToken == "" || ApplicationId == "" || MongoUri == "" {
		l.Error("Not all required environment variables have been provided", slog.String(logging.KeyError, "Incomplete configuration"))
		os.Exit(1)
	}

	l.Debug("All required environment variables have been provided")
}

// parseBranding loads the optional branding file. Missing file means the
// built-in defaults are used.
func parseBranding(l *slog.Logger) {
	Bot = Branding{
		EmbedTitle:       "Support Ticket",
		EmbedDescription: "Thank you for creating a ticket! Please describe your issue and a staff member will assist you shortly.",
		EmbedColor:       0x2ecc71,
		FooterText:       "Sprouts Support",
	}

	path := os.Getenv(EnvBrandingFile)
	if path == "" {
		path = "branding.yaml"
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		l.Debug("No branding file found, using defaults", slog.String("path", path))
		return
	} else if err != nil {
		l.Error("Error reading branding file", slog.String(logging.KeyError, err.Error()))
		return
	}

	if err := yaml.Unmarshal(data, &Bot); err != nil {
		l.Error("Error parsing branding file", slog.String(logging.KeyError, err.Error()))
		return
	}

	l.Info("Loaded branding file", slog.String("path", path))
}
