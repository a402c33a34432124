package config

const (
	// AppName is the name of the application.
	AppName = "sprouts"

	// EnvBotToken is the environment variable for the bot token.
	EnvBotToken = `BOT_TOKEN`

	// EnvApplicationId is the environment variable for the application ID.
	EnvApplicationId = `APPLICATION_ID`

	// EnvMongoUri is the environment variable for the MongoDB URI.
	EnvMongoUri = `MONGO_URI`

	// EnvMonitoringPort is the environment variable for the monitoring port.
	EnvMonitoringPort = `MONITORING_PORT`

	// EnvTranscriptDir is the environment variable for the transcript directory.
	EnvTranscriptDir = `TRANSCRIPT_DIR`

	// EnvTranscriptBaseUrl is the environment variable for the public transcript URL.
	EnvTranscriptBaseUrl = `TRANSCRIPT_BASE_URL`

	// EnvBrandingFile is the environment variable for the branding file path.
	EnvBrandingFile = `BRANDING_FILE`
)

var (
	// BotToken is the token for the bot.
	BotToken string

	// ApplicationId is the ID of the application.
	ApplicationId string

	// MongoUri is the URI for the MongoDB database.
	MongoUri string

	// MonitoringPort is the port for the monitoring server.
	MonitoringPort string

	// TranscriptDir is the directory transcripts are written to.
	TranscriptDir string

	// TranscriptBaseUrl is the public URL the transcript directory is served at.
	TranscriptBaseUrl string

	// Bot is the branding configuration for the bot's replies.
	Bot Branding
)

// Branding is the optional YAML file with the bot's reply branding. Guild
// settings override these per guild.
type Branding struct {
	// EmbedTitle is the default welcome embed title.
	EmbedTitle string `yaml:"embed_title"`

	// EmbedDescription is the default welcome embed body.
	EmbedDescription string `yaml:"embed_description"`

	// EmbedColor is the default embed accent colour.
	EmbedColor int `yaml:"embed_color"`

	// FooterText is the footer on the bot's embeds.
	FooterText string `yaml:"footer_text"`
}
