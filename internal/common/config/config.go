// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig     `mapstructure:"app"`
	Bot      BotConfig     `mapstructure:"bot"`
	APIs     APIsConfig    `mapstructure:"apis"`
	Cache    CacheConfig   `mapstructure:"cache"`
	Logging  LoggingConfig `mapstructure:"logging"`
	Registry string        `mapstructure:"registry_path"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	MetricsAddr string `mapstructure:"metrics_addr"`
}

// BotConfig holds the command and rendering behavior of the bot surface.
type BotConfig struct {
	Command       string   `mapstructure:"command"`
	Aliases       []string `mapstructure:"aliases"`
	TextMode      bool     `mapstructure:"text_mode"`
	VerboseOutput bool     `mapstructure:"verbose_output"`
}

// APIsConfig holds settings for external API integrations.
type APIsConfig struct {
	OpenAI OpenAIConfig `mapstructure:"openai"`
	Search SearchConfig `mapstructure:"search"`
	Render RenderConfig `mapstructure:"render"`
}

type OpenAIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	Prompt  string `mapstructure:"prompt"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// SearchConfig points at the HTML search endpoint. The URL-encoded keyword
// query is appended directly to BaseURL.
type SearchConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	UserAgent string `mapstructure:"user_agent"`
	Timeout   int    `mapstructure:"timeout"` // milliseconds
}

type RenderConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// CacheConfig holds citation cache settings. A MaxAge of zero means cached
// records never expire.
type CacheConfig struct {
	Enabled bool        `mapstructure:"enabled"`
	MaxAge  int         `mapstructure:"max_age"` // milliseconds
	Redis   RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
