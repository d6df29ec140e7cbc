package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the link summarizer.
type Config struct {
	General  GeneralConfig  `mapstructure:"general"`
	Telegram TelegramConfig `mapstructure:"telegram"`
	Server   ServerConfig   `mapstructure:"server"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Tavily   TavilyConfig   `mapstructure:"tavily"`
	Twitter  TwitterConfig  `mapstructure:"twitter"`
	YouTube  YouTubeConfig  `mapstructure:"youtube"`
	Browser  BrowserConfig  `mapstructure:"browser"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
}

// GeneralConfig contains general application settings
type GeneralConfig struct {
	Debug bool `mapstructure:"debug"`
}

// TelegramConfig contains bot transport settings.
type TelegramConfig struct {
	Token         string `mapstructure:"token"`
	AllowedChatID int64  `mapstructure:"allowed_chat_id"` // 0 means any chat
	VerboseErrors bool   `mapstructure:"verbose_errors"`  // echo pipeline errors back to the chat
	PollTimeout   int    `mapstructure:"poll_timeout"`    // long-poll timeout in seconds
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LLMConfig contains the OpenAI-compatible provider configuration.
type LLMConfig struct {
	APIKey       string        `mapstructure:"api_key"`
	BaseURL      string        `mapstructure:"base_url"`
	RouterModel  string        `mapstructure:"router_model"`
	SummaryModel string        `mapstructure:"summary_model"`
	Temperature  float32       `mapstructure:"temperature"`
	MaxTokens    int           `mapstructure:"max_tokens"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// TavilyConfig configures the search-and-extract service.
type TavilyConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// TwitterConfig configures the tweet-thread API.
type TwitterConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// YouTubeConfig configures the video metadata extraction attempts.
type YouTubeConfig struct {
	DataAPIKey string        `mapstructure:"data_api_key"` // optional, enables the Data API attempt
	Timeout    time.Duration `mapstructure:"timeout"`
}

// BrowserConfig configures the chromedp fallback scraper.
type BrowserConfig struct {
	RemoteURL string        `mapstructure:"remote_url"` // ws:// allocator URL of a browser grid; empty runs locally
	Timeout   time.Duration `mapstructure:"timeout"`
	MaxChars  int           `mapstructure:"max_chars"`
}

// CacheConfig configures the optional Redis summary cache.
type CacheConfig struct {
	Addr     string        `mapstructure:"addr"` // empty disables caching
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// PipelineConfig contains orchestration thresholds.
type PipelineConfig struct {
	MinContentLength int           `mapstructure:"min_content_length"` // below this the webpage path is retried via the browser
	DownloadTimeout  time.Duration `mapstructure:"download_timeout"`
}

func (c TelegramConfig) Validate() error {
	if strings.TrimSpace(c.Token) == "" {
		return fmt.Errorf("telegram.token is required")
	}
	return nil
}

func (c LLMConfig) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("llm.api_key is required")
	}
	return nil
}

// LoadConfig reads configuration from file and environment.
// Environment variables use the LINKSUM prefix (e.g. LINKSUM_TELEGRAM_TOKEN).
func LoadConfig(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("json")

	viper.SetDefault("general.debug", false)
	viper.SetDefault("telegram.poll_timeout", 30)
	viper.SetDefault("telegram.verbose_errors", false)
	viper.SetDefault("server.address", ":8080")
	viper.SetDefault("llm.router_model", "gpt-4o-mini")
	viper.SetDefault("llm.summary_model", "gpt-4o")
	viper.SetDefault("llm.temperature", 0.2)
	viper.SetDefault("llm.max_tokens", 2048)
	viper.SetDefault("llm.timeout", 60*time.Second)
	viper.SetDefault("tavily.base_url", "https://api.tavily.com")
	viper.SetDefault("tavily.timeout", 30*time.Second)
	viper.SetDefault("twitter.base_url", "https://api.twitterapi.io")
	viper.SetDefault("twitter.timeout", 20*time.Second)
	viper.SetDefault("youtube.timeout", 20*time.Second)
	viper.SetDefault("browser.timeout", 60*time.Second)
	viper.SetDefault("browser.max_chars", 20000)
	viper.SetDefault("cache.ttl", 24*time.Hour)
	viper.SetDefault("pipeline.min_content_length", 200)
	viper.SetDefault("pipeline.download_timeout", 30*time.Second)

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
		exe, _ := os.Executable()
		exeDir := filepath.Dir(exe)
		viper.AddConfigPath(exeDir)
		viper.AddConfigPath(filepath.Join(exeDir, ".."))
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("LINKSUM")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// The config file is optional: environment variables alone are a valid
	// configuration for container deployments.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	return &config
}
