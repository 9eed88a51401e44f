package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// PricingInfo holds cost details per token for a specific model.
type PricingInfo struct {
	InputPerToken  float64 `mapstructure:"input_per_token"`
	OutputPerToken float64 `mapstructure:"output_per_token"`
}

type Config struct {
	Server struct {
		Addr        string   `mapstructure:"addr"`
		Port        string   `mapstructure:"port"`
		Mode        string   `mapstructure:"mode"`
		StaticDir   string   `mapstructure:"static_dir"`
		CORSOrigins []string `mapstructure:"cors_origins"`
	} `mapstructure:"server"`

	Model struct {
		Provider      string        `mapstructure:"provider"` // "openai" or "gemini"
		Name          string        `mapstructure:"name"`
		OpenaiApiKey  string        `mapstructure:"openai_api_key"`
		GoogleApiKey  string        `mapstructure:"google_api_key"`
		BaseURL       string        `mapstructure:"base_url"`
		Temperature   float32       `mapstructure:"temperature"`
		JSONOutput    bool          `mapstructure:"json_output"`
		Timeout       time.Duration `mapstructure:"timeout"`
		MaxInputChars int           `mapstructure:"max_input_chars"`
		Variant       string        `mapstructure:"variant"`
		Prompt        string        `mapstructure:"prompt"` // path to an instruction override
	} `mapstructure:"model"`

	Normalize struct {
		Tolerance float64 `mapstructure:"tolerance"`
	} `mapstructure:"normalize"`

	Database struct {
		Driver string `mapstructure:"driver"` // "pgx" or "sqlite3"
		DSN    string `mapstructure:"dsn"`
	} `mapstructure:"database"`

	Redis struct {
		Address  string `mapstructure:"address"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	Worker struct {
		Concurrency int            `mapstructure:"concurrency"`
		Queues      map[string]int `mapstructure:"queues"`
	} `mapstructure:"worker"`

	Log struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	} `mapstructure:"log"`

	// Pricing: map[provider][model] = struct{input_per_token, output_per_token}
	Pricing map[string]map[string]PricingInfo `mapstructure:"pricing"`
}

// ListenAddr is the host:port the HTTP server binds to.
func (c *Config) ListenAddr() string {
	return c.Server.Addr + ":" + c.Server.Port
}

// HistoryEnabled reports whether a database is configured.
func (c *Config) HistoryEnabled() bool {
	return c.Database.DSN != ""
}

// QueueEnabled reports whether queued analysis can run.
func (c *Config) QueueEnabled() bool {
	return c.Redis.Address != "" && c.HistoryEnabled()
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", "")
	v.SetDefault("server.port", "3005")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.static_dir", "")
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("model.provider", "openai")
	v.SetDefault("model.name", "gpt-4-turbo-preview")
	v.SetDefault("model.base_url", "")
	v.SetDefault("model.temperature", 0)
	v.SetDefault("model.json_output", true)
	v.SetDefault("model.timeout", 30*time.Second)
	v.SetDefault("model.max_input_chars", 4000)
	v.SetDefault("model.variant", "general")
	v.SetDefault("model.prompt", "")

	v.SetDefault("normalize.tolerance", 0.1)

	v.SetDefault("database.driver", "pgx")
	v.SetDefault("database.dsn", "")

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("worker.concurrency", 4)
	v.SetDefault("worker.queues", map[string]int{"analysis": 1})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// bindEnv maps the conventional unprefixed variables onto config keys.
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("model.openai_api_key", "PROMPTCHART_MODEL_OPENAI_API_KEY", "OPENAI_API_KEY")
	_ = v.BindEnv("model.google_api_key", "PROMPTCHART_MODEL_GOOGLE_API_KEY", "GEMINI_API_KEY", "GOOGLE_API_KEY")
	_ = v.BindEnv("server.port", "PROMPTCHART_SERVER_PORT", "PORT")
	_ = v.BindEnv("database.dsn", "PROMPTCHART_DATABASE_DSN", "DATABASE_URL")
	_ = v.BindEnv("redis.address", "PROMPTCHART_REDIS_ADDRESS", "REDIS_ADDR")
}

// LoadConfig reads config.yaml (from the working directory or
// ~/.config/promptchart) and the environment.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "promptchart"))
	}
	return load(v)
}

// LoadConfigFile reads the config from an explicit path.
func LoadConfigFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix("PROMPTCHART")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine, defaults and env vars still apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	return &cfg, nil
}
