package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	EnvPrefix  = "EDUCAGAME"
	DefaultEnv = "dev"
)

type Config struct {
	Mode         string        `mapstructure:"mode"`
	Port         int           `mapstructure:"port"`
	StaticPath   string        `mapstructure:"static_path"`
	ReadLimit    int64         `mapstructure:"read_limit"`
	PingPeriod   time.Duration `mapstructure:"ping_period"`
	Secret       string        `mapstructure:"secret"`
	LogLevel     string        `mapstructure:"log_level"`
	MaxPlayers   int           `mapstructure:"max_players"`
	SendBuffer   int           `mapstructure:"send_buffer"`
	BotDelayMin  time.Duration `mapstructure:"bot_delay_min"`
	BotDelayMax  time.Duration `mapstructure:"bot_delay_max"`
	RateLimit    float64       `mapstructure:"rate_limit"`
	RateBurst    int           `mapstructure:"rate_burst"`
	DataDir      string        `mapstructure:"data_dir"`
	// Backpressure is "kick" (close slow connections) or "drop" (skip the frame).
	Backpressure string        `mapstructure:"backpressure"`
}

// Load reads config/config.<env>.yaml. An empty env falls back to
// $CONFIG_ENV, then "dev". A .env file in the working directory is loaded
// first; EDUCAGAME_* variables override file values.
func Load(env string) (*Config, error) {
	return LoadFrom(".", env)
}

func LoadFrom(dir, env string) (*Config, error) {
	if err := godotenv.Load(dir + "/.env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Str("module", "config").Msg("could not read .env")
	}
	if env == "" {
		env = os.Getenv("CONFIG_ENV")
	}
	if env == "" {
		env = DefaultEnv
	}

	v := viper.New()
	v.SetConfigType("yaml")
	fileName := fmt.Sprintf("%s/config/config.%s.yaml", dir, env)
	v.SetConfigFile(fileName)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("secret", "change-me")
	v.SetDefault("log_level", "info")
	v.SetDefault("max_players", 10)
	v.SetDefault("send_buffer", 64)
	v.SetDefault("bot_delay_min", "1500ms")
	v.SetDefault("bot_delay_max", "4000ms")
	v.SetDefault("rate_limit", 20)
	v.SetDefault("rate_burst", 40)
	v.SetDefault("data_dir", "")
	v.SetDefault("backpressure", "kick")

	if err := v.ReadInConfig(); err != nil {
		log.Warn().Str("module", "config").Str("file", fileName).Msg("config file not found, using defaults")
	} else {
		log.Info().Str("module", "config").Str("file", fileName).Msg("loaded config")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log.Info().Str("module", "config").Str("mode", cfg.Mode).Int("port", cfg.Port).Str("static", cfg.StaticPath).Msg("config ready")
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.BotDelayMax < c.BotDelayMin {
		return fmt.Errorf("bot_delay_max (%s) below bot_delay_min (%s)", c.BotDelayMax, c.BotDelayMin)
	}
	return nil
}
