package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/bonmvsk/nightfall-werewolf-moderator/models"
)

// Config 服务配置
type Config struct {
	HTTPAddr   string
	PublicURL  string
	Timers     models.TimerSettings
	MinPlayers int
	Seed       int64
	Debug      bool
}

// Load 依次读取 .env、werewolf.yaml 和 WEREWOLF_ 前缀的环境变量
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("werewolf")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper 从已有的 viper 实例读取配置并补齐默认值
func FromViper(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("WEREWOLF")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.public_url", "http://localhost:8080")
	v.SetDefault("timers.day", 300)
	v.SetDefault("timers.night", 60)
	v.SetDefault("game.min_players", 5)
	v.SetDefault("game.seed", 0)
	v.SetDefault("debug", false)

	cfg := &Config{
		HTTPAddr:  v.GetString("http.addr"),
		PublicURL: v.GetString("http.public_url"),
		Timers: models.TimerSettings{
			Day:   v.GetInt("timers.day"),
			Night: v.GetInt("timers.night"),
		},
		MinPlayers: v.GetInt("game.min_players"),
		Seed:       v.GetInt64("game.seed"),
		Debug:      v.GetBool("debug"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Timers.Day <= 0 || c.Timers.Night <= 0 {
		return fmt.Errorf("invalid timers: day=%d night=%d, both must be positive", c.Timers.Day, c.Timers.Night)
	}
	if c.MinPlayers < 1 {
		return fmt.Errorf("invalid game.min_players: %d", c.MinPlayers)
	}
	if c.HTTPAddr == "" {
		return errors.New("http.addr is required")
	}
	return nil
}
