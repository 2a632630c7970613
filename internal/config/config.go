package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode       string        `mapstructure:"mode"`
	Port       int           `mapstructure:"port"`
	StaticPath string        `mapstructure:"static_path"`
	ReadLimit  int64         `mapstructure:"read_limit"`
	PingPeriod time.Duration `mapstructure:"ping_period"`
	Secret     string        `mapstructure:"secret"`

	// Room timing. The reveal delay covers the client countdown
	// animation; the modal delay is purely advisory.
	RevealDelay      time.Duration `mapstructure:"reveal_delay"`
	RevealModalDelay time.Duration `mapstructure:"reveal_modal_delay"`
	ReconnectGrace   time.Duration `mapstructure:"reconnect_grace"`
	EmptyRoomTTL     time.Duration `mapstructure:"empty_room_ttl"`

	EventRateLimit    int           `mapstructure:"event_rate_limit"`
	EventRateInterval time.Duration `mapstructure:"event_rate_interval"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("static_path", "./web")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("ping_period", "54s")
	v.SetDefault("reveal_delay", "4500ms")
	v.SetDefault("reveal_modal_delay", "4s")
	v.SetDefault("reconnect_grace", "2m")
	v.SetDefault("empty_room_ttl", "1h")
	v.SetDefault("event_rate_limit", 20)
	v.SetDefault("event_rate_interval", "1s")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	fmt.Printf("🧩 Mode: %s | Port: %d | Static: %s\n", cfg.Mode, cfg.Port, cfg.StaticPath)
	return &cfg, nil
}
