package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	LogLevel   string  `yaml:"log-level" env:"LOG_LEVEL" env-default:"info"`
	HTTPPort   string  `yaml:"http-port" env:"HTTP_PORT" env-default:"9090"`
	SocketPort string  `yaml:"socket-port" env:"SOCKET_PORT" env-default:"9091"`
	Redis      Redis   `yaml:"redis"`
	Engine     Engine  `yaml:"engine"`
	Session    Session `yaml:"session"`
}

// Redis holds the move cache connection. The engine runs without a cache when it is disabled.
type Redis struct {
	Enabled bool          `yaml:"enabled" env:"REDIS_ENABLED" env-default:"false"`
	Host    string        `yaml:"host" env:"REDIS_HOST" env-default:"localhost"`
	Port    string        `yaml:"port" env:"REDIS_PORT" env-default:"6379"`
	TTL     time.Duration `yaml:"ttl" env:"REDIS_TTL" env-default:"24h"`
}

type Engine struct {
	DepthLimits map[int]int `yaml:"depth-limits" env-default:"3:6,4:4"`
	Workers     int         `yaml:"workers" env:"ENGINE_WORKERS" env-default:"1"`
}

// Session holds the settings a new game starts with.
type Session struct {
	Size     int           `yaml:"size" env-default:"3"`
	Mode     string        `yaml:"mode" env-default:"pvc"`
	UserMark string        `yaml:"user-mark" env-default:"X"`
	Starter  string        `yaml:"starter" env-default:"player"`
	AIDelay  time.Duration `yaml:"ai-delay" env-default:"500ms"`
}

// MustLoad - load all configurations in config.yml file.
func MustLoad(path string) *Config {
	config := &Config{}

	if err := cleanenv.ReadConfig(path, config); err != nil {
		panic(fmt.Errorf("unable to load config file: %w", err))
	}

	return config
}

func (that *Redis) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", that.Host, that.Port)
}

// SlogLevel - maps log-level ("debug", "info", "warn", "error", any case) to a slog level.
// Unknown values log at info.
func (that *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(that.LogLevel)); err != nil {
		return slog.LevelInfo
	}

	return level
}
