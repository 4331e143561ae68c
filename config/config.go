package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Game     GameConfig     `mapstructure:"game"`
}

type ServerConfig struct {
	HTTPAddress    string `mapstructure:"http_address"`
	RPCAddress     string `mapstructure:"rpc_address"`
	MonitorAddress string `mapstructure:"monitor_address"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
}

// GameConfig holds the tunables of the game engine.
type GameConfig struct {
	// ChallengeTimeout is how long a turn may sit unanswered before the
	// engine forces progression.
	ChallengeTimeout time.Duration `mapstructure:"challenge_timeout"`
	// RedrawsPerTier caps challenge redraws within one difficulty tier
	// before the selector moves on to the next tier.
	RedrawsPerTier int `mapstructure:"redraws_per_tier"`
	// DefaultRememberCount is the anti-repeat history size used when a
	// room is created without an explicit value.
	DefaultRememberCount int `mapstructure:"default_remember_count"`
}

func LoadConfig(path string) (config *Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.http_address", ":8080")
	viper.SetDefault("server.rpc_address", ":8081")
	viper.SetDefault("server.monitor_address", ":9090")
	viper.SetDefault("game.challenge_timeout", 5*time.Minute)
	viper.SetDefault("game.redraws_per_tier", 4)
	viper.SetDefault("game.default_remember_count", 10)

	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
