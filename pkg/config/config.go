package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server ServerConfig
	DB     DBConfig
	Auth   AuthConfig
	Room   RoomConfig
	Log    LogConfig
	Redis  RedisConfig
}

type ServerConfig struct {
	Address         string
	Mode            string
	CORSOrigins     []string      `mapstructure:"cors_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DBConfig struct {
	Driver       string
	Host         string
	User         string
	Password     string
	Name         string
	Port         int
	Path         string
	MaxOpenConns int `mapstructure:"max_open_conns"`
	MaxRetries   int `mapstructure:"max_retries"`
}

type AuthConfig struct {
	JWTSecret string        `mapstructure:"jwt_secret"`
	TokenTTL  time.Duration `mapstructure:"token_ttl"`
}

type RoomConfig struct {
	Capacity int
}

type LogConfig struct {
	Level  string
	Format string
}

// RedisConfig 為空的 Addr 表示停用限流
type RedisConfig struct {
	Addr       string
	Password   string
	DB         int
	RateLimit  int           `mapstructure:"rate_limit"`
	RateWindow time.Duration `mapstructure:"rate_window"`
}

const envPrefix = "LIVEROOM"

// Load 讀取 ./pkg/config/config.yaml，環境變數 LIVEROOM_<SECTION>_<KEY> 可覆蓋任一設定
func Load() (*Config, error) {
	return LoadFrom("./pkg/config")
}

// LoadFrom 從指定目錄載入設定；找不到設定檔時僅使用預設值與環境變數
func LoadFrom(paths ...string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "liveroom")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.path", "liveroom.db")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_retries", 5)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 240*time.Hour)

	v.SetDefault("room.capacity", 4)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.rate_limit", 20)
	v.SetDefault("redis.rate_window", time.Second)
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return errors.New("db.driver must be one of postgres, mysql, sqlite")
	}
	if c.Room.Capacity <= 0 {
		return errors.New("room.capacity must be positive")
	}
	if c.Auth.JWTSecret == "" {
		if c.Server.Mode != "debug" {
			return errors.New("auth.jwt_secret is required outside debug mode")
		}
		c.Auth.JWTSecret = "liveroom-debug-secret"
	}
	return nil
}

// IsProduction 回報伺服器是否以 release 模式執行
func (c *Config) IsProduction() bool {
	return c.Server.Mode == "release"
}
