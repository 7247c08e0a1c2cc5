package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int `mapstructure:"read_timeout_sec"`
	WriteTimeoutSec int `mapstructure:"write_timeout_sec"`
	IdleTimeoutSec  int `mapstructure:"idle_timeout_sec"`
}
type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name        string
	Env         string
	HTTP        HTTP
	Admin       AdminHTTP
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type Rotate struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int `mapstructure:"max_size_mb"`
	MaxBackups int `mapstructure:"max_backups"`
	MaxAgeDays int `mapstructure:"max_age_days"`
	Compress   bool
}

type Log struct {
	Level  string
	JSON   bool
	Rotate Rotate
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int `mapstructure:"access_token_ttl_min"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	TTLSec   int    `mapstructure:"ttl_sec"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int    `mapstructure:"max_open_conns"`
	MaxIdleConns       int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetimeMin int    `mapstructure:"conn_max_lifetime_min"`
	AcquireTimeoutSec  int    `mapstructure:"acquire_timeout_sec"` // 单次存储调用（含取连接）上限，超时报 StorageUnavailable
	AutoMigrate        bool   `mapstructure:"auto_migrate"`
	LogLevel           string `mapstructure:"log_level"`
	Seed               bool
}

type Auth struct {
	BcryptCost         int  `mapstructure:"bcrypt_cost"`
	EnableRegistration bool `mapstructure:"enable_registration"`
}

type Admin struct {
	Email    string
	Password string
}

type Storage struct {
	Bucket      string
	Region      string
	Endpoint    string
	KeyPrefix   string `mapstructure:"key_prefix"`
	PublicURL   string `mapstructure:"public_url"`
	MaxUploadMB int    `mapstructure:"max_upload_mb"`
}

type Limits struct {
	RPS            float64
	Burst          int
	PerIPRPS       float64 `mapstructure:"per_ip_rps"`
	PerIPBurst     int     `mapstructure:"per_ip_burst"`
	MaxConcurrency int64   `mapstructure:"max_concurrency"`
	BodyBytes      int64   `mapstructure:"body_bytes"`
	TimeoutSec     int     `mapstructure:"timeout_sec"`
}

type Config struct {
	App     App
	Log     Log
	JWT     JWT
	DB      DB
	Redis   Redis `mapstructure:"redis"`
	Auth    Auth
	Admin   Admin
	Storage Storage
	Limits  Limits
}

var supportedDrivers = map[string]struct{}{"postgres": {}, "mysql": {}, "sqlite": {}}

// Load 读取 yaml 配置，APP_ 前缀环境变量覆盖（a.b → APP_A_B）；文件缺失时只用默认值 + 环境变量
func Load(path string) (*Config, error) {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "sweet-shop")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 3001)
	v.SetDefault("app.http.read_timeout_sec", 5)
	v.SetDefault("app.http.write_timeout_sec", 10)
	v.SetDefault("app.http.idle_timeout_sec", 60)
	v.SetDefault("app.admin.host", "127.0.0.1")
	v.SetDefault("app.admin.port", 3002)
	v.SetDefault("app.cors_origins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.rotate.filename", "logs/sweet-shop.log")
	v.SetDefault("log.rotate.max_size_mb", 100)
	v.SetDefault("log.rotate.max_backups", 7)
	v.SetDefault("log.rotate.max_age_days", 30)

	// 无默认值的键也要登记，AutomaticEnv 才会在 Unmarshal 时生效
	for _, k := range []string{"jwt.secret", "db.username", "db.password", "redis.addr", "redis.password",
		"storage.bucket", "storage.endpoint", "storage.public_url"} {
		v.SetDefault(k, "")
	}
	v.SetDefault("redis.db", 0)
	v.SetDefault("db.seed", false)
	v.SetDefault("log.rotate.enable", false)
	v.SetDefault("log.rotate.compress", false)
	v.SetDefault("jwt.issuer", "sweet-shop")
	v.SetDefault("jwt.access_token_ttl_min", 24*60)

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "data/sweetshop.db")
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime_min", 30)
	v.SetDefault("db.acquire_timeout_sec", 2)
	v.SetDefault("db.auto_migrate", true)
	v.SetDefault("db.log_level", "warn")

	v.SetDefault("redis.ttl_sec", 60)

	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.enable_registration", true)

	v.SetDefault("admin.email", "admin@sweetshop.com")
	v.SetDefault("admin.password", "admin123")

	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.key_prefix", "sweets")
	v.SetDefault("storage.max_upload_mb", 10)

	v.SetDefault("limits.rps", 200)
	v.SetDefault("limits.burst", 400)
	v.SetDefault("limits.per_ip_rps", 20)
	v.SetDefault("limits.per_ip_burst", 40)
	v.SetDefault("limits.max_concurrency", 300)
	v.SetDefault("limits.body_bytes", 16<<20)
	v.SetDefault("limits.timeout_sec", 10)
}

func (c *Config) Validate() error {
	if len(c.JWT.Secret) < 32 {
		return errors.New("config: jwt.secret must be at least 32 bytes")
	}
	if _, ok := supportedDrivers[c.DB.Driver]; !ok {
		return fmt.Errorf("config: unsupported db.driver %q", c.DB.Driver)
	}
	if c.DB.DSN == "" {
		return errors.New("config: db.dsn is required")
	}
	return nil
}

func (c *Config) IsProduction() bool { return c.App.Env == "production" }
