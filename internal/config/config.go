// Package config 读取 config.yaml、.env 与 FORUM_* 环境变量，校验后得到 Config；
// 启动之后不再读 viper
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	validLogLevels    = []string{"debug", "info", "warn", "error"}
	validDrivers      = []string{"mysql", "sqlite"}
	validSessionStore = []string{"database", "redis"}
	validStorageTypes = []string{"local", "minio"}
)

type App struct {
	Env      string
	LogLevel string
}

type HTTP struct {
	Port           int
	AllowedOrigins []string
}

type Database struct {
	Driver string
	DSN    string
}

type Redis struct {
	Addr     string
	Password string
	DB       int
}

type Session struct {
	Store      string
	Secret     string
	CookieName string
	TTL        time.Duration
	Secure     bool
}

type Storage struct {
	Type       string
	LocalDir   string
	PublicPath string
}

type MinIO struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	PublicURL string
}

type Upload struct {
	MaxSize  int64
	MaxFiles int
}

type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type Kafka struct {
	Brokers []string
	Topic   string
}

type Outbox struct {
	Interval  time.Duration
	BatchSize int
}

type Admin struct {
	Email    string
	Password string
}

type Config struct {
	App      App
	HTTP     HTTP
	Database Database
	Redis    Redis
	Session  Session
	Storage  Storage
	MinIO    MinIO
	Upload   Upload
	SMTP     SMTP
	Kafka    Kafka
	Outbox   Outbox
	Admin    Admin
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("http.port", 8080)
	v.SetDefault("http.allowed_origins", []string{"http://localhost:5173"})

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.dsn", "")

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("session.store", "database")
	v.SetDefault("session.secret", "")
	v.SetDefault("session.cookie_name", "forum.sid")
	v.SetDefault("session.ttl", 7*24*time.Hour)
	v.SetDefault("session.secure", false)

	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_dir", "uploads")
	v.SetDefault("storage.public_path", "/uploads")

	v.SetDefault("minio.endpoint", "")
	v.SetDefault("minio.access_key", "")
	v.SetDefault("minio.secret_key", "")
	v.SetDefault("minio.bucket", "forum")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.public_url", "")

	v.SetDefault("upload.max_size", 10<<20)
	v.SetDefault("upload.max_files", 5)

	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 465)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "forum.content")

	v.SetDefault("outbox.interval", time.Second)
	v.SetDefault("outbox.batch_size", 200)

	v.SetDefault("admin.email", "")
	v.SetDefault("admin.password", "")
}

// Load 读取配置；flags 为 nil 时只看配置文件与环境变量
func Load(flags *pflag.FlagSet) (*Config, error) {
	// .env 不存在不是错误
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/forum")

	v.SetEnvPrefix("FORUM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if f := flags.Lookup("config"); f != nil && f.Value.String() != "" {
			v.SetConfigFile(f.Value.String())
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file, %w", err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		App: App{
			Env:      v.GetString("app.env"),
			LogLevel: v.GetString("app.log_level"),
		},
		HTTP: HTTP{
			Port:           v.GetInt("http.port"),
			AllowedOrigins: v.GetStringSlice("http.allowed_origins"),
		},
		Database: Database{
			Driver: v.GetString("database.driver"),
			DSN:    v.GetString("database.dsn"),
		},
		Redis: Redis{
			Addr:     v.GetString("redis.addr"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Session: Session{
			Store:      v.GetString("session.store"),
			Secret:     v.GetString("session.secret"),
			CookieName: v.GetString("session.cookie_name"),
			TTL:        v.GetDuration("session.ttl"),
			Secure:     v.GetBool("session.secure"),
		},
		Storage: Storage{
			Type:       v.GetString("storage.type"),
			LocalDir:   v.GetString("storage.local_dir"),
			PublicPath: v.GetString("storage.public_path"),
		},
		MinIO: MinIO{
			Endpoint:  v.GetString("minio.endpoint"),
			AccessKey: v.GetString("minio.access_key"),
			SecretKey: v.GetString("minio.secret_key"),
			Bucket:    v.GetString("minio.bucket"),
			UseSSL:    v.GetBool("minio.use_ssl"),
			PublicURL: v.GetString("minio.public_url"),
		},
		Upload: Upload{
			MaxSize:  v.GetInt64("upload.max_size"),
			MaxFiles: v.GetInt("upload.max_files"),
		},
		SMTP: SMTP{
			Host:     v.GetString("smtp.host"),
			Port:     v.GetInt("smtp.port"),
			Username: v.GetString("smtp.username"),
			Password: v.GetString("smtp.password"),
			From:     v.GetString("smtp.from"),
		},
		Kafka: Kafka{
			Brokers: v.GetStringSlice("kafka.brokers"),
			Topic:   v.GetString("kafka.topic"),
		},
		Outbox: Outbox{
			Interval:  v.GetDuration("outbox.interval"),
			BatchSize: v.GetInt("outbox.batch_size"),
		},
		Admin: Admin{
			Email:    v.GetString("admin.email"),
			Password: v.GetString("admin.password"),
		},
	}
}

// Validate 启动前检查，任何一项不合法都拒绝启动
func (c *Config) Validate() error {
	if !slices.Contains(validLogLevels, c.App.LogLevel) {
		return errors.New("invalid log level provided")
	}
	if c.HTTP.Port <= 0 {
		return errors.New("invalid port provided")
	}
	if !slices.Contains(validDrivers, c.Database.Driver) {
		return fmt.Errorf("invalid database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database.dsn can't be empty")
	}
	if !slices.Contains(validSessionStore, c.Session.Store) {
		return fmt.Errorf("invalid session store %q", c.Session.Store)
	}
	if c.Session.Store == "redis" && !c.RedisEnabled() {
		return errors.New("session.store=redis requires redis.addr")
	}
	if c.Session.Secret == "" {
		return errors.New("session.secret can't be empty")
	}
	if c.Session.TTL <= 0 {
		return errors.New("session.ttl must be bigger than 0")
	}
	if c.Upload.MaxSize <= 0 {
		return errors.New("upload.max_size must be bigger than 0")
	}
	if c.Upload.MaxFiles <= 0 {
		return errors.New("upload.max_files must be bigger than 0")
	}
	if c.Outbox.Interval <= 0 || c.Outbox.BatchSize <= 0 {
		return errors.New("outbox.interval and outbox.batch_size must be bigger than 0")
	}

	if !slices.Contains(validStorageTypes, c.Storage.Type) {
		return errors.New("invalid storage type provided")
	}
	switch c.Storage.Type {
	case "local":
		if c.Storage.LocalDir == "" {
			return errors.New("storage.local_dir can't be empty")
		}
	case "minio":
		if c.MinIO.Endpoint == "" {
			return errors.New("minio endpoint can't be empty")
		}
		if c.MinIO.AccessKey == "" || c.MinIO.SecretKey == "" {
			return errors.New("minio credentials can't be empty")
		}
		if c.MinIO.Bucket == "" {
			return errors.New("minio bucket can't be empty")
		}
	}
	return nil
}

// RedisEnabled redis.addr 为空时不连接 redis，邮箱验证不可用
func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}
