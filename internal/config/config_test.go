package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:      App{Env: "test", LogLevel: "info"},
		HTTP:     HTTP{Port: 8080},
		Database: Database{Driver: "sqlite", DSN: ":memory:"},
		Redis:    Redis{Addr: "127.0.0.1:6379"},
		Session:  Session{Store: "database", Secret: "s3cret", CookieName: "forum.sid", TTL: time.Hour},
		Storage:  Storage{Type: "local", LocalDir: "uploads", PublicPath: "/uploads"},
		Upload:   Upload{MaxSize: 10 << 20, MaxFiles: 5},
		Outbox:   Outbox{Interval: time.Second, BatchSize: 10},
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	cases := map[string]func(c *Config){
		"bad log level":       func(c *Config) { c.App.LogLevel = "loud" },
		"bad port":            func(c *Config) { c.HTTP.Port = 0 },
		"bad driver":          func(c *Config) { c.Database.Driver = "oracle" },
		"empty dsn":           func(c *Config) { c.Database.DSN = "" },
		"bad session store":   func(c *Config) { c.Session.Store = "memory" },
		"missing secret":      func(c *Config) { c.Session.Secret = "" },
		"redis store no addr": func(c *Config) { c.Session.Store = "redis"; c.Redis.Addr = "" },
		"bad storage":         func(c *Config) { c.Storage.Type = "s3" },
		"minio no endpoint":   func(c *Config) { c.Storage.Type = "minio" },
		"zero upload size":    func(c *Config) { c.Upload.MaxSize = 0 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := validConfig()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("FORUM_DATABASE_DRIVER", "sqlite")
	t.Setenv("FORUM_DATABASE_DSN", "file:forum.db")
	t.Setenv("FORUM_SESSION_SECRET", "env-secret")
	t.Setenv("FORUM_HTTP_PORT", "9090")

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "env-secret", cfg.Session.Secret)
	assert.Equal(t, "forum.sid", cfg.Session.CookieName)
	assert.Equal(t, 7*24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, int64(10<<20), cfg.Upload.MaxSize)
	assert.Equal(t, 5, cfg.Upload.MaxFiles)
}

func TestLoadConfigFlag(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := filepath.Join(dir, "forum.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  driver: sqlite
  dsn: ":memory:"
session:
  secret: file-secret
  store: database
upload:
  max_files: 3
`), 0o644))

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("config", "", "")
	require.NoError(t, flags.Parse([]string{"--config", path}))

	cfg, err := Load(flags)
	require.NoError(t, err)
	assert.Equal(t, "file-secret", cfg.Session.Secret)
	assert.Equal(t, 3, cfg.Upload.MaxFiles)
}

func TestLoadMissingSecret(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("FORUM_DATABASE_DSN", "x")
	t.Setenv("FORUM_SESSION_SECRET", "")

	_, err := Load(nil)
	assert.Error(t, err)
}

// chdir changes the working directory for the duration of the test,
// mirroring testing.T.Chdir (Go 1.24+) on older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
