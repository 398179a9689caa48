package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. BULLETIN_HTTP_ADDR.
const EnvPrefix = "BULLETIN"

type Config struct {
	HTTP    HTTP
	Storage Storage
	Auth    Auth
	Lock    Lock
	Log     Log
	Backup  Backup
}

type HTTP struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type Storage struct {
	Path            string
	InMemory        bool
	SyncWrites      bool
	ConflictRetries int
}

type Auth struct {
	JWTSecret  string
	TokenTTL   time.Duration
	AdminToken string
}

// Lock selects how like toggles are serialized: "local" or "redis".
type Lock struct {
	Backend       string
	RedisAddr     string
	RedisPassword string
	Expiry        time.Duration
}

type Log struct {
	Level  string
	Format string
}

type Backup struct {
	Dir string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.read_timeout", 10*time.Second)
	v.SetDefault("http.write_timeout", 10*time.Second)
	v.SetDefault("http.shutdown_timeout", 15*time.Second)

	v.SetDefault("storage.path", "./data/bulletin.db")
	v.SetDefault("storage.in_memory", false)
	v.SetDefault("storage.sync_writes", false)
	v.SetDefault("storage.conflict_retries", 5)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.admin_token", "")

	v.SetDefault("lock.backend", "local")
	v.SetDefault("lock.redis_addr", "localhost:6379")
	v.SetDefault("lock.redis_password", "")
	v.SetDefault("lock.expiry", 5*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("backup.dir", "./backups")
}

// New returns a viper instance with defaults, env overrides and the config
// search path set up. file, when non-empty, replaces the search path.
func New(file string) *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		return v
	}
	v.SetConfigType("yaml")
	v.SetConfigName("config")
	for _, path := range []string{"./config", "."} {
		v.AddConfigPath(path)
	}
	return v
}

// Load reads the config file, if one exists, and decodes every key. A missing
// file is not an error when no file was named explicitly.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || v.ConfigFileUsed() != "" {
			return nil, errors.Wrap(err, "failed to read config")
		}
		logrus.Debug("no config file found, using defaults")
	} else {
		logrus.Infof("Successfully read config file: %s", v.ConfigFileUsed())
	}

	cfg := &Config{
		HTTP: HTTP{
			Addr:            v.GetString("http.addr"),
			ReadTimeout:     v.GetDuration("http.read_timeout"),
			WriteTimeout:    v.GetDuration("http.write_timeout"),
			ShutdownTimeout: v.GetDuration("http.shutdown_timeout"),
		},
		Storage: Storage{
			Path:            v.GetString("storage.path"),
			InMemory:        v.GetBool("storage.in_memory"),
			SyncWrites:      v.GetBool("storage.sync_writes"),
			ConflictRetries: v.GetInt("storage.conflict_retries"),
		},
		Auth: Auth{
			JWTSecret:  v.GetString("auth.jwt_secret"),
			TokenTTL:   v.GetDuration("auth.token_ttl"),
			AdminToken: v.GetString("auth.admin_token"),
		},
		Lock: Lock{
			Backend:       strings.ToLower(v.GetString("lock.backend")),
			RedisAddr:     v.GetString("lock.redis_addr"),
			RedisPassword: v.GetString("lock.redis_password"),
			Expiry:        v.GetDuration("lock.expiry"),
		},
		Log: Log{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Backup: Backup{
			Dir: v.GetString("backup.dir"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Lock.Backend {
	case "local", "redis":
	default:
		return errors.Errorf("unknown lock backend %q", c.Lock.Backend)
	}
	if c.Storage.ConflictRetries < 0 {
		return errors.New("storage.conflict_retries cannot be negative")
	}
	if !c.Storage.InMemory && c.Storage.Path == "" {
		return errors.New("storage.path is required unless storage.in_memory is set")
	}
	return nil
}

// ConfigureLogging applies the log level and format to the standard logrus logger.
func ConfigureLogging(c Log) error {
	level, err := logrus.ParseLevel(c.Level)
	if err != nil {
		return errors.Wrapf(err, "invalid log level %q", c.Level)
	}
	logrus.SetLevel(level)

	switch strings.ToLower(c.Format) {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return errors.Errorf("unknown log format %q", c.Format)
	}
	return nil
}
