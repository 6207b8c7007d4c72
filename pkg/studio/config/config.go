package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/studio-site/pkg/studio"
	"github.com/tendant/studio-site/pkg/studio/mediakey"
	mailnotify "github.com/tendant/studio-site/pkg/studio/notify/mail"
	natsnotify "github.com/tendant/studio-site/pkg/studio/notify/nats"
	"github.com/tendant/studio-site/pkg/studio/repo/memory"
	repopg "github.com/tendant/studio-site/pkg/studio/repo/postgres"
	reposqlite "github.com/tendant/studio-site/pkg/studio/repo/sqlite"
	fsstorage "github.com/tendant/studio-site/pkg/studio/storage/fs"
	memorystorage "github.com/tendant/studio-site/pkg/studio/storage/memory"
	s3storage "github.com/tendant/studio-site/pkg/studio/storage/s3"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options on top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:         "8080",
		Environment:  "development",
		LogLevel:     "info",
		DatabaseType: "memory",
		AutoMigrate:  true,
		Storage: StorageBackendConfig{
			Name:   "memory",
			Type:   "memory",
			Config: map[string]interface{}{},
		},
		MediaURLPrefix:     studio.DefaultMediaURLPrefix,
		MediaKeyStrategy:   "timestamp",
		OperationTimeout:   studio.DefaultOperationTimeout,
		MaxUploadBytes:     10 << 20,
		CORSAllowedOrigins: []string{"*"},
		Notifier: NotifierConfig{
			Type:        "log",
			NATSSubject: natsnotify.DefaultSubject,
		},
	}
}

// ServerConfig represents configuration for the studio site server
type ServerConfig struct {
	Port        string
	Environment string // development, production, testing
	LogLevel    string // debug, info, warn, error

	// Database configuration
	DatabaseType string // "memory", "postgres", "sqlite"
	DatabaseURL  string // postgres connection string or sqlite file path
	DBSchema     string // Postgres schema to use (optional)
	AutoMigrate  bool   // create tables on startup

	// Media storage configuration
	Storage          StorageBackendConfig
	MediaURLPrefix   string
	MediaKeyStrategy string // "timestamp", "sharded"

	// Request handling
	OperationTimeout   time.Duration
	MaxUploadBytes     int64
	CORSAllowedOrigins []string
	AdminJWTSecret     string // empty leaves admin routes open

	Notifier NotifierConfig
}

// StorageBackendConfig represents configuration for a storage backend
type StorageBackendConfig struct {
	Name   string
	Type   string // "memory", "fs", "s3"
	Config map[string]interface{}
}

// NotifierConfig selects how contact submissions are announced
type NotifierConfig struct {
	Type        string // "none", "log", "smtp", "nats"
	SMTP        mailnotify.Config
	NATSURL     string
	NATSSubject string
}

var (
	environments  = []string{"development", "production", "testing"}
	databaseTypes = []string{"memory", "postgres", "sqlite"}
	storageTypes  = []string{"memory", "fs", "s3"}
	notifierTypes = []string{"none", "log", "smtp", "nats"}
	logLevels     = []string{"debug", "info", "warn", "error"}
)

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if !slices.Contains(environments, c.Environment) {
		return fmt.Errorf("environment must be one of %s", strings.Join(environments, ", "))
	}
	if !slices.Contains(logLevels, strings.ToLower(c.LogLevel)) {
		return fmt.Errorf("log level must be one of %s", strings.Join(logLevels, ", "))
	}

	if !slices.Contains(databaseTypes, c.DatabaseType) {
		return errors.New("database_type must be 'memory', 'postgres' or 'sqlite'")
	}
	if c.DatabaseType != "memory" && c.DatabaseURL == "" {
		return fmt.Errorf("database_url is required when using %s", c.DatabaseType)
	}

	if !slices.Contains(storageTypes, c.Storage.Type) {
		return fmt.Errorf("unsupported storage backend type: %s", c.Storage.Type)
	}
	if c.Storage.Type == "s3" && getString(c.Storage.Config, "bucket", "") == "" {
		return errors.New("bucket is required for s3 storage")
	}
	if c.Storage.Type == "fs" && getString(c.Storage.Config, "base_dir", "") == "" {
		return errors.New("base_dir is required for filesystem storage")
	}

	if _, err := mediakey.New(c.MediaKeyStrategy); err != nil {
		return err
	}
	if c.OperationTimeout < 0 {
		return errors.New("operation timeout cannot be negative")
	}
	if c.MaxUploadBytes <= 0 {
		return errors.New("max upload bytes must be positive")
	}

	switch c.Notifier.Type {
	case "smtp":
		if c.Notifier.SMTP.Host == "" || c.Notifier.SMTP.From == "" || len(c.Notifier.SMTP.To) == 0 {
			return errors.New("smtp notifier requires host, from and to")
		}
	case "nats":
		if c.Notifier.NATSURL == "" {
			return errors.New("nats notifier requires a url")
		}
	default:
		if !slices.Contains(notifierTypes, c.Notifier.Type) {
			return fmt.Errorf("notifier must be one of %s", strings.Join(notifierTypes, ", "))
		}
	}

	return nil
}

// BuildService creates a Service instance from the server configuration.
// Resources opened here are released by the service's Close.
func (c *ServerConfig) BuildService(ctx context.Context, logger *slog.Logger) (studio.Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	repo, err := c.buildRepository(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to build repository: %w", err)
	}

	store, err := c.buildStorageBackend(ctx, c.Storage)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to build storage backend %s: %w", c.Storage.Name, err)
	}

	keys, err := mediakey.New(c.MediaKeyStrategy)
	if err != nil {
		repo.Close()
		return nil, err
	}

	options := []studio.Option{
		studio.WithRepository(repo),
		studio.WithBlobStore(c.Storage.Name, store),
		studio.WithMediaKeyGenerator(keys),
		studio.WithMediaURLPrefix(c.MediaURLPrefix),
		studio.WithOperationTimeout(c.OperationTimeout),
		studio.WithLogger(logger),
	}

	switch c.Notifier.Type {
	case "none":
		options = append(options, studio.WithNotifier(studio.NewNoopNotifier()))
	case "log":
		options = append(options, studio.WithNotifier(studio.NewLogNotifier(logger)))
	case "smtp":
		n, err := mailnotify.New(c.Notifier.SMTP)
		if err != nil {
			repo.Close()
			return nil, fmt.Errorf("failed to build smtp notifier: %w", err)
		}
		options = append(options, studio.WithNotifier(n))
	case "nats":
		n, err := natsnotify.Connect(c.Notifier.NATSURL, c.Notifier.NATSSubject)
		if err != nil {
			repo.Close()
			return nil, fmt.Errorf("failed to build nats notifier: %w", err)
		}
		options = append(options, studio.WithNotifier(n), studio.WithCloser(n))
	}

	return studio.New(options...)
}

// buildRepository creates a Repository based on the configuration
func (c *ServerConfig) buildRepository(ctx context.Context) (studio.Repository, error) {
	switch c.DatabaseType {
	case "memory":
		return memory.New(), nil
	case "postgres":
		cfg, err := pgxpool.ParseConfig(c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		schema := c.DBSchema
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			if schema == "" {
				return nil
			}
			_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", schema))
			return err
		}
		pool, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create pgx pool: %w", err)
		}
		repo := repopg.NewWithPool(pool)
		if c.AutoMigrate {
			if err := repo.Migrate(ctx); err != nil {
				repo.Close()
				return nil, fmt.Errorf("failed to migrate database: %w", err)
			}
		}
		return repo, nil
	case "sqlite":
		return reposqlite.Open(c.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.DatabaseType)
	}
}

// PingPostgres verifies connectivity to Postgres and optionally sets search_path for the session.
func PingPostgres(ctx context.Context, databaseURL, schema string) error {
	if databaseURL == "" {
		return errors.New("database_url is required")
	}
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return fmt.Errorf("failed to parse DATABASE_URL: %w", err)
	}
	if schema != "" {
		cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", schema))
			return err
		}
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to create pgx pool: %w", err)
	}
	defer pool.Close()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// buildStorageBackend creates a BlobStore based on the backend configuration
func (c *ServerConfig) buildStorageBackend(ctx context.Context, config StorageBackendConfig) (studio.BlobStore, error) {
	switch config.Type {
	case "memory":
		return memorystorage.New(), nil

	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir: getString(config.Config, "base_dir", "./uploads"),
		})

	case "s3":
		return s3storage.New(ctx, s3storage.Config{
			Region:                 getString(config.Config, "region", "us-east-1"),
			Bucket:                 getString(config.Config, "bucket", ""),
			Prefix:                 getString(config.Config, "prefix", ""),
			AccessKeyID:            getString(config.Config, "access_key_id", ""),
			SecretAccessKey:        getString(config.Config, "secret_access_key", ""),
			Endpoint:               getString(config.Config, "endpoint", ""),
			UsePathStyle:           getBool(config.Config, "use_path_style", false),
			EnableSSE:              getBool(config.Config, "enable_sse", false),
			SSEAlgorithm:           getString(config.Config, "sse_algorithm", "AES256"),
			SSEKMSKeyID:            getString(config.Config, "sse_kms_key_id", ""),
			CreateBucketIfNotExist: getBool(config.Config, "create_bucket_if_not_exist", false),
		})

	default:
		return nil, fmt.Errorf("unsupported storage backend type: %s", config.Type)
	}
}

func getString(config map[string]interface{}, key string, defaultValue string) string {
	if value, exists := config[key]; exists {
		if str, ok := value.(string); ok {
			return str
		}
	}
	return defaultValue
}

func getBool(config map[string]interface{}, key string, defaultValue bool) bool {
	if value, exists := config[key]; exists {
		if b, ok := value.(bool); ok {
			return b
		}
		if str, ok := value.(string); ok {
			if b, err := strconv.ParseBool(str); err == nil {
				return b
			}
		}
	}
	return defaultValue
}
