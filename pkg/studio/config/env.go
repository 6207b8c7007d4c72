package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// envConfig lists every environment variable the server understands.
// Unset variables leave the corresponding setting untouched.
type envConfig struct {
	Port        string `env:"PORT"`
	Environment string `env:"ENVIRONMENT"`
	LogLevel    string `env:"LOG_LEVEL"`

	DatabaseURL string `env:"DATABASE_URL"`
	DBSchema    string `env:"DB_SCHEMA"`
	AutoMigrate string `env:"DB_AUTO_MIGRATE"`

	StorageURL       string `env:"STORAGE_URL"`
	MediaURLPrefix   string `env:"MEDIA_URL_PREFIX"`
	MediaKeyStrategy string `env:"MEDIA_KEY_STRATEGY"`

	OperationTimeout   time.Duration `env:"OPERATION_TIMEOUT"`
	MaxUploadBytes     int64         `env:"MAX_UPLOAD_BYTES"`
	CORSAllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" env-separator:","`
	AdminJWTSecret     string        `env:"ADMIN_JWT_SECRET"`

	Notifier     string   `env:"NOTIFIER"`
	SMTPHost     string   `env:"SMTP_HOST"`
	SMTPPort     int      `env:"SMTP_PORT"`
	SMTPUsername string   `env:"SMTP_USERNAME"`
	SMTPPassword string   `env:"SMTP_PASSWORD"`
	SMTPFrom     string   `env:"SMTP_FROM"`
	SMTPTo       []string `env:"SMTP_TO" env-separator:","`
	SMTPTLS      string   `env:"SMTP_TLS"`
	NATSURL      string   `env:"NATS_URL"`
	NATSSubject  string   `env:"NATS_SUBJECT"`

	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	AWSRegion          string `env:"AWS_REGION"`
	S3Endpoint         string `env:"S3_ENDPOINT"`
	S3Prefix           string `env:"S3_PREFIX"`
	S3UsePathStyle     string `env:"S3_USE_PATH_STYLE"`
	S3CreateBucket     string `env:"S3_CREATE_BUCKET"`
}

// WithEnv applies environment variable overrides.
//
// Server:
//
//	PORT, ENVIRONMENT, LOG_LEVEL
//
// Database:
//
//	DATABASE_URL - "memory" (default), "postgres://..." / "postgresql://..."
//	               or "sqlite://path/to/studio.db"
//	DB_SCHEMA, DB_AUTO_MIGRATE
//
// Storage:
//
//	STORAGE_URL - "memory://" (default), "file:///path/to/uploads" or
//	              "s3://bucket?region=us-east-1&endpoint=http://localhost:9000&path_style=true"
//	AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY, AWS_REGION,
//	S3_ENDPOINT, S3_PREFIX, S3_USE_PATH_STYLE, S3_CREATE_BUCKET
//
// Media and requests:
//
//	MEDIA_URL_PREFIX, MEDIA_KEY_STRATEGY, OPERATION_TIMEOUT, MAX_UPLOAD_BYTES,
//	CORS_ALLOWED_ORIGINS, ADMIN_JWT_SECRET
//
// Notifications:
//
//	NOTIFIER - "none", "log" (default), "smtp" or "nats"
//	SMTP_HOST, SMTP_PORT, SMTP_USERNAME, SMTP_PASSWORD, SMTP_FROM, SMTP_TO, SMTP_TLS
//	NATS_URL, NATS_SUBJECT
func WithEnv() Option {
	return func(c *ServerConfig) error {
		var env envConfig
		if err := cleanenv.ReadEnv(&env); err != nil {
			return fmt.Errorf("failed to read environment: %w", err)
		}
		return env.apply(c)
	}
}

func (e envConfig) apply(c *ServerConfig) error {
	setString(&c.Port, e.Port)
	setString(&c.Environment, e.Environment)
	setString(&c.LogLevel, e.LogLevel)

	if err := applyDatabaseURL(e.DatabaseURL, c); err != nil {
		return err
	}
	setString(&c.DBSchema, e.DBSchema)
	if e.AutoMigrate != "" {
		c.AutoMigrate = isTrue(e.AutoMigrate)
	}

	if err := applyStorageURL(e.StorageURL, c); err != nil {
		return err
	}
	if c.Storage.Type == "s3" {
		applyS3Env(e, c.Storage.Config)
	}
	setString(&c.MediaURLPrefix, e.MediaURLPrefix)
	setString(&c.MediaKeyStrategy, e.MediaKeyStrategy)

	if e.OperationTimeout != 0 {
		c.OperationTimeout = e.OperationTimeout
	}
	if e.MaxUploadBytes != 0 {
		c.MaxUploadBytes = e.MaxUploadBytes
	}
	if len(e.CORSAllowedOrigins) > 0 {
		c.CORSAllowedOrigins = trimAll(e.CORSAllowedOrigins)
	}
	setString(&c.AdminJWTSecret, e.AdminJWTSecret)

	setString(&c.Notifier.Type, e.Notifier)
	setString(&c.Notifier.SMTP.Host, e.SMTPHost)
	if e.SMTPPort != 0 {
		c.Notifier.SMTP.Port = e.SMTPPort
	}
	setString(&c.Notifier.SMTP.Username, e.SMTPUsername)
	setString(&c.Notifier.SMTP.Password, e.SMTPPassword)
	setString(&c.Notifier.SMTP.From, e.SMTPFrom)
	if len(e.SMTPTo) > 0 {
		c.Notifier.SMTP.To = trimAll(e.SMTPTo)
	}
	setString(&c.Notifier.SMTP.TLS, e.SMTPTLS)
	setString(&c.Notifier.NATSURL, e.NATSURL)
	setString(&c.Notifier.NATSSubject, e.NATSSubject)

	return nil
}

// applyDatabaseURL detects the database type from the URL scheme
func applyDatabaseURL(dbURL string, c *ServerConfig) error {
	switch {
	case dbURL == "":
		return nil
	case dbURL == "memory":
		c.DatabaseType = "memory"
		c.DatabaseURL = ""
	case strings.HasPrefix(dbURL, "postgresql://"), strings.HasPrefix(dbURL, "postgres://"):
		c.DatabaseType = "postgres"
		c.DatabaseURL = dbURL
	case strings.HasPrefix(dbURL, "sqlite://"):
		path := strings.TrimPrefix(dbURL, "sqlite://")
		if path == "" {
			return fmt.Errorf("sqlite path cannot be empty in DATABASE_URL")
		}
		c.DatabaseType = "sqlite"
		c.DatabaseURL = path
	default:
		return fmt.Errorf("unsupported DATABASE_URL format: %s (use 'memory', 'postgres://...' or 'sqlite://...')", dbURL)
	}
	return nil
}

// applyStorageURL configures the media backend from a URL
func applyStorageURL(storageURL string, c *ServerConfig) error {
	switch {
	case storageURL == "":
		return nil
	case storageURL == "memory" || storageURL == "memory://":
		c.Storage = StorageBackendConfig{Name: "memory", Type: "memory", Config: map[string]interface{}{}}
		return nil
	case strings.HasPrefix(storageURL, "file://"):
		path := strings.TrimPrefix(storageURL, "file://")
		if path == "" {
			return fmt.Errorf("filesystem path cannot be empty in STORAGE_URL")
		}
		c.Storage = StorageBackendConfig{Name: "fs", Type: "fs", Config: map[string]interface{}{"base_dir": path}}
		return nil
	case strings.HasPrefix(storageURL, "s3://"):
		u, err := url.Parse(storageURL)
		if err != nil {
			return fmt.Errorf("invalid STORAGE_URL: %w", err)
		}
		if u.Host == "" {
			return fmt.Errorf("S3 bucket name cannot be empty in STORAGE_URL")
		}
		cfg := map[string]interface{}{
			"bucket": u.Host,
			"region": "us-east-1",
		}
		q := u.Query()
		for param, key := range map[string]string{
			"region":     "region",
			"endpoint":   "endpoint",
			"prefix":     "prefix",
			"path_style": "use_path_style",
			"create":     "create_bucket_if_not_exist",
			"sse":        "sse_algorithm",
		} {
			if v := q.Get(param); v != "" {
				cfg[key] = v
			}
		}
		if _, ok := cfg["sse_algorithm"]; ok {
			cfg["enable_sse"] = true
		}
		c.Storage = StorageBackendConfig{Name: "s3", Type: "s3", Config: cfg}
		return nil
	}
	return fmt.Errorf("unsupported STORAGE_URL format: %s (use 'memory://', 'file://...', or 's3://...')", storageURL)
}

func applyS3Env(e envConfig, cfg map[string]interface{}) {
	set := func(key, value string) {
		if value != "" {
			cfg[key] = value
		}
	}
	set("access_key_id", e.AWSAccessKeyID)
	set("secret_access_key", e.AWSSecretAccessKey)
	set("region", e.AWSRegion)
	set("endpoint", e.S3Endpoint)
	set("prefix", e.S3Prefix)
	set("use_path_style", e.S3UsePathStyle)
	set("create_bucket_if_not_exist", e.S3CreateBucket)
}

func setString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

func isTrue(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "yes", "on":
		return true
	}
	return false
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
