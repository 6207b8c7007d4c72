package config

import (
	"fmt"
	"time"

	mailnotify "github.com/tendant/studio-site/pkg/studio/notify/mail"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithDatabase configures the database backend. For sqlite, url is the
// database file path.
func WithDatabase(dbType, url string) Option {
	return func(c *ServerConfig) error {
		switch dbType {
		case "memory":
		case "postgres", "sqlite":
			if url == "" {
				return fmt.Errorf("database URL is required for %s", dbType)
			}
		default:
			return fmt.Errorf("database type must be 'memory', 'postgres' or 'sqlite', got: %s", dbType)
		}
		c.DatabaseType = dbType
		c.DatabaseURL = url
		return nil
	}
}

// WithDatabaseSchema sets the database schema (for Postgres)
func WithDatabaseSchema(schema string) Option {
	return func(c *ServerConfig) error {
		c.DBSchema = schema
		return nil
	}
}

// WithMemoryStorage keeps uploaded media in process memory
func WithMemoryStorage() Option {
	return func(c *ServerConfig) error {
		c.Storage = StorageBackendConfig{Name: "memory", Type: "memory", Config: map[string]interface{}{}}
		return nil
	}
}

// WithFilesystemStorage stores uploaded media under baseDir
func WithFilesystemStorage(baseDir string) Option {
	return func(c *ServerConfig) error {
		if baseDir == "" {
			return fmt.Errorf("filesystem base directory cannot be empty")
		}
		c.Storage = StorageBackendConfig{
			Name:   "fs",
			Type:   "fs",
			Config: map[string]interface{}{"base_dir": baseDir},
		}
		return nil
	}
}

// WithS3Storage stores uploaded media in an S3 bucket. Extra settings such
// as "endpoint" or "use_path_style" may be passed in settings.
func WithS3Storage(bucket, region string, settings map[string]interface{}) Option {
	return func(c *ServerConfig) error {
		if bucket == "" {
			return fmt.Errorf("s3 bucket cannot be empty")
		}
		cfg := map[string]interface{}{"bucket": bucket, "region": region}
		for k, v := range settings {
			cfg[k] = v
		}
		c.Storage = StorageBackendConfig{Name: "s3", Type: "s3", Config: cfg}
		return nil
	}
}

// WithMediaURLPrefix sets the path media is served under
func WithMediaURLPrefix(prefix string) Option {
	return func(c *ServerConfig) error {
		c.MediaURLPrefix = prefix
		return nil
	}
}

// WithMediaKeyStrategy selects "timestamp" or "sharded" media keys
func WithMediaKeyStrategy(strategy string) Option {
	return func(c *ServerConfig) error {
		c.MediaKeyStrategy = strategy
		return nil
	}
}

// WithOperationTimeout bounds every storage call
func WithOperationTimeout(d time.Duration) Option {
	return func(c *ServerConfig) error {
		c.OperationTimeout = d
		return nil
	}
}

// WithMaxUploadBytes caps multipart request bodies
func WithMaxUploadBytes(n int64) Option {
	return func(c *ServerConfig) error {
		c.MaxUploadBytes = n
		return nil
	}
}

// WithCORSOrigins sets the allowed CORS origins
func WithCORSOrigins(origins ...string) Option {
	return func(c *ServerConfig) error {
		c.CORSAllowedOrigins = origins
		return nil
	}
}

// WithAdminJWTSecret protects admin routes with HS256 bearer tokens
func WithAdminJWTSecret(secret string) Option {
	return func(c *ServerConfig) error {
		c.AdminJWTSecret = secret
		return nil
	}
}

// WithNotifier selects the contact notifier type ("none", "log", "smtp", "nats")
func WithNotifier(notifierType string) Option {
	return func(c *ServerConfig) error {
		c.Notifier.Type = notifierType
		return nil
	}
}

// WithSMTP configures SMTP delivery of contact notifications
func WithSMTP(smtp mailnotify.Config) Option {
	return func(c *ServerConfig) error {
		c.Notifier.Type = "smtp"
		c.Notifier.SMTP = smtp
		return nil
	}
}

// WithNATS publishes contact notifications to a NATS subject
func WithNATS(url, subject string) Option {
	return func(c *ServerConfig) error {
		c.Notifier.Type = "nats"
		c.Notifier.NATSURL = url
		if subject != "" {
			c.Notifier.NATSSubject = subject
		}
		return nil
	}
}
