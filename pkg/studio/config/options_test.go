package config

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendant/studio-site/pkg/studio"
	mailnotify "github.com/tendant/studio-site/pkg/studio/notify/mail"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, "memory", cfg.DatabaseType)
	assert.Equal(t, "memory", cfg.Storage.Type)
	assert.Equal(t, studio.DefaultMediaURLPrefix, cfg.MediaURLPrefix)
	assert.Equal(t, studio.DefaultOperationTimeout, cfg.OperationTimeout)
	assert.Equal(t, "log", cfg.Notifier.Type)
}

func TestOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		check   func(t *testing.T, cfg *ServerConfig)
		wantErr bool
	}{
		{
			name: "port and environment",
			opts: []Option{WithPort("3000"), WithEnvironment("production")},
			check: func(t *testing.T, cfg *ServerConfig) {
				assert.Equal(t, "3000", cfg.Port)
				assert.Equal(t, "production", cfg.Environment)
			},
		},
		{name: "empty port", opts: []Option{WithPort("")}, wantErr: true},
		{name: "unknown environment", opts: []Option{WithEnvironment("staging")}, wantErr: true},
		{
			name: "postgres database",
			opts: []Option{WithDatabase("postgres", "postgres://localhost/studio"), WithDatabaseSchema("site")},
			check: func(t *testing.T, cfg *ServerConfig) {
				assert.Equal(t, "postgres", cfg.DatabaseType)
				assert.Equal(t, "site", cfg.DBSchema)
			},
		},
		{name: "sqlite without path", opts: []Option{WithDatabase("sqlite", "")}, wantErr: true},
		{name: "unknown database", opts: []Option{WithDatabase("mongo", "mongodb://x")}, wantErr: true},
		{
			name: "filesystem storage",
			opts: []Option{WithFilesystemStorage("/srv/uploads")},
			check: func(t *testing.T, cfg *ServerConfig) {
				assert.Equal(t, "fs", cfg.Storage.Type)
				assert.Equal(t, "/srv/uploads", cfg.Storage.Config["base_dir"])
			},
		},
		{
			name: "s3 storage",
			opts: []Option{WithS3Storage("media", "eu-central-1", map[string]interface{}{"use_path_style": true})},
			check: func(t *testing.T, cfg *ServerConfig) {
				assert.Equal(t, "s3", cfg.Storage.Type)
				assert.Equal(t, "media", cfg.Storage.Config["bucket"])
				assert.True(t, getBool(cfg.Storage.Config, "use_path_style", false))
			},
		},
		{name: "s3 without bucket", opts: []Option{WithS3Storage("", "us-east-1", nil)}, wantErr: true},
		{name: "unknown key strategy", opts: []Option{WithMediaKeyStrategy("random")}, wantErr: true},
		{name: "negative timeout", opts: []Option{WithOperationTimeout(-time.Second)}, wantErr: true},
		{name: "zero upload cap", opts: []Option{WithMaxUploadBytes(0)}, wantErr: true},
		{
			name: "smtp notifier",
			opts: []Option{WithSMTP(mailnotify.Config{Host: "smtp.example.com", From: "a@example.com", To: []string{"b@example.com"}})},
			check: func(t *testing.T, cfg *ServerConfig) {
				assert.Equal(t, "smtp", cfg.Notifier.Type)
			},
		},
		{name: "nats without url", opts: []Option{WithNATS("", "")}, wantErr: true},
		{
			name: "later options win",
			opts: []Option{WithPort("1"), WithPort("2"), WithCORSOrigins("https://a.example")},
			check: func(t *testing.T, cfg *ServerConfig) {
				assert.Equal(t, "2", cfg.Port)
				assert.Equal(t, []string{"https://a.example"}, cfg.CORSAllowedOrigins)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.opts...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestBuildService(t *testing.T) {
	cfg, err := Load(WithNotifier("none"), WithFilesystemStorage(t.TempDir()), WithMediaKeyStrategy("sharded"))
	require.NoError(t, err)

	svc, err := cfg.BuildService(context.Background(), nil)
	require.NoError(t, err)
	defer svc.Close()

	contact, err := svc.SubmitContact(context.Background(), studio.SubmitContactRequest{
		Name:    "Ann",
		Email:   "ann@example.com",
		Message: "Hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "Ann", contact.Name)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Contacts)
}

func TestBuildServiceSQLite(t *testing.T) {
	cfg, err := Load(WithDatabase("sqlite", t.TempDir()+"/studio.db"), WithNotifier("none"))
	require.NoError(t, err)

	svc, err := cfg.BuildService(context.Background(), nil)
	require.NoError(t, err)
	defer svc.Close()

	_, err = svc.SubscribeNewsletter(context.Background(), studio.SubscribeRequest{Email: "fan@example.com"})
	require.NoError(t, err)
}
