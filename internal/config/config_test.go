package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.ListenAddr)
	assert.NotEmpty(t, cfg.DBPath)
	assert.NotEmpty(t, cfg.AttachmentPath)
	assert.Positive(t, cfg.MaxUploadBytes)
}

func TestLoadCustomValues(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("DB_PATH", "/custom/db.sqlite")
	t.Setenv("ATTACHMENT_PATH", "/custom/files")
	t.Setenv("MAX_UPLOAD_BYTES", "1024")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "/custom/db.sqlite", cfg.DBPath)
	assert.Equal(t, "/custom/files", cfg.AttachmentPath)
	assert.Equal(t, int64(1024), cfg.MaxUploadBytes)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestLoadRejectsBadUploadLimit(t *testing.T) {
	t.Setenv("MAX_UPLOAD_BYTES", "not-a-number")

	_, err := Load()
	assert.Error(t, err)
}
