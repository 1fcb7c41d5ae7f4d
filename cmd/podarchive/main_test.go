package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mxpv/podarchive/pkg/config"
)

func TestSetupLoggingTruncates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.log")
	require.NoError(t, os.WriteFile(path, []byte("previous run\n"), 0644))

	closeLog, err := setupLogging(&config.Log{Filename: path})
	require.NoError(t, err)

	log.Info("hello from test")
	closeLog()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from test")
	assert.NotContains(t, string(data), "previous run")
}

func TestSetupLoggingRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "backup.log")
	require.NoError(t, os.WriteFile(path, []byte("previous run\n"), 0644))

	closeLog, err := setupLogging(&config.Log{Filename: path, MaxSize: 1, MaxBackups: 1, MaxAge: 1})
	require.NoError(t, err)

	log.Info("appended line")
	closeLog()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "previous run")
	assert.Contains(t, string(data), "appended line")
}

func TestSetupLoggingInvalidPath(t *testing.T) {
	_, err := setupLogging(&config.Log{Filename: filepath.Join(t.TempDir(), "missing", "backup.log")})
	assert.Error(t, err)
}

func TestProgress(t *testing.T) {
	assert.Nil(t, newProgress(&bytes.Buffer{}, true))
	assert.Nil(t, newProgress(os.Stderr, false))

	var out bytes.Buffer
	p := &progress{out: &out}
	p.Start(2)
	p.Describe("https://example.com/feed")
	p.Increment()
	p.Increment()
	p.Finish()

	assert.Contains(t, out.String(), "2/2")
}
