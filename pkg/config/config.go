package config

import (
	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/mxpv/podarchive/pkg/db"
	"github.com/mxpv/podarchive/pkg/feed"
	"github.com/mxpv/podarchive/pkg/model"
)

const (
	// DefaultLogMaxAge is the number of days to keep rotated logs
	DefaultLogMaxAge = 30
	// DefaultLogMaxBackups is the number of rotated logs to keep
	DefaultLogMaxBackups = 7
)

type Downloader struct {
	// MaxConnections is the number of concurrent downloads
	MaxConnections int `toml:"max_connections"`
	// UserAgent is sent with feed and file requests
	UserAgent string `toml:"user_agent"`
	// Timeout limits a single file download
	Timeout Duration `toml:"timeout"`
	// Retries is the number of extra attempts after a transient failure
	Retries int `toml:"retries"`
	// RetryBackoff is the initial delay between attempts, doubled after each one
	RetryBackoff Duration `toml:"retry_backoff"`
}

type Sync struct {
	// MaxPages caps feed pagination, 0 means no limit
	MaxPages int `toml:"max_pages"`
	// CoverFallback looks up a cover on the feed web page when the feed has no image
	CoverFallback bool `toml:"cover_fallback"`
}

type Log struct {
	// Filename to mirror the log to, truncated on every run unless rotation is enabled
	Filename string `toml:"filename"`
	// MaxSize is the maximum size of the log file in MB, enables rotation
	MaxSize int `toml:"max_size"`
	// MaxBackups is the maximum number of log file backups to keep after rotation
	MaxBackups int `toml:"max_backups"`
	// MaxAge is the maximum number of days to keep the logs for
	MaxAge int `toml:"max_age"`
	// Compress old backups
	Compress bool `toml:"compress"`
}

// Hook is a command executed on archive events
type Hook struct {
	Command StringSlice `toml:"command"`
	// Timeout in seconds
	Timeout int `toml:"timeout"`
}

type Hooks struct {
	// OnEpisode runs after each archived episode
	OnEpisode *Hook `toml:"on_episode"`
}

type Config struct {
	Downloader Downloader `toml:"downloader"`
	Sync       Sync       `toml:"sync"`
	// Database keeps the run history, defaults to a directory inside the destination
	Database db.Config `toml:"database"`
	Log      Log       `toml:"log"`
	Hooks    Hooks     `toml:"hooks"`
}

// Default returns the configuration used when no config file is given
func Default() *Config {
	config := Config{}
	config.applyDefaults(nil)
	return &config
}

// LoadConfig loads TOML configuration from a file path
func LoadConfig(path string) (*Config, error) {
	config := Config{}
	meta, err := toml.DecodeFile(path, &config)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config file")
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Errorf("unknown config keys: %v", undecoded)
	}

	config.applyDefaults(&meta)

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// ExecHook converts a hook configuration, nil when the hook isn't configured
func (h *Hook) ExecHook() *feed.ExecHook {
	if h == nil {
		return nil
	}

	return &feed.ExecHook{Command: h.Command, Timeout: h.Timeout}
}

func (c *Config) validate() error {
	var result *multierror.Error

	if c.Downloader.MaxConnections < 1 {
		result = multierror.Append(result, errors.New("max_connections must be at least 1"))
	}

	if c.Downloader.Retries < 0 {
		result = multierror.Append(result, errors.New("retries can't be negative"))
	}

	if c.Downloader.Timeout.Duration < 0 {
		result = multierror.Append(result, errors.New("timeout can't be negative"))
	}

	if c.Downloader.RetryBackoff.Duration < 0 {
		result = multierror.Append(result, errors.New("retry_backoff can't be negative"))
	}

	if c.Sync.MaxPages < 0 {
		result = multierror.Append(result, errors.New("max_pages can't be negative"))
	}

	if c.Log.MaxSize < 0 || c.Log.MaxBackups < 0 || c.Log.MaxAge < 0 {
		result = multierror.Append(result, errors.New("log rotation settings can't be negative"))
	}

	if hook := c.Hooks.OnEpisode; hook != nil && len(hook.Command) == 0 {
		result = multierror.Append(result, errors.New("on_episode hook command is required"))
	}

	return result.ErrorOrNil()
}

// applyDefaults fills missing settings, meta tells zero values set explicitly apart from missing ones.
func (c *Config) applyDefaults(meta *toml.MetaData) {
	defined := func(key ...string) bool {
		return meta != nil && meta.IsDefined(key...)
	}

	if c.Downloader.MaxConnections == 0 {
		c.Downloader.MaxConnections = model.DefaultMaxConnections
	}

	if c.Downloader.UserAgent == "" {
		c.Downloader.UserAgent = model.DefaultUserAgent
	}

	if c.Downloader.Timeout.Duration == 0 && !defined("downloader", "timeout") {
		c.Downloader.Timeout.Duration = model.DefaultDownloadTimeout
	}

	if !defined("downloader", "retries") {
		c.Downloader.Retries = model.DefaultRetries
	}

	if c.Downloader.RetryBackoff.Duration == 0 {
		c.Downloader.RetryBackoff.Duration = model.DefaultRetryBackoff
	}

	if !defined("sync", "max_pages") {
		c.Sync.MaxPages = model.DefaultMaxPages
	}

	if c.Log.Filename == "" {
		c.Log.Filename = model.DefaultLogFile
	}

	if c.Log.MaxSize > 0 {
		if c.Log.MaxAge == 0 {
			c.Log.MaxAge = DefaultLogMaxAge
		}
		if c.Log.MaxBackups == 0 {
			c.Log.MaxBackups = DefaultLogMaxBackups
		}
	}
}
