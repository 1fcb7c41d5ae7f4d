package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/mxpv/podarchive/pkg/config"
	"github.com/mxpv/podarchive/pkg/db"
	"github.com/mxpv/podarchive/pkg/download"
	"github.com/mxpv/podarchive/pkg/feed"
	"github.com/mxpv/podarchive/pkg/model"
	"github.com/mxpv/podarchive/services/backup"
)

type Opts struct {
	ConfigPath string `long:"config" short:"c" env:"PODARCHIVE_CONFIG_PATH" description:"Path to TOML configuration file"`
	Debug      bool   `long:"debug" description:"Enable debug logging"`
	Schedule   string `long:"schedule" description:"Keep running and repeat the backup on a cron schedule, e.g. \"@every 6h\""`
	NoProgress bool   `long:"no-progress" description:"Don't display the progress bar"`
	History    bool   `long:"history" description:"Print the run history of the destination and exit"`
	Forget     string `long:"forget" value-name:"FEED_URL" description:"Delete the run history of a feed and exit"`

	Args struct {
		OPML        string `positional-arg-name:"OPML" description:"Subscription list"`
		Destination string `positional-arg-name:"DESTINATION" description:"Archive directory (default: current directory)"`
	} `positional-args:"yes" required:"1"`
}

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const fetchTimeout = time.Minute

func main() {
	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: time.RFC3339,
		FullTimestamp:   true,
	})

	// Parse args
	opts := Opts{}
	if _, err := flags.Parse(&opts); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		log.WithError(err).Fatal("failed to parse command line arguments")
	}

	if opts.Debug {
		log.SetLevel(log.DebugLevel)
	}

	if err := run(opts); err != nil {
		log.WithError(err).Fatal("backup failed")
	}
}

func run(opts Opts) error {
	cfg := config.Default()
	if opts.ConfigPath != "" {
		log.Debugf("loading configuration %q", opts.ConfigPath)

		var err error
		cfg, err = config.LoadConfig(opts.ConfigPath)
		if err != nil {
			return errors.Wrap(err, "failed to load configuration file")
		}
	}

	closeLog, err := setupLogging(&cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	log.WithFields(log.Fields{
		"version": version,
		"commit":  commit,
		"date":    date,
	}).Info("running podarchive")

	destination := opts.Args.Destination
	if destination == "" {
		destination = "."
	}

	destination, err = filepath.Abs(destination)
	if err != nil {
		return errors.Wrap(err, "invalid destination")
	}

	stateDir := filepath.Join(destination, model.StateDir)
	if err := os.MkdirAll(stateDir, 0755); err != nil {
		return errors.Wrap(err, "failed to create state directory")
	}

	// Only one process may write to a destination at a time
	lock := flock.New(filepath.Join(stateDir, "lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return errors.Wrap(err, "failed to acquire destination lock")
	}
	if !locked {
		return errors.Errorf("destination %s is used by another podarchive process", destination)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			log.WithError(err).Warn("failed to release destination lock")
		}
	}()

	if cfg.Database.Dir == "" {
		cfg.Database.Dir = filepath.Join(stateDir, "db")
	}

	database, err := db.NewBadger(&cfg.Database)
	if err != nil {
		return errors.Wrap(err, "failed to open database")
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.WithError(err).Error("failed to close database")
		}
	}()

	switch {
	case opts.History:
		urls, err := feed.ParseSubscriptions(opts.Args.OPML)
		if err != nil {
			return err
		}
		return printHistory(context.Background(), database, urls, os.Stdout)
	case opts.Forget != "":
		if err := forgetFeed(context.Background(), database, opts.Forget); err != nil {
			return err
		}
		log.Infof("deleted run history of %s", opts.Forget)
		return nil
	}

	var (
		fetchClient = &http.Client{Timeout: fetchTimeout}
		fileClient  = &http.Client{}
	)

	downloader := download.New(fileClient, download.Config{
		MaxConnections: cfg.Downloader.MaxConnections,
		UserAgent:      cfg.Downloader.UserAgent,
		Timeout:        cfg.Downloader.Timeout.Duration,
		Retries:        cfg.Downloader.Retries,
		RetryBackoff:   cfg.Downloader.RetryBackoff.Duration,
	})

	engine := backup.NewEngine(
		feed.NewFetcher(fetchClient, cfg.Downloader.UserAgent),
		downloader,
		feed.NewCoverFinder(fetchClient, cfg.Downloader.UserAgent),
		backup.Config{
			MaxPages:      cfg.Sync.MaxPages,
			CoverFallback: cfg.Sync.CoverFallback,
			OnEpisode:     cfg.Hooks.OnEpisode.ExecHook(),
		},
	)

	runner := backup.NewRunner(engine, database, newProgress(os.Stderr, !opts.NoProgress))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	group, ctx := errgroup.WithContext(ctx)

	backupOnce := func() error {
		_, err := runner.Run(ctx, opts.Args.OPML, destination)
		return err
	}

	group.Go(func() error {
		defer cancel()

		if err := backupOnce(); err != nil {
			return err
		}

		if opts.Schedule == "" {
			return nil
		}

		c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.PrintfLogger(log.StandardLogger()))))
		if _, err := c.AddFunc(opts.Schedule, func() {
			if err := backupOnce(); err != nil && err != context.Canceled {
				log.WithError(err).Error("scheduled backup failed")
			}
		}); err != nil {
			return errors.Wrapf(err, "invalid schedule %q", opts.Schedule)
		}

		log.Infof("next backups are scheduled with %q", opts.Schedule)
		c.Start()

		<-ctx.Done()

		log.Info("shutting down cron")
		<-c.Stop().Done()
		return nil
	})

	group.Go(func() error {
		select {
		case <-ctx.Done():
			return nil
		case <-stop:
			log.Info("interrupted, stopping")
			cancel()
			return nil
		}
	})

	if err := group.Wait(); err != nil && err != context.Canceled {
		return err
	}

	log.Info("gracefully stopped")
	return nil
}
