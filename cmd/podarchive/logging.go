package main

import (
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/mxpv/podarchive/pkg/config"
)

// setupLogging mirrors the log to a file.
// Without rotation settings the file is truncated on every start.
func setupLogging(cfg *config.Log) (func(), error) {
	var out io.WriteCloser

	if cfg.MaxSize > 0 {
		out = &lumberjack.Logger{
			Filename:   cfg.Filename,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
	} else {
		file, err := os.Create(cfg.Filename)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to create log file %s", cfg.Filename)
		}
		out = file
	}

	log.SetOutput(io.MultiWriter(os.Stdout, out))

	return func() {
		log.SetOutput(os.Stdout)
		_ = out.Close()
	}, nil
}
