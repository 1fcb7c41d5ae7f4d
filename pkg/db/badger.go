package db

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/dgraph-io/badger"
	"github.com/dgraph-io/badger/options"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mxpv/podarchive/pkg/model"
)

const (
	versionPath = "podarchive/version"
	feedPrefix  = "feed/"
	feedPath    = "feed/%s"
	runPrefix   = "run/%s/"
	runPath     = "run/%s/%020d" // FeedID + sync time, zero padded to keep runs ordered
)

// BadgerConfig represents BadgerDB configuration parameters
type BadgerConfig struct {
	Truncate bool `toml:"truncate"`
	FileIO   bool `toml:"file_io"`
}

type Badger struct {
	db *badger.DB
}

var _ Storage = (*Badger)(nil)

func NewBadger(config *Config) (*Badger, error) {
	var (
		dir = config.Dir
	)

	log.Debugf("opening database %q", dir)

	// Make sure database directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "could not mkdir database dir")
	}

	opts := badger.DefaultOptions(dir).
		WithLogger(log.StandardLogger()).
		WithTruncate(true)

	if config.Badger != nil {
		opts.Truncate = config.Badger.Truncate
		if config.Badger.FileIO {
			opts.ValueLogLoadingMode = options.FileIO
		}
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	storage := &Badger{db: db}

	if err := db.Update(func(txn *badger.Txn) error {
		if err := storage.setObj(txn, []byte(versionPath), CurrentVersion, false); err != nil && err != model.ErrAlreadyExists {
			return err
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to read database version")
	}

	version, err := storage.Version()
	if err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "failed to read database version")
	}

	if version != CurrentVersion {
		_ = db.Close()
		return nil, errors.Errorf("unsupported database version %d, expected %d", version, CurrentVersion)
	}

	return storage, nil
}

func (b *Badger) Close() error {
	log.Debug("closing database")
	return b.db.Close()
}

func (b *Badger) Version() (int, error) {
	var (
		version = -1
	)

	err := b.db.View(func(txn *badger.Txn) error {
		return b.getObj(txn, []byte(versionPath), &version)
	})

	return version, err
}

func (b *Badger) AddRun(_ context.Context, run *model.FeedRun) error {
	feedID := model.FeedID(run.FeedURL)

	return b.db.Update(func(txn *badger.Txn) error {
		if err := b.setObj(txn, b.getKey(feedPath, feedID), run, true); err != nil {
			return errors.Wrapf(err, "failed to save feed %q", run.FeedURL)
		}

		runKey := b.getKey(runPath, feedID, run.SyncedAt.Time().Unix())
		if err := b.setObj(txn, runKey, run, true); err != nil {
			return errors.Wrapf(err, "failed to save run of feed %q", run.FeedURL)
		}

		return nil
	})
}

func (b *Badger) GetFeed(_ context.Context, feedURL string) (*model.FeedRun, error) {
	var (
		run     model.FeedRun
		feedKey = b.getKey(feedPath, model.FeedID(feedURL))
	)

	if err := b.db.View(func(txn *badger.Txn) error {
		return b.getObj(txn, feedKey, &run)
	}); err != nil {
		return nil, err
	}

	return &run, nil
}

func (b *Badger) WalkFeeds(_ context.Context, cb func(run *model.FeedRun) error) error {
	return b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = b.getKey(feedPrefix)
		opts.PrefetchValues = true
		return b.iterator(txn, opts, func(item *badger.Item) error {
			run := &model.FeedRun{}
			if err := b.unmarshalObj(item, run); err != nil {
				return err
			}

			return cb(run)
		})
	})
}

func (b *Badger) WalkRuns(_ context.Context, feedURL string, cb func(run *model.FeedRun) error) error {
	return b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = b.getKey(runPrefix, model.FeedID(feedURL))
		opts.PrefetchValues = true
		return b.iterator(txn, opts, func(item *badger.Item) error {
			run := &model.FeedRun{}
			if err := b.unmarshalObj(item, run); err != nil {
				return err
			}

			return cb(run)
		})
	})
}

func (b *Badger) DeleteFeed(_ context.Context, feedURL string) error {
	feedID := model.FeedID(feedURL)

	return b.db.Update(func(txn *badger.Txn) error {
		// Feed
		feedKey := b.getKey(feedPath, feedID)
		if err := txn.Delete(feedKey); err != nil {
			return errors.Wrapf(err, "failed to delete feed %q", feedURL)
		}

		// Runs
		opts := badger.DefaultIteratorOptions
		opts.Prefix = b.getKey(runPrefix, feedID)
		opts.PrefetchValues = false
		if err := b.iterator(txn, opts, func(item *badger.Item) error {
			return txn.Delete(item.KeyCopy(nil))
		}); err != nil {
			return errors.Wrapf(err, "failed to iterate runs of feed %q", feedURL)
		}

		return nil
	})
}

func (b *Badger) iterator(txn *badger.Txn, opts badger.IteratorOptions, callback func(item *badger.Item) error) error {
	iter := txn.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		item := iter.Item()

		if err := callback(item); err != nil {
			return err
		}
	}

	return nil
}

func (b *Badger) getKey(format string, a ...interface{}) []byte {
	resourcePath := fmt.Sprintf(format, a...)
	fullPath := fmt.Sprintf("podarchive/v%d/%s", CurrentVersion, resourcePath)

	return []byte(fullPath)
}

func (b *Badger) setObj(txn *badger.Txn, key []byte, obj interface{}, overwrite bool) error {
	if !overwrite {
		// Overwrites are not allowed, make sure there is no object with the given key
		_, err := txn.Get(key)
		if err == nil {
			return model.ErrAlreadyExists
		} else if err != badger.ErrKeyNotFound {
			return errors.Wrap(err, "failed to check whether key exists")
		}
	}

	data, err := b.marshalObj(obj)
	if err != nil {
		return errors.Wrapf(err, "failed to serialize object for key %q", key)
	}

	return txn.Set(key, data)
}

func (b *Badger) getObj(txn *badger.Txn, key []byte, out interface{}) error {
	item, err := txn.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return model.ErrNotFound
		}

		return err
	}

	return b.unmarshalObj(item, out)
}

func (b *Badger) marshalObj(obj interface{}) ([]byte, error) {
	return json.Marshal(obj)
}

func (b *Badger) unmarshalObj(item *badger.Item, out interface{}) error {
	return item.Value(func(val []byte) error {
		return json.Unmarshal(val, out)
	})
}
