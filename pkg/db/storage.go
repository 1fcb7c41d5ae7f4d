package db

import (
	"context"

	"github.com/mxpv/podarchive/pkg/model"
)

type Version int

const (
	CurrentVersion = 1
)

// Storage keeps the history of feed synchronizations
type Storage interface {
	Close() error
	Version() (int, error)

	// AddRun will:
	// - Insert or update the latest run of the feed
	// - Append the run to the feed history (a run with the same timestamp is replaced)
	AddRun(ctx context.Context, run *model.FeedRun) error

	// GetFeed returns the latest run of a feed, model.ErrNotFound if the feed was never synchronized
	GetFeed(ctx context.Context, feedURL string) (*model.FeedRun, error)

	// WalkFeeds iterates over the latest runs of all known feeds
	WalkFeeds(ctx context.Context, cb func(run *model.FeedRun) error) error

	// WalkRuns iterates over the run history of a feed, oldest first
	WalkRuns(ctx context.Context, feedURL string, cb func(run *model.FeedRun) error) error

	// DeleteFeed deletes a feed and its run history
	DeleteFeed(ctx context.Context, feedURL string) error
}
