//go:generate mockgen -source=deps.go -destination=deps_mock_test.go -package=backup

package backup

import (
	"context"

	"github.com/mxpv/podarchive/pkg/download"
	"github.com/mxpv/podarchive/pkg/model"
)

type feedFetcher interface {
	Fetch(ctx context.Context, url string) (*model.FeedDocument, error)
}

type downloader interface {
	Enqueue(url, dir, name string)
	Pending() int
	Run(ctx context.Context) download.Results
}

type coverFinder interface {
	Find(ctx context.Context, link string) (string, error)
}

type syncer interface {
	Sync(ctx context.Context, destination, feedURL string) (*Result, error)
}

type historyStore interface {
	AddRun(ctx context.Context, run *model.FeedRun) error
	GetFeed(ctx context.Context, feedURL string) (*model.FeedRun, error)
}
