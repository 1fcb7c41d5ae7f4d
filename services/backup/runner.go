package backup

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mxpv/podarchive/pkg/feed"
	"github.com/mxpv/podarchive/pkg/model"
)

// Progress displays how many feeds of a run are processed
type Progress interface {
	Start(total int)
	Describe(feedURL string)
	Increment()
	Finish()
}

type nopProgress struct{}

func (nopProgress) Start(int) {}
func (nopProgress) Describe(string) {}
func (nopProgress) Increment() {}
func (nopProgress) Finish() {}

// Summary aggregates the results of all feeds of a run
type Summary struct {
	Feeds        int
	FailedFeeds  int
	New          int
	Skipped      int
	Committed    int
	Unresolvable int
	Failed       int
	Elapsed      time.Duration
}

// Runner archives every feed of a subscription list.
// Feeds are processed one after another, a failing feed never stops the run.
type Runner struct {
	engine   syncer
	history  historyStore
	progress Progress
}

// NewRunner creates a runner, history and progress are optional.
func NewRunner(engine syncer, history historyStore, progress Progress) *Runner {
	if progress == nil {
		progress = nopProgress{}
	}

	return &Runner{
		engine:   engine,
		history:  history,
		progress: progress,
	}
}

// Run archives all feeds listed in the OPML file at opmlPath into destination.
// It fails only if the subscription list can't be read or the context is cancelled.
func (r *Runner) Run(ctx context.Context, opmlPath, destination string) (*Summary, error) {
	started := time.Now()

	urls, err := feed.ParseSubscriptions(opmlPath)
	if err != nil {
		return nil, err
	}

	log.Infof("found %d feed(s) in %s", len(urls), opmlPath)

	summary := &Summary{}

	r.progress.Start(len(urls))
	defer r.progress.Finish()

	for _, url := range urls {
		if err := ctx.Err(); err != nil {
			summary.Elapsed = time.Since(started)
			return summary, err
		}

		r.progress.Describe(url)
		r.runFeed(ctx, destination, url, summary)
		r.progress.Increment()
	}

	summary.Elapsed = time.Since(started)

	log.WithFields(log.Fields{
		"feeds":        summary.Feeds,
		"failed_feeds": summary.FailedFeeds,
		"new":          summary.New,
		"committed":    summary.Committed,
		"unresolvable": summary.Unresolvable,
		"failed":       summary.Failed,
	}).Infof("backup finished in %s", summary.Elapsed.Round(time.Millisecond))

	return summary, nil
}

func (r *Runner) runFeed(ctx context.Context, destination, url string, summary *Summary) {
	summary.Feeds++

	result, err := r.engine.Sync(ctx, destination, url)
	if err != nil {
		summary.FailedFeeds++
		log.WithField("feed_url", url).WithError(err).Error("failed to backup feed")
		return
	}

	summary.New += result.New
	summary.Skipped += result.Skipped
	summary.Committed += result.Committed
	summary.Unresolvable += len(result.Unresolvable)
	summary.Failed += len(result.Failed)

	log.WithFields(log.Fields{
		"feed_url":     url,
		"feed_title":   result.Title,
		"new":          result.New,
		"skipped":      result.Skipped,
		"unresolvable": len(result.Unresolvable),
		"failed":       len(result.Failed),
		"committed":    result.Committed,
	}).Infof("<- feed done in %s", result.Elapsed.Round(time.Millisecond))

	if err := r.record(ctx, result); err != nil {
		log.WithField("feed_url", url).WithError(err).Warn("failed to update run history")
	}
}

// record saves the run to history and warns when the feed title has changed,
// as a new title means a new archive directory.
func (r *Runner) record(ctx context.Context, result *Result) error {
	if r.history == nil {
		return nil
	}

	previous, err := r.history.GetFeed(ctx, result.FeedURL)
	if err != nil && errors.Cause(err) != model.ErrNotFound {
		return errors.Wrap(err, "failed to query run history")
	}

	if previous != nil && previous.Title != result.Title {
		log.WithFields(log.Fields{
			"feed_url":   result.FeedURL,
			"feed_title": result.Title,
		}).Warnf("feed title changed from %q, episodes archived in %s are now archived in %s",
			previous.Title, previous.ArchiveDir, result.ArchiveDir)
	}

	run := &model.FeedRun{
		FeedURL:      result.FeedURL,
		Title:        result.Title,
		ArchiveDir:   result.ArchiveDir,
		Episodes:     result.Episodes,
		New:          result.New,
		Committed:    result.Committed,
		Unresolvable: len(result.Unresolvable),
		Failed:       len(result.Failed),
		SyncedAt:     model.Timestamp(time.Now().UTC()),
	}

	return r.history.AddRun(ctx, run)
}
