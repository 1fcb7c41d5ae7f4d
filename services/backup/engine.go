package backup

import (
	"context"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mxpv/podarchive/pkg/feed"
	"github.com/mxpv/podarchive/pkg/fs"
	"github.com/mxpv/podarchive/pkg/model"
)

// Config holds per feed synchronization settings
type Config struct {
	// MaxPages caps pagination, 0 means unlimited
	MaxPages int
	// CoverFallback enables looking up a cover on the feed web page when the feed has no image
	CoverFallback bool
	// OnEpisode is invoked after each archived episode
	OnEpisode *feed.ExecHook
}

// Result is the outcome of one feed synchronization
type Result struct {
	FeedURL    string
	Title      string
	ArchiveDir string
	Pages      int
	// Episodes is the number of distinct episode records across all pages
	Episodes int
	// New is the number of episodes queued for download
	New int
	// Skipped is the number of episodes already archived
	Skipped   int
	Committed int
	// Unresolvable holds *model.UnresolvableEpisode errors
	Unresolvable []error
	// Failed holds download, commit and metadata errors
	Failed  []error
	Elapsed time.Duration
}

// Engine synchronizes one feed with its local archive.
// A single engine must not process the same archive concurrently.
type Engine struct {
	fetcher    feedFetcher
	downloader downloader
	cover      coverFinder
	config     Config
}

func NewEngine(fetcher feedFetcher, downloader downloader, cover coverFinder, config Config) *Engine {
	return &Engine{
		fetcher:    fetcher,
		downloader: downloader,
		cover:      cover,
		config:     config,
	}
}

type pending struct {
	episode *model.ResolvedEpisode
	primary bool
}

type transfer struct {
	url  string
	name string
}

// Sync archives new episodes of the feed at feedURL into destination.
// An error means the feed could not be processed at all, per episode failures are reported in Result.
func (e *Engine) Sync(ctx context.Context, destination, feedURL string) (*Result, error) {
	started := time.Now()

	first, err := e.fetcher.Fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	if first.URL == "" {
		first.URL = feedURL
	}

	if first.Title == "" {
		return nil, errors.Wrapf(model.ErrFeedMissingTitle, "feed %s", feedURL)
	}

	archive, err := fs.NewArchive(destination, first.Title)
	if err != nil {
		return nil, err
	}

	logger := log.WithFields(log.Fields{
		"feed_url":   feedURL,
		"feed_title": first.Title,
	})

	logger.Infof("-> backing up feed to %s", archive.Root())

	result := &Result{
		FeedURL:    feedURL,
		Title:      first.Title,
		ArchiveDir: archive.Root(),
	}

	var (
		records []*model.EpisodeRecord
		known   = map[string]bool{}
		last    = first
	)

	// The same episodes are usually served again on every page
	pages := feed.NewPaginator(first, e.fetcher.Fetch, e.config.MaxPages)
	for pages.Next(ctx) {
		last = pages.Page()
		for _, record := range last.Episodes() {
			key := record.Key()
			if known[key] {
				continue
			}
			known[key] = true
			records = append(records, record)
		}
	}

	if err := pages.Err(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		logger.WithError(err).Warnf("failed to fetch page %d, continuing with %d page(s)", pages.Pages()+1, pages.Pages())
	}

	result.Pages = pages.Pages()
	result.Episodes = len(records)

	logger.Debugf("found %d episode(s) on %d page(s)", len(records), result.Pages)

	queued, err := e.queue(archive, records, result, logger)
	if err != nil {
		return nil, err
	}

	if result.New == 0 {
		logger.Info("no new episodes")
		result.Elapsed = time.Since(started)
		return result, nil
	}

	logger.Infof("downloading %d file(s) of %d new episode(s)", e.downloader.Pending(), result.New)

	completed := e.download(ctx, result, logger)
	e.commit(ctx, archive, completed, queued, result, logger)

	if err := e.writeMetadata(ctx, archive, feedURL, last, result.Episodes, logger); err != nil {
		logger.WithError(err).Error("failed to write feed metadata")
		result.Failed = append(result.Failed, err)
	}

	e.download(ctx, result, logger)

	result.Elapsed = time.Since(started)
	return result, nil
}

// download runs the queued batch and returns the completed paths, failures are added to result.
func (e *Engine) download(ctx context.Context, result *Result, logger log.FieldLogger) []string {
	results := e.downloader.Run(ctx)
	if err := results.Err(); err != nil {
		logger.WithError(err).Errorf("%d download(s) failed", len(results.Errors))
	}

	for _, failure := range results.Errors {
		result.Failed = append(result.Failed, failure)
	}

	return results.Completed
}

// queue resolves episodes, skips archived ones and registers the rest for download.
// It returns the queued files keyed by file name.
// Nothing is registered with the downloader unless every episode is checked.
func (e *Engine) queue(archive *fs.Archive, records []*model.EpisodeRecord, result *Result, logger log.FieldLogger) (map[string]pending, error) {
	var (
		queued    = map[string]pending{}
		seen      = map[string]bool{}
		transfers []transfer
	)

	for _, record := range records {
		resolved, err := feed.Resolve(record)
		if err != nil {
			logger.WithField("episode", record.Title).WithError(err).Warn("skipping episode")
			result.Unresolvable = append(result.Unresolvable, err)
			continue
		}

		if seen[resolved.FileName] {
			logger.WithField("file", resolved.FileName).Debug("duplicate episode")
			continue
		}
		seen[resolved.FileName] = true

		exists, err := archive.Exists(resolved.FileName)
		if err != nil {
			logger.WithField("file", resolved.FileName).WithError(err).Error("failed to stat file")
			return nil, err
		}

		if exists {
			result.Skipped++
			continue
		}

		if result.New == 0 {
			if err := archive.Prepare(); err != nil {
				return nil, err
			}
		}

		if err := archive.Reserve(resolved.MetaName, record.Metadata()); err != nil {
			logger.WithField("file", resolved.FileName).WithError(err).Error("failed to write episode metadata")
			result.Failed = append(result.Failed, err)
			continue
		}

		logger.WithField("episode", record.Title).Debugf("adding %s to queue", resolved.URL)

		transfers = append(transfers, transfer{url: resolved.URL, name: resolved.FileName})
		queued[resolved.FileName] = pending{episode: resolved, primary: true}

		for _, attachment := range resolved.Attachments {
			transfers = append(transfers, transfer{url: attachment.URL, name: attachment.FileName})
			if _, ok := queued[attachment.FileName]; !ok {
				queued[attachment.FileName] = pending{episode: resolved}
			}
		}

		result.New++
	}

	for _, t := range transfers {
		e.downloader.Enqueue(t.url, archive.MetaDir(), t.name)
	}

	return queued, nil
}

// commit moves completed downloads of this feed to the archive root.
func (e *Engine) commit(ctx context.Context, archive *fs.Archive, completed []string, queued map[string]pending, result *Result, logger log.FieldLogger) {
	for _, path := range completed {
		if filepath.Dir(path) != archive.MetaDir() {
			continue
		}

		name := filepath.Base(path)
		item, ok := queued[name]
		if !ok {
			continue
		}

		if err := archive.Commit(name); err != nil {
			logger.WithField("file", name).WithError(err).Error("failed to move downloaded file")
			result.Failed = append(result.Failed, err)
			continue
		}

		if !item.primary {
			continue
		}

		result.Committed++
		logger.WithField("file", name).Info("episode archived")

		env := feed.EpisodeEnv(result.Title, result.FeedURL, item.episode.Record.Title, archive.RootPath(name))
		if err := e.config.OnEpisode.Invoke(ctx, env); err != nil {
			logger.WithField("file", name).WithError(err).Error("episode hook failed")
		}
	}
}

// writeMetadata queues the feed snapshot and the cover, and writes meta.json from the last fetched page.
func (e *Engine) writeMetadata(ctx context.Context, archive *fs.Archive, feedURL string, doc *model.FeedDocument, episodes int, logger log.FieldLogger) error {
	e.downloader.Enqueue(feedURL, archive.MetaDir(), model.FeedSnapshot)

	image := doc.Image
	if image == "" && e.config.CoverFallback && e.cover != nil && doc.Link != "" {
		found, err := e.cover.Find(ctx, doc.Link)
		if err != nil {
			logger.WithError(err).Warn("failed to find cover image")
		} else {
			image = found
		}
	}

	if image != "" {
		e.downloader.Enqueue(image, archive.MetaDir(), model.CoverImage)
	}

	return archive.WriteMetadata(doc.Metadata(episodes))
}
