package download

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/mxpv/podarchive/pkg/model"
)

const partSuffix = ".part"

var errShortBody = errors.New("response body is shorter than announced")

// Config controls the download batch behavior
type Config struct {
	// MaxConnections is the number of files downloaded concurrently
	MaxConnections int
	UserAgent      string
	// Timeout is the time limit of a single file download, including retries
	Timeout time.Duration
	// Retries is the number of extra attempts after a transient failure
	Retries      int
	RetryBackoff time.Duration
}

// Results is the outcome of a download batch
type Results struct {
	// Completed holds the full paths of successfully downloaded files
	Completed []string
	Errors    []*model.DownloadFailure
}

// Err combines all download failures into one error, nil if there's none.
func (r Results) Err() error {
	var result *multierror.Error
	for _, failure := range r.Errors {
		result = multierror.Append(result, failure)
	}
	return result.ErrorOrNil()
}

type item struct {
	url  string
	path string
}

// Downloader is a batch download queue.
// Files are registered with Enqueue and fetched together by Run.
type Downloader struct {
	client *http.Client
	config Config

	lock  sync.Mutex
	queue []*item
	index map[string]int
}

func New(client *http.Client, config Config) *Downloader {
	if client == nil {
		client = http.DefaultClient
	}
	if config.MaxConnections <= 0 {
		config.MaxConnections = model.DefaultMaxConnections
	}
	if config.RetryBackoff <= 0 {
		config.RetryBackoff = model.DefaultRetryBackoff
	}

	return &Downloader{
		client: client,
		config: config,
		index:  map[string]int{},
	}
}

// Enqueue registers url to be saved as dir/name on the next Run.
// Registering the same destination twice keeps the last source URL.
func (d *Downloader) Enqueue(url, dir, name string) {
	d.lock.Lock()
	defer d.lock.Unlock()

	path := filepath.Join(dir, name)
	if idx, ok := d.index[path]; ok {
		d.queue[idx].url = url
		return
	}

	d.index[path] = len(d.queue)
	d.queue = append(d.queue, &item{url: url, path: path})
}

// Pending returns the number of queued files.
func (d *Downloader) Pending() int {
	d.lock.Lock()
	defer d.lock.Unlock()

	return len(d.queue)
}

// Run downloads all queued files and empties the queue.
// It blocks until the whole batch completes, failures of individual files are reported in Results.
func (d *Downloader) Run(ctx context.Context) Results {
	d.lock.Lock()
	batch := d.queue
	d.queue = nil
	d.index = map[string]int{}
	d.lock.Unlock()

	var (
		errs    = make([]error, len(batch))
		results Results
		group   errgroup.Group
	)

	group.SetLimit(d.config.MaxConnections)

	for idx, it := range batch {
		idx, it := idx, it
		group.Go(func() error {
			errs[idx] = d.download(ctx, it)
			return nil
		})
	}

	_ = group.Wait()

	for idx, it := range batch {
		if errs[idx] != nil {
			log.WithFields(log.Fields{
				"url":  it.url,
				"file": it.path,
			}).WithError(errs[idx]).Debug("download failed")

			results.Errors = append(results.Errors, &model.DownloadFailure{URL: it.url, Path: it.path, Err: errs[idx]})
			continue
		}

		results.Completed = append(results.Completed, it.path)
	}

	return results
}

func (d *Downloader) download(ctx context.Context, it *item) error {
	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	if err := os.MkdirAll(filepath.Dir(it.path), 0755); err != nil {
		return errors.Wrap(err, "failed to create directory")
	}

	started := time.Now()

	var written int64
	err := retry(ctx, d.config.Retries, d.config.RetryBackoff, func(ctx context.Context) error {
		var err error
		written, err = d.fetch(ctx, it)
		if err != nil && retryable(err) {
			log.WithField("url", it.url).WithError(err).Debug("download attempt failed")
		}
		return err
	})
	if err != nil {
		_ = os.Remove(it.path + partSuffix)
		return err
	}

	if err := os.Rename(it.path+partSuffix, it.path); err != nil {
		return errors.Wrap(err, "failed to rename downloaded file")
	}

	log.WithFields(log.Fields{
		"url":  it.url,
		"file": filepath.Base(it.path),
	}).Debugf("downloaded %s in %s", humanize.Bytes(uint64(written)), time.Since(started).Round(time.Millisecond))

	return nil
}

func (d *Downloader) fetch(ctx context.Context, it *item) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, it.url, nil)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create request")
	}

	if d.config.UserAgent != "" {
		req.Header.Set("User-Agent", d.config.UserAgent)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &statusError{Code: resp.StatusCode, Status: resp.Status}
	}

	file, err := os.Create(it.path + partSuffix)
	if err != nil {
		return 0, errors.Wrap(err, "failed to create file")
	}

	written, err := io.Copy(file, resp.Body)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return written, errors.Wrap(err, "failed to write file")
	}

	if resp.ContentLength > 0 && written < resp.ContentLength {
		return written, errors.Wrapf(errShortBody, "got %d of %d bytes", written, resp.ContentLength)
	}

	return written, nil
}
