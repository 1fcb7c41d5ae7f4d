package feed

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/mxpv/podarchive/pkg/model"
)

// FetchFunc loads a feed document by URL
type FetchFunc func(ctx context.Context, url string) (*model.FeedDocument, error)

// Paginator walks the pages of a feed starting from an already fetched first page.
//
// While the current page advertises a "next" link, the original feed URL is requested again.
// Iteration ends when a page has no "next" link, when a page is identical to the previous one,
// when the page cap is reached or when a fetch fails.
//
//	p := NewPaginator(first, fetcher.Fetch, 300)
//	for p.Next(ctx) {
//		handle(p.Page())
//	}
//	err := p.Err()
type Paginator struct {
	fetch    FetchFunc
	url      string
	maxPages int

	pending *model.FeedDocument
	current *model.FeedDocument
	count   int
	err     error
	done    bool
}

// NewPaginator creates a paginator, maxPages <= 0 means no limit.
func NewPaginator(first *model.FeedDocument, fetch FetchFunc, maxPages int) *Paginator {
	return &Paginator{
		fetch:    fetch,
		url:      first.URL,
		maxPages: maxPages,
		pending:  first,
	}
}

// Next advances to the next page.
func (p *Paginator) Next(ctx context.Context) bool {
	if p.done {
		return false
	}

	if p.pending != nil {
		p.current, p.pending = p.pending, nil
		p.count++
		return true
	}

	if len(p.current.NextLinks()) == 0 {
		return p.stop()
	}

	if p.maxPages > 0 && p.count >= p.maxPages {
		log.WithFields(log.Fields{
			"feed_url": p.url,
			"page":     p.count,
		}).Warn("page limit reached, stopping pagination")
		return p.stop()
	}

	if err := ctx.Err(); err != nil {
		p.err = err
		return p.stop()
	}

	log.WithFields(log.Fields{
		"feed_url": p.url,
		"page":     p.count,
	}).Debug("fetching next page")

	page, err := p.fetch(ctx, p.url)
	if err != nil {
		p.err = err
		return p.stop()
	}

	if page.Fingerprint() == p.current.Fingerprint() {
		log.WithField("feed_url", p.url).Debug("page content did not change, stopping pagination")
		return p.stop()
	}

	p.current = page
	p.count++
	return true
}

// Page returns the current page.
func (p *Paginator) Page() *model.FeedDocument {
	return p.current
}

// Pages returns the number of pages yielded so far.
func (p *Paginator) Pages() int {
	return p.count
}

// Err returns the error that stopped the iteration, if any.
func (p *Paginator) Err() error {
	return p.err
}

func (p *Paginator) stop() bool {
	p.done = true
	return false
}
