package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/pkg/errors"

	"github.com/mxpv/podarchive/pkg/model"
)

type historyStore interface {
	GetFeed(ctx context.Context, feedURL string) (*model.FeedRun, error)
	WalkFeeds(ctx context.Context, cb func(run *model.FeedRun) error) error
	WalkRuns(ctx context.Context, feedURL string, cb func(run *model.FeedRun) error) error
	DeleteFeed(ctx context.Context, feedURL string) error
}

// printHistory renders every feed known to the store, marking the ones listed in subscriptions.
func printHistory(ctx context.Context, store historyStore, subscriptions []string, out io.Writer) error {
	subscribed := make(map[string]bool, len(subscriptions))
	for _, url := range subscriptions {
		subscribed[url] = true
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Feed", "Title", "Last sync", "Runs", "Archived", "Subscribed"})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
	})

	err := store.WalkFeeds(ctx, func(last *model.FeedRun) error {
		var runs, archived int
		if err := store.WalkRuns(ctx, last.FeedURL, func(run *model.FeedRun) error {
			runs++
			archived += run.Committed
			return nil
		}); err != nil {
			return errors.Wrapf(err, "failed to read runs of %s", last.FeedURL)
		}

		mark := "no"
		if subscribed[last.FeedURL] {
			mark = "yes"
		}

		tw.AppendRow(table.Row{
			last.FeedURL,
			last.Title,
			humanize.Time(last.SyncedAt.Time()),
			strconv.Itoa(runs),
			strconv.Itoa(archived),
			mark,
		})
		return nil
	})
	if err != nil {
		return errors.Wrap(err, "failed to read run history")
	}

	_, err = fmt.Fprintln(out, tw.Render())
	return err
}

// forgetFeed deletes the run history of a feed, archived files are kept.
func forgetFeed(ctx context.Context, store historyStore, feedURL string) error {
	if _, err := store.GetFeed(ctx, feedURL); err != nil {
		if errors.Cause(err) == model.ErrNotFound {
			return errors.Errorf("feed %s has no history", feedURL)
		}
		return err
	}

	return errors.Wrapf(store.DeleteFeed(ctx, feedURL), "failed to delete history of %s", feedURL)
}
