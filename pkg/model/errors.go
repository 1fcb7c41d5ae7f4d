package model

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyExists    = errors.New("object already exists")
	ErrNotFound         = errors.New("not found")
	ErrFeedMissingTitle = errors.New("feed has no title")
)

// SubscriptionParseError is returned when the subscription list can't be read
type SubscriptionParseError struct {
	Path string
	Err  error
}

func (e *SubscriptionParseError) Error() string {
	return fmt.Sprintf("failed to parse subscriptions %q: %v", e.Path, e.Err)
}

func (e *SubscriptionParseError) Cause() error { return e.Err }
func (e *SubscriptionParseError) Unwrap() error { return e.Err }

// FeedFetchError is returned when a feed can't be downloaded or parsed
type FeedFetchError struct {
	URL string
	Err error
}

func (e *FeedFetchError) Error() string {
	return fmt.Sprintf("failed to fetch feed %s: %v", e.URL, e.Err)
}

func (e *FeedFetchError) Cause() error { return e.Err }
func (e *FeedFetchError) Unwrap() error { return e.Err }

// UnresolvableEpisode means no download URL or file name can be derived for an episode
type UnresolvableEpisode struct {
	Title  string
	Reason string
}

func (e *UnresolvableEpisode) Error() string {
	return fmt.Sprintf("unresolvable episode %q: %s", e.Title, e.Reason)
}

// DownloadFailure is a failed item of a download batch
type DownloadFailure struct {
	URL  string
	Path string
	Err  error
}

func (e *DownloadFailure) Error() string {
	return fmt.Sprintf("failed to download %s to %s: %v", e.URL, e.Path, e.Err)
}

func (e *DownloadFailure) Cause() error { return e.Err }
func (e *DownloadFailure) Unwrap() error { return e.Err }

// CommitMoveFailure is returned when a downloaded file can't be moved to the archive root.
// The file stays in the staging directory.
type CommitMoveFailure struct {
	Source      string
	Destination string
	Err         error
}

func (e *CommitMoveFailure) Error() string {
	return fmt.Sprintf("failed to move %s to %s: %v", e.Source, e.Destination, e.Err)
}

func (e *CommitMoveFailure) Cause() error { return e.Err }
func (e *CommitMoveFailure) Unwrap() error { return e.Err }
