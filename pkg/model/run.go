package model

import (
	"crypto/sha256"
	"encoding/hex"
)

// FeedRun is the outcome of one feed synchronization, kept in the run history
type FeedRun struct {
	FeedURL      string    `json:"feed_url"`
	Title        string    `json:"title"`
	ArchiveDir   string    `json:"archive_dir"`
	Episodes     int       `json:"episodes"`
	New          int       `json:"new"`
	Committed    int       `json:"committed"`
	Unresolvable int       `json:"unresolvable"`
	Failed       int       `json:"failed"`
	SyncedAt     Timestamp `json:"synced_at"`
}

// FeedID returns a stable storage key for a feed URL.
func FeedID(feedURL string) string {
	sum := sha256.Sum256([]byte(feedURL))
	return hex.EncodeToString(sum[:8])
}
