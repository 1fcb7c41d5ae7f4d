package model

import (
	"time"
)

const (
	DefaultMaxPages        = 300
	DefaultMaxConnections  = 5
	DefaultDownloadTimeout = 30 * time.Minute
	DefaultRetries         = 2
	DefaultRetryBackoff    = time.Second
	DefaultHookTimeout     = 60 * time.Second
	DefaultLogFile         = "backup.log"
	DefaultUserAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:108.0) Gecko/20100101 Firefox/108.0"
)

// Archive layout
const (
	MetaDir      = "meta"
	FeedSnapshot = "podcast.rss"
	CoverImage   = "cover.jpg"
	FeedMeta     = "meta.json"
	StateDir     = ".podarchive"
)
