package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"
)

// Relations used by feed and episode links
const (
	RelNext      = "next"
	RelEnclosure = "enclosure"
	RelAlternate = "alternate"
)

// Link is a single link element of a feed or an episode
type Link struct {
	Rel    string `json:"rel,omitempty"`
	Href   string `json:"href"`
	Type   string `json:"type,omitempty"`
	Title  string `json:"title,omitempty"`
	Length string `json:"length,omitempty"`
}

// FeedDocument is the parsed representation of a single feed fetch.
// Atom feeds fill Entries, RSS and JSON feeds fill Items.
type FeedDocument struct {
	URL      string
	Title    string
	Link     string
	Image    string
	Links    []Link
	Entries  []*EpisodeRecord
	Items    []*EpisodeRecord
	Checksum string
	// Fields holds all feed level values as parsed, including the ones not known to this package.
	Fields map[string]interface{}
}

// Episodes returns the episode list of the document, preferring entries over items.
func (d *FeedDocument) Episodes() []*EpisodeRecord {
	if len(d.Entries) > 0 {
		return d.Entries
	}

	return d.Items
}

// NextLinks returns hrefs of all feed level links with the "next" relation.
func (d *FeedDocument) NextLinks() []string {
	var out []string
	for _, link := range d.Links {
		if link.Rel == RelNext {
			out = append(out, link.Href)
		}
	}

	return out
}

// Fingerprint identifies the document content.
// Documents produced by the fetcher carry a checksum of the raw payload.
func (d *FeedDocument) Fingerprint() string {
	if d.Checksum != "" {
		return d.Checksum
	}

	data, _ := json.Marshal(struct {
		Title   string
		Links   []Link
		Entries []*EpisodeRecord
		Items   []*EpisodeRecord
		Fields  map[string]interface{}
	}{d.Title, d.Links, d.Entries, d.Items, d.Fields})

	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Metadata builds the meta.json payload: every feed level field plus the number of episodes.
func (d *FeedDocument) Metadata(episodeCount int) map[string]interface{} {
	out := make(map[string]interface{}, len(d.Fields)+4)
	for key, value := range d.Fields {
		out[key] = value
	}

	out["title"] = d.Title
	if d.Link != "" {
		out["link"] = d.Link
	}
	if len(d.Links) > 0 {
		out["links"] = d.Links
	}
	if d.Image != "" {
		out["image"] = d.Image
	} else {
		delete(out, "image")
	}

	out["episode_count"] = episodeCount
	return out
}

// EpisodeRecord holds the raw fields of one feed entry
type EpisodeRecord struct {
	Title     string                 `json:"title"`
	Published *time.Time             `json:"published_parsed,omitempty"`
	Link      string                 `json:"link,omitempty"`
	Links     []Link                 `json:"links,omitempty"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Key identifies the episode across pages of a feed.
// The guid is used when present, otherwise the title, publish date and links.
func (e *EpisodeRecord) Key() string {
	if guid, ok := e.Fields["guid"].(string); ok && guid != "" {
		return "guid\x00" + guid
	}

	parts := []string{e.Title, ""}
	if e.Published != nil {
		parts[1] = e.Published.UTC().Format(time.RFC3339)
	}
	for _, link := range e.Links {
		parts = append(parts, link.Href)
	}

	return strings.Join(parts, "\x00")
}

// Metadata returns the sidecar JSON payload for the episode.
func (e *EpisodeRecord) Metadata() map[string]interface{} {
	out := make(map[string]interface{}, len(e.Fields)+4)
	for key, value := range e.Fields {
		out[key] = value
	}

	out["title"] = e.Title
	if e.Link != "" {
		out["link"] = e.Link
	}
	if len(e.Links) > 0 {
		out["links"] = e.Links
	}
	if e.Published != nil {
		out["published_parsed"] = e.Published.UTC().Format(time.RFC3339)
	}

	return out
}
