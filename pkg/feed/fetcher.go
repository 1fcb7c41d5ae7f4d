package feed

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/atom"
	ext "github.com/mmcdole/gofeed/extensions"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mxpv/podarchive/pkg/model"
)

// Fetcher downloads and parses RSS, Atom and JSON feeds
type Fetcher struct {
	client    *http.Client
	userAgent string
}

func NewFetcher(client *http.Client, userAgent string) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}

	return &Fetcher{client: client, userAgent: userAgent}
}

// Fetch downloads the feed at feedURL and parses it.
// Any failure is returned as *model.FeedFetchError.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) (*model.FeedDocument, error) {
	log.Debugf("fetching feed %s", feedURL)

	data, err := f.get(ctx, feedURL)
	if err != nil {
		return nil, &model.FeedFetchError{URL: feedURL, Err: err}
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, &model.FeedFetchError{URL: feedURL, Err: err}
	}

	doc.URL = feedURL
	return doc, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("unexpected response status: %s", resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read response body")
	}

	return data, nil
}

// Parse converts a raw feed payload to a feed document.
func Parse(data []byte) (*model.FeedDocument, error) {
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse feed")
	}

	sum := sha256.Sum256(data)
	doc := &model.FeedDocument{
		Title:    strings.TrimSpace(parsed.Title),
		Link:     parsed.Link,
		Checksum: hex.EncodeToString(sum[:]),
		Fields:   feedFields(parsed),
	}

	if parsed.Image != nil {
		doc.Image = parsed.Image.URL
	}

	// The universal feed model drops link relations, so Atom documents are parsed once more
	if gofeed.DetectFeedType(bytes.NewReader(data)) == gofeed.FeedTypeAtom {
		atomFeed, err := (&atom.Parser{}).Parse(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse atom feed")
		}

		doc.Links = atomLinks(atomFeed.Links)
		for idx, item := range parsed.Items {
			record := newRecord(item)
			if idx < len(atomFeed.Entries) {
				record.Links = atomLinks(atomFeed.Entries[idx].Links)
			}
			doc.Entries = append(doc.Entries, record)
		}

		return doc, nil
	}

	if parsed.Link != "" {
		doc.Links = append(doc.Links, model.Link{Rel: model.RelAlternate, Href: parsed.Link, Type: "text/html"})
	}
	doc.Links = append(doc.Links, extensionLinks(parsed.Extensions)...)

	for _, item := range parsed.Items {
		record := newRecord(item)

		for _, enclosure := range item.Enclosures {
			record.Links = append(record.Links, model.Link{
				Rel:    model.RelEnclosure,
				Href:   enclosure.URL,
				Type:   enclosure.Type,
				Length: enclosure.Length,
			})
		}

		if item.Link != "" {
			record.Links = append(record.Links, model.Link{Rel: model.RelAlternate, Href: item.Link, Type: "text/html"})
		}

		record.Links = append(record.Links, extensionLinks(item.Extensions)...)
		doc.Items = append(doc.Items, record)
	}

	return doc, nil
}

func newRecord(item *gofeed.Item) *model.EpisodeRecord {
	return &model.EpisodeRecord{
		Title:     strings.TrimSpace(item.Title),
		Published: item.PublishedParsed,
		Link:      item.Link,
		Fields:    toFields(item),
	}
}

func atomLinks(links []*atom.Link) []model.Link {
	out := make([]model.Link, 0, len(links))
	for _, link := range links {
		rel := link.Rel
		if rel == "" {
			rel = model.RelAlternate
		}

		out = append(out, model.Link{
			Rel:    rel,
			Href:   link.Href,
			Type:   link.Type,
			Title:  link.Title,
			Length: link.Length,
		})
	}

	return out
}

// extensionLinks collects <atom:link> elements embedded into RSS documents.
// Namespaces are visited in sorted order to keep the result stable.
func extensionLinks(extensions ext.Extensions) []model.Link {
	namespaces := make([]string, 0, len(extensions))
	for namespace := range extensions {
		namespaces = append(namespaces, namespace)
	}
	sort.Strings(namespaces)

	var out []model.Link
	for _, namespace := range namespaces {
		for _, element := range extensions[namespace]["link"] {
			href := element.Attrs["href"]
			if href == "" {
				continue
			}

			rel := element.Attrs["rel"]
			if rel == "" {
				rel = model.RelAlternate
			}

			out = append(out, model.Link{
				Rel:    rel,
				Href:   href,
				Type:   element.Attrs["type"],
				Title:  element.Attrs["title"],
				Length: element.Attrs["length"],
			})
		}
	}

	return out
}

func feedFields(parsed *gofeed.Feed) map[string]interface{} {
	shallow := *parsed
	shallow.Items = nil

	fields := toFields(&shallow)
	delete(fields, "items")
	return fields
}

// toFields flattens a parsed object to an open mapping, so unknown fields pass through to metadata files.
func toFields(obj interface{}) map[string]interface{} {
	fields := map[string]interface{}{}

	data, err := json.Marshal(obj)
	if err != nil {
		log.WithError(err).Warn("failed to serialize feed fields")
		return fields
	}

	if err := json.Unmarshal(data, &fields); err != nil {
		log.WithError(err).Warn("failed to deserialize feed fields")
	}

	return fields
}
