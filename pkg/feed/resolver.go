package feed

import (
	"net/url"
	"path"
	"strings"

	"github.com/mxpv/podarchive/pkg/model"
	"github.com/mxpv/podarchive/pkg/sanitize"
)

const dateFormat = "2006-01-02"

// Resolve derives the download URL and the archive file names of an episode.
// It fails with *model.UnresolvableEpisode when the episode can't be archived.
func Resolve(record *model.EpisodeRecord) (*model.ResolvedEpisode, error) {
	if record.Published == nil {
		return nil, unresolvable(record, "missing publish date")
	}

	primary, ok := selectEnclosure(record.Links)
	if !ok {
		return nil, unresolvable(record, "no enclosure link")
	}

	if !isHTTP(primary.Href) {
		return nil, unresolvable(record, "enclosure is not an http link: "+primary.Href)
	}

	extension := extensionOf(primary.Href)
	if extension == "" {
		return nil, unresolvable(record, "can't derive file extension from "+primary.Href)
	}

	baseName := record.Published.UTC().Format(dateFormat) + " " + record.Title

	fileName := sanitize.FileName(baseName + "." + extension)
	if fileName == "" {
		return nil, unresolvable(record, "empty file name")
	}

	resolved := &model.ResolvedEpisode{
		Record:    record,
		URL:       primary.Href,
		Extension: extension,
		BaseName:  baseName,
		FileName:  fileName,
		MetaName:  sanitize.FileName(baseName + ".json"),
	}

	seen := map[string]bool{fileName: true, resolved.MetaName: true}
	for _, link := range record.Links {
		if link.Href == primary.Href || !qualifies(link) {
			continue
		}

		segment := lastSegment(link.Href)
		if segment == "" {
			continue
		}

		name := sanitize.FileName(baseName + " " + segment)
		if seen[name] {
			continue
		}
		seen[name] = true

		resolved.Attachments = append(resolved.Attachments, model.Attachment{URL: link.Href, FileName: name})
	}

	return resolved, nil
}

// selectEnclosure prefers the first link marked as enclosure,
// then the first http link that has a title or isn't a web page.
func selectEnclosure(links []model.Link) (model.Link, bool) {
	for _, link := range links {
		if link.Rel == model.RelEnclosure {
			return link, true
		}
	}

	for _, link := range links {
		if qualifies(link) {
			return link, true
		}
	}

	return model.Link{}, false
}

func qualifies(link model.Link) bool {
	if !isHTTP(link.Href) {
		return false
	}

	return link.Rel == model.RelEnclosure || link.Title != "" || link.Type != "text/html"
}

func isHTTP(href string) bool {
	return strings.HasPrefix(href, "http")
}

// lastSegment returns the last path segment of a link with query and fragment stripped.
func lastSegment(href string) string {
	if parsed, err := url.Parse(href); err == nil {
		// Split before unescaping, %2F belongs to the segment
		segment := path.Base(parsed.EscapedPath())
		if segment == "." || segment == "/" {
			return ""
		}
		if unescaped, err := url.PathUnescape(segment); err == nil {
			segment = unescaped
		}
		return segment
	}

	href, _, _ = strings.Cut(href, "?")
	href, _, _ = strings.Cut(href, "#")
	return href[strings.LastIndex(href, "/")+1:]
}

func extensionOf(href string) string {
	segment := lastSegment(href)

	idx := strings.LastIndex(segment, ".")
	if idx < 0 {
		return ""
	}

	return strings.TrimSpace(segment[idx+1:])
}

func unresolvable(record *model.EpisodeRecord, reason string) error {
	return &model.UnresolvableEpisode{Title: record.Title, Reason: reason}
}
