package feed

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
)

var (
	coverItemProps      = []string{"image", "thumbnailUrl"}
	coverMetaProperties = []string{"og:image", "twitter:image"}
	coverRels           = []string{"apple-touch-icon", "icon"}
)

// CoverFinder looks up a cover image on the web page of a feed.
// It's used when the feed itself doesn't carry an image.
type CoverFinder struct {
	client    *http.Client
	userAgent string
}

func NewCoverFinder(client *http.Client, userAgent string) *CoverFinder {
	if client == nil {
		client = http.DefaultClient
	}

	return &CoverFinder{client: client, userAgent: userAgent}
}

// Find returns the absolute URL of the cover image advertised by the page at link.
func (c *CoverFinder) Find(ctx context.Context, link string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "failed to get page")
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return "", errors.Errorf("page status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse page")
	}

	var icon string

	doc.Find("head meta").EachWithBreak(func(i int, s *goquery.Selection) bool {
		content, ok := s.Attr("content")
		if !ok || content == "" {
			return true
		}

		if prop, ok := s.Attr("itemprop"); ok && contains(coverItemProps, prop) {
			icon = content
			return false
		}
		if prop, ok := s.Attr("property"); ok && contains(coverMetaProperties, prop) {
			icon = content
			return false
		}
		if name, ok := s.Attr("name"); ok && contains(coverMetaProperties, name) {
			icon = content
			return false
		}
		return true
	})

	if icon == "" {
		doc.Find("head link").EachWithBreak(func(i int, s *goquery.Selection) bool {
			if rel, ok := s.Attr("rel"); ok && contains(coverRels, strings.ToLower(rel)) {
				if href, ok := s.Attr("href"); ok && href != "" {
					icon = href
					return false
				}
			}
			return true
		})
	}

	if icon == "" {
		return "", errors.New("cover not found")
	}

	base, err := url.Parse(link)
	if err != nil {
		return "", errors.Wrap(err, "failed to parse page url")
	}

	ref, err := url.Parse(icon)
	if err != nil {
		return "", errors.Wrapf(err, "invalid cover url %q", icon)
	}

	return base.ResolveReference(ref).String(), nil
}

func contains(s []string, str string) bool {
	for _, v := range s {
		if v == str {
			return true
		}
	}
	return false
}
