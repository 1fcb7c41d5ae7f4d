package feed

import (
	"encoding/xml"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/mxpv/podarchive/pkg/model"
)

type opml struct {
	XMLName xml.Name `xml:"opml"`
	Version string   `xml:"version,attr"`
	Head    head
	Body    body
}

type head struct {
	XMLName xml.Name `xml:"head"`
	Title   string   `xml:"title"`
}

type body struct {
	XMLName  xml.Name  `xml:"body"`
	Outlines []outline `xml:"outline"`
}

type outline struct {
	Text     string    `xml:"text,attr"`
	Title    string    `xml:"title,attr"`
	Type     string    `xml:"type,attr"`
	XMLURL   string    `xml:"xmlUrl,attr"`
	Outlines []outline `xml:"outline"`
}

// ParseSubscriptions reads an OPML file and returns feed URLs of all rss outlines in document order.
// Duplicates are kept.
func ParseSubscriptions(path string) ([]string, error) {
	log.Infof("parsing OPML file: %s", path)

	file, err := os.Open(path)
	if err != nil {
		return nil, &model.SubscriptionParseError{Path: path, Err: err}
	}
	defer file.Close()

	urls, err := parseOPML(file)
	if err != nil {
		return nil, &model.SubscriptionParseError{Path: path, Err: err}
	}

	return urls, nil
}

func parseOPML(reader io.Reader) ([]string, error) {
	var doc opml
	if err := xml.NewDecoder(reader).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "failed to decode OPML")
	}

	var (
		urls []string
		walk func(list []outline)
	)

	walk = func(list []outline) {
		for _, item := range list {
			if item.Type == "rss" {
				if url := strings.TrimSpace(item.XMLURL); url != "" {
					urls = append(urls, url)
				}
			}

			// Folders keep feeds as nested outlines
			walk(item.Outlines)
		}
	}

	walk(doc.Body.Outlines)
	return urls, nil
}
