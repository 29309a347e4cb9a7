// Package feed serializes content listings into RSS 2.0 documents.
package feed

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"forgeline/internal/content"
	"forgeline/internal/observability"
)

// SiteMetadata describes the channel-level feed fields.
type SiteMetadata struct {
	Title       string
	Description string
	SiteURL     string
}

type rss struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel channel  `xml:"channel"`
}

type channel struct {
	Title         string `xml:"title"`
	Link          string `xml:"link"`
	Description   string `xml:"description"`
	Language      string `xml:"language"`
	LastBuildDate string `xml:"lastBuildDate"`
	Items         []item `xml:"item"`
}

type item struct {
	Title       string     `xml:"title"`
	Link        string     `xml:"link"`
	Description string     `xml:"description"`
	Author      string     `xml:"author,omitempty"`
	Categories  []string   `xml:"category"`
	GUID        guid       `xml:"guid"`
	PubDate     string     `xml:"pubDate"`
	Enclosure   *enclosure `xml:"enclosure,omitempty"`
}

type guid struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

type enclosure struct {
	URL    string `xml:"url,attr"`
	Length int64  `xml:"length,attr"`
	Type   string `xml:"type,attr"`
}

// Emit renders the locale's items, newest first, as an RSS 2.0 document.
// An empty item set produces a valid feed with zero entries.
func Emit(locale string, site SiteMetadata, items []*content.Item) ([]byte, error) {
	ch := channel{
		Title:         site.Title,
		Link:          fmt.Sprintf("%s/%s/blog", site.SiteURL, locale),
		Description:   site.Description,
		Language:      locale,
		LastBuildDate: time.Now().UTC().Format(time.RFC1123Z),
		Items:         make([]item, 0, len(items)),
	}

	for _, it := range items {
		link := fmt.Sprintf("%s/%s/blog/%s", site.SiteURL, locale, it.Slug)
		entry := item{
			Title:       it.Title,
			Link:        link,
			Description: it.Description,
			Author:      it.Author,
			Categories:  append([]string{it.Category}, it.Tags...),
			GUID:        guid{IsPermaLink: true, Value: link},
			PubDate:     it.Date.UTC().Format(time.RFC1123Z),
		}
		if it.Image != "" {
			entry.Enclosure = &enclosure{
				URL:  imageURL(site.SiteURL, it.Image),
				Type: imageMediaType(it.Image),
			}
		}
		ch.Items = append(ch.Items, entry)
	}

	doc := rss{Version: "2.0", Channel: ch}
	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}

	observability.FeedRendersTotal.WithLabelValues(locale).Inc()
	return append([]byte(xml.Header), out...), nil
}

func imageURL(siteURL, image string) string {
	if strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://") {
		return image
	}
	return siteURL + "/" + strings.TrimPrefix(image, "/")
}

func imageMediaType(image string) string {
	switch {
	case strings.HasSuffix(strings.ToLower(image), ".png"):
		return "image/png"
	case strings.HasSuffix(strings.ToLower(image), ".webp"):
		return "image/webp"
	case strings.HasSuffix(strings.ToLower(image), ".gif"):
		return "image/gif"
	default:
		return "image/jpeg"
	}
}
