// Package content loads localized markdown content, builds immutable
// per-locale indexes, and answers read-only queries against them.
package content

import (
	"fmt"
	"html/template"
	"strings"
	"time"
)

// Item is a single localized content entry. Items are read once at index
// build time and treated as immutable afterwards.
type Item struct {
	Slug        string        `json:"slug"`
	Locale      string        `json:"locale"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Date        time.Time     `json:"date"`
	Author      string        `json:"author"`
	Category    string        `json:"category"`
	Tags        []string      `json:"tags"`
	Image       string        `json:"image,omitempty"`
	ReadingTime string        `json:"reading_time"`
	Body        string        `json:"-"`
	HTML        template.HTML `json:"html,omitempty"`
}

// frontMatter is the explicit schema parsed from the head of a content
// file. Unknown keys are ignored; missing optional fields get defaults.
type frontMatter struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description"`
	Date        string   `yaml:"date"`
	Author      string   `yaml:"author"`
	Category    string   `yaml:"category"`
	Tags        []string `yaml:"tags"`
	Image       string   `yaml:"image"`
}

// dateFormats are tried in order when parsing front-matter dates.
var dateFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(s string) (time.Time, error) {
	for _, format := range dateFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

const readingWordsPerMinute = 200

// readingTime derives a display string from the body length. Computed once
// at load time.
func readingTime(body string) string {
	words := len(strings.Fields(body))
	minutes := (words + readingWordsPerMinute - 1) / readingWordsPerMinute
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d min read", minutes)
}
