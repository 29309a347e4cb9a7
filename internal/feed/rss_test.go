package feed

import (
	"encoding/xml"
	"strings"
	"testing"
	"time"

	"forgeline/internal/content"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var site = SiteMetadata{
	Title:       "Forgeline Metal Works",
	Description: "Custom metal fabrication",
	SiteURL:     "https://forgeline.example",
}

type parsedFeed struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel struct {
		Title         string `xml:"title"`
		Link          string `xml:"link"`
		Description   string `xml:"description"`
		Language      string `xml:"language"`
		LastBuildDate string `xml:"lastBuildDate"`
		Items         []struct {
			Title      string   `xml:"title"`
			Link       string   `xml:"link"`
			Author     string   `xml:"author"`
			Categories []string `xml:"category"`
			PubDate    string   `xml:"pubDate"`
			GUID       struct {
				IsPermaLink string `xml:"isPermaLink,attr"`
				Value       string `xml:",chardata"`
			} `xml:"guid"`
			Enclosure *struct {
				URL  string `xml:"url,attr"`
				Type string `xml:"type,attr"`
			} `xml:"enclosure"`
		} `xml:"item"`
	} `xml:"channel"`
}

func emitAndParse(t *testing.T, locale string, items []*content.Item) parsedFeed {
	t.Helper()
	raw, err := Emit(locale, site, items)
	require.NoError(t, err)

	var parsed parsedFeed
	require.NoError(t, xml.Unmarshal(raw, &parsed))
	return parsed
}

func TestEmitChannelFields(t *testing.T) {
	parsed := emitAndParse(t, "en", nil)

	assert.Equal(t, "2.0", parsed.Version)
	assert.Equal(t, "Forgeline Metal Works", parsed.Channel.Title)
	assert.Equal(t, "https://forgeline.example/en/blog", parsed.Channel.Link)
	assert.Equal(t, "en", parsed.Channel.Language)

	_, err := time.Parse(time.RFC1123Z, parsed.Channel.LastBuildDate)
	assert.NoError(t, err)
}

func TestEmitEmptyFeedIsValid(t *testing.T) {
	raw, err := Emit("es", site, nil)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(raw), xml.Header))
	parsed := emitAndParse(t, "es", nil)
	assert.Empty(t, parsed.Channel.Items)
	assert.Equal(t, "es", parsed.Channel.Language)
}

func TestEmitItems(t *testing.T) {
	pub := time.Date(2026, time.February, 10, 9, 0, 0, 0, time.UTC)
	items := []*content.Item{
		{
			Slug:        "plasma-cutting-thick-plate",
			Locale:      "en",
			Title:       "Plasma Cutting Thick Plate",
			Description: "Settings for 25mm mild steel",
			Date:        pub,
			Author:      "Shop Floor",
			Category:    "fabrication",
			Tags:        []string{"plasma-cutting", "steel"},
		},
	}

	parsed := emitAndParse(t, "en", items)
	require.Len(t, parsed.Channel.Items, 1)
	got := parsed.Channel.Items[0]

	assert.Equal(t, "Plasma Cutting Thick Plate", got.Title)
	assert.Equal(t, "https://forgeline.example/en/blog/plasma-cutting-thick-plate", got.Link)
	assert.Equal(t, got.Link, got.GUID.Value)
	assert.Equal(t, "true", got.GUID.IsPermaLink)
	assert.Equal(t, "Shop Floor", got.Author)
	// Category first, then tags.
	assert.Equal(t, []string{"fabrication", "plasma-cutting", "steel"}, got.Categories)
	assert.Equal(t, "Tue, 10 Feb 2026 09:00:00 +0000", got.PubDate)
	assert.Nil(t, got.Enclosure)
}

func TestEmitImageEnclosure(t *testing.T) {
	tests := []struct {
		name     string
		image    string
		wantURL  string
		wantType string
	}{
		{"absolute url", "https://cdn.example/cover.png", "https://cdn.example/cover.png", "image/png"},
		{"relative path", "/images/cover.webp", "https://forgeline.example/images/cover.webp", "image/webp"},
		{"unknown extension defaults to jpeg", "cover.jpg", "https://forgeline.example/cover.jpg", "image/jpeg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := []*content.Item{{
				Slug:     "with-image",
				Title:    "With Image",
				Date:     time.Now(),
				Category: "fabrication",
				Image:    tt.image,
			}}

			parsed := emitAndParse(t, "en", items)
			require.Len(t, parsed.Channel.Items, 1)
			enc := parsed.Channel.Items[0].Enclosure
			require.NotNil(t, enc)
			assert.Equal(t, tt.wantURL, enc.URL)
			assert.Equal(t, tt.wantType, enc.Type)
		})
	}
}
