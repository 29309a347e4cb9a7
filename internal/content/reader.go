package content

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/adrg/frontmatter"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const defaultReadWorkers = 8

// readTimeout bounds a single store read so a stuck backend surfaces as a
// parse error instead of hanging the whole build.
const readTimeout = 10 * time.Second

// ReaderOptions tune content loading.
type ReaderOptions struct {
	// FallbackAuthor is used when front-matter has no author.
	FallbackAuthor string
	// Workers bounds parallel store reads. Defaults to 8.
	Workers int
	// Logger receives per-item warnings. Defaults to slog.Default().
	Logger *slog.Logger
}

// Reader enumerates and parses content items for a locale from a Provider.
type Reader struct {
	provider Provider
	opts     ReaderOptions
	md       goldmark.Markdown
}

// NewReader creates a Reader over the given provider.
func NewReader(provider Provider, opts ReaderOptions) *Reader {
	if opts.Workers <= 0 {
		opts.Workers = defaultReadWorkers
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Reader{
		provider: provider,
		opts:     opts,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
			goldmark.WithRendererOptions(gmhtml.WithHardWraps()),
		),
	}
}

// Provider returns the backing content provider.
func (r *Reader) Provider() Provider {
	return r.provider
}

// ReadItem fetches and parses one item. Returns ErrNotFound when the slug
// is absent, or a *ParseError when the content is malformed.
func (r *Reader) ReadItem(ctx context.Context, locale, slug string) (*Item, error) {
	ctx, cancel := context.WithTimeout(ctx, readTimeout)
	defer cancel()

	raw, err := r.provider.Read(ctx, locale, slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, &ParseError{Locale: locale, Slug: slug, Err: err}
	}
	return r.parseItem(locale, slug, raw)
}

func (r *Reader) parseItem(locale, slug string, raw []byte) (*Item, error) {
	var fm frontMatter
	body, err := frontmatter.Parse(bytes.NewReader(raw), &fm)
	if err != nil {
		return nil, &ParseError{Locale: locale, Slug: slug, Err: fmt.Errorf("front-matter: %w", err)}
	}

	if strings.TrimSpace(fm.Category) == "" {
		return nil, &ParseError{Locale: locale, Slug: slug, Err: errors.New("missing category")}
	}
	if strings.TrimSpace(fm.Date) == "" {
		return nil, &ParseError{Locale: locale, Slug: slug, Err: errors.New("missing date")}
	}
	date, err := parseDate(fm.Date)
	if err != nil {
		return nil, &ParseError{Locale: locale, Slug: slug, Err: err}
	}

	title := strings.TrimSpace(fm.Title)
	if title == "" {
		title = titleFromSlug(slug)
	}
	author := strings.TrimSpace(fm.Author)
	if author == "" {
		author = r.opts.FallbackAuthor
	}

	var htmlBuf bytes.Buffer
	if err := r.md.Convert(body, &htmlBuf); err != nil {
		return nil, &ParseError{Locale: locale, Slug: slug, Err: fmt.Errorf("markdown: %w", err)}
	}

	return &Item{
		Slug:        slug,
		Locale:      locale,
		Title:       title,
		Description: strings.TrimSpace(fm.Description),
		Date:        date,
		Author:      author,
		Category:    strings.TrimSpace(fm.Category),
		Tags:        normalizeTags(fm.Tags),
		Image:       strings.TrimSpace(fm.Image),
		ReadingTime: readingTime(string(body)),
		Body:        string(body),
		HTML:        template.HTML(htmlBuf.String()),
	}, nil
}

// LoadLocale reads every slug of a locale in parallel and returns the
// successfully parsed items in slug enumeration order, plus the parse
// errors for the items that were skipped. Only store enumeration failures
// are returned as an error.
func (r *Reader) LoadLocale(ctx context.Context, locale string) ([]*Item, []*ParseError, error) {
	slugs, err := r.provider.ListSlugs(ctx, locale)
	if err != nil {
		return nil, nil, err
	}

	// Reads are independent; bound them with a semaphore and join before
	// the builder runs. Results keep enumeration order so later policies
	// (first-seen wins) stay deterministic.
	items := make([]*Item, len(slugs))
	parseErrs := make([]*ParseError, len(slugs))
	sem := make(chan struct{}, r.opts.Workers)
	var wg sync.WaitGroup

	for i, slug := range slugs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, slug string) {
			defer wg.Done()
			defer func() { <-sem }()

			item, err := r.ReadItem(ctx, locale, slug)
			if err != nil {
				var pe *ParseError
				if errors.As(err, &pe) {
					parseErrs[i] = pe
				} else {
					parseErrs[i] = &ParseError{Locale: locale, Slug: slug, Err: err}
				}
				return
			}
			items[i] = item
		}(i, slug)
	}
	wg.Wait()

	loaded := make([]*Item, 0, len(slugs))
	var failed []*ParseError
	for i := range slugs {
		if items[i] != nil {
			loaded = append(loaded, items[i])
			continue
		}
		if parseErrs[i] != nil {
			r.opts.Logger.Warn("skipping malformed content item",
				slog.String("locale", locale),
				slog.String("slug", parseErrs[i].Slug),
				slog.String("error", parseErrs[i].Err.Error()),
			)
			failed = append(failed, parseErrs[i])
		}
	}
	return loaded, failed, nil
}

var slugTitleCaser = cases.Title(language.English)

func titleFromSlug(slug string) string {
	return slugTitleCaser.String(strings.ReplaceAll(strings.ReplaceAll(slug, "-", " "), "_", " "))
}

// normalizeTags trims entries and drops duplicates while preserving the
// original insertion order for display.
func normalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
