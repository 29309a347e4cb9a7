package content

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"forgeline/internal/observability"
)

// snapshot is one immutable generation of all per-locale indexes.
type snapshot struct {
	indexes map[string]*Index
	reports []BuildReport
	builtAt time.Time
}

// Library owns the current index generation. Queries run lock-free against
// the active snapshot; Rebuild constructs a new generation off to the side
// and swaps it in atomically. The live indexes are never mutated in place.
type Library struct {
	reader *Reader
	logger *slog.Logger

	current atomic.Pointer[snapshot]
}

// NewLibrary creates a Library over the given reader. Call Rebuild before
// serving queries.
func NewLibrary(reader *Reader, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Library{reader: reader, logger: logger}
	l.current.Store(&snapshot{indexes: map[string]*Index{}})
	return l
}

// Rebuild loads every locale and swaps in a fresh snapshot. Parse errors
// and duplicate slugs are reported and skipped; only a store enumeration
// failure aborts the rebuild and leaves the previous snapshot serving.
func (l *Library) Rebuild(ctx context.Context) error {
	locales, err := l.reader.Provider().Locales(ctx)
	if err != nil {
		return fmt.Errorf("enumerate locales: %w", err)
	}

	next := &snapshot{
		indexes: make(map[string]*Index, len(locales)),
		builtAt: time.Now(),
	}

	for _, locale := range locales {
		start := time.Now()
		items, parseErrs, err := l.reader.LoadLocale(ctx, locale)
		if err != nil {
			return fmt.Errorf("load locale %s: %w", locale, err)
		}

		idx, duplicates := Build(locale, items)
		for _, dup := range duplicates {
			l.logger.Warn("rejecting duplicate content slug",
				slog.String("locale", dup.Locale),
				slog.String("slug", dup.Slug),
			)
		}

		elapsed := time.Since(start)
		next.indexes[locale] = idx
		next.reports = append(next.reports, BuildReport{
			Locale:      locale,
			Items:       idx.Len(),
			ParseErrors: parseErrs,
			Duplicates:  duplicates,
			Elapsed:     elapsed,
		})

		observability.IndexBuildDuration.WithLabelValues(locale).Observe(elapsed.Seconds())
		observability.IndexItemsTotal.WithLabelValues(locale).Set(float64(idx.Len()))
		observability.IndexParseErrorsTotal.WithLabelValues(locale).Add(float64(len(parseErrs)))
		observability.IndexDuplicatesTotal.WithLabelValues(locale).Add(float64(len(duplicates)))

		l.logger.Info("content index built",
			slog.String("locale", locale),
			slog.Int("items", idx.Len()),
			slog.Int("parse_errors", len(parseErrs)),
			slog.Int("duplicates", len(duplicates)),
			slog.Duration("elapsed", elapsed),
		)
	}

	l.current.Store(next)
	return nil
}

// Reports returns the build reports of the active snapshot.
func (l *Library) Reports() []BuildReport {
	return l.current.Load().reports
}

// BuiltAt returns when the active snapshot was built.
func (l *Library) BuiltAt() time.Time {
	return l.current.Load().builtAt
}

// Locales returns the locales present in the active snapshot.
func (l *Library) Locales() []string {
	snap := l.current.Load()
	out := make([]string, 0, len(snap.indexes))
	for _, report := range snap.reports {
		out = append(out, report.Locale)
	}
	return out
}

// Index returns the active index for a locale, or nil if the locale is
// unknown.
func (l *Library) Index(locale string) *Index {
	return l.current.Load().indexes[locale]
}

// All returns the items of a locale, newest first. Unknown locales yield
// an empty slice: an item indexed under one locale never leaks into
// queries for another.
func (l *Library) All(locale string) []*Item {
	if idx := l.Index(locale); idx != nil {
		return idx.All()
	}
	return []*Item{}
}

// BySlug returns one item or ErrNotFound.
func (l *Library) BySlug(locale, slug string) (*Item, error) {
	if idx := l.Index(locale); idx != nil {
		return idx.BySlug(slug)
	}
	return nil, ErrNotFound
}

// ByCategory returns the items of a category, newest first.
func (l *Library) ByCategory(locale, category string) []*Item {
	if idx := l.Index(locale); idx != nil {
		return idx.ByCategory(category)
	}
	return []*Item{}
}

// ByTag returns the items carrying a tag, newest first.
func (l *Library) ByTag(locale, tag string) []*Item {
	if idx := l.Index(locale); idx != nil {
		return idx.ByTag(tag)
	}
	return []*Item{}
}

// Categories returns the distinct categories of a locale.
func (l *Library) Categories(locale string) []string {
	if idx := l.Index(locale); idx != nil {
		return idx.Categories()
	}
	return []string{}
}

// Tags returns the distinct tags of a locale.
func (l *Library) Tags(locale string) []string {
	if idx := l.Index(locale); idx != nil {
		return idx.Tags()
	}
	return []string{}
}

// Search runs a case-insensitive substring query over a locale.
func (l *Library) Search(locale, query string) []*Item {
	if idx := l.Index(locale); idx != nil {
		return idx.Search(query)
	}
	return []*Item{}
}

// Related returns up to limit same-category items for a slug.
func (l *Library) Related(locale, slug string, limit int) []*Item {
	if idx := l.Index(locale); idx != nil {
		return idx.Related(slug, limit)
	}
	return []*Item{}
}

// Recent returns the newest limit items of a locale.
func (l *Library) Recent(locale string, limit int) []*Item {
	if idx := l.Index(locale); idx != nil {
		return idx.Recent(limit)
	}
	return []*Item{}
}
