package content

import (
	"sort"
	"time"
)

// Index holds the derived lookup structures for one locale. It is a pure
// function of the item set: building twice from the same inputs yields
// identical orderings. Never mutated after Build returns.
type Index struct {
	locale     string
	bySlug     map[string]*Item
	byCategory map[string][]string
	byTag      map[string][]string
	dateSorted []string
}

// BuildReport summarizes one locale build.
type BuildReport struct {
	Locale      string
	Items       int
	ParseErrors []*ParseError
	Duplicates  []*DuplicateSlugError
	Elapsed     time.Duration
}

// Build constructs the index for a locale from already loaded items.
// Items arriving under an occupied slug are rejected (first seen wins)
// and reported; the build continues.
func Build(locale string, items []*Item) (*Index, []*DuplicateSlugError) {
	idx := &Index{
		locale:     locale,
		bySlug:     make(map[string]*Item, len(items)),
		byCategory: make(map[string][]string),
		byTag:      make(map[string][]string),
	}

	var duplicates []*DuplicateSlugError
	accepted := make([]*Item, 0, len(items))
	for _, item := range items {
		if _, taken := idx.bySlug[item.Slug]; taken {
			duplicates = append(duplicates, &DuplicateSlugError{Locale: locale, Slug: item.Slug})
			continue
		}
		idx.bySlug[item.Slug] = item
		accepted = append(accepted, item)
	}

	// Date descending, slug ascending on ties, so same-date items always
	// come out in the same order.
	sort.Slice(accepted, func(i, j int) bool {
		if !accepted[i].Date.Equal(accepted[j].Date) {
			return accepted[i].Date.After(accepted[j].Date)
		}
		return accepted[i].Slug < accepted[j].Slug
	})

	idx.dateSorted = make([]string, len(accepted))
	for i, item := range accepted {
		idx.dateSorted[i] = item.Slug
		// Buckets are filled from the globally sorted list, so each one
		// inherits the same ordering.
		idx.byCategory[item.Category] = append(idx.byCategory[item.Category], item.Slug)
		for _, tag := range item.Tags {
			idx.byTag[tag] = append(idx.byTag[tag], item.Slug)
		}
	}

	return idx, duplicates
}

// Locale returns the locale this index was built for.
func (x *Index) Locale() string {
	return x.locale
}

// Len returns the number of indexed items.
func (x *Index) Len() int {
	return len(x.dateSorted)
}

func (x *Index) items(slugs []string) []*Item {
	out := make([]*Item, 0, len(slugs))
	for _, s := range slugs {
		out = append(out, x.bySlug[s])
	}
	return out
}
