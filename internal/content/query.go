package content

import (
	"sort"
	"strings"
)

// All returns every indexed item, newest first.
func (x *Index) All() []*Item {
	return x.items(x.dateSorted)
}

// BySlug returns the item for slug, or ErrNotFound.
func (x *Index) BySlug(slug string) (*Item, error) {
	item, ok := x.bySlug[slug]
	if !ok {
		return nil, ErrNotFound
	}
	return item, nil
}

// ByCategory returns the items of a category, newest first. A category
// with no members yields an empty slice, not an error.
func (x *Index) ByCategory(category string) []*Item {
	return x.items(x.byCategory[category])
}

// ByTag returns the items carrying a tag, newest first. Unknown tags
// yield an empty slice.
func (x *Index) ByTag(tag string) []*Item {
	return x.items(x.byTag[tag])
}

// Categories returns the distinct categories. Callers must not depend on
// any particular order; the slice is sorted only to keep output stable.
func (x *Index) Categories() []string {
	out := make([]string, 0, len(x.byCategory))
	for c := range x.byCategory {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Tags returns the distinct tags, same ordering contract as Categories.
func (x *Index) Tags() []string {
	out := make([]string, 0, len(x.byTag))
	for t := range x.byTag {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Search returns items whose title, description, category, or any tag
// contains the query, case-insensitively. Any field matching is enough.
// An empty query returns all items.
func (x *Index) Search(query string) []*Item {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return x.All()
	}
	var out []*Item
	for _, slug := range x.dateSorted {
		item := x.bySlug[slug]
		if itemMatches(item, q) {
			out = append(out, item)
		}
	}
	if out == nil {
		out = []*Item{}
	}
	return out
}

func itemMatches(item *Item, q string) bool {
	if strings.Contains(strings.ToLower(item.Title), q) ||
		strings.Contains(strings.ToLower(item.Description), q) ||
		strings.Contains(strings.ToLower(item.Category), q) {
		return true
	}
	for _, tag := range item.Tags {
		if strings.Contains(strings.ToLower(tag), q) {
			return true
		}
	}
	return false
}

// Related returns up to limit other items sharing the item's category, in
// the category's existing date order, never including the item itself.
// An unknown slug yields an empty slice.
func (x *Index) Related(slug string, limit int) []*Item {
	item, ok := x.bySlug[slug]
	if !ok || limit <= 0 {
		return []*Item{}
	}
	out := make([]*Item, 0, limit)
	for _, s := range x.byCategory[item.Category] {
		if s == slug {
			continue
		}
		out = append(out, x.bySlug[s])
		if len(out) == limit {
			break
		}
	}
	return out
}

// Recent returns the first limit items of All.
func (x *Index) Recent(limit int) []*Item {
	if limit <= 0 {
		return []*Item{}
	}
	if limit > len(x.dateSorted) {
		limit = len(x.dateSorted)
	}
	return x.items(x.dateSorted[:limit])
}
