package content

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates a (locale, slug) pair absent from the store or index.
var ErrNotFound = errors.New("content not found")

// ErrStoreUnavailable indicates the content store itself cannot be
// enumerated. It is the only fatal condition during an index build.
var ErrStoreUnavailable = errors.New("content store unavailable")

// ParseError describes a single malformed content item. It is recorded in
// the build report and the item is skipped; it never aborts the build.
type ParseError struct {
	Locale string
	Slug   string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s/%s: %v", e.Locale, e.Slug, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// DuplicateSlugError reports a second item arriving under an already
// indexed (locale, slug) pair. The first item wins and the build continues.
type DuplicateSlugError struct {
	Locale string
	Slug   string
}

func (e *DuplicateSlugError) Error() string {
	return fmt.Sprintf("duplicate slug %s/%s", e.Locale, e.Slug)
}
