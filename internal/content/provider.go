package content

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Provider supplies raw content bytes per (locale, slug). Any storage
// medium satisfying this contract works; the filesystem implementation
// below is the default.
type Provider interface {
	// Locales enumerates the locales present in the store.
	Locales(ctx context.Context) ([]string, error)
	// ListSlugs enumerates the slugs for a locale. Re-enumerating yields
	// the same set absent external changes.
	ListSlugs(ctx context.Context, locale string) ([]string, error)
	// Read fetches the raw bytes for a slug. Returns ErrNotFound if the
	// slug does not exist for that locale.
	Read(ctx context.Context, locale, slug string) ([]byte, error)
}

// FSProvider reads content from a directory laid out as
// <root>/<locale>/<slug>.md.
type FSProvider struct {
	root string
}

// NewFSProvider creates a filesystem content provider rooted at dir.
func NewFSProvider(dir string) *FSProvider {
	return &FSProvider{root: dir}
}

// Root returns the content root directory.
func (p *FSProvider) Root() string {
	return p.root
}

func (p *FSProvider) Locales(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(p.root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	var locales []string
	for _, e := range entries {
		if e.IsDir() {
			locales = append(locales, e.Name())
		}
	}
	sort.Strings(locales)
	return locales, nil
}

func (p *FSProvider) ListSlugs(ctx context.Context, locale string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(filepath.Join(p.root, locale))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	var slugs []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".md") {
			continue
		}
		slugs = append(slugs, strings.TrimSuffix(e.Name(), filepath.Ext(e.Name())))
	}
	sort.Strings(slugs)
	return slugs, nil
}

func (p *FSProvider) Read(ctx context.Context, locale, slug string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// Reject slugs that could escape the locale directory.
	if strings.ContainsAny(slug, "/\\") || slug == ".." {
		return nil, ErrNotFound
	}
	b, err := os.ReadFile(filepath.Join(p.root, locale, slug+".md"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

var _ Provider = (*FSProvider)(nil)
