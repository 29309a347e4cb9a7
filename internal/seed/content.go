// Package seed generates sample localized markdown content for development
// and testing.
package seed

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
)

// Options configuration for the content seeder
type Options struct {
	OutputDir   string
	Locales     []string
	PostsPerLoc int
	MaxDaysBack int
	ShouldClean bool
}

var categories = []string{
	"fabrication", "welding", "machining", "finishing", "materials", "case-studies",
}

var tagPool = []string{
	"steel", "stainless", "aluminum", "laser-cutting", "plasma-cutting",
	"cnc", "bending", "tig", "mig", "powder-coating", "prototyping",
	"sheet-metal", "tolerances", "design-for-manufacturing",
}

var authors = []string{
	"Forgeline Team", "Shop Floor", "Engineering",
}

// Generate writes PostsPerLoc markdown files per locale under OutputDir.
func Generate(opts Options) error {
	gofakeit.Seed(time.Now().UnixNano())
	r := rand.New(rand.NewSource(time.Now().UnixNano()))

	if opts.PostsPerLoc <= 0 {
		opts.PostsPerLoc = 10
	}
	if opts.MaxDaysBack <= 0 {
		opts.MaxDaysBack = 180
	}
	if len(opts.Locales) == 0 {
		opts.Locales = []string{"en"}
	}

	if opts.ShouldClean {
		for _, locale := range opts.Locales {
			if err := os.RemoveAll(filepath.Join(opts.OutputDir, locale)); err != nil {
				return fmt.Errorf("clean locale dir %s: %w", locale, err)
			}
		}
	}

	for _, locale := range opts.Locales {
		dir := filepath.Join(opts.OutputDir, locale)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create locale dir %s: %w", locale, err)
		}

		for i := 0; i < opts.PostsPerLoc; i++ {
			slug := slugify(gofakeit.Sentence(r.Intn(4) + 3))
			path := filepath.Join(dir, slug+".md")
			if err := os.WriteFile(path, []byte(renderPost(r, opts.MaxDaysBack)), 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
		}
	}
	return nil
}

func renderPost(r *rand.Rand, maxDaysBack int) string {
	title := strings.TrimSuffix(gofakeit.Sentence(r.Intn(5)+4), ".")
	date := time.Now().Add(-time.Duration(r.Intn(maxDaysBack*24)) * time.Hour)
	category := categories[r.Intn(len(categories))]

	tags := make([]string, 0, 3)
	for _, idx := range r.Perm(len(tagPool))[:r.Intn(3)+1] {
		tags = append(tags, tagPool[idx])
	}

	var b strings.Builder
	b.WriteString("---\n")
	fmt.Fprintf(&b, "title: %q\n", title)
	fmt.Fprintf(&b, "description: %q\n", gofakeit.Sentence(r.Intn(8)+8))
	fmt.Fprintf(&b, "date: %s\n", date.Format("2006-01-02"))
	fmt.Fprintf(&b, "author: %q\n", authors[r.Intn(len(authors))])
	fmt.Fprintf(&b, "category: %s\n", category)
	fmt.Fprintf(&b, "tags: [%s]\n", strings.Join(tags, ", "))
	if r.Intn(3) == 0 {
		fmt.Fprintf(&b, "image: https://picsum.photos/seed/%s/1200/630\n", gofakeit.UUID())
	}
	b.WriteString("---\n\n")

	paragraphs := r.Intn(5) + 3
	for p := 0; p < paragraphs; p++ {
		if p > 0 && r.Intn(2) == 0 {
			fmt.Fprintf(&b, "## %s\n\n", strings.TrimSuffix(gofakeit.Sentence(r.Intn(3)+2), "."))
		}
		b.WriteString(gofakeit.Paragraph(1, r.Intn(4)+3, r.Intn(8)+8, " "))
		b.WriteString("\n\n")
	}
	return b.String()
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSuffix(s, "."))
	var b strings.Builder
	lastDash := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
