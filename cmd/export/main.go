// Command main renders the content index and RSS feed of every locale into
// static files for the site generator.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"

	"forgeline/internal/bootstrap"
	"forgeline/internal/config"
	"forgeline/internal/feed"
)

func main() {
	outDir := flag.String("out", "dist", "output directory")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg, bootstrap.Options{
		SkipDB:    true,
		SkipRedis: true,
	})
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}

	site := feed.SiteMetadata{
		Title:       cfg.SiteName,
		Description: cfg.SiteDescription,
		SiteURL:     cfg.SiteURL,
	}

	for _, report := range rt.Library.Reports() {
		locale := report.Locale
		dir := filepath.Join(*outDir, locale)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("Failed to create %s: %v", dir, err)
		}

		items := rt.Library.All(locale)

		indexJSON, err := json.MarshalIndent(items, "", "  ")
		if err != nil {
			log.Fatalf("Failed to marshal index for %s: %v", locale, err)
		}
		if err := os.WriteFile(filepath.Join(dir, "index.json"), indexJSON, 0o644); err != nil {
			log.Fatalf("Failed to write index.json for %s: %v", locale, err)
		}

		feedXML, err := feed.Emit(locale, site, items)
		if err != nil {
			log.Fatalf("Failed to render feed for %s: %v", locale, err)
		}
		if err := os.WriteFile(filepath.Join(dir, "feed.xml"), feedXML, 0o644); err != nil {
			log.Fatalf("Failed to write feed.xml for %s: %v", locale, err)
		}

		log.Printf("Exported %d items for locale %s (%d parse errors skipped)",
			len(items), locale, len(report.ParseErrors))
	}
}
