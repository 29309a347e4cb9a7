// Command main generates sample localized markdown content for development.
package main

import (
	"flag"
	"log"
	"strings"

	"forgeline/internal/seed"
)

func main() {
	outDir := flag.String("out", "content", "content output directory")
	locales := flag.String("locales", "en,es,de", "comma separated locales")
	posts := flag.Int("posts", 12, "posts per locale")
	clean := flag.Bool("clean", false, "remove existing locale directories first")
	flag.Parse()

	opts := seed.Options{
		OutputDir:   *outDir,
		Locales:     strings.Split(*locales, ","),
		PostsPerLoc: *posts,
		ShouldClean: *clean,
	}

	if err := seed.Generate(opts); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
	log.Printf("Seeded %d posts per locale into %s for locales %s", *posts, *outDir, *locales)
}
