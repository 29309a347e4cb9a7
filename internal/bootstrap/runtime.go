// Package bootstrap wires configuration into live runtime dependencies.
package bootstrap

import (
	"context"
	"fmt"

	"forgeline/internal/cache"
	"forgeline/internal/config"
	"forgeline/internal/content"
	"forgeline/internal/database"
	"forgeline/internal/i18n"
	"forgeline/internal/observability"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Runtime bundles the live dependencies of the application.
type Runtime struct {
	DB         *gorm.DB
	Redis      *redis.Client
	Library    *content.Library
	Translator *i18n.Translator
}

// Options control runtime initialization behavior.
type Options struct {
	// SkipDB leaves Runtime.DB nil. The export command reads content only.
	SkipDB bool
	// SkipRedis leaves Runtime.Redis nil.
	SkipRedis bool
}

// InitRuntime connects the stores, loads translations, and builds the
// initial content snapshot.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	rt := &Runtime{}

	if !opts.SkipDB {
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		rt.DB = db
	}

	if !opts.SkipRedis {
		// May result in a nil client if unreachable; callers degrade.
		cache.InitRedis(cfg.RedisURL)
		rt.Redis = cache.GetClient()
	}

	translator, err := i18n.Load(cfg.TranslationDir, cfg.DefaultLocale)
	if err != nil {
		return nil, fmt.Errorf("load translations: %w", err)
	}
	rt.Translator = translator

	provider := content.NewFSProvider(cfg.ContentDir)
	reader := content.NewReader(provider, content.ReaderOptions{
		FallbackAuthor: cfg.FallbackAuthor,
		Logger:         observability.Logger,
	})
	rt.Library = content.NewLibrary(reader, observability.Logger)
	if err := rt.Library.Rebuild(ctx); err != nil {
		return nil, fmt.Errorf("build content index: %w", err)
	}

	return rt, nil
}
