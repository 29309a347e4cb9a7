package server

import (
	"fmt"
	"time"

	"forgeline/internal/cache"
	"forgeline/internal/feed"
	"forgeline/internal/models"

	"github.com/gofiber/fiber/v2"
)

const feedCacheTTL = 5 * time.Minute

// GetFeed handles GET /api/feed/:locale and serves the RSS 2.0 document.
func (s *Server) GetFeed(c *fiber.Ctx) error {
	locale := c.Params("locale")
	if !s.knownLocale(locale) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("locale", locale))
	}

	site := feed.SiteMetadata{
		Title:       s.config.SiteName,
		Description: s.config.SiteDescription,
		SiteURL:     s.config.SiteURL,
	}

	var body []byte
	key := fmt.Sprintf("feed:%s:%d", locale, s.library.BuiltAt().UnixNano())
	err := cache.CacheAside(c.Context(), key, &body, feedCacheTTL, func() error {
		var emitErr error
		body, emitErr = feed.Emit(locale, site, s.library.All(locale))
		return emitErr
	})
	if err != nil {
		if body, err = feed.Emit(locale, site, s.library.All(locale)); err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
	}

	c.Set(fiber.HeaderContentType, "application/rss+xml; charset=utf-8")
	return c.Send(body)
}
