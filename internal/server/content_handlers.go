package server

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"forgeline/internal/cache"
	"forgeline/internal/content"
	"forgeline/internal/models"

	"github.com/gofiber/fiber/v2"
)

// listingCacheTTL bounds staleness of cached listings between rebuilds.
const listingCacheTTL = 60 * time.Second

// PostListResponse is the API response model for paginated listings.
type PostListResponse struct {
	Items  []*content.Item `json:"items"`
	Total  int             `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}

func parseLimitOffset(c *fiber.Ctx, defaultLimit, maxLimit int) (int, int) {
	limit := defaultLimit
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset := 0
	if raw := c.Query("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			offset = v
		}
	}
	return limit, offset
}

func paginate(items []*content.Item, limit, offset int) PostListResponse {
	total := len(items)
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return PostListResponse{
		Items:  items[offset:end],
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}
}

func (s *Server) knownLocale(locale string) bool {
	for _, l := range s.library.Locales() {
		if l == locale {
			return true
		}
	}
	return false
}

// GetPosts handles GET /api/blog/:locale
func (s *Server) GetPosts(c *fiber.Ctx) error {
	locale := c.Params("locale")
	if !s.knownLocale(locale) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("locale", locale))
	}
	limit, offset := parseLimitOffset(c, 20, 100)

	var resp PostListResponse
	key := fmt.Sprintf("blog:%s:all:%d:%d:%d", locale, limit, offset, s.library.BuiltAt().UnixNano())
	err := cache.CacheAside(c.Context(), key, &resp, listingCacheTTL, func() error {
		resp = paginate(s.library.All(locale), limit, offset)
		return nil
	})
	if err != nil {
		resp = paginate(s.library.All(locale), limit, offset)
	}
	return c.JSON(resp)
}

// GetPost handles GET /api/blog/:locale/:slug
func (s *Server) GetPost(c *fiber.Ctx) error {
	locale := c.Params("locale")
	slug := c.Params("slug")

	item, err := s.library.BySlug(locale, slug)
	if err != nil {
		if errors.Is(err, content.ErrNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("post", slug))
		}
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(item)
}

// GetCategories handles GET /api/blog/:locale/categories
func (s *Server) GetCategories(c *fiber.Ctx) error {
	locale := c.Params("locale")
	if !s.knownLocale(locale) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("locale", locale))
	}

	categories := s.library.Categories(locale)
	return c.JSON(fiber.Map{"categories": categories, "count": len(categories)})
}

// GetTags handles GET /api/blog/:locale/tags
func (s *Server) GetTags(c *fiber.Ctx) error {
	locale := c.Params("locale")
	if !s.knownLocale(locale) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("locale", locale))
	}

	tags := s.library.Tags(locale)
	return c.JSON(fiber.Map{"tags": tags, "count": len(tags)})
}

// GetPostsByCategory handles GET /api/blog/:locale/category/:category.
// An unknown category is an empty listing, not an error.
func (s *Server) GetPostsByCategory(c *fiber.Ctx) error {
	locale := c.Params("locale")
	if !s.knownLocale(locale) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("locale", locale))
	}
	category := c.Params("category")
	limit, offset := parseLimitOffset(c, 20, 100)

	return c.JSON(paginate(s.library.ByCategory(locale, category), limit, offset))
}

// GetPostsByTag handles GET /api/blog/:locale/tag/:tag
func (s *Server) GetPostsByTag(c *fiber.Ctx) error {
	locale := c.Params("locale")
	if !s.knownLocale(locale) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("locale", locale))
	}
	tag := c.Params("tag")
	limit, offset := parseLimitOffset(c, 20, 100)

	return c.JSON(paginate(s.library.ByTag(locale, tag), limit, offset))
}

// SearchPosts handles GET /api/blog/:locale/search?q=
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	locale := c.Params("locale")
	if !s.knownLocale(locale) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("locale", locale))
	}
	query := strings.TrimSpace(c.Query("q"))
	limit, offset := parseLimitOffset(c, 20, 100)

	return c.JSON(paginate(s.library.Search(locale, query), limit, offset))
}

// GetRecentPosts handles GET /api/blog/:locale/recent?limit=
func (s *Server) GetRecentPosts(c *fiber.Ctx) error {
	locale := c.Params("locale")
	if !s.knownLocale(locale) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("locale", locale))
	}
	limit, _ := parseLimitOffset(c, 5, 50)

	items := s.library.Recent(locale, limit)
	return c.JSON(fiber.Map{"items": items, "count": len(items)})
}

// GetRelatedPosts handles GET /api/blog/:locale/:slug/related?limit=.
// A slug with no same-category companions yields an empty list.
func (s *Server) GetRelatedPosts(c *fiber.Ctx) error {
	locale := c.Params("locale")
	slug := c.Params("slug")
	if _, err := s.library.BySlug(locale, slug); err != nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("post", slug))
	}
	limit, _ := parseLimitOffset(c, 3, 20)

	items := s.library.Related(locale, slug, limit)
	return c.JSON(fiber.Map{"items": items, "count": len(items)})
}

// GetDictionary handles GET /api/i18n/:locale/:namespace
func (s *Server) GetDictionary(c *fiber.Ctx) error {
	locale := c.Params("locale")
	namespace := c.Params("namespace")
	if !s.translator.Has(locale) {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.NewNotFoundError("locale", locale))
	}

	entries := s.translator.Namespace(locale, namespace)
	return c.JSON(fiber.Map{
		"locale":    locale,
		"namespace": namespace,
		"entries":   entries,
	})
}

// NegotiateLocale handles GET /api/i18n/negotiate using Accept-Language.
func (s *Server) NegotiateLocale(c *fiber.Ctx) error {
	locale := s.translator.Negotiate(c.Get("Accept-Language"))
	return c.JSON(fiber.Map{"locale": locale})
}
