package server

import (
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPostsReturnsNewestFirst(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/api/blog/en")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got PostListResponse
	decodeJSON(t, body, &got)
	require.Len(t, got.Items, 3)
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, "laser-basics", got.Items[0].Slug)
	assert.Equal(t, "tig-vs-mig", got.Items[1].Slug)
	assert.Equal(t, "press-brake-tips", got.Items[2].Slug)
}

func TestGetPostsPagination(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/api/blog/en?limit=1&offset=1")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got PostListResponse
	decodeJSON(t, body, &got)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "tig-vs-mig", got.Items[0].Slug)
	assert.Equal(t, 3, got.Total)
}

func TestGetPostsUnknownLocale(t *testing.T) {
	env := newTestEnv(t)

	resp, _ := env.get(t, "/api/blog/fr")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetPostBySlug(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/api/blog/en/laser-basics")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var got map[string]any
	decodeJSON(t, body, &got)
	assert.Equal(t, "laser-basics title", got["title"])
	assert.Equal(t, "fabrication", got["category"])

	resp, _ = env.get(t, "/api/blog/en/no-such-post")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestLocalesArePartitioned(t *testing.T) {
	env := newTestEnv(t)

	// The Spanish post never shows up under the English locale.
	resp, _ := env.get(t, "/api/blog/en/corte-laser")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, body := env.get(t, "/api/blog/es")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var got PostListResponse
	decodeJSON(t, body, &got)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "corte-laser", got.Items[0].Slug)
}

func TestGetCategoriesAndTags(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/api/blog/en/categories")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var cats struct {
		Categories []string `json:"categories"`
		Count      int      `json:"count"`
	}
	decodeJSON(t, body, &cats)
	assert.Equal(t, []string{"fabrication", "welding"}, cats.Categories)
	assert.Equal(t, 2, cats.Count)

	resp, body = env.get(t, "/api/blog/en/tags")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var tags struct {
		Tags []string `json:"tags"`
	}
	decodeJSON(t, body, &tags)
	assert.Contains(t, tags.Tags, "laser-cutting")
	assert.Contains(t, tags.Tags, "bending")
}

func TestGetPostsByCategory(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/api/blog/en/category/fabrication")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var got PostListResponse
	decodeJSON(t, body, &got)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "laser-basics", got.Items[0].Slug)

	// Unknown category is an empty listing, not a 404.
	resp, body = env.get(t, "/api/blog/en/category/casting")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeJSON(t, body, &got)
	assert.Empty(t, got.Items)
	assert.Equal(t, 0, got.Total)
}

func TestSearchPosts(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/api/blog/en/search?q=TIG")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var got PostListResponse
	decodeJSON(t, body, &got)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "tig-vs-mig", got.Items[0].Slug)

	// Empty query lists everything.
	resp, body = env.get(t, "/api/blog/en/search")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeJSON(t, body, &got)
	assert.Equal(t, 3, got.Total)
}

func TestGetRelatedPosts(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/api/blog/en/press-brake-tips/related")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var got struct {
		Items []struct {
			Slug string `json:"slug"`
		} `json:"items"`
		Count int `json:"count"`
	}
	decodeJSON(t, body, &got)
	require.Equal(t, 1, got.Count)
	assert.Equal(t, "laser-basics", got.Items[0].Slug)

	// A post alone in its category has no related items, which is valid.
	resp, body = env.get(t, "/api/blog/en/tig-vs-mig/related")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decodeJSON(t, body, &got)
	assert.Equal(t, 0, got.Count)

	resp, _ = env.get(t, "/api/blog/en/ghost/related")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetRecentPosts(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/api/blog/en/recent?limit=2")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var got struct {
		Count int `json:"count"`
	}
	decodeJSON(t, body, &got)
	assert.Equal(t, 2, got.Count)
}

func TestGetFeed(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/api/feed/en")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/rss+xml")
	assert.Contains(t, string(body), "<rss")
	assert.Contains(t, string(body), "https://forgeline.example/en/blog/laser-basics")

	resp, _ = env.get(t, "/api/feed/fr")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestGetDictionary(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/api/i18n/es/common")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var got struct {
		Entries map[string]string `json:"entries"`
	}
	decodeJSON(t, body, &got)
	assert.Equal(t, "Contáctenos", got.Entries["contact_us"])
	// Keys missing in es resolve from the fallback locale.
	assert.Equal(t, "Request a quote", got.Entries["request_quote"])

	resp, _ = env.get(t, "/api/i18n/de/common")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	resp, body := env.get(t, "/api/health")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var got struct {
		Status string `json:"status"`
		Checks struct {
			Database string `json:"database"`
			Content  string `json:"content"`
		} `json:"checks"`
	}
	decodeJSON(t, body, &got)
	assert.Equal(t, "healthy", got.Status)
	assert.Equal(t, "healthy", got.Checks.Database)
	assert.Equal(t, "healthy", got.Checks.Content)

	resp, _ = env.get(t, "/health/live")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
