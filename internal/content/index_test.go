package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(d int) time.Time {
	return time.Date(2026, time.March, d, 0, 0, 0, 0, time.UTC)
}

func mkItem(slug string, date time.Time, category string, tags ...string) *Item {
	return &Item{
		Slug:     slug,
		Locale:   "en",
		Title:    "Title " + slug,
		Date:     date,
		Author:   "Shop Floor",
		Category: category,
		Tags:     tags,
	}
}

func slugsOf(items []*Item) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Slug)
	}
	return out
}

func TestBuildSortsByDateDescending(t *testing.T) {
	idx, dups := Build("en", []*Item{
		mkItem("oldest", day(1), "welding"),
		mkItem("newest", day(9), "welding"),
		mkItem("middle", day(5), "machining"),
	})

	require.Empty(t, dups)
	assert.Equal(t, []string{"newest", "middle", "oldest"}, slugsOf(idx.All()))
}

func TestBuildTieBreaksBySlugAscending(t *testing.T) {
	same := day(4)
	idx, _ := Build("en", []*Item{
		mkItem("zebra", same, "welding"),
		mkItem("alpha", same, "welding"),
		mkItem("mid", same, "welding"),
	})

	assert.Equal(t, []string{"alpha", "mid", "zebra"}, slugsOf(idx.All()))
}

func TestBuildIsDeterministic(t *testing.T) {
	items := []*Item{
		mkItem("a", day(3), "welding", "tig"),
		mkItem("b", day(3), "welding", "mig"),
		mkItem("c", day(7), "machining", "cnc"),
		mkItem("d", day(1), "welding", "tig"),
	}

	first, _ := Build("en", items)
	for i := 0; i < 10; i++ {
		again, _ := Build("en", items)
		assert.Equal(t, slugsOf(first.All()), slugsOf(again.All()))
		assert.Equal(t, first.Categories(), again.Categories())
		assert.Equal(t, first.Tags(), again.Tags())
		assert.Equal(t, slugsOf(first.ByTag("tig")), slugsOf(again.ByTag("tig")))
	}
}

func TestBuildRejectsDuplicateSlugsFirstSeenWins(t *testing.T) {
	winner := mkItem("dup", day(2), "welding")
	winner.Title = "First"
	loser := mkItem("dup", day(8), "machining")
	loser.Title = "Second"

	idx, dups := Build("en", []*Item{winner, loser, mkItem("other", day(5), "welding")})

	require.Len(t, dups, 1)
	assert.Equal(t, "en", dups[0].Locale)
	assert.Equal(t, "dup", dups[0].Slug)

	assert.Equal(t, 2, idx.Len())
	got, err := idx.BySlug("dup")
	require.NoError(t, err)
	assert.Equal(t, "First", got.Title)
	// The rejected item's category must not leak into the buckets.
	assert.Empty(t, idx.ByCategory("machining"))
}

func TestBucketsPreserveGlobalOrder(t *testing.T) {
	idx, _ := Build("en", []*Item{
		mkItem("w-old", day(1), "welding", "steel"),
		mkItem("m-new", day(8), "machining", "steel"),
		mkItem("w-new", day(6), "welding", "steel"),
	})

	assert.Equal(t, []string{"w-new", "w-old"}, slugsOf(idx.ByCategory("welding")))
	assert.Equal(t, []string{"m-new", "w-new", "w-old"}, slugsOf(idx.ByTag("steel")))
}

func TestBuildEmptyLocale(t *testing.T) {
	idx, dups := Build("de", nil)

	assert.Empty(t, dups)
	assert.Equal(t, 0, idx.Len())
	assert.Equal(t, "de", idx.Locale())
	assert.Empty(t, idx.All())
	assert.Empty(t, idx.Categories())
	assert.Empty(t, idx.Tags())
}
