package competition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoriesTable(t *testing.T) {
	cats := Categories()
	require.Len(t, cats, 5)
	require.Equal(t, HIFZ_FULL, cats[0].ID)
	require.Equal(t, TILAWAH, cats[4].ID)
	assert.False(t, cats[4].IsMemorization())
	assert.Equal(t, 30, cats[0].JuzCount)

	// Callers get a copy.
	cats[0].Title = "changed"
	require.Equal(t, "Hifz of Full Quran", Categories()[0].Title)
}

func TestCategoryTitle(t *testing.T) {
	assert.Equal(t, "20 Juz Category", CategoryTitle(HIFZ_20))
	assert.Equal(t, UNKNOWN_CATEGORY_TITLE, CategoryTitle("hifz-3"))

	_, ok := CategoryByID("")
	assert.False(t, ok)
}

func TestBoardFilter(t *testing.T) {
	b := SeedBoard()

	got := b.Filter(HIFZ_20)
	require.Len(t, got, 2)
	require.Equal(t, 1, got[0].Rank)
	require.Equal(t, "Yusuf Khan", got[0].Name)
	require.Equal(t, 2, got[1].Rank)
	require.Equal(t, "Ibrahim Musa", got[1].Name)

	require.Empty(t, b.Filter(HIFZ_5))
	require.Len(t, b.Filter(HIFZ_FULL), 3)
}

func TestBoardFilterSortsByRank(t *testing.T) {
	b := NewBoard([]Result{
		{Rank: 3, Name: "C", Category: TILAWAH},
		{Rank: 1, Name: "A", Category: TILAWAH},
		{Rank: 2, Name: "X", Category: HIFZ_5},
		{Rank: 2, Name: "B", Category: TILAWAH},
	})

	got := b.Filter(TILAWAH)
	require.Len(t, got, 3)
	for i, name := range []string{"A", "B", "C"} {
		require.Equal(t, name, got[i].Name)
		require.Equal(t, TILAWAH, got[i].Category)
	}
}

func TestBoardReplaceIsolation(t *testing.T) {
	src := []Result{{Rank: 1, Name: "A", Category: HIFZ_10}}
	b := NewBoard(src)
	src[0].Name = "mutated"

	require.Equal(t, "A", b.All()[0].Name)

	b.Replace(nil)
	require.Empty(t, b.All())
}

func TestMakePodium(t *testing.T) {
	p := MakePodium(SeedBoard().Filter(HIFZ_20))
	require.NotNil(t, p.First)
	require.NotNil(t, p.Second)
	require.Nil(t, p.Third)
	require.Equal(t, 99.0, p.First.Score)
	require.False(t, p.Empty())

	require.True(t, MakePodium(nil).Empty())
}
