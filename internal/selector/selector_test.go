package selector

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weapon-quiz-service/internal/domain"
)

func candidates(n int) []domain.Item {
	items := make([]domain.Item, n)
	for i := range items {
		id := "w" + strconv.Itoa(i)
		items[i] = domain.Item{ID: id, Name: id, CorrectAnswers: []string{"Strength"}}
	}
	return items
}

func TestSelectReturnsDistinctSubset(t *testing.T) {
	pool := candidates(30)
	rnd := rand.New(rand.NewSource(42))

	for n := 0; n <= len(pool); n++ {
		got := Select(pool, n, rnd)
		require.Len(t, got, n)

		seen := map[string]bool{}
		for _, item := range got {
			assert.False(t, seen[item.ID], "duplicate id %s", item.ID)
			seen[item.ID] = true
			assert.Contains(t, pool, item)
		}
	}
}

func TestSelectWithFewerCandidates(t *testing.T) {
	pool := candidates(3)

	got := Select(pool, 25, rand.New(rand.NewSource(1)))

	assert.Len(t, got, 3)
	assert.ElementsMatch(t, pool, got)
}

func TestSelectEmpty(t *testing.T) {
	assert.Empty(t, Select(nil, 5, rand.New(rand.NewSource(1))))
	assert.Empty(t, Select(candidates(4), -1, rand.New(rand.NewSource(1))))
}

func TestSelectDoesNotMutateInput(t *testing.T) {
	pool := candidates(10)
	before := append([]domain.Item(nil), pool...)

	_ = Select(pool, 10, rand.New(rand.NewSource(7)))

	assert.Equal(t, before, pool)
}

func TestSelectCollapsesDuplicateIDs(t *testing.T) {
	pool := []domain.Item{{ID: "a", Name: "A"}, {ID: "a", Name: "A again"}, {ID: "b", Name: "B"}}

	got := Select(pool, 3, rand.New(rand.NewSource(3)))

	require.Len(t, got, 2)
	assert.NotEqual(t, got[0].ID, got[1].ID)
}

func TestSelectIsDeterministicForSeed(t *testing.T) {
	pool := candidates(20)

	first := Select(pool, 5, rand.New(rand.NewSource(99)))
	second := Select(pool, 5, rand.New(rand.NewSource(99)))

	assert.Equal(t, first, second)
}

// Every item should land in the first slot roughly equally often.
func TestSelectIsRoughlyUniform(t *testing.T) {
	pool := candidates(5)
	rnd := rand.New(rand.NewSource(2024))
	counts := map[string]int{}
	const rounds = 50000

	for i := 0; i < rounds; i++ {
		counts[Select(pool, 1, rnd)[0].ID]++
	}

	expected := rounds / len(pool)
	for id, c := range counts {
		assert.InDelta(t, expected, c, float64(expected)*0.05, "item %s", id)
	}
	assert.Len(t, counts, len(pool))
}
