package selector

import "weapon-quiz-service/internal/domain"

// Rand is the randomness a selection draws from. *math/rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// Select returns min(n, distinct candidates) items in random order.
// Candidates sharing an id are collapsed to the first occurrence and the
// input slice is never modified.
func Select(candidates []domain.Item, n int, rnd Rand) []domain.Item {
	if n <= 0 || len(candidates) == 0 {
		return []domain.Item{}
	}

	pool := make([]domain.Item, 0, len(candidates))
	seen := make(map[string]struct{}, len(candidates))
	for _, item := range candidates {
		if _, ok := seen[item.ID]; ok {
			continue
		}
		seen[item.ID] = struct{}{}
		pool = append(pool, item)
	}

	// Fisher-Yates, from the last index down to 1.
	for i := len(pool) - 1; i > 0; i-- {
		j := rnd.Intn(i + 1)
		pool[i], pool[j] = pool[j], pool[i]
	}

	if n > len(pool) {
		n = len(pool)
	}
	return pool[:n:n]
}
