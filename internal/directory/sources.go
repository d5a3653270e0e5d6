package directory

import "math/rand"

// Shuffle permutes items in place with an unbiased Fisher-Yates shuffle.
func Shuffle(items []string, rng *rand.Rand) {
	for i := len(items) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// SelectSources returns the listing pages to scan: the home listing first,
// followed by up to sample category pages chosen at random. The categories
// slice is not modified.
func SelectSources(home string, categories []string, sample int, rng *rand.Rand) []string {
	sources := []string{home}
	if sample <= 0 || len(categories) == 0 {
		return sources
	}

	pool := make([]string, 0, len(categories))
	for _, c := range categories {
		if c != home {
			pool = append(pool, c)
		}
	}
	Shuffle(pool, rng)
	if sample > len(pool) {
		sample = len(pool)
	}
	return append(sources, pool[:sample]...)
}
