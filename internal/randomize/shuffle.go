package randomize

import "math/rand"

// shuffleValue permutes the characters of s while keeping the first comma
// and the first decimal point at their original positions. Used for masking
// formatted numerics like "1,234.56" without destroying their shape.
func shuffleValue(rng *rand.Rand, s string) string {
	runes := []rune(s)
	fixed := make(map[int]rune, 2)
	pool := make([]rune, 0, len(runes))

	seenComma, seenPoint := false, false
	for i, r := range runes {
		switch {
		case r == ',' && !seenComma:
			fixed[i] = r
			seenComma = true
		case r == '.' && !seenPoint:
			fixed[i] = r
			seenPoint = true
		default:
			pool = append(pool, r)
		}
	}

	rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})

	out := make([]rune, len(runes))
	next := 0
	for i := range runes {
		if r, ok := fixed[i]; ok {
			out[i] = r
			continue
		}
		out[i] = pool[next]
		next++
	}
	return string(out)
}
