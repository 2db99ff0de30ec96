package questiongen

import (
	"math/rand/v2"
	"sync"
)

// lockedRand serializes access to a *rand.Rand so a generator can be
// shared between request goroutines.
type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newLockedRand(seed, stream uint64) *lockedRand {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &lockedRand{r: rand.New(rand.NewPCG(seed, stream))}
}

func (l *lockedRand) IntN(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.IntN(n)
}

func (l *lockedRand) Shuffle(n int, swap func(i, j int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.r.Shuffle(n, swap)
}

// shuffled returns a shuffled copy of s.
func shuffled[T any](l *lockedRand, s []T) []T {
	out := append([]T(nil), s...)
	l.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

func pick[T any](l *lockedRand, s []T) T {
	return s[l.IntN(len(s))]
}
