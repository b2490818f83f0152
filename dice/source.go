package dice

import (
	"math/rand"
	"sync"
	"time"
)

// Source supplies random integers in [0, n). *rand.Rand satisfies it.
type Source interface {
	Intn(n int) int
}

type lockedSource struct {
	mu sync.Mutex
	r  *rand.Rand
}

// NewSource returns a goroutine-safe Source seeded with seed. A zero seed
// picks one from the clock.
func NewSource(seed int64) Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &lockedSource{r: rand.New(rand.NewSource(seed))}
}

func (s *lockedSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Intn(n)
}

// SequenceSource replays fixed die faces in order, cycling when exhausted.
// Faces larger than the die being rolled wrap around.
type SequenceSource struct {
	mu    sync.Mutex
	faces []int
	next  int
}

// NewSequenceSource returns a Source that rolls the given faces in order.
func NewSequenceSource(faces ...int) *SequenceSource {
	if len(faces) == 0 {
		faces = []int{1}
	}
	return &SequenceSource{faces: faces}
}

func (s *SequenceSource) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	face := s.faces[s.next%len(s.faces)]
	s.next++
	if face < 1 {
		face = 1
	}
	return (face - 1) % n
}
