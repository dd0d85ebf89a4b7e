package tetris

import (
	"math/rand/v2"
	"slices"
	"time"
)

// source hands out the shapes of upcoming tetrominoes.
type source interface {
	draw() Shape
}

// bag is the 7-bag randomizer: every run of seven draws deals each shape
// once, in random order. See https://tetris.wiki/Random_Generator
type bag struct {
	rng *rand.Rand
	bag []Shape
}

func newBag(seed uint64) *bag {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano()) //nolint:gosec
	}
	b := &bag{rng: rand.New(rand.NewPCG(seed, seed>>1|1))}
	b.fill()
	// the first piece of a game is never an S, Z or O.
	if i := slices.IndexFunc(b.bag, func(s Shape) bool {
		return s == I || s == J || s == L || s == T
	}); i > 0 {
		b.bag[0], b.bag[i] = b.bag[i], b.bag[0]
	}
	return b
}

func (b *bag) fill() {
	b.bag = slices.Clone(Shapes)
	b.rng.Shuffle(len(b.bag), func(i, j int) {
		b.bag[i], b.bag[j] = b.bag[j], b.bag[i]
	})
}

func (b *bag) draw() Shape {
	if len(b.bag) == 0 {
		b.fill()
	}
	s := b.bag[0]
	b.bag = b.bag[1:]
	return s
}
