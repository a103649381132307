package engine

import (
	"encoding/binary"
	"math/rand/v2"
)

// Dice is a deterministic six-sided die stream. The full stream is a pure
// function of the seed; Counter records how many values have been drawn so
// a saved game can resume at the same point.
type Dice struct {
	seed    uint64
	counter uint64
	rng     *rand.Rand
}

// NewDice creates a stream for seed and advances it past counter rolls.
func NewDice(seed, counter uint64) *Dice {
	var key [32]byte
	binary.LittleEndian.PutUint64(key[:8], seed)
	d := &Dice{seed: seed, rng: rand.New(rand.NewChaCha8(key))}
	for range counter {
		d.Roll()
	}
	return d
}

// Roll returns the next value in 1..6.
func (d *Dice) Roll() int {
	d.counter++
	return d.rng.IntN(6) + 1
}

// RollN returns the next n values.
func (d *Dice) RollN(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = d.Roll()
	}
	return out
}

// Seed returns the stream's seed.
func (d *Dice) Seed() uint64 { return d.seed }

// Counter returns how many values have been drawn since the stream began.
func (d *Dice) Counter() uint64 { return d.counter }

// CountHits returns how many rolls are at or below the target value.
func CountHits(rolls []int, target int) int {
	hits := 0
	for _, r := range rolls {
		if r <= target {
			hits++
		}
	}
	return hits
}
