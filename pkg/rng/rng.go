// Package rng is the single randomness contract used by routing and
// geometry. Every random decision in the module goes through a Source so a
// test can substitute a scripted generator.
package rng

import (
	"crypto/md5"
	"encoding/binary"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

// Source is the randomness contract.
type Source interface {
	// Intn returns a value in [0, n). n <= 0 yields 0.
	Intn(n int) int
	// IntRange returns a value in [min, max], both ends inclusive.
	IntRange(min, max int) int
	// Float returns a value in [min, max).
	Float(min, max float64) float64
}

// PCG is a seeded Source.
type PCG struct {
	seed uint64
	r    *rand.Rand
}

// New returns a Source seeded with seed.
func New(seed uint64) *PCG {
	return &PCG{seed: seed, r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Seed reports the seed the source was created with.
func (p *PCG) Seed() uint64 { return p.seed }

func (p *PCG) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return p.r.IntN(n)
}

func (p *PCG) IntRange(min, max int) int {
	if max <= min {
		return min
	}
	return min + p.r.IntN(max-min+1)
}

func (p *PCG) Float(min, max float64) float64 {
	if max <= min {
		return min
	}
	return min + p.r.Float64()*(max-min)
}

// ParseSeed turns a user supplied seed into a numeric one. Numeric strings
// are used as-is; any other text is hashed. An empty string yields a seed
// derived from the clock.
func ParseSeed(s string) uint64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return uint64(time.Now().UnixNano())
	}
	if n, err := strconv.ParseUint(s, 10, 64); err == nil {
		return n
	}
	sum := md5.Sum([]byte(s))
	return binary.LittleEndian.Uint64(sum[:8])
}
