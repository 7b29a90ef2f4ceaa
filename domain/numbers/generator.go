// Package numbers draws unbiased number selections for tickets and winning sets.
package numbers

import (
	"crypto/rand"
	"fmt"
	"io"
	"math/big"
	"sort"
)

// Generator produces k distinct integers in [1, maxValue], ascending
type Generator interface {
	Generate(k, maxValue int) ([]int, error)
}

// CryptoGenerator samples with crypto/rand. Each candidate is uniform over the range
// (rand.Int rejects out-of-range bytes internally) and candidates already chosen are
// discarded and redrawn, so every k-subset is equally likely.
type CryptoGenerator struct {
	source io.Reader
}

// NewGenerator returns a generator backed by crypto/rand
func NewGenerator() *CryptoGenerator {
	return &CryptoGenerator{source: rand.Reader}
}

// NewGeneratorWithSource returns a generator reading randomness from source
func NewGeneratorWithSource(source io.Reader) *CryptoGenerator {
	return &CryptoGenerator{source: source}
}

// Generate returns k distinct values in [1, maxValue] in ascending order
func (g *CryptoGenerator) Generate(k, maxValue int) ([]int, error) {
	if k <= 0 || maxValue <= 0 {
		return nil, fmt.Errorf("invalid parameters: k=%d maxValue=%d", k, maxValue)
	}
	if k > maxValue {
		return nil, fmt.Errorf("cannot pick %d distinct numbers from 1-%d", k, maxValue)
	}

	upper := big.NewInt(int64(maxValue))
	chosen := make(map[int]struct{}, k)
	result := make([]int, 0, k)

	for len(result) < k {
		n, err := rand.Int(g.source, upper)
		if err != nil {
			return nil, fmt.Errorf("random generation failed: %w", err)
		}
		candidate := int(n.Int64()) + 1
		if _, dup := chosen[candidate]; dup {
			continue
		}
		chosen[candidate] = struct{}{}
		result = append(result, candidate)
	}

	sort.Ints(result)
	return result, nil
}

// Generate draws a selection with the default crypto/rand generator
func Generate(k, maxValue int) ([]int, error) {
	return NewGenerator().Generate(k, maxValue)
}
