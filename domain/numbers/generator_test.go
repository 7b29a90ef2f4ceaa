package numbers

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Properties(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		k        int
		maxValue int
	}{
		{"standard game", 12, 24},
		{"full range", 24, 24},
		{"single pick", 1, 24},
		{"large non power of two range", 6, 49},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			for i := 0; i < 200; i++ {
				got, err := Generate(tt.k, tt.maxValue)
				require.NoError(t, err)
				require.Len(t, got, tt.k)

				seen := make(map[int]bool)
				for j, n := range got {
					assert.GreaterOrEqual(t, n, 1)
					assert.LessOrEqual(t, n, tt.maxValue)
					assert.False(t, seen[n], "duplicate %d", n)
					seen[n] = true
					if j > 0 {
						assert.Less(t, got[j-1], n, "not ascending")
					}
				}
			}
		})
	}
}

func TestGenerate_InvalidParameters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		k        int
		maxValue int
	}{
		{"k exceeds range", 25, 24},
		{"zero k", 0, 24},
		{"negative range", 3, -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := Generate(tt.k, tt.maxValue)
			assert.Error(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestGenerate_FullRangeIsPermutation(t *testing.T) {
	t.Parallel()

	got, err := Generate(24, 24)
	require.NoError(t, err)
	for i, n := range got {
		assert.Equal(t, i+1, n)
	}
}

func TestGenerate_RoughlyUniform(t *testing.T) {
	t.Parallel()

	const (
		k      = 12
		max    = 24
		rounds = 4000
	)
	counts := make([]int, max+1)
	for i := 0; i < rounds; i++ {
		got, err := Generate(k, max)
		require.NoError(t, err)
		for _, n := range got {
			counts[n]++
		}
	}

	// every value is expected rounds*k/max = 2000 times
	expected := float64(rounds*k) / float64(max)
	for n := 1; n <= max; n++ {
		assert.InDelta(t, expected, float64(counts[n]), expected*0.1, "value %d drawn %d times", n, counts[n])
	}
}

func TestGenerate_SourceFailure(t *testing.T) {
	t.Parallel()

	g := NewGeneratorWithSource(bytes.NewReader(nil))
	_, err := g.Generate(12, 24)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "random generation failed")
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy exhausted")
}

func TestGenerate_SourceErrorIsWrapped(t *testing.T) {
	t.Parallel()

	g := NewGeneratorWithSource(failingReader{})
	_, err := g.Generate(3, 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entropy exhausted")
}

func TestGenerate_DeterministicSourceIsRepeatable(t *testing.T) {
	t.Parallel()

	seed := bytes.Repeat([]byte{0x01, 0x37, 0xa5, 0x5c, 0xff, 0x10, 0x42, 0x99}, 64)

	first, err := NewGeneratorWithSource(bytes.NewReader(seed)).Generate(5, 24)
	require.NoError(t, err)
	second, err := NewGeneratorWithSource(bytes.NewReader(seed)).Generate(5, 24)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
