package sampler

import (
	"sort"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gosample/adapters/rng"
	"gosample/domain/sampling"
	"gosample/internal/errors"
)

func TestSelectRandom_WholePopulation(t *testing.T) {
	items := population(10, 20, 30)

	for _, n := range []int{3, 4, 100} {
		selected, err := SelectRandom(items, n, nil)
		require.NoError(t, err)
		assert.Equal(t, []int{1, 2, 3}, rowIndexes(selected))
		for _, s := range selected {
			assert.Equal(t, sampling.SelectionRandom, s.SelectionMethod)
			assert.Nil(t, s.IntervalPosition)
		}
	}
}

func TestSelectRandom_PartialShuffle(t *testing.T) {
	items := population(1, 2, 3, 4, 5, 6, 7, 8, 9, 10)

	// Always drawing offset 0 swaps each position with itself
	selected, err := SelectRandom(items, 4, fixedSource{})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, rowIndexes(selected))
}

func TestSelectRandom_SeededReproducibleAndSorted(t *testing.T) {
	amounts := make([]float64, 500)
	for i := range amounts {
		amounts[i] = float64(i + 1)
	}
	items := population(amounts...)

	a, err := SelectRandom(items, 40, rng.NewSeeded(7, "random_selection"))
	require.NoError(t, err)
	b, err := SelectRandom(items, 40, rng.NewSeeded(7, "random_selection"))
	require.NoError(t, err)

	rows := rowIndexes(a)
	assert.Equal(t, rows, rowIndexes(b))
	assert.Len(t, rows, 40)
	assert.Len(t, uniqueInts(rows), 40)
	assert.True(t, sort.IntsAreSorted(rows))
}

func TestSelectRandom_InvalidInputs(t *testing.T) {
	_, err := SelectRandom(population(1, 2), -1, nil)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))

	_, err = SelectRandom(population(1, 2, 3), 1, nil)
	assert.Equal(t, errors.CodeInternalError, errors.GetCode(err))

	selected, err := SelectRandom(population(1, 2), 0, nil)
	require.NoError(t, err)
	assert.Empty(t, selected)
}

func TestSelectRandom_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("selects min(n, N) distinct items", prop.ForAll(
		func(size, n int, seed uint64) bool {
			amounts := make([]float64, size)
			for i := range amounts {
				amounts[i] = float64(i + 1)
			}
			selected, err := SelectRandom(population(amounts...), n, rng.NewSeeded(seed, "prop"))
			if err != nil {
				return false
			}
			want := n
			if want > size {
				want = size
			}
			rows := rowIndexes(selected)
			return len(rows) == want && len(uniqueInts(rows)) == want && sort.IntsAreSorted(rows)
		},
		gen.IntRange(0, 300),
		gen.IntRange(0, 400),
		gen.UInt64(),
	))

	properties.TestingRun(t)
}
