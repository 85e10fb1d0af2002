package sampler

import (
	"sort"

	"gosample/domain/sampling"
	"gosample/internal/errors"
	"gosample/ports"
)

// SelectRandom draws sampleSize items uniformly without replacement with a partial
// Fisher-Yates shuffle. Requests at or above the population size return every
// item. The result keeps source order.
func SelectRandom(items []sampling.PopulationItem, sampleSize int, src ports.RandomSource) ([]sampling.SelectedSample, error) {
	if sampleSize < 0 {
		return nil, errors.ConfigInvalidf("sample size cannot be negative (got %d)", sampleSize)
	}

	if sampleSize == 0 {
		return []sampling.SelectedSample{}, nil
	}

	n := len(items)
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	if sampleSize < n {
		if src == nil {
			return nil, errors.InternalError("no random source supplied for random selection")
		}
		for i := 0; i < sampleSize; i++ {
			j := i + src.IntN(n-i)
			indices[i], indices[j] = indices[j], indices[i]
		}
		indices = indices[:sampleSize]
		sort.Ints(indices)
	}

	selected := make([]sampling.SelectedSample, len(indices))
	for k, idx := range indices {
		selected[k] = sampling.SelectedSample{
			Item:            items[idx],
			SelectionMethod: sampling.SelectionRandom,
		}
	}
	return selected, nil
}
