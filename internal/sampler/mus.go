package sampler

import (
	"math"
	"sort"

	"gosample/domain/sampling"
	"gosample/internal/errors"
	"gosample/ports"
)

// MUSSelection is the outcome of an interval walk
type MUSSelection struct {
	Selected    []sampling.SelectedSample
	RandomStart float64 // Start actually used, for re-performance
	Interval    float64
}

// SelectMUS performs probability-proportional-to-size selection. Items are walked in
// descending absolute amount (ties keep input order) accumulating a cumulative sum;
// an item is selected when a point start + k*interval falls in [cum, cum+|amount|).
// Each item is selected at most once, so any item with |amount| >= interval is
// certain. A pinned start must lie in [0, interval); otherwise the start is drawn
// from src.
func SelectMUS(items []sampling.PopulationItem, interval float64, start *float64, src ports.RandomSource) (MUSSelection, error) {
	if interval <= 0 || math.IsInf(interval, 0) || math.IsNaN(interval) {
		return MUSSelection{}, errors.ConfigInvalidf("sampling interval must be a positive number (got %v)", interval)
	}

	var r float64
	switch {
	case start != nil:
		if !(*start >= 0 && *start < interval) {
			return MUSSelection{}, errors.ConfigInvalidf(
				"random start %.2f must be in [0, %.2f)", *start, interval)
		}
		r = *start
	case src != nil:
		r = src.Float64() * interval
		if r >= interval {
			r = math.Nextafter(interval, 0)
		}
	default:
		return MUSSelection{}, errors.InternalError("no random source supplied for MUS random start")
	}

	ordered := make([]sampling.PopulationItem, len(items))
	copy(ordered, items)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].AbsAmount() > ordered[j].AbsAmount()
	})

	selection := MUSSelection{RandomStart: r, Interval: interval}
	next := r
	cumulative := 0.0

	for _, item := range ordered {
		amount := item.AbsAmount()
		if amount == 0 {
			continue
		}
		end := cumulative + amount

		if next < end {
			position := next
			selection.Selected = append(selection.Selected, sampling.SelectedSample{
				Item:             item,
				SelectionMethod:  sampling.SelectionMUS,
				IntervalPosition: &position,
			})

			// Skip every further point inside this item's span
			next += math.Floor((end-next)/interval) * interval
			for next < end {
				next += interval
			}
		}
		cumulative = end
	}

	return selection, nil
}
