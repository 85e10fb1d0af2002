package sampler

import (
	"fmt"

	"gosample/domain/sampling"
)

// fixedSource returns a constant draw so selections can be predicted
type fixedSource struct {
	f float64
}

func (s fixedSource) Float64() float64 { return s.f }
func (s fixedSource) IntN(n int) int   { return 0 }

func population(amounts ...float64) []sampling.PopulationItem {
	items := make([]sampling.PopulationItem, len(amounts))
	for i, a := range amounts {
		items[i] = sampling.PopulationItem{
			RowIndex:       i + 1,
			ItemID:         fmt.Sprintf("INV-%03d", i+1),
			RecordedAmount: a,
		}
	}
	return items
}

// scenarioPopulation is 10 items of $10,000 followed by 40 items of $100
func scenarioPopulation() []sampling.PopulationItem {
	amounts := make([]float64, 0, 50)
	for i := 0; i < 10; i++ {
		amounts = append(amounts, 10000)
	}
	for i := 0; i < 40; i++ {
		amounts = append(amounts, 100)
	}
	return population(amounts...)
}

func float64Ptr(v float64) *float64 { return &v }
func intPtr(v int) *int             { return &v }
func uint64Ptr(v uint64) *uint64    { return &v }

func rowIndexes(selected []sampling.SelectedSample) []int {
	rows := make([]int, len(selected))
	for i, s := range selected {
		rows[i] = s.Item.RowIndex
	}
	return rows
}
