package app

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gosample/domain/sampling"
	"gosample/internal/testkit"
)

func TestDesignThenEvaluate_GeneratedLedger(t *testing.T) {
	gen := testkit.NewLedgerGenerator(testkit.DefaultLedgerConfig())
	rows := gen.GenerateLedger()
	ledger, err := testkit.LedgerCSV(rows)
	require.NoError(t, err)

	cfg := sampling.SamplingConfig{
		Method:                  sampling.MethodMUS,
		ConfidenceLevel:         0.95,
		TolerableMisstatement:   100000,
		ExpectedMisstatement:    10000,
		StratificationThreshold: float64Ptr(50000),
		RandomSeed:              uint64Ptr(11),
	}
	svc := newTestService()
	ctx := context.Background()

	design, err := svc.DesignSample(ctx, ledger, "receivables.csv", cfg, nil)
	require.NoError(t, err)

	usable, value := testkit.Usable(rows)
	assert.Equal(t, usable, design.PopulationCount)
	assert.Equal(t, len(rows)-usable, design.SkippedRows)
	assert.InDelta(t, value, design.PopulationValue, 1e-6)
	assert.Equal(t, highValueRows(rows, 50000), design.HighValueCount)
	assert.GreaterOrEqual(t, design.HighValueCount, 5)
	assert.Equal(t, design.HighValueCount+design.RemainderSampleSize, design.ActualSampleSize)
	assert.Equal(t, len(design.SelectedItems), design.ActualSampleSize)

	params := sampling.EvaluationParams{
		PopulationValue:  design.RemainderTotal,
		SampleSize:       design.RemainderSampleSize,
		SamplingInterval: &design.SamplingInterval,
	}
	remainder := design.SelectedItems[design.HighValueCount:]

	t.Run("clean sample passes", func(t *testing.T) {
		sample, injected, err := gen.AuditedSampleCSV(remainder, 0, 0)
		require.NoError(t, err)
		require.Equal(t, 0, injected)

		result, err := svc.EvaluateSample(ctx, sample, "tested.csv", cfg, params, nil)
		require.NoError(t, err)
		assert.Equal(t, 0, result.ErrorCount)
		assert.Equal(t, result.BasicPrecision, result.UpperErrorLimit)
		assert.InDelta(t, design.SamplingInterval*3.0, result.BasicPrecision, 1e-6)
		assert.Equal(t, sampling.ConclusionPass, result.Conclusion)
	})

	t.Run("injected errors are all found", func(t *testing.T) {
		sample, injected, err := gen.AuditedSampleCSV(remainder, 0.3, 0.5)
		require.NoError(t, err)

		result, err := svc.EvaluateSample(ctx, sample, "tested.csv", cfg, params, nil)
		require.NoError(t, err)
		assert.Equal(t, injected, result.ErrorCount)
		assert.GreaterOrEqual(t, result.UpperErrorLimit, result.BasicPrecision)
		for i := 1; i < len(result.Taintings); i++ {
			assert.GreaterOrEqual(t, result.Taintings[i-1], result.Taintings[i])
		}
	})
}

func TestDesignWorkbook_GeneratedLedgers(t *testing.T) {
	north := testkit.DefaultLedgerConfig()
	north.InvoiceCount = 120
	south := north
	south.Seed = 77
	south.HighValueCount = 0

	ledgers := map[string][]testkit.LedgerRow{
		"North": testkit.NewLedgerGenerator(north).GenerateLedger(),
		"South": testkit.NewLedgerGenerator(south).GenerateLedger(),
	}
	data, err := testkit.LedgerWorkbook([]string{"North", "South"}, ledgers)
	require.NoError(t, err)

	cfg := sampling.SamplingConfig{
		Method:                  sampling.MethodMUS,
		ConfidenceLevel:         0.90,
		TolerableMisstatement:   20000,
		StratificationThreshold: float64Ptr(50000),
	}
	results, err := newTestService().DesignWorkbook(context.Background(), data, "regions.xlsx", cfg, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)

	for i, sheet := range []string{"North", "South"} {
		assert.Equal(t, sheet, results[i].Sheet)
		require.NotNil(t, results[i].Result, results[i].Error)
		usable, _ := testkit.Usable(ledgers[sheet])
		assert.Equal(t, usable, results[i].Result.PopulationCount)
		assert.Len(t, results[i].Result.SelectedItems, results[i].Result.ActualSampleSize)
	}
	assert.Equal(t, highValueRows(ledgers["North"], 50000), results[0].Result.HighValueCount)
	assert.Equal(t, highValueRows(ledgers["South"], 50000), results[1].Result.HighValueCount)
	assert.GreaterOrEqual(t, results[0].Result.HighValueCount, 5)
}

func highValueRows(rows []testkit.LedgerRow, threshold float64) int {
	n := 0
	for _, r := range rows {
		if !r.Blank && math.Abs(r.Amount) >= threshold {
			n++
		}
	}
	return n
}
