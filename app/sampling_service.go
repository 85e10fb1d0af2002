package app

import (
	"context"
	"log"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"gosample/adapters/columns"
	"gosample/adapters/datareadiness/coercer"
	"gosample/adapters/excel"
	"gosample/domain/sampling"
	"gosample/internal/errors"
	"gosample/internal/profiling"
	"gosample/internal/sampler"
)

// SamplingService turns uploaded population and sample files into sample designs and evaluations
type SamplingService struct {
	detector          *columns.Detector
	engine            *sampler.Engine
	analyzer          *profiling.PopulationAnalyzer
	maxParallelSheets int
}

// SheetDesign is the design outcome for one worksheet of a workbook
type SheetDesign struct {
	Sheet  string                       `json:"sheet"`
	Result *sampling.SampleDesignResult `json:"result,omitempty"`
	Error  string                       `json:"error,omitempty"` // Data problem confined to this sheet
}

// NewSamplingService creates a sampling service
func NewSamplingService(detector *columns.Detector, engine *sampler.Engine, maxParallelSheets int) *SamplingService {
	if maxParallelSheets < 1 {
		maxParallelSheets = 1
	}
	return &SamplingService{
		detector:          detector,
		engine:            engine,
		analyzer:          profiling.NewPopulationAnalyzer(),
		maxParallelSheets: maxParallelSheets,
	}
}

// DesignSample parses a population file and designs a sample over it
func (s *SamplingService) DesignSample(ctx context.Context, fileBytes []byte, filename string, cfg sampling.SamplingConfig, mapping *sampling.ColumnMapping) (*sampling.SampleDesignResult, error) {
	if err := sampler.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := excel.ParseBytes(fileBytes, filename)
	if err != nil {
		return nil, err
	}
	return s.designTable(data, cfg, mapping)
}

// ProfilePopulation parses a population file and describes its amounts without sampling it
func (s *SamplingService) ProfilePopulation(ctx context.Context, fileBytes []byte, filename string, mapping *sampling.ColumnMapping) (*sampling.PopulationProfile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := excel.ParseBytes(fileBytes, filename)
	if err != nil {
		return nil, err
	}
	population, _, _, err := s.buildPopulation(data, mapping)
	if err != nil {
		return nil, err
	}

	profile, err := s.analyzer.Profile(population)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

// DesignWorkbook designs a sample for every worksheet of an Excel workbook, in tab order.
// A sheet whose data cannot be sampled records its error and does not stop the others.
// Each sheet has its own sampling interval, so a pinned random start is rejected.
func (s *SamplingService) DesignWorkbook(ctx context.Context, fileBytes []byte, filename string, cfg sampling.SamplingConfig, mapping *sampling.ColumnMapping) ([]SheetDesign, error) {
	if err := sampler.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if cfg.RandomStart != nil {
		return nil, errors.ConfigInvalid("a pinned random start applies to one sampling interval; pin a random seed for workbook designs")
	}

	reader := excel.NewDataReader(filename)
	sheets, err := reader.ListSheets(fileBytes)
	if err != nil {
		return nil, err
	}

	startTime := time.Now()
	results := make([]SheetDesign, len(sheets))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxParallelSheets)

	for i, sheet := range sheets {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				return err
			}
			results[i].Sheet = sheet

			data, err := reader.WithSheet(sheet).ReadBytes(fileBytes)
			if err == nil {
				results[i].Result, err = s.designTable(data, cfg, mapping)
			}
			if err != nil {
				if errors.GetCode(err) != errors.CodeDataInvalid {
					return errors.Wrapf(err, "failed to design sheet %q", sheet)
				}
				log.Printf("[SamplingService] Sheet %q skipped: %v", sheet, err)
				results[i].Error = err.Error()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Printf("[SamplingService] Designed %d sheets of %s in %.2fms", len(sheets), filename, float64(time.Since(startTime).Nanoseconds())/1e6)
	return results, nil
}

// EvaluateSample parses a completed sample file and evaluates the misstatements it records
func (s *SamplingService) EvaluateSample(ctx context.Context, fileBytes []byte, filename string, cfg sampling.SamplingConfig, params sampling.EvaluationParams, mapping *sampling.ColumnMapping) (*sampling.SampleEvaluationResult, error) {
	if err := sampler.ValidateEvaluation(cfg, params); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := excel.ParseBytes(fileBytes, filename)
	if err != nil {
		return nil, err
	}

	resolved, err := s.detector.Detect(data, []columns.Role{columns.RoleRecordedAmount, columns.RoleAuditedAmount}, mapping)
	if err != nil {
		return nil, err
	}

	items := make([]sampling.AuditedItem, 0, len(data.Rows))
	unreadable := 0
	for i, row := range data.Rows {
		recorded, ok := coercer.ParseAmount(row[resolved.RecordedAmount])
		if !ok {
			unreadable++
			continue
		}
		item := sampling.AuditedItem{
			RowIndex:       i + 1,
			ItemID:         itemID(row, resolved, i+1),
			RecordedAmount: recorded,
		}
		if cell := strings.TrimSpace(row[resolved.AuditedAmount]); cell != "" {
			if audited, ok := coercer.ParseAmount(cell); ok {
				item.AuditedAmount = &audited
			} else {
				log.Printf("[SamplingService] Row %d: audited amount %q is not a number; treating it as not audited", i+1, cell)
			}
		}
		items = append(items, item)
	}

	result, err := s.engine.Evaluate(items, cfg, params)
	if err != nil {
		return nil, err
	}
	result.SkippedRows += unreadable
	result.ColumnMapping = resolved
	return result, nil
}

func (s *SamplingService) designTable(data *excel.TabularData, cfg sampling.SamplingConfig, mapping *sampling.ColumnMapping) (*sampling.SampleDesignResult, error) {
	population, resolved, skipped, err := s.buildPopulation(data, mapping)
	if err != nil {
		return nil, err
	}

	result, err := s.engine.Design(population, cfg)
	if err != nil {
		return nil, err
	}
	result.ColumnMapping = resolved
	result.SkippedRows = skipped
	return result, nil
}

// buildPopulation resolves the columns and keeps the rows with non-zero numeric amounts
func (s *SamplingService) buildPopulation(data *excel.TabularData, mapping *sampling.ColumnMapping) ([]sampling.PopulationItem, sampling.ColumnMapping, int, error) {
	resolved, err := s.detector.Detect(data, []columns.Role{columns.RoleRecordedAmount}, mapping)
	if err != nil {
		return nil, resolved, 0, err
	}

	population := make([]sampling.PopulationItem, 0, len(data.Rows))
	skipped := 0
	for i, row := range data.Rows {
		amount, ok := coercer.ParseAmount(row[resolved.RecordedAmount])
		if !ok || amount == 0 {
			skipped++
			continue
		}
		population = append(population, sampling.PopulationItem{
			RowIndex:       i + 1,
			ItemID:         itemID(row, resolved, i+1),
			Description:    strings.TrimSpace(row[resolved.Description]),
			RecordedAmount: amount,
		})
	}
	if skipped > 0 {
		log.Printf("[SamplingService] Skipped %d of %d rows with blank, non-numeric or zero amounts in %q",
			skipped, len(data.Rows), resolved.RecordedAmount)
	}
	if len(population) == 0 {
		return nil, resolved, skipped, errors.DataInvalidf("column %q has no non-zero numeric amounts (%d rows checked)", resolved.RecordedAmount, len(data.Rows))
	}
	return population, resolved, skipped, nil
}

// itemID falls back to the row number when the file has no identifier column
func itemID(row excel.RawRowData, mapping sampling.ColumnMapping, rowIndex int) string {
	if mapping.ItemID != "" {
		if id := strings.TrimSpace(row[mapping.ItemID]); id != "" {
			return id
		}
	}
	return strconv.Itoa(rowIndex)
}
