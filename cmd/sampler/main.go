package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gosample/adapters/columns"
	"gosample/adapters/excel"
	"gosample/app"
	"gosample/domain/sampling"
	"gosample/internal/config"
	"gosample/internal/errors"
	"gosample/internal/sampler"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[Sampler] No .env file loaded: %v", err)
	}

	rootCmd := &cobra.Command{
		Use:   "sampler",
		Short: "Statistical audit sampling: design MUS or random samples and evaluate the results",
	}

	rootCmd.AddCommand(
		newDesignCmd(),
		newEvaluateCmd(),
		newProfileCmd(),
		newSheetsCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		if errors.IsAppError(err) {
			fmt.Fprintf(os.Stderr, "%s: %v\n", errors.GetCode(err), err)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// samplingFlags are shared by design and evaluate
type samplingFlags struct {
	method     string
	confidence float64
	tolerable  float64
	expected   float64
	threshold  float64
	start      float64
	seed       uint64
	override   int

	itemColumn        string
	descriptionColumn string
	amountColumn      string
	auditedColumn     string
}

func (f *samplingFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.method, "method", string(sampling.MethodMUS), "Sampling method: mus|random")
	cmd.Flags().Float64Var(&f.confidence, "confidence", 0, "Confidence level, e.g. 0.95 (default from SAMPLER_CONFIDENCE_LEVEL)")
	cmd.Flags().Float64Var(&f.tolerable, "tolerable", 0, "Tolerable misstatement")
	cmd.Flags().Float64Var(&f.expected, "expected", 0, "Expected misstatement")
	cmd.Flags().StringVar(&f.itemColumn, "item-col", "", "Column holding the item identifier")
	cmd.Flags().StringVar(&f.descriptionColumn, "desc-col", "", "Column holding the item description")
	cmd.Flags().StringVar(&f.amountColumn, "amount-col", "", "Column holding the recorded amount")
}

// samplingConfig builds the engine configuration; the service validates it
func (f *samplingFlags) samplingConfig(cmd *cobra.Command, cfg *config.Config) sampling.SamplingConfig {
	sc := sampling.SamplingConfig{
		Method:                sampling.Method(f.method),
		ConfidenceLevel:       cfg.Sampling.ConfidenceLevel,
		TolerableMisstatement: f.tolerable,
		ExpectedMisstatement:  f.expected,
	}
	if cmd.Flags().Changed("confidence") {
		sc.ConfidenceLevel = f.confidence
	}
	if cmd.Flags().Changed("threshold") {
		sc.StratificationThreshold = &f.threshold
	}
	if cmd.Flags().Changed("start") {
		sc.RandomStart = &f.start
	}
	if cmd.Flags().Changed("seed") {
		sc.RandomSeed = &f.seed
	}
	return sc
}

func (f *samplingFlags) columnMapping() *sampling.ColumnMapping {
	mapping := sampling.ColumnMapping{
		ItemID:         f.itemColumn,
		Description:    f.descriptionColumn,
		RecordedAmount: f.amountColumn,
		AuditedAmount:  f.auditedColumn,
	}
	if mapping == (sampling.ColumnMapping{}) {
		return nil
	}
	return &mapping
}

func newDesignCmd() *cobra.Command {
	var flags samplingFlags
	var allSheets bool

	cmd := &cobra.Command{
		Use:   "design [population-file]",
		Short: "Design a sample over a population file",
		Long: `Stratify a population, take every high-value item and select the remainder sample.

Accepts .csv, .tsv and .xlsx files. Columns are detected from their headers unless
mapped explicitly.

Example: sampler design ledger.xlsx --tolerable 50000 --threshold 10000 --seed 2024`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, svc, err := bootstrap()
			if err != nil {
				return err
			}
			sc := flags.samplingConfig(cmd, cfg)
			if cmd.Flags().Changed("sample-size") {
				sc.SampleSizeOverride = &flags.override
			}
			data, name, err := readInput(args[0])
			if err != nil {
				return err
			}

			if allSheets {
				results, err := svc.DesignWorkbook(cmd.Context(), data, name, sc, flags.columnMapping())
				if err != nil {
					return err
				}
				return printJSON(results)
			}

			result, err := svc.DesignSample(cmd.Context(), data, name, sc, flags.columnMapping())
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	flags.register(cmd)
	cmd.Flags().Float64Var(&flags.threshold, "threshold", 0, "High-value stratification threshold (absolute amount)")
	cmd.Flags().Float64Var(&flags.start, "start", 0, "Pinned MUS random start in [0, interval)")
	cmd.Flags().Uint64Var(&flags.seed, "seed", 0, "Pinned seed for the random stream")
	cmd.Flags().IntVar(&flags.override, "sample-size", 0, "Random method sample size override")
	cmd.Flags().BoolVar(&allSheets, "all-sheets", false, "Design every worksheet of an Excel workbook")

	return cmd
}

func newEvaluateCmd() *cobra.Command {
	var flags samplingFlags
	var populationValue, interval float64
	var sampleSize int

	cmd := &cobra.Command{
		Use:   "evaluate [sample-file]",
		Short: "Evaluate a completed sample with recorded and audited amounts",
		Long: `Project the misstatements in a completed sample onto the population.

MUS samples use the Stringer bound; random samples use ratio projection.

Example: sampler evaluate tested.xlsx --tolerable 50000 --population-value 1000000 --sample-size 100 --interval 10000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, svc, err := bootstrap()
			if err != nil {
				return err
			}
			sc := flags.samplingConfig(cmd, cfg)
			params := sampling.EvaluationParams{PopulationValue: populationValue, SampleSize: sampleSize}
			if cmd.Flags().Changed("interval") {
				params.SamplingInterval = &interval
			}
			data, name, err := readInput(args[0])
			if err != nil {
				return err
			}

			result, err := svc.EvaluateSample(cmd.Context(), data, name, sc, params, flags.columnMapping())
			if err != nil {
				return err
			}
			return printJSON(result)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&flags.auditedColumn, "audited-col", "", "Column holding the audited amount")
	cmd.Flags().Float64Var(&populationValue, "population-value", 0, "Population book value from the design")
	cmd.Flags().IntVar(&sampleSize, "sample-size", 0, "Sample size from the design")
	cmd.Flags().Float64Var(&interval, "interval", 0, "MUS sampling interval (default population value / sample size)")

	return cmd
}

func newProfileCmd() *cobra.Command {
	var flags samplingFlags

	cmd := &cobra.Command{
		Use:   "profile [population-file]",
		Short: "Describe a population's amounts and suggest a high-value threshold",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, svc, err := bootstrap()
			if err != nil {
				return err
			}
			data, name, err := readInput(args[0])
			if err != nil {
				return err
			}

			profile, err := svc.ProfilePopulation(cmd.Context(), data, name, flags.columnMapping())
			if err != nil {
				return err
			}
			return printJSON(profile)
		},
	}

	cmd.Flags().StringVar(&flags.itemColumn, "item-col", "", "Column holding the item identifier")
	cmd.Flags().StringVar(&flags.amountColumn, "amount-col", "", "Column holding the recorded amount")

	return cmd
}

func newSheetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sheets [workbook]",
		Short: "List the worksheets of an Excel workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, name, err := readInput(args[0])
			if err != nil {
				return err
			}
			sheets, err := excel.NewDataReader(name).ListSheets(data)
			if err != nil {
				return err
			}
			return printJSON(sheets)
		},
	}
}

func bootstrap() (*config.Config, *app.SamplingService, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	patterns, err := columns.LoadFieldPatterns(cfg.Input.ColumnPatternsFile)
	if err != nil {
		return nil, nil, err
	}

	engine := sampler.NewEngine(sampler.EngineOptions{
		RoundingTolerance:       cfg.Sampling.RoundingTolerance,
		DefaultRandomSampleSize: cfg.Sampling.DefaultRandomSampleSize,
	})
	return cfg, app.NewSamplingService(columns.NewDetector(patterns), engine, cfg.Input.MaxParallelSheets), nil
}

// readInput loads a file named on the command line
func readInput(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", errors.WithCode(errors.CodeInvalidInput, errors.Wrapf(err, "failed to read %s", path))
	}
	return data, filepath.Base(path), nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
