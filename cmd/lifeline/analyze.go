package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/JonnyWalker81/lifeline/internal/config"
	"github.com/JonnyWalker81/lifeline/internal/eventstore"
	"github.com/JonnyWalker81/lifeline/internal/logger"
	"github.com/JonnyWalker81/lifeline/internal/models"
	"github.com/JonnyWalker81/lifeline/internal/service"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a file of activity records",
	Long: `Read activity records from a JSON array or a CSV file with a header row
and write the analysis report as JSON.`,
	RunE: runAnalyze,
}

var analyzeFlags struct {
	input           string
	format          string
	output          string
	label           string
	timezone        string
	includeUnscored bool
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVarP(&analyzeFlags.input, "input", "i", "", "input file (- for stdin)")
	f.StringVar(&analyzeFlags.format, "format", "", "input format: json or csv (default from the file extension)")
	f.StringVarP(&analyzeFlags.output, "output", "o", "", "output file (default stdout)")
	f.StringVar(&analyzeFlags.label, "label", "", "qualifying label for interval detection (overrides config)")
	f.StringVar(&analyzeFlags.timezone, "timezone", "", "zone for timestamps without an offset (overrides config)")
	f.BoolVar(&analyzeFlags.includeUnscored, "include-unscored", false, "treat records without a confidence as scored")
	_ = analyzeCmd.MarkFlagRequired("input")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.SetDefault(newCLILogger(cfg))

	records, err := readRecords(cmd, analyzeFlags.input, analyzeFlags.format)
	if err != nil {
		return err
	}

	var overrides models.AnalyzeOptions
	if analyzeFlags.label != "" {
		overrides.QualifyingLabel = &analyzeFlags.label
	}
	if analyzeFlags.timezone != "" {
		overrides.Timezone = &analyzeFlags.timezone
	}
	if cmd.Flags().Changed("include-unscored") {
		overrides.IncludeUnscored = &analyzeFlags.includeUnscored
	}

	svc := service.NewAnalysisService(cfg.AnalysisOptions(), cfg.Location(), nil, nil)
	ctx := logger.WithLogger(cmd.Context(), logger.Default())
	report, err := svc.Analyze(ctx, records, &overrides)
	if err != nil {
		return err
	}

	return writeJSON(cmd, analyzeFlags.output, report)
}

func readRecords(cmd *cobra.Command, path, format string) ([]models.RawRecord, error) {
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
		if path == "-" {
			format = "json"
		}
	}

	var decode func(io.Reader) ([]models.RawRecord, error)
	switch format {
	case "json":
		decode = eventstore.DecodeJSON
	case "csv":
		decode = eventstore.DecodeCSV
	default:
		return nil, fmt.Errorf("unsupported input format %q (want json or csv)", format)
	}

	if path == "-" {
		return decode(cmd.InOrStdin())
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer f.Close()
	return decode(f)
}

func writeJSON(cmd *cobra.Command, path string, v any) error {
	var w io.Writer = cmd.OutOrStdout()
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// newCLILogger keeps stdout free for the report.
func newCLILogger(cfg *config.Config) logger.Logger {
	lc := cfg.LoggerConfig()
	lc.Output = os.Stderr
	return logger.NewSlogLogger(lc)
}
