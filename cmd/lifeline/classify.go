package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/JonnyWalker81/lifeline/internal/classifier"
	"github.com/JonnyWalker81/lifeline/internal/config"
	"github.com/JonnyWalker81/lifeline/internal/logger"
	"github.com/JonnyWalker81/lifeline/internal/metrics"
	"github.com/JonnyWalker81/lifeline/internal/models"
	"github.com/JonnyWalker81/lifeline/internal/service"
	"github.com/spf13/cobra"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify raw texts into activity records",
	Long: `Read a JSON array of {"timestamp", "text"} items, label each text with
the zero-shot classifier and write the resulting records and failures as
JSON. The records can be passed straight to "lifeline analyze".`,
	RunE: runClassify,
}

var classifyFlags struct {
	input    string
	output   string
	category string
}

func init() {
	f := classifyCmd.Flags()
	f.StringVarP(&classifyFlags.input, "input", "i", "", "JSON file of texts (- for stdin)")
	f.StringVarP(&classifyFlags.output, "output", "o", "", "output file (default stdout)")
	f.StringVar(&classifyFlags.category, "category", "", "label set: daily_routine, life_events or general_activities (default by hour of day)")
	_ = classifyCmd.MarkFlagRequired("input")
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.SetDefault(newCLILogger(cfg))

	if cfg.Classifier.APIToken == "" {
		return errors.New("no classifier API token configured (set HUGGINGFACE_API_TOKEN)")
	}

	items, err := readTextItems(cmd, classifyFlags.input)
	if err != nil {
		return err
	}

	client := classifier.NewClient(cfg.ClassifierClientConfig(), metrics.New())
	svc := service.NewClassificationService(classifier.NewActivityClassifier(client, cfg.ActivityOptions()))

	ctx := logger.WithLogger(cmd.Context(), logger.Default())
	batch, err := svc.ClassifyBatch(ctx, &models.ClassifyRequest{Items: items, Category: classifyFlags.category})
	if err != nil {
		return err
	}

	return writeJSON(cmd, classifyFlags.output, batch)
}

func readTextItems(cmd *cobra.Command, path string) ([]models.TextItem, error) {
	var items []models.TextItem
	if path == "-" {
		if err := json.NewDecoder(cmd.InOrStdin()).Decode(&items); err != nil {
			return nil, fmt.Errorf("failed to decode texts: %w", err)
		}
		return items, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode texts: %w", err)
	}
	return items, nil
}
