package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"text/tabwriter"

	"github.com/anime-shed/first-aid-triage/internal/catalog"
	"github.com/anime-shed/first-aid-triage/internal/classifier"
	"github.com/anime-shed/first-aid-triage/internal/logger"
	"github.com/anime-shed/first-aid-triage/pkg/models"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type classifyOptions struct {
	workers  int
	asJSON   bool
	features bool
}

// fileResult is one line of `triage classify` output.
type fileResult struct {
	File           string                       `json:"file"`
	Classification models.ClassificationSummary `json:"classification"`
	Features       *models.FeatureVector        `json:"features,omitempty"`
}

func newRootCmd() *cobra.Command {
	var logLevel string

	root := &cobra.Command{
		Use:           "triage",
		Short:         "Classify injury photos and show first-aid guidance",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetOutput(cmd.ErrOrStderr())
			logger.SetLevel(logLevel)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(newClassifyCmd(), newInfoCmd())
	return root
}

func newClassifyCmd() *cobra.Command {
	opts := classifyOptions{}

	cmd := &cobra.Command{
		Use:   "classify FILE...",
		Short: "Classify one or more image files",
		Long: `Classify image files with the colour-statistics rule cascade.

Files that cannot be decoded are reported as "unknown" rather than failing
the whole batch. Results are printed in argument order.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd.OutOrStdout(), args, opts)
		},
	}
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", runtime.NumCPU(), "Number of concurrent classifications")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "Print results as JSON")
	cmd.Flags().BoolVar(&opts.features, "features", false, "Include colour features in table output")
	return cmd
}

func runClassify(out io.Writer, files []string, opts classifyOptions) error {
	inputs := make([][]byte, len(files))
	for i, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading %s: %w", file, err)
		}
		inputs[i] = data
	}

	results := classifier.ClassifyBatch(classifier.NewInjuryClassifier(), inputs, opts.workers)
	instructions := catalog.Default()

	rows := make([]fileResult, len(results))
	for i, result := range results {
		record := instructions.Lookup(result.Category)
		rows[i] = fileResult{
			File: files[i],
			Classification: models.ClassificationSummary{
				Category:   result.Category.String(),
				Name:       record.Name,
				Confidence: result.Confidence,
				Severity:   string(record.Severity),
			},
		}
		if f := result.Features; f != nil {
			rows[i].Features = &models.FeatureVector{
				AvgRed:       f.AvgRed,
				AvgGreen:     f.AvgGreen,
				AvgBlue:      f.AvgBlue,
				RedVariance:  f.RedVariance,
				RedDominance: f.RedDominance,
			}
		} else {
			logger.WithFields(logrus.Fields{"file": files[i]}).Warn("Image could not be decoded")
		}
	}

	if opts.asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	header := "FILE\tCATEGORY\tCONFIDENCE\tSEVERITY"
	if opts.features {
		header += "\tAVG_R\tAVG_G\tAVG_B\tRED_VAR\tRED_DOM"
	}
	fmt.Fprintln(tw, header)
	for _, row := range rows {
		line := fmt.Sprintf("%s\t%s\t%.2f\t%s",
			filepath.Base(row.File), row.Classification.Category, row.Classification.Confidence, row.Classification.Severity)
		if opts.features {
			if f := row.Features; f != nil {
				line += fmt.Sprintf("\t%.1f\t%.1f\t%.1f\t%.1f\t%.1f", f.AvgRed, f.AvgGreen, f.AvgBlue, f.RedVariance, f.RedDominance)
			} else {
				line += strings.Repeat("\t-", 5)
			}
		}
		fmt.Fprintln(tw, line)
	}
	return tw.Flush()
}

func newInfoCmd() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Show supported categories and safety information",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd.OutOrStdout(), category)
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "Print the full guidance for one category")
	return cmd
}

func runInfo(out io.Writer, category string) error {
	instructions := catalog.Default()

	if category != "" {
		c := classifier.Category(category)
		if !c.Valid() {
			return fmt.Errorf("unknown category %q", category)
		}
		printRecord(out, c, instructions.Lookup(c))
		return nil
	}

	info := instructions.ModelInfo()
	fmt.Fprintf(out, "Model: %s\n%s\n\n", info.Type, info.Note)
	fmt.Fprintln(out, "Supported categories:")
	for _, c := range instructions.Categories() {
		record := instructions.Lookup(c)
		fmt.Fprintf(out, "  %-10s %s (%s)\n", c, record.Name, record.Severity)
	}

	fmt.Fprintf(out, "\n%s\n\nDo not use for:\n", instructions.Disclaimer())
	for _, exclusion := range instructions.SafetyExclusions() {
		fmt.Fprintf(out, "  - %s\n", exclusion)
	}
	return nil
}

func printRecord(out io.Writer, c classifier.Category, record catalog.Record) {
	fmt.Fprintf(out, "%s [%s] severity: %s\n", record.Name, c, record.Severity)
	printList(out, "Immediate steps", record.ImmediateSteps, true)
	printList(out, "Warning signs", record.WarningSigns, false)
	fmt.Fprintf(out, "\nWhen to seek help:\n  %s\n", record.WhenToSeekHelp)
	if len(record.AdditionalTips) > 0 {
		printList(out, "Additional tips", record.AdditionalTips, false)
	}
}

func printList(out io.Writer, title string, items []string, numbered bool) {
	fmt.Fprintf(out, "\n%s:\n", title)
	for i, item := range items {
		if numbered {
			fmt.Fprintf(out, "  %d. %s\n", i+1, item)
		} else {
			fmt.Fprintf(out, "  - %s\n", item)
		}
	}
}
