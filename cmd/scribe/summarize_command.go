package main

import (
	"strings"

	"github.com/spf13/cobra"

	"scribe/internal/batch"
	"scribe/internal/logging"
	"scribe/internal/prompts"
)

func newSummarizeCommand(cctx *commandContext) *cobra.Command {
	var inputDir, outputDir string
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Summarize recognized text documents",
		Long: "Generate a summary and keyword list for every text file in the " +
			"input directory. Empty documents are skipped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cctx.ensureLogger()
			if err != nil {
				return err
			}

			in := strings.TrimSpace(inputDir)
			if in == "" {
				in = cfg.Paths.TextDir
			}
			out := strings.TrimSpace(outputDir)
			if out == "" {
				out = cfg.Paths.TextOutputDir
			}

			store := cctx.openLedger(cfg, logger)
			defer func() {
				if store != nil {
					_ = store.Close()
				}
			}()

			opts := []batch.SummarizerOption{
				batch.WithSummaryLogger(logging.NewComponentLogger(logger, "summarize")),
			}
			if store != nil {
				opts = append(opts, batch.WithSummaryLedger(store))
			}
			summarizer := batch.NewSummarizer(cctx.recognitionClient(cfg),
				prompts.NewCatalog(cfg.Paths.PromptsDir), opts...)

			stats, err := summarizer.SummarizeDirectory(cmd.Context(), in, out)
			if err != nil {
				return err
			}
			renderStats(cmd.OutOrStdout(), "summary pass", stats)
			return nil
		},
	}
	cmd.Flags().StringVarP(&inputDir, "input", "i", "", "Input directory of text files")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory for summaries")
	return cmd
}
