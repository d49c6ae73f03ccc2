package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"scribe/internal/config"
	"scribe/internal/fileutil"
	"scribe/internal/prompts"
)

type recognitionFlags struct {
	sheetPath string
	inputDir  string
	outputDir string
}

func (f *recognitionFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.sheetPath, "sheet", "", "Spreadsheet control file driving the batch")
	cmd.Flags().StringVarP(&f.inputDir, "input", "i", "", "Input directory (defaults to the configured one)")
	cmd.Flags().StringVarP(&f.outputDir, "output", "o", "", "Output directory (defaults to the configured one)")
}

func newOCRCommand(cctx *commandContext) *cobra.Command {
	var flags recognitionFlags
	cmd := &cobra.Command{
		Use:   "ocr [file]",
		Short: "Recognize printed PDF documents",
		Long: "Recognize printed PDF documents page by page. Without arguments the " +
			"configured PDF directory is processed; pass a single file or use --sheet " +
			"for a spreadsheet-controlled batch.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecognition(cctx, cmd, prompts.TaskOCR, "", args, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func newHandwritingCommand(cctx *commandContext) *cobra.Command {
	var flags recognitionFlags
	var language string
	cmd := &cobra.Command{
		Use:     "handwriting [file]",
		Aliases: []string{"htr"},
		Short:   "Recognize handwritten PDF documents",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lang := strings.TrimSpace(language)
			if lang == "" {
				cfg, err := cctx.ensureConfig()
				if err != nil {
					return err
				}
				lang = cfg.Recognition.Language
			}
			return runRecognition(cctx, cmd, prompts.TaskHTR, lang, args, flags)
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&language, "language", "l", "", "Handwriting language: french, arabic, or multilingual")
	return cmd
}

func newTranscribeCommand(cctx *commandContext) *cobra.Command {
	var flags recognitionFlags
	cmd := &cobra.Command{
		Use:   "transcribe [file]",
		Short: "Transcribe audio recordings segment by segment",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecognition(cctx, cmd, prompts.TaskTranscribe, "", args, flags)
		},
	}
	flags.register(cmd)
	return cmd
}

func runRecognition(cctx *commandContext, cmd *cobra.Command, task prompts.Task, language string, args []string, flags recognitionFlags) error {
	cfg, err := cctx.ensureConfig()
	if err != nil {
		return err
	}

	inputDir := strings.TrimSpace(flags.inputDir)
	outputDir := strings.TrimSpace(flags.outputDir)
	if task == prompts.TaskTranscribe {
		if inputDir == "" {
			inputDir = cfg.Paths.AudioDir
		}
		if outputDir == "" {
			outputDir = cfg.Paths.AudioOutputDir
		}
	} else {
		if inputDir == "" {
			inputDir = cfg.Paths.PDFDir
		}
		if outputDir == "" {
			outputDir = cfg.Paths.PDFOutputDir
		}
	}

	orchestrator, cleanup, err := cctx.newOrchestrator(task, language)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		source, err := config.ExpandPath(args[0])
		if err != nil {
			return err
		}
		doc, err := orchestrator.ProcessDocument(ctx, source)
		if err != nil {
			return err
		}
		stem := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
		outPath := filepath.Join(outputDir, stem+".txt")
		if err := fileutil.WriteTextFileAtomic(outPath, []byte(orchestrator.RenderOutput(filepath.Base(source), doc))); err != nil {
			return err
		}
		fmt.Fprintf(out, "Wrote %s (%d/%d units recognized, %.0f%% success)\n",
			outPath, doc.SuccessfulUnits, doc.TotalUnits, doc.SuccessRate()*100)
		return nil
	}

	if sheet := strings.TrimSpace(flags.sheetPath); sheet != "" {
		stats, err := orchestrator.ProcessSheet(ctx, sheet, inputDir)
		if err != nil {
			return err
		}
		renderStats(out, string(task)+" sheet pass", stats)
		return nil
	}

	stats, err := orchestrator.ProcessDirectory(ctx, inputDir, outputDir)
	if err != nil {
		return err
	}
	renderStats(out, string(task)+" directory pass", stats)
	return nil
}
