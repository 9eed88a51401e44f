package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"promptchart/internal/app"
	"promptchart/internal/clix"
	"promptchart/internal/fileingest"
	"promptchart/internal/services"
)

var (
	batchVariant string
	batchLocal   bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <file|dir>",
	Short: "Analyze one prompt per line of a file",
	Long: `Reads prompts from a file ("-" for stdin), one per line; blank lines and
lines starting with '#' are skipped. A directory contributes one prompt per
.txt, .md or .html file. Each prompt is queued for the worker, or analyzed in
this process with --local.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		prompts, err := loadBatchPrompts(cmd, appInstance, args[0])
		if err != nil {
			return err
		}
		if len(prompts) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No prompts found.")
			return nil
		}

		if batchLocal {
			return runBatchLocal(cmd, appInstance, prompts)
		}
		return runBatchQueued(cmd, appInstance, prompts)
	},
}

// loadBatchPrompts reads one prompt per line of a file or stdin, or one
// prompt per text file when source is a directory.
func loadBatchPrompts(cmd *cobra.Command, appInstance *app.App, source string) ([]string, error) {
	if source == "-" {
		return clix.ReadPrompts(cmd.InOrStdin())
	}

	fi, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open batch source: %w", err)
	}
	if !fi.IsDir() {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("failed to open batch file: %w", err)
		}
		defer f.Close()
		prompts, err := clix.ReadPrompts(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read batch file: %w", err)
		}
		return prompts, nil
	}

	files, err := fileingest.DiscoverPromptFiles(cmd.Context(), source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to discover prompt files: %w", err)
	}
	prompts := make([]string, 0, len(files))
	for _, f := range files {
		res, err := appInstance.InputProcessor.Process(cmd.Context(), f.Path)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %v\n", color.YellowString("SKIPPED"), f.Path, err)
			continue
		}
		prompts = append(prompts, res.Text)
	}
	return prompts, nil
}

func runBatchQueued(cmd *cobra.Command, appInstance *app.App, prompts []string) error {
	out := cmd.OutOrStdout()
	var queued, failed int
	for i, p := range prompts {
		a, err := appInstance.AnalysisService.Enqueue(cmd.Context(), p, batchVariant)
		if err != nil {
			if i == 0 && errors.Is(err, services.ErrQueueDisabled) {
				return fmt.Errorf("%w; use --local to analyze in-process", err)
			}
			failed++
			fmt.Fprintf(out, "%s %s: %v\n", color.RedString("ERROR"), truncate(p, 40), err)
			continue
		}
		queued++
		fmt.Fprintf(out, "%s %s %s\n", color.GreenString("Queued"), a.ID, truncate(p, 40))
	}
	fmt.Fprintf(out, "\nQueued %d prompts, %d failed.\n", queued, failed)
	return nil
}

func runBatchLocal(cmd *cobra.Command, appInstance *app.App, prompts []string) error {
	out := cmd.OutOrStdout()
	var ok, failed int
	for _, p := range prompts {
		res, err := appInstance.AnalysisService.Analyze(cmd.Context(), services.AnalyzeRequest{Prompt: p, Variant: batchVariant})
		if err != nil {
			failed++
			fmt.Fprintf(out, "%s %s: %v\n", color.RedString("FAILED"), truncate(p, 40), err)
			continue
		}
		ok++
		fmt.Fprintf(out, "%s [%s] %s -> %s\n", color.GreenString("OK"), sourceTag(string(res.Source)), truncate(p, 40), summarize(res.Categories, 5))
	}
	fmt.Fprintf(out, "\nAnalyzed %d prompts, %d failed.\n", ok, failed)
	return nil
}

func init() {
	batchCmd.Flags().StringVar(&batchVariant, "variant", "", "Instruction variant for every prompt")
	batchCmd.Flags().BoolVar(&batchLocal, "local", false, "Analyze in this process instead of queueing")
	rootCmd.AddCommand(batchCmd)
}
