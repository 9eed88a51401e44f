package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"promptchart/internal/services"
	"promptchart/pkg/category"
)

var (
	analyzeInput   string
	analyzeVariant string
	analyzeJSON    bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text]",
	Short: "Analyze a prompt and print its percentage breakdown",
	Long: `Runs the extraction pipeline locally. The prompt is taken from the
arguments, or from --input (a file path, an http(s) URL, or "-" for stdin).`,
	Example: `  promptchart analyze "60% rent, 30% food and 10% savings"
  promptchart analyze --input survey.html --variant age_demographics
  cat notes.txt | promptchart analyze --input - --json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		appInstance, err := GetAppFromContext(ctx)
		if err != nil {
			return err
		}

		prompt := strings.Join(args, " ")
		if analyzeInput != "" {
			if prompt != "" {
				return fmt.Errorf("pass either text arguments or --input, not both")
			}
			res, err := appInstance.InputProcessor.Process(ctx, analyzeInput)
			if err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			prompt = res.Text
		}

		res, err := appInstance.AnalysisService.Analyze(ctx, services.AnalyzeRequest{Prompt: prompt, Variant: analyzeVariant})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if analyzeJSON {
			cats := res.Categories
			if cats == nil {
				cats = []category.Category{}
			}
			return writeJSON(out, cats)
		}

		fmt.Fprintf(out, "Source: %s  Variant: %s  Analysis: %s\n\n", sourceTag(string(res.Source)), res.Variant, res.AnalysisID)
		renderCategories(out, res.Categories)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeInput, "input", "i", "", "Read the prompt from a file, URL or '-' for stdin")
	analyzeCmd.Flags().StringVar(&analyzeVariant, "variant", "", "Instruction variant (general or age_demographics); defaults to model.variant")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the categories as JSON")
	rootCmd.AddCommand(analyzeCmd)
}
