package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"promptchart/internal/clix"
)

// costCmd represents the base command for cost operations.
var costCmd = &cobra.Command{
	Use:   "cost",
	Short: "View AI usage costs",
	Long:  `Provides subcommands to list detailed AI usage logs and view cost summaries.`,
}

// costListCmd represents the command to list cost logs.
var costListCmd = &cobra.Command{
	Use:         "list",
	Short:       "List detailed AI usage logs",
	Long:        `Displays a paginated list of recorded AI API calls with associated costs and token counts.`,
	Annotations: map[string]string{skipValidation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		pagination, err := clix.ParsePagination(cmd.Flags())
		if err != nil {
			return fmt.Errorf("invalid pagination flags: %w", err)
		}

		logs, err := appInstance.CostService.ListUsage(cmd.Context(), pagination.Limit, pagination.Offset)
		if err != nil {
			return fmt.Errorf("failed to list cost logs: %w", err)
		}

		if len(logs) == 0 {
			fmt.Println("No cost logs found.")
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"ID", "Timestamp", "Provider", "Model", "In Tokens", "Out Tokens", "Cost", "Analysis"})
		table.SetBorder(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)

		for _, l := range logs {
			analysisID := "N/A"
			if l.AnalysisID != nil {
				analysisID = l.AnalysisID.String()
			}
			table.Append([]string{
				strconv.FormatInt(l.ID, 10),
				l.Timestamp.Local().Format("2006-01-02 15:04:05"),
				l.ProviderName,
				l.ModelName,
				strconv.Itoa(l.InputTokens),
				strconv.Itoa(l.OutputTokens),
				fmt.Sprintf("%.8f", l.Cost),
				analysisID,
			})
		}
		table.Render()

		fmt.Printf("\nDisplayed %d logs.\n", len(logs))
		return nil
	},
}

// costSummaryCmd represents the command to view cost summary.
var costSummaryCmd = &cobra.Command{
	Use:         "summary",
	Short:       "Show summary of total AI costs and token usage",
	Annotations: map[string]string{skipValidation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		sum, err := appInstance.CostService.GetSummary(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to get cost summary: %w", err)
		}

		fmt.Println("AI Usage Cost Summary:")
		fmt.Println("----------------------")
		fmt.Printf("Calls:               %d\n", sum.Calls)
		fmt.Printf("Total Cost:          $%.6f\n", sum.TotalCost)
		fmt.Printf("Total Input Tokens:  %d\n", sum.TotalInputTokens)
		fmt.Printf("Total Output Tokens: %d\n", sum.TotalOutputTokens)
		fmt.Println("----------------------")

		return nil
	},
}

func init() {
	clix.AddPaginationFlags(costListCmd.Flags())

	costCmd.AddCommand(costListCmd)
	costCmd.AddCommand(costSummaryCmd)
	rootCmd.AddCommand(costCmd)
}
