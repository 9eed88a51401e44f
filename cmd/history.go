package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"promptchart/internal/clix"
)

var historyJSON bool

// historyCmd represents the base command for analysis history
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View recorded analyses",
	Long:  `Lists and shows analyses recorded in the database (database.dsn).`,
}

var listHistoryCmd = &cobra.Command{
	Use:         "list",
	Short:       "List recent analyses",
	Args:        cobra.NoArgs,
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

		items, err := appInstance.HistoryService.List(cmd.Context(), pagination.Limit, pagination.Offset)
		if err != nil {
			return fmt.Errorf("error listing analyses: %w", err)
		}
		if historyJSON {
			return writeJSON(cmd.OutOrStdout(), items)
		}

		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No analyses found.")
			return nil
		}

		table := tablewriter.NewWriter(cmd.OutOrStdout())
		table.SetHeader([]string{"ID", "Status", "Source", "Prompt", "Result", "Created At"})
		table.SetBorder(false)
		table.SetAutoWrapText(false)
		table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
		table.SetAlignment(tablewriter.ALIGN_LEFT)

		for _, a := range items {
			result := summarize(a.Categories, 3)
			if a.Error != "" {
				result = a.ErrorKind
			}
			table.Append([]string{
				a.ID.String(),
				statusTag(a.Status),
				a.Source,
				truncate(a.Prompt, 40),
				result,
				a.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			})
		}
		table.Render()
		return nil
	},
}

var showHistoryCmd = &cobra.Command{
	Use:         "show <id>",
	Short:       "Show one analysis",
	Args:        cobra.ExactArgs(1),
	Annotations: map[string]string{skipValidation: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		appInstance, err := GetAppFromContext(cmd.Context())
		if err != nil {
			return err
		}

		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid analysis ID %q: %w", args[0], err)
		}

		a, err := appInstance.HistoryService.Get(cmd.Context(), id)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if historyJSON {
			return writeJSON(out, a)
		}

		fmt.Fprintf(out, "ID:       %s\n", a.ID)
		fmt.Fprintf(out, "Status:   %s\n", statusTag(a.Status))
		fmt.Fprintf(out, "Variant:  %s\n", a.Variant)
		if a.Source != "" {
			fmt.Fprintf(out, "Source:   %s\n", sourceTag(a.Source))
		}
		if a.TaskID != nil {
			fmt.Fprintf(out, "Task:     %s\n", *a.TaskID)
		}
		fmt.Fprintf(out, "Duration: %dms\n", a.DurationMs)
		fmt.Fprintf(out, "Created:  %s\n", a.CreatedAt.Local().Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "Prompt:   %s\n", a.Prompt)
		if a.Error != "" {
			fmt.Fprintf(out, "Error:    %s (%s)\n", a.Error, a.ErrorKind)
			return nil
		}
		fmt.Fprintln(out)
		renderCategories(out, a.Categories)
		return nil
	},
}

func init() {
	clix.AddPaginationFlags(listHistoryCmd.Flags())
	historyCmd.PersistentFlags().BoolVar(&historyJSON, "json", false, "Print JSON")

	historyCmd.AddCommand(listHistoryCmd)
	historyCmd.AddCommand(showHistoryCmd)
	rootCmd.AddCommand(historyCmd)
}
