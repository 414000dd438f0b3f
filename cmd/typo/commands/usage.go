package commands

import (
	"encoding/json"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"github.com/yok-tottii/typo/internal/printer"
	"github.com/yok-tottii/typo/internal/usage"
)

var (
	usageMonth string
	usageJSON  bool
	usageAll   bool
	usageReset bool
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show request and token counts for a month",
	Long: `Show how many transformation requests were sent and the tokens they used.
The cost is an estimate based on the public per-token price.

Examples:
  typo usage
  typo usage --month 2025-01 --json
  typo usage --all
  typo usage --reset --month 2025-01`,
	Args: cobra.NoArgs,
	RunE: runUsage,
}

func init() {
	usageCmd.Flags().StringVar(&usageMonth, "month", "", "Month as YYYY-MM (current month by default)")
	usageCmd.Flags().BoolVar(&usageJSON, "json", false, "Print the summary as JSON")
	usageCmd.Flags().BoolVar(&usageAll, "all", false, "Show one line per recorded month")
	usageCmd.Flags().BoolVar(&usageReset, "reset", false, "Delete the records of the month")
	rootCmd.AddCommand(usageCmd)
}

type usageReport struct {
	usage.Summary
	Display  string              `json:"display"`
	ByAction []usage.ActionCount `json:"by_action"`
}

func runUsage(cmd *cobra.Command, args []string) error {
	tracker, err := usage.Open(configDir)
	if err != nil {
		return printer.Error("failed to open usage database", err.Error(), nil)
	}
	defer tracker.Close()

	month := usageMonth
	if month == "" {
		month = tracker.CurrentMonth()
	}

	if usageReset {
		if err := tracker.Reset(month); err != nil {
			return printer.Error("failed to reset usage", err.Error(), nil)
		}
		printer.Success("Usage of %s deleted\n", month)
		return nil
	}

	if usageAll {
		months, err := tracker.Months()
		if err != nil {
			return printer.Error("failed to read usage", err.Error(), nil)
		}
		if len(months) == 0 {
			printer.Info("No usage recorded\n")
		}
		for _, m := range months {
			summary, err := tracker.Summary(m)
			if err != nil {
				return printer.Error("failed to read usage", err.Error(), nil)
			}
			printer.Info("%s  %s\n", m, usage.FormatDisplay(summary))
		}
		return nil
	}

	summary, err := tracker.Summary(month)
	if err != nil {
		return printer.Error("failed to read usage", err.Error(), nil)
	}
	byAction, err := tracker.ByAction(month)
	if err != nil {
		return printer.Error("failed to read usage", err.Error(), nil)
	}

	if usageJSON {
		if byAction == nil {
			byAction = []usage.ActionCount{}
		}
		data, err := json.Marshal(usageReport{Summary: summary, Display: usage.FormatDisplay(summary), ByAction: byAction})
		if err != nil {
			return err
		}
		cmd.OutOrStdout().Write(pretty.Pretty(data))
		return nil
	}

	printer.Step("Usage for %s\n", month)
	printer.Info("  Requests:      %d\n", summary.Requests)
	printer.Info("  Input tokens:  %d\n", summary.InputTokens)
	printer.Info("  Output tokens: %d\n", summary.OutputTokens)
	printer.Info("  Estimate:      %s\n", usage.FormatDisplay(summary))
	for _, a := range byAction {
		printer.Info("    %-16s %d\n", a.Action, a.Requests)
	}
	return nil
}
