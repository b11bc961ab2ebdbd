package commands

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

const portalDateLayout = "02.01.2006"

var (
	historyFrom string
	historyTo   string
)

func init() {
	historyCmd.Flags().StringVar(&historyFrom, "from", "", "Start date, DD.MM.YYYY. Defaults to one year ago.")
	historyCmd.Flags().StringVar(&historyTo, "to", "", "End date, DD.MM.YYYY. Defaults to today.")
	rootCmd.AddCommand(historyCmd)
}

// historyRange fills in missing bounds relative to now and checks the layout.
func historyRange(from, to string, now time.Time) (string, string, error) {
	if to == "" {
		to = now.Format(portalDateLayout)
	}
	if from == "" {
		from = now.AddDate(-1, 0, 0).Format(portalDateLayout)
	}
	for _, date := range []string{from, to} {
		_, err := time.Parse(portalDateLayout, date)
		if err != nil {
			return "", "", fmt.Errorf("date %q is not DD.MM.YYYY", date)
		}
	}
	return from, to, nil
}

var historyCmd = &cobra.Command{
	Use:   "history [--from DD.MM.YYYY] [--to DD.MM.YYYY]",
	Short: "Prints the meter reading history.",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to, err := historyRange(historyFrom, historyTo, time.Now())
		if err != nil {
			return err
		}
		_, client, err := login(cmd.Context())
		if err != nil {
			return err
		}
		entries, err := client.GetHistory(cmd.Context(), from, to)
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Meter", "Date", "Month", "Value", "Consumption", "Source"})
		for _, e := range entries {
			t.AppendRow(table.Row{e.Name, e.Date, e.BillingMonth, e.Value, e.Consumption, e.Source})
		}
		t.Render()
		return nil
	},
}
