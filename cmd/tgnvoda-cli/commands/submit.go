package commands

import (
	"fmt"
	"strings"

	"tgnvoda/lib/textutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(submitCmd)
}

// parseReadings turns "<rowId>=<value>" arguments into readings.
func parseReadings(args []string) (map[string]float64, error) {
	readings := map[string]float64{}
	for _, arg := range args {
		rowID, raw, ok := strings.Cut(arg, "=")
		rowID = strings.TrimSpace(rowID)
		if !ok || rowID == "" {
			return nil, fmt.Errorf("expected <rowId>=<value>, got %q", arg)
		}
		value, ok := textutil.ParseFloatLoose(raw)
		if !ok {
			return nil, fmt.Errorf("reading for %s is not a number: %q", rowID, raw)
		}
		readings[rowID] = value
	}
	return readings, nil
}

var submitCmd = &cobra.Command{
	Use:   "submit <rowId>=<value>...",
	Short: "Submits meter readings, row ids are listed by the counters command.",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		readings, err := parseReadings(args)
		if err != nil {
			return err
		}
		_, client, err := login(cmd.Context())
		if err != nil {
			return err
		}
		result, err := client.SubmitReadings(cmd.Context(), readings)
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Row ID", "Submitted", "Previous"})
		for _, applied := range result.Applied {
			t.AppendRow(table.Row{applied.RowID, applied.Value, formatAmount(applied.LastValue)})
		}
		t.Render()

		for _, message := range result.Messages {
			fmt.Println(message)
		}
		if !result.Success {
			return fmt.Errorf("portal rejected the readings")
		}
		return nil
	},
}
