package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(countersCmd)
}

var countersCmd = &cobra.Command{
	Use:   "counters",
	Short: "Lists the meters that readings can be submitted for.",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := login(cmd.Context())
		if err != nil {
			return err
		}
		form, err := client.FetchCountersForm(cmd.Context())
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Row ID", "Value input", "Tariff", "Last value"})
		for _, field := range form.Fields {
			t.AppendRow(table.Row{
				field.RowID,
				formatText(field.ValueInput),
				field.TarifValue,
				formatAmount(field.LastValue),
			})
		}
		t.Render()
		return nil
	},
}
