package commands

import (
	"tgnvoda/internal/components/chrono"
	"tgnvoda/internal/components/telemetry"
	"tgnvoda/internal/coordinator"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sensorsCmd)
}

var sensorsCmd = &cobra.Command{
	Use:   "sensors",
	Short: "Runs a single refresh and prints the resulting sensor states.",
	RunE: func(cmd *cobra.Command, args []string) error {
		account, err := loadAccount()
		if err != nil {
			return err
		}
		client, err := newClient(account)
		if err != nil {
			return err
		}
		clock, err := chrono.NewStandardImpl()
		if err != nil {
			return err
		}
		c, err := coordinator.New(account.EntryID(), client, coordinator.NewEventBus(), clock, telemetry.SlogAPI{})
		if err != nil {
			return err
		}
		err = c.Refresh(cmd.Context())
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"Unique ID", "Name", "Value", "Unit", "Icon", "Available"})
		for _, s := range c.Sensors() {
			t.AppendRow(table.Row{s.UniqueID, s.Name, formatAmount(s.Value), s.Unit, s.Icon, s.Available})
		}
		t.AppendFooter(table.Row{"Updated", c.Snapshot().UpdatedAt.Format("2006-01-02 15:04:05 MST")})
		t.Render()
		return nil
	},
}
