package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(billingCmd)
}

var billingCmd = &cobra.Command{
	Use:   "billing",
	Short: "Prints the account holder and the current billing period.",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, client, err := login(cmd.Context())
		if err != nil {
			return err
		}
		data, err := client.FetchAccountAndBilling(cmd.Context())
		if err != nil {
			return err
		}

		account := newTable()
		account.AppendHeader(table.Row{"Account", "Value"})
		account.AppendRows([]table.Row{
			{"Account ID", data.Account.AccountID},
			{"Holder", formatText(data.Account.HolderName)},
			{"Address", formatText(data.Account.Address)},
			{"Phone", formatText(data.Account.Phone)},
			{"Email", formatText(data.Account.Email)},
		})
		account.Render()

		bill := data.Billing
		billing := newTable()
		billing.AppendHeader(table.Row{"Billing", "Value"})
		billing.AppendRows([]table.Row{
			{"Period", formatText(bill.Period)},
			{formatText(bill.OpeningDebtPeriodLabel), formatAmount(bill.OpeningDebtAmount)},
			{"Accrued", formatAmount(bill.AccruedInPeriod)},
			{"Penalty accrued", formatAmount(bill.PenaltyAccruedInPeriod)},
			{"Recalculation", formatAmount(bill.Recalculation)},
			{"Paid", formatAmount(bill.PaidAmount)},
		})
		billing.AppendFooter(table.Row{"To pay now " + formatText(bill.Currency), formatAmount(bill.ToPayNow)})
		billing.Render()
		return nil
	},
}
