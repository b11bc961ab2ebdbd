package tgnvoda

// Credentials identify one portal login and the personal account behind it.
type Credentials struct {
	Login     string
	Password  string
	AccountID string
}

type Account struct {
	AccountID  string  `json:"current_account_id"`
	HolderName *string `json:"holder_name"`
	Address    *string `json:"address"`
	Phone      *string `json:"phone"`
	Email      *string `json:"email"`
}

type Billing struct {
	ToPayNow               *float64 `json:"to_pay_now"`
	Currency               *string  `json:"currency"`
	OpeningDebtPeriodLabel *string  `json:"opening_debt_period_label"`
	OpeningDebtAmount      *float64 `json:"opening_debt_amount"`
	AccruedInPeriod        *float64 `json:"accrued_in_period"`
	Recalculation          *float64 `json:"recalculation"`
	PenaltyAccruedInPeriod *float64 `json:"penalty_accrued_in_period"`
	PaidAmount             *float64 `json:"paid_amount"`
	Period                 *string  `json:"period"`
}

type AccountBilling struct {
	Account Account `json:"account"`
	Billing Billing `json:"billing"`
}

// MeterFormField describes the inputs of one meter block on the counters page.
// Any of the input names may be nil when the block does not carry that input.
type MeterFormField struct {
	// RowID is parsed out of the block's `counter_<n>` id, empty if it could not be.
	RowID      string   `json:"row_id"`
	ValueInput *string  `json:"value_input"`
	RowIDInput *string  `json:"rowid_input"`
	TarifInput *string  `json:"tarif_input"`
	TarifValue string   `json:"tarif_value"`
	LastValue  *float64 `json:"last_value"`
}

// CountersForm is only good for a single submission, the token expires.
type CountersForm struct {
	SubmitURL string           `json:"submit_url"`
	CsrfToken string           `json:"-"`
	Fields    []MeterFormField `json:"fields"`
}

type AppliedReading struct {
	RowID     string   `json:"row_id"`
	Value     string   `json:"value"`
	LastValue *float64 `json:"last_value"`
}

type SubmitResult struct {
	Applied  []AppliedReading `json:"applied"`
	Success  bool             `json:"success"`
	Messages []string         `json:"messages"`
}

// HistoryEntry is one row of the reading history. Date and BillingMonth hold
// the raw portal text when it could not be parsed, Value and Consumption hold
// a float64 when numeric and the decoded JSON value otherwise.
type HistoryEntry struct {
	Name         string `json:"name"`
	Date         string `json:"date"`
	BillingMonth string `json:"billing_month"`
	Value        any    `json:"value"`
	Consumption  any    `json:"consumption"`
	Source       string `json:"source"`
}
