package tgnvoda

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"tgnvoda/lib/htmlutil"
	"tgnvoda/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// PageParser holds every assumption about the portal's markup, the Client
// only deals with the session and hands documents over to it.
type PageParser interface {
	// LoginToken returns the csrf token of the login page.
	LoginToken(doc *goquery.Document) (string, bool)
	// IsLoggedIn reports whether the page was rendered for a logged in user.
	IsLoggedIn(doc *goquery.Document) bool
	AccountBilling(doc *goquery.Document, accountID string) AccountBilling
	// CountersForm returns ErrFormNotFound or ErrCsrfMissing when the page
	// does not hold a usable readings form.
	CountersForm(doc *goquery.Document, pageURL string) (CountersForm, error)
	SubmitAlerts(doc *goquery.Document) (success bool, messages []string)
	// History decodes the counters history endpoint, rows that do not fit
	// the expected layout are skipped and reported through skipped.
	History(body []byte) (entries []HistoryEntry, skipped []error, err error)
}

const (
	iconAccount   = "mdi-account"
	iconAddress   = "mdi-map-marker"
	iconPhone     = "mdi-phone"
	iconEmail     = "mdi-email"
	emailFallback = ".navbar-user .profile-link span"

	toPaySelector      = ".widget-right .widget-section3 a"
	billingRowSelector = ".widget-right .widget-section2 .row"
	billingKeySelector = ".text-col-left"
	billingValSelector = ".text-col-right"

	labelOpeningDebtPrefix = "Долг на"
	labelAccrued           = "Начислено"
	labelPenaltyMarker     = "пени"
	labelPenaltyAccrued    = "Начислено пени"
	labelRecalculation     = "Перерасчет"
	labelPaid              = "Оплачено"

	currencyRUB = "RUB"

	countersFormSelector  = "form#sendCountersValues"
	meterBlockSelector    = "div[id^='counter_'].block-sch"
	valueInputSelector    = "input[name^='counters'][name$='[value]']"
	rowIDInputSelector    = "input[name^='counters'][name$='[rowId]']"
	tarifInputSelector    = "input[name^='counters'][name$='[tarif]']"
	lastValueSelector     = ".block-note.ml-auto.text-right"
	defaultTarif          = "0"
	alertSelector         = ".alerts .alert"
	loggedInMarker        = ".navbar-user"
	passwordInputSelector = `input[name="password"]`
)

var submitFailureMarkers = []string{"ошиб", "некоррект"}

var (
	periodRegex    = regexp.MustCompile(`(?i)начало\s+(.+)`)
	shortYearRegex = regexp.MustCompile(`['’](\d{2})\b`)
	counterIDRegex = regexp.MustCompile(`counter_(\d+)`)
	monthKeyRegex  = regexp.MustCompile(`^(\d{2})\.(\d{4})`)
)

// LKParser parses the lk.tgnvoda.ru personal account pages.
type LKParser struct{}

var _ PageParser = LKParser{}

func (LKParser) LoginToken(doc *goquery.Document) (string, bool) {
	token := htmlutil.ExtractCsrfToken(doc)
	if token == nil {
		return "", false
	}
	return *token, true
}

func (LKParser) IsLoggedIn(doc *goquery.Document) bool {
	return doc.Find(loggedInMarker).Length() > 0 &&
		doc.Find(passwordInputSelector).Length() == 0
}

func (LKParser) AccountBilling(doc *goquery.Document, accountID string) AccountBilling {
	email := htmlutil.ExtractByIcon(doc, iconEmail)
	if email == nil {
		email = nonEmpty(htmlutil.Text(doc.Find(emailFallback).First()))
	}
	account := Account{
		AccountID:  accountID,
		HolderName: htmlutil.ExtractByIcon(doc, iconAccount),
		Address:    htmlutil.ExtractByIcon(doc, iconAddress),
		Phone:      htmlutil.ExtractByIcon(doc, iconPhone),
		Email:      email,
	}

	toPay := textutil.ParseAmount(htmlutil.Text(doc.Find(toPaySelector).First()))
	rows := htmlutil.KeyValueRows(doc, billingRowSelector, billingKeySelector, billingValSelector)

	billing := Billing{
		ToPayNow: toPay,
		AccruedInPeriod: findAmount(rows, func(k string) bool {
			return strings.Contains(k, labelAccrued) && !strings.Contains(k, labelPenaltyMarker)
		}),
		PenaltyAccruedInPeriod: findAmount(rows, func(k string) bool {
			return strings.Contains(k, labelPenaltyAccrued)
		}),
		Recalculation: exactAmount(rows, labelRecalculation),
		PaidAmount:    exactAmount(rows, labelPaid),
	}
	if toPay != nil {
		currency := currencyRUB
		billing.Currency = &currency
	}

	openingLabel, openingValue, ok := rows.Find(func(k string) bool {
		return strings.HasPrefix(k, labelOpeningDebtPrefix)
	})
	if ok {
		billing.OpeningDebtPeriodLabel = &openingLabel
		billing.OpeningDebtAmount = textutil.ParseAmount(openingValue)
		billing.Period = PeriodFromLabel(openingLabel)
	}

	return AccountBilling{Account: account, Billing: billing}
}

// PeriodFromLabel takes the text after "начало" in an opening debt label and
// expands a two digit year, "Долг на начало янв'25" gives "янв 2025".
func PeriodFromLabel(label string) *string {
	match := periodRegex.FindStringSubmatch(label)
	if len(match) < 2 {
		return nil
	}
	period := strings.TrimSpace(match[1])
	period = shortYearRegex.ReplaceAllString(period, " 20$1")
	return nonEmpty(period)
}

func findAmount(rows *htmlutil.OrderedMap, match func(string) bool) *float64 {
	_, value, ok := rows.Find(match)
	if !ok {
		return nil
	}
	return textutil.ParseAmount(value)
}

func exactAmount(rows *htmlutil.OrderedMap, key string) *float64 {
	value, ok := rows.Get(key)
	if !ok {
		return nil
	}
	return textutil.ParseAmount(value)
}

func (LKParser) CountersForm(doc *goquery.Document, pageURL string) (CountersForm, error) {
	form := doc.Find(countersFormSelector).First()
	if form.Length() == 0 {
		return CountersForm{}, ErrFormNotFound
	}

	token := strings.TrimSpace(form.Find(`input[name="_token"]`).First().AttrOr("value", ""))
	if token == "" {
		if fallback := htmlutil.ExtractCsrfToken(doc); fallback != nil {
			token = *fallback
		}
	}
	if token == "" {
		return CountersForm{}, ErrCsrfMissing
	}

	fields := []MeterFormField{}
	doc.Find(meterBlockSelector).Each(func(_ int, block *goquery.Selection) {
		field := MeterFormField{TarifValue: defaultTarif}

		match := counterIDRegex.FindStringSubmatch(block.AttrOr("id", ""))
		if len(match) == 2 {
			field.RowID = match[1]
		}

		field.ValueInput = attrPtr(block.Find(valueInputSelector).First(), "name")
		field.RowIDInput = attrPtr(block.Find(rowIDInputSelector).First(), "name")

		tarif := block.Find(tarifInputSelector).First()
		field.TarifInput = attrPtr(tarif, "name")
		if value := strings.TrimSpace(tarif.AttrOr("value", "")); value != "" {
			field.TarifValue = value
		}

		note := block.Find(lastValueSelector).First()
		if note.Length() > 0 {
			field.LastValue = textutil.ParseLeadingDecimal(htmlutil.Text(note))
		}

		fields = append(fields, field)
	})

	return CountersForm{
		SubmitURL: pageURL,
		CsrfToken: token,
		Fields:    fields,
	}, nil
}

func (LKParser) SubmitAlerts(doc *goquery.Document) (bool, []string) {
	success := true
	messages := []string{}
	doc.Find(alertSelector).Each(func(_ int, alert *goquery.Selection) {
		text := htmlutil.Text(alert)
		if textutil.ContainsAnyFold(text, submitFailureMarkers) {
			success = false
		}
		if text != "" {
			messages = append(messages, text)
		}
	})
	return success, messages
}

// positions of the cells in a counters history row, cell 0 is unused
const (
	historyColName        = 1
	historyColDate        = 2
	historyColPeriod      = 3
	historyColValue       = 4
	historyColConsumption = 5
	historyColSource      = 6
	historyRowWidth       = 7
)

func (LKParser) History(body []byte) ([]HistoryEntry, []error, error) {
	var rows []json.RawMessage
	err := json.Unmarshal(body, &rows)
	if err != nil {
		return nil, nil, fmt.Errorf("decode history: %w", err)
	}

	entries := []HistoryEntry{}
	skipped := []error{}
	for i, raw := range rows {
		var cells []json.RawMessage
		err := json.Unmarshal(raw, &cells)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("row %d: %w", i, err))
			continue
		}
		if len(cells) < historyRowWidth {
			skipped = append(skipped, fmt.Errorf("row %d: expected %d cells, got %d", i, historyRowWidth, len(cells)))
			continue
		}

		date := htmlutil.StripTags(cellText(cells[historyColDate]))
		period := htmlutil.StripTags(cellText(cells[historyColPeriod]))

		entries = append(entries, HistoryEntry{
			Name:         cellText(cells[historyColName]),
			Date:         ParseHistoryDate(date),
			BillingMonth: ParseMonthKey(period),
			Value:        coerceNumber(cells[historyColValue]),
			Consumption:  coerceNumber(cells[historyColConsumption]),
			Source:       cellText(cells[historyColSource]),
		})
	}
	return entries, skipped, nil
}

// ParseHistoryDate converts D.M.YYYY (zero padded or not) into an ISO date,
// anything else is returned unchanged.
func ParseHistoryDate(text string) string {
	parsed, err := time.Parse("2.1.2006", text)
	if err != nil {
		return text
	}
	return parsed.Format(time.DateOnly)
}

// ParseMonthKey converts a period starting with MM.YYYY into YYYY-MM,
// anything else is returned unchanged.
func ParseMonthKey(text string) string {
	match := monthKeyRegex.FindStringSubmatch(text)
	if len(match) < 3 {
		return text
	}
	return fmt.Sprintf("%s-%s", match[2], match[1])
}

func cellText(raw json.RawMessage) string {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "null" {
		return ""
	}
	return trimmed
}

func coerceNumber(raw json.RawMessage) any {
	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return string(raw)
	}
	switch v := value.(type) {
	case float64:
		return v
	case string:
		if number, ok := textutil.ParseFloatLoose(v); ok {
			return number
		}
		return v
	}
	return value
}

func attrPtr(sel *goquery.Selection, attr string) *string {
	if sel.Length() == 0 {
		return nil
	}
	value, ok := sel.Attr(attr)
	if !ok || value == "" {
		return nil
	}
	return &value
}

func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
