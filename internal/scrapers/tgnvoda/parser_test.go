package tgnvoda

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	_ "embed"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

//go:embed testdata/login.html
var loginPage []byte

//go:embed testdata/logged_out.html
var loggedOutPage []byte

//go:embed testdata/account.html
var accountPage []byte

//go:embed testdata/counters.html
var countersPage []byte

//go:embed testdata/submit_ok.html
var submitOkPage []byte

//go:embed testdata/submit_error.html
var submitErrorPage []byte

//go:embed testdata/history.json
var historyBody []byte

func document(t testing.TB, page []byte) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(bytes.NewBuffer(page))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func strPtr(s string) *string {
	return &s
}

func floatPtr(f float64) *float64 {
	return &f
}

func TestLoginToken(t *testing.T) {
	parser := LKParser{}

	token, ok := parser.LoginToken(document(t, loginPage))
	require.True(t, ok)
	require.Equal(t, "login-token-1", token)

	_, ok = parser.LoginToken(document(t, []byte(`<html><body><form></form></body></html>`)))
	require.False(t, ok)
}

func TestIsLoggedIn(t *testing.T) {
	parser := LKParser{}
	require.True(t, parser.IsLoggedIn(document(t, accountPage)))
	require.False(t, parser.IsLoggedIn(document(t, loginPage)))
	require.False(t, parser.IsLoggedIn(document(t, loggedOutPage)))
}

func TestAccountBilling(t *testing.T) {
	result := LKParser{}.AccountBilling(document(t, accountPage), "1234567")

	expected := AccountBilling{
		Account: Account{
			AccountID:  "1234567",
			HolderName: strPtr("Петров Петр Петрович"),
			Address:    strPtr("г. Таганрог, ул. Петровская, д. 1, кв. 2"),
			Phone:      strPtr("+7 (8634) 00-00-00"),
			Email:      strPtr("fallback@example.com"),
		},
		Billing: Billing{
			ToPayNow:               floatPtr(2500),
			Currency:               strPtr("RUB"),
			OpeningDebtPeriodLabel: strPtr("Долг на начало дек'24"),
			OpeningDebtAmount:      floatPtr(1000),
			AccruedInPeriod:        floatPtr(1650.40),
			Recalculation:          floatPtr(-50),
			PenaltyAccruedInPeriod: floatPtr(12.30),
			PaidAmount:             floatPtr(100),
			Period:                 strPtr("дек 2024"),
		},
	}
	if diff := cmp.Diff(expected, result); diff != "" {
		t.Fatalf("account billing mismatch (-want +got):\n%s", diff)
	}
}

func TestAccountBillingLoggedOut(t *testing.T) {
	result := LKParser{}.AccountBilling(document(t, loggedOutPage), "1234567")

	require.Equal(t, AccountBilling{Account: Account{AccountID: "1234567"}}, result)
}

func TestAccountBillingEmailIcon(t *testing.T) {
	page := `<div><span><i class="mdi mdi-email"></i> icon@example.com</span></div>
		<div class="navbar-user"><a class="profile-link"><span>fallback@example.com</span></a></div>`
	result := LKParser{}.AccountBilling(document(t, []byte(page)), "1")

	require.Equal(t, strPtr("icon@example.com"), result.Account.Email)
	require.Nil(t, result.Billing.ToPayNow)
	require.Nil(t, result.Billing.Currency)
}

func TestPeriodFromLabel(t *testing.T) {
	cases := []struct {
		label  string
		expect *string
	}{
		{label: "Долг на начало янв'25", expect: strPtr("янв 2025")},
		{label: "Долг на начало дек'24", expect: strPtr("дек 2024")},
		{label: "Долг на НАЧАЛО мая’23", expect: strPtr("мая 2023")},
		{label: "Долг на начало периода", expect: strPtr("периода")},
		{label: "Долг на 01.12.2024", expect: nil},
	}

	for _, test := range cases {
		test := test
		t.Run(test.label, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, test.expect, PeriodFromLabel(test.label))
		})
	}
}

func TestCountersForm(t *testing.T) {
	form, err := LKParser{}.CountersForm(document(t, countersPage), "https://lk.tgnvoda.ru/account/1234567/counters")
	require.NoError(t, err)

	expected := CountersForm{
		SubmitURL: "https://lk.tgnvoda.ru/account/1234567/counters",
		CsrfToken: "form-token-1",
		Fields: []MeterFormField{
			{
				RowID:      "101",
				ValueInput: strPtr("counters[101][value]"),
				RowIDInput: strPtr("counters[101][rowId]"),
				TarifInput: strPtr("counters[101][tarif]"),
				TarifValue: "2",
				LastValue:  floatPtr(123.45),
			},
			{
				RowID:      "202",
				ValueInput: strPtr("counters[202][value]"),
				RowIDInput: strPtr("counters[202][rowId]"),
				TarifInput: strPtr("counters[202][tarif]"),
				TarifValue: "0",
			},
			{
				RowID:      "303",
				RowIDInput: strPtr("counters[303][rowId]"),
				TarifValue: "0",
			},
		},
	}
	if diff := cmp.Diff(expected, form); diff != "" {
		t.Fatalf("counters form mismatch (-want +got):\n%s", diff)
	}
}

func TestCountersFormErrors(t *testing.T) {
	parser := LKParser{}

	_, err := parser.CountersForm(document(t, loginPage), "")
	require.ErrorIs(t, err, ErrFormNotFound)

	noToken := `<form id="sendCountersValues"><input name="_token" value=""></form>`
	_, err = parser.CountersForm(document(t, []byte(noToken)), "")
	require.ErrorIs(t, err, ErrCsrfMissing)

	metaToken := `<html><head><meta name="csrf-token" content="meta-1"></head>
		<body><form id="sendCountersValues"></form></body></html>`
	form, err := parser.CountersForm(document(t, []byte(metaToken)), "")
	require.NoError(t, err)
	require.Equal(t, "meta-1", form.CsrfToken)
	require.Empty(t, form.Fields)
}

func TestBuildSubmission(t *testing.T) {
	form, err := LKParser{}.CountersForm(document(t, countersPage), "https://lk.tgnvoda.ru/account/1234567/counters")
	require.NoError(t, err)

	payload, applied := BuildSubmission(form, map[string]float64{
		"101": 130.5,
		"303": 10,
		"999": 1,
	})

	require.Equal(t, map[string]string{
		"_token":               "form-token-1",
		"counters[101][value]": "130.5",
		"counters[101][rowId]": "101",
		"counters[101][tarif]": "2",
		"counters[303][rowId]": "303",
	}, payload)
	require.Equal(t, []AppliedReading{
		{RowID: "101", Value: "130.5", LastValue: floatPtr(123.45)},
		{RowID: "303", Value: "10"},
	}, applied)

	_, applied = BuildSubmission(form, map[string]float64{"999": 1})
	require.Empty(t, applied)
}

func TestFormatReading(t *testing.T) {
	require.Equal(t, "130.5", FormatReading(130.5))
	require.Equal(t, "42", FormatReading(42))
	require.Equal(t, "0.001", FormatReading(0.001))
	require.Equal(t, "1234567.25", FormatReading(1234567.25))
}

func TestSubmitAlerts(t *testing.T) {
	parser := LKParser{}

	success, messages := parser.SubmitAlerts(document(t, submitOkPage))
	require.True(t, success)
	require.Equal(t, []string{"Показания успешно переданы"}, messages)

	success, messages = parser.SubmitAlerts(document(t, submitErrorPage))
	require.False(t, success)
	require.Len(t, messages, 2)

	success, messages = parser.SubmitAlerts(document(t, []byte(`<div class="alerts"><div class="alert">Некорректное значение</div></div>`)))
	require.False(t, success)
	require.Equal(t, []string{"Некорректное значение"}, messages)

	success, messages = parser.SubmitAlerts(document(t, []byte(`<html><body></body></html>`)))
	require.True(t, success)
	require.Empty(t, messages)
}

func TestHistory(t *testing.T) {
	entries, skipped, err := LKParser{}.History(historyBody)
	require.NoError(t, err)
	require.Len(t, skipped, 2)

	expected := []HistoryEntry{
		{
			Name:         "ХВС кухня №00123",
			Date:         "2024-03-05",
			BillingMonth: "2024-03",
			Value:        128.5,
			Consumption:  5.05,
			Source:       "Личный кабинет",
		},
		{
			Name:         "ХВС ванная №00456",
			Date:         "n/a",
			BillingMonth: "нет периода",
			Value:        float64(42),
			Consumption:  "нет",
			Source:       "Контролер",
		},
		{
			Name:         "ХВС кухня №00123",
			Date:         "2024-02-20",
			BillingMonth: "2024-02",
			Value:        123.45,
			Consumption:  nil,
			Source:       "Личный кабинет",
		},
	}
	if diff := cmp.Diff(expected, entries); diff != "" {
		t.Fatalf("history mismatch (-want +got):\n%s", diff)
	}
}

func TestHistoryNonFiniteValues(t *testing.T) {
	body := []byte(`[[0,"ХВС","<b>05.03.2024</b>","<span>03.2024</span>","nan","Infinity","ЛК"]]`)
	entries, skipped, err := LKParser{}.History(body)
	require.NoError(t, err)
	require.Empty(t, skipped)
	require.Len(t, entries, 1)
	require.Equal(t, "nan", entries[0].Value)
	require.Equal(t, "Infinity", entries[0].Consumption)

	_, err = json.Marshal(entries)
	require.NoError(t, err)
}

func TestHistoryNotJSON(t *testing.T) {
	_, _, err := LKParser{}.History([]byte(`<html>login</html>`))
	require.Error(t, err)
}

func TestParseHistoryDate(t *testing.T) {
	require.Equal(t, "2024-03-05", ParseHistoryDate("05.03.2024"))
	require.Equal(t, "2024-03-05", ParseHistoryDate("5.3.2024"))
	require.Equal(t, "2024-12-25", ParseHistoryDate("25.12.2024"))
	require.Equal(t, "n/a", ParseHistoryDate("n/a"))
	require.Equal(t, "31.02.2024", ParseHistoryDate("31.02.2024"))
}

func TestParseMonthKey(t *testing.T) {
	require.Equal(t, "2024-03", ParseMonthKey("03.2024 (текущий)"))
	require.Equal(t, "2024-12", ParseMonthKey("12.2024"))
	require.Equal(t, "март 2024", ParseMonthKey("март 2024"))
	require.True(t, strings.HasPrefix(ParseMonthKey(" 03.2024"), " "))
}
