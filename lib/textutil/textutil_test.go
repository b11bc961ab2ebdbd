package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 {
	return &v
}

func TestParseAmount(t *testing.T) {
	cases := []struct {
		text   string
		expect *float64
	}{
		{text: "1 234,56 ₽", expect: ptr(1234.56)},
		{text: "2 500,00 ₽", expect: ptr(2500)},
		{text: "1\u00a0000,00", expect: ptr(1000)},
		{text: "-15.5 руб.", expect: ptr(-15.5)},
		{text: "+42", expect: ptr(42)},
		{text: "Итого: 0,00", expect: ptr(0)},
		{text: "12 345", expect: ptr(12345)},
		{text: "—", expect: nil},
		{text: "", expect: nil},
		{text: "нет данных", expect: nil},
	}

	for _, test := range cases {
		test := test
		t.Run(test.text, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, test.expect, ParseAmount(test.text))
		})
	}
}

func TestParseLeadingDecimal(t *testing.T) {
	require.Equal(t, ptr(123.45), ParseLeadingDecimal("Последнее показание: 123,45 м³"))
	require.Equal(t, ptr(7), ParseLeadingDecimal("7 от 01.02.2024"))
	require.Nil(t, ParseLeadingDecimal("нет показаний"))
}

func TestParseFloatLoose(t *testing.T) {
	value, ok := ParseFloatLoose(" 12,5 ")
	require.True(t, ok)
	require.Equal(t, 12.5, value)

	_, ok = ParseFloatLoose("n/a")
	require.False(t, ok)

	_, ok = ParseFloatLoose("")
	require.False(t, ok)

	for _, text := range []string{"nan", "NaN", "inf", "-Inf", "Infinity", "1e400"} {
		_, ok = ParseFloatLoose(text)
		require.False(t, ok, text)
	}
}

func TestNormalizeSpaces(t *testing.T) {
	require.Equal(t, "Долг на начало янв'25", NormalizeSpaces("  Долг\u00a0на \n\tначало\u200b янв'25 "))
	require.Equal(t, "", NormalizeSpaces("\u00a0\u200b"))
}

func TestContainsAnyFold(t *testing.T) {
	require.True(t, ContainsAnyFold("Произошла ОШИБКА при сохранении", []string{"ошиб", "некоррект"}))
	require.True(t, ContainsAnyFold("Некорректное значение", []string{"ошиб", "некоррект"}))
	require.False(t, ContainsAnyFold("Показания приняты", []string{"ошиб", "некоррект"}))
}
