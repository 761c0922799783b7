package utils

import (
	"testing"
	"time"
)

func TestFormatDate(t *testing.T) {
	date := time.Date(2024, time.March, 5, 18, 30, 0, 0, time.UTC)

	tests := []struct {
		name   string
		locale []string
		want   string
	}{
		{name: "default locale", want: "March 5, 2024"},
		{name: "empty locale", locale: []string{""}, want: "March 5, 2024"},
		{name: "en-US", locale: []string{"en-US"}, want: "March 5, 2024"},
		{name: "en-GB", locale: []string{"en-GB"}, want: "5 March 2024"},
		{name: "pt-AO", locale: []string{"pt-AO"}, want: "5 de março de 2024"},
		{name: "fr", locale: []string{"fr"}, want: "5 mars 2024"},
		{name: "es", locale: []string{"es"}, want: "5 de marzo de 2024"},
		{name: "unsupported falls back", locale: []string{"ja"}, want: "March 5, 2024"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDate(date, tt.locale...); got != tt.want {
				t.Errorf("FormatDate() = %q; want %q", got, tt.want)
			}
		})
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		name   string
		amount float64
		code   string
		want   string
	}{
		{name: "USD", amount: 1234.5, code: "USD", want: "$1,234.50"},
		{name: "EUR", amount: 20, code: "EUR", want: "€20.00"},
		{name: "AOA", amount: 15000, code: "AOA", want: "Kz15,000.00"},
		{name: "negative", amount: -5, code: "USD", want: "-$5.00"},
		{name: "known code without symbol", amount: 3, code: "JPY", want: "JPY 3.00"},
		{name: "unknown code", amount: 3, code: "XYZ", want: "XYZ 3.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatCurrency(tt.amount, tt.code); got != tt.want {
				t.Errorf("FormatCurrency() = %q; want %q", got, tt.want)
			}
		})
	}
}
