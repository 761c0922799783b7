package utils

import (
	"fmt"
	"time"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultLocale is used by FormatDate when no locale is given.
const DefaultLocale = "en-US"

type dateStyle struct {
	months [12]string
	layout func(day int, month string, year int) string
}

var (
	englishMonths = [12]string{
		"January", "February", "March", "April", "May", "June",
		"July", "August", "September", "October", "November", "December",
	}
	portugueseMonths = [12]string{
		"janeiro", "fevereiro", "março", "abril", "maio", "junho",
		"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
	}
	frenchMonths = [12]string{
		"janvier", "février", "mars", "avril", "mai", "juin",
		"juillet", "août", "septembre", "octobre", "novembre", "décembre",
	}
	spanishMonths = [12]string{
		"enero", "febrero", "marzo", "abril", "mayo", "junio",
		"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
	}

	dateTags = []language.Tag{
		language.AmericanEnglish, // first entry is the matcher's fallback
		language.BritishEnglish,
		language.Portuguese,
		language.French,
		language.Spanish,
	}
	dateStyles = []dateStyle{
		{englishMonths, func(d int, m string, y int) string { return fmt.Sprintf("%s %d, %d", m, d, y) }},
		{englishMonths, func(d int, m string, y int) string { return fmt.Sprintf("%d %s %d", d, m, y) }},
		{portugueseMonths, func(d int, m string, y int) string { return fmt.Sprintf("%d de %s de %d", d, m, y) }},
		{frenchMonths, func(d int, m string, y int) string { return fmt.Sprintf("%d %s %d", d, m, y) }},
		{spanishMonths, func(d int, m string, y int) string { return fmt.Sprintf("%d de %s de %d", d, m, y) }},
	}
	dateMatcher = language.NewMatcher(dateTags)

	// currencyPrinter pins number formatting to en-US whatever the currency.
	currencyPrinter = message.NewPrinter(language.AmericanEnglish)
	currencySymbols = map[currency.Unit]string{
		currency.USD: "$",
		currency.EUR: "€",
		currency.GBP: "£",
		currency.BRL: "R$",
		currency.MustParseISO("AOA"): "Kz",
	}
)

// FormatDate returns the long form of t's calendar date ("March 5, 2024" for en-US).
// The locale is a BCP 47 tag; unsupported or missing locales fall back to en-US.
func FormatDate(t time.Time, locale ...string) string {
	loc := DefaultLocale
	if len(locale) > 0 && locale[0] != "" {
		loc = locale[0]
	}
	_, idx := language.MatchStrings(dateMatcher, loc)
	style := dateStyles[idx]
	return style.layout(t.Day(), style.months[t.Month()-1], t.Year())
}

// FormatCurrency formats amount with two decimals and en-US grouping, prefixed with the symbol of
// the ISO 4217 currency code ("$1,234.50"). Unknown codes are used verbatim as prefix ("XYZ 3.00").
func FormatCurrency(amount float64, code string) string {
	digits := currencyPrinter.Sprint(number.Decimal(amount, number.Scale(2)))

	unit, err := currency.ParseISO(code)
	if err != nil {
		return code + " " + digits
	}
	sym, ok := currencySymbols[unit]
	if !ok {
		return unit.String() + " " + digits
	}
	if amount < 0 {
		return "-" + sym + digits[1:]
	}
	return sym + digits
}
