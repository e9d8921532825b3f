// Package money renders decimal amounts as Brazilian-real display strings.
package money

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

// BRL formats an amount with grouping and two decimals in the pt-BR locale,
// e.g. 1234.5 -> "R$ 1.234,50".
func BRL(amount decimal.Decimal) string {
	f, _ := amount.Round(2).Float64()
	return printer.Sprintf("R$ %.2f", f)
}
