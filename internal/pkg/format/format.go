// Package format renders amounts and dates the way Colombian clients read them.
package format

import (
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var colombia = language.MustParse("es-CO")

// COP formats an integer peso amount with es-CO grouping and no decimals
func COP(amount int64) string {
	p := message.NewPrinter(colombia)
	return "$ " + p.Sprintf("%d", amount)
}

// COPString formats an amount the gateway sends as a string.
// Non-numeric input is returned unchanged.
func COPString(raw string) string {
	clean := strings.TrimSpace(raw)
	clean = strings.NewReplacer(".", "", ",", "", "$", "", " ", "").Replace(clean)
	n, err := strconv.ParseInt(clean, 10, 64)
	if err != nil {
		return raw
	}
	return COP(n)
}

var months = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

// Date renders t as "2 de enero de 2006"
func Date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return strconv.Itoa(t.Day()) + " de " + months[t.Month()-1] + " de " + strconv.Itoa(t.Year())
}
