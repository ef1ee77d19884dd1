// Package templates embeds the HTML pages rendered by the handlers.
package templates

import (
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/shopspring/decimal"
)

//go:embed *.html
var files embed.FS

// Funcs are available to every page
var Funcs = template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"rating": func(avg float64) string {
		return fmt.Sprintf("%.1f", avg)
	},
	"stars": func(n int) string {
		if n < 0 {
			n = 0
		}
		return strings.Repeat("★", n) + strings.Repeat("☆", max(0, 5-n))
	},
	"list": func(v ...int) []int { return v },
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}

// Load parses every embedded page; each is addressed by its file name
func Load() (*template.Template, error) {
	return template.New("").Funcs(Funcs).ParseFS(files, "*.html")
}
