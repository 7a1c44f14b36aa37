package report

import (
	"strings"
	"unicode/utf8"

	"dmsreport/internal/table"
)

// NA is rendered for missing values.
const NA = "N/A"

// glyphs maps decorative glyphs to ASCII tags. Both the mis-decoded (UTF-8 read as cp1252)
// sequences stored by older clients and the proper glyphs are covered.
var glyphs = strings.NewReplacer(
	"â€¢", "-",
	"âœ…", "[OK]",
	"âŒ", "[ERROR]",
	"ðŸ“Š", "[CHART]",
	"ðŸ“„", "[DOC]",
	"ðŸ”„", "[REFRESH]",
	"•", "-",
	"✅", "[OK]",
	"❌", "[ERROR]",
	"📊", "[CHART]",
	"📄", "[DOC]",
	"🔄", "[REFRESH]",
)

// Sanitize makes s printable with the PDF core fonts: known glyphs become ASCII tags and every
// other non-ASCII rune is dropped. ASCII input is returned unchanged, and
// Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string) string {
	if isASCII(s) {
		return s
	}
	s = glyphs.Replace(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < utf8.RuneSelf {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Text returns the sanitized cell text, or NA when the cell is null or the column is absent.
func Text(row table.Row, column string) string {
	s, ok := row.String(column)
	if !ok {
		return NA
	}
	return Sanitize(s)
}

// Truncate shortens s to n bytes followed by "..." when it is longer than n.
// s is expected to be sanitized, so bytes and characters coincide.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
