// Package classify maps clipboard text to exactly one semantic category.
//
// Rules are evaluated in a fixed order and the first match wins; the order is
// part of the contract. A time like "14:30" must be claimed by the datetime
// rule before the phone rule can see it, and a URL must win over plain text.
package classify

import (
	"regexp"
	"strings"

	"github.com/clipmind/clipmind/internal/event"
)

var (
	urlRe   = regexp.MustCompile(`^(https?://|ftp://)?([a-zA-Z0-9.-]+\.[a-zA-Z]{2,})(:[0-9]+)?(/.*)?$`)
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// A currency symbol or an ISO-like currency code next to a decimal
	// amount, with optional comma grouping and up to two decimal places.
	currencySymbolRe = regexp.MustCompile(`^\s*\p{Sc}\s*\d{1,3}[,\d]{0,12}(\.\d{1,2})?\s*$`)
	currencyCodeRe   = regexp.MustCompile(`(?i)^\s*(USD|EUR|JPY|TWD|NTD|NT\$?)\s*\d{1,3}[,\d]{0,12}(\.\d{1,2})?\s*$|^\s*\d{1,3}[,\d]{0,12}(\.\d{1,2})?\s*(USD|EUR|JPY|TWD|NTD|NT)\s*$`)

	// Matched against the entire trimmed string: YYYY-MM-DD, YYYY/MM/DD,
	// DD-MM-YYYY, MM-DD-YYYY (either separator), or a bare HH:MM[:SS] time.
	dateTimeRe = regexp.MustCompile(`^((19|20)\d{2}[-/](0[1-9]|1[0-2])[-/](0[1-9]|[12]\d|3[01])|(0[1-9]|[12]\d|3[01])[-/](0[1-9]|1[0-2])[-/](19|20)\d{2}|(0[1-9]|1[0-2])[-/](0[1-9]|[12]\d|3[01])[-/](19|20)\d{2}|([01]\d|2[0-3]):[0-5]\d(:[0-5]\d)?)$`)
)

var codeKeywords = []string{
	"def ", "function ", "class ", "import ", "#include", "console.log",
	"println", "system.out", "cout <<", "<?php", "#!/", "<script>",
	"public class", "private ", "void ",
}

var sqlKeywords = []string{"select ", "from ", "where "}

var addressMarkers = []string{
	"街", "路", "巷", "弄", "號", "樓", "室", "市", "縣", "段",
	"street", "avenue", "road", "blvd", "lane", "suite", "apt",
	"floor", "room", "city", "district",
}

// Detect returns the category for content. It is deterministic, side-effect
// free, and trims content before matching.
func Detect(content string) event.ContentType {
	s := strings.TrimSpace(content)

	switch {
	case isURL(s):
		return event.TypeURL
	case isEmail(s):
		return event.TypeEmail
	case isFinancial(s):
		return event.TypeFinancial
	case isDateTime(s):
		return event.TypeDateTime
	case isPhone(s):
		return event.TypePhone
	case isCode(s):
		return event.TypeCode
	case isAddress(s):
		return event.TypeAddress
	}
	return event.TypePlainText
}

// NewEvent classifies content and builds the ChangeEvent in one step.
func NewEvent(content, sourceApp string) event.ChangeEvent {
	return event.New(content, Detect(content), sourceApp)
}

func isURL(s string) bool   { return urlRe.MatchString(s) }
func isEmail(s string) bool { return emailRe.MatchString(s) }

func isFinancial(s string) bool {
	return currencySymbolRe.MatchString(s) || currencyCodeRe.MatchString(s)
}

func isDateTime(s string) bool { return dateTimeRe.MatchString(s) }

// isPhone accepts 7–15 digits with only digits and "+ - ( ) space" around
// them. A colon disqualifies the string so times never land here.
func isPhone(s string) bool {
	digits := 0
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' || r == '-' || r == ' ' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= 7 && digits <= 15
}

// isCode matches on language or SQL keywords, or on content that spans at
// least five lines with a parenthesis density above 2%.
func isCode(s string) bool {
	lower := strings.ToLower(s)
	for _, kw := range codeKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	for _, kw := range sqlKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}

	lines := strings.Count(s, "\n") + 1
	if lines < 5 {
		return false
	}
	total := 0
	parens := 0
	for _, r := range s {
		total++
		if r == '(' || r == ')' {
			parens++
		}
	}
	if total == 0 {
		return false
	}
	return float64(parens)/float64(total) > 0.02
}

// isAddress requires at least two distinct address markers.
func isAddress(s string) bool {
	lower := strings.ToLower(s)
	count := 0
	for _, kw := range addressMarkers {
		if strings.Contains(lower, kw) {
			count++
			if count >= 2 {
				return true
			}
		}
	}
	return false
}
