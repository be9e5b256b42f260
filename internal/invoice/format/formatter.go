// Package format renders human-readable invoice numbers.
package format

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var seqPadRe = regexp.MustCompile(`\{SEQ(\d+)\}`)

const DefaultInvoiceNumberTemplate = "GYM-{YYYY}{MM}{DD}-{SEQ4}"

// FormatInvoiceNumber expands the date and sequence tokens of template.
func FormatInvoiceNumber(template string, issuedAt time.Time, seq int64) (string, error) {
	if template == "" {
		return "", fmt.Errorf("invoice number template is empty")
	}
	if seq <= 0 {
		return "", fmt.Errorf("invalid invoice sequence: %d", seq)
	}

	out := expandDate(template, issuedAt)
	out = strings.ReplaceAll(out, "{SEQ}", strconv.FormatInt(seq, 10))
	out = seqPadRe.ReplaceAllStringFunc(out, func(m string) string {
		match := seqPadRe.FindStringSubmatch(m)
		width, err := strconv.Atoi(match[1])
		if err != nil || width <= 0 {
			return m
		}
		return fmt.Sprintf("%0*d", width, seq)
	})

	if strings.ContainsAny(out, "{}") {
		return "", fmt.Errorf("unresolved token in invoice format: %s", out)
	}
	return out, nil
}

// SequenceScope returns the counter key for template at issuedAt. Templates
// carrying a day token restart numbering every day, month tokens every month.
func SequenceScope(template string, issuedAt time.Time) string {
	switch {
	case strings.Contains(template, "{DD}"):
		return issuedAt.Format("20060102")
	case strings.Contains(template, "{MM}"):
		return issuedAt.Format("200601")
	case strings.Contains(template, "{YYYY}"), strings.Contains(template, "{YY}"):
		return issuedAt.Format("2006")
	default:
		return "all"
	}
}

func expandDate(template string, at time.Time) string {
	return strings.NewReplacer(
		"{YYYY}", at.Format("2006"),
		"{YY}", at.Format("06"),
		"{MM}", at.Format("01"),
		"{DD}", at.Format("02"),
	).Replace(template)
}
