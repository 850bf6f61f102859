package services

import (
    "regexp"
    "strings"

    "github.com/chriscantu/initiative-health/internal/domain"
)

const (
    piiEmail = "email"
    piiToken = "token"
    piiPhone = "phone"
)

var (
    emailRe = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
    tokenRe = regexp.MustCompile(`(?i)\b(?:token|secret|password|apikey|api_key|bearer)[:=\s]+[A-Za-z0-9\-\._~+/]{8,}\b`)
    phoneRe = regexp.MustCompile(`\b\+?\d[\d\-\s]{7,}\d\b`)
)

var piiPlaceholders = map[string]string{
    piiEmail: "[EMAIL-REDACTED]",
    piiToken: "[TOKEN-REDACTED]",
    piiPhone: "[PHONE-REDACTED]",
}

// RedactText masks email addresses, token-shaped strings and phone
// numbers with fixed-width placeholders tagged by category, returning
// the spans that were masked. Redacting already-redacted text yields
// no new matches.
func RedactText(text string) (string, []domain.PiiMatch) {
    if text == "" { return text, nil }
    var matches []domain.PiiMatch
    out := redactCategory(text, piiToken, tokenRe, &matches)
    out = redactCategory(out, piiEmail, emailRe, &matches)
    out = redactCategory(out, piiPhone, phoneRe, &matches)
    return out, matches
}

func redactCategory(text, category string, re *regexp.Regexp, matches *[]domain.PiiMatch) string {
    locs := re.FindAllStringIndex(text, -1)
    if len(locs) == 0 { return text }
    var b strings.Builder
    prev := 0
    for _, loc := range locs {
        *matches = append(*matches, domain.PiiMatch{Category: category, Index: loc[0], Length: loc[1] - loc[0]})
        b.WriteString(text[prev:loc[0]])
        b.WriteString(piiPlaceholders[category])
        prev = loc[1]
    }
    b.WriteString(text[prev:])
    return b.String()
}
