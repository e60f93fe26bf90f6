package policy

import "regexp"

var (
	emailPattern  = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	phonePattern  = regexp.MustCompile(`\+?[0-9][0-9\-() ]{7,}[0-9]`)
	cardPattern   = regexp.MustCompile(`\b(?:\d[ -]*?){13,19}\b`)
	ghanaCardPatt = regexp.MustCompile(`\bGHA-[0-9]{9}-[0-9]\b`)
)

// RedactPII masks common high-risk PII patterns before a transcript turn
// is archived. Symptom text itself is left untouched.
func RedactPII(input string) (redacted string, changed bool) {
	out := input

	next := emailPattern.ReplaceAllString(out, "[REDACTED_EMAIL]")
	changed = changed || next != out
	out = next

	next = ghanaCardPatt.ReplaceAllString(out, "[REDACTED_ID]")
	changed = changed || next != out
	out = next

	// Run card redaction before phone to avoid card numbers being
	// classified as phone/MoMo numbers.
	next = cardPattern.ReplaceAllString(out, "[REDACTED_CARD]")
	changed = changed || next != out
	out = next

	next = phonePattern.ReplaceAllString(out, "[REDACTED_PHONE]")
	changed = changed || next != out
	out = next

	return out, changed
}
