package policy

import (
	"strings"
	"testing"
)

func TestRedactPII(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    string
		changed bool
	}{
		{
			name:    "plain symptom text untouched",
			input:   "I have had a headache for 3 days",
			want:    "I have had a headache for 3 days",
			changed: false,
		},
		{
			name:    "email",
			input:   "reach me at ama.mensah@example.com please",
			want:    "reach me at [REDACTED_EMAIL] please",
			changed: true,
		},
		{
			name:    "momo number",
			input:   "my momo is +233 24 827 9518",
			want:    "my momo is [REDACTED_PHONE]",
			changed: true,
		},
		{
			name:    "ghana card",
			input:   "id GHA-123456789-1 on file",
			want:    "id [REDACTED_ID] on file",
			changed: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, changed := RedactPII(tc.input)
			if got != tc.want {
				t.Fatalf("RedactPII() = %q, want %q", got, tc.want)
			}
			if changed != tc.changed {
				t.Fatalf("changed = %v, want %v", changed, tc.changed)
			}
		})
	}
}

func TestRedactPIICardBeforePhone(t *testing.T) {
	got, changed := RedactPII("card 4111 1111 1111 1111 thanks")
	if !changed {
		t.Fatalf("expected change")
	}
	if !strings.Contains(got, "[REDACTED_CARD]") {
		t.Fatalf("card should be redacted as card, got %q", got)
	}
	if strings.Contains(got, "[REDACTED_PHONE]") {
		t.Fatalf("card should not be classified as phone, got %q", got)
	}
}
