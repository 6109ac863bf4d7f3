package normalizer

import (
	"testing"
)

func TestNormalizeDefaults(t *testing.T) {
	n := NewDefaultNormalizer()

	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{
			name:     "Surrounding whitespace",
			in:       "  hello there  ",
			expected: "hello there",
		},
		{
			name:     "Excess blank lines",
			in:       "first\n\n\n\nsecond",
			expected: "first\n\nsecond",
		},
		{
			name:     "Markdown image embed",
			in:       "Look ![a portrait](https://example.com/p.png)\ndone",
			expected: "Look done",
		},
		{
			name:     "Ellipsis fused to following word",
			in:       "well...then she left",
			expected: "well... then she left",
		},
		{
			name: "Long dot run collapses instead of splitting",
			// A run of four or more dots is loudness, not an ellipsis.
			in:       "wow.....",
			expected: "wow...",
		},
		{
			name:     "Loud exclamation run",
			in:       "nooo!!!!!",
			expected: "nooo!!!",
		},
		{
			name:     "Loud asterisk run",
			in:       "drumroll ****** please",
			expected: "drumroll *** please",
		},
		{
			name:     "Two-dot ellipsis between words",
			in:       "wait..what",
			expected: "wait... what",
		},
		{
			name:     "Spaced punctuation tightened",
			in:       "x . y , z ? w ! v",
			expected: "x. y, z? w! v",
		},
		{
			name:     "Run-together sentences",
			in:       "Hello.World",
			expected: "Hello. World",
		},
		{
			name:     "No split inside abbreviations",
			in:       "e.g.Something",
			expected: "e.g.Something",
		},
		{
			name:     "No-break space removed",
			in:       "a\u00a0b",
			expected: "ab",
		},
		{
			name:     "Zero width joiner becomes a space",
			in:       "a\u200db",
			expected: "a b",
		},
		{
			name:     "Byte order mark becomes a space",
			in:       "a\ufeffb",
			expected: "a b",
		},
		{
			name:     "Left-to-right mark removed",
			in:       "a\u200eb",
			expected: "ab",
		},
		{
			name:     "Double spaces collapsed",
			in:       "too  wide",
			expected: "too wide",
		},
		{
			name:     "Literal escape sequences",
			in:       `one\ntwo`,
			expected: "one\ntwo",
		},
		{
			name:     "Trailing spaces before newline",
			in:       "a \nb",
			expected: "a\nb",
		},
		{
			name:     "Unicode ellipsis to ASCII",
			in:       "he paused… briefly",
			expected: "he paused... briefly",
		},
		{
			name:     "Leading dashes stripped per line",
			in:       "— hello\n—world",
			expected: "hello\nworld",
		},
		{
			name:     "Em dash inside text becomes hyphen",
			in:       "left—right",
			expected: "left-right",
		},
		{
			name:     "Mojibake repaired",
			in:       "cafÃ©",
			expected: "café",
		},
		{
			name:     "HTML entity unescaped",
			in:       "fish &amp; chips",
			expected: "fish & chips",
		},
		{
			name:     "Empty input",
			in:       "",
			expected: "",
		},
		{
			name:     "Already clean text untouched",
			in:       "A perfectly ordinary sentence.",
			expected: "A perfectly ordinary sentence.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := n.Normalize(tc.in)
			if got != tc.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tc.in, got, tc.expected)
			}
		})
	}
}

// The chain should be stable: running it twice over its own output must not
// change the text again.
func TestNormalizeStable(t *testing.T) {
	n := NewDefaultNormalizer()

	inputs := []string{
		"well...then she left",
		"wow.....",
		"Hello.World",
		"x . y , z ? w ! v",
		"— hello\n—world",
		"cafÃ©",
		"A perfectly ordinary sentence.",
	}

	for _, in := range inputs {
		once := n.Normalize(in)
		twice := n.Normalize(once)
		if once != twice {
			t.Errorf("Normalize not stable for %q: first %q, second %q", in, once, twice)
		}
	}
}

func TestDefaultRuleOrder(t *testing.T) {
	rules := DefaultRules(NewFixer(FixerConfig{}))

	want := []string{
		"trim_whitespace",
		"collapse_newlines",
		"strip_image_embeds",
		"space_after_ellipsis",
		"collapse_loud_chars",
		"canonical_ellipsis",
		"tighten_punctuation",
		"split_run_together_sentences",
		"strip_invisible_chars",
		"fix_encoding",
		"collapse_double_spaces",
		"unescape_literals",
		"trim_line_trailing_spaces",
		"ascii_ellipsis",
		"strip_leading_dashes",
		"ascii_dash",
	}

	if len(rules) != len(want) {
		t.Fatalf("expected %d rules, got %d", len(want), len(rules))
	}
	for i, name := range want {
		if rules[i].Name != name {
			t.Errorf("rule %d: expected %q, got %q", i, name, rules[i].Name)
		}
	}
}

func TestChainNormalizerCustomRules(t *testing.T) {
	n := NewChainNormalizer([]Rule{
		{"shout", func(s string) string { return s + "!" }},
		{"shout_again", func(s string) string { return s + "!" }},
	})

	if got := n.Normalize("hey"); got != "hey!!" {
		t.Errorf("expected rules to apply in order, got %q", got)
	}
	if len(n.Rules()) != 2 {
		t.Errorf("expected 2 rules, got %d", len(n.Rules()))
	}
}
