package normalizer

import (
	"regexp"
	"strings"
)

// Rule is one named step of the normalization chain. Apply must be a total
// function: it always returns a string, possibly unchanged.
type Rule struct {
	Name  string
	Apply func(text string) string
}

// Compiled patterns shared by the default rules.
var (
	extraNewlinePattern = regexp.MustCompile(`\n{3,}`)
	imageEmbedPattern   = regexp.MustCompile(`!\[.*?\]\(.*?\)\n*`)
	// An ellipsis fused to the following character. A dot on the right is
	// excluded: longer dot runs belong to the loud-character collapse.
	fusedEllipsisPattern       = regexp.MustCompile(`(\S)(…|\.\.\.)([^\s.])`)
	bareEllipsisPattern        = regexp.MustCompile(`\b(\.\.\.?)\b`)
	unspacedPunctuationPattern = regexp.MustCompile(`([a-z]{2,})(\.|!|\?)([A-Z])`)
	trailingSpacePattern       = regexp.MustCompile(` *\n`)
	leadingDashPattern         = regexp.MustCompile(`(?m)^\s?[—-]+\s*`)
)

// RE2 has no backreferences, so each loud character gets its own pattern.
var loudCharPatterns = []struct {
	pattern *regexp.Regexp
	repl    string
}{
	{regexp.MustCompile(`\.{4,}`), "..."},
	{regexp.MustCompile(`-{4,}`), "---"},
	{regexp.MustCompile(`\*{4,}`), "***"},
	{regexp.MustCompile(`!{4,}`), "!!!"},
}

// invisibleReplacer strips zero-width and otherwise invisible code points
// that would survive into tokenization. The per-character mapping is fixed:
// some are deleted, some become an ordinary space. Escapes, not literals:
// these characters render as nothing, and a literal U+FEFF does not even
// compile outside the first code point of a file.
var invisibleReplacer = strings.NewReplacer(
	"\u00a0", "", // no-break space
	"\u200b", "", // zero width space
	"\u200d", " ", // zero width joiner
	"\u2002", " ", // en space
	"\ufeff", " ", // zero width no-break space / BOM
	"\u009d", "", // stray C1 control
	"\u200e", "", // left-to-right mark
)

// escapeReplacer turns literal backslash escapes back into real characters.
var escapeReplacer = strings.NewReplacer(
	`\n`, "\n",
	`\~`, "~",
	`\-`, "-",
)

// DefaultRules returns the ordered rule chain. Order is semantically
// required: each rule assumes the text produced by the rules before it.
// Structural and punctuation cleanups (1-8) run before the encoding repair
// pass, which can itself introduce punctuation; the remaining rules are
// post-repair micro-cleanups.
func DefaultRules(fixer *Fixer) []Rule {
	return []Rule{
		{"trim_whitespace", strings.TrimSpace},
		{"collapse_newlines", func(s string) string {
			return extraNewlinePattern.ReplaceAllString(s, "\n\n")
		}},
		{"strip_image_embeds", func(s string) string {
			return imageEmbedPattern.ReplaceAllString(s, "")
		}},
		{"space_after_ellipsis", func(s string) string {
			return fusedEllipsisPattern.ReplaceAllString(s, "${1}${2} ${3}")
		}},
		{"collapse_loud_chars", func(s string) string {
			for _, p := range loudCharPatterns {
				s = p.pattern.ReplaceAllString(s, p.repl)
			}
			return s
		}},
		{"canonical_ellipsis", func(s string) string {
			s = strings.ReplaceAll(s, " .. ", "... ")
			s = strings.ReplaceAll(s, " ... ", "... ")
			return bareEllipsisPattern.ReplaceAllString(s, "... ")
		}},
		{"tighten_punctuation", func(s string) string {
			s = strings.ReplaceAll(s, " . ", ". ")
			s = strings.ReplaceAll(s, " , ", ", ")
			s = strings.ReplaceAll(s, " ? ", "? ")
			return strings.ReplaceAll(s, " ! ", "! ")
		}},
		{"split_run_together_sentences", func(s string) string {
			return unspacedPunctuationPattern.ReplaceAllString(s, "${1}${2} ${3}")
		}},
		{"strip_invisible_chars", func(s string) string {
			return invisibleReplacer.Replace(s)
		}},
		{"fix_encoding", fixer.Fix},
		{"collapse_double_spaces", func(s string) string {
			return strings.ReplaceAll(s, "  ", " ")
		}},
		{"unescape_literals", func(s string) string {
			return escapeReplacer.Replace(s)
		}},
		{"trim_line_trailing_spaces", func(s string) string {
			return trailingSpacePattern.ReplaceAllString(s, "\n")
		}},
		{"ascii_ellipsis", func(s string) string {
			return strings.ReplaceAll(s, "…", "...")
		}},
		{"strip_leading_dashes", func(s string) string {
			return leadingDashPattern.ReplaceAllString(s, "")
		}},
		{"ascii_dash", func(s string) string {
			return strings.ReplaceAll(s, "—", "-")
		}},
	}
}
