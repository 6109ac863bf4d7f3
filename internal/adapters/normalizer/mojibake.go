package normalizer

import (
	"html"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// FixerConfig controls the optional sub-fixes of the encoding repair pass.
type FixerConfig struct {
	// FixLatinLigatures expands Latin ligature code points (ﬁ, ﬂ, ...) into
	// their component letters. Off by default so intentional typography is
	// left alone.
	FixLatinLigatures bool
	// FixCharacterWidth folds full-width and half-width variants to their
	// canonical forms. Off by default for the same reason.
	FixCharacterWidth bool
	// MaxPasses bounds the iterative double-encoding repair. Text mangled
	// through several encode/decode cycles needs one pass per cycle.
	// Defaults to 3.
	MaxPasses int
}

const defaultMaxPasses = 3

// Fixer repairs text corrupted by encoding mismatches: UTF-8 read as
// Windows-1252 or Latin-1 ("mojibake"), stray C1 controls, leftover HTML
// entities, and control characters. It does not keep diagnostics about which
// sub-fix fired; it only returns the repaired text.
type Fixer struct {
	config    FixerConfig
	ligatures *strings.Replacer
}

// controlStripper removes control characters except newline and tab.
var controlStripper = runes.Remove(runes.Predicate(func(r rune) bool {
	return unicode.Is(unicode.Cc, r) && r != '\n' && r != '\t'
}))

// NewFixer creates a Fixer with the given configuration.
func NewFixer(config FixerConfig) *Fixer {
	if config.MaxPasses <= 0 {
		config.MaxPasses = defaultMaxPasses
	}
	return &Fixer{
		config: config,
		ligatures: strings.NewReplacer(
			"ﬀ", "ff", "ﬁ", "fi", "ﬂ", "fl", "ﬃ", "ffi", "ﬄ", "ffl",
			"ﬅ", "ft", "ﬆ", "st", "Ĳ", "IJ", "ĳ", "ij",
		),
	}
}

// Fix repairs encoding artifacts in text and returns the result in NFC form.
// It is a total function: on any internal failure the input is returned as
// close to unchanged as possible.
func (f *Fixer) Fix(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	if strings.ContainsRune(text, '&') {
		text = html.UnescapeString(text)
	}

	for i := 0; i < f.config.MaxPasses; i++ {
		fixed, changed := undoDoubleEncoding(text)
		if !changed {
			break
		}
		text = fixed
	}

	text = fixC1Controls(text)

	if stripped, _, err := transform.String(controlStripper, text); err == nil {
		text = stripped
	}

	if f.config.FixLatinLigatures {
		text = f.ligatures.Replace(text)
	}
	if f.config.FixCharacterWidth {
		if folded, _, err := transform.String(width.Fold, text); err == nil {
			text = folded
		}
	}

	return norm.NFC.String(text)
}

// undoDoubleEncoding detects UTF-8 that was decoded as Windows-1252 (or
// Latin-1) and re-encoded, e.g. "Ã©" for "é". It re-encodes the text into
// the legacy byte sequence and accepts the repair only when those bytes form
// valid UTF-8 that is strictly shorter in runes. Genuine Latin-1 text fails
// the validity check and is left untouched.
func undoDoubleEncoding(s string) (string, bool) {
	if isASCII(s) {
		return s, false
	}
	raw, ok := encodeAsLegacy(s)
	if !ok || !utf8.Valid(raw) {
		return s, false
	}
	decoded := string(raw)
	if utf8.RuneCountInString(decoded) >= utf8.RuneCountInString(s) {
		return s, false
	}
	return decoded, true
}

// encodeAsLegacy maps text back to single bytes the way a Windows-1252
// reader would have seen them. Code points the codepage does not define
// fall back to their Latin-1 byte when possible.
func encodeAsLegacy(s string) ([]byte, bool) {
	raw := make([]byte, 0, len(s))
	for _, r := range s {
		if b, ok := charmap.Windows1252.EncodeRune(r); ok {
			raw = append(raw, b)
			continue
		}
		if r < 0x100 {
			raw = append(raw, byte(r))
			continue
		}
		return nil, false
	}
	return raw, true
}

// fixC1Controls reinterprets the C1 control block (U+0080..U+009F) as
// Windows-1252, the usual source of those code points in scraped text.
func fixC1Controls(s string) string {
	if !strings.ContainsFunc(s, isC1) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		if isC1(r) {
			sb.WriteRune(charmap.Windows1252.DecodeByte(byte(r)))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func isC1(r rune) bool {
	return r >= 0x80 && r <= 0x9f
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
