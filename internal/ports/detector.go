package ports

// LanguageDetector identifies the language a piece of text is written in.
//
// Implementations must be deterministic: repeated calls with the same text
// must return the same answer, and must be safe for concurrent use.
type LanguageDetector interface {
	// Detect returns the ISO 639-1 code (lower case, e.g. "en") of the most
	// likely language of text. ok is false when no language could be
	// determined, for example when the text is too short or carries no
	// linguistic signal. Callers treat ok == false as "not the target
	// language".
	Detect(text string) (code string, ok bool)
}
