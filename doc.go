// Package convclean cleans multi-turn dialogue corpora before they are
// used for model training.
//
// Each record holds a conversation and the name of the character speaking
// in it. Cleaning runs in three stages:
//
//  1. A language gate classifies every turn and rejects the conversation
//     when the ratio of foreign turns exceeds a configurable threshold.
//  2. An ordered chain of normalization rules removes encoding artifacts,
//     formatting noise, and stray whitespace from each turn.
//  3. Redaction markers left by upstream anonymization are rewritten into
//     the stable {{user}} placeholder, and {{char}} into the character's
//     name, ready for later augmentation.
//
// The package uses the functional options pattern for configuration; see
// New. Batch processing of line-delimited JSON corpora is available
// through Cleaner.CleanStream.
package convclean
