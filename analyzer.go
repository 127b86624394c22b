// ═══════════════════════════════════════════════════════════════════════════════
// TEXT ANALYSIS OVERVIEW
// ═══════════════════════════════════════════════════════════════════════════════
// Text analysis transforms raw newswire text into searchable tokens through a
// two-stage pipeline. The same pipeline runs at index time and at query time,
// so a query term always meets the index in the same normalized form.
//
// ANALYSIS PIPELINE:
// ------------------
//  1. Tokenization → Lowercase ASCII, split on anything that is not a letter
//     or digit
//  2. Stemming     → Reduce words to root form with the Porter algorithm
//
// EXAMPLE TRANSFORMATION:
// -----------------------
// Input:  "The Quick Brown Fox Jumps!"
// Step 1: ["the", "quick", "brown", "fox", "jumps"]    (tokenize)
// Step 2: ["the", "quick", "brown", "fox", "jump"]     (stemming)
//
// The tokenizer is deliberately ASCII-only: bytes outside 'a'..'z', 'A'..'Z',
// '0'..'9' are separators, including multi-byte UTF-8 sequences. The LATimes
// corpus predates Unicode and the collection's topics are plain ASCII, so
// locale-aware segmentation buys nothing here.
// ═══════════════════════════════════════════════════════════════════════════════

package latimes

import (
	"fmt"

	"github.com/reiver/go-porterstemmer"
)

// Tokenize splits text into lower-cased ASCII alphanumeric tokens.
//
// Rules:
//  1. 'A'..'Z' fold to 'a'..'z' (byte-level, no Unicode case tables)
//  2. Any byte that is not an ASCII letter or digit is a separator
//  3. Runs of separators produce no empty tokens
//
// Examples:
//
//	"hello-world"    → ["hello", "world"]
//	"price: $9.99"   → ["price", "9", "99"]
//	"---"            → []
func Tokenize(text string) []string {
	var tokens []string
	start := -1

	for i := 0; i < len(text); i++ {
		if isAlnum(text[i]) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, lowerASCII(text[start:i]))
			start = -1
		}
	}
	if start >= 0 {
		tokens = append(tokens, lowerASCII(text[start:]))
	}

	return tokens
}

// Stem reduces a token to its root form using the Porter algorithm.
//
// The stemmer is a pure function: deterministic, no state, and it agrees with
// the canonical Porter implementation on all ASCII inputs.
//
//	"running"  → "run"
//	"ponies"   → "poni"
//	"caresses" → "caress"
func Stem(token string) string {
	return porterstemmer.StemString(token)
}

// Analyze runs the full pipeline: tokenize, then stem each token.
//
// This is the single entry point used by the index builder, both retrieval
// engines and the snippet scorer.
//
// Example:
//
//	tokens := Analyze("The quick brown fox jumps")
//	// Returns: ["the", "quick", "brown", "fox", "jump"]
func Analyze(text string) []string {
	tokens := Tokenize(text)
	for i, token := range tokens {
		tokens[i] = Stem(token)
	}
	return tokens
}

// isAlnum reports whether b is an ASCII letter or digit.
func isAlnum(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9'
}

// lowerASCII lower-cases the ASCII letters of s.
//
// Fast path: if s contains no upper-case bytes we return it unchanged and
// allocate nothing, which is the common case for body text.
func lowerASCII(s string) string {
	hasUpper := false
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			hasUpper = true
			break
		}
	}
	if !hasUpper {
		return s
	}

	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// ═══════════════════════════════════════════════════════════════════════════════
// DOCNO DATES
// ═══════════════════════════════════════════════════════════════════════════════
// A TREC docno like "LA010189-0001" encodes the publication date in positions
// 2..8 as MMDDYY. The index uses it twice: as the document's Date attribute
// and as the MM/DD/YY partition of the document store on disk.
// ═══════════════════════════════════════════════════════════════════════════════

// DocNoLength is the fixed length of a TREC LATimes document identifier.
const DocNoLength = 13

// DocDate extracts the MMDDYY date from a docno.
//
// Example:
//
//	DocDate("LA010289-0042") → "010289"
func DocDate(docno string) (string, error) {
	if len(docno) != DocNoLength {
		return "", fmt.Errorf("%w: docno %q has length %d, want %d",
			ErrMalformedRecord, docno, len(docno), DocNoLength)
	}
	date := docno[2:8]
	for i := 0; i < len(date); i++ {
		if date[i] < '0' || date[i] > '9' {
			return "", fmt.Errorf("%w: docno %q has non-numeric date", ErrMalformedRecord, docno)
		}
	}
	return date, nil
}

// DatePartition splits an MMDDYY date string into its MM, DD, YY components,
// the relative path of the document store partition.
func DatePartition(date string) (mm, dd, yy string) {
	return date[0:2], date[2:4], date[4:6]
}
