// ═══════════════════════════════════════════════════════════════════════════════
// QUERY-BIASED SNIPPETS
// ═══════════════════════════════════════════════════════════════════════════════
// A snippet is the two sentences of a document that best summarize it FOR A
// GIVEN QUERY. The scorer is a four-component sentence ranker:
//
//	l — leading position bonus: 2 for the first kept sentence, 1 for the
//	    second, 0 after that (newswire ledes carry the story)
//	c — total occurrences of query terms in the sentence
//	d — distinct query terms appearing in the sentence
//	k — longest contiguous run of query terms (a phrase-ish match beats the
//	    same terms scattered)
//
// EXAMPLE:
// --------
// Query terms: {quick, brown, fox}
// Sentence: "The quick brown fox jumps over the lazy dog"
//
//	c = 3 (quick, brown, fox)        d = 3 (all distinct)
//	k = 3 (quick→brown→fox contiguous)
//
// Sentences shorter than five words are discarded before scoring — datelines,
// bylines and fragments would otherwise win on density alone.
// ═══════════════════════════════════════════════════════════════════════════════

package latimes

import (
	"sort"
	"strings"
)

// minSentenceWords is the whitespace-split word count below which a sentence
// is discarded.
const minSentenceWords = 5

// snippetSentences is how many top sentences a snippet concatenates.
const snippetSentences = 2

// scoredSentence pairs a sentence's original text with its score.
type scoredSentence struct {
	original string
	score    int
}

// GenerateSnippet produces a ≤2-sentence query-biased snippet from the
// document text. queryTerms must already be analyzed (tokenized + stemmed),
// the same form the engines use.
func GenerateSnippet(text string, queryTerms []string) string {
	termSet := make(map[string]struct{}, len(queryTerms))
	for _, t := range queryTerms {
		termSet[t] = struct{}{}
	}

	kept := splitSentences(text)
	scored := make([]scoredSentence, len(kept))
	for i, sentence := range kept {
		scored[i] = scoredSentence{
			original: sentence,
			score:    scoreSentence(sentence, i, termSet),
		}
	}

	// Stable: ties keep original document order.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	n := snippetSentences
	if len(scored) < n {
		n = len(scored)
	}
	parts := make([]string, n)
	for i := 0; i < n; i++ {
		parts[i] = scored[i].original
	}
	return strings.Join(parts, " ")
}

// splitSentences segments text on '.', '!', '?' and keeps sentences of at
// least minSentenceWords whitespace-separated words, trimmed.
func splitSentences(text string) []string {
	var kept []string
	start := 0

	flush := func(end int) {
		sentence := strings.TrimSpace(text[start:end])
		if sentence != "" && len(strings.Fields(sentence)) >= minSentenceWords {
			kept = append(kept, sentence)
		}
	}

	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '.', '!', '?':
			flush(i)
			start = i + 1
		}
	}
	flush(len(text))

	return kept
}

// scoreSentence computes l + c + d + k for one kept sentence.
//
// keptIndex is the sentence's position among KEPT sentences, which is what
// the leading bonus rewards.
func scoreSentence(sentence string, keptIndex int, termSet map[string]struct{}) int {
	score := 0
	switch keptIndex {
	case 0:
		score += 2
	case 1:
		score++
	}

	tokens := Analyze(sentence)

	occurrences := 0
	distinct := make(map[string]struct{})
	longestRun, run := 0, 0
	for _, token := range tokens {
		if _, ok := termSet[token]; ok {
			occurrences++
			distinct[token] = struct{}{}
			run++
			if run > longestRun {
				longestRun = run
			}
		} else {
			run = 0
		}
	}

	return score + occurrences + len(distinct) + longestRun
}

// truncateTitle shortens a snippet for use as a SERP title when the document
// has no headline: at most max characters, with "..." appended when cut.
func truncateTitle(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
