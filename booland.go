// ═══════════════════════════════════════════════════════════════════════════════
// BOOLEAN CONJUNCTION: Finding Documents Containing Every Query Term
// ═══════════════════════════════════════════════════════════════════════════════
// The Boolean engine answers AND queries: which documents contain EVERY
// stemmed query term?
//
// THE ALGORITHM:
// --------------
// Postings are ascending by doc id, so conjunction is a sort-merge:
//
//	a: [1, 4, 7, 9]
//	b: [2, 4, 9, 12]
//
//	two pointers march forward, always advancing the smaller side;
//	equal ids are emitted → [4, 9]
//
// Folding the merge left over all query terms intersects everything. Merging
// two ascending streams is O(len(a) + len(b)) with no hashing and no sorting.
//
// OOV TERMS:
// ----------
// A query term absent from the lexicon is dropped, not matched against an
// empty set — the index vocabulary defines the universe, and an out-of-
// vocabulary term silently ignores itself rather than forcing zero results.
//
// OUTPUT:
// -------
// The result set is ordered by ascending doc id, not by relevance. Emitted
// run lines carry the descending pseudo-score n-rank+1 so downstream tools
// that sort by score reproduce the set order.
// ═══════════════════════════════════════════════════════════════════════════════

package latimes

import (
	"fmt"
	"io"
	"log/slog"
)

// BooleanRunTag labels result lines produced by the Boolean engine.
const BooleanRunTag = "AND"

// BooleanEngine evaluates conjunctive queries over a loaded index.
type BooleanEngine struct {
	idx *Index
}

// NewBooleanEngine borrows idx read-only.
func NewBooleanEngine(idx *Index) *BooleanEngine {
	return &BooleanEngine{idx: idx}
}

// Retrieve returns the ascending internal ids of every document containing
// all in-vocabulary stemmed query terms. An empty term set yields nil.
func (e *BooleanEngine) Retrieve(query string) []uint32 {
	termIDs := queryTermIDs(e.idx, query)
	if len(termIDs) == 0 {
		return nil
	}

	result := docIDs(e.idx.PostingsFor(termIDs[0]))
	for _, termID := range termIDs[1:] {
		if len(result) == 0 {
			break
		}
		result = intersectAscending(result, docIDs(e.idx.PostingsFor(termID)))
	}
	return result
}

// WriteRun evaluates every topic and emits TREC run lines to w.
func (e *BooleanEngine) WriteRun(w io.Writer, topics []TopicQuery) error {
	for _, tq := range topics {
		results := e.Retrieve(tq.Query)
		slog.Info("boolean retrieval",
			slog.Int("topic", tq.Topic),
			slog.Int("results", len(results)))

		n := len(results)
		for i, docID := range results {
			line := RunLine{
				Topic: tq.Topic,
				DocNo: e.idx.Docs[docID].DocNo,
				Rank:  i + 1,
				Score: float64(n - i), // n - rank + 1
				Tag:   BooleanRunTag,
			}
			if _, err := fmt.Fprintln(w, line.String()); err != nil {
				return err
			}
		}
	}
	return nil
}

// queryTermIDs analyzes a query and maps it to de-duplicated token ids in
// first-seen order, dropping terms absent from the lexicon.
func queryTermIDs(idx *Index, query string) []uint32 {
	var ids []uint32
	seen := make(map[uint32]struct{})

	for _, token := range Analyze(query) {
		id, ok := idx.TermID(token)
		if !ok {
			continue // OOV: silently ignored
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

// docIDs projects a postings list onto its document ids.
func docIDs(postings []Posting) []uint32 {
	ids := make([]uint32, len(postings))
	for i, p := range postings {
		ids[i] = p.DocID
	}
	return ids
}

// intersectAscending is the two-pointer merge of two ascending id slices.
func intersectAscending(a, b []uint32) []uint32 {
	var out []uint32
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			i++
		case a[i] > b[j]:
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	return out
}
