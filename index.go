// ═══════════════════════════════════════════════════════════════════════════════
// THE INVERTED INDEX
// ═══════════════════════════════════════════════════════════════════════════════
// An inverted index is like the index at the back of a book, but for a search
// engine. Given these documents:
//
//	Doc 0: "the quick brown fox"
//	Doc 1: "the lazy dog"
//	Doc 2: "quick brown dogs"
//
// the index maps each term id to the documents containing it, with a count:
//
//	"quick"  → [(0,1), (2,1)]
//	"brown"  → [(0,1), (2,1)]
//	"lazy"   → [(1,1)]
//
// THE THREE MAPS:
// ---------------
//   - Lexicon:  term → dense token id, assigned in first-seen order
//   - Postings: token id → ascending (doc id, count) pairs
//   - Docs:     dense doc id → (docno, headline, date, length)
//
// HYBRID STORAGE:
// ---------------
// Alongside the flat postings, every term carries a roaring bitmap of its
// document ids. Postings drive the scoring loops (they hold counts and read
// in ascending id order); bitmaps answer set questions — document frequency
// is a cardinality lookup, and load-time validation checks that both views
// of a term agree.
//
// Once loaded, the index is immutable for the process lifetime. All engines
// borrow it read-only; the only mutation after build time is the per-query
// accumulator, which lives and dies inside a single query.
// ═══════════════════════════════════════════════════════════════════════════════

package latimes

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/RoaringBitmap/roaring"
)

// Posting is one (document, term frequency) pair in a postings list.
type Posting struct {
	DocID uint32
	Count uint32
}

// DocInfo is the per-document metadata tuple.
type DocInfo struct {
	DocNo    string
	Headline string
	Date     string // MMDDYY, from docno[2:8]
	Length   uint32 // token count of TEXT + HEADLINE + GRAPHIC
}

// Index is a loaded, read-only LATimes index.
type Index struct {
	Dir string // index directory (document store root)

	Lexicon  map[string]uint32    // term → token id
	Postings map[uint32][]Posting // token id → ascending (doc id, count)
	Docs     map[uint32]DocInfo   // doc id → metadata

	// Per-term document bitmaps, rebuilt from postings on load.
	DocBitmaps map[uint32]*roaring.Bitmap

	NumDocs      int
	TotalTerms   int64 // sum of document lengths
	AvgDocLength float64

	byDocNo map[string]uint32 // derived reverse map for evaluation
}

// LoadIndex deserializes the three maps from dir and derives the statistics
// retrieval needs: document count, average document length, the docno reverse
// map and the per-term bitmaps.
func LoadIndex(dir string) (*Index, error) {
	start := time.Now()

	lexicon, err := loadLexicon(filepath.Join(dir, lexiconFile))
	if err != nil {
		return nil, fmt.Errorf("load lexicon: %w", err)
	}
	postings, err := loadPostings(filepath.Join(dir, postingsFile))
	if err != nil {
		return nil, fmt.Errorf("load inverted index: %w", err)
	}
	docs, err := loadMetadata(filepath.Join(dir, metadataFile))
	if err != nil {
		return nil, fmt.Errorf("load metadata: %w", err)
	}

	idx := &Index{
		Dir:      dir,
		Lexicon:  lexicon,
		Postings: postings,
		Docs:     docs,
	}
	idx.deriveStats()

	if err := idx.Validate(); err != nil {
		return nil, err
	}

	slog.Info("index loaded",
		slog.String("dir", dir),
		slog.Int("docs", idx.NumDocs),
		slog.Int("terms", len(idx.Lexicon)),
		slog.Duration("elapsed", time.Since(start)))

	return idx, nil
}

// deriveStats computes everything the serialized maps imply but do not store.
func (idx *Index) deriveStats() {
	idx.NumDocs = len(idx.Docs)

	idx.TotalTerms = 0
	idx.byDocNo = make(map[string]uint32, idx.NumDocs)
	for id, info := range idx.Docs {
		idx.TotalTerms += int64(info.Length)
		idx.byDocNo[info.DocNo] = id
	}

	if idx.NumDocs > 0 {
		idx.AvgDocLength = float64(idx.TotalTerms) / float64(idx.NumDocs)
	}

	idx.DocBitmaps = make(map[uint32]*roaring.Bitmap, len(idx.Postings))
	for tokenID, postings := range idx.Postings {
		bitmap := roaring.NewBitmap()
		for _, p := range postings {
			bitmap.Add(p.DocID)
		}
		idx.DocBitmaps[tokenID] = bitmap
	}
}

// TermID looks a post-analysis token up in the lexicon.
func (idx *Index) TermID(token string) (uint32, bool) {
	id, ok := idx.Lexicon[token]
	return id, ok
}

// PostingsFor returns the ascending postings list for a token id, nil when the
// id is unknown.
func (idx *Index) PostingsFor(tokenID uint32) []Posting {
	return idx.Postings[tokenID]
}

// DocFrequency is the number of documents containing the term — the bitmap
// cardinality, which Validate guarantees equals the postings length.
func (idx *Index) DocFrequency(tokenID uint32) int {
	bitmap, ok := idx.DocBitmaps[tokenID]
	if !ok {
		return 0
	}
	return int(bitmap.GetCardinality())
}

// InternalID resolves a docno to its dense internal id.
func (idx *Index) InternalID(docno string) (uint32, bool) {
	id, ok := idx.byDocNo[docno]
	return id, ok
}

// DocPath is the document-store location of a stored record, partitioned by
// the docno's embedded date: <dir>/MM/DD/YY/<docno>.txt.
func (idx *Index) DocPath(docno string) (string, error) {
	date, err := DocDate(docno)
	if err != nil {
		return "", err
	}
	mm, dd, yy := DatePartition(date)
	return filepath.Join(idx.Dir, mm, dd, yy, docno+".txt"), nil
}

// FetchRaw reads the original record bytes of a stored document.
func (idx *Index) FetchRaw(docno string) ([]byte, error) {
	path, err := idx.DocPath(docno)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(path)
}

// Validate checks the structural invariants the engines rely on:
//
//   - doc ids are dense over 0..NumDocs-1
//   - postings keys coincide exactly with the lexicon's token ids
//   - every postings list is strictly ascending by doc id with counts ≥ 1
//   - per term, the bitmap and the postings agree on the document set
func (idx *Index) Validate() error {
	for id := uint32(0); id < uint32(idx.NumDocs); id++ {
		if _, ok := idx.Docs[id]; !ok {
			return fmt.Errorf("index corrupt: doc id %d missing from metadata", id)
		}
	}

	if len(idx.Postings) != len(idx.Lexicon) {
		return fmt.Errorf("index corrupt: %d postings lists for %d lexicon entries",
			len(idx.Postings), len(idx.Lexicon))
	}
	for _, tokenID := range idx.Lexicon {
		postings, ok := idx.Postings[tokenID]
		if !ok {
			return fmt.Errorf("index corrupt: token id %d has no postings list", tokenID)
		}
		if len(postings) == 0 {
			return fmt.Errorf("index corrupt: token id %d has empty postings list", tokenID)
		}

		prev := int64(-1)
		for _, p := range postings {
			if int64(p.DocID) <= prev {
				return fmt.Errorf("index corrupt: token id %d postings not strictly ascending", tokenID)
			}
			if p.Count < 1 {
				return fmt.Errorf("index corrupt: token id %d has zero count for doc %d", tokenID, p.DocID)
			}
			if int(p.DocID) >= idx.NumDocs {
				return fmt.Errorf("index corrupt: token id %d references unknown doc %d", tokenID, p.DocID)
			}
			prev = int64(p.DocID)
		}

		if int(idx.DocBitmaps[tokenID].GetCardinality()) != len(postings) {
			return fmt.Errorf("index corrupt: token id %d bitmap disagrees with postings", tokenID)
		}
	}

	return nil
}
