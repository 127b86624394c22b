// ═══════════════════════════════════════════════════════════════════════════════
// INDEX BUILDING
// ═══════════════════════════════════════════════════════════════════════════════
// The builder consumes parsed records in corpus order and grows the three maps
// in memory. Everything it owns is private state created at phase start and
// consumed by Finish — there is no process-wide index.
//
// PER-DOCUMENT STEPS:
// -------------------
//  1. Assign the next dense internal id
//  2. raw text = TEXT ∥ HEADLINE ∥ GRAPHIC
//  3. tokens = Analyze(raw text); document length = len(tokens)
//  4. Look up or insert each token in the lexicon (fresh ids are dense)
//  5. Accumulate per-document frequencies in a small local map
//  6. Append (doc id, count) to each term's postings list — documents arrive
//     in ascending id order, so the ascending invariant holds with no sorting
//  7. Write the raw record bytes to MM/DD/YY/<docno>.txt
//  8. Record the metadata tuple
//
// Failure policy: any parse or I/O error aborts the phase. No partial index
// is ever considered valid.
// ═══════════════════════════════════════════════════════════════════════════════

package latimes

import (
	"compress/gzip"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/RoaringBitmap/roaring"
)

// ErrIndexExists reports an index directory that already exists; the builder
// refuses to clobber or amend a previous build.
var ErrIndexExists = errors.New("index directory already exists")

// IndexBuilder accumulates the lexicon, postings and metadata for one
// whole-corpus build.
type IndexBuilder struct {
	dir string

	lexicon  map[string]uint32
	postings map[uint32][]Posting
	bitmaps  map[uint32]*roaring.Bitmap
	docs     map[uint32]DocInfo

	nextDocID  uint32
	totalTerms int64
}

// NewIndexBuilder creates the index directory and an empty builder.
// The directory must not pre-exist.
func NewIndexBuilder(dir string) (*IndexBuilder, error) {
	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrIndexExists, dir)
	} else if !os.IsNotExist(err) {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	return &IndexBuilder{
		dir:      dir,
		lexicon:  make(map[string]uint32),
		postings: make(map[uint32][]Posting),
		bitmaps:  make(map[uint32]*roaring.Bitmap),
		docs:     make(map[uint32]DocInfo),
	}, nil
}

// Add indexes one parsed document.
func (b *IndexBuilder) Add(doc Document) error {
	docID := b.nextDocID
	b.nextDocID++

	date, err := DocDate(doc.DocNo)
	if err != nil {
		return err
	}

	// Joining with a space keeps a token from bleeding across a region
	// boundary; it introduces no token of its own.
	rawText := doc.Text + " " + doc.Headline + " " + doc.Graphic
	tokens := Analyze(rawText)

	// Per-document frequencies first, postings appends second: each term gets
	// exactly one pair per document.
	freqs := make(map[uint32]uint32, len(tokens))
	for _, token := range tokens {
		tokenID, ok := b.lexicon[token]
		if !ok {
			tokenID = uint32(len(b.lexicon))
			b.lexicon[token] = tokenID
		}
		freqs[tokenID]++
	}

	for tokenID, count := range freqs {
		b.postings[tokenID] = append(b.postings[tokenID], Posting{DocID: docID, Count: count})

		bitmap, ok := b.bitmaps[tokenID]
		if !ok {
			bitmap = roaring.NewBitmap()
			b.bitmaps[tokenID] = bitmap
		}
		bitmap.Add(docID)
	}

	if err := b.storeRaw(doc.DocNo, date, doc.Raw); err != nil {
		return err
	}

	b.docs[docID] = DocInfo{
		DocNo:    doc.DocNo,
		Headline: doc.Headline,
		Date:     date,
		Length:   uint32(len(tokens)),
	}
	b.totalTerms += int64(len(tokens))

	return nil
}

// storeRaw writes the verbatim record bytes to the date-partitioned store.
func (b *IndexBuilder) storeRaw(docno, date string, raw []byte) error {
	mm, dd, yy := DatePartition(date)
	dir := filepath.Join(b.dir, mm, dd, yy)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, docno+".txt"), raw, 0o644)
}

// Finish serializes the three maps into the index directory. The builder is
// spent afterwards.
func (b *IndexBuilder) Finish() error {
	if err := writeMetadata(filepath.Join(b.dir, metadataFile), b.docs); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	if err := writeLexicon(filepath.Join(b.dir, lexiconFile), b.lexicon); err != nil {
		return fmt.Errorf("write lexicon: %w", err)
	}
	if err := writePostings(filepath.Join(b.dir, postingsFile), b.postings); err != nil {
		return fmt.Errorf("write inverted index: %w", err)
	}
	return nil
}

// DocCount is the number of documents added so far.
func (b *IndexBuilder) DocCount() int {
	return int(b.nextDocID)
}

// BuildIndex runs the whole indexing phase: stream the gzipped corpus, parse
// each record, feed the builder, serialize.
func BuildIndex(corpusPath, indexDir string) error {
	start := time.Now()

	f, err := os.Open(corpusPath)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("open gzip stream: %w", err)
	}
	defer gz.Close()

	builder, err := NewIndexBuilder(indexDir)
	if err != nil {
		return err
	}

	scanner := NewRecordScanner(gz)
	for scanner.Scan() {
		doc, err := ParseRecord(scanner.Record())
		if err != nil {
			return err
		}
		if err := builder.Add(doc); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if err := builder.Finish(); err != nil {
		return err
	}

	slog.Info("indexing complete",
		slog.Int("docs", builder.DocCount()),
		slog.Int("terms", len(builder.lexicon)),
		slog.Duration("elapsed", time.Since(start)))

	return nil
}
