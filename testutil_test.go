package latimes

import (
	"path/filepath"
	"testing"
)

// testRecord builds a minimal corpus record. Empty headline or text omits the
// element entirely, which is how sparse LATimes articles look.
func testRecord(docno, headline, text string) []byte {
	record := "<DOC>\n<DOCNO> " + docno + " </DOCNO>\n"
	if headline != "" {
		record += "<HEADLINE>\n<P>\n" + headline + "\n</P>\n</HEADLINE>\n"
	}
	if text != "" {
		record += "<TEXT>\n<P>\n" + text + "\n</P>\n</TEXT>\n"
	}
	record += "</DOC>\n"
	return []byte(record)
}

// testDoc is the input shape for buildTestIndex.
type testDoc struct {
	docno    string
	headline string
	text     string
}

// buildTestIndex indexes the documents into a fresh directory and loads the
// result, giving tests the exact artifact retrieval sees.
func buildTestIndex(t *testing.T, docs []testDoc) *Index {
	t.Helper()

	dir := filepath.Join(t.TempDir(), "index")
	builder, err := NewIndexBuilder(dir)
	if err != nil {
		t.Fatalf("NewIndexBuilder() error = %v", err)
	}

	for _, d := range docs {
		parsed, err := ParseRecord(testRecord(d.docno, d.headline, d.text))
		if err != nil {
			t.Fatalf("ParseRecord(%s) error = %v", d.docno, err)
		}
		if err := builder.Add(parsed); err != nil {
			t.Fatalf("Add(%s) error = %v", d.docno, err)
		}
	}
	if err := builder.Finish(); err != nil {
		t.Fatalf("Finish() error = %v", err)
	}

	idx, err := LoadIndex(dir)
	if err != nil {
		t.Fatalf("LoadIndex() error = %v", err)
	}
	return idx
}
