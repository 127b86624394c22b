// ═══════════════════════════════════════════════════════════════════════════════
// DOCUMENT PARSING: Slicing the Corpus into Records
// ═══════════════════════════════════════════════════════════════════════════════
// The LATimes corpus is one huge gzipped file of SGML-ish records:
//
//	<DOC>
//	<DOCNO> LA010189-0001 </DOCNO>
//	<HEADLINE><P>New Year Begins</P></HEADLINE>
//	<TEXT><P>The quick brown fox ...</P></TEXT>
//	</DOC>
//	<DOC>
//	...
//
// Parsing happens in two layers:
//
//  1. RecordScanner slices the stream into records: lines accumulate until a
//     line containing </DOC> is seen, and the accumulated bytes (the line
//     included) are one record. The raw bytes are kept verbatim — they are
//     written to the document store untouched.
//
//  2. ParseRecord extracts the four text regions the index cares about:
//     DOCNO, HEADLINE, TEXT, GRAPHIC. The corpus markup is not XML (unescaped
//     ampersands, unclosed tags elsewhere), so rather than a DOM library a
//     small hand-written tag scanner pulls out the handful of tagged regions.
//     Element text content is the recursive concatenation of character data:
//     nested tags like <P> contribute their text, never their names.
//
// Any structural violation is ErrMalformedRecord and aborts indexing — a
// partial index is never valid.
// ═══════════════════════════════════════════════════════════════════════════════

package latimes

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrMalformedRecord reports a corpus record that violates the expected
	// structure (missing DOCNO, wrong docno length, bad date digits).
	ErrMalformedRecord = errors.New("malformed document record")

	// ErrMalformedResultLine reports a result-file line that fails strict
	// validation in the evaluator.
	ErrMalformedResultLine = errors.New("malformed result line")

	// ErrMalformedQrel reports an unparseable qrels line.
	ErrMalformedQrel = errors.New("malformed qrels line")
)

// recordEnd marks the last line of a record.
const recordEnd = "</DOC>"

// Document is one parsed corpus record.
//
// Raw holds the original record bytes verbatim; the four text fields are
// extracted from it. Headline, Text and Graphic are empty strings when the
// corresponding element is absent — only DOCNO is mandatory.
type Document struct {
	DocNo    string
	Headline string
	Text     string
	Graphic  string
	Raw      []byte
}

// RecordScanner splits a corpus byte stream into <DOC> records.
//
// Usage mirrors bufio.Scanner:
//
//	sc := NewRecordScanner(gzReader)
//	for sc.Scan() {
//	    record := sc.Record()
//	    ...
//	}
//	if err := sc.Err(); err != nil { ... }
type RecordScanner struct {
	r      *bufio.Reader
	record []byte
	err    error
	done   bool
}

// NewRecordScanner wraps r for record-at-a-time reading.
func NewRecordScanner(r io.Reader) *RecordScanner {
	return &RecordScanner{r: bufio.NewReaderSize(r, 1<<16)}
}

// Scan advances to the next record. It returns false at end of stream or on
// error; Err disambiguates.
func (s *RecordScanner) Scan() bool {
	if s.done || s.err != nil {
		return false
	}

	var buf bytes.Buffer
	for {
		line, err := s.r.ReadString('\n')
		buf.WriteString(line)

		if strings.Contains(line, recordEnd) {
			s.record = buf.Bytes()
			if err == io.EOF {
				s.done = true
			} else if err != nil {
				s.err = err
			}
			return true
		}

		if err == io.EOF {
			s.done = true
			// A trailing fragment that never closes its record is only
			// acceptable when it is pure whitespace.
			if strings.TrimSpace(buf.String()) != "" {
				s.err = fmt.Errorf("%w: unterminated record at end of stream", ErrMalformedRecord)
			}
			return false
		}
		if err != nil {
			s.err = err
			return false
		}
	}
}

// Record returns the raw bytes of the record read by the last call to Scan,
// terminator line included.
func (s *RecordScanner) Record() []byte {
	return s.record
}

// Err returns the first error encountered while scanning, nil at clean EOF.
func (s *RecordScanner) Err() error {
	return s.err
}

// ParseRecord extracts the indexed regions from one raw record.
//
// Extraction contract:
//
//	DOCNO    — trimmed text of the single <DOCNO> element; absence or a
//	           trimmed length other than 13 is ErrMalformedRecord
//	HEADLINE — concatenated text of all <P> children of the first <HEADLINE>
//	TEXT     — text content of the first <TEXT> element
//	GRAPHIC  — text content of the first <GRAPHIC> element
func ParseRecord(raw []byte) (Document, error) {
	docnoRegion, ok := firstElement(raw, "DOCNO")
	if !ok {
		return Document{}, fmt.Errorf("%w: no DOCNO element", ErrMalformedRecord)
	}
	docno := strings.TrimSpace(textContent(docnoRegion))
	if len(docno) != DocNoLength {
		return Document{}, fmt.Errorf("%w: docno %q has length %d, want %d",
			ErrMalformedRecord, docno, len(docno), DocNoLength)
	}

	doc := Document{
		DocNo: docno,
		Raw:   raw,
	}

	if headline, ok := firstElement(raw, "HEADLINE"); ok {
		doc.Headline = headlineText(headline)
	}
	if text, ok := firstElement(raw, "TEXT"); ok {
		doc.Text = textContent(text)
	}
	if graphic, ok := firstElement(raw, "GRAPHIC"); ok {
		doc.Graphic = textContent(graphic)
	}

	return doc, nil
}

// ═══════════════════════════════════════════════════════════════════════════════
// TAG SCANNER
// ═══════════════════════════════════════════════════════════════════════════════
// The scanner knows exactly as much SGML as the corpus requires: matching an
// opening <TAG> with its closing </TAG> and stripping any markup in between.
// Attributes do not occur on the tags we extract, and same-name nesting does
// not occur in the collection, so first-open/first-close pairing is exact.
// ═══════════════════════════════════════════════════════════════════════════════

// firstElement returns the inner bytes of the first <tag>...</tag> element.
func firstElement(data []byte, tag string) ([]byte, bool) {
	open := []byte("<" + tag + ">")
	closing := []byte("</" + tag + ">")

	start := bytes.Index(data, open)
	if start < 0 {
		return nil, false
	}
	start += len(open)

	rel := bytes.Index(data[start:], closing)
	if rel < 0 {
		return nil, false
	}

	return data[start : start+rel], true
}

// textContent strips every <...> span from the region and concatenates the
// remaining character data.
func textContent(region []byte) string {
	var b strings.Builder
	b.Grow(len(region))

	inTag := false
	for _, c := range region {
		switch {
		case c == '<':
			inTag = true
		case c == '>':
			inTag = false
		case !inTag:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// headlineText concatenates the text of every <P> child of a headline region.
// Paragraph texts are trimmed and joined with a single space so the headline
// renders as one line on the SERP.
func headlineText(region []byte) string {
	var parts []string
	rest := region
	for {
		p, ok := firstElement(rest, "P")
		if !ok {
			break
		}
		if t := strings.TrimSpace(textContent(p)); t != "" {
			parts = append(parts, t)
		}
		end := bytes.Index(rest, []byte("</P>"))
		rest = rest[end+len("</P>"):]
	}
	return strings.Join(parts, " ")
}
