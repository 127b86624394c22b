// ═══════════════════════════════════════════════════════════════════════════════
// SERIALIZATION: Persisting the Three Maps
// ═══════════════════════════════════════════════════════════════════════════════
// The index directory holds three files beside the document store:
//
//	metadata.txt       doc id → (docno, headline, date, length)
//	lexicon.txt        term → token id
//	invertedIndex.txt  token id → (doc id, count) pairs
//
// FORMAT:
// -------
// Each file is a typed textual dump:
//
//	xxh64 <16 hex digits>          ← checksum of everything below it
//	<entry count>
//	<one record per line, tab-separated>
//
// Entries are written in ascending id order, so a file is byte-stable for a
// given index and diffs cleanly between builds. Headlines are the one field
// that can contain arbitrary bytes; they are stored strconv.Quote'd, which
// round-trips exactly.
//
// INTEGRITY:
// ----------
// The first line carries the xxh64 of the payload. Loaders refuse a file
// whose checksum does not match — a truncated or hand-edited map surfaces at
// load time, not as a scoring anomaly three phases later.
// ═══════════════════════════════════════════════════════════════════════════════

package latimes

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Persisted map files inside the index directory.
const (
	metadataFile = "metadata.txt"
	lexiconFile  = "lexicon.txt"
	postingsFile = "invertedIndex.txt"
)

const checksumPrefix = "xxh64 "

// maxLineBytes bounds a single serialized line. The longest lines are the
// postings of very common terms: ~130k documents at ~12 bytes a pair stays
// well under this.
const maxLineBytes = 1 << 28

// ═══════════════════════════════════════════════════════════════════════════════
// WRITERS
// ═══════════════════════════════════════════════════════════════════════════════

// writeChecked writes payload to path behind its checksum line.
func writeChecked(path string, payload []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriterSize(f, 1<<20)
	fmt.Fprintf(w, "%s%016x\n", checksumPrefix, xxhash.Sum64(payload))
	if _, err := w.Write(payload); err != nil {
		f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeMetadata(path string, docs map[uint32]DocInfo) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d\n", len(docs))

	for id := uint32(0); id < uint32(len(docs)); id++ {
		info, ok := docs[id]
		if !ok {
			return fmt.Errorf("metadata not dense: missing doc id %d", id)
		}
		fmt.Fprintf(&buf, "%d\t%s\t%s\t%d\t%s\n",
			id, info.DocNo, info.Date, info.Length, strconv.Quote(info.Headline))
	}

	return writeChecked(path, buf.Bytes())
}

func writeLexicon(path string, lexicon map[string]uint32) error {
	terms := make([]string, len(lexicon))
	for term, id := range lexicon {
		terms[id] = term
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d\n", len(terms))
	for id, term := range terms {
		fmt.Fprintf(&buf, "%d\t%s\n", id, term)
	}

	return writeChecked(path, buf.Bytes())
}

func writePostings(path string, postings map[uint32][]Posting) error {
	ids := make([]uint32, 0, len(postings))
	for id := range postings {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%d\n", len(ids))
	for _, id := range ids {
		fmt.Fprintf(&buf, "%d\t", id)
		for i, p := range postings[id] {
			if i > 0 {
				buf.WriteByte(' ')
			}
			fmt.Fprintf(&buf, "%d:%d", p.DocID, p.Count)
		}
		buf.WriteByte('\n')
	}

	return writeChecked(path, buf.Bytes())
}

// ═══════════════════════════════════════════════════════════════════════════════
// LOADERS
// ═══════════════════════════════════════════════════════════════════════════════
// One typed loader per map. Each returns a statically typed container; there
// is deliberately no generic "load any map" path.
// ═══════════════════════════════════════════════════════════════════════════════

// readChecked reads path, verifies the checksum line and returns a scanner
// over the payload plus the declared entry count.
func readChecked(path string) (*bufio.Scanner, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, err
	}

	nl := bytes.IndexByte(data, '\n')
	if nl < 0 || !bytes.HasPrefix(data, []byte(checksumPrefix)) {
		return nil, 0, fmt.Errorf("%s: missing checksum line", path)
	}
	want := strings.TrimSpace(string(data[len(checksumPrefix):nl]))
	payload := data[nl+1:]
	if got := fmt.Sprintf("%016x", xxhash.Sum64(payload)); got != want {
		return nil, 0, fmt.Errorf("%s: checksum mismatch (file %s, computed %s)", path, want, got)
	}

	sc := bufio.NewScanner(bytes.NewReader(payload))
	sc.Buffer(make([]byte, 1<<20), maxLineBytes)

	if !sc.Scan() {
		return nil, 0, fmt.Errorf("%s: missing entry count", path)
	}
	count, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
	if err != nil {
		return nil, 0, fmt.Errorf("%s: bad entry count: %w", path, err)
	}

	return sc, count, nil
}

func loadMetadata(path string) (map[uint32]DocInfo, error) {
	sc, count, err := readChecked(path)
	if err != nil {
		return nil, err
	}

	docs := make(map[uint32]DocInfo, count)
	for i := 0; i < count; i++ {
		if !sc.Scan() {
			return nil, fmt.Errorf("%s: truncated after %d of %d entries", path, i, count)
		}
		fields := strings.SplitN(sc.Text(), "\t", 5)
		if len(fields) != 5 {
			return nil, fmt.Errorf("%s: entry %d has %d fields, want 5", path, i, len(fields))
		}

		id, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%s: entry %d: bad doc id: %w", path, i, err)
		}
		length, err := strconv.ParseUint(fields[3], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%s: entry %d: bad length: %w", path, i, err)
		}
		headline, err := strconv.Unquote(fields[4])
		if err != nil {
			return nil, fmt.Errorf("%s: entry %d: bad headline: %w", path, i, err)
		}

		docs[uint32(id)] = DocInfo{
			DocNo:    fields[1],
			Date:     fields[2],
			Length:   uint32(length),
			Headline: headline,
		}
	}

	return docs, sc.Err()
}

func loadLexicon(path string) (map[string]uint32, error) {
	sc, count, err := readChecked(path)
	if err != nil {
		return nil, err
	}

	lexicon := make(map[string]uint32, count)
	for i := 0; i < count; i++ {
		if !sc.Scan() {
			return nil, fmt.Errorf("%s: truncated after %d of %d entries", path, i, count)
		}
		fields := strings.SplitN(sc.Text(), "\t", 2)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s: entry %d has %d fields, want 2", path, i, len(fields))
		}

		id, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%s: entry %d: bad token id: %w", path, i, err)
		}
		lexicon[fields[1]] = uint32(id)
	}

	return lexicon, sc.Err()
}

func loadPostings(path string) (map[uint32][]Posting, error) {
	sc, count, err := readChecked(path)
	if err != nil {
		return nil, err
	}

	postings := make(map[uint32][]Posting, count)
	for i := 0; i < count; i++ {
		if !sc.Scan() {
			return nil, fmt.Errorf("%s: truncated after %d of %d entries", path, i, count)
		}
		fields := strings.SplitN(sc.Text(), "\t", 2)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%s: entry %d has %d fields, want 2", path, i, len(fields))
		}

		id, err := strconv.ParseUint(fields[0], 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%s: entry %d: bad token id: %w", path, i, err)
		}

		pairs := strings.Fields(fields[1])
		list := make([]Posting, 0, len(pairs))
		for _, pair := range pairs {
			colon := strings.IndexByte(pair, ':')
			if colon < 0 {
				return nil, fmt.Errorf("%s: entry %d: bad pair %q", path, i, pair)
			}
			docID, err := strconv.ParseUint(pair[:colon], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("%s: entry %d: bad doc id in pair %q: %w", path, i, pair, err)
			}
			cnt, err := strconv.ParseUint(pair[colon+1:], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("%s: entry %d: bad count in pair %q: %w", path, i, pair, err)
			}
			list = append(list, Posting{DocID: uint32(docID), Count: uint32(cnt)})
		}

		postings[uint32(id)] = list
	}

	return postings, sc.Err()
}
