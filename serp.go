// ═══════════════════════════════════════════════════════════════════════════════
// INTERACTIVE SEARCH SESSION
// ═══════════════════════════════════════════════════════════════════════════════
// The search program runs a read-query / show-SERP / inspect-document loop:
//
//	Please enter a query:
//	> latest olympic results
//	1. Olympics Wrap-Up (08/12/89)
//	The games closed with ... (LA081289-0042)
//	...
//	Retrieval took 0.2 seconds.
//	Enter 1-10 to view a ranked document, n/N to execute new query or q/Q to quit:
//
// Each SERP entry is two lines: the headline (or, when the article has none,
// the snippet truncated to 50 characters) with the publication date, then the
// query-biased snippet with the docno. Picking a rank prints the stored raw
// record verbatim.
//
// Bad input at the inner prompt is reported and the prompt repeats; only
// q/Q (or end of input) ends the session.
// ═══════════════════════════════════════════════════════════════════════════════

package latimes

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// serpSize is how many ranked results one SERP shows.
const serpSize = 10

// headlineFallbackLen caps the snippet-as-title fallback.
const headlineFallbackLen = 50

// serpEntry is one rendered result.
type serpEntry struct {
	docNo   string
	title   string
	date    string // MMDDYY
	snippet string
}

// Session drives the interactive loop over a loaded index.
type Session struct {
	idx  *Index
	bm25 *BM25Engine
	in   *bufio.Scanner
	out  io.Writer
}

// NewSession wires a session to its index and terminal streams.
func NewSession(idx *Index, in io.Reader, out io.Writer) *Session {
	return &Session{
		idx:  idx,
		bm25: NewBM25Engine(idx),
		in:   bufio.NewScanner(in),
		out:  out,
	}
}

// Run loops until q/Q or end of input. I/O failures against the document
// store are fatal; everything the user types is survivable.
func (s *Session) Run() error {
	for {
		fmt.Fprintln(s.out, "Please enter a query:")
		if !s.in.Scan() {
			return s.in.Err()
		}
		query := strings.TrimSpace(s.in.Text())
		if query == "" {
			continue
		}

		start := time.Now()
		results := s.bm25.Retrieve(query, serpSize)
		if len(results) == 0 {
			fmt.Fprintln(s.out, "No results found")
			continue
		}

		entries, err := s.renderEntries(query, results)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		for i, e := range entries {
			mm, dd, yy := DatePartition(e.date)
			fmt.Fprintf(s.out, "%d. %s (%s/%s/%s)\n", i+1, e.title, mm, dd, yy)
			fmt.Fprintf(s.out, "%s (%s)\n", e.snippet, e.docNo)
		}
		fmt.Fprintf(s.out, "Retrieval took %.1f seconds.\n", elapsed.Seconds())

		quit, err := s.inspectLoop(entries)
		if err != nil {
			return err
		}
		if quit {
			return nil
		}
	}
}

// renderEntries builds the two-line SERP entries: fetch each ranked document
// from the store, re-parse it and score its sentences against the query.
func (s *Session) renderEntries(query string, results []ScoredDoc) ([]serpEntry, error) {
	queryTerms := Analyze(query)

	entries := make([]serpEntry, len(results))
	for i, r := range results {
		info := s.idx.Docs[r.DocID]

		raw, err := s.idx.FetchRaw(info.DocNo)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", info.DocNo, err)
		}
		doc, err := ParseRecord(raw)
		if err != nil {
			return nil, fmt.Errorf("stored record %s: %w", info.DocNo, err)
		}

		snippet := GenerateSnippet(doc.Text+" "+doc.Graphic, queryTerms)

		title := info.Headline
		if title == "" {
			title = truncateTitle(snippet, headlineFallbackLen)
		}

		entries[i] = serpEntry{
			docNo:   info.DocNo,
			title:   title,
			date:    info.Date,
			snippet: snippet,
		}
	}
	return entries, nil
}

// inspectLoop handles the inner prompt. Returns quit=true for q/Q or end of
// input; false when the user asks for a new query.
func (s *Session) inspectLoop(entries []serpEntry) (bool, error) {
	for {
		fmt.Fprintln(s.out, "Enter 1-10 to view a ranked document, n/N to execute new query or q/Q to quit:")
		if !s.in.Scan() {
			return true, s.in.Err()
		}
		input := strings.TrimSpace(s.in.Text())

		switch strings.ToLower(input) {
		case "q":
			return true, nil
		case "n":
			return false, nil
		}

		rank, err := strconv.Atoi(input)
		if err != nil || rank < 1 || rank > len(entries) {
			fmt.Fprintf(s.out, "Invalid input %q.\n", input)
			continue
		}

		raw, err := s.idx.FetchRaw(entries[rank-1].docNo)
		if err != nil {
			return true, err
		}
		if _, err := s.out.Write(raw); err != nil {
			return true, err
		}
	}
}
