// ═══════════════════════════════════════════════════════════════════════════════
// TREC RUN FORMAT
// ═══════════════════════════════════════════════════════════════════════════════
// Both engines emit, and the evaluator consumes, the classic TREC run line:
//
//	topicId Q0 docno rank score runTag
//
// single-space separated, one result per line. Keeping the codec in one place
// means the producers and the consumer cannot drift apart.
//
// The queries file is the companion input format: two lines per query, an
// integer topic id followed by the free-text query, both trimmed.
// ═══════════════════════════════════════════════════════════════════════════════

package latimes

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// ErrOutputExists reports a result file that already exists; engines refuse
// to overwrite a previous run.
var ErrOutputExists = errors.New("output file already exists")

// RunLine is one parsed or to-be-emitted result line.
type RunLine struct {
	Topic int
	DocNo string
	Rank  int
	Score float64
	Tag   string
}

// String renders the line in TREC format. Scores print with the shortest
// exact decimal representation, so integer pseudo-scores stay integers and
// float scores round-trip bit-for-bit.
func (l RunLine) String() string {
	return fmt.Sprintf("%d Q0 %s %d %s %s",
		l.Topic, l.DocNo, l.Rank, strconv.FormatFloat(l.Score, 'f', -1, 64), l.Tag)
}

// ParseRunLine validates one result line strictly: exactly 6 fields, integer
// topic and rank, float score, the literal Q0, a 13-character docno and a
// non-empty run tag. Anything else is ErrMalformedResultLine.
func ParseRunLine(line string) (RunLine, error) {
	fields := strings.Fields(line)
	if len(fields) != 6 {
		return RunLine{}, fmt.Errorf("%w: %d fields, want 6: %q", ErrMalformedResultLine, len(fields), line)
	}

	topic, err := strconv.Atoi(fields[0])
	if err != nil {
		return RunLine{}, fmt.Errorf("%w: bad topic id %q", ErrMalformedResultLine, fields[0])
	}
	if fields[1] != "Q0" {
		return RunLine{}, fmt.Errorf("%w: second field %q, want Q0", ErrMalformedResultLine, fields[1])
	}
	if len(fields[2]) != DocNoLength {
		return RunLine{}, fmt.Errorf("%w: docno %q has length %d, want %d",
			ErrMalformedResultLine, fields[2], len(fields[2]), DocNoLength)
	}
	rank, err := strconv.Atoi(fields[3])
	if err != nil {
		return RunLine{}, fmt.Errorf("%w: bad rank %q", ErrMalformedResultLine, fields[3])
	}
	score, err := strconv.ParseFloat(fields[4], 64)
	if err != nil {
		return RunLine{}, fmt.Errorf("%w: bad score %q", ErrMalformedResultLine, fields[4])
	}
	if fields[5] == "" {
		return RunLine{}, fmt.Errorf("%w: empty run tag", ErrMalformedResultLine)
	}

	return RunLine{
		Topic: topic,
		DocNo: fields[2],
		Rank:  rank,
		Score: score,
		Tag:   fields[5],
	}, nil
}

// LoadRunFile parses a whole result file. The first malformed line is fatal.
func LoadRunFile(path string) ([]RunLine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []RunLine
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		line, err := ParseRunLine(text)
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// TopicQuery is one (topic id, query text) pair from a queries file.
type TopicQuery struct {
	Topic int
	Query string
}

// LoadQueries parses the two-lines-per-query format. An odd trailing topic
// line or a non-integer topic id is fatal.
func LoadQueries(path string) ([]TopicQuery, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var queries []TopicQuery
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		topicLine := strings.TrimSpace(sc.Text())
		if topicLine == "" {
			continue
		}
		topic, err := strconv.Atoi(topicLine)
		if err != nil {
			return nil, fmt.Errorf("%s: bad topic id %q", path, topicLine)
		}
		if !sc.Scan() {
			return nil, fmt.Errorf("%s: topic %d has no query line", path, topic)
		}
		queries = append(queries, TopicQuery{
			Topic: topic,
			Query: strings.TrimSpace(sc.Text()),
		})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return queries, nil
}

// CreateRunFile creates a result file that must not pre-exist.
func CreateRunFile(path string) (*os.File, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrOutputExists, path)
		}
		return nil, err
	}
	return f, nil
}
