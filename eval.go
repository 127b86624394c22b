// ═══════════════════════════════════════════════════════════════════════════════
// EFFECTIVENESS EVALUATION
// ═══════════════════════════════════════════════════════════════════════════════
// The evaluator scores a TREC run file against relevance judgments (qrels)
// and prints one row per topic:
//
//	AP        — average precision over the full ranked list
//	P@10      — precision in the first ten ranks
//	NDCG@10   — DCG at 10 normalized by the ideal DCG at 10
//	NDCG@1000 — same at depth 1000
//	TBG       — Time-Biased Gain: a user model where gain decays with the
//	            time a reader spends getting to each rank
//
// RANK FIELD IS NOT TRUSTED:
// --------------------------
// Run files carry a rank column, but the evaluator re-sorts every topic's
// results by score descending (stable, so equal scores keep file order)
// before scoring. A run whose ranks lie about its scores is scored on the
// scores.
//
// TIME-BIASED GAIN:
// -----------------
// Reading a ranked list costs time: each rank costs a summary read, and a
// clicked document costs reading time proportional to its length. Gain
// earned at rank k is discounted by exp(−T_k · ln2 / H): gain found after H
// seconds of expected effort is worth half as much.
//
//	T_doc(d)    = 0.018 · dl_d + 7.8 seconds
//	T_k         = Σ_{i<k} (T_summary + T_doc(d_i) · P_click(rel_i))
//	contribution = P_click_rel · P_save_rel · exp(−T_k · ln2 / H)   (rel only)
//
// Document lengths come from the index, which is why the evaluator needs the
// index directory and why a run docno the index has never seen is fatal.
// ═══════════════════════════════════════════════════════════════════════════════

package latimes

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Time-Biased Gain user model constants.
const (
	tbgClickRel    = 0.64 // P(click | relevant summary)
	tbgClickNonrel = 0.39 // P(click | non-relevant summary)
	tbgSaveRel     = 0.77 // P(save | relevant document)
	tbgSaveNonrel  = 0.27 // P(save | non-relevant document)
	tbgSummaryTime = 4.4  // seconds to read one summary
	tbgHalfLife    = 224  // seconds for gain to halve
)

// Evaluated topic range: 401..450 with the topics that have no LATimes
// judgments removed.
const (
	firstTopic = 401
	lastTopic  = 450
)

var skippedTopics = map[int]struct{}{
	416: {}, 423: {}, 437: {}, 444: {}, 447: {},
}

// EvalTopics returns the fixed topic id sequence the report covers.
func EvalTopics() []int {
	var topics []int
	for t := firstTopic; t <= lastTopic; t++ {
		if _, skip := skippedTopics[t]; skip {
			continue
		}
		topics = append(topics, t)
	}
	return topics
}

// Qrels maps a topic id to its set of relevant docnos (judgment > 0).
type Qrels map[int]map[string]struct{}

// LoadQrels parses whitespace-separated qrels lines: topicId iter docno
// judgment. Only positive judgments contribute to the relevant set.
func LoadQrels(path string) (Qrels, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	qrels := make(Qrels)
	sc := bufio.NewScanner(f)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 4 {
			return nil, fmt.Errorf("%s:%d: %w: %d fields, want 4", path, lineNo, ErrMalformedQrel, len(fields))
		}
		topic, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w: bad topic id %q", path, lineNo, ErrMalformedQrel, fields[0])
		}
		judgment, err := strconv.Atoi(fields[3])
		if err != nil {
			return nil, fmt.Errorf("%s:%d: %w: bad judgment %q", path, lineNo, ErrMalformedQrel, fields[3])
		}

		if judgment > 0 {
			if qrels[topic] == nil {
				qrels[topic] = make(map[string]struct{})
			}
			qrels[topic][fields[2]] = struct{}{}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return qrels, nil
}

// TopicMetrics is one evaluated row.
type TopicMetrics struct {
	AP       float64
	P10      float64
	NDCG10   float64
	NDCG1000 float64
	TBG      float64
}

// Evaluator scores runs against qrels using document lengths from the index.
type Evaluator struct {
	idx   *Index
	qrels Qrels
}

// NewEvaluator borrows idx read-only.
func NewEvaluator(idx *Index, qrels Qrels) *Evaluator {
	return &Evaluator{idx: idx, qrels: qrels}
}

// Evaluate groups run lines by topic, re-sorts each group by score and
// computes every metric. A docno the index does not contain is fatal — TBG
// needs its document length and no sensible default exists.
func (ev *Evaluator) Evaluate(lines []RunLine) (map[int]TopicMetrics, error) {
	byTopic := make(map[int][]RunLine)
	for _, line := range lines {
		if _, ok := ev.idx.InternalID(line.DocNo); !ok {
			return nil, fmt.Errorf("%w: docno %q not in index", ErrMalformedResultLine, line.DocNo)
		}
		byTopic[line.Topic] = append(byTopic[line.Topic], line)
	}

	metrics := make(map[int]TopicMetrics, len(byTopic))
	for topic, results := range byTopic {
		relevant, judged := ev.qrels[topic]
		if !judged {
			continue // unjudged topic: scored as zeros by the table
		}

		sort.SliceStable(results, func(i, j int) bool {
			return results[i].Score > results[j].Score
		})

		metrics[topic] = ev.scoreTopic(results, relevant)
	}
	return metrics, nil
}

// scoreTopic computes every metric for one topic's score-sorted results.
func (ev *Evaluator) scoreTopic(results []RunLine, relevant map[string]struct{}) TopicMetrics {
	var m TopicMetrics

	relevantAt := make([]bool, len(results))
	for i, r := range results {
		_, relevantAt[i] = relevant[r.DocNo]
	}

	// AP and P@10 in one pass.
	relevantCount := 0
	precisionSum := 0.0
	for i := range results {
		if relevantAt[i] {
			relevantCount++
			precisionSum += float64(relevantCount) / float64(i+1)
		}
		if i == 9 {
			m.P10 = float64(relevantCount) / 10
		}
	}
	if len(results) < 10 {
		m.P10 = float64(relevantCount) / 10
	}
	m.AP = precisionSum / float64(len(relevant))

	m.NDCG10 = ndcg(relevantAt, len(relevant), 10)
	m.NDCG1000 = ndcg(relevantAt, len(relevant), 1000)
	m.TBG = ev.timeBiasedGain(results, relevantAt)

	return m
}

// ndcg is DCG@n over the ranked relevance vector, normalized by the DCG of an
// ideal ranking of the topic's numRelevant judged documents.
func ndcg(relevantAt []bool, numRelevant, n int) float64 {
	dcg := 0.0
	depth := n
	if len(relevantAt) < depth {
		depth = len(relevantAt)
	}
	for i := 0; i < depth; i++ {
		if relevantAt[i] {
			dcg += 1 / math.Log2(float64(i)+2)
		}
	}

	idcg := 0.0
	ideal := n
	if numRelevant < ideal {
		ideal = numRelevant
	}
	for i := 0; i < ideal; i++ {
		idcg += 1 / math.Log2(float64(i)+2)
	}

	if idcg == 0 {
		return 0
	}
	return dcg / idcg
}

// timeBiasedGain walks the ranking accumulating expected elapsed time; each
// relevant rank contributes its gain discounted by the time already spent.
func (ev *Evaluator) timeBiasedGain(results []RunLine, relevantAt []bool) float64 {
	decay := math.Ln2 / tbgHalfLife

	tbg := 0.0
	elapsed := 0.0
	for i, r := range results {
		if relevantAt[i] {
			gain := tbgClickRel * tbgSaveRel
			tbg += gain * math.Exp(-elapsed*decay)
		}

		// Time spent at this rank, paid before the next rank is reached.
		id, _ := ev.idx.InternalID(r.DocNo)
		docTime := 0.018*float64(ev.idx.Docs[id].Length) + 7.8
		click := tbgClickNonrel
		if relevantAt[i] {
			click = tbgClickRel
		}
		elapsed += tbgSummaryTime + docTime*click
	}
	return tbg
}

// WriteTable prints the fixed-format report over the evaluated topic range.
// Topics with no scored results get an all-zero row.
func WriteTable(w io.Writer, metrics map[int]TopicMetrics) error {
	if _, err := fmt.Fprintf(w, "%-8s%-10s%-10s%-10s%-12s%s\n",
		"Topic", "AP", "P@10", "NDCG@10", "NDCG@1000", "TBG"); err != nil {
		return err
	}

	for _, topic := range EvalTopics() {
		m := metrics[topic] // zero value for missing topics
		if _, err := fmt.Fprintf(w, "%-8d%-10.4f%-10.4f%-10.4f%-12.4f%.4f\n",
			topic, m.AP, m.P10, m.NDCG10, m.NDCG1000, m.TBG); err != nil {
			return err
		}
	}
	return nil
}
