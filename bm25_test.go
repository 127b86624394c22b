package latimes

import (
	"bytes"
	"math"
	"strings"
	"testing"
)

// ═══════════════════════════════════════════════════════════════════════════════
// SCORING TESTS
// ═══════════════════════════════════════════════════════════════════════════════

func TestBM25_SingleDocumentMatch(t *testing.T) {
	idx := buildTestIndex(t, []testDoc{
		{docno: "LA010189-0001", text: "The quick brown fox jumps"},
	})
	engine := NewBM25Engine(idx)

	results := engine.Retrieve("the quick brown fox", MaxBM25Results)
	if len(results) != 1 {
		t.Fatalf("Retrieve() returned %d results, want 1", len(results))
	}
	if results[0].DocID != 0 {
		t.Errorf("result doc = %d, want 0", results[0].DocID)
	}
}

func TestBM25_HandComputedScore(t *testing.T) {
	idx := buildTestIndex(t, []testDoc{
		{docno: "LA010189-0001", text: "fox fox fox"},
		{docno: "LA010189-0002", text: "dog"},
		{docno: "LA010189-0003", text: "cat bird"},
	})
	engine := NewBM25Engine(idx)

	// N=3, avgdl=2. For "fox": n=1, idf=ln(2.5/1.5); doc 0 has dl=3, f=3:
	// K = 1.2·(0.25 + 0.75·1.5) = 1.65
	// score = (2.2·3)/(1.65+3) · (8·1)/(7+1) · ln(2.5/1.5) ≈ 0.725043
	results := engine.Retrieve("fox", MaxBM25Results)
	if len(results) != 1 {
		t.Fatalf("Retrieve() returned %d results, want 1", len(results))
	}
	if got := results[0].Score; math.Abs(got-0.725043) > 1e-4 {
		t.Errorf("score = %v, want ≈0.725043", got)
	}
}

func TestBM25_NegativeIDFStillRanked(t *testing.T) {
	// "fox" appears in 2 of 3 documents: idf = ln(1.5/2.5) < 0.
	idx := buildTestIndex(t, []testDoc{
		{docno: "LA010189-0001", text: "fox alpha alpha"},
		{docno: "LA010189-0002", text: "fox beta beta"},
		{docno: "LA010189-0003", text: "clever gamma delta"},
	})
	engine := NewBM25Engine(idx)

	results := engine.Retrieve("fox clever", MaxBM25Results)
	if len(results) != 3 {
		t.Fatalf("Retrieve() returned %d results, want 3", len(results))
	}

	// The positive-idf match ranks first; the negative scorers still rank,
	// below it, tie-broken by ascending doc id.
	if results[0].DocID != 2 || results[0].Score <= 0 {
		t.Errorf("rank 1 = doc %d score %v, want doc 2 with positive score",
			results[0].DocID, results[0].Score)
	}
	if results[1].Score >= 0 || results[2].Score >= 0 {
		t.Errorf("negative-idf docs should score below zero: %v, %v",
			results[1].Score, results[2].Score)
	}
	if results[1].DocID != 0 || results[2].DocID != 1 {
		t.Errorf("tied negative docs = [%d %d], want [0 1]",
			results[1].DocID, results[2].DocID)
	}
}

func TestBM25_QueryFrequencyMatters(t *testing.T) {
	idx := buildTestIndex(t, []testDoc{
		{docno: "LA010189-0001", text: "fox den"},
		{docno: "LA010189-0002", text: "dog pound"},
		{docno: "LA010189-0003", text: "cat bird"},
	})
	engine := NewBM25Engine(idx)

	single := engine.Retrieve("fox", MaxBM25Results)
	repeated := engine.Retrieve("fox fox fox", MaxBM25Results)

	if len(single) != 1 || len(repeated) != 1 {
		t.Fatalf("unexpected result counts: %d, %d", len(single), len(repeated))
	}
	// (k2+1)·qf/(k2+qf) grows with qf, so the repeated query scores higher.
	if repeated[0].Score <= single[0].Score {
		t.Errorf("qf=3 score %v not greater than qf=1 score %v",
			repeated[0].Score, single[0].Score)
	}
}

func TestBM25_OOVTermsDropped(t *testing.T) {
	idx := buildTestIndex(t, []testDoc{
		{docno: "LA010189-0001", text: "fox den"},
	})
	engine := NewBM25Engine(idx)

	if got := engine.Retrieve("zebra", MaxBM25Results); len(got) != 0 {
		t.Errorf("all-OOV query returned %v, want empty", got)
	}

	results := engine.Retrieve("fox zebra", MaxBM25Results)
	if len(results) != 1 {
		t.Errorf("OOV term should not block retrieval: got %d results", len(results))
	}
}

func TestBM25_LimitTruncates(t *testing.T) {
	idx := buildTestIndex(t, []testDoc{
		{docno: "LA010189-0001", text: "fox one"},
		{docno: "LA010189-0002", text: "fox two"},
		{docno: "LA010189-0003", text: "fox three"},
		{docno: "LA010189-0004", text: "fox four"},
	})
	engine := NewBM25Engine(idx)

	if got := engine.Retrieve("fox", 3); len(got) != 3 {
		t.Errorf("Retrieve(limit=3) returned %d results", len(got))
	}
	if MaxBM25Results != 1000 {
		t.Errorf("MaxBM25Results = %d, want 1000", MaxBM25Results)
	}
}

// ═══════════════════════════════════════════════════════════════════════════════
// DETERMINISM AND RUN OUTPUT
// ═══════════════════════════════════════════════════════════════════════════════

func TestBM25_ByteStableAcrossRuns(t *testing.T) {
	idx := buildTestIndex(t, []testDoc{
		{docno: "LA010189-0001", text: "the quick brown fox jumps over the lazy dog"},
		{docno: "LA010189-0002", text: "the lazy brown dog sleeps"},
		{docno: "LA010289-0001", text: "quick brown foxes are clever"},
	})
	engine := NewBM25Engine(idx)
	topics := []TopicQuery{
		{Topic: 401, Query: "quick brown fox"},
		{Topic: 402, Query: "lazy dog"},
	}

	var first, second bytes.Buffer
	if err := engine.WriteRun(&first, topics); err != nil {
		t.Fatalf("WriteRun() error = %v", err)
	}
	if err := engine.WriteRun(&second, topics); err != nil {
		t.Fatalf("WriteRun() error = %v", err)
	}

	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Error("identical query produced different bytes across runs")
	}
}

func TestBM25_WriteRunFormat(t *testing.T) {
	idx := buildTestIndex(t, []testDoc{
		{docno: "LA010189-0001", text: "fox den"},
		{docno: "LA010189-0002", text: "dog pound"},
	})
	engine := NewBM25Engine(idx)

	var buf bytes.Buffer
	if err := engine.WriteRun(&buf, []TopicQuery{{Topic: 407, Query: "fox"}}); err != nil {
		t.Fatalf("WriteRun() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("WriteRun emitted %d lines, want 1", len(lines))
	}

	parsed, err := ParseRunLine(lines[0])
	if err != nil {
		t.Fatalf("engine output does not parse: %v", err)
	}
	if parsed.Topic != 407 || parsed.DocNo != "LA010189-0001" ||
		parsed.Rank != 1 || parsed.Tag != BM25RunTag {
		t.Errorf("parsed line = %+v", parsed)
	}
}
