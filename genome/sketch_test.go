// Copyright 2026, the snptree contributors.

package genome

import (
	"math/rand"
	"testing"
)

func randSeq(seed int64, n int) []byte {
	r := rand.New(rand.NewSource(seed))
	letters := []byte("ACGT")
	out := make([]byte, n)
	for i := range out {
		out[i] = letters[r.Intn(4)]
	}
	return out
}

func TestRefSketchSelfSimilarity(t *testing.T) {
	ref := randSeq(1, 4096)
	sk := NewRefSketch(ref, 21, 1<<20, 5)

	if s := sk.Similarity(ref); s < 0.999 {
		t.Errorf("self similarity = %v", s)
	}
}

func TestRefSketchDissimilar(t *testing.T) {
	sk := NewRefSketch(randSeq(1, 4096), 21, 1<<20, 5)

	if s := sk.Similarity(randSeq(2, 4096)); s > 0.2 {
		t.Errorf("unrelated similarity = %v", s)
	}
}

func TestRefSketchSkipsN(t *testing.T) {
	sk := NewRefSketch([]byte("ACGTNACGT"), 4, 1<<16, 3)

	if s := sk.Similarity([]byte("ACGT")); s != 1 {
		t.Errorf("similarity = %v, want 1", s)
	}
	if s := sk.Similarity([]byte("NNNNNNNN")); s != 0 {
		t.Errorf("all-N similarity = %v, want 0", s)
	}
}

func TestRefSketchShortSequence(t *testing.T) {
	sk := NewRefSketch(randSeq(1, 4096), 21, 1<<20, 5)

	if s := sk.Similarity([]byte("ACGT")); s != 0 {
		t.Errorf("short sequence similarity = %v, want 0", s)
	}
}

func TestRefSimilarityPredicate(t *testing.T) {
	ref := randSeq(1, 4096)
	pred := RefSimilarity{Sketch: NewRefSketch(ref, 21, 1<<20, 5), Min: 0.5}

	if keep, _ := pred.Keep(Record{Sample: "same"}, ref); !keep {
		t.Error("identical genome rejected")
	}
	keep, why := pred.Keep(Record{Sample: "far"}, randSeq(9, 4096))
	if keep {
		t.Error("unrelated genome kept")
	}
	if why == "" {
		t.Error("no reason given for exclusion")
	}
	if pred.Name() != "RefSimilarity" {
		t.Errorf("Name = %q", pred.Name())
	}
}
