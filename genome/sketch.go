// Copyright 2026, the snptree contributors.

package genome

import (
	"fmt"

	"github.com/willf/bloom"
)

// A RefSketch is a Bloom filter over the k-mers of the reference
// genome. Candidate genomes are scored by the fraction of their
// sampled k-mers found in the sketch.
type RefSketch struct {
	bf *bloom.BloomFilter
	k  int
}

// NewRefSketch builds a sketch over every k-mer of seq. K-mers
// containing an N are skipped.
func NewRefSketch(seq []byte, k int, bits uint64, numHash int) *RefSketch {
	sk := &RefSketch{bf: bloom.New(uint(bits), uint(numHash)), k: k}
	for i := 0; i+k <= len(seq); i++ {
		km := seq[i : i+k]
		if hasN(km) {
			continue
		}
		sk.bf.Add(km)
	}
	return sk
}

func hasN(km []byte) bool {
	for _, c := range km {
		if c == 'N' {
			return true
		}
	}
	return false
}

// Similarity returns the fraction of seq's sampled k-mers present in
// the sketch. K-mers are sampled at stride k so that each base is
// covered once. A sequence shorter than k scores zero.
func (sk *RefSketch) Similarity(seq []byte) float64 {
	var n, hit int
	for i := 0; i+sk.k <= len(seq); i += sk.k {
		km := seq[i : i+sk.k]
		if hasN(km) {
			continue
		}
		n++
		if sk.bf.Test(km) {
			hit++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(hit) / float64(n)
}

// RefSimilarity excludes genomes whose sketch similarity to the
// reference falls below Min.
type RefSimilarity struct {
	Sketch *RefSketch
	Min    float64
}

func (p RefSimilarity) Name() string { return "RefSimilarity" }

func (p RefSimilarity) Keep(rec Record, seq []byte) (bool, string) {
	s := p.Sketch.Similarity(seq)
	if s >= p.Min {
		return true, ""
	}
	return false, fmt.Sprintf("reference similarity %.3f below minimum %.3f", s, p.Min)
}
