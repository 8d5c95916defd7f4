// Copyright 2026, the snptree contributors.

/*
Generate a synthetic genome collection for exercising the pipeline.

genome_0.fasta is the ancestor. Every other genome is a copy of the
ancestor with point mutations applied independently at each position
at the configured rate, so genomes generated with a higher rate sit
further from the ancestor in the resulting tree.

The headers carry a trailing "complete_genome" word, which the tip
renaming step strips, as the headers of real assemblies often do.
*/

package main

import (
	"bufio"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path"
)

var (
	numGenome int
	genomeLen int
	mutRate   float64
	seed      int64
	dir       string

	rng *rand.Rand
)

var bases = []byte{'A', 'C', 'G', 'T'}

func genRand(n int) []byte {
	seq := make([]byte, n)
	for j := range seq {
		seq[j] = bases[rng.Intn(4)]
	}
	return seq
}

// mutate returns a copy of seq with each position replaced, with
// probability rate, by one of the other three bases.
func mutate(seq []byte, rate float64) []byte {
	out := make([]byte, len(seq))
	copy(out, seq)
	for j, x := range out {
		if rng.Float64() >= rate {
			continue
		}
		b := bases[rng.Intn(4)]
		for b == x {
			b = bases[rng.Intn(4)]
		}
		out[j] = b
	}
	return out
}

func writeGenome(name, header string, seq []byte) {
	fid, err := os.Create(path.Join(dir, name))
	if err != nil {
		panic(err)
	}
	defer fid.Close()
	w := bufio.NewWriter(fid)
	defer w.Flush()

	fmt.Fprintf(w, ">%s\n", header)
	for len(seq) > 70 {
		w.Write(seq[0:70])
		w.WriteString("\n")
		seq = seq[70:]
	}
	w.Write(seq)
	w.WriteString("\n")
}

func main() {

	flag.IntVar(&numGenome, "NumGenome", 5, "Number of genomes")
	flag.IntVar(&genomeLen, "GenomeLen", 50000, "Genome length")
	flag.Float64Var(&mutRate, "MutRate", 0.01, "Per-base mutation rate")
	flag.Int64Var(&seed, "Seed", 1, "Random seed")
	flag.StringVar(&dir, "Dir", ".", "Directory where the genomes are written")

	flag.Parse()

	if numGenome < 2 {
		panic("NumGenome must be at least 2")
	}

	rng = rand.New(rand.NewSource(seed))

	if err := os.MkdirAll(dir, 0755); err != nil {
		panic(err)
	}

	ancestor := genRand(genomeLen)
	writeGenome("genome_0.fasta", "synthetic_isolate_0_complete_genome", ancestor)

	fmt.Printf("Writing %d genomes of length %d\n", numGenome, genomeLen)
	for i := 1; i < numGenome; i++ {
		name := fmt.Sprintf("genome_%d.fasta", i)
		header := fmt.Sprintf("synthetic_isolate_%d_complete_genome", i)
		writeGenome(name, header, mutate(ancestor, mutRate))
	}
}
