// Copyright 2026, the snptree contributors.

// Package phylo post-processes the Newick tree produced by the tree
// building stage.
package phylo

import (
	"fmt"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/evolbioinfo/gotree/io/newick"
	"github.com/evolbioinfo/gotree/tree"

	"snptree/genome"
)

var (
	tipSuffix = regexp.MustCompile(`(?i)(complete_?genome|chromosome|scaffold|contig|assembly)$`)
	tipUnders = regexp.MustCompile(`__+`)
)

// BuildNameMap maps each genome's sample name to a display name
// derived from its first record header. Boilerplate trailing words
// like "complete_genome" are dropped, and a header that empties out
// falls back to the sample name.
func BuildNameMap(recs []genome.Record) map[string]string {
	mp := make(map[string]string, len(recs))
	for _, r := range recs {
		nice := tipSuffix.ReplaceAllString(r.Header, "")
		nice = tipUnders.ReplaceAllString(nice, "_")
		nice = strings.Trim(nice, "_")
		if nice == "" {
			nice = r.Sample
		}
		mp[r.Sample] = nice
	}
	return mp
}

// ReadTree parses the Newick file at p.
func ReadTree(p string) (*tree.Tree, error) {
	fid, err := os.Open(p)
	if err != nil {
		return nil, err
	}
	defer fid.Close()
	t, err := newick.NewParser(fid).Parse()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return t, nil
}

// Leaves returns the sorted tip labels of the Newick tree at p.
func Leaves(p string) ([]string, error) {
	t, err := ReadTree(p)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, tip := range t.Tips() {
		names = append(names, tip.Name())
	}
	sort.Strings(names)
	return names, nil
}

// RenameTips writes a copy of the Newick tree at in to out, with tip
// labels replaced by display names. A label is looked up directly,
// then with a trailing .ref marker removed, then with the .fasta
// extension removed as well, since the aligner appends both to the
// cleaned file name. The .ref marker is kept on the renamed tip.
// Unmatched tips keep their label. The number of renamed tips is
// returned.
func RenameTips(in, out string, names map[string]string) (int, error) {
	t, err := ReadTree(in)
	if err != nil {
		return 0, err
	}

	var n int
	for _, tip := range t.Tips() {
		label := strings.Trim(tip.Name(), "'\"")
		base, isRef := strings.CutSuffix(label, ".ref")
		key := strings.TrimSuffix(base, ".fasta")
		nice, ok := names[key]
		if !ok {
			continue
		}
		if isRef {
			nice += ".ref"
		}
		tip.SetName(nice)
		n++
	}

	fid, err := os.Create(out)
	if err != nil {
		return 0, err
	}
	if _, err := fmt.Fprintln(fid, t.Newick()); err != nil {
		fid.Close()
		return 0, err
	}
	return n, fid.Close()
}
