// Copyright 2026, the snptree contributors.

package phylo

import (
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snptree/genome"
)

func TestBuildNameMap(t *testing.T) {
	recs := []genome.Record{
		{Sample: "eco1", Header: "NC_000913.3_Escherichia_coli_K-12_complete_genome"},
		{Sample: "eco2", Header: "assembly"},
		{Sample: "eco3", Header: "Shigella__flexneri_chromosome"},
		{Sample: "eco4", Header: "plain_name"},
	}

	mp := BuildNameMap(recs)

	assert.Equal(t, "NC_000913.3_Escherichia_coli_K-12", mp["eco1"])
	assert.Equal(t, "eco2", mp["eco2"], "header that empties out falls back to the sample name")
	assert.Equal(t, "Shigella_flexneri", mp["eco3"])
	assert.Equal(t, "plain_name", mp["eco4"])
}

func writeTree(t *testing.T, dir, name, newick string) string {
	t.Helper()
	p := path.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(newick+"\n"), 0644))
	return p
}

func TestLeaves(t *testing.T) {
	dir := t.TempDir()
	p := writeTree(t, dir, "t.tree", "(c:0.1,(a:0.2,b:0.3):0.05);")

	tips, err := Leaves(p)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, tips)
}

func TestLeavesBadFile(t *testing.T) {
	dir := t.TempDir()
	p := writeTree(t, dir, "t.tree", "this is not newick at all ((")

	_, err := Leaves(p)
	assert.Error(t, err)
}

func TestRenameTips(t *testing.T) {
	dir := t.TempDir()
	in := writeTree(t, dir, "in.tree",
		"(eco1.fasta.ref:0.1,(eco2.fasta:0.2,eco3.fasta:0.3):0.05);")
	out := path.Join(dir, "out.tree")

	names := map[string]string{
		"eco1": "K12_reference",
		"eco2": "O157_H7",
	}

	n, err := RenameTips(in, out, names)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	tips, err := Leaves(out)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"K12_reference.ref", "O157_H7", "eco3.fasta"}, tips)
}

func TestRenameTipsPlainLabels(t *testing.T) {
	dir := t.TempDir()
	in := writeTree(t, dir, "in.tree", "(eco1:0.1,eco2:0.2,eco3:0.3);")
	out := path.Join(dir, "out.tree")

	n, err := RenameTips(in, out, map[string]string{"eco1": "K12", "eco3": "Shigella"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	tips, err := Leaves(out)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"K12", "eco2", "Shigella"}, tips)
}

func TestRenameTipsMissingInput(t *testing.T) {
	dir := t.TempDir()

	_, err := RenameTips(path.Join(dir, "absent.tree"), path.Join(dir, "out.tree"), nil)
	assert.Error(t, err)
}
