// Copyright 2026, the snptree contributors.

package genome

import (
	"os"
	"path"
	"strings"
	"testing"
)

func TestAsciiClean(t *testing.T) {
	in := []byte(">s\xc3\xa9q\nAC\tGT\r\n")
	want := ">sq\nAC\tGT\r\n"
	if got := string(asciiClean(in)); got != want {
		t.Errorf("asciiClean = %q, want %q", got, want)
	}
}

func TestSanitizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"NC_000913.3 Escherichia coli str. K-12", "NC_000913.3_Escherichia_coli_str._K-12"},
		{"a|b:c-d_e.f", "a|b:c-d_e.f"},
		{"semi;colon", "semi_colon"},
		{"tabs\tand  spaces", "tabs_and_spaces"},
		{"", "unknown"},
		{"###", "unknown"},
	}

	for _, tt := range tests {
		if got := sanitizeHeader(tt.in); got != tt.want {
			t.Errorf("sanitizeHeader(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanSeq(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"acgtn", "ACGTN"},
		{"ACGTN", "ACGTN"},
		{"AC-GT RY12acgu", "ACGTACG"},
		{"RYWS", ""},
	}

	for _, tt := range tests {
		if got := string(cleanSeq([]byte(tt.in))); got != tt.want {
			t.Errorf("cleanSeq(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeBaseName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"eco.fasta", "eco.fasta"},
		{"eco.fa", "eco.fasta"},
		{"eco.fna", "eco.fasta"},
		{"eco.fas", "eco.fasta"},
		{"ECO.FA", "ECO.fasta"},
		{"eco..fasta", "eco.fasta"},
		{"eco..fa", "eco.fasta"},
		{".fasta", "unnamed.fasta"},
		{"..fasta", "unnamed.fasta"},
	}

	for _, tt := range tests {
		if got := normalizeBaseName(tt.in); got != tt.want {
			t.Errorf("normalizeBaseName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestUniqueName(t *testing.T) {
	used := map[string]bool{"x.fasta": true, "x_1.fasta": true}

	if got := uniqueName("x.fasta", used); got != "x_2.fasta" {
		t.Errorf("uniqueName = %q, want x_2.fasta", got)
	}
	if got := uniqueName("y.fasta", used); got != "y.fasta" {
		t.Errorf("uniqueName = %q, want y.fasta", got)
	}
}

func TestCleanFile(t *testing.T) {
	dir := t.TempDir()
	p := path.Join(dir, "eco.fa")
	raw := ">NC_1 Escherichia coli; strain K-12\nac gt\nNNRR\n>second record\nGGGG\n"
	if err := os.WriteFile(p, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	cg, err := cleanFile(p)
	if err != nil {
		t.Fatal(err)
	}
	if len(cg.records) != 2 {
		t.Fatalf("got %d records, want 2", len(cg.records))
	}
	if cg.header != "NC_1_Escherichia_coli__strain_K-12" {
		t.Errorf("header = %q", cg.header)
	}
	if cg.length != 10 {
		t.Errorf("length = %d, want 10", cg.length)
	}
	if got := string(cg.concat()); got != "ACGTNNGGGG" {
		t.Errorf("concat = %q", got)
	}
}

func TestCleanFileMalformed(t *testing.T) {
	dir := t.TempDir()
	p := path.Join(dir, "broken.fasta")
	if err := os.WriteFile(p, []byte("ACGT\nACGT\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := cleanFile(p); err == nil {
		t.Error("no error for sequence data before any header")
	}
}

func TestSanitizeFile(t *testing.T) {
	src := t.TempDir()
	work := t.TempDir()
	p := path.Join(src, "eco..fa")
	raw := ">K-12 reference; complete genome\nacgtACGTacgt\nNNNN\n"
	if err := os.WriteFile(p, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	rec, seq, err := SanitizeFile(p, work)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Sample != "eco" {
		t.Errorf("Sample = %q, want eco", rec.Sample)
	}
	if rec.Path != path.Join(work, "eco.fasta") {
		t.Errorf("Path = %q", rec.Path)
	}
	if rec.Source != p {
		t.Errorf("Source = %q", rec.Source)
	}
	if rec.Length != 16 || len(seq) != 16 {
		t.Errorf("Length = %d, len(seq) = %d, want 16", rec.Length, len(seq))
	}

	// The cleaned copy must itself be a valid input.
	cg, err := cleanFile(rec.Path)
	if err != nil {
		t.Fatal(err)
	}
	if len(cg.records) != 1 || cg.length != 16 {
		t.Errorf("re-parse: %d records, length %d", len(cg.records), cg.length)
	}

	b, err := os.ReadFile(rec.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(b), ">"+rec.Header+"\n") {
		t.Errorf("cleaned file starts %q", string(b)[:40])
	}
}

func TestSanitizeFileEmpty(t *testing.T) {
	src := t.TempDir()
	work := t.TempDir()
	p := path.Join(src, "empty.fasta")
	if err := os.WriteFile(p, []byte(">header only\nRYRY\n"), 0644); err != nil {
		t.Fatal(err)
	}

	_, _, err := SanitizeFile(p, work)
	if err == nil || !strings.Contains(err.Error(), "no sequence data") {
		t.Errorf("err = %v", err)
	}
}
