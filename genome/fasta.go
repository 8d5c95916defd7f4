// Copyright 2026, the snptree contributors.

// Package genome prepares candidate genome files for whole genome
// alignment. Raw FASTA files are cleaned byte-wise, parsed, and
// rewritten under stable names, and genomes that fail the configured
// acceptance predicates are set aside with a recorded reason.
package genome

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/biogo/biogo/alphabet"
	"github.com/biogo/biogo/io/seqio/fasta"
	"github.com/biogo/biogo/seq/linear"
)

// A Record describes one accepted genome.
type Record struct {

	// Sample is the genome's stable name, the cleaned file name
	// without its extension. The aligner labels tree tips with
	// the cleaned file name, so tips resolve back to samples.
	Sample string

	// Path of the cleaned FASTA copy that the aligner reads.
	Path string

	// Source is the original file the cleaned copy was made from.
	Source string

	// Header is the sanitized header of the first record in the
	// cleaned file, used when tree tips are renamed.
	Header string

	// Length is the total cleaned sequence length over all records
	// in the file.
	Length int
}

// asciiClean drops every byte outside printable ASCII, keeping tab,
// newline, and carriage return.
func asciiClean(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for _, b := range data {
		if b == 9 || b == 10 || b == 13 || (b >= 32 && b <= 126) {
			out = append(out, b)
		}
	}
	return out
}

var (
	headerBad = regexp.MustCompile(`[^A-Za-z0-9_.:|\- ]`)
	headerWS  = regexp.MustCompile(`\s+`)
)

// sanitizeHeader rewrites a record header so that only characters the
// downstream tools accept remain. An empty header becomes "unknown".
func sanitizeHeader(h string) string {
	h = headerBad.ReplaceAllString(h, "_")
	h = headerWS.ReplaceAllString(h, "_")
	if strings.Trim(h, "_") == "" {
		return "unknown"
	}
	return h
}

// cleanSeq uppercases a sequence and drops every character that is not
// one of A, C, G, T, N.
func cleanSeq(seq []byte) []byte {
	out := make([]byte, 0, len(seq))
	for _, c := range seq {
		switch c {
		case 'a', 'c', 'g', 't', 'n':
			c -= 'a' - 'A'
		case 'A', 'C', 'G', 'T', 'N':
		default:
			continue
		}
		out = append(out, c)
	}
	return out
}

// normalizeBaseName maps a source file name to its cleaned copy's
// name: the extension becomes .fasta, trailing dots in the stem
// collapse, and a bare extension becomes unnamed.fasta.
func normalizeBaseName(base string) string {
	var ext string
	lower := strings.ToLower(base)
	for _, e := range fastaExts {
		if strings.HasSuffix(lower, e) {
			ext = e
			break
		}
	}
	stem := strings.TrimRight(base[:len(base)-len(ext)], ".")
	if stem == "" {
		return "unnamed.fasta"
	}
	return stem + ".fasta"
}

// uniqueName resolves collisions between normalized names by numbering
// later arrivals.
func uniqueName(base string, used map[string]bool) string {
	if !used[base] {
		return base
	}
	stem := strings.TrimSuffix(base, ".fasta")
	for i := 1; ; i++ {
		cand := fmt.Sprintf("%s_%d.fasta", stem, i)
		if !used[cand] {
			return cand
		}
	}
}

// A cleanGenome holds one genome's records after cleaning, before the
// cleaned copy is written. Records whose sequence cleaned to nothing
// are not included.
type cleanGenome struct {
	source  string
	records []*linear.Seq
	header  string
	length  int
}

// concat returns the cleaned sequence of every record joined together.
func (cg *cleanGenome) concat() []byte {
	out := make([]byte, 0, cg.length)
	for _, s := range cg.records {
		out = append(out, lettersToBytes(s.Seq)...)
	}
	return out
}

// cleanFile reads a raw genome file, strips non-ASCII bytes, parses
// the FASTA records, and cleans headers and sequences. A parse error
// is returned as-is; an input that cleans to nothing yields a
// cleanGenome with no records.
func cleanFile(p string) (*cleanGenome, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	data = asciiClean(data)

	rdr := fasta.NewReader(bytes.NewReader(data), linear.NewSeq("", nil, alphabet.DNA))
	cg := &cleanGenome{source: p}
	for {
		s, err := rdr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		sq := s.(*linear.Seq)
		hdr := sanitizeHeader(strings.TrimSpace(headerText(sq)))
		seqb := cleanSeq(lettersToBytes(sq.Seq))
		if len(seqb) == 0 {
			continue
		}
		if cg.header == "" {
			cg.header = hdr
		}
		cg.length += len(seqb)
		cg.records = append(cg.records, linear.NewSeq(hdr, alphabet.BytesToLetters(seqb), alphabet.DNA))
	}
	return cg, nil
}

// headerText reconstructs the full header text of a parsed record.
func headerText(s *linear.Seq) string {
	if s.Desc != "" {
		return s.ID + " " + s.Desc
	}
	return s.ID
}

func lettersToBytes(ls alphabet.Letters) []byte {
	b := make([]byte, len(ls))
	for i, l := range ls {
		b[i] = byte(l)
	}
	return b
}

// writeFasta writes the cleaned records to p, wrapped at 60 columns.
func writeFasta(cg *cleanGenome, p string) error {
	fid, err := os.Create(p)
	if err != nil {
		return err
	}
	w := fasta.NewWriter(fid, 60)
	for _, s := range cg.records {
		if _, err := w.Write(s); err != nil {
			fid.Close()
			return err
		}
	}
	return fid.Close()
}

// SanitizeFile cleans one genome file and writes the cleaned copy into
// workDir under its normalized name. The concatenated cleaned sequence
// is returned alongside the record so that callers can build a
// reference sketch from it.
func SanitizeFile(p, workDir string) (Record, []byte, error) {
	cg, err := cleanFile(p)
	if err != nil {
		return Record{}, nil, fmt.Errorf("%s: %w", path.Base(p), err)
	}
	if len(cg.records) == 0 {
		return Record{}, nil, fmt.Errorf("%s: no sequence data after cleaning", path.Base(p))
	}
	base := normalizeBaseName(path.Base(p))
	dst := path.Join(workDir, base)
	if err := writeFasta(cg, dst); err != nil {
		return Record{}, nil, err
	}
	rec := Record{
		Sample: strings.TrimSuffix(base, ".fasta"),
		Path:   dst,
		Source: p,
		Header: cg.header,
		Length: cg.length,
	}
	return rec, cg.concat(), nil
}
