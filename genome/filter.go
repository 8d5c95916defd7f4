// Copyright 2026, the snptree contributors.

package genome

import (
	"fmt"
	"log"
	"os"
	"path"
	"sort"
	"strings"
)

// fastaExts are the file name extensions scanned for candidate
// genomes, matched case-insensitively.
var fastaExts = []string{".fasta", ".fa", ".fna", ".fas"}

// A MalformedInputWarning records a candidate file that could not be
// used, and why. Filtering proceeds without the file.
type MalformedInputWarning struct {
	File   string
	Reason string
}

func (w MalformedInputWarning) String() string {
	return fmt.Sprintf("MalformedInputWarning: %s: %s", w.File, w.Reason)
}

// An Exclusion records a genome that an acceptance predicate set
// aside.
type Exclusion struct {
	File   string
	Pred   string
	Reason string
}

// A Report summarizes one filtering pass.
type Report struct {

	// Accepted genomes, ordered by cleaned file name. When the
	// reference was configured explicitly it comes first.
	Accepted []Record

	// Filtered genomes, with the predicate that rejected each one.
	Filtered []Exclusion

	// Warnings for files that could not be read or parsed.
	Warnings []MalformedInputWarning
}

// A Predicate decides whether a cleaned genome is carried into the
// alignment. Keep returns false, with a human readable reason, when
// the genome is to be set aside. The seq argument is the genome's
// concatenated cleaned sequence.
type Predicate interface {
	Name() string
	Keep(rec Record, seq []byte) (bool, string)
}

// MinLength excludes genomes whose total cleaned length is below N.
type MinLength struct {
	N int
}

func (p MinLength) Name() string { return "MinLength" }

func (p MinLength) Keep(rec Record, seq []byte) (bool, string) {
	if rec.Length >= p.N {
		return true, ""
	}
	return false, fmt.Sprintf("cleaned length %d below minimum %d", rec.Length, p.N)
}

// CountDinuc returns the number of distinct dinucleotides in seq.
// Bases other than A, C, G, and T share one further symbol, so the
// count is at most 25.
func CountDinuc(seq []byte) int {
	var wk [25]bool
	var last, n int
	for i, x := range seq {
		var v int
		switch x {
		case 'A':
			v = 0
		case 'C':
			v = 1
		case 'G':
			v = 2
		case 'T':
			v = 3
		default:
			v = 4
		}
		if i > 0 {
			k := 5*last + v
			if !wk[k] {
				wk[k] = true
				n++
			}
		}
		last = v
	}
	return n
}

// MinDinuc excludes genomes whose cleaned sequence contains fewer than
// N distinct dinucleotides, screening out degenerate inputs such as
// homopolymer runs.
type MinDinuc struct {
	N int
}

func (p MinDinuc) Name() string { return "MinDinuc" }

func (p MinDinuc) Keep(rec Record, seq []byte) (bool, string) {
	if n := CountDinuc(seq); n < p.N {
		return false, fmt.Sprintf("%d distinct dinucleotides below minimum %d", n, p.N)
	}
	return true, ""
}

// ListCandidates returns the genome files in dir, sorted by name.
func ListCandidates(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := strings.ToLower(e.Name())
		for _, ext := range fastaExts {
			if strings.HasSuffix(name, ext) {
				files = append(files, path.Join(dir, e.Name()))
				break
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// Filter cleans every candidate genome in dir, applies the acceptance
// predicates in order, and writes each accepted genome into workDir
// under its normalized name. When ref is not nil it names an already
// sanitized reference living in workDir; the reference is accepted
// unconditionally, listed first, and its source file is skipped if it
// also appears in dir. Files that cannot be parsed produce warnings,
// not errors, so one bad download does not sink the run.
func Filter(dir, workDir string, ref *Record, preds []Predicate, logger *log.Logger) (*Report, error) {
	files, err := ListCandidates(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return nil, err
	}

	rpt := new(Report)
	used := make(map[string]bool)
	if ref != nil {
		used[path.Base(ref.Path)] = true
		rpt.Accepted = append(rpt.Accepted, *ref)
	}

	for _, p := range files {
		if ref != nil && path.Clean(p) == path.Clean(ref.Source) {
			continue
		}

		cg, err := cleanFile(p)
		if err != nil {
			warn(rpt, logger, p, err.Error())
			continue
		}
		if len(cg.records) == 0 {
			warn(rpt, logger, p, "no sequence data after cleaning")
			continue
		}

		base := uniqueName(normalizeBaseName(path.Base(p)), used)
		rec := Record{
			Sample: strings.TrimSuffix(base, ".fasta"),
			Path:   path.Join(workDir, base),
			Source: p,
			Header: cg.header,
			Length: cg.length,
		}

		if excl, ok := reject(rec, cg, preds); ok {
			rpt.Filtered = append(rpt.Filtered, excl)
			if logger != nil {
				logger.Printf("excluding %s (%s): %s", excl.File, excl.Pred, excl.Reason)
			}
			continue
		}

		if err := writeFasta(cg, rec.Path); err != nil {
			return nil, err
		}
		used[base] = true
		rpt.Accepted = append(rpt.Accepted, rec)
		if logger != nil {
			logger.Printf("accepted %s as %s (%d bases)", path.Base(p), base, rec.Length)
		}
	}

	// The explicit reference, when present, stays first.
	rest := rpt.Accepted
	if ref != nil {
		rest = rpt.Accepted[1:]
	}
	sort.Slice(rest, func(i, j int) bool {
		return path.Base(rest[i].Path) < path.Base(rest[j].Path)
	})

	return rpt, nil
}

func warn(rpt *Report, logger *log.Logger, p, reason string) {
	w := MalformedInputWarning{File: path.Base(p), Reason: reason}
	rpt.Warnings = append(rpt.Warnings, w)
	if logger != nil {
		logger.Print(w)
	}
}

func reject(rec Record, cg *cleanGenome, preds []Predicate) (Exclusion, bool) {
	if len(preds) == 0 {
		return Exclusion{}, false
	}
	seq := cg.concat()
	for _, pred := range preds {
		if keep, why := pred.Keep(rec, seq); !keep {
			return Exclusion{File: path.Base(rec.Source), Pred: pred.Name(), Reason: why}, true
		}
	}
	return Exclusion{}, false
}
