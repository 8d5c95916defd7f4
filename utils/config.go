// Copyright 2026, the snptree contributors.

package utils

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"runtime"
)

// Engine names accepted by Config.Engine.
const (
	EngineAuto   = "auto"
	EngineDocker = "docker"
	EngineNative = "native"
)

// Config holds every parameter of a pipeline run. A run receives its
// configuration explicitly; no stage reads paths from package state.
type Config struct {

	// The directory containing the candidate genome files, in FASTA
	// format (.fasta, .fa, .fna, or .fas).
	GenomeDir string

	// The reference genome file. If blank, the first accepted genome
	// (in cleaned-name order) becomes the reference, which matches the
	// behavior of the original workflow.
	RefFileName string

	// The directory where all results are written. Defaults to
	// snptree_out in the current directory.
	OutDir string

	// The directory receiving the sanitized copies of the accepted
	// genomes, which the aligner reads. Defaults to OutDir/genomes_clean.
	WorkDir string

	// The directory receiving the aligner's own output files. Defaults
	// to OutDir/parsnp.
	AlnDir string

	// The directory where log files are written. Each run appends a
	// generated run id, so logs from successive runs do not collide.
	// Defaults to OutDir/logs.
	LogDir string

	// The number of threads passed to the aligner.
	Threads int

	// Engine selects how the external tools run: "docker", "native",
	// or "auto" (docker when reachable, otherwise native binaries).
	Engine string

	// Container images for the two tools, used by the docker engine.
	ParsnpImage   string
	FastTreeImage string

	// Native tool programs, used by the native engine. Bare names are
	// resolved against PATH.
	ParsnpPath   string
	FastTreePath string

	// Genomes whose total cleaned sequence length is below MinLength
	// are excluded. Zero disables the check.
	MinLength int

	// Genomes whose cleaned sequence contains fewer than MinDinuc
	// distinct dinucleotides are excluded as degenerate. Zero disables
	// the check.
	MinDinuc int

	// The minimum fraction of a genome's sampled k-mers that must be
	// present in the reference sketch for the genome to be accepted.
	// Zero disables the check. When set, RefFileName is required,
	// because the sketch is built before filtering begins.
	MinRefSimilarity float64

	// The k-mer length used by the reference sketch.
	KmerSize int

	// The size of the reference sketch Bloom filter, in bits.
	SketchBits uint64

	// The number of hash functions used by the sketch.
	NumHash int

	// If true, the captured stdout/stderr of the external tools are
	// written snappy-compressed (.sz). The run log stays plain.
	CompressLogs bool

	// If true, the tip-renaming step is skipped and only the primary
	// tree file is written.
	NoRenameTips bool
}

// ReadConfig loads a configuration file in JSON format.
func ReadConfig(filename string) (*Config, error) {
	fid, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fid.Close()
	dec := json.NewDecoder(fid)
	config := new(Config)
	if err := dec.Decode(config); err != nil {
		return nil, fmt.Errorf("config %s: %w", filename, err)
	}
	return config, nil
}

// SaveConfig writes the resolved configuration in JSON format into dir,
// so a run's exact parameters can be reconstructed from its log
// directory.
func SaveConfig(config *Config, dir string) (string, error) {
	p := path.Join(dir, "config.json")
	fid, err := os.Create(p)
	if err != nil {
		return "", err
	}
	defer fid.Close()
	enc := json.NewEncoder(fid)
	enc.SetIndent("", "  ")
	if err := enc.Encode(config); err != nil {
		return "", err
	}
	return p, nil
}

// ApplyDefaults fills every unset field that has a usable default.
// GenomeDir has no default and stays as given.
func (c *Config) ApplyDefaults() {
	if c.OutDir == "" {
		c.OutDir = "snptree_out"
	}
	if c.WorkDir == "" {
		c.WorkDir = path.Join(c.OutDir, "genomes_clean")
	}
	if c.AlnDir == "" {
		c.AlnDir = path.Join(c.OutDir, "parsnp")
	}
	if c.LogDir == "" {
		c.LogDir = path.Join(c.OutDir, "logs")
	}
	if c.Threads == 0 {
		c.Threads = runtime.NumCPU()
	}
	if c.Engine == "" {
		c.Engine = EngineAuto
	}
	if c.ParsnpImage == "" {
		c.ParsnpImage = "staphb/parsnp:1.5.6"
	}
	if c.FastTreeImage == "" {
		c.FastTreeImage = "staphb/fasttree:2.1.11"
	}
	if c.ParsnpPath == "" {
		c.ParsnpPath = "parsnp"
	}
	if c.FastTreePath == "" {
		c.FastTreePath = "fasttree"
	}
	if c.KmerSize == 0 {
		c.KmerSize = 21
	}
	if c.SketchBits == 0 {
		c.SketchBits = 64 * 1000 * 1000
	}
	if c.NumHash == 0 {
		c.NumHash = 5
	}
}

// Check reports configuration errors that no default can repair.
func (c *Config) Check() error {
	if c.GenomeDir == "" {
		return fmt.Errorf("GenomeDir must be specified")
	}
	switch c.Engine {
	case EngineAuto, EngineDocker, EngineNative:
	default:
		return fmt.Errorf("Engine must be one of %s, %s, %s; got %q",
			EngineAuto, EngineDocker, EngineNative, c.Engine)
	}
	if c.MinRefSimilarity < 0 || c.MinRefSimilarity > 1 {
		return fmt.Errorf("MinRefSimilarity must be in [0, 1]; got %v", c.MinRefSimilarity)
	}
	if c.MinRefSimilarity > 0 && c.RefFileName == "" {
		return fmt.Errorf("MinRefSimilarity requires RefFileName, because the reference sketch is built before filtering")
	}
	return nil
}
