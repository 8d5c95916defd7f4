// Copyright 2026, the snptree contributors.
//
// Snptree builds a core genome SNP phylogeny for a directory of
// bacterial genome assemblies.  The pipeline has three stages:
//
// 1. Genome filtering.  Each candidate FASTA file is cleaned
// byte-wise (non-ASCII content is dropped), record headers are
// sanitized, sequences are reduced to the characters A/C/G/T/N, and
// the cleaned copies are written under normalized file names.  Files
// that cannot be parsed are reported and skipped.  Optional
// predicates exclude genomes that are too short or too distant from
// the reference.
//
// 2. Whole genome alignment.  The cleaned genomes are aligned with
// parsnp, either through docker (preferred when available) or as a
// native binary, producing the core genome SNP alignment.
//
// 3. Tree building.  FastTree infers an approximate maximum
// likelihood tree from the SNP alignment, and the tree tips are
// renamed from sample file names to display names taken from the
// FASTA headers.
//
// Snptree can be invoked either using a configuration file in JSON
// format, or using command-line flags.  A typical invocation using
// flags is:
//
// snptree --GenomeDir=genomes --OutDir=results --Threads=8
//
// To use a JSON config file, create a file with the flag information
// in JSON format, e.g.
//
//    {"GenomeDir": "genomes", "Threads": 8, ...}
//
// Then provide the configuration file path when invoking snptree:
//
// snptree --ConfigFileName=config.json
//
// See utils/config.go for the full set of configuration parameters.
//
// Each run writes its log, the resolved configuration, and the
// captured output of the external tools into a generated directory
// under OutDir/logs.  These files may contain useful information for
// troubleshooting.

package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"snptree/pipeline"
	"snptree/utils"
)

var config *utils.Config

func handleArgs() {

	ConfigFileName := flag.String("ConfigFileName", "", "JSON file containing configuration parameters")
	GenomeDir := flag.String("GenomeDir", "", "Directory containing the candidate genome FASTA files")
	RefFileName := flag.String("RefFileName", "", "Reference genome file (defaults to the first accepted genome)")
	OutDir := flag.String("OutDir", "", "Directory where results are written")
	WorkDir := flag.String("WorkDir", "", "Directory receiving the cleaned genome copies")
	AlnDir := flag.String("AlnDir", "", "Directory receiving the aligner outputs")
	LogDir := flag.String("LogDir", "", "Directory where per-run logs are written")
	Threads := flag.Int("Threads", 0, "Number of threads passed to the aligner")
	Engine := flag.String("Engine", "", "'auto', 'docker', or 'native'")
	ParsnpImage := flag.String("ParsnpImage", "", "Container image for the aligner")
	FastTreeImage := flag.String("FastTreeImage", "", "Container image for the tree builder")
	ParsnpPath := flag.String("ParsnpPath", "", "Native aligner program")
	FastTreePath := flag.String("FastTreePath", "", "Native tree builder program")
	MinLength := flag.Int("MinLength", 0, "Exclude genomes with cleaned length below this")
	MinDinuc := flag.Int("MinDinuc", 0, "Exclude genomes with fewer distinct dinucleotides than this")
	MinRefSimilarity := flag.Float64("MinRefSimilarity", 0, "Exclude genomes with reference k-mer similarity below this")
	KmerSize := flag.Int("KmerSize", 0, "K-mer length for the reference sketch")
	SketchBits := flag.Int("SketchBits", 0, "Size of the reference sketch Bloom filter, in bits")
	NumHash := flag.Int("NumHash", 0, "Number of hashes used by the sketch")
	CompressLogs := flag.Bool("CompressLogs", false, "Compress captured tool output with snappy")
	NoRenameTips := flag.Bool("NoRenameTips", false, "Do not write the renamed copy of the tree")

	flag.Parse()

	if *ConfigFileName != "" {
		var err error
		config, err = utils.ReadConfig(*ConfigFileName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "snptree: %v\n", err)
			os.Exit(1)
		}
	} else {
		config = new(utils.Config)
	}

	if *GenomeDir != "" {
		config.GenomeDir = *GenomeDir
	}
	if *RefFileName != "" {
		config.RefFileName = *RefFileName
	}
	if *OutDir != "" {
		config.OutDir = *OutDir
	}
	if *WorkDir != "" {
		config.WorkDir = *WorkDir
	}
	if *AlnDir != "" {
		config.AlnDir = *AlnDir
	}
	if *LogDir != "" {
		config.LogDir = *LogDir
	}
	if *Threads != 0 {
		config.Threads = *Threads
	}
	if *Engine != "" {
		config.Engine = *Engine
	}
	if *ParsnpImage != "" {
		config.ParsnpImage = *ParsnpImage
	}
	if *FastTreeImage != "" {
		config.FastTreeImage = *FastTreeImage
	}
	if *ParsnpPath != "" {
		config.ParsnpPath = *ParsnpPath
	}
	if *FastTreePath != "" {
		config.FastTreePath = *FastTreePath
	}
	if *MinLength != 0 {
		config.MinLength = *MinLength
	}
	if *MinDinuc != 0 {
		config.MinDinuc = *MinDinuc
	}
	if *MinRefSimilarity != 0 {
		config.MinRefSimilarity = *MinRefSimilarity
	}
	if *KmerSize != 0 {
		config.KmerSize = *KmerSize
	}
	if *SketchBits != 0 {
		config.SketchBits = uint64(*SketchBits)
	}
	if *NumHash != 0 {
		config.NumHash = *NumHash
	}
	if *CompressLogs {
		config.CompressLogs = true
	}
	if *NoRenameTips {
		config.NoRenameTips = true
	}
}

func checkArgs() {

	if config.GenomeDir == "" {
		os.Stderr.WriteString("\nGenomeDir not provided, run 'snptree --help' for more information.\n\n")
		os.Exit(1)
	}
	if config.OutDir == "" {
		os.Stderr.WriteString("OutDir not provided, defaulting to 'snptree_out'\n")
	}
	if config.Engine == "" {
		os.Stderr.WriteString("Engine not provided, defaulting to 'auto'\n")
	}
	if config.RefFileName != "" && !hasFastaExt(config.RefFileName) {
		msg := fmt.Sprintf("Warning: %s may not be a FASTA file, continuing anyway\n",
			config.RefFileName)
		os.Stderr.WriteString(msg)
	}

	config.ApplyDefaults()

	if err := config.Check(); err != nil {
		fmt.Fprintf(os.Stderr, "snptree: %v\n", err)
		os.Exit(1)
	}
}

func hasFastaExt(p string) bool {
	q := strings.ToLower(p)
	for _, e := range []string{".fasta", ".fa", ".fna", ".fas"} {
		if strings.HasSuffix(q, e) {
			return true
		}
	}
	return false
}

func printResults(res *pipeline.Result) {

	for _, w := range res.Report.Warnings {
		fmt.Println(w)
	}
	for _, e := range res.Report.Filtered {
		fmt.Printf("excluded %s (%s): %s\n", e.File, e.Pred, e.Reason)
	}

	fmt.Printf("Accepted %d genomes, reference %s\n", len(res.Report.Accepted), res.Reference.Sample)
	fmt.Printf("Core alignment: %s (%d sequences, %d columns)\n", res.Alignment, res.Sequences, res.Columns)
	fmt.Printf("Tree:           %s (%d tips)\n", res.Tree, res.Tips)
	if res.RenamedTree != "" {
		fmt.Printf("Renamed tree:   %s\n", res.RenamedTree)
	}
	for _, e := range res.Extras {
		fmt.Printf("Aligner extra:  %s\n", e)
	}
	fmt.Printf("Logs:           %s\n", res.LogDir)
}

func main() {

	handleArgs()
	checkArgs()

	res, err := pipeline.New(config, nil).Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "snptree: %v\n", err)
		os.Exit(1)
	}

	printResults(res)
}
