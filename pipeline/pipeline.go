// Copyright 2026, the snptree contributors.

// Package pipeline drives a whole run: genome filtering, whole genome
// alignment, and tree building. Every external tool invocation goes
// through the Runner interface, and each run writes its logs, resolved
// configuration, and captured tool output into a fresh log directory.
package pipeline

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path"

	"snptree/genome"
	"snptree/utils"
)

// minFreeSpace is the free disk space below which a warning is logged
// before the run begins.
const minFreeSpace uint64 = 1 << 30

// A Pipeline runs the three stages over one configuration.
type Pipeline struct {

	// Config is the fully resolved run configuration.
	Config *utils.Config

	// Runner executes the external tools.
	Runner Runner

	// Log receives the run log. Run replaces it with a logger that
	// writes into the run's log directory.
	Log *log.Logger

	logDir string
	engine string
	report *genome.Report
}

// A Result summarizes a completed run.
type Result struct {

	// LogDir is the run's log directory, holding the run log, the
	// resolved configuration, and the captured tool output.
	LogDir string

	// Report is the genome filter's accounting of accepted, filtered,
	// and unparseable inputs.
	Report *genome.Report

	// Reference is the genome the alignment was anchored on.
	Reference genome.Record

	// Alignment is the path of the core alignment consumed by the
	// tree builder.
	Alignment string

	// Sequences and Columns are the core alignment's dimensions.
	Sequences int
	Columns   int

	// Tree is the path of the Newick tree.
	Tree string

	// Tips is the number of leaves in the tree.
	Tips int

	// RenamedTree is the path of the tree with display names on its
	// tips. Empty when renaming was skipped or failed.
	RenamedTree string

	// Extras lists further aligner outputs found next to the core
	// alignment, such as the variant calls.
	Extras []string
}

// New returns a Pipeline over config that runs tools with runner. A
// nil runner selects ExecRunner.
func New(config *utils.Config, runner Runner) *Pipeline {
	if runner == nil {
		runner = ExecRunner{}
	}
	return &Pipeline{Config: config, Runner: runner}
}

// Run executes the pipeline and returns a summary of the artifacts. A
// stage that cannot proceed aborts the run; nothing is retried.
func (p *Pipeline) Run() (*Result, error) {

	if err := p.Config.Check(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(p.Config.GenomeDir); err != nil {
		return nil, &MissingInputError{What: "genome directory", Path: p.Config.GenomeDir}
	}
	for _, d := range []string{p.Config.OutDir, p.Config.WorkDir, p.Config.AlnDir} {
		if err := os.MkdirAll(d, 0755); err != nil {
			return nil, err
		}
	}

	logDir, err := utils.NewRunDir(p.Config.LogDir)
	if err != nil {
		return nil, err
	}
	p.logDir = logDir

	logger, logFid, err := utils.NewRunLog(logDir)
	if err != nil {
		return nil, err
	}
	defer logFid.Close()
	p.Log = logger
	p.Log.Printf("Genome dir: %s", p.Config.GenomeDir)

	if _, err := utils.SaveConfig(p.Config, logDir); err != nil {
		return nil, err
	}

	if free, err := utils.DiskFree(p.Config.OutDir); err == nil && free < minFreeSpace {
		p.Log.Printf("Warning: only %d MB free on the output filesystem", free/(1024*1024))
	}

	if err := p.resolveEngine(); err != nil {
		return nil, err
	}

	rpt, ref, err := p.filterGenomes()
	if err != nil {
		return nil, fmt.Errorf("genome filter: %w", err)
	}
	p.report = rpt

	if err := p.alignGenomes(ref); err != nil {
		return nil, fmt.Errorf("alignment: %w", err)
	}
	nseq, ncol, err := p.checkAlignment()
	if err != nil {
		return nil, fmt.Errorf("alignment: %w", err)
	}
	p.Log.Printf("Core alignment has %d sequences and %d columns", nseq, ncol)

	if err := p.buildTree(); err != nil {
		return nil, fmt.Errorf("tree: %w", err)
	}
	tips, err := p.checkTree()
	if err != nil {
		return nil, fmt.Errorf("tree: %w", err)
	}
	if tips != nseq {
		p.Log.Printf("Warning: tree has %d tips but the alignment has %d sequences", tips, nseq)
	}

	res := &Result{
		LogDir:    logDir,
		Report:    rpt,
		Reference: ref,
		Alignment: p.alignmentPath(),
		Sequences: nseq,
		Columns:   ncol,
		Tree:      p.treePath(),
		Tips:      tips,
	}

	if !p.Config.NoRenameTips {
		out, n, err := p.renameTips()
		if err != nil {
			p.Log.Printf("Warning: tip renaming failed: %v", err)
		} else {
			p.Log.Printf("Renamed %d tree tips", n)
			res.RenamedTree = out
		}
	}

	res.Extras = p.extraArtifacts()
	p.logSummary(res)

	return res, nil
}

// resolveEngine settles which engine runs the tools. In auto mode,
// docker is preferred and the native tools are the fallback, which is
// logged. Native tools are resolved against PATH up front, so a
// missing binary surfaces before any work is done.
func (p *Pipeline) resolveEngine() error {

	switch p.Config.Engine {
	case utils.EngineAuto:
		if DockerAvailable(p.Runner) {
			p.engine = utils.EngineDocker
		} else {
			p.Log.Print("Warning: docker not found, falling back to native tools")
			p.engine = utils.EngineNative
		}
	case utils.EngineDocker:
		if !DockerAvailable(p.Runner) {
			return &ExternalToolError{
				Tool:     "docker",
				ExitCode: -1,
				Err:      errors.New("docker engine requested but docker is not available"),
			}
		}
		p.engine = utils.EngineDocker
	default:
		p.engine = utils.EngineNative
	}

	if p.engine == utils.EngineNative {
		for _, tool := range []string{p.Config.ParsnpPath, p.Config.FastTreePath} {
			if _, err := p.Runner.LookPath(tool); err != nil {
				return &ExternalToolError{Tool: tool, ExitCode: -1, Err: err}
			}
		}
	}

	p.Log.Printf("Engine: %s", p.engine)
	return nil
}

// filterGenomes runs the genome filter and selects the reference. With
// RefFileName set, the reference is sanitized ahead of the scan and
// pinned as the first accepted genome; otherwise the first accepted
// genome in cleaned-name order becomes the reference.
func (p *Pipeline) filterGenomes() (*genome.Report, genome.Record, error) {

	p.Log.Print("Starting genome filtering")

	files, err := genome.ListCandidates(p.Config.GenomeDir)
	if err != nil {
		return nil, genome.Record{}, err
	}
	if len(files) == 0 {
		return nil, genome.Record{}, &MissingInputError{
			What: "genome files (.fasta, .fa, .fna, .fas)",
			Path: p.Config.GenomeDir,
		}
	}

	var refRec *genome.Record
	var preds []genome.Predicate
	if p.Config.MinLength > 0 {
		preds = append(preds, genome.MinLength{N: p.Config.MinLength})
	}
	if p.Config.MinDinuc > 0 {
		preds = append(preds, genome.MinDinuc{N: p.Config.MinDinuc})
	}
	if p.Config.RefFileName != "" {
		rec, seq, err := genome.SanitizeFile(p.Config.RefFileName, p.Config.WorkDir)
		if err != nil {
			p.Log.Printf("reference %s: %v", p.Config.RefFileName, err)
			return nil, genome.Record{}, &MissingInputError{
				What: "usable reference genome",
				Path: p.Config.RefFileName,
			}
		}
		refRec = &rec
		if p.Config.MinRefSimilarity > 0 {
			sk := genome.NewRefSketch(seq, p.Config.KmerSize, p.Config.SketchBits, p.Config.NumHash)
			preds = append(preds, genome.RefSimilarity{Sketch: sk, Min: p.Config.MinRefSimilarity})
			p.Log.Printf("Built reference sketch over %d bases (k=%d)", len(seq), p.Config.KmerSize)
		}
	}

	rpt, err := genome.Filter(p.Config.GenomeDir, p.Config.WorkDir, refRec, preds, p.Log)
	if err != nil {
		return nil, genome.Record{}, err
	}
	p.Log.Printf("Accepted %d genomes, filtered %d, %d warnings",
		len(rpt.Accepted), len(rpt.Filtered), len(rpt.Warnings))

	if len(rpt.Accepted) == 0 {
		return nil, genome.Record{}, &MissingInputError{
			What: "usable genomes after filtering",
			Path: p.Config.GenomeDir,
		}
	}

	if err := p.writeSamples(rpt); err != nil {
		return nil, genome.Record{}, err
	}

	ref := rpt.Accepted[0]
	p.Log.Printf("Reference: %s", ref.Path)
	p.Log.Print("Genome filtering done")
	return rpt, ref, nil
}

// writeSamples records the accepted genomes in OutDir/samples.txt, one
// line per genome: sample name, cleaned file, source file, and cleaned
// length, tab separated.
func (p *Pipeline) writeSamples(rpt *genome.Report) error {
	fid, err := os.Create(path.Join(p.Config.OutDir, "samples.txt"))
	if err != nil {
		return err
	}
	for _, r := range rpt.Accepted {
		_, err := fmt.Fprintf(fid, "%s\t%s\t%s\t%d\n", r.Sample, path.Base(r.Path), r.Source, r.Length)
		if err != nil {
			fid.Close()
			return err
		}
	}
	return fid.Close()
}

// extraArtifacts lists the aligner side outputs that are present next
// to the core alignment.
func (p *Pipeline) extraArtifacts() []string {
	var out []string
	for _, name := range []string{"parsnp.xmfa", "parsnp.vcf", "parsnp.ggr", "parsnp.tree"} {
		pa := path.Join(p.Config.AlnDir, name)
		if st, err := os.Stat(pa); err == nil && st.Size() > 0 {
			out = append(out, pa)
		}
	}
	return out
}

// logSummary writes the closing block of the run log.
func (p *Pipeline) logSummary(res *Result) {
	p.Log.Print("Run complete")
	p.Log.Printf("  Accepted genomes: %d", len(res.Report.Accepted))
	p.Log.Printf("  Filtered genomes: %d", len(res.Report.Filtered))
	p.Log.Printf("  Warnings:         %d", len(res.Report.Warnings))
	p.Log.Printf("  Core alignment:   %s", res.Alignment)
	p.Log.Printf("  Tree:             %s", res.Tree)
	if res.RenamedTree != "" {
		p.Log.Printf("  Renamed tree:     %s", res.RenamedTree)
	}
	for _, e := range res.Extras {
		p.Log.Printf("  Aligner extra:    %s", e)
	}
}
