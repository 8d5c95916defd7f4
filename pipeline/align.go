// Copyright 2026, the snptree contributors.

package pipeline

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/evolbioinfo/goalign/io/fasta"

	"snptree/genome"
	"snptree/utils"
)

// alignmentFileName is the aligner output consumed by the tree stage:
// the concatenated SNP columns of the core genome alignment, in FASTA
// format.
const alignmentFileName = "parsnp.snps.mblocks"

// alignmentPath returns the location of the core alignment file.
func (p *Pipeline) alignmentPath() string {
	return path.Join(p.Config.AlnDir, alignmentFileName)
}

// alignGenomes runs the whole genome aligner over the cleaned genomes
// in WorkDir, with ref as the reference. The aligner's stdout and
// stderr are captured into the run's log directory.
func (p *Pipeline) alignGenomes(ref genome.Record) error {

	p.Log.Printf("Starting alignment of %d genomes", len(p.report.Accepted))

	if err := os.MkdirAll(p.Config.AlnDir, 0755); err != nil {
		return err
	}

	stdout, err := utils.NewToolLog(p.logDir, "parsnp.stdout.log", p.Config.CompressLogs)
	if err != nil {
		return err
	}
	defer stdout.Close()
	stderr, err := utils.NewToolLog(p.logDir, "parsnp.stderr.log", p.Config.CompressLogs)
	if err != nil {
		return err
	}
	defer stderr.Close()

	var cmd ToolCmd
	if p.engine == utils.EngineDocker {
		mounts := []Mount{
			{Host: absPath(p.Config.WorkDir), Container: "/data"},
			{Host: absPath(p.Config.AlnDir), Container: "/out"},
		}
		cmd = dockerCmd(p.Config.ParsnpImage, mounts, "parsnp",
			"-r", "/data/"+path.Base(ref.Path),
			"-d", "/data",
			"-o", "/out",
			"-p", strconv.Itoa(p.Config.Threads))
	} else {
		cmd = ToolCmd{
			Path: p.Config.ParsnpPath,
			Args: []string{
				"-r", ref.Path,
				"-d", p.Config.WorkDir,
				"-o", p.Config.AlnDir,
				"-p", strconv.Itoa(p.Config.Threads),
			},
		}
	}
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	p.Log.Printf("Aligner command: %s", cmdString(cmd))
	if err := p.Runner.Run(cmd); err != nil {
		return err
	}

	p.Log.Print("Alignment done")
	return nil
}

// checkAlignment verifies that the aligner produced a usable core
// alignment and returns its dimensions. An absent or empty file is a
// MissingInputError; the aligner drops genomes without core overlap,
// so this is where a silently thin result surfaces.
func (p *Pipeline) checkAlignment() (nseq, ncol int, err error) {

	pa := p.alignmentPath()
	st, err := os.Stat(pa)
	if err != nil || st.Size() == 0 {
		return 0, 0, &MissingInputError{What: "core alignment", Path: pa}
	}

	fid, err := os.Open(pa)
	if err != nil {
		return 0, 0, err
	}
	defer fid.Close()

	aln, err := fasta.NewParser(fid).Parse()
	if err != nil {
		return 0, 0, fmt.Errorf("core alignment %s: %w", pa, err)
	}
	if aln.NbSequences() == 0 {
		return 0, 0, &MissingInputError{What: "core alignment sequences", Path: pa}
	}
	return aln.NbSequences(), aln.Length(), nil
}

// absPath makes pa absolute for use in a container mount.
func absPath(pa string) string {
	a, err := filepath.Abs(pa)
	if err != nil {
		return pa
	}
	return a
}

func cmdString(c ToolCmd) string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}
