// Copyright 2026, the snptree contributors.

package pipeline

import (
	"os"
	"path"

	"snptree/phylo"
	"snptree/utils"
)

// Names of the tree artifacts written into OutDir.
const (
	treeFileName        = "snptree.tree"
	renamedTreeFileName = "snptree_renamed.tree"
)

// treePath returns the location of the primary tree file.
func (p *Pipeline) treePath() string {
	return path.Join(p.Config.OutDir, treeFileName)
}

// buildTree runs the tree builder on the core alignment and writes the
// Newick result into OutDir. The builder's stderr, where it reports
// progress, is captured into the run's log directory.
func (p *Pipeline) buildTree() error {

	p.Log.Print("Starting tree building")

	stderr, err := utils.NewToolLog(p.logDir, "fasttree.stderr.log", p.Config.CompressLogs)
	if err != nil {
		return err
	}
	defer stderr.Close()

	treeFid, err := os.Create(p.treePath())
	if err != nil {
		return err
	}

	var cmd ToolCmd
	if p.engine == utils.EngineDocker {
		mounts := []Mount{
			{Host: absPath(p.Config.AlnDir), Container: "/out"},
		}
		cmd = dockerCmd(p.Config.FastTreeImage, mounts, "fasttree",
			"-nt", "-gtr", "/out/"+alignmentFileName)
	} else {
		cmd = ToolCmd{
			Path: p.Config.FastTreePath,
			Args: []string{"-nt", "-gtr", p.alignmentPath()},
		}
	}
	cmd.Stdout = treeFid
	cmd.Stderr = stderr

	p.Log.Printf("Tree builder command: %s", cmdString(cmd))
	if err := p.Runner.Run(cmd); err != nil {
		treeFid.Close()
		os.Remove(p.treePath())
		return err
	}
	if err := treeFid.Close(); err != nil {
		return err
	}

	p.Log.Print("Tree building done")
	return nil
}

// checkTree verifies that the tree file parses and returns its tip
// count. A tip count differing from the number of aligned genomes is
// reported by the caller, not here.
func (p *Pipeline) checkTree() (int, error) {

	pa := p.treePath()
	st, err := os.Stat(pa)
	if err != nil || st.Size() == 0 {
		return 0, &MissingInputError{What: "tree file", Path: pa}
	}

	tips, err := phylo.Leaves(pa)
	if err != nil {
		return 0, err
	}
	return len(tips), nil
}

// renameTips writes the renamed copy of the tree. The primary tree is
// already on disk when this runs; the caller downgrades an error here
// to a warning.
func (p *Pipeline) renameTips() (string, int, error) {

	names := phylo.BuildNameMap(p.report.Accepted)
	out := path.Join(p.Config.OutDir, renamedTreeFileName)
	n, err := phylo.RenameTips(p.treePath(), out, names)
	if err != nil {
		return "", 0, err
	}
	return out, n, nil
}
