// Copyright 2026, the snptree contributors.

package pipeline

import (
	"bytes"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// ToolCmd describes one external tool invocation.
type ToolCmd struct {
	// Tool is the display name used in logs and errors. If empty, the
	// base name of Path is used.
	Tool string

	// Path is the program to run, either a bare name resolved against
	// PATH or an explicit path.
	Path string

	// Args are the program arguments, excluding the program name.
	Args []string

	// Dir is the working directory; empty means the current directory.
	Dir string

	// Stdout receives the tool's standard output; nil discards it. The
	// tree stage captures the Newick text through this writer.
	Stdout io.Writer

	// Stderr receives a copy of the tool's standard error. The runner
	// retains stderr for error reporting whether or not Stderr is set.
	Stderr io.Writer
}

// Name returns the display name of the invocation.
func (c ToolCmd) Name() string {
	if c.Tool != "" {
		return c.Tool
	}
	return filepath.Base(c.Path)
}

// Runner runs external tools. Pipeline stages depend on this interface
// only, so tests can substitute an implementation that never forks.
type Runner interface {
	// LookPath resolves file against PATH, reporting whether it is
	// runnable on this host.
	LookPath(file string) (string, error)

	// Run executes c and blocks until the tool exits. A non-zero exit
	// status or a start failure is returned as an *ExternalToolError.
	Run(c ToolCmd) error
}

// stderrTail bounds the captured stderr carried by an ExternalToolError.
const stderrTail = 8 * 1024

// ExecRunner runs tools as child processes with os/exec.
type ExecRunner struct{}

func (ExecRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (ExecRunner) Run(c ToolCmd) error {
	cmd := exec.Command(c.Path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = os.Environ()
	cmd.Stdout = c.Stdout

	stderr := new(bytes.Buffer)
	if c.Stderr != nil {
		cmd.Stderr = io.MultiWriter(c.Stderr, stderr)
	} else {
		cmd.Stderr = stderr
	}

	err := cmd.Run()
	if err == nil {
		return nil
	}

	code := -1
	if ee, ok := err.(*exec.ExitError); ok {
		code = ee.ExitCode()
	}
	return &ExternalToolError{
		Tool:     c.Name(),
		ExitCode: code,
		Output:   tail(stderr.String(), stderrTail),
		Err:      err,
	}
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
