// Copyright 2026, the snptree contributors.

package pipeline

import (
	"bytes"
	"errors"
	"os"
	"path"
	"strings"
	"testing"
)

func TestToolCmdName(t *testing.T) {
	tests := []struct {
		name string
		cmd  ToolCmd
		want string
	}{
		{"explicit tool", ToolCmd{Tool: "parsnp", Path: "docker"}, "parsnp"},
		{"path only", ToolCmd{Path: "/usr/local/bin/fasttree"}, "fasttree"},
		{"bare name", ToolCmd{Path: "parsnp"}, "parsnp"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cmd.Name(); got != tt.want {
				t.Errorf("Name() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExecRunnerRun(t *testing.T) {
	var out bytes.Buffer
	err := ExecRunner{}.Run(ToolCmd{
		Path:   "sh",
		Args:   []string{"-c", "echo aligned"},
		Stdout: &out,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "aligned") {
		t.Errorf("stdout = %q", out.String())
	}
}

func TestExecRunnerExitStatus(t *testing.T) {
	err := ExecRunner{}.Run(ToolCmd{
		Tool: "failer",
		Path: "sh",
		Args: []string{"-c", "echo bad input >&2; exit 3"},
	})

	var te *ExternalToolError
	if !errors.As(err, &te) {
		t.Fatalf("error type %T: %v", err, err)
	}
	if te.Tool != "failer" {
		t.Errorf("Tool = %q", te.Tool)
	}
	if te.ExitCode != 3 {
		t.Errorf("ExitCode = %d, want 3", te.ExitCode)
	}
	if !strings.Contains(te.Output, "bad input") {
		t.Errorf("Output = %q", te.Output)
	}
	if !strings.Contains(te.Error(), "exited with status 3") {
		t.Errorf("Error() = %q", te.Error())
	}
}

func TestExecRunnerMissingProgram(t *testing.T) {
	err := ExecRunner{}.Run(ToolCmd{Path: "no-such-tool-for-sure"})

	var te *ExternalToolError
	if !errors.As(err, &te) {
		t.Fatalf("error type %T: %v", err, err)
	}
	if te.ExitCode != -1 {
		t.Errorf("ExitCode = %d, want -1", te.ExitCode)
	}
	if !strings.Contains(te.Error(), "could not be run") {
		t.Errorf("Error() = %q", te.Error())
	}
}

func TestExecRunnerStderrTee(t *testing.T) {
	var captured bytes.Buffer
	err := ExecRunner{}.Run(ToolCmd{
		Path:   "sh",
		Args:   []string{"-c", "echo progress >&2"},
		Stderr: &captured,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(captured.String(), "progress") {
		t.Errorf("stderr capture = %q", captured.String())
	}
}

func TestExecRunnerDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(path.Join(dir, "ref.txt"), []byte("in workdir"), 0644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	err := ExecRunner{}.Run(ToolCmd{
		Path:   "sh",
		Args:   []string{"-c", "cat ref.txt"},
		Dir:    dir,
		Stdout: &out,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "in workdir") {
		t.Errorf("stdout = %q", out.String())
	}
}

func TestExecRunnerLookPath(t *testing.T) {
	if _, err := (ExecRunner{}).LookPath("sh"); err != nil {
		t.Errorf("sh not found: %v", err)
	}
	if _, err := (ExecRunner{}).LookPath("no-such-tool-for-sure"); err == nil {
		t.Error("missing tool resolved")
	}
}

func TestTail(t *testing.T) {
	if got := tail("abcdef", 3); got != "def" {
		t.Errorf("tail = %q", got)
	}
	if got := tail("ab", 5); got != "ab" {
		t.Errorf("tail = %q", got)
	}
}
