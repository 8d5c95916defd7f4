// Copyright 2026, the snptree contributors.

package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"path"

	"github.com/golang/snappy"
	"github.com/google/uuid"
)

// NewRunDir creates a fresh subdirectory of base for one run's log
// files, named by a generated run id so that successive runs do not
// collide.
func NewRunDir(base string) (string, error) {
	u, err := uuid.NewUUID()
	if err != nil {
		return "", err
	}
	dir := path.Join(base, fmt.Sprintf("%s", u))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	return dir, nil
}

// NewRunLog opens the run log inside dir. The caller closes the
// returned file when the run ends.
func NewRunLog(dir string) (*log.Logger, *os.File, error) {
	fid, err := os.Create(path.Join(dir, "snptree.log"))
	if err != nil {
		return nil, nil, err
	}
	return log.New(fid, "", log.Ltime), fid, nil
}

// A ToolLog captures one output stream of an external tool. With
// compression enabled, the data are written in snappy framing format
// and the file name gains a .sz suffix.
type ToolLog struct {

	// Path of the capture file as created, including any .sz suffix.
	Path string

	w   io.Writer
	sz  *snappy.Writer
	fid *os.File
}

// NewToolLog creates a capture file named name inside dir.
func NewToolLog(dir, name string, compress bool) (*ToolLog, error) {
	p := path.Join(dir, name)
	if compress {
		p += ".sz"
	}
	fid, err := os.Create(p)
	if err != nil {
		return nil, err
	}
	t := &ToolLog{Path: p, fid: fid}
	if compress {
		t.sz = snappy.NewBufferedWriter(fid)
		t.w = t.sz
	} else {
		t.w = fid
	}
	return t, nil
}

func (t *ToolLog) Write(p []byte) (int, error) {
	return t.w.Write(p)
}

// Close flushes any buffered compressed data and closes the capture
// file.
func (t *ToolLog) Close() error {
	if t.sz != nil {
		if err := t.sz.Close(); err != nil {
			t.fid.Close()
			return err
		}
	}
	return t.fid.Close()
}
