// Package linecount reports an approximate logical line count for source
// files under a directory tree.
//
// A file's count is taken after one left-to-right pass that turns each
// pair of spaces into one space, followed by one pass that turns each
// blank-line pair "\n\n" into "\n". Longer runs are only halved, not fully
// collapsed, and the result is the number of newlines plus one. This is
// deliberately not a strict newline count.
package linecount

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileCount is the logical line count of one file.
type FileCount struct {
	Path  string `json:"path"`
	Lines int    `json:"lines"`
}

// Result holds per-file counts in walk order and their sum.
type Result struct {
	Root  string      `json:"root"`
	Ext   string      `json:"ext"`
	Files []FileCount `json:"files"`
	Total int         `json:"total"`
}

// Count walks root and counts every regular file whose name ends in ext.
func Count(root, ext string) (Result, error) {
	if ext == "" {
		return Result{}, fmt.Errorf("linecount: empty extension")
	}

	res := Result{Root: root, Ext: ext}

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.Type().IsRegular() || !strings.HasSuffix(d.Name(), ext) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		n := Lines(data)
		res.Files = append(res.Files, FileCount{Path: path, Lines: n})
		res.Total += n

		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("linecount: walk %s: %w", root, err)
	}

	return res, nil
}

// Lines returns the logical line count of data.
func Lines(data []byte) int {
	data = bytes.ReplaceAll(data, []byte("  "), []byte(" "))
	data = bytes.ReplaceAll(data, []byte("\n\n"), []byte("\n"))

	return bytes.Count(data, []byte("\n")) + 1
}
