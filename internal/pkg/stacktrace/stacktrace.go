// Package stacktrace trims raw goroutine dumps down to frames from this
// module so panic logs stay short.
package stacktrace

import (
	"bufio"
	"bytes"
	"strings"
)

const marker = "/internal/"

// InternalPaths returns "internal/<pkg>/<file>.go:<line>" for every frame of
// stack that lives under an internal/ directory, outermost call last.
func InternalPaths(stack []byte) []string {
	var paths []string

	sc := bufio.NewScanner(bytes.NewReader(stack))
	for sc.Scan() {
		line := sc.Text()
		// File lines are tab indented; function lines are not.
		if !strings.HasPrefix(line, "\t") {
			continue
		}

		loc, _, _ := strings.Cut(strings.TrimSpace(line), " +0x")
		idx := strings.Index(loc, marker)
		if idx == -1 || !strings.Contains(loc, ".go:") {
			continue
		}

		paths = append(paths, loc[idx+1:])
	}

	return paths
}
