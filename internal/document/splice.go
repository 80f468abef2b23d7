// Package document rewrites a named section of a local markdown document.
package document

import (
	"bytes"
	"fmt"
	"os"
	"strings"
)

// DefaultMaxScan bounds how many lines are examined while locating the
// section marker and the following heading. A document that does not contain
// the marker within the bound is an error, not an endless scan.
const DefaultMaxScan = 10000

const headingPrefix = "## "

// Splice replaces the section of doc that starts at the marker line and ends
// just before the next top-level heading with body. Everything before the
// marker and everything from the next heading onward is preserved
// byte-for-byte. The marker line itself is replaced; body is expected to
// start with its own section header.
func Splice(doc []byte, marker, body string, maxScan int) ([]byte, error) {
	if maxScan <= 0 {
		maxScan = DefaultMaxScan
	}
	marker = strings.TrimSuffix(marker, "\n")

	lines := splitAfterLines(doc)

	markerIdx := -1
	for i, line := range lines {
		if i >= maxScan {
			break
		}
		if strings.TrimSuffix(line, "\n") == marker {
			markerIdx = i
			break
		}
	}
	if markerIdx < 0 {
		return nil, fmt.Errorf("section marker %q not found within %d lines", marker, maxScan)
	}

	headingIdx := -1
	for i := markerIdx + 1; i < len(lines); i++ {
		if i-markerIdx > maxScan {
			break
		}
		if strings.HasPrefix(lines[i], headingPrefix) {
			headingIdx = i
			break
		}
	}
	if headingIdx < 0 {
		return nil, fmt.Errorf("no heading found after section marker %q", marker)
	}

	var out bytes.Buffer
	for _, line := range lines[:markerIdx] {
		out.WriteString(line)
	}
	out.WriteString(body)
	out.WriteString("\n")
	for _, line := range lines[headingIdx:] {
		out.WriteString(line)
	}
	return out.Bytes(), nil
}

// UpdateFile reads the document at path, splices body into the marker
// section, and writes the result back. The file is left untouched when the
// splice fails.
func UpdateFile(path, marker, body string, maxScan int) error {
	doc, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read document %s: %w", path, err)
	}
	updated, err := Splice(doc, marker, body, maxScan)
	if err != nil {
		return err
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat document %s: %w", path, err)
	}
	if err := os.WriteFile(path, updated, info.Mode().Perm()); err != nil {
		return fmt.Errorf("failed to write document %s: %w", path, err)
	}
	return nil
}

// splitAfterLines splits doc into lines that keep their trailing newline, so
// re-joining the pieces reproduces the input exactly.
func splitAfterLines(doc []byte) []string {
	var lines []string
	for len(doc) > 0 {
		i := bytes.IndexByte(doc, '\n')
		if i < 0 {
			lines = append(lines, string(doc))
			break
		}
		lines = append(lines, string(doc[:i+1]))
		doc = doc[i+1:]
	}
	return lines
}
