// Package notebook counts bytes of code inside Jupyter notebook documents.
package notebook

import (
	"encoding/json"
	"fmt"
	"strings"
)

// document is the subset of the .ipynb JSON format this package reads.
type document struct {
	Cells []cell `json:"cells"`
}

type cell struct {
	CellType string   `json:"cell_type"`
	Source   []string `json:"source"`
}

// CodeBytes parses a raw notebook document and returns the UTF-8 byte length
// of every source line belonging to code cells. Raw content may carry
// surrounding whitespace or quote characters left over from transport
// encoding. Malformed documents fail hard; there is no per-cell recovery.
func CodeBytes(raw []byte) (int, error) {
	trimmed := strings.Trim(strings.TrimSpace(string(raw)), "'")

	var doc document
	if err := json.Unmarshal([]byte(trimmed), &doc); err != nil {
		return 0, fmt.Errorf("failed to parse notebook document: %w", err)
	}
	if doc.Cells == nil {
		return 0, fmt.Errorf("notebook document has no cells field")
	}

	total := 0
	for i, c := range doc.Cells {
		if c.CellType == "" {
			return 0, fmt.Errorf("notebook cell %d has no cell_type", i)
		}
		if c.CellType != "code" {
			continue
		}
		for _, line := range c.Source {
			total += len(line)
		}
	}
	return total, nil
}
