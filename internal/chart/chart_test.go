package chart

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/github-projects/internal/domain"
)

func TestSVGRenderer_Render(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "figures")
	renderer, err := NewSVGRenderer(dir)
	require.NoError(t, err)

	// The directory is created if absent.
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	dist := domain.Distribution{
		Languages: []string{"Python", "Go"},
		Counts:    []int{900, 500},
	}
	err = renderer.Render(dist, "My languages by bytes of code on GitHub", "bytes of code", "all_bytes")
	require.NoError(t, err)

	// One file per statistic, named from the statistic's identifier.
	data, err := os.ReadFile(filepath.Join(dir, "language_all_bytes.svg"))
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
