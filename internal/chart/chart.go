// Package chart exports language distributions as bar-chart images.
package chart

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/naka-gawa/github-projects/internal/domain"
)

// Renderer writes one chart per finalized language statistic.
type Renderer interface {
	Render(dist domain.Distribution, title, countType, id string) error
}

// SVGRenderer renders bar charts as SVG files under a fixed directory, one
// file per statistic named from the statistic's identifier.
type SVGRenderer struct {
	dir string
}

// NewSVGRenderer creates the output directory if absent.
func NewSVGRenderer(dir string) (*SVGRenderer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create figure directory %s: %w", dir, err)
	}
	return &SVGRenderer{dir: dir}, nil
}

// Render writes a bar chart of the distribution to <dir>/language_<id>.svg.
func (r *SVGRenderer) Render(dist domain.Distribution, title, countType, id string) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "language"
	p.Y.Label.Text = countType

	values := make(plotter.Values, len(dist.Counts))
	for i, count := range dist.Counts {
		values[i] = float64(count)
	}
	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return fmt.Errorf("failed to build bar chart for %s: %w", id, err)
	}
	p.Add(bars)
	p.NominalX(dist.Languages...)
	p.X.Tick.Label.Rotation = 0.8
	p.X.Tick.Label.XAlign = -0.9

	path := filepath.Join(r.dir, fmt.Sprintf("language_%s.svg", id))
	if err := p.Save(10*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save chart %s: %w", path, err)
	}
	return nil
}
