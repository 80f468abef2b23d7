// Package usecase contains the business logic of the application.
package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/naka-gawa/github-projects/internal/chart"
	"github.com/naka-gawa/github-projects/internal/domain"
	"github.com/naka-gawa/github-projects/internal/gateway"
)

// Options configures one aggregation pass.
type Options struct {
	// IncludePrivate includes private repositories and secret gists in the
	// rendered table. It does not affect which repositories feed statistics.
	IncludePrivate bool
	// RepoLimit caps repository enumeration for cost control; zero or
	// negative means no cap.
	RepoLimit int
}

// DefaultRepoLimit is the enumeration cap applied when the caller does not
// choose one.
const DefaultRepoLimit = 5

// Aggregator is the use case for collecting a user's repositories and gists.
// It is the sole writer of the statistics and record collections during the
// single, sequential aggregation pass.
type Aggregator struct {
	fetcher gateway.Fetcher
	charts  chart.Renderer
	logger  *log.Logger
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(fetcher gateway.Fetcher, charts chart.Renderer, logger *log.Logger) *Aggregator {
	return &Aggregator{
		fetcher: fetcher,
		charts:  charts,
		logger:  logger,
	}
}

// Collect performs the main business logic: enumerate repositories, filter by
// ownership and visibility, accumulate language statistics, export one chart
// per counter, and collect gists. Every fetch is a blocking call; the first
// failure aborts the whole pass with no partial result.
func (a *Aggregator) Collect(ctx context.Context, opts Options) (*domain.ProjectSet, *domain.StatSet, error) {
	a.logger.Println("Usecase: Starting collection pass...")

	viewer, err := a.fetcher.FetchViewer(ctx)
	if err != nil {
		return nil, nil, err
	}
	a.logger.Printf("Usecase: Collecting as %s.\n", viewer.Login)

	repos, err := a.fetcher.FetchRepositories(ctx, opts.RepoLimit)
	if err != nil {
		return nil, nil, err
	}

	statSet := domain.NewStatSet()
	projects := domain.NewProjectSet()
	now := time.Now()

	for _, repo := range repos {
		// Only repositories the viewer owns or contributes to count.
		if !ownsOrContributes(viewer.Login, repo) {
			continue
		}

		if len(repo.Languages) > 0 {
			override, err := a.notebookOverride(ctx, repo)
			if err != nil {
				return nil, nil, err
			}
			statSet.Record(repo.Languages, override)
		}

		// The visibility filter is independent of the statistics filter
		// above, so statistics and displayed records may cover different
		// repository sets.
		if opts.IncludePrivate || !repo.Private {
			record, err := domain.NewRepoRecord(repo, now)
			if err != nil {
				return nil, nil, err
			}
			projects.AddRepo(record)
		}
	}

	if err := a.finalizeStats(statSet); err != nil {
		return nil, nil, err
	}

	gists, err := a.fetcher.FetchGists(ctx)
	if err != nil {
		return nil, nil, err
	}
	for _, gist := range gists {
		if opts.IncludePrivate || gist.Public {
			projects.AddGist(domain.NewGistRecord(gist))
		}
	}

	projects.Sort()
	a.logger.Println("Usecase: Collection pass complete.")
	return projects, statSet, nil
}

// notebookOverride recomputes the notebook byte count from code cells when
// the repository's dominant language is the notebook format. The substitution
// feeds the all-bytes counter only; the top-bytes counter keeps the raw
// linguist count.
func (a *Aggregator) notebookOverride(ctx context.Context, repo domain.Repository) (map[string]int, error) {
	dominant, ok := domain.DominantLanguage(repo.Languages)
	if !ok || dominant != domain.JupyterNotebook {
		return nil, nil
	}
	count, err := a.fetcher.FetchNotebookCodeBytes(ctx, repo.OwnerLogin, repo.Name)
	if err != nil {
		return nil, err
	}
	a.logger.Printf("Usecase: %s notebook code bytes: %d (linguist reported %d).\n",
		repo.FullName, count, repo.Languages[dominant])
	return map[string]int{domain.JupyterNotebook: count}, nil
}

func (a *Aggregator) finalizeStats(statSet *domain.StatSet) error {
	for _, stat := range statSet.All() {
		if mean, median, max, err := stat.Summary(); err == nil {
			a.logger.Printf("Usecase: %s mean=%.1f median=%.1f max=%.0f\n", stat.ID, mean, median, max)
		}
		if err := a.charts.Render(stat.Distribution(), stat.Title, stat.CountType, stat.ID); err != nil {
			return fmt.Errorf("failed to render chart for %s: %w", stat.ID, err)
		}
	}
	return nil
}

func ownsOrContributes(login string, repo domain.Repository) bool {
	if repo.OwnerLogin == login {
		return true
	}
	for _, contributor := range repo.Contributors {
		if contributor == login {
			return true
		}
	}
	return false
}
