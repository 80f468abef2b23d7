package usecase

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/naka-gawa/github-projects/internal/domain"
)

// mockFetcher is a mock implementation of the gateway.Fetcher interface.
// It allows us to simulate the behavior of the GitHub gateway without making real API calls.
type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchViewer(ctx context.Context) (domain.User, error) {
	args := m.Called(ctx)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *mockFetcher) FetchRepositories(ctx context.Context, limit int) ([]domain.Repository, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Repository), args.Error(1)
}

func (m *mockFetcher) FetchGists(ctx context.Context) ([]domain.Gist, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Gist), args.Error(1)
}

func (m *mockFetcher) FetchNotebookCodeBytes(ctx context.Context, owner, repo string) (int, error) {
	args := m.Called(ctx, owner, repo)
	return args.Int(0), args.Error(1)
}

// mockRenderer records chart render calls instead of writing image files.
type mockRenderer struct {
	rendered []string
	err      error
}

func (m *mockRenderer) Render(dist domain.Distribution, title, countType, id string) error {
	m.rendered = append(m.rendered, id)
	return m.err
}

func newTestAggregator(fetcher *mockFetcher, renderer *mockRenderer) *Aggregator {
	return NewAggregator(fetcher, renderer, log.New(io.Discard, "", 0))
}

func TestAggregator_Collect(t *testing.T) {
	ctx := context.Background()
	viewer := domain.User{Login: "octocat", URL: "https://github.com/octocat"}

	repoA := domain.Repository{
		OwnerLogin: "octocat", OwnerURL: "https://github.com/octocat",
		Name: "repo-a", URL: "https://github.com/octocat/repo-a",
		Languages: map[string]int{"Python": 900, "YAML": 100},
		UpdatedAt: time.Now().AddDate(0, 0, -10),
	}
	repoB := domain.Repository{
		OwnerLogin: "octocat", OwnerURL: "https://github.com/octocat",
		Name: "repo-b", URL: "https://github.com/octocat/repo-b",
		Languages: map[string]int{"Go": 500},
		Archived:  true,
		UpdatedAt: time.Now().AddDate(0, 0, -400),
	}

	fetcher := new(mockFetcher)
	fetcher.On("FetchViewer", mock.Anything).Return(viewer, nil)
	fetcher.On("FetchRepositories", mock.Anything, 5).Return([]domain.Repository{repoA, repoB}, nil)
	fetcher.On("FetchGists", mock.Anything).Return([]domain.Gist{
		{OwnerLogin: "octocat", Description: "snippet", URL: "https://gist.github.com/abc", Public: true, UpdatedAt: time.Now()},
	}, nil)

	renderer := &mockRenderer{}
	aggregator := newTestAggregator(fetcher, renderer)

	projects, statSet, err := aggregator.Collect(ctx, Options{RepoLimit: 5})
	require.NoError(t, err)

	// repo-a is current with Python dominant; repo-b is archived with Go.
	require.Len(t, projects.Repos[domain.StatusCurrent], 1)
	require.Len(t, projects.Repos[domain.StatusArchive], 1)
	assert.Empty(t, projects.Repos[domain.StatusStale])
	assert.Equal(t, 1, statSet.TopRepos.Total("Python"))
	assert.Equal(t, 1, statSet.TopRepos.Total("Go"))
	assert.Equal(t, 900, statSet.TopBytes.Total("Python"))
	assert.Len(t, projects.Gists, 1)

	// One chart per counter, in the fixed finalization order.
	assert.Equal(t, []string{"all_bytes", "all_repos", "top_bytes", "top_repos"}, renderer.rendered)

	fetcher.AssertExpectations(t)
}

func TestAggregator_CollectSkipsUnrelatedRepos(t *testing.T) {
	ctx := context.Background()

	fetcher := new(mockFetcher)
	fetcher.On("FetchViewer", mock.Anything).Return(domain.User{Login: "octocat"}, nil)
	fetcher.On("FetchRepositories", mock.Anything, 0).Return([]domain.Repository{
		{
			OwnerLogin: "someone-else", Name: "not-mine",
			Languages: map[string]int{"Rust": 1000},
			UpdatedAt: time.Now(),
		},
		{
			OwnerLogin: "someone-else", Name: "contributed",
			Contributors: []string{"hubot", "octocat"},
			Languages:    map[string]int{"Go": 300},
			UpdatedAt:    time.Now(),
		},
	}, nil)
	fetcher.On("FetchGists", mock.Anything).Return([]domain.Gist{}, nil)

	renderer := &mockRenderer{}
	aggregator := newTestAggregator(fetcher, renderer)

	projects, statSet, err := aggregator.Collect(ctx, Options{})
	require.NoError(t, err)

	// Only the contributed-to repository counts anywhere.
	assert.Equal(t, 0, statSet.AllRepos.Total("Rust"))
	assert.Equal(t, 1, statSet.AllRepos.Total("Go"))
	require.Len(t, projects.Repos[domain.StatusCurrent], 1)
	assert.Contains(t, projects.Repos[domain.StatusCurrent][0].Name, "contributed")
}

func TestAggregator_CollectNotebookSubstitution(t *testing.T) {
	ctx := context.Background()

	fetcher := new(mockFetcher)
	fetcher.On("FetchViewer", mock.Anything).Return(domain.User{Login: "octocat"}, nil)
	fetcher.On("FetchRepositories", mock.Anything, 0).Return([]domain.Repository{
		{
			OwnerLogin: "octocat", Name: "ml",
			Languages: map[string]int{domain.JupyterNotebook: 50},
			UpdatedAt: time.Now(),
		},
	}, nil)
	fetcher.On("FetchNotebookCodeBytes", mock.Anything, "octocat", "ml").Return(37, nil)
	fetcher.On("FetchGists", mock.Anything).Return([]domain.Gist{}, nil)

	renderer := &mockRenderer{}
	aggregator := newTestAggregator(fetcher, renderer)

	_, statSet, err := aggregator.Collect(ctx, Options{})
	require.NoError(t, err)

	// The walked count replaces the linguist count on the all-bytes path
	// only; top-bytes keeps the raw value.
	assert.Equal(t, 37, statSet.AllBytes.Total(domain.JupyterNotebook))
	assert.Equal(t, 50, statSet.TopBytes.Total(domain.JupyterNotebook))
	fetcher.AssertExpectations(t)
}

func TestAggregator_CollectStatsAndDisplayDiverge(t *testing.T) {
	ctx := context.Background()

	// A private repo the viewer owns: the ownership filter admits it to
	// statistics while the visibility filter keeps it out of the table.
	fetcher := new(mockFetcher)
	fetcher.On("FetchViewer", mock.Anything).Return(domain.User{Login: "octocat"}, nil)
	fetcher.On("FetchRepositories", mock.Anything, 0).Return([]domain.Repository{
		{
			OwnerLogin: "octocat", Name: "secret",
			Languages: map[string]int{"Go": 500},
			Private:   true,
			UpdatedAt: time.Now(),
		},
	}, nil)
	fetcher.On("FetchGists", mock.Anything).Return([]domain.Gist{
		{OwnerLogin: "octocat", Description: "secret gist", Public: false, UpdatedAt: time.Now()},
	}, nil)

	renderer := &mockRenderer{}
	aggregator := newTestAggregator(fetcher, renderer)

	projects, statSet, err := aggregator.Collect(ctx, Options{IncludePrivate: false})
	require.NoError(t, err)

	assert.Equal(t, 1, statSet.AllRepos.Total("Go"))
	for _, status := range domain.StatusOrder {
		assert.Empty(t, projects.Repos[status])
	}
	assert.Empty(t, projects.Gists)
}

func TestAggregator_CollectErrors(t *testing.T) {
	testCases := []struct {
		name      string
		configure func(fetcher *mockFetcher, renderer *mockRenderer)
	}{
		{
			name: "viewer resolution fails",
			configure: func(fetcher *mockFetcher, renderer *mockRenderer) {
				fetcher.On("FetchViewer", mock.Anything).Return(domain.User{}, errors.New("bad credentials"))
			},
		},
		{
			name: "repository enumeration fails",
			configure: func(fetcher *mockFetcher, renderer *mockRenderer) {
				fetcher.On("FetchViewer", mock.Anything).Return(domain.User{Login: "octocat"}, nil)
				fetcher.On("FetchRepositories", mock.Anything, 0).Return(nil, errors.New("github api error"))
			},
		},
		{
			name: "notebook walk failure aborts the pass",
			configure: func(fetcher *mockFetcher, renderer *mockRenderer) {
				fetcher.On("FetchViewer", mock.Anything).Return(domain.User{Login: "octocat"}, nil)
				fetcher.On("FetchRepositories", mock.Anything, 0).Return([]domain.Repository{
					{OwnerLogin: "octocat", Name: "ml", Languages: map[string]int{domain.JupyterNotebook: 50}, UpdatedAt: time.Now()},
				}, nil)
				fetcher.On("FetchNotebookCodeBytes", mock.Anything, "octocat", "ml").Return(0, errors.New("malformed notebook"))
			},
		},
		{
			name: "chart rendering failure aborts the pass",
			configure: func(fetcher *mockFetcher, renderer *mockRenderer) {
				fetcher.On("FetchViewer", mock.Anything).Return(domain.User{Login: "octocat"}, nil)
				fetcher.On("FetchRepositories", mock.Anything, 0).Return([]domain.Repository{}, nil)
				renderer.err = errors.New("disk full")
			},
		},
		{
			name: "gist enumeration fails",
			configure: func(fetcher *mockFetcher, renderer *mockRenderer) {
				fetcher.On("FetchViewer", mock.Anything).Return(domain.User{Login: "octocat"}, nil)
				fetcher.On("FetchRepositories", mock.Anything, 0).Return([]domain.Repository{}, nil)
				fetcher.On("FetchGists", mock.Anything).Return(nil, errors.New("github api error"))
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fetcher := new(mockFetcher)
			renderer := &mockRenderer{}
			tc.configure(fetcher, renderer)

			aggregator := newTestAggregator(fetcher, renderer)
			projects, statSet, err := aggregator.Collect(context.Background(), Options{})

			assert.Error(t, err)
			assert.Nil(t, projects)
			assert.Nil(t, statSet)
		})
	}
}
