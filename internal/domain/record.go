// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Status is the lifecycle classification of a repository.
type Status string

const (
	StatusCurrent Status = "Current"
	StatusStale   Status = "Stale"
	StatusArchive Status = "Archive"
)

// StatusOrder is the fixed enumeration order used when rendering the table.
var StatusOrder = []Status{StatusCurrent, StatusStale, StatusArchive}

// StaleThreshold is how long a repository may go without an update before a
// non-archived repository is considered stale.
const StaleThreshold = 182 * 24 * time.Hour

// JupyterNotebook is the linguist name of the notebook format whose byte
// counts are recomputed from notebook code cells.
const JupyterNotebook = "Jupyter Notebook"

// User identifies the authenticated GitHub user.
type User struct {
	Login string
	URL   string
}

// Repository is the raw, API-shaped description of one repository. It is the
// input to record construction and statistics; all fields are plain values so
// the core logic never touches the API client.
type Repository struct {
	OwnerLogin   string
	OwnerURL     string
	Name         string
	URL          string
	FullName     string
	Description  string
	Languages    map[string]int
	Contributors []string
	Archived     bool
	Private      bool
	UpdatedAt    time.Time
}

// Gist is the raw description of one gist.
type Gist struct {
	OwnerLogin  string
	OwnerURL    string
	Description string
	URL         string
	Public      bool
	UpdatedAt   time.Time
}

// RepoRecord is one displayable repository row. Immutable after construction.
type RepoRecord struct {
	Owner        string
	Name         string
	Description  string
	Languages    []string
	Status       Status
	LastModified time.Time
}

// Classify determines the lifecycle status of a repository. The archived flag
// wins over recency; a non-archived repository untouched for longer than
// StaleThreshold is stale.
func Classify(archived bool, updatedAt, now time.Time) Status {
	switch {
	case archived:
		return StatusArchive
	case now.Sub(updatedAt) > StaleThreshold:
		return StatusStale
	default:
		return StatusCurrent
	}
}

// NewRepoRecord builds a display record from a raw repository, classifying it
// against the reference time now.
func NewRepoRecord(repo Repository, now time.Time) (RepoRecord, error) {
	if repo.Name == "" {
		return RepoRecord{}, fmt.Errorf("repository %q is missing a name", repo.FullName)
	}
	if repo.OwnerLogin == "" {
		return RepoRecord{}, fmt.Errorf("repository %q is missing an owner login", repo.Name)
	}
	return RepoRecord{
		Owner:        fmt.Sprintf("[%s](%s)", repo.OwnerLogin, repo.OwnerURL),
		Name:         fmt.Sprintf("[%s](%s)", repo.Name, repo.URL),
		Description:  repo.Description,
		Languages:    LanguageNames(repo.Languages),
		Status:       Classify(repo.Archived, repo.UpdatedAt, now),
		LastModified: repo.UpdatedAt,
	}, nil
}

// MarkdownRow renders the record as one markdown table row.
func (r RepoRecord) MarkdownRow() string {
	return fmt.Sprintf("| %s | %s | %s | %s |\n", r.Name, r.Description, r.Owner, strings.Join(r.Languages, ", "))
}

// GistRecord is one displayable gist row.
type GistRecord struct {
	Owner        string
	Description  string
	LastModified time.Time
}

// NewGistRecord builds a display record from a raw gist. Visibility filtering
// is the aggregator's job, not this record's.
func NewGistRecord(gist Gist) GistRecord {
	return GistRecord{
		Owner:        fmt.Sprintf("[%s](%s)", gist.OwnerLogin, gist.OwnerURL),
		Description:  fmt.Sprintf("[%s](%s)", gist.Description, gist.URL),
		LastModified: gist.UpdatedAt,
	}
}

// MarkdownRow renders the record as one markdown table row.
func (g GistRecord) MarkdownRow() string {
	return fmt.Sprintf("| %s |\n", g.Description)
}

// LanguageNames returns the language names of a byte mapping ordered by
// descending byte count, ties broken lexically.
func LanguageNames(languages map[string]int) []string {
	names := make([]string, 0, len(languages))
	for name := range languages {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if languages[names[i]] != languages[names[j]] {
			return languages[names[i]] > languages[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}
