package domain

import (
	"sort"
	"strings"
)

// ProjectsHeader is the section marker line that delimits where the generated
// table is spliced into the document.
const ProjectsHeader = "## Projects\n"

// ProjectSet collects the displayable records produced by one aggregation
// pass: repositories grouped by status plus gists.
type ProjectSet struct {
	Repos map[Status][]RepoRecord
	Gists []GistRecord
}

// NewProjectSet creates an empty set with a group per status.
func NewProjectSet() *ProjectSet {
	repos := make(map[Status][]RepoRecord, len(StatusOrder))
	for _, status := range StatusOrder {
		repos[status] = []RepoRecord{}
	}
	return &ProjectSet{Repos: repos}
}

// AddRepo places a record in its status group.
func (p *ProjectSet) AddRepo(record RepoRecord) {
	p.Repos[record.Status] = append(p.Repos[record.Status], record)
}

// AddGist appends a gist record.
func (p *ProjectSet) AddGist(record GistRecord) {
	p.Gists = append(p.Gists, record)
}

// Sort orders every status group and the gist list by descending
// last-modified date.
func (p *ProjectSet) Sort() {
	for _, status := range StatusOrder {
		records := p.Repos[status]
		sort.SliceStable(records, func(i, j int) bool {
			return records[i].LastModified.After(records[j].LastModified)
		})
	}
	sort.SliceStable(p.Gists, func(i, j int) bool {
		return p.Gists[i].LastModified.After(p.Gists[j].LastModified)
	})
}

// MarkdownTable renders the full Projects section: the header line, one
// subsection per status in enumeration order, then the gists subsection.
func (p *ProjectSet) MarkdownTable() string {
	var b strings.Builder
	b.WriteString(ProjectsHeader)

	for _, status := range StatusOrder {
		b.WriteString("\n### " + string(status) + "\n| Repository | Description | Owner | Language(s) |\n|---|---|---|---|\n")
		for _, record := range p.Repos[status] {
			b.WriteString(record.MarkdownRow())
		}
	}

	b.WriteString("\n### Gists\n| Description |\n|---|\n")
	for _, record := range p.Gists {
		b.WriteString(record.MarkdownRow())
	}

	return b.String()
}
