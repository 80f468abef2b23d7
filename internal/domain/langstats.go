package domain

import (
	"sort"

	"github.com/montanaflynn/stats"
)

// LangStat accumulates one counter keyed by language name. Insertion order is
// preserved so that ties sort deterministically in Distribution.
type LangStat struct {
	Title     string
	CountType string
	ID        string

	order  []string
	counts map[string]int
}

// NewLangStat creates an empty counter with display metadata.
func NewLangStat(title, countType, id string) *LangStat {
	return &LangStat{
		Title:     title,
		CountType: countType,
		ID:        id,
		counts:    make(map[string]int),
	}
}

// Add increments the counter for one language by n.
func (s *LangStat) Add(language string, n int) {
	if _, ok := s.counts[language]; !ok {
		s.order = append(s.order, language)
	}
	s.counts[language] += n
}

// Observe increments the presence count of every language in the mapping by
// one, visiting languages in descending-bytes order so insertion order is
// deterministic.
func (s *LangStat) Observe(languages map[string]int) {
	for _, language := range LanguageNames(languages) {
		s.Add(language, 1)
	}
}

// Total returns the accumulated count for one language.
func (s *LangStat) Total(language string) int {
	return s.counts[language]
}

// Distribution is a finalized counter: parallel language and count sequences
// sorted by descending count.
type Distribution struct {
	Languages []string
	Counts    []int
}

// Distribution returns the languages sorted by descending count. The sort is
// stable, so languages with equal counts keep their insertion order.
func (s *LangStat) Distribution() Distribution {
	languages := make([]string, len(s.order))
	copy(languages, s.order)
	sort.SliceStable(languages, func(i, j int) bool {
		return s.counts[languages[i]] > s.counts[languages[j]]
	})
	counts := make([]int, len(languages))
	for i, language := range languages {
		counts[i] = s.counts[language]
	}
	return Distribution{Languages: languages, Counts: counts}
}

// Summary reports the mean, median, and maximum of the counts. Used for
// verbose logging only; an empty counter returns an error.
func (s *LangStat) Summary() (mean, median, max float64, err error) {
	values := make([]float64, 0, len(s.counts))
	for _, n := range s.counts {
		values = append(values, float64(n))
	}
	if mean, err = stats.Mean(values); err != nil {
		return 0, 0, 0, err
	}
	if median, err = stats.Median(values); err != nil {
		return 0, 0, 0, err
	}
	if max, err = stats.Max(values); err != nil {
		return 0, 0, 0, err
	}
	return mean, median, max, nil
}

// DominantLanguage returns the language with the greatest byte count in the
// mapping. Ties are broken by the lexically smallest name so the choice is
// deterministic. The second return is false for an empty mapping.
func DominantLanguage(languages map[string]int) (string, bool) {
	dominant := ""
	best := 0
	for language, count := range languages {
		if dominant == "" || count > best || (count == best && language < dominant) {
			dominant = language
			best = count
		}
	}
	return dominant, dominant != ""
}

// StatSet holds the four language counters maintained during an aggregation
// pass.
type StatSet struct {
	AllBytes *LangStat
	AllRepos *LangStat
	TopBytes *LangStat
	TopRepos *LangStat
}

// NewStatSet creates the four counters with their display metadata.
func NewStatSet() *StatSet {
	return &StatSet{
		AllBytes: NewLangStat("My languages by bytes of code on GitHub", "bytes of code", "all_bytes"),
		AllRepos: NewLangStat("My languages by presence in GitHub repositories", "# of repos", "all_repos"),
		TopBytes: NewLangStat("Top repo languages by bytes of code on GitHub", "bytes of code", "top_bytes"),
		TopRepos: NewLangStat("Top languages by GitHub repositories", "# of repos", "top_repos"),
	}
}

// All returns the counters in a fixed order for finalization.
func (s *StatSet) All() []*LangStat {
	return []*LangStat{s.AllBytes, s.AllRepos, s.TopBytes, s.TopRepos}
}

// Record feeds one repository's language byte mapping into every counter.
// allBytesOverride substitutes byte counts on the AllBytes path only; the
// TopBytes counter always sees the raw mapping. An empty mapping is a no-op.
func (s *StatSet) Record(languages map[string]int, allBytesOverride map[string]int) {
	if len(languages) == 0 {
		return
	}
	for _, language := range LanguageNames(languages) {
		count := languages[language]
		if override, ok := allBytesOverride[language]; ok {
			count = override
		}
		s.AllBytes.Add(language, count)
	}
	s.AllRepos.Observe(languages)
	if dominant, ok := DominantLanguage(languages); ok {
		s.TopRepos.Add(dominant, 1)
		s.TopBytes.Add(dominant, languages[dominant])
	}
}
