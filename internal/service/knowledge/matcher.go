package knowledge

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidEntry is returned when a table entry lacks keywords or a response.
var ErrInvalidEntry = errors.New("knowledge entry requires keywords and a response")

// Matcher scores free-text queries against a fixed keyword table. It is
// immutable after construction and safe for concurrent use.
type Matcher struct {
	entries []Entry
}

type candidate struct {
	index     int
	score     int
	relevance int
}

// NewMatcher validates and copies the supplied table. Keywords are lowercased
// so that matching only needs to normalise the query.
func NewMatcher(entries []Entry) (*Matcher, error) {
	copied := make([]Entry, 0, len(entries))
	for i, entry := range entries {
		if len(entry.Keywords) == 0 || strings.TrimSpace(entry.Response) == "" {
			return nil, fmt.Errorf("entry %d: %w", i, ErrInvalidEntry)
		}
		keywords := make([]string, 0, len(entry.Keywords))
		for _, keyword := range entry.Keywords {
			keyword = strings.ToLower(keyword)
			if keyword == "" {
				return nil, fmt.Errorf("entry %d: empty keyword: %w", i, ErrInvalidEntry)
			}
			keywords = append(keywords, keyword)
		}
		copied = append(copied, Entry{Keywords: keywords, Category: entry.Category, Response: entry.Response})
	}
	return &Matcher{entries: copied}, nil
}

// NewDefaultMatcher builds a matcher over DefaultEntries.
func NewDefaultMatcher() *Matcher {
	m, err := NewMatcher(DefaultEntries())
	if err != nil {
		panic(err)
	}
	return m
}

// Search returns the response of the best matching entry, or false when no
// keyword of any entry occurs in the query.
func (m *Matcher) Search(query string) (string, bool) {
	normalized := strings.ToLower(query)
	bonus := queryBonus(normalized)

	var best *candidate
	for i, entry := range m.entries {
		score, weight := 0, 0
		for _, keyword := range entry.Keywords {
			if strings.Contains(normalized, keyword) {
				score++
				weight += len(strings.Split(keyword, " "))
			}
		}
		if score == 0 {
			continue
		}

		c := candidate{index: i, score: score, relevance: weight + bonus}
		// strict comparisons keep the earliest entry on a full tie
		if best == nil || c.relevance > best.relevance || (c.relevance == best.relevance && c.score > best.score) {
			best = &c
		}
	}

	if best == nil {
		return "", false
	}
	return m.entries[best.index].Response, true
}

// queryBonus adds the question-shape boosts. They apply once per query.
func queryBonus(query string) int {
	bonus := 0
	if strings.Contains(query, "what is") || strings.Contains(query, "tell me about") {
		bonus += 2
	}
	if strings.Contains(query, "where") || strings.Contains(query, "location") {
		bonus += 3
	}
	if strings.Contains(query, "how") || strings.Contains(query, "services") {
		bonus += 3
	}
	return bonus
}

// Categories lists the distinct categories in table order.
func (m *Matcher) Categories() []string {
	seen := make(map[string]struct{}, len(m.entries))
	categories := make([]string, 0, len(m.entries))
	for _, entry := range m.entries {
		if _, ok := seen[entry.Category]; ok {
			continue
		}
		seen[entry.Category] = struct{}{}
		categories = append(categories, entry.Category)
	}
	return categories
}

// ByCategory returns copies of the entries filed under category.
func (m *Matcher) ByCategory(category string) []Entry {
	var out []Entry
	for _, entry := range m.entries {
		if entry.Category == category {
			out = append(out, Entry{
				Keywords: append([]string(nil), entry.Keywords...),
				Category: entry.Category,
				Response: entry.Response,
			})
		}
	}
	return out
}
