package knowledge

import "strings"

var defaultDomainKeywords = []string{
	"crystal", "cold chain", "logistics", "warehousing", "real estate",
	"refrigerated", "reefers", "storage", "gujarat", "kolkata", "bhubaneswar",
}

// Classifier decides whether a query concerns the business the assistant represents.
type Classifier struct {
	keywords []string
}

// NewClassifier returns a classifier over the supplied domain keywords.
func NewClassifier(keywords []string) *Classifier {
	normalized := make([]string, 0, len(keywords))
	for _, keyword := range keywords {
		if keyword = strings.ToLower(strings.TrimSpace(keyword)); keyword != "" {
			normalized = append(normalized, keyword)
		}
	}
	return &Classifier{keywords: normalized}
}

// NewDefaultClassifier covers Crystal Group's business lines and locations.
func NewDefaultClassifier() *Classifier {
	return NewClassifier(defaultDomainKeywords)
}

// IsInDomain reports whether any domain keyword occurs in the query.
func (c *Classifier) IsInDomain(query string) bool {
	normalized := strings.ToLower(query)
	for _, keyword := range c.keywords {
		if strings.Contains(normalized, keyword) {
			return true
		}
	}
	return false
}
