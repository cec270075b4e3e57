package research

import (
	"net/url"
	"strings"

	"github.com/dkrasnov/docureel/internal/model"
)

// trustedTLDs are suffixes trusted regardless of the specific domain.
var trustedTLDs = []string{".gov", ".edu", ".mil", ".gov.in", ".ac.uk"}

// Classifier maps URLs to credibility categories using TLD rules and
// exact-domain allow-lists. A strict policy lookup: no heuristic
// scoring, no partial matches, no subdomain wildcarding. Blogs,
// social media and content farms never classify.
type Classifier struct {
	news          map[string]bool
	encyclopedias map[string]bool
	techScience   map[string]bool
}

// NewClassifier builds a classifier from the configured allow-lists.
func NewClassifier(trust model.TrustConfig) *Classifier {
	return &Classifier{
		news:          toSet(trust.NewsDomains),
		encyclopedias: toSet(trust.EncyclopediaDomains),
		techScience:   toSet(trust.TechScienceDomains),
	}
}

// Classify returns the source category for a URL. ok is false when the
// domain is off the allow-list and may not contribute evidence. The
// same URL with the same allow-lists always gives the same answer.
func (c *Classifier) Classify(rawURL string) (model.SourceType, bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return "", false
	}

	// Government and education TLDs are trusted automatically.
	for _, tld := range trustedTLDs {
		if strings.HasSuffix(host, tld) {
			if strings.Contains(host, ".edu") || strings.Contains(host, ".ac.") {
				return model.SourceEducation, true
			}
			return model.SourceGovernment, true
		}
	}

	domain := strings.TrimPrefix(host, "www.")
	if domain == "" {
		return "", false
	}

	if c.encyclopedias[domain] {
		return model.SourceEncyclopedia, true
	}
	if c.news[domain] {
		return model.SourceNewsMajor, true
	}
	if c.techScience[domain] {
		return model.SourceOtherTrusted, true
	}

	// Not on any list: strict rejection.
	return "", false
}

func toSet(domains []string) map[string]bool {
	set := make(map[string]bool, len(domains))
	for _, d := range domains {
		set[strings.ToLower(d)] = true
	}
	return set
}
