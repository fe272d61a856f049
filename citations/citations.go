// Package citations extracts article references from free text and checks
// generated answers against retrieved passages.
package citations

import (
	"regexp"
	"sort"
	"strings"

	"constitutionbd-backend/models"
)

var referencePattern = regexp.MustCompile(`(?i)Article\s+(\d+[A-Z]*)`)

// ExtractReferences scans text case-insensitively for article mentions and
// returns the distinct normalized article numbers, sorted.
func ExtractReferences(text string) []string {
	seen := make(map[string]struct{})
	var refs []string
	for _, m := range referencePattern.FindAllStringSubmatch(text, -1) {
		number := strings.ToUpper(m[1])
		if _, ok := seen[number]; ok {
			continue
		}
		seen[number] = struct{}{}
		refs = append(refs, number)
	}
	sort.Strings(refs)
	return refs
}

// VerifyCitations returns the article numbers cited in the answer that match
// the article number of a retrieved passage. Matching is exact: a cited "2"
// is not corroborated by a retrieved "27".
func VerifyCitations(answer string, passages []models.Passage) []string {
	available := make(map[string]struct{}, len(passages))
	for _, p := range passages {
		available[p.ArticleNumber] = struct{}{}
	}

	var verified []string
	for _, cited := range ExtractReferences(answer) {
		if _, ok := available[cited]; ok {
			verified = append(verified, cited)
		}
	}
	return verified
}
