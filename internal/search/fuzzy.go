package search

import (
	"sort"
	"strings"

	"github.com/egoavara/formguard/internal/modules"
	"github.com/sahilm/fuzzy"
)

// SearchResult represents a search result
type SearchResult struct {
	Integration modules.Integration
	Score       int // Higher is better
}

// IntegrationSearchable wraps integrations for fuzzy searching
type IntegrationSearchable []modules.Integration

// String returns the searchable string for an integration
func (s IntegrationSearchable) String(i int) string {
	it := s[i]
	parts := []string{it.Name, it.Status}

	parts = append(parts, it.Keywords...)
	for _, id := range it.Plugins {
		parts = append(parts, strings.SplitN(id, "/", 2)[0])
	}
	if it.Theme != "" {
		parts = append(parts, it.Theme)
	}
	if it.Category != "" {
		parts = append(parts, it.Category)
	}

	return strings.ToLower(strings.Join(parts, " "))
}

// Len returns the number of integrations
func (s IntegrationSearchable) Len() int {
	return len(s)
}

// FuzzySearch performs a fuzzy search across integrations.
// An empty query returns every integration in input order.
func FuzzySearch(items []modules.Integration, query string) []SearchResult {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		results := make([]SearchResult, 0, len(items))
		for _, it := range items {
			results = append(results, SearchResult{Integration: it})
		}
		return results
	}

	matches := fuzzy.FindFrom(query, IntegrationSearchable(items))
	results := make([]SearchResult, 0, len(matches))
	for _, match := range matches {
		results = append(results, SearchResult{
			Integration: items[match.Index],
			Score:       match.Score,
		})
	}

	// Sort by score (descending)
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	return results
}

// SimpleSearch performs a simple substring search
func SimpleSearch(items []modules.Integration, query string) []SearchResult {
	var results []SearchResult
	query = strings.ToLower(query)

	for _, it := range items {
		if matchesQuery(it, query) {
			results = append(results, SearchResult{
				Integration: it,
				Score:       100, // Default score for simple matches
			})
		}
	}

	return results
}

// matchesQuery checks if an integration matches the search query
func matchesQuery(it modules.Integration, query string) bool {
	// Check name and status key
	if strings.Contains(strings.ToLower(it.Name), query) || strings.Contains(it.Status, query) {
		return true
	}

	// Check keywords
	for _, keyword := range it.Keywords {
		if strings.Contains(strings.ToLower(keyword), query) {
			return true
		}
	}

	// Check plugin identifiers
	for _, id := range it.Plugins {
		if strings.Contains(strings.ToLower(id), query) {
			return true
		}
	}

	// Check category
	return strings.Contains(strings.ToLower(it.Category), query)
}
