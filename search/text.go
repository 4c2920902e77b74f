package search

import "strings"

// Stop words ignored when matching multi-word keyword queries
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true,
	"的": true, "了": true, "是": true, "在": true, "和": true, "也": true,
	"就": true, "都": true, "吗": true, "呢": true,
}

// tokenizeAndFilter splits text into words, lowercases, trims punctuation, and removes stop words
func tokenizeAndFilter(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}，。！？；：、“”‘’（）《》"))
		if cleaned != "" && !stopWords[cleaned] {
			filtered = append(filtered, cleaned)
		}
	}

	return filtered
}

// matchesKeyword reports whether document contains query as a
// case-insensitive substring or, for multi-word queries, contains every
// query word that is not a stop word.
func matchesKeyword(document, query string) bool {
	doc := strings.ToLower(document)
	if strings.Contains(doc, strings.ToLower(query)) {
		return true
	}

	queryWords := tokenizeAndFilter(query)
	if len(queryWords) < 2 {
		return false
	}
	for _, word := range queryWords {
		if !strings.Contains(doc, word) {
			return false
		}
	}
	return true
}
