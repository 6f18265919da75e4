package classify

import (
	"sort"
	"strings"
	"unicode"
)

// summaryLimit is the maximum length of a heuristic summary in runes.
const summaryLimit = 100

// stopWords are common words excluded from heuristic tagging.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "are": true, "but": true,
	"not": true, "you": true, "all": true, "can": true, "her": true,
	"was": true, "one": true, "our": true, "out": true, "day": true,
	"get": true, "has": true, "him": true, "his": true, "how": true,
	"man": true, "new": true, "now": true, "old": true, "see": true,
	"two": true, "way": true, "who": true, "did": true, "its": true,
	"let": true, "she": true, "too": true, "use": true, "that": true,
	"with": true, "have": true, "this": true, "will": true, "your": true,
	"from": true, "they": true, "know": true, "want": true, "been": true,
	"good": true, "much": true, "some": true, "time": true, "very": true,
	"when": true, "come": true, "here": true, "just": true, "like": true,
	"long": true, "make": true, "many": true, "more": true, "only": true,
	"over": true, "such": true, "take": true, "than": true, "them": true,
	"well": true, "were": true, "what": true, "about": true, "there": true,
	"their": true, "would": true, "could": true, "should": true,
	"think": true, "really": true, "today": true, "going": true,
	"thing": true, "things": true, "love": true, "need": true,
	"also": true, "into": true, "back": true, "because": true,
}

// heuristicClassify derives tags and a summary without the LLM.
//
// Tags are the top 4 distinct tokens longer than 3 characters by frequency,
// after lowercasing, stripping non-letters, and removing stop words. The
// summary is the first ~100 characters of the content, ellipsized when
// truncated.
func heuristicClassify(content string) (tags []string, summary string) {
	return heuristicTags(content), heuristicSummary(content)
}

// heuristicTags extracts frequency-ranked keyword tags from content.
func heuristicTags(content string) []string {
	counts := make(map[string]int)
	order := make(map[string]int)

	for i, token := range tokenize(content) {
		if len(token) <= 3 || stopWords[token] {
			continue
		}
		if _, ok := counts[token]; !ok {
			order[token] = i
		}
		counts[token]++
	}

	tokens := make([]string, 0, len(counts))
	for token := range counts {
		tokens = append(tokens, token)
	}

	// Highest frequency first; first appearance breaks ties so output is
	// deterministic for a given input.
	sort.Slice(tokens, func(i, j int) bool {
		if counts[tokens[i]] != counts[tokens[j]] {
			return counts[tokens[i]] > counts[tokens[j]]
		}
		return order[tokens[i]] < order[tokens[j]]
	})

	if len(tokens) > 4 {
		tokens = tokens[:4]
	}
	return tokens
}

// tokenize lowercases content and splits it into letter-only tokens.
func tokenize(content string) []string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, content)
	return strings.Fields(cleaned)
}

// heuristicSummary truncates content to the summary limit.
func heuristicSummary(content string) string {
	content = strings.TrimSpace(content)
	runes := []rune(content)
	if len(runes) <= summaryLimit {
		return content
	}
	return strings.TrimSpace(string(runes[:summaryLimit])) + "..."
}
