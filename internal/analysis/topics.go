package analysis

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	MaxTopics          = 5
	fallbackTopicCount = 3
	fallbackMinFreq    = 3
	minKeywordRunes    = 5
)

var topicCategories = []keywordGroup{
	{"Artificial Intelligence", []string{"ai", "artificial intelligence", "machine learning", "neural network", "deep learning"}},
	{"Data Science", []string{"data science", "analytics", "statistics", "big data", "data analysis"}},
	{"Technology", []string{"technology", "software", "hardware", "innovation", "digital"}},
	{"Business", []string{"business", "strategy", "market", "revenue", "profit", "management"}},
	{"Research", []string{"research", "study", "methodology", "findings", "analysis"}},
	{"Healthcare", []string{"health", "medical", "patient", "treatment", "clinical"}},
	{"Education", []string{"education", "learning", "teaching", "training", "knowledge"}},
	{"Finance", []string{"finance", "financial", "investment", "banking", "economic"}},
}

// ExtractTopics returns up to MaxTopics topic labels for text. Known
// categories come first, in definition order. Text matching no category
// falls back to its most frequent long words.
func ExtractTopics(text string) []string {
	lower := strings.ToLower(text)

	topics := matchingLabels(lower, topicCategories)
	if len(topics) == 0 {
		topics = frequentWords(lower)
	}

	if len(topics) > MaxTopics {
		topics = topics[:MaxTopics]
	}
	return topics
}

type wordCount struct {
	word  string
	count int
}

func frequentWords(lower string) []string {
	var counts []wordCount
	index := map[string]int{}
	for _, w := range strings.Fields(lower) {
		if !IsKeyword(w) {
			continue
		}
		if i, ok := index[w]; ok {
			counts[i].count++
			continue
		}
		index[w] = len(counts)
		counts = append(counts, wordCount{word: w, count: 1})
	}

	// Stable, so ties keep first-seen order.
	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].count > counts[j].count
	})

	title := cases.Title(language.English)
	var topics []string
	for _, wc := range counts[:min(fallbackTopicCount, len(counts))] {
		if wc.count >= fallbackMinFreq {
			topics = append(topics, title.String(wc.word))
		}
	}
	return topics
}

// IsKeyword reports whether token is purely alphabetic and longer than four
// characters.
func IsKeyword(token string) bool {
	if utf8.RuneCountInString(token) < minKeywordRunes {
		return false
	}
	for _, r := range token {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
