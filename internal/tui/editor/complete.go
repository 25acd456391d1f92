package editor

import (
	"sort"
	"strings"
)

// tableContext lists the keywords after which a table name is expected.
var tableContext = map[string]bool{
	"FROM": true, "JOIN": true, "INTO": true, "UPDATE": true, "TABLE": true, "DESCRIBE": true,
}

// completer cycles through candidates for the word before the cursor.
type completer struct {
	tables []string

	active     bool
	candidates []string
	index      int
}

// start computes candidates for the last word of text. After a table
// context keyword it offers table names, otherwise keywords.
func (c *completer) start(text string) bool {
	word := lastWord(text)
	if word == "" {
		return false
	}

	before := strings.TrimRight(strings.TrimSuffix(text, word), " \t\r\n")
	prev := strings.ToUpper(lastWord(before))

	var pool []string
	if tableContext[prev] {
		pool = c.tables
	} else {
		pool = keywordList()
	}

	lower := strings.ToLower(word)
	var matches []string
	for _, cand := range pool {
		if strings.HasPrefix(strings.ToLower(cand), lower) && !strings.EqualFold(cand, word) {
			matches = append(matches, cand)
		}
	}
	if len(matches) == 0 {
		return false
	}

	c.active = true
	c.candidates = matches
	c.index = 0
	return true
}

func (c *completer) next() {
	c.index = (c.index + 1) % len(c.candidates)
}

func (c *completer) current() string {
	return c.candidates[c.index]
}

func (c *completer) reset() {
	c.active = false
	c.candidates = nil
	c.index = 0
}

// replaceLastWord swaps the trailing word of text for w.
func replaceLastWord(text, w string) string {
	return strings.TrimSuffix(text, lastWord(text)) + w
}

// lastWord returns the identifier-like token at the very end of s,
// including dots so schema-qualified names complete as one word.
func lastWord(s string) string {
	i := len(s)
	for i > 0 && (isWordRune(rune(s[i-1])) || s[i-1] == '.') {
		i--
	}
	return s[i:]
}

var sortedKeywords = upperSorted(keywords)

func upperSorted(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, strings.ToUpper(k))
	}
	sort.Strings(out)
	return out
}

func keywordList() []string {
	return sortedKeywords
}
