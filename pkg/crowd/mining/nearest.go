package mining

import "strings"

// NearestNoun finds the noun closest to the token at index. It checks
// index+1, index-1, index+2, index-2, ... so when two nouns are the same
// distance away the one after the adjective wins. The second result is
// false when the sentence holds no other noun.
func NearestNoun(sentence TaggedSentence, index int) (int, bool) {
	for offset := 1; index+offset < len(sentence) || index-offset >= 0; offset++ {
		if after := index + offset; after < len(sentence) && IsNoun(sentence[after].Tag) {
			return after, true
		}
		if before := index - offset; before >= 0 && IsNoun(sentence[before].Tag) {
			return before, true
		}
	}
	return -1, false
}

// Context builds the text scored for an adjective/noun pair: up to two
// tokens before the adjective, the adjective, then the noun.
func Context(sentence TaggedSentence, index, noun int) string {
	parts := make([]string, 0, 4)
	if index >= 2 {
		parts = append(parts, sentence[index-2].Text)
	}
	if index >= 1 {
		parts = append(parts, sentence[index-1].Text)
	}
	parts = append(parts, sentence[index].Text, sentence[noun].Text)
	return strings.Join(parts, " ")
}
