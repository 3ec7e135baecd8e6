package mining

import (
	"strings"

	"github.com/jdkato/prose/tag"
)

// TaggedToken is a word paired with its Penn Treebank part-of-speech tag.
type TaggedToken struct {
	Text string
	Tag  string
}

// TaggedSentence is a sentence of tagged tokens in their original order.
type TaggedSentence []TaggedToken

// Tagger assigns part-of-speech tags to the tokens of one sentence. Tags
// may depend on context inside the sentence but never across sentences.
type Tagger interface {
	Tag(tokens []string) (TaggedSentence, error)
}

// IsNoun reports whether a tag is noun-like (NN, NNS, NNP, NNPS).
func IsNoun(tag string) bool {
	return tagPrefix(tag) == "NN"
}

// IsAdjective reports whether a tag is adjective-like (JJ, JJR, JJS).
func IsAdjective(tag string) bool {
	return tagPrefix(tag) == "JJ"
}

func tagPrefix(tag string) string {
	if len(tag) < 2 {
		return tag
	}
	return tag[:2]
}

// DefaultAdjectiveOverrides are review adjectives the perceptron model
// reads as participles ("the graphics are amazing" comes back as VBG).
var DefaultAdjectiveOverrides = []string{
	"amazing", "annoying", "boring", "broken", "charming", "confusing",
	"convoluted", "disappointing", "exciting", "frustrating", "interesting",
	"outdated", "overpriced", "overrated", "polished", "relaxing",
	"rewarding", "satisfying", "stunning", "underrated",
}

// PerceptronTagger tags with the averaged perceptron model shipped with prose.
// Tokens in its adjective set that the model tags VBG or VBN are retagged JJ.
type PerceptronTagger struct {
	model      *tag.PerceptronTagger
	adjectives map[string]bool
}

// NewPerceptronTagger loads the pre-trained English tagging model with
// DefaultAdjectiveOverrides.
func NewPerceptronTagger() *PerceptronTagger {
	return NewPerceptronTaggerWithOverrides(DefaultAdjectiveOverrides)
}

// NewPerceptronTaggerWithOverrides loads the model with a custom adjective
// set. Matching ignores case.
func NewPerceptronTaggerWithOverrides(adjectives []string) *PerceptronTagger {
	set := make(map[string]bool, len(adjectives))
	for _, a := range adjectives {
		set[strings.ToLower(a)] = true
	}
	return &PerceptronTagger{model: tag.NewPerceptronTagger(), adjectives: set}
}

// Tag tags a sentence. An empty sentence yields an empty result.
func (p *PerceptronTagger) Tag(tokens []string) (TaggedSentence, error) {
	if len(tokens) == 0 {
		return TaggedSentence{}, nil
	}
	tagged := p.model.Tag(tokens)
	out := make(TaggedSentence, len(tagged))
	for i, t := range tagged {
		out[i] = TaggedToken{Text: t.Text, Tag: t.Tag}
	}
	return overrideAdjectives(out, p.adjectives), nil
}

// overrideAdjectives retags participles found in adjectives as JJ.
func overrideAdjectives(sentence TaggedSentence, adjectives map[string]bool) TaggedSentence {
	for i, t := range sentence {
		if (t.Tag == "VBG" || t.Tag == "VBN") && adjectives[strings.ToLower(t.Text)] {
			sentence[i].Tag = "JJ"
		}
	}
	return sentence
}
