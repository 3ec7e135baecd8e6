package mining

import (
	"errors"
	"strings"
)

// lexiconTagger tags tokens from a fixed table; unknown tokens get "X".
type lexiconTagger map[string]string

func (l lexiconTagger) Tag(tokens []string) (TaggedSentence, error) {
	out := make(TaggedSentence, len(tokens))
	for i, tok := range tokens {
		tag, ok := l[strings.ToLower(tok)]
		if !ok {
			tag = "X"
		}
		out[i] = TaggedToken{Text: tok, Tag: tag}
	}
	return out, nil
}

var errBadSentence = errors.New("cannot tag sentence")

// faultyTagger fails on sentences containing "error" and panics on "panic".
type faultyTagger struct {
	lexiconTagger
}

func (f faultyTagger) Tag(tokens []string) (TaggedSentence, error) {
	for _, tok := range tokens {
		switch tok {
		case "error":
			return nil, errBadSentence
		case "panic":
			panic("tagger crashed")
		case "short":
			return TaggedSentence{{Text: tok, Tag: "JJ"}}, nil
		}
	}
	return f.lexiconTagger.Tag(tokens)
}

// wordAnalyzer sums fixed word scores; a context containing "broken"
// returns an error.
type wordAnalyzer map[string]float64

func (w wordAnalyzer) Compound(text string) (float64, error) {
	var score float64
	for _, tok := range strings.Fields(text) {
		if tok == "broken" {
			return 0, errors.New("analyzer unavailable")
		}
		score += w[strings.ToLower(tok)]
	}
	return score, nil
}

var testTags = lexiconTagger{
	"graphics": "NNS",
	"controls": "NNS",
	"sound":    "NN",
	"story":    "NN",
	"servers":  "NNS",
	"game":     "NN",
	"e@mail":   "NN",
	"amazing":  "JJ",
	"terrible": "JJ",
	"nice":     "JJ",
	"great":    "JJ",
	"bad":      "JJ",
	"okay":     "JJ",
	"broken":   "JJ",
	"better":   "JJR",
	"best":     "JJS",
	"are":      "VBP",
	"is":       "VBZ",
	"the":      "DT",
	"but":      "CC",
	".":        ".",
}

var testScores = wordAnalyzer{
	"amazing":  0.6,
	"great":    0.5,
	"nice":     0.4,
	"better":   0.3,
	"best":     0.6,
	"terrible": -0.5,
	"bad":      -0.4,
}

func tagged(pairs ...string) TaggedSentence {
	out := make(TaggedSentence, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, TaggedToken{Text: pairs[i], Tag: pairs[i+1]})
	}
	return out
}

func splitFields(s string) []string {
	return strings.Fields(s)
}
