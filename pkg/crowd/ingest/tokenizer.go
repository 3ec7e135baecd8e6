package ingest

import (
	"strings"

	"github.com/jdkato/prose/tokenize"
)

// Sentence is an ordered sequence of word tokens. Position matters: the
// miner uses it for left/right adjacency.
type Sentence []string

// TokenizedReview is an ordered sequence of sentences.
type TokenizedReview []Sentence

// TokenCount returns the number of word tokens across all sentences.
func (r TokenizedReview) TokenCount() int {
	n := 0
	for _, s := range r {
		n += len(s)
	}
	return n
}

// SentenceSplitter splits review text into sentences.
type SentenceSplitter interface {
	Split(text string) []string
}

// WordTokenizer splits a sentence into word tokens.
type WordTokenizer interface {
	Tokenize(sentence string) []string
}

// PunktSplitter detects English sentence boundaries with the Punkt model.
type PunktSplitter struct {
	punkt *tokenize.PunktSentenceTokenizer
}

// NewPunktSplitter loads the pre-trained English Punkt model.
func NewPunktSplitter() *PunktSplitter {
	return &PunktSplitter{punkt: tokenize.NewPunktSentenceTokenizer()}
}

// Split returns the sentences of text, dropping blank ones.
func (p *PunktSplitter) Split(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var sentences []string
	for _, s := range p.punkt.Tokenize(text) {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

// TreebankTokenizer splits words the way the Penn Treebank does, so the
// tokens line up with what the POS tagger was trained on.
type TreebankTokenizer struct {
	treebank *tokenize.TreebankWordTokenizer
}

// NewTreebankTokenizer creates a Penn Treebank word tokenizer.
func NewTreebankTokenizer() *TreebankTokenizer {
	return &TreebankTokenizer{treebank: tokenize.NewTreebankWordTokenizer()}
}

// Tokenize returns the word tokens of a sentence.
func (t *TreebankTokenizer) Tokenize(sentence string) []string {
	var tokens []string
	for _, tok := range t.treebank.Tokenize(sentence) {
		if tok != "" {
			tokens = append(tokens, tok)
		}
	}
	return tokens
}
