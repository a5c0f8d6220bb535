// Package preprocess cleans raw sentences into word lists for embedding.
package preprocess

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultShortSentenceTokens is the cutoff below which a cleaned sentence is
// dropped: a sentence must keep more than this many tokens.
const DefaultShortSentenceTokens = 2

// emoji covers the emoticons, symbols & pictographs, transport & map symbols
// and regional indicator (flag) blocks.
var emoji = &unicode.RangeTable{
	R32: []unicode.Range32{
		{Lo: 0x1F1E0, Hi: 0x1F1FF, Stride: 1},
		{Lo: 0x1F300, Hi: 0x1F5FF, Stride: 1},
		{Lo: 0x1F600, Hi: 0x1F64F, Stride: 1},
		{Lo: 0x1F680, Hi: 0x1F6FF, Stride: 1},
	},
}

// Sentence is a surviving sentence together with its position in the
// original, untrimmed sentence list.
type Sentence struct {
	Index  int
	Text   string
	Tokens []string
}

// Preprocessor lower-cases, strips punctuation and emoji, and tokenizes sentences.
type Preprocessor struct {
	shortSentenceTokens int
}

// New creates a Preprocessor that drops sentences with at most
// shortSentenceTokens tokens. Negative values fall back to the default.
func New(shortSentenceTokens int) *Preprocessor {
	if shortSentenceTokens < 0 {
		shortSentenceTokens = DefaultShortSentenceTokens
	}
	return &Preprocessor{shortSentenceTokens: shortSentenceTokens}
}

// Process cleans every sentence and keeps those with enough tokens. Survivors
// keep their relative order and carry their original index.
func (p *Preprocessor) Process(sentences []string) []Sentence {
	out := make([]Sentence, 0, len(sentences))
	for i, text := range sentences {
		tokens := Tokenize(text)
		if len(tokens) <= p.shortSentenceTokens {
			continue
		}
		out = append(out, Sentence{Index: i, Text: text, Tokens: tokens})
	}
	return out
}

// ShortSentenceTokens returns the configured cutoff.
func (p *Preprocessor) ShortSentenceTokens() int {
	return p.shortSentenceTokens
}

// Clean lower-cases text and removes every rune that is neither a word
// character (letter, number, underscore) nor whitespace, then removes emoji.
// Combining marks are removed too, so decomposed accents fall away while
// precomposed letters such as "é" are kept.
func Clean(text string) string {
	lowered := cases.Lower(language.Und).String(text)
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.Is(emoji, r):
			return -1
		case unicode.IsLetter(r), unicode.IsNumber(r), r == '_', unicode.IsSpace(r):
			return r
		default:
			return -1
		}
	}, lowered)
}

// Tokenize cleans text and splits it on whitespace.
func Tokenize(text string) []string {
	return strings.Fields(Clean(text))
}
