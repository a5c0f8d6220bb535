// Package segment splits raw text into sentences. It is the boundary to the
// sentence tokenizer; locale handling belongs to the tokenizer, not the pipeline.
package segment

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/neurosnap/sentences.v1"
	"gopkg.in/neurosnap/sentences.v1/english"
)

// Tokenizer splits a text into sentences.
type Tokenizer interface {
	Split(text string) []string
}

// Punkt splits text with the pretrained English Punkt model.
type Punkt struct {
	tokenizer *sentences.DefaultSentenceTokenizer
}

// NewPunkt loads the bundled English Punkt model.
func NewPunkt() (*Punkt, error) {
	tokenizer, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load punkt model: %w", err)
	}
	return &Punkt{tokenizer: tokenizer}, nil
}

// Split returns the trimmed, non-empty sentences of text in reading order.
func (p *Punkt) Split(text string) []string {
	var out []string
	for _, s := range p.tokenizer.Tokenize(text) {
		if trimmed := strings.TrimSpace(s.Text); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// reSentence matches runs ending in ., ! or ?, or the unterminated tail.
var reSentence = regexp.MustCompile(`[^.!?]+(?:[.!?]+|$)`)

// Regex splits on sentence-final punctuation. It needs no model but does not
// handle abbreviations.
type Regex struct{}

// Split returns the trimmed, non-empty sentences of text in reading order.
func (Regex) Split(text string) []string {
	var out []string
	for _, s := range reSentence.FindAllString(text, -1) {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// New returns the tokenizer registered under name ("punkt" or "regex").
func New(name string) (Tokenizer, error) {
	switch strings.ToLower(name) {
	case "", "punkt":
		return NewPunkt()
	case "regex":
		return Regex{}, nil
	default:
		return nil, fmt.Errorf("unknown sentence tokenizer %q", name)
	}
}
