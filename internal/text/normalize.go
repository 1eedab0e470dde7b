// Package text turns raw resume and job description text into normalized documents.
package text

import (
	"strings"
	"unicode"

	"resumefit/internal/errors"
)

// Document is an immutable normalized view of one input text.
type Document struct {
	// Raw is the input with surrounding whitespace removed.
	Raw string
	// Text is Raw lowercased with every whitespace run collapsed to one space.
	Text string
	// Sentences are trimmed, lowercased, non-empty segments in input order.
	Sentences []string
}

// Empty reports whether the document produced no usable sentences.
func (d Document) Empty() bool {
	return len(d.Sentences) == 0
}

// Normalize validates and normalizes raw. field names the input in errors.
func Normalize(field, raw string) (Document, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Document{}, errors.NewEmptyInputError(field)
	}

	return Document{
		Raw:       trimmed,
		Text:      Canonical(trimmed),
		Sentences: SplitSentences(trimmed),
	}, nil
}

// Canonical lowercases s and collapses whitespace runs into single spaces.
func Canonical(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// SplitSentences splits s on line breaks and on terminal punctuation that is
// followed by whitespace or the end of the text. Segments without a letter or
// digit are dropped.
func SplitSentences(s string) []string {
	runes := []rune(s)
	sentences := make([]string, 0, 8)
	start := 0

	flush := func(end int) {
		if seg := Canonical(string(runes[start:end])); hasWordRune(seg) {
			sentences = append(sentences, seg)
		}
	}

	for i, r := range runes {
		switch {
		case r == '\n' || r == '\r':
			flush(i)
			start = i + 1
		case isTerminal(r) && (i+1 == len(runes) || unicode.IsSpace(runes[i+1])):
			flush(i + 1)
			start = i + 1
		}
	}
	if start < len(runes) {
		flush(len(runes))
	}

	return sentences
}

func isTerminal(r rune) bool {
	switch r {
	case '.', '!', '?', ';':
		return true
	}
	return false
}

func hasWordRune(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
