package skills

import (
	"slices"

	"resumefit/internal/text"
	"resumefit/internal/types"
)

// Extractor finds vocabulary skills in documents. It is safe for concurrent use.
type Extractor struct {
	vocab *Vocabulary
}

// NewExtractor creates an extractor over vocab.
func NewExtractor(vocab *Vocabulary) *Extractor {
	return &Extractor{vocab: vocab}
}

// Vocabulary returns the vocabulary the extractor matches against.
func (e *Extractor) Vocabulary() *Vocabulary {
	return e.vocab
}

// Extract returns the sorted vocabulary skills present in doc.
func (e *Extractor) Extract(doc text.Document) []string {
	found := make([]string, 0)
	for _, entry := range e.vocab.entries {
		if entry.present(doc.Text) {
			found = append(found, entry.name)
		}
	}
	slices.Sort(found)
	return found
}

// Match splits the skills the job description requires into those the resume
// mentions and those it does not. Skills absent from the job description are ignored.
func (e *Extractor) Match(resume, jd text.Document) types.SkillMatchResult {
	result := types.SkillMatchResult{
		Matched: make([]string, 0),
		Missing: make([]string, 0),
	}

	for _, entry := range e.vocab.entries {
		if !entry.present(jd.Text) {
			continue
		}
		if entry.present(resume.Text) {
			result.Matched = append(result.Matched, entry.name)
		} else {
			result.Missing = append(result.Missing, entry.name)
		}
	}

	slices.Sort(result.Matched)
	slices.Sort(result.Missing)
	return result
}
