// Package skills holds the curated skill vocabulary and the matcher that
// finds vocabulary skills in normalized documents.
package skills

import (
	_ "embed"
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"resumefit/internal/errors"
	"resumefit/internal/text"

	"gopkg.in/yaml.v3"
)

//go:embed vocabulary.yaml
var defaultVocabularyYAML []byte

// vocabularyFile is the on-disk layout of a vocabulary. Either form may be used.
type vocabularyFile struct {
	Categories map[string][]string `yaml:"categories"`
	Skills     []string            `yaml:"skills"`
}

type entry struct {
	name     string
	category string
	pattern  *regexp.Regexp
}

// Vocabulary is a read-only set of canonical skills.
type Vocabulary struct {
	entries []entry
	index   map[string]int
}

// DefaultVocabulary parses the built-in vocabulary.
func DefaultVocabulary() (*Vocabulary, error) {
	return ParseVocabulary(defaultVocabularyYAML)
}

// ParseVocabulary builds a vocabulary from YAML content.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	var file vocabularyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeVocabulary, "failed to parse skill vocabulary", err)
	}

	v := &Vocabulary{index: make(map[string]int)}

	// Categories are visited in sorted order so the first category wins deterministically.
	categories := make([]string, 0, len(file.Categories))
	for name := range file.Categories {
		categories = append(categories, name)
	}
	sort.Strings(categories)

	for _, category := range categories {
		for _, skill := range file.Categories[category] {
			if err := v.add(skill, category); err != nil {
				return nil, err
			}
		}
	}
	for _, skill := range file.Skills {
		if err := v.add(skill, ""); err != nil {
			return nil, err
		}
	}

	if len(v.entries) == 0 {
		return nil, errors.NewConfigError(errors.ErrCodeVocabulary, "skill vocabulary is empty", nil)
	}

	return v, nil
}

// NewVocabulary builds an uncategorized vocabulary from a list of skills.
func NewVocabulary(skills ...string) (*Vocabulary, error) {
	v := &Vocabulary{index: make(map[string]int)}
	for _, skill := range skills {
		if err := v.add(skill, ""); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (v *Vocabulary) add(raw, category string) error {
	name := text.Canonical(raw)
	if name == "" {
		return errors.NewConfigError(errors.ErrCodeVocabulary,
			fmt.Sprintf("blank skill entry in category %q", category), nil)
	}
	if _, exists := v.index[name]; exists {
		return nil
	}

	pattern, err := compileSkillPattern(name)
	if err != nil {
		return errors.NewConfigError(errors.ErrCodeVocabulary,
			fmt.Sprintf("invalid skill entry %q", raw), err)
	}

	v.index[name] = len(v.entries)
	v.entries = append(v.entries, entry{name: name, category: category, pattern: pattern})
	return nil
}

// compileSkillPattern anchors a skill on word boundaries. The trailing
// boundary also rejects '+' and '#' so "c" does not match inside "c++" or "c#".
// Entries of one or two runes additionally refuse '-' and '&' on either side,
// which keeps "objective-c", "c-suite", "r&d" and "go-to-market" from
// producing them. Longer entries ending in a letter accept a plural "s".
func compileSkillPattern(name string) (*regexp.Regexp, error) {
	lead, trail := `\p{L}\p{N}`, `\p{L}\p{N}+#`
	suffix := ""
	if utf8.RuneCountInString(name) <= 2 {
		lead += `&\-`
		trail += `&\-`
	} else if r, _ := utf8.DecodeLastRuneInString(name); unicode.IsLetter(r) {
		suffix = "s?"
	}
	return regexp.Compile(`(?:^|[^` + lead + `])` + regexp.QuoteMeta(name) + suffix + `(?:$|[^` + trail + `])`)
}

// Len returns the number of distinct skills.
func (v *Vocabulary) Len() int {
	return len(v.entries)
}

// Contains reports whether skill is a vocabulary entry.
func (v *Vocabulary) Contains(skill string) bool {
	_, ok := v.index[text.Canonical(skill)]
	return ok
}

// Category returns the category a skill was declared in, or "".
func (v *Vocabulary) Category(skill string) string {
	if i, ok := v.index[text.Canonical(skill)]; ok {
		return v.entries[i].category
	}
	return ""
}

// Skills returns every entry in sorted order.
func (v *Vocabulary) Skills() []string {
	names := make([]string, len(v.entries))
	for i, e := range v.entries {
		names[i] = e.name
	}
	slices.Sort(names)
	return names
}

// Categories returns the skills grouped by category. Uncategorized skills are keyed by "other".
func (v *Vocabulary) Categories() map[string][]string {
	out := make(map[string][]string)
	for _, e := range v.entries {
		key := e.category
		if key == "" {
			key = "other"
		}
		out[key] = append(out[key], e.name)
	}
	for key := range out {
		slices.Sort(out[key])
	}
	return out
}

// present reports whether the entry occurs in canonical text.
func (e entry) present(canonical string) bool {
	return strings.Contains(canonical, e.name) && e.pattern.MatchString(canonical)
}
