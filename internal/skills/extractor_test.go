package skills

import (
	"testing"

	"resumefit/internal/text"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDoc(t *testing.T, field, raw string) text.Document {
	t.Helper()
	doc, err := text.Normalize(field, raw)
	require.NoError(t, err)
	return doc
}

func newTestExtractor(t *testing.T, skills ...string) *Extractor {
	t.Helper()
	vocab, err := NewVocabulary(skills...)
	require.NoError(t, err)
	return NewExtractor(vocab)
}

func TestMatchPartitionsRequirements(t *testing.T) {
	extractor := newTestExtractor(t, "python", "docker", "kubernetes", "rust")

	resume := mustDoc(t, "resume", "Built services in Python. Shipped them with Docker.")
	jd := mustDoc(t, "job_description", "We need Python, Docker and Kubernetes.")

	result := extractor.Match(resume, jd)

	assert.Equal(t, []string{"docker", "python"}, result.Matched)
	assert.Equal(t, []string{"kubernetes"}, result.Missing)
	assert.Equal(t, 3, result.Required())
}

func TestMatchIgnoresSkillsAbsentFromJobDescription(t *testing.T) {
	extractor := newTestExtractor(t, "python", "rust")

	resume := mustDoc(t, "resume", "Rust and Python expert.")
	jd := mustDoc(t, "job_description", "Python developer wanted.")

	result := extractor.Match(resume, jd)

	assert.Equal(t, []string{"python"}, result.Matched)
	assert.Empty(t, result.Missing)
}

func TestMatchNoRequirements(t *testing.T) {
	extractor := newTestExtractor(t, "python", "docker")

	resume := mustDoc(t, "resume", "Python and Docker.")
	jd := mustDoc(t, "job_description", "Friendly team player who communicates well.")

	result := extractor.Match(resume, jd)

	assert.NotNil(t, result.Matched)
	assert.NotNil(t, result.Missing)
	assert.Empty(t, result.Matched)
	assert.Empty(t, result.Missing)
	assert.Zero(t, result.Required())
}

func TestWordBoundaryMatching(t *testing.T) {
	extractor := newTestExtractor(t, "java", "javascript", "c", "c++", "c#", ".net", "go", "machine learning",
		"objective-c", "r", "rest api")

	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"javascript does not imply java", "Senior JavaScript developer", []string{"javascript"}},
		{"java on its own", "Java, Spring and friends", []string{"java"}},
		{"c++ does not imply c", "Strong C++ skills", []string{"c++"}},
		{"c# and .net", "C# and .NET services", []string{".net", "c#"}},
		{"plain c", "Embedded C programming", []string{"c"}},
		{"go inside words is ignored", "Good algorithms knowledge", []string{}},
		{"multi word across lines", "Machine\nLearning in production", []string{"machine learning"}},
		{"objective-c does not imply c", "Objective-C developer", []string{"objective-c"}},
		{"c-suite is not c", "Present to C-suite executives", []string{}},
		{"r&d is not r", "Lead our R&D team.", []string{}},
		{"go-to-market is not go", "Own the Go-to-market plan", []string{}},
		{"plural of a longer entry", "Design REST APIs", []string{"rest api"}},
		{"no plural for short entries", "CS degree preferred", []string{}},
		{"trailing punctuation", "We write Go.", []string{"go"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractor.Extract(mustDoc(t, "resume", tt.input))
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMatchWithDefaultVocabulary(t *testing.T) {
	vocab, err := DefaultVocabulary()
	require.NoError(t, err)
	extractor := NewExtractor(vocab)

	resume := mustDoc(t, "resume", "Data engineer using Python, Pandas and PostgreSQL.")
	jd := mustDoc(t, "job_description", "Looking for Python and PostgreSQL with Kubernetes.")

	result := extractor.Match(resume, jd)

	assert.Equal(t, []string{"postgresql", "python"}, result.Matched)
	assert.Equal(t, []string{"kubernetes"}, result.Missing)
}

func BenchmarkMatchDefaultVocabulary(b *testing.B) {
	vocab, err := DefaultVocabulary()
	if err != nil {
		b.Fatal(err)
	}
	extractor := NewExtractor(vocab)
	resume, _ := text.Normalize("resume", "Python, Go and Kubernetes engineer with AWS and Terraform experience.")
	jd, _ := text.Normalize("job_description", "We want Go, Kubernetes, GCP and Terraform skills.")

	for b.Loop() {
		extractor.Match(resume, jd)
	}
}
