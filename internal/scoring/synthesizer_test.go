package scoring

import (
	"math"
	"testing"

	"resumefit/internal/types"

	"github.com/stretchr/testify/assert"
)

func TestDefaultWeightsValid(t *testing.T) {
	assert.NoError(t, DefaultWeights.Validate())
	assert.Error(t, Weights{Semantic: 0.5, Skill: 0.3, Experience: 0.1}.Validate())
	assert.Error(t, Weights{Semantic: 1.2, Skill: -0.2}.Validate())
}

func TestSkillRatio(t *testing.T) {
	assert.Equal(t, 1.0, SkillRatio(types.SkillMatchResult{}))
	assert.InDelta(t, 2.0/3.0, SkillRatio(types.SkillMatchResult{
		Matched: []string{"docker", "python"},
		Missing: []string{"kubernetes"},
	}), 1e-12)
	assert.Equal(t, 0.0, SkillRatio(types.SkillMatchResult{Missing: []string{"go"}}))
}

func TestSynthesize(t *testing.T) {
	s := NewSynthesizer()

	result := s.Synthesize(
		types.SkillMatchResult{Matched: []string{"docker", "python"}, Missing: []string{"kubernetes"}},
		types.SimilarityResult{Score: 0.8},
		types.ExperienceResult{Score: 0.6},
	)

	// 100 * (0.6*0.8 + 0.3*2/3 + 0.1*0.6) = 74
	assert.Equal(t, 74.0, result.FitScore)
	assert.Equal(t, 0.8, result.SemanticSimilarityScore)
	assert.Equal(t, 0.6, result.ExperienceMatchScore)
	assert.Equal(t, []string{"docker", "python"}, result.MatchedSkills)
	assert.Equal(t, []string{"kubernetes"}, result.MissingSkills)
	assert.Equal(t,
		"Overall fit score is 74.00/100. Semantic match score is 0.80. "+
			"Matched 2 of 3 required skills (skill match 0.67). "+
			"Experience alignment score is 0.60. Missing skills include: kubernetes.",
		result.Explanation)
}

func TestSynthesizeNoRequirements(t *testing.T) {
	result := NewSynthesizer().Synthesize(
		types.SkillMatchResult{},
		types.SimilarityResult{Score: 0.5},
		types.ExperienceResult{Score: 1},
	)

	// 100 * (0.6*0.5 + 0.3 + 0.1) = 70
	assert.Equal(t, 70.0, result.FitScore)
	assert.NotNil(t, result.MatchedSkills)
	assert.NotNil(t, result.MissingSkills)
	assert.Contains(t, result.Explanation, "No recognized skills were required.")
	assert.Contains(t, result.Explanation, "Missing skills include: None.")
}

func TestSynthesizeBounds(t *testing.T) {
	s := NewSynthesizer()
	cases := []struct {
		sim, exp float64
		skills   types.SkillMatchResult
	}{
		{0, 0, types.SkillMatchResult{Missing: []string{"go"}}},
		{1, 1, types.SkillMatchResult{}},
		{1.7, -3, types.SkillMatchResult{Matched: []string{"go"}}},
		{math.NaN(), 0.5, types.SkillMatchResult{}},
	}

	for _, c := range cases {
		r := s.Synthesize(c.skills, types.SimilarityResult{Score: c.sim}, types.ExperienceResult{Score: c.exp})
		assert.GreaterOrEqual(t, r.FitScore, 0.0)
		assert.LessOrEqual(t, r.FitScore, 100.0)
		assert.GreaterOrEqual(t, r.SemanticSimilarityScore, 0.0)
		assert.LessOrEqual(t, r.SemanticSimilarityScore, 1.0)
		assert.GreaterOrEqual(t, r.ExperienceMatchScore, 0.0)
		assert.LessOrEqual(t, r.ExperienceMatchScore, 1.0)
	}
}

func TestExplainSingularSkill(t *testing.T) {
	got := Explain(30, 0, 0, 0, nil, []string{"rust"})
	assert.Equal(t,
		"Overall fit score is 30.00/100. Semantic match score is 0.00. "+
			"Matched 0 of 1 required skill (skill match 0.00). "+
			"Experience alignment score is 0.00. Missing skills include: rust.",
		got)
}

func TestExplainIsDeterministic(t *testing.T) {
	a := Explain(61.234, 0.8234, 0.5, 0.25, []string{"go"}, []string{"aws"})
	b := Explain(61.234, 0.8234, 0.5, 0.25, []string{"go"}, []string{"aws"})
	assert.Equal(t, a, b)
	assert.Contains(t, a, "61.23/100")
	assert.Contains(t, a, "0.82")
}
