// Package scoring combines the skill, similarity and experience signals into
// the final fit score and its explanation.
package scoring

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"resumefit/internal/types"
)

// Weights are the contribution of each signal to the fit score.
type Weights struct {
	Semantic   float64
	Skill      float64
	Experience float64
}

// DefaultWeights are the fixed production weights.
var DefaultWeights = Weights{Semantic: 0.6, Skill: 0.3, Experience: 0.1}

// Validate checks that weights are non-negative and sum to 1.
func (w Weights) Validate() error {
	if w.Semantic < 0 || w.Skill < 0 || w.Experience < 0 {
		return fmt.Errorf("weights must not be negative: %+v", w)
	}
	if sum := w.Semantic + w.Skill + w.Experience; math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("weights must sum to 1, got %g", sum)
	}
	return nil
}

// Synthesizer produces FitResults. It holds no mutable state.
type Synthesizer struct {
	weights Weights
}

// NewSynthesizer returns a synthesizer using DefaultWeights.
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{weights: DefaultWeights}
}

// SkillRatio is the share of required skills the resume matched, or 1.0 when
// nothing is required.
func SkillRatio(skills types.SkillMatchResult) float64 {
	required := skills.Required()
	if required == 0 {
		return 1.0
	}
	return float64(len(skills.Matched)) / float64(required)
}

// Synthesize combines the three signals. The fit score is computed from the
// unrounded inputs and then rounded to two decimals; component scores are
// rounded to three.
func (s *Synthesizer) Synthesize(skills types.SkillMatchResult, sim types.SimilarityResult, exp types.ExperienceResult) types.FitResult {
	semantic := clamp(sim.Score, 0, 1)
	experience := clamp(exp.Score, 0, 1)
	ratio := SkillRatio(skills)

	raw := s.weights.Semantic*semantic + s.weights.Skill*ratio + s.weights.Experience*experience
	fit := clamp(100*raw, 0, 100)

	matched := nonNil(skills.Matched)
	missing := nonNil(skills.Missing)

	result := types.FitResult{
		FitScore:                round(fit, 2),
		SemanticSimilarityScore: round(semantic, 3),
		MatchedSkills:           matched,
		MissingSkills:           missing,
		ExperienceMatchScore:    round(experience, 3),
	}
	result.Explanation = Explain(result.FitScore, semantic, ratio, experience, matched, missing)
	return result
}

// Explain renders the fixed explanation template. It only uses strconv
// formatting so the output never depends on locale.
func Explain(fit, semantic, skillRatio, experience float64, matched, missing []string) string {
	var b strings.Builder

	b.WriteString("Overall fit score is ")
	b.WriteString(strconv.FormatFloat(fit, 'f', 2, 64))
	b.WriteString("/100. Semantic match score is ")
	b.WriteString(strconv.FormatFloat(semantic, 'f', 2, 64))
	b.WriteString(". ")

	required := len(matched) + len(missing)
	if required == 0 {
		b.WriteString("No recognized skills were required. ")
	} else {
		b.WriteString("Matched ")
		b.WriteString(strconv.Itoa(len(matched)))
		b.WriteString(" of ")
		b.WriteString(strconv.Itoa(required))
		b.WriteString(" required skill")
		if required != 1 {
			b.WriteString("s")
		}
		b.WriteString(" (skill match ")
		b.WriteString(strconv.FormatFloat(skillRatio, 'f', 2, 64))
		b.WriteString("). ")
	}

	b.WriteString("Experience alignment score is ")
	b.WriteString(strconv.FormatFloat(experience, 'f', 2, 64))
	b.WriteString(". Missing skills include: ")
	if len(missing) == 0 {
		b.WriteString("None")
	} else {
		b.WriteString(strings.Join(missing, ", "))
	}
	b.WriteString(".")

	return b.String()
}

func round(x float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(x*p) / p
}

func clamp(x, lo, hi float64) float64 {
	if math.IsNaN(x) {
		return lo
	}
	return math.Max(lo, math.Min(hi, x))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
