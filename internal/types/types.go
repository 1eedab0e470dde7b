package types

// EvaluateInput represents the input for scoring a resume against a job description
type EvaluateInput struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription"`
}

// SkillMatchResult partitions the vocabulary skills named by a job description.
// Matched and Missing are sorted, disjoint and never nil.
type SkillMatchResult struct {
	Matched []string `json:"matched"`
	Missing []string `json:"missing"`
}

// Required returns the number of skills the job description names.
func (s SkillMatchResult) Required() int {
	return len(s.Matched) + len(s.Missing)
}

// SimilarityResult holds the aggregated sentence similarity in [0,1]
type SimilarityResult struct {
	Score float64 `json:"score"`
}

// ExperienceResult holds the years extracted from both documents.
// A nil pointer means no experience phrase was found.
type ExperienceResult struct {
	RequiredYears *float64 `json:"requiredYears,omitempty"`
	FoundYears    *float64 `json:"foundYears,omitempty"`
	Score         float64  `json:"score"`
}

// FitResult is the scored outcome of one evaluation
type FitResult struct {
	FitScore                float64  `json:"fit_score"`
	SemanticSimilarityScore float64  `json:"semantic_similarity_score"`
	MatchedSkills           []string `json:"matched_skills"`
	MissingSkills           []string `json:"missing_skills"`
	ExperienceMatchScore    float64  `json:"experience_match_score"`
	Explanation             string   `json:"explanation"`
}

// SkillReport lists the vocabulary skills found in a single document
type SkillReport struct {
	Source string   `json:"source"`
	Skills []string `json:"skills"`
}
