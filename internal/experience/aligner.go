// Package experience compares the years of experience a job description asks
// for with the years a resume states.
package experience

import (
	"regexp"
	"strconv"

	"resumefit/internal/types"
)

// yearsPattern matches "3 years", "5+ yrs", "7.5 year" and ranges such as
// "3-5 years" or "3 to 5 years", capturing the upper bound of a range.
var yearsPattern = regexp.MustCompile(
	`(?i)(\d+(?:\.\d+)?)(?:\s*(?:-|–|to)\s*(\d+(?:\.\d+)?))?\s*\+?\s*(?:years?|yrs?)\b`)

const (
	// MaxYears caps a stated figure so outliers like "40 years" score as 20.
	MaxYears = 20.0
	// implausibleYears and above are read as calendar years, not experience.
	implausibleYears = 60.0
)

// Aligner scores experience. The zero value is ready to use.
type Aligner struct{}

// NewAligner returns an Aligner.
func NewAligner() *Aligner {
	return &Aligner{}
}

// Align scores the resume's stated years against the job description's.
// No stated requirement, or a requirement of zero, scores 1.0. A requirement
// the resume never addresses scores 0.0.
func (a *Aligner) Align(resume, jd string) types.ExperienceResult {
	required, hasRequired := Years(jd)
	found, hasFound := Years(resume)

	result := types.ExperienceResult{}
	if hasRequired {
		result.RequiredYears = &required
	}
	if hasFound {
		result.FoundYears = &found
	}

	switch {
	case !hasRequired || required == 0:
		result.Score = 1.0
	case !hasFound:
		result.Score = 0.0
	default:
		result.Score = min(found/required, 1.0)
	}
	return result
}

// Years returns the largest number of years mentioned in s, capped at
// MaxYears. Mentions that read as calendar years ("Fiscal 2021 year-end",
// "2019 to 2023 years") are skipped.
func Years(s string) (float64, bool) {
	best, ok := 0.0, false
	for _, m := range yearsPattern.FindAllStringSubmatch(s, -1) {
		raw := m[1]
		if m[2] != "" {
			raw = m[2]
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v >= implausibleYears {
			continue
		}
		v = min(v, MaxYears)
		if !ok || v > best {
			best, ok = v, true
		}
	}
	return best, ok
}
