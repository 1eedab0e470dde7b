// Package pipeline runs one resume/job description evaluation end to end.
package pipeline

import (
	"context"
	stderrors "errors"
	"time"

	"resumefit/internal/errors"
	"resumefit/internal/experience"
	"resumefit/internal/scoring"
	"resumefit/internal/similarity"
	"resumefit/internal/skills"
	"resumefit/internal/text"
	"resumefit/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/errgroup"
)

// Observer receives the outcome of every evaluation.
type Observer interface {
	RecordEvaluation(ctx context.Context, duration time.Duration, result *types.FitResult, err error)
}

// Pipeline wires the three scoring signals to the synthesizer. It keeps no
// per-request state and is safe for concurrent use.
type Pipeline struct {
	extractor   *skills.Extractor
	engine      *similarity.Engine
	aligner     *experience.Aligner
	synthesizer *scoring.Synthesizer
	observer    Observer
	logger      *errors.Logger
}

// New assembles a pipeline.
func New(extractor *skills.Extractor, engine *similarity.Engine, aligner *experience.Aligner, synthesizer *scoring.Synthesizer, logger *errors.Logger) *Pipeline {
	if logger == nil {
		logger = errors.NewNopLogger()
	}
	return &Pipeline{
		extractor:   extractor,
		engine:      engine,
		aligner:     aligner,
		synthesizer: synthesizer,
		logger:      logger,
	}
}

// WithObserver sets the evaluation observer and returns p.
func (p *Pipeline) WithObserver(o Observer) *Pipeline {
	p.observer = o
	return p
}

// Evaluate scores resumeText against jdText. Input problems are reported as
// validation errors before anything is embedded; any later failure aborts the
// whole evaluation.
func (p *Pipeline) Evaluate(ctx context.Context, resumeText, jdText string) (types.FitResult, error) {
	start := time.Now()
	ctx, span := otel.Tracer("resumefit.pipeline").Start(ctx, "pipeline.evaluate")
	defer span.End()
	span.SetAttributes(
		attribute.Int("input.resume_length", len(resumeText)),
		attribute.Int("input.jd_length", len(jdText)),
	)

	result, err := p.evaluate(ctx, resumeText, jdText)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "evaluation failed")
		if errors.IsInputError(err) {
			p.logger.Debug("Evaluation rejected input", "error", err.Error())
		} else {
			p.logger.LogError(err, "Evaluation failed")
		}
	} else {
		span.SetAttributes(attribute.Float64("result.fit_score", result.FitScore))
	}

	if p.observer != nil {
		var res *types.FitResult
		if err == nil {
			res = &result
		}
		p.observer.RecordEvaluation(ctx, time.Since(start), res, err)
	}
	return result, err
}

func (p *Pipeline) evaluate(ctx context.Context, resumeText, jdText string) (types.FitResult, error) {
	resume, err := text.Normalize("resume", resumeText)
	if err != nil {
		return types.FitResult{}, err
	}
	jd, err := text.Normalize("job_description", jdText)
	if err != nil {
		return types.FitResult{}, err
	}
	if resume.Empty() {
		return types.FitResult{}, errors.NewInsufficientTextError("resume")
	}
	if jd.Empty() {
		return types.FitResult{}, errors.NewInsufficientTextError("job_description")
	}

	var (
		skillResult types.SkillMatchResult
		simResult   types.SimilarityResult
		expResult   types.ExperienceResult
	)

	g, gctx := errgroup.WithContext(ctx)
	tracer := otel.Tracer("resumefit.pipeline")

	g.Go(func() error {
		_, span := tracer.Start(gctx, "pipeline.skills")
		defer span.End()
		skillResult = p.extractor.Match(resume, jd)
		span.SetAttributes(
			attribute.Int("skills.matched", len(skillResult.Matched)),
			attribute.Int("skills.missing", len(skillResult.Missing)),
		)
		return nil
	})

	g.Go(func() error {
		var err error
		simResult, err = p.engine.Score(gctx, resume, jd)
		return err
	})

	g.Go(func() error {
		_, span := tracer.Start(gctx, "pipeline.experience")
		defer span.End()
		expResult = p.aligner.Align(resume.Raw, jd.Raw)
		span.SetAttributes(attribute.Float64("experience.score", expResult.Score))
		return nil
	})

	if err := g.Wait(); err != nil {
		var appErr *errors.AppError
		if !stderrors.As(err, &appErr) {
			err = errors.NewInternalError(errors.ErrCodeInternal, "evaluation failed", err)
		}
		return types.FitResult{}, err
	}

	_, span := tracer.Start(ctx, "pipeline.synthesize")
	result := p.synthesizer.Synthesize(skillResult, simResult, expResult)
	span.End()

	p.logger.Debug("Evaluation completed",
		"fit_score", result.FitScore,
		"semantic", result.SemanticSimilarityScore,
		"matched", len(result.MatchedSkills),
		"missing", len(result.MissingSkills),
		"experience", result.ExperienceMatchScore)
	return result, nil
}
