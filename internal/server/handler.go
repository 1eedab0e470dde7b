package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"

	"resumefit/internal/errors"
	"resumefit/internal/types"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// evaluateHandler scores the posted resume against the posted job description.
func (s *Server) evaluateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeErrorResponse(w, r, http.StatusMethodNotAllowed, "Method not allowed", "use POST", "METHOD_NOT_ALLOWED")
		return
	}

	ctx, span := s.Observability.Tracer("resumefit.api").Start(r.Context(), "api.evaluate")
	defer span.End()

	var req types.EvaluateInput
	if err := parseJSONRequest(r, &req); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", "validation"))
		var tooLarge *requestTooLargeError
		if stderrors.As(err, &tooLarge) {
			writeErrorResponse(w, r, http.StatusRequestEntityTooLarge, "Request body too large", err.Error(), "REQUEST_TOO_LARGE")
			return
		}
		writeErrorResponse(w, r, http.StatusBadRequest, "Invalid request body", err.Error(), errors.ErrCodeInvalidRequest)
		return
	}

	span.SetAttributes(
		attribute.Int("request.resume_length", len(req.ResumeText)),
		attribute.Int("request.jd_length", len(req.JobDescription)),
	)

	result, err := s.Evaluator.Evaluate(ctx, req.ResumeText, req.JobDescription)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "evaluation failed")
		s.writeEvaluationError(w, r, err)
		return
	}

	span.SetAttributes(
		attribute.Float64("response.fit_score", result.FitScore),
		attribute.Int("response.matched_skills", len(result.MatchedSkills)),
		attribute.Int("response.missing_skills", len(result.MissingSkills)),
	)

	s.Logger.Info("Evaluation served",
		"request_id", requestIDFrom(r.Context()),
		"fit_score", result.FitScore)
	writeJSON(w, http.StatusOK, result)
}

// writeEvaluationError maps pipeline errors onto HTTP statuses. Input
// errors carry their message; everything else is reported opaquely.
func (s *Server) writeEvaluationError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *errors.AppError
	switch {
	case errors.IsEmptyInput(err):
		stderrors.As(err, &appErr)
		writeErrorResponse(w, r, http.StatusBadRequest, "Empty input", appErr.Message, appErr.Code)
	case errors.IsInsufficientText(err):
		stderrors.As(err, &appErr)
		writeErrorResponse(w, r, http.StatusUnprocessableEntity, "Insufficient text", appErr.Message, appErr.Code)
	case stderrors.Is(err, context.Canceled), stderrors.Is(err, context.DeadlineExceeded):
		s.Logger.Info("Evaluation abandoned", "request_id", requestIDFrom(r.Context()), "error", err.Error())
		writeErrorResponse(w, r, http.StatusServiceUnavailable, "Evaluation cancelled", "request did not complete in time", "REQUEST_CANCELLED")
	default:
		s.Logger.LogError(err, "Evaluation failed", "request_id", requestIDFrom(r.Context()))
		writeErrorResponse(w, r, http.StatusInternalServerError, "Internal error", "evaluation failed", errors.ErrCodeInternal)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
