package handler

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/govscout/govscout-api/internal/service"
)

// ============================================================
// Profile scoring — POST /v1/score
// ============================================================

func scoreHandler(svc *service.Scoring, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/score")
		defer span.End()

		profile := ProfileFromContext(ctx)

		score, err := svc.ScoreProfile(ctx, profile)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeSuccess(w, http.StatusOK, score)
	}
}

// ============================================================
// Document analysis — POST /v1/documents/analyze
// ============================================================

func analyzeDocumentHandler(svc *service.Documents, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, span := tracer.Start(r.Context(), "POST /v1/documents/analyze")
		defer span.End()

		profile := ProfileFromContext(ctx)

		var req struct {
			DocumentName string `json:"documentName"`
			Text         string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "validation_error", "invalid request body")
			return
		}

		analysis, err := svc.Analyze(ctx, profile, req.DocumentName, req.Text)
		if err != nil {
			handleServiceError(w, err, logger)
			return
		}

		writeSuccess(w, http.StatusOK, analysis)
	}
}
