package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/govscout/govscout-api/internal/domain"
	"github.com/govscout/govscout-api/internal/infra/observability"
	"github.com/govscout/govscout-api/internal/port"
)

// maxDocumentBytes caps the text accepted for analysis. Larger documents are
// rejected up front instead of burning tokens on a truncated prompt.
const maxDocumentBytes = 200 * 1024

// Documents extracts structured facts from solicitation documents via the AI
// completion provider.
type Documents struct {
	store     port.DocumentStore
	completer port.Completer
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewDocuments creates the document analysis service.
func NewDocuments(store port.DocumentStore, completer port.Completer, metrics *observability.Metrics, logger *zap.Logger) *Documents {
	return &Documents{store: store, completer: completer, metrics: metrics, logger: logger}
}

// Analyze runs the AI analysis for one document and persists the result.
func (d *Documents) Analyze(ctx context.Context, profile *domain.Profile, name, text string) (*domain.DocumentAnalysis, error) {
	ctx, span := tracer.Start(ctx, "Documents.Analyze")
	defer span.End()

	start := time.Now()
	defer func() {
		d.metrics.RecordRequestDuration("documents", time.Since(start))
	}()

	if profile.CompanyID == nil {
		return nil, &domain.ErrForbidden{Action: "analyze documents without a company"}
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &domain.ErrValidation{Field: "documentName", Message: "must not be empty"}
	}
	if strings.TrimSpace(text) == "" {
		return nil, &domain.ErrValidation{Field: "text", Message: "must not be empty"}
	}
	if len(text) > maxDocumentBytes {
		return nil, &domain.ErrValidation{Field: "text", Message: "document too large"}
	}

	assessment, usage, err := d.completer.AnalyzeDocument(ctx, name, text)
	d.metrics.RecordTokens(usage.PromptTokens, usage.CompletionTokens)
	if err != nil {
		d.metrics.IncrAIRequest("error")
		d.metrics.IncrExternalError("anthropic")
		d.logger.Error("documents: analysis failed",
			zap.String("document_name", name),
			zap.Error(err),
		)
		return nil, err
	}
	d.metrics.IncrAIRequest("success")

	analysis := &domain.DocumentAnalysis{
		ID:           uuid.New().String(),
		CompanyID:    *profile.CompanyID,
		DocumentName: name,
		DocumentType: assessment.DocumentType,
		Summary:      assessment.Summary,
		Requirements: assessment.Requirements,
		Deadlines:    assessment.Deadlines,
		Risks:        assessment.Risks,
		CreatedAt:    time.Now().UTC(),
	}

	if err := d.store.CreateDocumentAnalysis(ctx, analysis); err != nil {
		d.metrics.IncrExternalError("supabase")
		return nil, err
	}

	return analysis, nil
}
