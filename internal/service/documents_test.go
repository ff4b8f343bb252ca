package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/govscout/govscout-api/internal/domain"
	"github.com/govscout/govscout-api/internal/infra/observability"
	"github.com/govscout/govscout-api/internal/service"
)

type mockDocumentStore struct {
	created []*domain.DocumentAnalysis
	err     error
}

func (m *mockDocumentStore) CreateDocumentAnalysis(_ context.Context, analysis *domain.DocumentAnalysis) error {
	m.created = append(m.created, analysis)
	return m.err
}

func newDocumentsService(store *mockDocumentStore, completer *mockCompleter) *service.Documents {
	return service.NewDocuments(store, completer, observability.NewMetrics(), zap.NewNop())
}

func TestAnalyze_Success(t *testing.T) {
	store := &mockDocumentStore{}
	completer := &mockCompleter{
		document: &domain.DocumentAssessment{
			DocumentType: "RFP",
			Summary:      "Cloud migration services for DISA.",
			Requirements: []string{"FedRAMP High authorization"},
			Deadlines:    []string{"Questions due 2025-06-15"},
			Risks:        []string{"aggressive transition timeline"},
		},
	}
	svc := newDocumentsService(store, completer)

	analysis, err := svc.Analyze(context.Background(), readyProfile(), "rfp-cloud.pdf", "SECTION A ...")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if analysis.DocumentType != "RFP" {
		t.Errorf("expected type RFP, got %s", analysis.DocumentType)
	}
	if analysis.CompanyID != "co-1" {
		t.Errorf("expected company co-1, got %s", analysis.CompanyID)
	}
	if len(store.created) != 1 {
		t.Fatalf("expected 1 persisted analysis, got %d", len(store.created))
	}
}

func TestAnalyze_Validation(t *testing.T) {
	tests := []struct {
		name     string
		docName  string
		text     string
	}{
		{"empty name", "", "some text"},
		{"empty text", "doc.pdf", "   "},
		{"oversized text", "doc.pdf", strings.Repeat("a", 200*1024+1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockDocumentStore{}
			completer := &mockCompleter{}
			svc := newDocumentsService(store, completer)

			_, err := svc.Analyze(context.Background(), readyProfile(), tt.docName, tt.text)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}

			var vErr *domain.ErrValidation
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ErrValidation, got %T: %v", err, err)
			}
			if completer.calls != 0 {
				t.Errorf("rejected input must not reach the AI, got %d calls", completer.calls)
			}
		})
	}
}

func TestAnalyze_NoCompanyForbidden(t *testing.T) {
	svc := newDocumentsService(&mockDocumentStore{}, &mockCompleter{})

	_, err := svc.Analyze(context.Background(), &domain.Profile{ID: "user-1"}, "doc.pdf", "text")
	if err == nil {
		t.Fatal("expected error, got nil")
	}

	var fErr *domain.ErrForbidden
	if !errors.As(err, &fErr) {
		t.Fatalf("expected ErrForbidden, got %T", err)
	}
}
