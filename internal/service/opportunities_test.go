package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/govscout/govscout-api/internal/domain"
	"github.com/govscout/govscout-api/internal/infra/cache"
	"github.com/govscout/govscout-api/internal/infra/observability"
	"github.com/govscout/govscout-api/internal/service"
)

type mockSearcher struct {
	results []domain.OpportunitySummary
	err     error
	calls   int
	lastQ   domain.OpportunitySearchQuery
}

func (m *mockSearcher) Search(_ context.Context, q domain.OpportunitySearchQuery) ([]domain.OpportunitySummary, error) {
	m.calls++
	m.lastQ = q
	return m.results, m.err
}

func newOpportunitiesService(searcher *mockSearcher) *service.Opportunities {
	return service.NewOpportunities(
		searcher,
		cache.New[[]domain.OpportunitySummary](5*time.Minute),
		observability.NewMetrics(),
		zap.NewNop(),
	)
}

func TestSearch_DefaultsDateWindow(t *testing.T) {
	searcher := &mockSearcher{results: []domain.OpportunitySummary{}}
	svc := newOpportunitiesService(searcher)

	_, err := svc.Search(context.Background(), domain.OpportunitySearchQuery{Keywords: "cloud"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if searcher.lastQ.PostedFrom == "" || searcher.lastQ.PostedTo == "" {
		t.Error("expected defaulted posted-date window")
	}
	if _, err := time.Parse("01/02/2006", searcher.lastQ.PostedFrom); err != nil {
		t.Errorf("postedFrom not in SAM format: %s", searcher.lastQ.PostedFrom)
	}
}

func TestSearch_RejectsBadDates(t *testing.T) {
	searcher := &mockSearcher{}
	svc := newOpportunitiesService(searcher)

	_, err := svc.Search(context.Background(), domain.OpportunitySearchQuery{
		PostedFrom: "2025-05-01",
		PostedTo:   "06/30/2025",
	})
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}

	var vErr *domain.ErrValidation
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ErrValidation, got %T: %v", err, err)
	}
	if searcher.calls != 0 {
		t.Errorf("rejected query must not reach the searcher, got %d calls", searcher.calls)
	}
}

func TestSearch_CachesPerQuery(t *testing.T) {
	searcher := &mockSearcher{results: []domain.OpportunitySummary{{NoticeID: "abc"}}}
	svc := newOpportunitiesService(searcher)

	q := domain.OpportunitySearchQuery{
		Keywords:   "cloud",
		PostedFrom: "05/01/2025",
		PostedTo:   "06/30/2025",
	}

	for i := 0; i < 3; i++ {
		results, err := svc.Search(context.Background(), q)
		if err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
		if len(results) != 1 {
			t.Fatalf("call %d: expected 1 result, got %d", i, len(results))
		}
	}
	if searcher.calls != 1 {
		t.Errorf("expected 1 upstream call, got %d", searcher.calls)
	}

	// A different query must miss the cache.
	q.Keywords = "construction"
	if _, err := svc.Search(context.Background(), q); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if searcher.calls != 2 {
		t.Errorf("expected 2 upstream calls, got %d", searcher.calls)
	}
}

func TestSearch_UpstreamFailureNotCached(t *testing.T) {
	searcher := &mockSearcher{err: errors.New("rate limited")}
	svc := newOpportunitiesService(searcher)

	q := domain.OpportunitySearchQuery{
		Keywords:   "cloud",
		PostedFrom: "05/01/2025",
		PostedTo:   "06/30/2025",
	}

	if _, err := svc.Search(context.Background(), q); err == nil {
		t.Fatal("expected error, got nil")
	}

	searcher.err = nil
	searcher.results = []domain.OpportunitySummary{{NoticeID: "abc"}}
	results, err := svc.Search(context.Background(), q)
	if err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	if len(results) != 1 {
		t.Errorf("expected fresh results after failure, got %d", len(results))
	}
}
