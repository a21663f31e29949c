package service

import (
	"context"
	"testing"
	"time"

	"crm_portal_backend/internal/dashboards/cache"
	"crm_portal_backend/internal/dashboards/repository"
	"crm_portal_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type fakeRepo struct {
	leadsCur, leadsPrev int
	convCur, convPrev   int
	revCur, revPrev     int64
	openDeals           int
	buckets             []repository.BucketMetrics
	calls               int
	pivot               time.Time
}

func (f *fakeRepo) CountLeadsBetween(_ context.Context, _ uuid.UUID, from, _ time.Time) (int, error) {
	f.calls++
	if from.Before(f.pivot) {
		return f.leadsPrev, nil
	}
	return f.leadsCur, nil
}

func (f *fakeRepo) CountConversionsBetween(_ context.Context, _ uuid.UUID, from, _ time.Time) (int, error) {
	if from.Before(f.pivot) {
		return f.convPrev, nil
	}
	return f.convCur, nil
}

func (f *fakeRepo) RevenueCentsBetween(_ context.Context, _ uuid.UUID, from, _ time.Time) (int64, error) {
	if from.Before(f.pivot) {
		return f.revPrev, nil
	}
	return f.revCur, nil
}

func (f *fakeRepo) CountOpenDeals(_ context.Context, _ uuid.UUID) (int, error) {
	return f.openDeals, nil
}

func (f *fakeRepo) OutstandingCents(_ context.Context, _ uuid.UUID) (int64, error) { return 0, nil }
func (f *fakeRepo) OverdueCents(_ context.Context, _ uuid.UUID) (int64, error)     { return 0, nil }

func (f *fakeRepo) AgingBuckets(_ context.Context, _ uuid.UUID) ([]repository.BucketMetrics, error) {
	return f.buckets, nil
}

func (f *fakeRepo) ListBucketInvoices(_ context.Context, _ uuid.UUID, _ int, _ *int, _ int) ([]repository.InvoiceSummary, error) {
	return nil, nil
}

func newTestService(t *testing.T, repo repository.Repository) *Service {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := cache.NewWithClient(client, time.Minute)
	svc := New(repo, c, logger.New("test"))
	return svc
}

func TestExecutiveComputesDeltas(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	repo := &fakeRepo{
		leadsCur: 150, leadsPrev: 100,
		convCur: 20, convPrev: 0,
		revCur: 500000, revPrev: 400000,
		openDeals: 7,
		pivot:     now.AddDate(0, 0, -periodDays),
	}
	svc := newTestService(t, repo)
	svc.now = func() time.Time { return now }

	dash, err := svc.Executive(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Executive returned error: %v", err)
	}

	if len(dash.KPIs) != 4 {
		t.Fatalf("got %d KPIs, want 4", len(dash.KPIs))
	}
	if dash.KPIs[0].DeltaPct != 50 {
		t.Errorf("leads delta = %v, want 50", dash.KPIs[0].DeltaPct)
	}
	// previous period had no conversions: delta is defined as zero.
	if dash.KPIs[1].DeltaPct != 0 {
		t.Errorf("conversions delta = %v, want 0 when previous is zero", dash.KPIs[1].DeltaPct)
	}
	if dash.KPIs[2].Value != 5000 {
		t.Errorf("revenue value = %v, want 5000", dash.KPIs[2].Value)
	}
	if dash.KPIs[2].DeltaPct != 25 {
		t.Errorf("revenue delta = %v, want 25", dash.KPIs[2].DeltaPct)
	}
	if dash.KPIs[3].Value != 7 {
		t.Errorf("open deals = %v, want 7", dash.KPIs[3].Value)
	}
}

func TestExecutiveServesSecondCallFromCache(t *testing.T) {
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	repo := &fakeRepo{leadsCur: 10, pivot: now.AddDate(0, 0, -periodDays)}
	svc := newTestService(t, repo)
	svc.now = func() time.Time { return now }

	tenantID := uuid.New()
	if _, err := svc.Executive(context.Background(), tenantID); err != nil {
		t.Fatalf("first call: %v", err)
	}
	callsAfterFirst := repo.calls

	if _, err := svc.Executive(context.Background(), tenantID); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if repo.calls != callsAfterFirst {
		t.Fatalf("second call hit the repository (%d -> %d calls)", callsAfterFirst, repo.calls)
	}
}

func TestReceivablesRendersAllBuckets(t *testing.T) {
	repo := &fakeRepo{
		buckets: []repository.BucketMetrics{
			{Bucket: "0-30", Count: 3, AmountCents: 120000},
			{Bucket: "31-60"},
			{Bucket: "61-90", Count: 1, AmountCents: 9900},
			{Bucket: "90+"},
		},
	}
	svc := newTestService(t, repo)

	dash, err := svc.Receivables(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("Receivables returned error: %v", err)
	}
	if len(dash.Buckets) != 4 {
		t.Fatalf("got %d buckets, want 4", len(dash.Buckets))
	}
}

func TestBucketInvoicesRejectsUnknownBucket(t *testing.T) {
	svc := newTestService(t, &fakeRepo{})

	if _, err := svc.BucketInvoices(context.Background(), uuid.New(), "100+"); err == nil {
		t.Fatal("expected error for unknown bucket")
	}
}

func TestExportReceivablesCSV(t *testing.T) {
	repo := &fakeRepo{
		buckets: []repository.BucketMetrics{
			{Bucket: "0-30", Count: 2, AmountCents: 150050},
		},
	}
	svc := newTestService(t, repo)

	rows, err := svc.ExportReceivablesCSV(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("ExportReceivablesCSV returned error: %v", err)
	}
	if rows[0][0] != "Bucket" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][2] != "1500.50" {
		t.Errorf("amount = %q, want 1500.50", rows[1][2])
	}
}
