package service

import (
	"context"
	"strconv"
	"time"

	"crm_portal_backend/internal/dashboards/cache"
	"crm_portal_backend/internal/dashboards/repository"
	"crm_portal_backend/platform/apperr"
	"crm_portal_backend/platform/logger"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// periodDays is the comparison window for executive KPI deltas: the
// last 30 days against the 30 days before that.
const periodDays = 30

// bucketInvoiceLimit caps the lazy drill-down under an aging bucket.
const bucketInvoiceLimit = 100

// ExecutiveDashboard is the executive overview payload.
type ExecutiveDashboard struct {
	KPIs        []KPI  `json:"kpis"`
	GeneratedAt string `json:"generatedAt"`
}

// ReceivablesDashboard is the receivables overview payload. Bucket
// invoices load lazily through the drill-down endpoint.
type ReceivablesDashboard struct {
	OutstandingCents int64                      `json:"outstandingCents"`
	OverdueCents     int64                      `json:"overdueCents"`
	Buckets          []repository.BucketMetrics `json:"buckets"`
	GeneratedAt      string                     `json:"generatedAt"`
}

// BucketInvoicesResponse is the drill-down payload for one bucket.
type BucketInvoicesResponse struct {
	Bucket   string                      `json:"bucket"`
	Invoices []repository.InvoiceSummary `json:"invoices"`
}

// Service implements dashboard use cases.
type Service struct {
	repo  repository.Repository
	cache *cache.Cache
	log   *logger.Logger
	now   func() time.Time
}

// New creates a new dashboards service. The cache may be nil, which
// disables caching.
func New(repo repository.Repository, c *cache.Cache, log *logger.Logger) *Service {
	return &Service{repo: repo, cache: c, log: log, now: time.Now}
}

// Executive builds the executive dashboard: four KPI cards comparing
// the current 30-day window against the previous one. The queries run
// in parallel and the result is cached per tenant.
func (s *Service) Executive(ctx context.Context, tenantID uuid.UUID) (ExecutiveDashboard, error) {
	cacheKey := "dash:executive:" + tenantID.String()

	var cached ExecutiveDashboard
	if found, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
		s.log.Error("dashboard cache read", "key", cacheKey, "error", err)
	} else if found {
		return cached, nil
	}

	now := s.now()
	curFrom := now.AddDate(0, 0, -periodDays)
	prevFrom := now.AddDate(0, 0, -2*periodDays)

	var (
		curLeads, prevLeads             int
		curConversions, prevConversions int
		curRevenue, prevRevenue         int64
		openDeals                       int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		curLeads, err = s.repo.CountLeadsBetween(gctx, tenantID, curFrom, now)
		return err
	})
	g.Go(func() (err error) {
		prevLeads, err = s.repo.CountLeadsBetween(gctx, tenantID, prevFrom, curFrom)
		return err
	})
	g.Go(func() (err error) {
		curConversions, err = s.repo.CountConversionsBetween(gctx, tenantID, curFrom, now)
		return err
	})
	g.Go(func() (err error) {
		prevConversions, err = s.repo.CountConversionsBetween(gctx, tenantID, prevFrom, curFrom)
		return err
	})
	g.Go(func() (err error) {
		curRevenue, err = s.repo.RevenueCentsBetween(gctx, tenantID, curFrom, now)
		return err
	})
	g.Go(func() (err error) {
		prevRevenue, err = s.repo.RevenueCentsBetween(gctx, tenantID, prevFrom, curFrom)
		return err
	})
	g.Go(func() (err error) {
		openDeals, err = s.repo.CountOpenDeals(gctx, tenantID)
		return err
	})
	if err := g.Wait(); err != nil {
		return ExecutiveDashboard{}, err
	}

	dashboard := ExecutiveDashboard{
		KPIs: []KPI{
			{
				Label:    "New Leads",
				Value:    float64(curLeads),
				DeltaPct: DeltaPct(float64(curLeads), float64(prevLeads)),
				UpIsGood: true,
			},
			{
				Label:    "Conversions",
				Value:    float64(curConversions),
				DeltaPct: DeltaPct(float64(curConversions), float64(prevConversions)),
				UpIsGood: true,
			},
			{
				Label:    "Revenue",
				Value:    float64(curRevenue) / 100,
				DeltaPct: DeltaPct(float64(curRevenue), float64(prevRevenue)),
				UpIsGood: true,
			},
			{
				Label:    "Open Deals",
				Value:    float64(openDeals),
				UpIsGood: false,
			},
		},
		GeneratedAt: now.Format(time.RFC3339),
	}

	if err := s.cache.Set(ctx, cacheKey, dashboard); err != nil {
		s.log.Error("dashboard cache write", "key", cacheKey, "error", err)
	}

	return dashboard, nil
}

// Receivables builds the receivables dashboard. Totals and bucket
// aggregates fetch in parallel; the per-bucket invoice lists stay lazy.
func (s *Service) Receivables(ctx context.Context, tenantID uuid.UUID) (ReceivablesDashboard, error) {
	cacheKey := "dash:receivables:" + tenantID.String()

	var cached ReceivablesDashboard
	if found, err := s.cache.Get(ctx, cacheKey, &cached); err != nil {
		s.log.Error("dashboard cache read", "key", cacheKey, "error", err)
	} else if found {
		return cached, nil
	}

	var (
		outstanding, overdue int64
		buckets              []repository.BucketMetrics
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		outstanding, err = s.repo.OutstandingCents(gctx, tenantID)
		return err
	})
	g.Go(func() (err error) {
		overdue, err = s.repo.OverdueCents(gctx, tenantID)
		return err
	})
	g.Go(func() (err error) {
		buckets, err = s.repo.AgingBuckets(gctx, tenantID)
		return err
	})
	if err := g.Wait(); err != nil {
		return ReceivablesDashboard{}, err
	}

	dashboard := ReceivablesDashboard{
		OutstandingCents: outstanding,
		OverdueCents:     overdue,
		Buckets:          buckets,
		GeneratedAt:      s.now().Format(time.RFC3339),
	}

	if err := s.cache.Set(ctx, cacheKey, dashboard); err != nil {
		s.log.Error("dashboard cache write", "key", cacheKey, "error", err)
	}

	return dashboard, nil
}

// BucketInvoices loads the invoices behind one aging bucket on demand.
func (s *Service) BucketInvoices(ctx context.Context, tenantID uuid.UUID, bucket string) (BucketInvoicesResponse, error) {
	minDays, maxDays, err := bucketRange(bucket)
	if err != nil {
		return BucketInvoicesResponse{}, err
	}

	invoices, err := s.repo.ListBucketInvoices(ctx, tenantID, minDays, maxDays, bucketInvoiceLimit)
	if err != nil {
		return BucketInvoicesResponse{}, err
	}

	return BucketInvoicesResponse{Bucket: bucket, Invoices: invoices}, nil
}

// ExportReceivablesCSV renders the aging buckets as CSV rows.
func (s *Service) ExportReceivablesCSV(ctx context.Context, tenantID uuid.UUID) ([][]string, error) {
	buckets, err := s.repo.AgingBuckets(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(buckets)+1)
	rows = append(rows, []string{"Bucket", "Count", "Amount"})
	for _, b := range buckets {
		rows = append(rows, []string{
			b.Bucket,
			strconv.Itoa(b.Count),
			strconv.FormatFloat(float64(b.AmountCents)/100, 'f', 2, 64),
		})
	}
	return rows, nil
}

func bucketRange(bucket string) (int, *int, error) {
	intPtr := func(v int) *int { return &v }
	switch bucket {
	case "0-30":
		return 0, intPtr(30), nil
	case "31-60":
		return 31, intPtr(60), nil
	case "61-90":
		return 61, intPtr(90), nil
	case "90+":
		return 91, nil, nil
	default:
		return 0, nil, apperr.BadRequest("unknown aging bucket")
	}
}
