package service

import (
	"context"

	"crm_portal_backend/internal/reports/repository"
	"crm_portal_backend/platform/apperr"
	"crm_portal_backend/platform/logger"

	"github.com/google/uuid"
)

const (
	// drilldownFetchCap bounds the records pulled for a stage.
	drilldownFetchCap = 200
	// drilldownDisplayCap bounds how many records the panel shows.
	drilldownDisplayCap = 20
	// topBreakdownN bounds the per-stage source/owner breakdown rows.
	topBreakdownN = 5
)

// FunnelResponse is the funnel report payload.
type FunnelResponse struct {
	Stages []FunnelStage `json:"stages"`
}

// DrilldownResponse lists the records behind one funnel segment.
type DrilldownResponse struct {
	Stage     string              `json:"stage"`
	Total     int                 `json:"total"`
	Truncated bool                `json:"truncated"`
	Records   []repository.Record `json:"records"`
}

// Service implements the reports use cases.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new reports service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// GetFunnel builds the lifecycle funnel for the tenant.
func (s *Service) GetFunnel(ctx context.Context, tenantID uuid.UUID) (FunnelResponse, error) {
	metrics, err := s.collectMetrics(ctx, tenantID)
	if err != nil {
		return FunnelResponse{}, err
	}
	breakdowns, err := s.collectBreakdowns(ctx, tenantID)
	if err != nil {
		return FunnelResponse{}, err
	}
	return FunnelResponse{Stages: BuildFunnel(metrics, breakdowns)}, nil
}

// Drilldown lists the records behind one funnel stage. Lead stages read
// the lead table, later stages the contact table. The fetch is capped
// and the display list truncated so a huge stage cannot flood the panel.
func (s *Service) Drilldown(ctx context.Context, tenantID uuid.UUID, stage string) (DrilldownResponse, error) {
	if !validStage(stage) {
		return DrilldownResponse{}, apperr.BadRequest("unknown funnel stage")
	}

	var records []repository.Record
	var err error
	if leadStages[stage] {
		records, err = s.repo.ListLeadRecords(ctx, tenantID, stage, drilldownFetchCap)
	} else {
		records, err = s.repo.ListContactRecords(ctx, tenantID, stage, drilldownFetchCap)
	}
	if err != nil {
		return DrilldownResponse{}, err
	}

	total := len(records)
	truncated := total > drilldownDisplayCap
	if truncated {
		records = records[:drilldownDisplayCap]
	}

	return DrilldownResponse{Stage: stage, Total: total, Truncated: truncated, Records: records}, nil
}

// ExportFunnelCSV renders the funnel as CSV rows for download.
func (s *Service) ExportFunnelCSV(ctx context.Context, tenantID uuid.UUID) ([][]string, error) {
	metrics, err := s.collectMetrics(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	return funnelCSVRows(BuildFunnel(metrics, nil)), nil
}

func (s *Service) collectMetrics(ctx context.Context, tenantID uuid.UUID) (map[string]repository.StageMetrics, error) {
	leadMetrics, err := s.repo.LeadStageMetrics(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	contactMetrics, err := s.repo.ContactStageMetrics(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]repository.StageMetrics, len(leadMetrics)+len(contactMetrics))
	for stage, m := range leadMetrics {
		merged[stage] = m
	}
	for stage, m := range contactMetrics {
		merged[stage] = m
	}
	return merged, nil
}

func (s *Service) collectBreakdowns(ctx context.Context, tenantID uuid.UUID) (map[string]repository.StageBreakdowns, error) {
	leadBreakdowns, err := s.repo.LeadStageBreakdowns(ctx, tenantID, topBreakdownN)
	if err != nil {
		return nil, err
	}
	contactBreakdowns, err := s.repo.ContactStageBreakdowns(ctx, tenantID, topBreakdownN)
	if err != nil {
		return nil, err
	}

	merged := make(map[string]repository.StageBreakdowns, len(leadBreakdowns)+len(contactBreakdowns))
	for stage, b := range leadBreakdowns {
		merged[stage] = b
	}
	for stage, b := range contactBreakdowns {
		merged[stage] = b
	}
	return merged, nil
}

func validStage(stage string) bool {
	for _, s := range stageOrder {
		if s == stage {
			return true
		}
	}
	return false
}
