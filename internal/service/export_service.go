package service

import (
	"context"
	"time"

	"optibuy/internal/model"
	"optibuy/internal/repository"

	"github.com/google/uuid"
)

// CompletedRow is one line of the completed-purchases report: the flat
// projection handed to spreadsheet export on the client side.
type CompletedRow struct {
	ID               uuid.UUID  `json:"id"`
	RequestedAt      time.Time  `json:"requested_at"`
	Title            string     `json:"title"`
	CostCenter       string     `json:"cost_center"` // "CODE - Name", or "" when the center was deleted
	CreatedBy        string     `json:"created_by"`
	Status           string     `json:"status"`
	WinningSupplier  string     `json:"winning_supplier"`
	FinalPrice       string     `json:"final_price"`
	Currency         string     `json:"currency"`
	ExpectedDelivery *time.Time `json:"expected_delivery,omitempty"`
	DeliveryDays     int        `json:"delivery_days"`
	QuoteApprovedBy  string     `json:"quote_approved_by"`
	FinalizedBy      string     `json:"finalized_by"`
}

// ExportService builds the completed-purchases report.
type ExportService interface {
	CompletedRows(ctx context.Context) ([]CompletedRow, error)
}

type exportService struct {
	repo   repository.RequestRepository
	ccRepo repository.CostCenterRepository
}

func NewExportService(repo repository.RequestRepository, ccRepo repository.CostCenterRepository) ExportService {
	return &exportService{repo: repo, ccRepo: ccRepo}
}

func (s *exportService) CompletedRows(ctx context.Context) ([]CompletedRow, error) {
	requests, err := s.repo.ListByStatus(ctx, model.StatusCompleted)
	if err != nil {
		return nil, err
	}

	centers, err := s.ccRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	labels := make(map[uuid.UUID]string, len(centers))
	for _, cc := range centers {
		labels[cc.ID] = cc.Label()
	}

	rows := make([]CompletedRow, 0, len(requests))
	for i := range requests {
		req := &requests[i]
		label := ""
		if req.CostCenterID != nil {
			label = labels[*req.CostCenterID]
		}
		rows = append(rows, buildCompletedRow(req, label))
	}
	return rows, nil
}

// buildCompletedRow projects one completed request. Missing actors fall back
// to the report's historical placeholders: "Desconhecido" for the creator,
// "-" for approver and finalizer.
func buildCompletedRow(req *model.PurchaseRequest, costCenterLabel string) CompletedRow {
	row := CompletedRow{
		ID:              req.ID,
		RequestedAt:     req.CreatedAt,
		Title:           req.Title,
		CostCenter:      costCenterLabel,
		CreatedBy:       actorOrDefault(req.HistoryActor(model.ActionCreated), "Desconhecido"),
		Status:          req.Status,
		QuoteApprovedBy: actorOrDefault(req.HistoryActor(model.ActionApprovedQuote), "-"),
		FinalizedBy:     actorOrDefault(req.HistoryActor(model.ActionPurchaseComplete), "-"),
	}

	if winner := req.SelectedProposal(); winner != nil {
		row.WinningSupplier = winner.SupplierName
		row.FinalPrice = winner.Price.StringFixed(2)
		row.Currency = winner.Currency
		row.ExpectedDelivery = winner.DeliveryDate
		row.DeliveryDays = winner.DeliveryDays
	}

	return row
}

func actorOrDefault(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
