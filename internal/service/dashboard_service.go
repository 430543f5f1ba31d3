package service

import (
	"context"
	"fmt"

	"optibuy/internal/model"
	"optibuy/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardResponse summarizes the workflow: how many requests sit in each
// status and the estimated spend across open quotations.
type DashboardResponse struct {
	Requested int64 `json:"requested"`
	Quoted    int64 `json:"quoted"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
	// EstimatedValue sums the cheapest offer of every request that has
	// proposals — the best case if every open quotation closed at its
	// lowest price.
	EstimatedValue decimal.Decimal `json:"estimated_value"`
}

type DashboardService interface {
	GetDashboard(ctx context.Context) (*DashboardResponse, error)
}

type dashboardService struct {
	db   *gorm.DB
	repo repository.RequestRepository
}

func NewDashboardService(db *gorm.DB, repo repository.RequestRepository) DashboardService {
	return &dashboardService{db: db, repo: repo}
}

func (s *dashboardService) GetDashboard(ctx context.Context) (*DashboardResponse, error) {
	type statusCount struct {
		Status string
		Count  int64
	}

	var counts []statusCount
	if err := s.db.WithContext(ctx).
		Model(&model.PurchaseRequest{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&counts).Error; err != nil {
		return nil, fmt.Errorf("failed to count requests: %w", err)
	}

	resp := &DashboardResponse{EstimatedValue: decimal.Zero}
	for _, c := range counts {
		switch c.Status {
		case model.StatusRequested:
			resp.Requested = c.Count
		case model.StatusQuoted:
			resp.Quoted = c.Count
		case model.StatusCompleted:
			resp.Completed = c.Count
		case model.StatusCancelled:
			resp.Cancelled = c.Count
		}
	}

	requests, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range requests {
		resp.EstimatedValue = resp.EstimatedValue.Add(requests[i].LowestPrice())
	}

	return resp, nil
}
