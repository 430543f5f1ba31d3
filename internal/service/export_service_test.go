package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optibuy/internal/model"
)

func completedRequest(t *testing.T) *model.PurchaseRequest {
	t.Helper()
	req := quotedRequest(t, 2)
	winner := req.Proposals[0].ID
	req.SelectedProposalID = &winner
	req.Status = model.StatusCompleted
	req.History = []model.RequestHistory{
		{RequestID: req.ID, Action: model.ActionCreated, UserName: "Ana", UserRole: model.RoleRequester},
		{RequestID: req.ID, Action: model.ActionApprovedQuote, UserName: "Bruno", UserRole: model.RoleBuyer},
		{RequestID: req.ID, Action: model.ActionPurchaseComplete, UserName: "Carla", UserRole: model.RoleBuyer},
	}
	return req
}

func TestBuildCompletedRowProjectsWinnerAndActors(t *testing.T) {
	req := completedRequest(t)
	delivery := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	req.Proposals[0].DeliveryDate = &delivery

	row := buildCompletedRow(req, "CC-01 - Operações")

	assert.Equal(t, req.ID, row.ID)
	assert.Equal(t, "CC-01 - Operações", row.CostCenter)
	assert.Equal(t, "Ana", row.CreatedBy)
	assert.Equal(t, "Bruno", row.QuoteApprovedBy)
	assert.Equal(t, "Carla", row.FinalizedBy)
	assert.Equal(t, model.StatusCompleted, row.Status)

	assert.Equal(t, "Fornecedor 1", row.WinningSupplier)
	assert.Equal(t, "85000.00", row.FinalPrice)
	assert.Equal(t, "BRL", row.Currency)
	assert.Equal(t, 15, row.DeliveryDays)
	require.NotNil(t, row.ExpectedDelivery)
	assert.Equal(t, delivery, *row.ExpectedDelivery)
}

func TestBuildCompletedRowDefaultsForMissingActors(t *testing.T) {
	req := completedRequest(t)
	req.History = nil

	row := buildCompletedRow(req, "")

	assert.Equal(t, "Desconhecido", row.CreatedBy)
	assert.Equal(t, "-", row.QuoteApprovedBy)
	assert.Equal(t, "-", row.FinalizedBy)
	assert.Equal(t, "", row.CostCenter)
}

func TestBuildCompletedRowWithoutSelectionLeavesWinnerEmpty(t *testing.T) {
	req := completedRequest(t)
	req.SelectedProposalID = nil

	row := buildCompletedRow(req, "CC-01 - Operações")

	assert.Empty(t, row.WinningSupplier)
	assert.Empty(t, row.FinalPrice)
	assert.Zero(t, row.DeliveryDays)
}

func TestFinalPriceUsesTwoDecimalPlaces(t *testing.T) {
	req := completedRequest(t)
	req.Proposals[0].Price = decimal.RequireFromString("1234.5")

	row := buildCompletedRow(req, "")
	assert.Equal(t, "1234.50", row.FinalPrice)
}

func TestCompletedRowIgnoresDanglingCostCenter(t *testing.T) {
	req := completedRequest(t)
	dangling := uuid.New()
	req.CostCenterID = &dangling

	// the caller resolves labels; an unknown id yields an empty label
	row := buildCompletedRow(req, "")
	assert.Equal(t, "", row.CostCenter)
}
