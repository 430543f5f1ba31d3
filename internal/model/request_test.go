package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optibuy/pkg/apperr"
)

func testActor() Actor {
	return Actor{ID: uuid.New(), Name: "Ana Silva", Role: RoleBuyer}
}

func newQuotedRequest(t *testing.T) *PurchaseRequest {
	t.Helper()
	req := &PurchaseRequest{
		ID:               uuid.New(),
		Title:            "Notebooks",
		RequiredQuantity: 10,
		Unit:             "Unidade",
		Purpose:          PurposeConsumption,
		Status:           StatusRequested,
	}
	req.appendHistory(ActionCreated, testActor(), time.Now())
	_, err := req.Approve(testActor(), time.Now())
	require.NoError(t, err)
	return req
}

func newProposal(price int64, days int) Proposal {
	return Proposal{
		ID:           uuid.New(),
		SupplierName: "TechSolutions Ltda",
		Price:        decimal.NewFromInt(price),
		Currency:     "BRL",
		DeliveryDays: days,
		PaymentTerms: "30 days",
		ValidityDate: time.Now().AddDate(0, 1, 0),
	}
}

func TestApproveTransitions(t *testing.T) {
	req := &PurchaseRequest{ID: uuid.New(), Status: StatusRequested}
	entry, err := req.Approve(testActor(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, StatusQuoted, req.Status)
	assert.Equal(t, ActionApprovedQuote, entry.Action)
	assert.Len(t, req.History, 1)

	// A quoted request cannot be approved again
	_, err = req.Approve(testActor(), time.Now())
	require.Error(t, err)
	assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err))
	assert.Equal(t, StatusQuoted, req.Status)
	assert.Len(t, req.History, 1)
}

func TestNoTransitionLeavesTerminalStates(t *testing.T) {
	for _, status := range []string{StatusCompleted, StatusCancelled} {
		req := &PurchaseRequest{ID: uuid.New(), Status: status}

		_, err := req.Approve(testActor(), time.Now())
		assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err))
		_, err = req.Finalize(testActor(), time.Now())
		assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err))
		_, err = req.Cancel(testActor(), time.Now())
		assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err))

		assert.Equal(t, status, req.Status)
		assert.Empty(t, req.History)
	}
}

func TestFinalizeRequiresSelectedProposal(t *testing.T) {
	req := newQuotedRequest(t)
	p1 := newProposal(85000, 10)
	p2 := newProposal(92000, 5)
	require.NoError(t, req.AddProposal(p1))
	require.NoError(t, req.AddProposal(p2))

	_, err := req.Finalize(testActor(), time.Now())
	require.Error(t, err)
	assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err))
	assert.Equal(t, StatusQuoted, req.Status)
	assert.Len(t, req.History, 2)

	require.NoError(t, req.SelectProposal(p1.ID))
	entry, err := req.Finalize(testActor(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, req.Status)
	assert.Equal(t, ActionPurchaseComplete, entry.Action)
	assert.Equal(t, p1.ID, *req.SelectedProposalID)
	assert.Len(t, req.History, 3)
}

func TestCancelFromRequestedAndQuoted(t *testing.T) {
	requested := &PurchaseRequest{ID: uuid.New(), Status: StatusRequested}
	entry, err := requested.Cancel(testActor(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, requested.Status)
	assert.Equal(t, ActionCancelledLabel, entry.Action)

	quoted := newQuotedRequest(t)
	_, err = quoted.Cancel(testActor(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, quoted.Status)
}

func TestAddProposalOnlyWhileQuoted(t *testing.T) {
	req := &PurchaseRequest{ID: uuid.New(), Status: StatusRequested}
	err := req.AddProposal(newProposal(1000, 3))
	require.Error(t, err)
	assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err))
	assert.Empty(t, req.Proposals)
}

func TestSelectProposalRejectsForeignID(t *testing.T) {
	req := newQuotedRequest(t)
	p1 := newProposal(85000, 10)
	require.NoError(t, req.AddProposal(p1))
	require.NoError(t, req.SelectProposal(p1.ID))

	err := req.SelectProposal(uuid.New())
	require.Error(t, err)
	assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err))
	// Selection stays on the previous winner
	assert.Equal(t, p1.ID, *req.SelectedProposalID)
}

func TestReplaceProposalIsIdempotentOnUnchangedPayload(t *testing.T) {
	req := newQuotedRequest(t)
	p1 := newProposal(85000, 10)
	p2 := newProposal(92000, 5)
	require.NoError(t, req.AddProposal(p1))
	require.NoError(t, req.AddProposal(p2))

	before := make([]Proposal, len(req.Proposals))
	copy(before, req.Proposals)

	require.NoError(t, req.ReplaceProposal(req.Proposals[0]))
	assert.Equal(t, before, req.Proposals)
}

func TestReplaceProposalKeepsSelection(t *testing.T) {
	req := newQuotedRequest(t)
	p1 := newProposal(85000, 10)
	require.NoError(t, req.AddProposal(p1))
	require.NoError(t, req.SelectProposal(p1.ID))

	edited := p1
	edited.Price = decimal.NewFromInt(80000)
	require.NoError(t, req.ReplaceProposal(edited))

	assert.Equal(t, p1.ID, *req.SelectedProposalID)
	assert.True(t, req.Proposals[0].Price.Equal(decimal.NewFromInt(80000)))
}

func TestReplaceProposalUnknownIDIsNoOp(t *testing.T) {
	req := newQuotedRequest(t)
	require.NoError(t, req.AddProposal(newProposal(85000, 10)))

	ghost := newProposal(1, 1)
	err := req.ReplaceProposal(ghost)
	require.Error(t, err)
	assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err))
	assert.Len(t, req.Proposals, 1)
	assert.True(t, req.Proposals[0].Price.Equal(decimal.NewFromInt(85000)))
}

func TestDerivedReads(t *testing.T) {
	req := newQuotedRequest(t)
	assert.True(t, req.LowestPrice().IsZero())
	assert.Equal(t, 0, req.ShortestDelivery())

	require.NoError(t, req.AddProposal(newProposal(92000, 5)))
	require.NoError(t, req.AddProposal(newProposal(85000, 10)))

	assert.True(t, req.LowestPrice().Equal(decimal.NewFromInt(85000)))
	assert.Equal(t, 5, req.ShortestDelivery())
}

func TestFullLifecycle(t *testing.T) {
	actor := testActor()
	req := &PurchaseRequest{
		ID:               uuid.New(),
		Title:            "Cadeiras ergonômicas",
		RequiredQuantity: 10,
		Unit:             "Unidade",
		Purpose:          PurposeConsumption,
		Status:           StatusRequested,
	}
	req.appendHistory(ActionCreated, actor, time.Now())
	require.Len(t, req.History, 1)

	_, err := req.Approve(actor, time.Now())
	require.NoError(t, err)
	assert.Equal(t, StatusQuoted, req.Status)
	assert.Len(t, req.History, 2)

	p1 := newProposal(85000, 10)
	p2 := newProposal(92000, 7)
	require.NoError(t, req.AddProposal(p1))
	require.NoError(t, req.AddProposal(p2))
	require.NoError(t, req.SelectProposal(p1.ID))

	_, err = req.Finalize(actor, time.Now())
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, req.Status)
	assert.Len(t, req.History, 4)
	assert.Equal(t, p1.ID, *req.SelectedProposalID)
	assert.Equal(t, ActionCreated, req.History[0].Action)
	assert.Equal(t, ActionApprovedQuote, req.History[1].Action)
	assert.Equal(t, ActionPurchaseComplete, req.History[3].Action)
}

func TestHistoryActor(t *testing.T) {
	req := &PurchaseRequest{ID: uuid.New(), Status: StatusRequested}
	creator := Actor{ID: uuid.New(), Name: "Beatriz Costa", Role: RoleRequester}
	req.appendHistory(ActionCreated, creator, time.Now())

	assert.Equal(t, "Beatriz Costa", req.HistoryActor(ActionCreated))
	assert.Equal(t, "", req.HistoryActor(ActionPurchaseComplete))
}
