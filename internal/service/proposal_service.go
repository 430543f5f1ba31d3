package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"optibuy/internal/model"
	"optibuy/internal/websocket"
	"optibuy/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProposalDTO carries a supplier offer. The supplier is identified by name —
// quotes keep the name as entered even if the directory entry is later renamed
// or removed.
type ProposalDTO struct {
	SupplierName   string     `json:"supplier_name" binding:"required"`
	Price          string     `json:"price" binding:"required"`
	Currency       string     `json:"currency" binding:"required"`
	DeliveryDays   int        `json:"delivery_days" binding:"required,gt=0"`
	DeliveryDate   *time.Time `json:"delivery_date"`
	PaymentTerms   string     `json:"payment_terms"`
	TechnicalSpecs string     `json:"technical_specs"`
	ValidityDate   time.Time  `json:"validity_date"`
}

func (d ProposalDTO) toModel() (model.Proposal, error) {
	price, err := decimal.NewFromString(d.Price)
	if err != nil {
		return model.Proposal{}, apperr.Validation("invalid price '%s'", d.Price)
	}
	if price.IsNegative() {
		return model.Proposal{}, apperr.Validation("price cannot be negative")
	}

	return model.Proposal{
		SupplierName:   d.SupplierName,
		Price:          price,
		Currency:       d.Currency,
		DeliveryDays:   d.DeliveryDays,
		DeliveryDate:   d.DeliveryDate,
		PaymentTerms:   d.PaymentTerms,
		TechnicalSpecs: d.TechnicalSpecs,
		ValidityDate:   d.ValidityDate,
	}, nil
}

// AddProposal attaches a new offer to a request sitting in quotation.
func (s *requestService) AddProposal(ctx context.Context, requestID string, dto ProposalDTO, actor model.Actor) (*RequestResponse, error) {
	req, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}

	proposal, err := dto.toModel()
	if err != nil {
		return nil, err
	}
	proposal.ID = uuid.New()

	if err := req.AddProposal(proposal); err != nil {
		return nil, err
	}

	if err := s.repo.CreateProposal(ctx, req.FindProposal(proposal.ID)); err != nil {
		return nil, fmt.Errorf("failed to create proposal: %w", err)
	}

	s.auditProposal(ctx, actor, model.ActionAddProposal, req, &proposal)
	s.hub.Notify(websocket.Event{Type: "proposal", RequestID: req.ID.String(), Status: req.Status, Action: model.ActionAddProposal})

	return s.Get(ctx, requestID)
}

// EditProposal replaces every field of an existing offer except its identity.
// A previously selected winner stays selected even when its offer changes.
func (s *requestService) EditProposal(ctx context.Context, requestID, proposalID string, dto ProposalDTO, actor model.Actor) (*RequestResponse, error) {
	req, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}

	pID, err := uuid.Parse(proposalID)
	if err != nil {
		return nil, apperr.Validation("invalid proposal id")
	}

	proposal, err := dto.toModel()
	if err != nil {
		return nil, err
	}
	proposal.ID = pID

	if err := req.ReplaceProposal(proposal); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateProposal(ctx, req.FindProposal(pID)); err != nil {
		return nil, fmt.Errorf("failed to update proposal: %w", err)
	}

	s.auditProposal(ctx, actor, model.ActionEditProposal, req, &proposal)
	s.hub.Notify(websocket.Event{Type: "proposal", RequestID: req.ID.String(), Status: req.Status, Action: model.ActionEditProposal})

	return s.Get(ctx, requestID)
}

// SelectProposal marks the winning offer. Selection itself carries no status
// precondition — only finalization checks the workflow state.
func (s *requestService) SelectProposal(ctx context.Context, requestID, proposalID string, actor model.Actor) (*RequestResponse, error) {
	req, err := s.load(ctx, requestID)
	if err != nil {
		return nil, err
	}

	pID, err := uuid.Parse(proposalID)
	if err != nil {
		return nil, apperr.Validation("invalid proposal id")
	}

	if err := req.SelectProposal(pID); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateFields(ctx, req.ID, map[string]interface{}{"selected_proposal_id": pID}); err != nil {
		return nil, fmt.Errorf("failed to select proposal: %w", err)
	}

	s.auditProposal(ctx, actor, model.ActionSelectProposal, req, req.FindProposal(pID))
	s.hub.Notify(websocket.Event{Type: "proposal", RequestID: req.ID.String(), Status: req.Status, Action: model.ActionSelectProposal})

	return s.Get(ctx, requestID)
}

func (s *requestService) auditProposal(ctx context.Context, actor model.Actor, action string, req *model.PurchaseRequest, p *model.Proposal) {
	payload := map[string]string{"request_id": req.ID.String()}
	if p != nil {
		payload["proposal_id"] = p.ID.String()
		payload["supplier_name"] = p.SupplierName
	}
	details, _ := json.Marshal(payload)
	_ = s.auditRepo.Log(ctx, &model.AuditLog{
		UserID:     &actor.ID,
		Action:     action,
		EntityID:   req.ID.String(),
		EntityName: req.Title,
		Details:    string(details),
	})
}
