package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"optibuy/internal/model"
	"optibuy/internal/repository"
	"optibuy/internal/websocket"
	"optibuy/pkg/apperr"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateRequestDTO struct {
	Title            string `json:"title" binding:"required"`
	Description      string `json:"description"`
	RequiredQuantity int    `json:"required_quantity" binding:"required,gt=0"`
	Unit             string `json:"unit" binding:"required"`
	Purpose          string `json:"purpose" binding:"required"`
	TargetSpecs      string `json:"target_specs"`
	CostCenterID     string `json:"cost_center_id" binding:"required"`
}

type UpdateRequestDTO struct {
	Title            string `json:"title"`
	Description      string `json:"description"`
	RequiredQuantity int    `json:"required_quantity"`
	Unit             string `json:"unit"`
	Purpose          string `json:"purpose"`
	TargetSpecs      string `json:"target_specs"`
	CostCenterID     string `json:"cost_center_id"`
}

type RequestResponse struct {
	ID                 uuid.UUID               `json:"id"`
	Title              string                  `json:"title"`
	Description        string                  `json:"description"`
	RequiredQuantity   int                     `json:"required_quantity"`
	Unit               string                  `json:"unit"`
	Purpose            string                  `json:"purpose"`
	TargetSpecs        string                  `json:"target_specs"`
	CostCenterID       *uuid.UUID              `json:"cost_center_id"`
	Status             string                  `json:"status"`
	SelectedProposalID *uuid.UUID              `json:"selected_proposal_id"`
	Proposals          []model.Proposal        `json:"proposals"`
	History            []model.RequestHistory  `json:"history"`
	Analysis           *model.AIAnalysisResult `json:"ai_analysis,omitempty"`
	LowestPrice        decimal.Decimal         `json:"lowest_price"`
	ShortestDelivery   int                     `json:"shortest_delivery_days"`
	CreatedAt          time.Time               `json:"created_at"`
	UpdatedAt          time.Time               `json:"updated_at"`
}

// --- Interface ---

// RequestService drives the requisition lifecycle. Status transitions always
// persist the new status and the matching history entry in one transaction;
// websocket notifications fire only after the commit.
type RequestService interface {
	Create(ctx context.Context, dto CreateRequestDTO, actor model.Actor) (*RequestResponse, error)
	Get(ctx context.Context, id string) (*RequestResponse, error)
	List(ctx context.Context, status string, page, limit int) ([]RequestResponse, int64, error)
	Update(ctx context.Context, id string, dto UpdateRequestDTO, actor model.Actor) (*RequestResponse, error)
	Approve(ctx context.Context, id string, actor model.Actor) (*RequestResponse, error)
	Cancel(ctx context.Context, id string, actor model.Actor) (*RequestResponse, error)
	Finalize(ctx context.Context, id string, actor model.Actor) (*RequestResponse, error)

	AddProposal(ctx context.Context, requestID string, dto ProposalDTO, actor model.Actor) (*RequestResponse, error)
	EditProposal(ctx context.Context, requestID, proposalID string, dto ProposalDTO, actor model.Actor) (*RequestResponse, error)
	SelectProposal(ctx context.Context, requestID, proposalID string, actor model.Actor) (*RequestResponse, error)
}

type requestService struct {
	repo      repository.RequestRepository
	ccRepo    repository.CostCenterRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	hub       *websocket.Hub
}

func NewRequestService(
	repo repository.RequestRepository,
	ccRepo repository.CostCenterRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *websocket.Hub,
) RequestService {
	return &requestService{
		repo:      repo,
		ccRepo:    ccRepo,
		auditRepo: auditRepo,
		txManager: txManager,
		hub:       hub,
	}
}

// --- Implementation ---

func (s *requestService) Create(ctx context.Context, dto CreateRequestDTO, actor model.Actor) (*RequestResponse, error) {
	if dto.Purpose != model.PurposeConsumption && dto.Purpose != model.PurposeResale {
		return nil, apperr.Validation("purpose must be '%s' or '%s'", model.PurposeConsumption, model.PurposeResale)
	}

	ccID, err := uuid.Parse(dto.CostCenterID)
	if err != nil {
		return nil, apperr.Validation("invalid cost center id")
	}
	if _, err := s.ccRepo.FindByID(ctx, ccID); err != nil {
		return nil, apperr.Validation("cost center does not exist")
	}

	req := &model.PurchaseRequest{
		ID:               uuid.New(),
		Title:            dto.Title,
		Description:      dto.Description,
		RequiredQuantity: dto.RequiredQuantity,
		Unit:             dto.Unit,
		Purpose:          dto.Purpose,
		TargetSpecs:      dto.TargetSpecs,
		CostCenterID:     &ccID,
		Status:           model.StatusRequested,
	}
	req.History = []model.RequestHistory{{
		RequestID: req.ID,
		Date:      time.Now(),
		Action:    model.ActionCreated,
		UserID:    actor.ID,
		UserName:  actor.Name,
		UserRole:  actor.Role,
	}}

	if err := s.repo.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	s.audit(ctx, actor, model.ActionCreateRequest, req)
	s.hub.Notify(websocket.Event{Type: "request_status", RequestID: req.ID.String(), Status: req.Status, Action: model.ActionCreated})

	return toRequestResponse(req), nil
}

func (s *requestService) Get(ctx context.Context, id string) (*RequestResponse, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toRequestResponse(req), nil
}

func (s *requestService) List(ctx context.Context, status string, page, limit int) ([]RequestResponse, int64, error) {
	requests, total, err := s.repo.List(ctx, status, page, limit)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]RequestResponse, 0, len(requests))
	for i := range requests {
		responses = append(responses, *toRequestResponse(&requests[i]))
	}
	return responses, total, nil
}

// Update changes descriptive fields while the request is still editable. No
// history entry is appended for edits.
func (s *requestService) Update(ctx context.Context, id string, dto UpdateRequestDTO, actor model.Actor) (*RequestResponse, error) {
	req, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	if !req.Editable() {
		return nil, apperr.Precondition("request with status '%s' can no longer be edited", req.Status)
	}

	fields := map[string]interface{}{}
	if dto.Title != "" {
		fields["title"] = dto.Title
	}
	if dto.Description != "" {
		fields["description"] = dto.Description
	}
	if dto.RequiredQuantity > 0 {
		fields["required_quantity"] = dto.RequiredQuantity
	}
	if dto.Unit != "" {
		fields["unit"] = dto.Unit
	}
	if dto.Purpose != "" {
		if dto.Purpose != model.PurposeConsumption && dto.Purpose != model.PurposeResale {
			return nil, apperr.Validation("purpose must be '%s' or '%s'", model.PurposeConsumption, model.PurposeResale)
		}
		fields["purpose"] = dto.Purpose
	}
	if dto.TargetSpecs != "" {
		fields["target_specs"] = dto.TargetSpecs
	}
	if dto.CostCenterID != "" {
		ccID, err := uuid.Parse(dto.CostCenterID)
		if err != nil {
			return nil, apperr.Validation("invalid cost center id")
		}
		if _, err := s.ccRepo.FindByID(ctx, ccID); err != nil {
			return nil, apperr.Validation("cost center does not exist")
		}
		fields["cost_center_id"] = ccID
	}

	if len(fields) > 0 {
		if err := s.repo.UpdateFields(ctx, req.ID, fields); err != nil {
			return nil, fmt.Errorf("failed to update request: %w", err)
		}
	}

	s.audit(ctx, actor, model.ActionEditRequest, req)

	return s.Get(ctx, id)
}

func (s *requestService) Approve(ctx context.Context, id string, actor model.Actor) (*RequestResponse, error) {
	return s.transition(ctx, id, actor, model.ActionApproveRequest,
		func(req *model.PurchaseRequest, now time.Time) (*model.RequestHistory, error) {
			return req.Approve(actor, now)
		})
}

func (s *requestService) Cancel(ctx context.Context, id string, actor model.Actor) (*RequestResponse, error) {
	return s.transition(ctx, id, actor, model.ActionCancelRequest,
		func(req *model.PurchaseRequest, now time.Time) (*model.RequestHistory, error) {
			return req.Cancel(actor, now)
		})
}

func (s *requestService) Finalize(ctx context.Context, id string, actor model.Actor) (*RequestResponse, error) {
	return s.transition(ctx, id, actor, model.ActionFinalizeRequest,
		func(req *model.PurchaseRequest, now time.Time) (*model.RequestHistory, error) {
			return req.Finalize(actor, now)
		})
}

// transition runs a domain status change atomically: re-load inside the
// transaction, apply the transition, persist status + history + audit
// together. The websocket event fires only after the commit.
func (s *requestService) transition(
	ctx context.Context,
	id string,
	actor model.Actor,
	auditAction string,
	apply func(req *model.PurchaseRequest, now time.Time) (*model.RequestHistory, error),
) (*RequestResponse, error) {
	reqID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid request id")
	}

	var updated *model.PurchaseRequest
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		req, err := s.repo.FindByID(txCtx, reqID)
		if err != nil {
			return apperr.NotFound("request not found")
		}

		entry, err := apply(req, time.Now())
		if err != nil {
			return err
		}

		if err := s.repo.UpdateStatus(txCtx, req.ID, req.Status); err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}
		if err := s.repo.AppendHistory(txCtx, entry); err != nil {
			return fmt.Errorf("failed to append history: %w", err)
		}

		s.audit(txCtx, actor, auditAction, req)
		updated = req
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.hub.Notify(websocket.Event{
		Type:      "request_status",
		RequestID: updated.ID.String(),
		Status:    updated.Status,
		Action:    updated.History[len(updated.History)-1].Action,
	})

	return toRequestResponse(updated), nil
}

func (s *requestService) load(ctx context.Context, id string) (*model.PurchaseRequest, error) {
	reqID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid request id")
	}
	req, err := s.repo.FindByID(ctx, reqID)
	if err != nil {
		return nil, apperr.NotFound("request not found")
	}
	return req, nil
}

func (s *requestService) audit(ctx context.Context, actor model.Actor, action string, req *model.PurchaseRequest) {
	details, _ := json.Marshal(map[string]string{"status": req.Status})
	_ = s.auditRepo.Log(ctx, &model.AuditLog{
		UserID:     &actor.ID,
		Action:     action,
		EntityID:   req.ID.String(),
		EntityName: req.Title,
		Details:    string(details),
	})
}

// --- Helpers ---

func toRequestResponse(req *model.PurchaseRequest) *RequestResponse {
	resp := &RequestResponse{
		ID:                 req.ID,
		Title:              req.Title,
		Description:        req.Description,
		RequiredQuantity:   req.RequiredQuantity,
		Unit:               req.Unit,
		Purpose:            req.Purpose,
		TargetSpecs:        req.TargetSpecs,
		CostCenterID:       req.CostCenterID,
		Status:             req.Status,
		SelectedProposalID: req.SelectedProposalID,
		Proposals:          req.Proposals,
		History:            req.History,
		LowestPrice:        req.LowestPrice(),
		ShortestDelivery:   req.ShortestDelivery(),
		CreatedAt:          req.CreatedAt,
		UpdatedAt:          req.UpdatedAt,
	}

	if req.AIAnalysis != "" {
		var analysis model.AIAnalysisResult
		if err := json.Unmarshal([]byte(req.AIAnalysis), &analysis); err == nil {
			resp.Analysis = &analysis
		}
	}

	return resp
}
