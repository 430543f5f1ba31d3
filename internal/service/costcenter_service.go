package service

import (
	"context"
	"fmt"

	"optibuy/internal/model"
	"optibuy/internal/repository"
	"optibuy/pkg/apperr"

	"github.com/google/uuid"
)

type CostCenterDTO struct {
	Code string `json:"code" binding:"required"`
	Name string `json:"name" binding:"required"`
}

// CostCenterService maintains the cost-center directory.
type CostCenterService interface {
	Create(ctx context.Context, dto CostCenterDTO, actor model.Actor) (*model.CostCenter, error)
	Update(ctx context.Context, id string, dto CostCenterDTO, actor model.Actor) (*model.CostCenter, error)
	Delete(ctx context.Context, id string, actor model.Actor) error
	List(ctx context.Context) ([]model.CostCenter, error)
}

type costCenterService struct {
	repo      repository.CostCenterRepository
	auditRepo repository.AuditRepository
}

func NewCostCenterService(repo repository.CostCenterRepository, auditRepo repository.AuditRepository) CostCenterService {
	return &costCenterService{repo: repo, auditRepo: auditRepo}
}

func (s *costCenterService) Create(ctx context.Context, dto CostCenterDTO, actor model.Actor) (*model.CostCenter, error) {
	cc := &model.CostCenter{
		Code: dto.Code,
		Name: dto.Name,
	}
	if err := s.repo.Create(ctx, cc); err != nil {
		return nil, fmt.Errorf("failed to create cost center: %w", err)
	}

	s.audit(ctx, actor, model.ActionCreateCostCenter, cc)
	return cc, nil
}

func (s *costCenterService) Update(ctx context.Context, id string, dto CostCenterDTO, actor model.Actor) (*model.CostCenter, error) {
	ccID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid cost center id")
	}

	cc, err := s.repo.FindByID(ctx, ccID)
	if err != nil {
		return nil, apperr.NotFound("cost center not found")
	}

	cc.Code = dto.Code
	cc.Name = dto.Name

	if err := s.repo.Update(ctx, cc); err != nil {
		return nil, fmt.Errorf("failed to update cost center: %w", err)
	}
	return cc, nil
}

// Delete removes the cost center even when requests still reference it; their
// cost_center_id is left dangling and reports render an empty label.
func (s *costCenterService) Delete(ctx context.Context, id string, actor model.Actor) error {
	ccID, err := uuid.Parse(id)
	if err != nil {
		return apperr.Validation("invalid cost center id")
	}

	cc, err := s.repo.FindByID(ctx, ccID)
	if err != nil {
		return apperr.NotFound("cost center not found")
	}

	if err := s.repo.Delete(ctx, ccID); err != nil {
		return fmt.Errorf("failed to delete cost center: %w", err)
	}

	s.audit(ctx, actor, model.ActionDeleteCostCenter, cc)
	return nil
}

func (s *costCenterService) List(ctx context.Context) ([]model.CostCenter, error) {
	return s.repo.List(ctx)
}

func (s *costCenterService) audit(ctx context.Context, actor model.Actor, action string, cc *model.CostCenter) {
	_ = s.auditRepo.Log(ctx, &model.AuditLog{
		UserID:     &actor.ID,
		Action:     action,
		EntityID:   cc.ID.String(),
		EntityName: cc.Label(),
	})
}
