package service

import (
	"context"
	"fmt"

	"optibuy/internal/model"
	"optibuy/internal/repository"
	"optibuy/pkg/apperr"

	"github.com/google/uuid"
)

type SupplierDTO struct {
	Name         string `json:"name" binding:"required"`
	Category     string `json:"category"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email"`
}

// SupplierService maintains the supplier directory. The directory is purely
// informational: quotes carry supplier names, not references, so edits and
// deletions here never touch existing proposals.
type SupplierService interface {
	Create(ctx context.Context, dto SupplierDTO, actor model.Actor) (*model.Supplier, error)
	Update(ctx context.Context, id string, dto SupplierDTO, actor model.Actor) (*model.Supplier, error)
	Delete(ctx context.Context, id string, actor model.Actor) error
	List(ctx context.Context, search string, page, limit int) ([]model.Supplier, int64, error)
}

type supplierService struct {
	repo      repository.SupplierRepository
	auditRepo repository.AuditRepository
}

func NewSupplierService(repo repository.SupplierRepository, auditRepo repository.AuditRepository) SupplierService {
	return &supplierService{repo: repo, auditRepo: auditRepo}
}

func (s *supplierService) Create(ctx context.Context, dto SupplierDTO, actor model.Actor) (*model.Supplier, error) {
	supplier := &model.Supplier{
		Name:         dto.Name,
		Category:     dto.Category,
		ContactEmail: dto.ContactEmail,
	}
	if err := s.repo.Create(ctx, supplier); err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}

	s.audit(ctx, actor, model.ActionCreateSupplier, supplier)
	return supplier, nil
}

func (s *supplierService) Update(ctx context.Context, id string, dto SupplierDTO, actor model.Actor) (*model.Supplier, error) {
	supplierID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid supplier id")
	}

	supplier, err := s.repo.FindByID(ctx, supplierID)
	if err != nil {
		return nil, apperr.NotFound("supplier not found")
	}

	supplier.Name = dto.Name
	supplier.Category = dto.Category
	supplier.ContactEmail = dto.ContactEmail

	if err := s.repo.Update(ctx, supplier); err != nil {
		return nil, fmt.Errorf("failed to update supplier: %w", err)
	}
	return supplier, nil
}

func (s *supplierService) Delete(ctx context.Context, id string, actor model.Actor) error {
	supplierID, err := uuid.Parse(id)
	if err != nil {
		return apperr.Validation("invalid supplier id")
	}

	supplier, err := s.repo.FindByID(ctx, supplierID)
	if err != nil {
		return apperr.NotFound("supplier not found")
	}

	if err := s.repo.Delete(ctx, supplierID); err != nil {
		return fmt.Errorf("failed to delete supplier: %w", err)
	}

	s.audit(ctx, actor, model.ActionDeleteSupplier, supplier)
	return nil
}

func (s *supplierService) List(ctx context.Context, search string, page, limit int) ([]model.Supplier, int64, error) {
	return s.repo.List(ctx, search, page, limit)
}

func (s *supplierService) audit(ctx context.Context, actor model.Actor, action string, supplier *model.Supplier) {
	_ = s.auditRepo.Log(ctx, &model.AuditLog{
		UserID:     &actor.ID,
		Action:     action,
		EntityID:   supplier.ID.String(),
		EntityName: supplier.Name,
	})
}
