package repository

import (
	"context"

	"optibuy/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CostCenterRepository interface {
	Create(ctx context.Context, cc *model.CostCenter) error
	Update(ctx context.Context, cc *model.CostCenter) error
	// Delete removes the cost center without checking for referencing
	// requests; their cost_center_id is left dangling on purpose.
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CostCenter, error)
	List(ctx context.Context) ([]model.CostCenter, error)
}

type costCenterRepository struct {
	db *gorm.DB
}

func NewCostCenterRepository(db *gorm.DB) CostCenterRepository {
	return &costCenterRepository{db: db}
}

func (r *costCenterRepository) Create(ctx context.Context, cc *model.CostCenter) error {
	return GetDB(ctx, r.db).Create(cc).Error
}

func (r *costCenterRepository) Update(ctx context.Context, cc *model.CostCenter) error {
	return GetDB(ctx, r.db).Save(cc).Error
}

func (r *costCenterRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.CostCenter{}).Error
}

func (r *costCenterRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.CostCenter, error) {
	var cc model.CostCenter
	if err := GetDB(ctx, r.db).First(&cc, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cc, nil
}

func (r *costCenterRepository) List(ctx context.Context) ([]model.CostCenter, error) {
	var centers []model.CostCenter
	if err := GetDB(ctx, r.db).Order("code ASC").Find(&centers).Error; err != nil {
		return nil, err
	}
	return centers, nil
}
