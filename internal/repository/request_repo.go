package repository

import (
	"context"

	"optibuy/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestRepository is the data-access layer of the purchase-request
// aggregate. History rows are insert-only; callers that combine a status
// change with a history append must do so inside one transaction
// (TransactionManager.RunInTx).
type RequestRepository interface {
	Create(ctx context.Context, req *model.PurchaseRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseRequest, error)
	List(ctx context.Context, status string, page, limit int) ([]model.PurchaseRequest, int64, error)
	ListByStatus(ctx context.Context, status string) ([]model.PurchaseRequest, error)
	ListAll(ctx context.Context) ([]model.PurchaseRequest, error)
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	AppendHistory(ctx context.Context, entry *model.RequestHistory) error
	CreateProposal(ctx context.Context, p *model.Proposal) error
	UpdateProposal(ctx context.Context, p *model.Proposal) error
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, req *model.PurchaseRequest) error {
	// Creates the aggregate with its seeded history in one go
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *requestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseRequest, error) {
	var req model.PurchaseRequest
	if err := GetDB(ctx, r.db).
		Preload("Proposals", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("date ASC") }).
		First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) List(ctx context.Context, status string, page, limit int) ([]model.PurchaseRequest, int64, error) {
	var requests []model.PurchaseRequest
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.PurchaseRequest{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	fetchQuery := db.
		Preload("Proposals", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("date ASC") })
	if status != "" {
		fetchQuery = fetchQuery.Where("status = ?", status)
	}
	if err := fetchQuery.Order("created_at DESC").Offset(offset).Limit(limit).Find(&requests).Error; err != nil {
		return nil, 0, err
	}

	return requests, total, nil
}

func (r *requestRepository) ListByStatus(ctx context.Context, status string) ([]model.PurchaseRequest, error) {
	var requests []model.PurchaseRequest
	if err := GetDB(ctx, r.db).
		Preload("Proposals").
		Preload("History", func(db *gorm.DB) *gorm.DB { return db.Order("date ASC") }).
		Where("status = ?", status).
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) ListAll(ctx context.Context) ([]model.PurchaseRequest, error) {
	var requests []model.PurchaseRequest
	if err := GetDB(ctx, r.db).
		Preload("Proposals").
		Order("created_at DESC").
		Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	return GetDB(ctx, r.db).Model(&model.PurchaseRequest{}).Where("id = ?", id).Updates(fields).Error
}

func (r *requestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return GetDB(ctx, r.db).Model(&model.PurchaseRequest{}).Where("id = ?", id).Update("status", status).Error
}

func (r *requestRepository) AppendHistory(ctx context.Context, entry *model.RequestHistory) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *requestRepository) CreateProposal(ctx context.Context, p *model.Proposal) error {
	return GetDB(ctx, r.db).Create(p).Error
}

func (r *requestRepository) UpdateProposal(ctx context.Context, p *model.Proposal) error {
	return GetDB(ctx, r.db).Save(p).Error
}
