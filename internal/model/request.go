package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"optibuy/pkg/apperr"
)

// Request status values. Kept in Portuguese — these are the labels the
// workflow has always presented and exported.
const (
	StatusRequested = "Solicitado"
	StatusQuoted    = "Cotada"
	StatusCancelled = "Cancelada"
	StatusCompleted = "Finalizada"
)

// History action labels. Export lookups match on these exact strings.
const (
	ActionCreated          = "Criado"
	ActionApprovedQuote    = "Aprovado para Cotação"
	ActionPurchaseComplete = "Compra Finalizada"
	ActionCancelledLabel   = "Cancelado"
)

// Purchase purpose values
const (
	PurposeConsumption = "Consumo"
	PurposeResale      = "Revenda"
)

// PurchaseRequest is the aggregate root of the requisition workflow: the
// request itself plus its owned proposals and append-only history, mutated as
// one consistency unit.
type PurchaseRequest struct {
	ID               uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Title            string    `gorm:"type:varchar(255);not null" json:"title"`
	Description      string    `gorm:"type:text" json:"description"`
	RequiredQuantity int       `gorm:"not null" json:"required_quantity"`
	Unit             string    `gorm:"type:varchar(50);not null" json:"unit"` // 'Unidade', 'Metro', 'Kg'...
	Purpose          string    `gorm:"type:varchar(20);not null" json:"purpose"`
	TargetSpecs      string    `gorm:"type:text" json:"target_specs"`
	// No FK constraint on purpose: a cost center may be removed from the
	// directory while requests still point at it.
	CostCenterID       *uuid.UUID       `gorm:"type:uuid;index" json:"cost_center_id"`
	Status             string           `gorm:"type:varchar(20);not null;index" json:"status"`
	SelectedProposalID *uuid.UUID       `gorm:"type:uuid" json:"selected_proposal_id"`
	AIAnalysis         string           `gorm:"type:jsonb" json:"-"` // serialized AIAnalysisResult; empty when never analyzed
	Proposals          []Proposal       `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"proposals"`
	History            []RequestHistory `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE" json:"history"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

// Proposal is a competing supplier offer, owned exclusively by its parent
// request. The supplier is referenced by name, not id — renaming a directory
// entry does not touch past quotes (long-standing data-model quirk, preserved).
type Proposal struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"request_id"`
	SupplierName   string          `gorm:"type:varchar(255);not null" json:"supplier_name"`
	Price          decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"price"`
	Currency       string          `gorm:"type:varchar(10);not null" json:"currency"`
	DeliveryDays   int             `gorm:"not null" json:"delivery_days"`
	DeliveryDate   *time.Time      `json:"delivery_date,omitempty"`
	PaymentTerms   string          `gorm:"type:varchar(255)" json:"payment_terms"` // "30 days", "50% advance", "Net 60"
	TechnicalSpecs string          `gorm:"type:text" json:"technical_specs"`
	ValidityDate   time.Time       `json:"validity_date"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// RequestHistory is an append-only audit record on the aggregate. Entries are
// never updated or deleted once written.
type RequestHistory struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequestID uuid.UUID `gorm:"type:uuid;not null;index" json:"request_id"`
	Date      time.Time `gorm:"not null" json:"date"`
	Action    string    `gorm:"type:varchar(50);not null;index" json:"action"`
	UserID    uuid.UUID `gorm:"type:uuid" json:"user_id"`
	UserName  string    `gorm:"type:varchar(255)" json:"user_name"`
	UserRole  string    `gorm:"type:varchar(50)" json:"user_role"`
}

func (r *PurchaseRequest) appendHistory(action string, actor Actor, now time.Time) *RequestHistory {
	r.History = append(r.History, RequestHistory{
		RequestID: r.ID,
		Date:      now,
		Action:    action,
		UserID:    actor.ID,
		UserName:  actor.Name,
		UserRole:  actor.Role,
	})
	return &r.History[len(r.History)-1]
}

// Approve moves Solicitado → Cotada and appends the matching history entry,
// which the caller must persist together with the status change.
func (r *PurchaseRequest) Approve(actor Actor, now time.Time) (*RequestHistory, error) {
	if r.Status != StatusRequested {
		return nil, apperr.Precondition("request with status '%s' cannot be approved for quotation", r.Status)
	}
	r.Status = StatusQuoted
	return r.appendHistory(ActionApprovedQuote, actor, now), nil
}

// Finalize moves Cotada → Finalizada. A winning proposal must have been
// selected first.
func (r *PurchaseRequest) Finalize(actor Actor, now time.Time) (*RequestHistory, error) {
	if r.Status != StatusQuoted {
		return nil, apperr.Precondition("request with status '%s' cannot be finalized", r.Status)
	}
	if r.SelectedProposalID == nil {
		return nil, apperr.Precondition("a winning proposal must be selected before finalizing")
	}
	if r.FindProposal(*r.SelectedProposalID) == nil {
		return nil, apperr.Precondition("selected proposal no longer belongs to the request")
	}
	r.Status = StatusCompleted
	return r.appendHistory(ActionPurchaseComplete, actor, now), nil
}

// Cancel is allowed from Solicitado or Cotada; both terminal states absorb.
func (r *PurchaseRequest) Cancel(actor Actor, now time.Time) (*RequestHistory, error) {
	if r.Status != StatusRequested && r.Status != StatusQuoted {
		return nil, apperr.Precondition("request with status '%s' cannot be cancelled", r.Status)
	}
	r.Status = StatusCancelled
	return r.appendHistory(ActionCancelledLabel, actor, now), nil
}

// Editable reports whether descriptive fields may still be changed. Edits are
// only allowed before approval and — unlike every other mutation — append no
// history entry (observed behavior, preserved).
func (r *PurchaseRequest) Editable() bool {
	return r.Status == StatusRequested
}

// AddProposal appends an offer. Proposals are collected only while the request
// sits in quotation.
func (r *PurchaseRequest) AddProposal(p Proposal) error {
	if r.Status != StatusQuoted {
		return apperr.Precondition("proposals can only be added while the request is in quotation")
	}
	p.RequestID = r.ID
	r.Proposals = append(r.Proposals, p)
	return nil
}

// ReplaceProposal swaps every field except the identity of the proposal with
// matching id. The current selection is left untouched even when the replaced
// proposal is the selected one.
func (r *PurchaseRequest) ReplaceProposal(p Proposal) error {
	for i := range r.Proposals {
		if r.Proposals[i].ID == p.ID {
			p.RequestID = r.ID
			p.CreatedAt = r.Proposals[i].CreatedAt
			r.Proposals[i] = p
			return nil
		}
	}
	return apperr.Precondition("proposal %s does not belong to this request", p.ID)
}

// SelectProposal marks the winning offer. The id must reference one of the
// request's own proposals; on failure the previous selection is kept.
func (r *PurchaseRequest) SelectProposal(id uuid.UUID) error {
	if r.FindProposal(id) == nil {
		return apperr.Precondition("proposal %s does not belong to this request", id)
	}
	r.SelectedProposalID = &id
	return nil
}

// FindProposal returns the proposal with the given id, or nil.
func (r *PurchaseRequest) FindProposal(id uuid.UUID) *Proposal {
	for i := range r.Proposals {
		if r.Proposals[i].ID == id {
			return &r.Proposals[i]
		}
	}
	return nil
}

// SelectedProposal returns the winning proposal, or nil when none was chosen.
func (r *PurchaseRequest) SelectedProposal() *Proposal {
	if r.SelectedProposalID == nil {
		return nil
	}
	return r.FindProposal(*r.SelectedProposalID)
}

// LowestPrice returns the cheapest offer across the current proposal set, or
// zero when the set is empty. Recomputed on every read — there is no cached
// aggregate to go stale.
func (r *PurchaseRequest) LowestPrice() decimal.Decimal {
	if len(r.Proposals) == 0 {
		return decimal.Zero
	}
	lowest := r.Proposals[0].Price
	for _, p := range r.Proposals[1:] {
		if p.Price.LessThan(lowest) {
			lowest = p.Price
		}
	}
	return lowest
}

// ShortestDelivery returns the fewest delivery days across the proposal set,
// or 0 when the set is empty.
func (r *PurchaseRequest) ShortestDelivery() int {
	if len(r.Proposals) == 0 {
		return 0
	}
	shortest := r.Proposals[0].DeliveryDays
	for _, p := range r.Proposals[1:] {
		if p.DeliveryDays < shortest {
			shortest = p.DeliveryDays
		}
	}
	return shortest
}

// HistoryActor returns the name of the user behind the first history entry
// with the given action label, or "" when none exists.
func (r *PurchaseRequest) HistoryActor(action string) string {
	for _, h := range r.History {
		if h.Action == action {
			return h.UserName
		}
	}
	return ""
}
