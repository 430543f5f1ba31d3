package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optibuy/internal/model"
	"optibuy/internal/websocket"
	"optibuy/pkg/apperr"
)

// fakeRequestRepo serves a single in-memory aggregate.
type fakeRequestRepo struct {
	req     *model.PurchaseRequest
	updated map[string]interface{}
}

func (f *fakeRequestRepo) Create(ctx context.Context, req *model.PurchaseRequest) error { return nil }

func (f *fakeRequestRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseRequest, error) {
	if f.req == nil || f.req.ID != id {
		return nil, fmt.Errorf("record not found")
	}
	return f.req, nil
}

func (f *fakeRequestRepo) List(ctx context.Context, status string, page, limit int) ([]model.PurchaseRequest, int64, error) {
	return nil, 0, nil
}

func (f *fakeRequestRepo) ListByStatus(ctx context.Context, status string) ([]model.PurchaseRequest, error) {
	return nil, nil
}

func (f *fakeRequestRepo) ListAll(ctx context.Context) ([]model.PurchaseRequest, error) {
	return nil, nil
}

func (f *fakeRequestRepo) UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	f.updated = fields
	return nil
}

func (f *fakeRequestRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	return nil
}

func (f *fakeRequestRepo) AppendHistory(ctx context.Context, entry *model.RequestHistory) error {
	return nil
}

func (f *fakeRequestRepo) CreateProposal(ctx context.Context, p *model.Proposal) error { return nil }
func (f *fakeRequestRepo) UpdateProposal(ctx context.Context, p *model.Proposal) error { return nil }

type fakeAuditRepo struct {
	entries []model.AuditLog
}

func (f *fakeAuditRepo) Log(ctx context.Context, entry *model.AuditLog) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeAuditRepo) List(ctx context.Context, page, limit int) ([]model.AuditLog, int64, error) {
	return nil, 0, nil
}

type fakeGenerator struct {
	response string
	err      error
	calls    int
	prompt   string
	schema   interface{}
	block    chan struct{} // when set, GenerateJSON waits until closed
	started  chan struct{}
}

func (f *fakeGenerator) GenerateJSON(ctx context.Context, prompt string, schema interface{}) (string, error) {
	f.calls++
	f.prompt = prompt
	f.schema = schema
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	return f.response, f.err
}

func quotedRequest(t *testing.T, proposalCount int) *model.PurchaseRequest {
	t.Helper()
	req := &model.PurchaseRequest{
		ID:               uuid.New(),
		Title:            "Notebooks para equipe de campo",
		RequiredQuantity: 10,
		Unit:             "Unidade",
		Purpose:          model.PurposeConsumption,
		Status:           model.StatusQuoted,
	}
	for i := 0; i < proposalCount; i++ {
		req.Proposals = append(req.Proposals, model.Proposal{
			ID:           uuid.New(),
			RequestID:    req.ID,
			SupplierName: fmt.Sprintf("Fornecedor %d", i+1),
			Price:        decimal.NewFromInt(int64(85000 + i*7000)),
			Currency:     "BRL",
			DeliveryDays: 15 + i*5,
		})
	}
	return req
}

func validVerdict(req *model.PurchaseRequest) string {
	result := model.AIAnalysisResult{
		RecommendedSupplierID: req.Proposals[0].ID.String(),
		Reasoning:             "Melhor equilíbrio entre preço e prazo",
	}
	for _, p := range req.Proposals {
		result.Scores = append(result.Scores, model.SupplierScore{
			SupplierID:      p.ID.String(),
			CommercialScore: 8,
			TechnicalScore:  7,
			DeliveryScore:   9,
			TotalScore:      8,
			Pros:            []string{"preço competitivo"},
			Cons:            []string{"prazo apertado"},
		})
	}
	raw, _ := json.Marshal(result)
	return string(raw)
}

func TestAnalyzeRejectsShortProposalSetBeforeCalling(t *testing.T) {
	req := quotedRequest(t, 1)
	repo := &fakeRequestRepo{req: req}
	gen := &fakeGenerator{}
	svc := NewAnalysisService(repo, &fakeAuditRepo{}, gen, websocket.NewHub())

	_, err := svc.Analyze(context.Background(), req.ID.String(), model.Actor{ID: uuid.New(), Name: "Ana", Role: model.RoleBuyer})
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Zero(t, gen.calls, "collaborator must not be called for an undersized proposal set")
	assert.Nil(t, repo.updated)
}

func TestAnalyzeStoresValidatedVerdict(t *testing.T) {
	req := quotedRequest(t, 2)
	repo := &fakeRequestRepo{req: req}
	audit := &fakeAuditRepo{}
	gen := &fakeGenerator{response: validVerdict(req)}
	svc := NewAnalysisService(repo, audit, gen, websocket.NewHub())

	result, err := svc.Analyze(context.Background(), req.ID.String(), model.Actor{ID: uuid.New(), Name: "Ana", Role: model.RoleBuyer})
	require.NoError(t, err)

	assert.Equal(t, req.Proposals[0].ID.String(), result.RecommendedSupplierID)
	assert.Len(t, result.Scores, 2)

	require.Contains(t, repo.updated, "ai_analysis")
	assert.Contains(t, repo.updated["ai_analysis"], result.RecommendedSupplierID)

	// Prompt must carry the request context and every proposal id
	assert.Contains(t, gen.prompt, req.Title)
	for _, p := range req.Proposals {
		assert.Contains(t, gen.prompt, p.ID.String())
	}
	require.NotNil(t, gen.schema)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, model.ActionRunAnalysis, audit.entries[0].Action)
}

func TestAnalyzeParseErrorOnForeignRecommendation(t *testing.T) {
	req := quotedRequest(t, 2)
	repo := &fakeRequestRepo{req: req}
	verdict := validVerdict(req)

	var tampered model.AIAnalysisResult
	require.NoError(t, json.Unmarshal([]byte(verdict), &tampered))
	tampered.RecommendedSupplierID = uuid.NewString()
	raw, _ := json.Marshal(tampered)

	gen := &fakeGenerator{response: string(raw)}
	svc := NewAnalysisService(repo, &fakeAuditRepo{}, gen, websocket.NewHub())

	_, err := svc.Analyze(context.Background(), req.ID.String(), model.Actor{ID: uuid.New(), Name: "Ana", Role: model.RoleBuyer})
	require.Error(t, err)
	assert.Equal(t, apperr.KindParse, apperr.KindOf(err))
	assert.Nil(t, repo.updated, "a rejected verdict must not be stored")
}

func TestAnalyzeParseErrorOnMalformedJSON(t *testing.T) {
	req := quotedRequest(t, 2)
	repo := &fakeRequestRepo{req: req}
	gen := &fakeGenerator{response: "not json at all"}
	svc := NewAnalysisService(repo, &fakeAuditRepo{}, gen, websocket.NewHub())

	_, err := svc.Analyze(context.Background(), req.ID.String(), model.Actor{ID: uuid.New(), Name: "Ana", Role: model.RoleBuyer})
	require.Error(t, err)
	assert.Equal(t, apperr.KindParse, apperr.KindOf(err))
}

func TestAnalyzeSingleFlightPerRequest(t *testing.T) {
	req := quotedRequest(t, 2)
	repo := &fakeRequestRepo{req: req}
	gen := &fakeGenerator{
		response: validVerdict(req),
		block:    make(chan struct{}),
		started:  make(chan struct{}),
	}
	svc := NewAnalysisService(repo, &fakeAuditRepo{}, gen, websocket.NewHub())
	actor := model.Actor{ID: uuid.New(), Name: "Ana", Role: model.RoleBuyer}

	done := make(chan error, 1)
	go func() {
		_, err := svc.Analyze(context.Background(), req.ID.String(), actor)
		done <- err
	}()

	<-gen.started
	_, err := svc.Analyze(context.Background(), req.ID.String(), actor)
	require.Error(t, err)
	assert.Equal(t, apperr.KindPrecondition, apperr.KindOf(err))

	close(gen.block)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("first analysis did not finish")
	}
	assert.Equal(t, 1, gen.calls)
}
