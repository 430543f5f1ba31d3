package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"optibuy/internal/model"
	"optibuy/internal/repository"
	"optibuy/internal/websocket"
	"optibuy/pkg/apperr"

	"github.com/google/uuid"
)

// Generator produces a JSON document for a prompt, constrained by a response
// schema. Satisfied by gemini.Client; faked in tests.
type Generator interface {
	GenerateJSON(ctx context.Context, prompt string, schema interface{}) (string, error)
}

// AnalysisService runs the supplier-equalization scoring against the external
// collaborator and stores the verdict on the request. Re-analysis overwrites
// the previous verdict entirely; the winner is never chosen automatically.
type AnalysisService interface {
	Analyze(ctx context.Context, requestID string, actor model.Actor) (*model.AIAnalysisResult, error)
}

type analysisService struct {
	repo      repository.RequestRepository
	auditRepo repository.AuditRepository
	gen       Generator
	hub       *websocket.Hub
	inflight  sync.Map // request id -> struct{}
}

func NewAnalysisService(
	repo repository.RequestRepository,
	auditRepo repository.AuditRepository,
	gen Generator,
	hub *websocket.Hub,
) AnalysisService {
	return &analysisService{repo: repo, auditRepo: auditRepo, gen: gen, hub: hub}
}

func (s *analysisService) Analyze(ctx context.Context, requestID string, actor model.Actor) (*model.AIAnalysisResult, error) {
	reqID, err := uuid.Parse(requestID)
	if err != nil {
		return nil, apperr.Validation("invalid request id")
	}

	req, err := s.repo.FindByID(ctx, reqID)
	if err != nil {
		return nil, apperr.NotFound("request not found")
	}

	// Checked before anything leaves the process — a short proposal set must
	// never cost an external call.
	if len(req.Proposals) < 2 {
		return nil, apperr.Validation("at least two proposals are required for analysis")
	}

	// One analysis per request at a time
	if _, running := s.inflight.LoadOrStore(reqID, struct{}{}); running {
		return nil, apperr.Precondition("an analysis for this request is already running")
	}
	defer s.inflight.Delete(reqID)

	text, err := s.gen.GenerateJSON(ctx, buildAnalysisPrompt(req), analysisSchema())
	if err != nil {
		return nil, err
	}

	result, err := parseAnalysis(text, req.Proposals)
	if err != nil {
		return nil, err
	}

	// Store the canonical re-serialization, not the collaborator's raw text
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateFields(ctx, req.ID, map[string]interface{}{"ai_analysis": string(raw)}); err != nil {
		return nil, fmt.Errorf("failed to store analysis: %w", err)
	}

	_ = s.auditRepo.Log(ctx, &model.AuditLog{
		UserID:     &actor.ID,
		Action:     model.ActionRunAnalysis,
		EntityID:   req.ID.String(),
		EntityName: req.Title,
		Details:    fmt.Sprintf(`{"recommended":%q,"proposals":%d}`, result.RecommendedSupplierID, len(req.Proposals)),
	})
	s.hub.Notify(websocket.Event{Type: "analysis", RequestID: req.ID.String(), Status: req.Status, Action: model.ActionRunAnalysis})

	return result, nil
}

// buildAnalysisPrompt renders the request context and the full proposal set.
// Proposal ids double as the supplier identifiers the collaborator must echo
// back in its scores.
func buildAnalysisPrompt(req *model.PurchaseRequest) string {
	type promptProposal struct {
		ID             string `json:"id"`
		SupplierName   string `json:"supplierName"`
		Price          string `json:"price"`
		Currency       string `json:"currency"`
		DeliveryDays   int    `json:"deliveryDays"`
		PaymentTerms   string `json:"paymentTerms"`
		TechnicalSpecs string `json:"technicalSpecs"`
	}

	proposals := make([]promptProposal, 0, len(req.Proposals))
	for _, p := range req.Proposals {
		proposals = append(proposals, promptProposal{
			ID:             p.ID.String(),
			SupplierName:   p.SupplierName,
			Price:          p.Price.String(),
			Currency:       p.Currency,
			DeliveryDays:   p.DeliveryDays,
			PaymentTerms:   p.PaymentTerms,
			TechnicalSpecs: p.TechnicalSpecs,
		})
	}
	proposalJSON, _ := json.MarshalIndent(proposals, "", "  ")

	var b strings.Builder
	b.WriteString("Você é um analista de compras sênior. Analise as propostas de fornecedores abaixo para a seguinte solicitação de compra e produza uma equalização técnica e comercial.\n\n")
	fmt.Fprintf(&b, "Solicitação: %s\n", req.Title)
	if req.Description != "" {
		fmt.Fprintf(&b, "Descrição: %s\n", req.Description)
	}
	fmt.Fprintf(&b, "Quantidade necessária: %d %s\n", req.RequiredQuantity, req.Unit)
	if req.TargetSpecs != "" {
		fmt.Fprintf(&b, "Especificações desejadas: %s\n", req.TargetSpecs)
	}
	b.WriteString("\nPropostas (o campo 'id' identifica cada fornecedor e deve ser usado como supplierId):\n")
	b.Write(proposalJSON)
	b.WriteString("\n\nPara cada proposta atribua notas de 0 a 10 nos critérios comercial, técnico e prazo de entrega, calcule a nota total, liste prós e contras, e recomende o melhor fornecedor com uma justificativa objetiva.")
	return b.String()
}

// analysisSchema is the strict response schema sent with every analysis call.
func analysisSchema() map[string]interface{} {
	scoreSchema := map[string]interface{}{
		"type": "OBJECT",
		"properties": map[string]interface{}{
			"supplierId":      map[string]interface{}{"type": "STRING"},
			"commercialScore": map[string]interface{}{"type": "NUMBER"},
			"technicalScore":  map[string]interface{}{"type": "NUMBER"},
			"deliveryScore":   map[string]interface{}{"type": "NUMBER"},
			"totalScore":      map[string]interface{}{"type": "NUMBER"},
			"pros":            map[string]interface{}{"type": "ARRAY", "items": map[string]interface{}{"type": "STRING"}},
			"cons":            map[string]interface{}{"type": "ARRAY", "items": map[string]interface{}{"type": "STRING"}},
		},
		"required": []string{"supplierId", "commercialScore", "technicalScore", "deliveryScore", "totalScore", "pros", "cons"},
	}

	return map[string]interface{}{
		"type": "OBJECT",
		"properties": map[string]interface{}{
			"recommendedSupplierId": map[string]interface{}{"type": "STRING"},
			"reasoning":             map[string]interface{}{"type": "STRING"},
			"scores":                map[string]interface{}{"type": "ARRAY", "items": scoreSchema},
		},
		"required": []string{"recommendedSupplierId", "reasoning", "scores"},
	}
}

// parseAnalysis decodes and validates the collaborator's answer against the
// request's proposal set.
func parseAnalysis(text string, proposals []model.Proposal) (*model.AIAnalysisResult, error) {
	var result model.AIAnalysisResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, apperr.Wrap(apperr.KindParse, err, "analysis response is not valid JSON")
	}
	if err := result.Validate(proposals); err != nil {
		return nil, err
	}
	return &result, nil
}
