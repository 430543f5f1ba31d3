package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"optibuy/pkg/apperr"
)

func scoreFor(p Proposal, total float64) SupplierScore {
	return SupplierScore{
		SupplierID:      p.ID.String(),
		CommercialScore: 8,
		TechnicalScore:  7.5,
		DeliveryScore:   9,
		TotalScore:      total,
		Pros:            []string{"preço competitivo"},
		Cons:            []string{"prazo apertado"},
	}
}

func TestAnalysisValidateAccepts(t *testing.T) {
	p1 := newProposal(85000, 10)
	p2 := newProposal(92000, 5)

	result := AIAnalysisResult{
		RecommendedSupplierID: p1.ID.String(),
		Reasoning:             "Melhor custo-benefício",
		Scores:                []SupplierScore{scoreFor(p1, 8.2), scoreFor(p2, 7.1)},
	}
	require.NoError(t, result.Validate([]Proposal{p1, p2}))
}

func TestAnalysisValidateRejections(t *testing.T) {
	p1 := newProposal(85000, 10)
	p2 := newProposal(92000, 5)
	proposals := []Proposal{p1, p2}

	tests := []struct {
		name   string
		mutate func(r *AIAnalysisResult)
	}{
		{"missing recommendation", func(r *AIAnalysisResult) { r.RecommendedSupplierID = "" }},
		{"unknown recommendation", func(r *AIAnalysisResult) { r.RecommendedSupplierID = "nope" }},
		{"unknown score entry", func(r *AIAnalysisResult) { r.Scores[0].SupplierID = "nope" }},
		{"missing score entry", func(r *AIAnalysisResult) { r.Scores = r.Scores[:1] }},
		{"duplicate score entry", func(r *AIAnalysisResult) { r.Scores[1].SupplierID = r.Scores[0].SupplierID }},
		{"score above scale", func(r *AIAnalysisResult) { r.Scores[0].TotalScore = 11 }},
		{"score below scale", func(r *AIAnalysisResult) { r.Scores[1].DeliveryScore = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := AIAnalysisResult{
				RecommendedSupplierID: p1.ID.String(),
				Reasoning:             "ok",
				Scores:                []SupplierScore{scoreFor(p1, 8.2), scoreFor(p2, 7.1)},
			}
			tt.mutate(&result)
			err := result.Validate(proposals)
			require.Error(t, err)
			assert.Equal(t, apperr.KindParse, apperr.KindOf(err))
		})
	}
}
