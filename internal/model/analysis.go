package model

import (
	"optibuy/pkg/apperr"
)

// AIAnalysisResult is the scored equalization verdict produced by the external
// analysis collaborator. It is attached to at most one request at a time and
// fully overwritten on re-analysis. JSON keys mirror the collaborator's
// response schema.
type AIAnalysisResult struct {
	RecommendedSupplierID string          `json:"recommendedSupplierId"`
	Reasoning             string          `json:"reasoning"`
	Scores                []SupplierScore `json:"scores"`
}

// SupplierScore grades one proposal on a 0–10 scale per criterion.
type SupplierScore struct {
	SupplierID      string   `json:"supplierId"` // proposal id, echoed back by the collaborator
	CommercialScore float64  `json:"commercialScore"`
	TechnicalScore  float64  `json:"technicalScore"`
	DeliveryScore   float64  `json:"deliveryScore"`
	TotalScore      float64  `json:"totalScore"`
	Pros            []string `json:"pros"`
	Cons            []string `json:"cons"`
}

// Validate checks the collaborator's output against the request's proposal
// set. The collaborator is not trusted: every proposal must be scored exactly
// once, every score must sit in [0,10], and the recommendation must point at
// one of the request's own proposals.
func (a *AIAnalysisResult) Validate(proposals []Proposal) error {
	if a.RecommendedSupplierID == "" {
		return apperr.Parse("analysis result is missing the recommended supplier")
	}

	ids := make(map[string]bool, len(proposals))
	for _, p := range proposals {
		ids[p.ID.String()] = true
	}

	if !ids[a.RecommendedSupplierID] {
		return apperr.Parse("recommended supplier '%s' does not match any proposal", a.RecommendedSupplierID)
	}

	scored := make(map[string]bool, len(a.Scores))
	for _, s := range a.Scores {
		if !ids[s.SupplierID] {
			return apperr.Parse("score entry '%s' does not match any proposal", s.SupplierID)
		}
		if scored[s.SupplierID] {
			return apperr.Parse("proposal '%s' was scored more than once", s.SupplierID)
		}
		scored[s.SupplierID] = true

		for _, v := range []float64{s.CommercialScore, s.TechnicalScore, s.DeliveryScore, s.TotalScore} {
			if v < 0 || v > 10 {
				return apperr.Parse("score for proposal '%s' is outside the 0-10 scale", s.SupplierID)
			}
		}
	}

	for id := range ids {
		if !scored[id] {
			return apperr.Parse("proposal '%s' was not scored", id)
		}
	}

	return nil
}
