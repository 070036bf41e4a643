package proposal

import (
	"github.com/andresuchdata/autopo-proposals/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	WarningCashImpact = "Total cash impact exceeds $100,000"
	WarningLeadTime   = "Some suppliers have lead times exceeding 60 days"
	WarningMOQ        = "Some quantities significantly exceed suggested amounts due to MOQ requirements"

	maxLeadTimeDays = 60
	moqOverageRatio = 2
)

var cashImpactLimit = decimal.NewFromInt(100000)

// ComputeImpact aggregates a selection of proposals. It is recomputed in full on every
// call; an empty selection gives a zero summary with no warnings.
func ComputeImpact(selected []domain.Proposal) domain.ImpactSummary {
	summary := domain.ImpactSummary{
		TotalCashImpact: decimal.Zero,
		Warnings:        []string{},
	}

	moqOverage := false
	for _, p := range selected {
		summary.TotalCashImpact = summary.TotalCashImpact.Add(p.CashImpact)
		summary.TotalLeadTimeDays = max(summary.TotalLeadTimeDays, p.LeadTimeDays)
		summary.TotalStockIncrease += p.AdjustedQty
		if p.AdjustedQty > p.SuggestedQty*moqOverageRatio {
			moqOverage = true
		}
	}
	summary.AffectedProducts = len(selected)

	if summary.TotalCashImpact.GreaterThan(cashImpactLimit) {
		summary.Warnings = append(summary.Warnings, WarningCashImpact)
	}
	if summary.TotalLeadTimeDays > maxLeadTimeDays {
		summary.Warnings = append(summary.Warnings, WarningLeadTime)
	}
	if moqOverage {
		summary.Warnings = append(summary.Warnings, WarningMOQ)
	}

	return summary
}
