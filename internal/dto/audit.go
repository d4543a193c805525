package dto

import "github.com/SscSPs/contractor_ledger/internal/core/domain"

// AuditResponse wraps a reconciliation report with a summary count.
type AuditResponse struct {
	Clean        bool               `json:"clean"`
	FindingCount int                `json:"findingCount"`
	Report       domain.AuditReport `json:"report"`
}

// ToAuditResponse converts a domain.AuditReport to its response DTO.
func ToAuditResponse(r *domain.AuditReport) AuditResponse {
	return AuditResponse{
		Clean:        !r.HasFindings(),
		FindingCount: r.FindingCount(),
		Report:       *r,
	}
}
