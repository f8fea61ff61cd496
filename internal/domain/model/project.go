package model

// ProjectInfo holds the portal-wide statistics shown on the landing page.
type ProjectInfo struct {
	ProcurementsCount int64 `json:"procurementsCount"`
	MembersCount      int64 `json:"membersCount"`
	BudgetAmount      int64 `json:"budgetAmount"`
}

// ProjectInfoEnvelope is the stable response shape of the project statistics proxy.
type ProjectInfoEnvelope struct {
	Data ProjectInfo `json:"data"`
}

// FallbackProjectInfo returns the statistics served when the backend cannot be reached.
func FallbackProjectInfo() ProjectInfo {
	return ProjectInfo{
		ProcurementsCount: 2450,
		MembersCount:      890,
		BudgetAmount:      156_000_000,
	}
}
