// Package api contains API contract definitions for the allocation merger.
// Version v1 represents the current stable API version.
package api

import (
	"mcmerge/pkg/contracts/domain"
)

// MergeSummaryResponse is the body of POST /api/merge/summary.
type MergeSummaryResponse struct {
	Filename string              `json:"filename"`
	Summary  domain.MergeSummary `json:"summary"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	Uptime    string `json:"uptime"`
	Timestamp string `json:"timestamp"`
}
