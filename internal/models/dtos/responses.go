package dtos

import "time"

type APIResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	ResponseTime string `json:"response_time"`
	Data         any    `json:"data,omitempty"`
}

type CommitSummary struct {
	Added   int `json:"added"`
	Updated int `json:"updated"`
	Skipped int `json:"skipped"`
}

// CommitResult reports one commit attempt. LogID points at the audit row,
// which exists for failed attempts too.
type CommitResult struct {
	Success  bool          `json:"success"`
	LogID    string        `json:"logId"`
	Summary  CommitSummary `json:"summary"`
	Errors   []string      `json:"errors,omitempty"`
	Warnings []string      `json:"warnings,omitempty"`
}

type BackfillResponse struct {
	Scanned int `json:"scanned"`
	Changed int `json:"changed"`
}

type ResetRulesResponse struct {
	Rules int `json:"rules"`
}

type ServiceStatus struct {
	Status  string `json:"status"`
	Details string `json:"details"`
}

type HealthCheckResponse struct {
	Status   string                   `json:"status"`
	Services map[string]ServiceStatus `json:"services"`
	UpSince  time.Time                `json:"up_since"`
	Uptime   string                   `json:"uptime"`
}
