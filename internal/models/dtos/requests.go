package dtos

import "encoding/json"

// ImportRequest is the JSON body of the validate and commit endpoints.
// Validate ignores the commit-only fields.
type ImportRequest struct {
	Content       string `json:"content"`
	Format        string `json:"format"`
	ConflictMode  string `json:"conflictMode,omitempty"`
	DefaultSource string `json:"defaultSource,omitempty"`

	Source            string          `json:"source,omitempty"`
	FileName          *string         `json:"fileName,omitempty"`
	OverrideConflicts bool            `json:"overrideConflicts"`
	Preview           json.RawMessage `json:"preview,omitempty"`
	TrustPreview      bool            `json:"trustPreview,omitempty"`
}

type MappingRuleRequest struct {
	Pattern       string `json:"pattern"`
	CanonicalType string `json:"canonicalType"`
	Priority      int    `json:"priority"`
	IsActive      *bool  `json:"isActive,omitempty"`
	Description   string `json:"description,omitempty"`
}

// Active defaults to true when the field is omitted.
func (r MappingRuleRequest) Active() bool {
	return r.IsActive == nil || *r.IsActive
}
