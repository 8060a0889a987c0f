package gorm

import (
	"time"

	"skyline/opsboard/internal/constants"
)

// Aircraft is a tail-level reference row. Registration is the natural key.
// OperatorRaw and OperatorMatchConfidence keep the last fuzzy-match attempt
// independently of the resolved OperatorID.
type Aircraft struct {
	ID                      uint                  `gorm:"column:id;primaryKey;autoIncrement" json:"id,omitempty"`
	Registration            string                `gorm:"column:registration;type:varchar(20);not null;uniqueIndex" json:"registration"`
	AircraftType            string                `gorm:"column:aircraft_type;type:varchar(100)" json:"aircraftType,omitempty"`
	CanonicalType           string                `gorm:"column:canonical_type;type:varchar(20);index" json:"canonicalType"`
	ModelID                 *uint                 `gorm:"column:model_id" json:"modelId,omitempty"`
	EngineTypeID            *uint                 `gorm:"column:engine_type_id" json:"engineTypeId,omitempty"`
	SerialNumber            string                `gorm:"column:serial_number;type:varchar(50)" json:"serialNumber,omitempty"`
	OperatorID              *uint                 `gorm:"column:operator_id;index" json:"operatorId,omitempty"`
	OperatorRaw             string                `gorm:"column:operator_raw;type:varchar(255)" json:"operatorRaw,omitempty"`
	OperatorMatchConfidence int                   `gorm:"column:operator_match_confidence;default:0" json:"operatorMatchConfidence"`
	SPID                    *int                  `gorm:"column:sp_id;index" json:"spId,omitempty"`
	GUID                    *string               `gorm:"column:guid;type:varchar(64);index" json:"guid,omitempty"`
	Source                  constants.TrustSource `gorm:"column:source;type:varchar(20);not null;default:imported" json:"source"`
	IsActive                bool                  `gorm:"column:is_active;default:true" json:"isActive"`
	Notes                   string                `gorm:"column:notes;type:text" json:"notes,omitempty"`
	CreatedAt               time.Time             `gorm:"column:created_at;autoCreateTime" json:"createdAt,omitempty"`
	UpdatedAt               time.Time             `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt,omitempty"`

	// Relationships
	Operator *Customer `gorm:"foreignKey:OperatorID" json:"-"`
}

// TableName specifies the table name for GORM
func (Aircraft) TableName() string {
	return "aircraft"
}
