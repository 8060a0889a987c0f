package gorm

import "time"

// AircraftTypeMapping is one canonicalization rule: raw aircraft type (or
// registration) pattern -> canonical family. Rules are evaluated by priority
// descending, then by ID ascending (insertion order).
type AircraftTypeMapping struct {
	ID            uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Pattern       string    `gorm:"column:pattern;type:varchar(100);not null" json:"pattern"`
	CanonicalType string    `gorm:"column:canonical_type;type:varchar(20);not null" json:"canonicalType"`
	Priority      int       `gorm:"column:priority;not null;default:0;index" json:"priority"`
	IsActive      bool      `gorm:"column:is_active;not null" json:"isActive"`
	Description   string    `gorm:"column:description;type:varchar(255)" json:"description,omitempty"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (AircraftTypeMapping) TableName() string {
	return "aircraft_type_mappings"
}
