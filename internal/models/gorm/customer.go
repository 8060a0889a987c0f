package gorm

import (
	"time"

	"skyline/opsboard/internal/constants"
)

// Customer is an operator / airline reference row. Name is the natural key.
type Customer struct {
	ID        uint                  `gorm:"column:id;primaryKey;autoIncrement" json:"id,omitempty"`
	Name      string                `gorm:"column:name;type:varchar(255);not null;uniqueIndex" json:"name"`
	ShortName string                `gorm:"column:short_name;type:varchar(50)" json:"shortName,omitempty"`
	Color     string                `gorm:"column:color;type:varchar(7)" json:"color,omitempty"`
	SPID      *int                  `gorm:"column:sp_id;index" json:"spId,omitempty"`
	GUID      *string               `gorm:"column:guid;type:varchar(64);index" json:"guid,omitempty"`
	Source    constants.TrustSource `gorm:"column:source;type:varchar(20);not null;default:imported" json:"source"`
	IsActive  bool                  `gorm:"column:is_active;default:true" json:"isActive"`
	CreatedAt time.Time             `gorm:"column:created_at;autoCreateTime" json:"createdAt,omitempty"`
	UpdatedAt time.Time             `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt,omitempty"`
}

// TableName specifies the table name for GORM
func (Customer) TableName() string {
	return "customers"
}
