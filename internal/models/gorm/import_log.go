package gorm

import (
	"time"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"
)

// ImportLog is the append-only audit row written once per commit attempt.
// Warnings and Errors hold JSON-encoded string arrays.
type ImportLog struct {
	ID             string    `gorm:"column:id;primaryKey;type:varchar(36)" db:"id" json:"id"`
	ImportedAt     time.Time `gorm:"column:imported_at;not null;index" db:"imported_at" json:"importedAt"`
	DataType       string    `gorm:"column:data_type;type:varchar(20);not null;index" db:"data_type" json:"dataType"`
	Source         string    `gorm:"column:source;type:varchar(20);not null" db:"source" json:"source"`
	Format         string    `gorm:"column:format;type:varchar(10);not null" db:"format" json:"format"`
	FileName       *string   `gorm:"column:file_name;type:varchar(255)" db:"file_name" json:"fileName,omitempty"`
	TrustLevel     string    `gorm:"column:trust_level;type:varchar(20)" db:"trust_level" json:"trustLevel"`
	RecordsTotal   int       `gorm:"column:records_total" db:"records_total" json:"recordsTotal"`
	RecordsAdded   int       `gorm:"column:records_added" db:"records_added" json:"recordsAdded"`
	RecordsUpdated int       `gorm:"column:records_updated" db:"records_updated" json:"recordsUpdated"`
	RecordsSkipped int       `gorm:"column:records_skipped" db:"records_skipped" json:"recordsSkipped"`
	ImportedBy     string    `gorm:"column:imported_by;type:varchar(100);not null" db:"imported_by" json:"importedBy"`
	Status         string    `gorm:"column:status;type:varchar(10);not null" db:"status" json:"status"`
	Warnings       string    `gorm:"column:warnings;type:text" db:"warnings" json:"warnings"`
	Errors         string    `gorm:"column:errors;type:text" db:"errors" json:"errors"`
}

// TableName specifies the table name for GORM
func (ImportLog) TableName() string {
	return "import_logs"
}

// BeforeCreate assigns the id in Go so the table works on sqlite as well.
func (l *ImportLog) BeforeCreate(tx *gormlib.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.ImportedAt.IsZero() {
		l.ImportedAt = time.Now().UTC()
	}
	return nil
}
