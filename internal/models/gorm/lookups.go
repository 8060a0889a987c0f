package gorm

// Lookup tables referenced by aircraft rows. Managed outside the import
// engine; the validator only reads them.

type Manufacturer struct {
	ID   uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"column:name;type:varchar(100);not null;uniqueIndex" json:"name"`
}

func (Manufacturer) TableName() string {
	return "manufacturers"
}

type AircraftModel struct {
	ID             uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name           string `gorm:"column:name;type:varchar(100);not null;uniqueIndex" json:"name"`
	ManufacturerID *uint  `gorm:"column:manufacturer_id" json:"manufacturerId,omitempty"`

	// Relationships
	Manufacturer *Manufacturer `gorm:"foreignKey:ManufacturerID" json:"-"`
}

func (AircraftModel) TableName() string {
	return "aircraft_models"
}

type EngineType struct {
	ID   uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"column:name;type:varchar(100);not null;uniqueIndex" json:"name"`
}

func (EngineType) TableName() string {
	return "engine_types"
}

// All returns every model the schema migration has to know about.
func All() []interface{} {
	return []interface{}{
		&Manufacturer{},
		&AircraftModel{},
		&EngineType{},
		&Customer{},
		&Aircraft{},
		&AircraftTypeMapping{},
		&ImportLog{},
	}
}
