package models

// VehicleType is reference data describing the kind and size of vehicle
// a service applies to (e.g. Sedan / Medium).
type VehicleType struct {
	ID          uint   `gorm:"primaryKey"`
	Kind        string `gorm:"not null"`
	Size        string `gorm:"type:varchar(20)"`
	Description string
	Status      string `gorm:"type:varchar(20);default:'Active'"`
}

// WashType is reference data for the wash packages on offer.
type WashType struct {
	ID          uint    `gorm:"primaryKey"`
	Name        string  `gorm:"not null"`
	Cost        float64 `gorm:"type:decimal(10,2);not null"`
	Description string
	Status      string `gorm:"type:varchar(20);default:'Active'"`
}
