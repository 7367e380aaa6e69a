package models

import (
	"time"
)

type ConsumableType struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"not null"`
	Description string
	Status      string `gorm:"type:varchar(20);default:'Active'"`
}

type Consumable struct {
	ID               uint    `gorm:"primaryKey"`
	Name             string  `gorm:"not null"`
	UnitPrice        float64 `gorm:"type:decimal(10,2);not null"`
	ConsumableTypeID uint    `gorm:"index;not null"`
	Status           string  `gorm:"type:varchar(20);default:'Active'"`

	ConsumableType ConsumableType   `gorm:"foreignKey:ConsumableTypeID"`
	Inventory      *InventoryRecord `gorm:"foreignKey:ConsumableID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// InventoryRecord is the stock ledger for one consumable. Stock must never
// go negative: all debits go through guarded conditional updates.
type InventoryRecord struct {
	ID           uint `gorm:"primaryKey"`
	ConsumableID uint `gorm:"uniqueIndex;not null"`
	Stock        int  `gorm:"not null;default:0"`
	MinThreshold int  `gorm:"not null;default:10"`

	UpdatedAt time.Time
}

func (r InventoryRecord) IsLowStock() bool {
	return r.Stock < r.MinThreshold
}
