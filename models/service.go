package models

import (
	"time"
)

// Service statuses. A service starts as Received and moves exactly once
// to Completed or Cancelled; both are terminal.
const (
	StatusReceived  = "Received"
	StatusCompleted = "Completed"
	StatusCancelled = "Cancelled"
)

type Service struct {
	ID   uint      `gorm:"primaryKey"`
	Date time.Time `gorm:"type:date;index;not null"`

	ReceivedByID  uint `gorm:"index;not null"`
	WashedByID    uint `gorm:"index;not null"`
	VehicleTypeID uint `gorm:"not null"`
	WashTypeID    uint `gorm:"not null"`

	ReceivedAt  time.Time `gorm:"not null"`
	DeliveredAt *time.Time

	Price float64 `gorm:"type:decimal(10,2);not null"`
	Plate string  `gorm:"index;not null"`
	Notes string
	// Status transitions are guarded by conditional updates; see services.Lifecycle.
	Status string `gorm:"type:varchar(20);default:'Received';index"`

	ReceivedBy  Employee    `gorm:"foreignKey:ReceivedByID"`
	WashedBy    Employee    `gorm:"foreignKey:WashedByID"`
	VehicleType VehicleType `gorm:"foreignKey:VehicleTypeID"`
	WashType    WashType    `gorm:"foreignKey:WashTypeID"`

	Consumables []ServiceConsumable `gorm:"foreignKey:ServiceID"`
	Checklist   *Checklist          `gorm:"foreignKey:ServiceID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ServiceConsumable records one consumption of a consumable against a
// service. Rows are never deleted; cancellation credits stock back instead.
type ServiceConsumable struct {
	ID           uint `gorm:"primaryKey"`
	ServiceID    uint `gorm:"index;not null"`
	ConsumableID uint `gorm:"index;not null"`
	Quantity     int  `gorm:"not null"`

	Consumable Consumable `gorm:"foreignKey:ConsumableID"`
}

// Checklist captures the vehicle's condition at intake. One per service,
// written at creation time only.
type Checklist struct {
	ID        uint `gorm:"primaryKey"`
	ServiceID uint `gorm:"uniqueIndex;not null"`

	Scratches    bool
	Dents        bool
	Valuables    string
	FuelLevel    string
	Mileage      int
	OtherDetails string

	CreatedAt time.Time
}
