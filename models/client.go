package models

import (
	"time"
)

// Client is created lazily the first time a service arrives with client
// details; matched by (name, phone) on later services.
type Client struct {
	ID     uint   `gorm:"primaryKey"`
	Name   string `gorm:"not null;index:idx_client_name_phone,priority:1"`
	Phone  string `gorm:"not null;index:idx_client_name_phone,priority:2"`
	Email  string
	Status string `gorm:"type:varchar(20);default:'Active'"`

	Vehicles []ClientVehicle `gorm:"foreignKey:ClientID"`

	CreatedAt time.Time
}

// ClientVehicle links a plate to a client profile with descriptive
// attributes. One row per (client, plate).
type ClientVehicle struct {
	ID       uint   `gorm:"primaryKey"`
	ClientID uint   `gorm:"not null;uniqueIndex:idx_client_plate,priority:1"`
	Plate    string `gorm:"not null;index;uniqueIndex:idx_client_plate,priority:2"`
	Brand    string
	Model    string
	Color    string

	Client Client `gorm:"foreignKey:ClientID"`

	CreatedAt time.Time
}
