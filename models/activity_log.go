package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ActivityLog records every successful mutation: who did what to which
// row, with the request payload serialized as JSON. Written inside the
// same transaction as the mutation it describes.
type ActivityLog struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	Actor     string    `gorm:"type:varchar(100);not null"`
	Action    string    `gorm:"type:varchar(100);not null"`
	TableName string    `gorm:"type:varchar(50);not null"`
	RecordID  uint      `gorm:"index"`
	Payload   string    `gorm:"type:text"`
	CreatedAt time.Time
}

func (a *ActivityLog) BeforeCreate(tx *gorm.DB) (err error) {
	a.ID = uuid.New()
	return
}
