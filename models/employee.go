package models

import (
	"time"
)

type Employee struct {
	ID        uint      `gorm:"primaryKey"`
	Code      string    `gorm:"uniqueIndex;not null"`
	FirstName string    `gorm:"not null"`
	LastName  string    `gorm:"not null"`
	BirthDate time.Time `gorm:"type:date"`
	Status    string    `gorm:"type:varchar(20);default:'Active'"`

	Shifts []Shift `gorm:"foreignKey:EmployeeID"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

// WorkSchedule is a reusable time window (e.g. 08:00-16:00) that shifts
// reference. Times are stored as HH:MM:SS strings.
type WorkSchedule struct {
	ID        uint   `gorm:"primaryKey"`
	StartTime string `gorm:"type:varchar(8);not null"`
	EndTime   string `gorm:"type:varchar(8);not null"`
	Status    string `gorm:"type:varchar(20);default:'Active'"`
}

// Shift assigns an employee to a work schedule on a given weekday.
// At most one shift per employee per day.
type Shift struct {
	ID             uint   `gorm:"primaryKey"`
	EmployeeID     uint   `gorm:"index;not null;uniqueIndex:idx_employee_day,priority:1"`
	WorkScheduleID uint   `gorm:"not null"`
	Day            string `gorm:"type:varchar(10);not null;uniqueIndex:idx_employee_day,priority:2"`

	WorkSchedule WorkSchedule `gorm:"foreignKey:WorkScheduleID"`
}
