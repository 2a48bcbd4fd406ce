package entity

import "time"

// Department is the typed capability unit for workflow authorization and
// notification targeting. Route registration declares which departments may
// invoke each operation; no handler carries its own ad hoc list.
type Department string

const (
	DeptSales         Department = "sales"
	DeptProcurement   Department = "procurement"
	DeptInventory     Department = "inventory"
	DeptManufacturing Department = "manufacturing"
	DeptQuality       Department = "quality"
	DeptFinance       Department = "finance"
	DeptAdmin         Department = "admin"
)

// Valid reports whether d is one of the known departments.
func (d Department) Valid() bool {
	switch d {
	case DeptSales, DeptProcurement, DeptInventory, DeptManufacturing,
		DeptQuality, DeptFinance, DeptAdmin:
		return true
	}
	return false
}

// User is an operator account. Department drives both authorization and
// notification fan-out.
type User struct {
	ID           string     `json:"id" gorm:"primaryKey;size:32"`
	Username     string     `json:"username" gorm:"size:64;uniqueIndex;not null"`
	Name         string     `json:"name" gorm:"size:100;not null"`
	Email        string     `json:"email" gorm:"size:200"`
	PasswordHash string     `json:"-" gorm:"size:100;not null"`
	Department   Department `json:"department" gorm:"size:20;not null;index"`
	Status       string     `json:"status" gorm:"size:20;default:active"` // active/disabled
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}

const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)
