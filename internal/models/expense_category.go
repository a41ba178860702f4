package models

// ExpenseCategory classifies what a payable was incurred for.
type ExpenseCategory struct {
	Base
	Name        string `gorm:"size:100;uniqueIndex;not null" json:"name"`
	Description string `json:"description"`
	Active      bool   `gorm:"default:true" json:"active"`

	Payables []Payable `gorm:"foreignKey:CategoryID" json:"payables,omitempty"`
}
