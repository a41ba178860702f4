package models

// Supplier represents a company money is owed to.
type Supplier struct {
	Base
	CNPJ          string `gorm:"size:18;uniqueIndex;not null" json:"cnpj"`
	LegalName     string `gorm:"size:200;not null" json:"legal_name"`
	TradeName     string `gorm:"size:200" json:"trade_name"`
	StateRegistry string `gorm:"size:20" json:"state_registry"`
	Address       string `gorm:"size:300" json:"address"`
	City          string `gorm:"size:100" json:"city"`
	State         string `gorm:"size:2" json:"state"`
	PostalCode    string `gorm:"size:9" json:"postal_code"`
	Phone         string `gorm:"size:20" json:"phone"`
	Email         string `gorm:"size:100" json:"email"`
	Active        bool   `gorm:"default:true" json:"active"`

	Payables []Payable `gorm:"foreignKey:SupplierID" json:"payables,omitempty"`
}
