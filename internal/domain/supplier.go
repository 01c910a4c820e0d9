package domain

import "time"

const SupplierStatusActive = "active"

// Supplier описывает поставщика, от имени которого импортируются товары
type Supplier struct {
	ID          int64
	Name        string
	Status      string
	Website     string
	Description string
	CreatedAt   time.Time
}

func NewSupplier(name, website, description string) *Supplier {
	return &Supplier{
		Name:        name,
		Status:      SupplierStatusActive,
		Website:     website,
		Description: description,
	}
}
