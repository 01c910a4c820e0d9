package domain

import "time"

// Product описывает товар каталога, созданный импортом от внешнего поставщика
type Product struct {
	ID            int64
	Name          string
	Slug          string
	Description   string
	Price         int64 // Итоговая цена в целых единицах валюты
	ImageURL      string
	CategoryID    int64
	SupplierID    int64
	StockQuantity int
	IsExternal    bool
	ExternalID    string
	NeedsReview   bool // Цена не найдена на странице поставщика и подставлена по умолчанию
	CreatedAt     time.Time
	UpdatedAt     *time.Time
}

func NewExternalProduct(
	name, description string,
	price int64,
	imageURL string,
	categoryID, supplierID int64,
	stock int,
	externalID string,
	needsReview bool,
) *Product {
	return &Product{
		Name:          name,
		Slug:          ProductSlug(name, externalID),
		Description:   description,
		Price:         price,
		ImageURL:      imageURL,
		CategoryID:    categoryID,
		SupplierID:    supplierID,
		StockQuantity: stock,
		IsExternal:    true,
		ExternalID:    externalID,
		NeedsReview:   needsReview,
	}
}
