package converter

import (
	"time"

	"github.com/DRSN-tech/supplier-imports/internal/domain"
)

// ExternalProductConverter преобразует ExternalProduct в модель кэша и обратно.
type ExternalProductConverter struct{}

func (ExternalProductConverter) ToRedisModel(entity *domain.ExternalProduct, now time.Time) *ExternalProductRedisModel {
	if entity == nil {
		return nil
	}

	return &ExternalProductRedisModel{
		ExternalID:     entity.ExternalID,
		Name:           entity.Name,
		Description:    entity.Description,
		Price:          entity.Price,
		ImageURL:       entity.ImageURL,
		Category:       entity.Category,
		SupplierName:   entity.SupplierName,
		StockQuantity:  entity.StockQuantity,
		Currency:       entity.Currency,
		SourceURL:      entity.SourceURL,
		PriceEstimated: entity.PriceEstimated,
		CachedAt:       now,
	}
}

func (ExternalProductConverter) ToEntity(model *ExternalProductRedisModel) *domain.ExternalProduct {
	if model == nil {
		return nil
	}

	return &domain.ExternalProduct{
		ExternalID:     model.ExternalID,
		Name:           model.Name,
		Description:    model.Description,
		Price:          model.Price,
		ImageURL:       model.ImageURL,
		Category:       model.Category,
		SupplierName:   model.SupplierName,
		StockQuantity:  model.StockQuantity,
		Currency:       model.Currency,
		SourceURL:      model.SourceURL,
		PriceEstimated: model.PriceEstimated,
	}
}
