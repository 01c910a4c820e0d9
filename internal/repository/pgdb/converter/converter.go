package converter

import (
	"encoding/json"
	"fmt"

	"github.com/DRSN-tech/supplier-imports/internal/domain"
	"github.com/DRSN-tech/supplier-imports/internal/usecase"
)

// ProductConverter преобразует сущности Product между domain и моделью PostgreSQL.
type ProductConverter struct{}

func (ProductConverter) ToModel(entity *domain.Product) *ProductModel {
	if entity == nil {
		return nil
	}

	return &ProductModel{
		ID:            entity.ID,
		Name:          entity.Name,
		Slug:          entity.Slug,
		Description:   entity.Description,
		Price:         entity.Price,
		ImageURL:      entity.ImageURL,
		CategoryID:    entity.CategoryID,
		SupplierID:    entity.SupplierID,
		StockQuantity: entity.StockQuantity,
		IsExternal:    entity.IsExternal,
		ExternalID:    nullableString(entity.ExternalID),
		NeedsReview:   entity.NeedsReview,
		CreatedAt:     entity.CreatedAt,
		UpdatedAt:     entity.UpdatedAt,
	}
}

func (ProductConverter) ToEntity(model *ProductModel) *domain.Product {
	if model == nil {
		return nil
	}

	return &domain.Product{
		ID:            model.ID,
		Name:          model.Name,
		Slug:          model.Slug,
		Description:   model.Description,
		Price:         model.Price,
		ImageURL:      model.ImageURL,
		CategoryID:    model.CategoryID,
		SupplierID:    model.SupplierID,
		StockQuantity: model.StockQuantity,
		IsExternal:    model.IsExternal,
		ExternalID:    derefString(model.ExternalID),
		NeedsReview:   model.NeedsReview,
		CreatedAt:     model.CreatedAt,
		UpdatedAt:     model.UpdatedAt,
	}
}

// CategoryConverter преобразует сущности Category между domain и моделью PostgreSQL.
type CategoryConverter struct{}

func (CategoryConverter) ToModel(entity *domain.Category) *CategoryModel {
	if entity == nil {
		return nil
	}

	return &CategoryModel{
		ID:        entity.ID,
		Name:      entity.Name,
		Slug:      entity.Slug,
		CreatedAt: entity.CreatedAt,
		UpdatedAt: entity.UpdatedAt,
	}
}

func (CategoryConverter) ToEntity(model *CategoryModel) *domain.Category {
	if model == nil {
		return nil
	}

	return &domain.Category{
		ID:        model.ID,
		Name:      model.Name,
		Slug:      model.Slug,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

// SupplierConverter преобразует сущности Supplier между domain и моделью PostgreSQL.
type SupplierConverter struct{}

func (SupplierConverter) ToModel(entity *domain.Supplier) *SupplierModel {
	if entity == nil {
		return nil
	}

	return &SupplierModel{
		ID:          entity.ID,
		Name:        entity.Name,
		Status:      entity.Status,
		Website:     nullableString(entity.Website),
		Description: nullableString(entity.Description),
		CreatedAt:   entity.CreatedAt,
	}
}

func (SupplierConverter) ToEntity(model *SupplierModel) *domain.Supplier {
	if model == nil {
		return nil
	}

	return &domain.Supplier{
		ID:          model.ID,
		Name:        model.Name,
		Status:      model.Status,
		Website:     derefString(model.Website),
		Description: derefString(model.Description),
		CreatedAt:   model.CreatedAt,
	}
}

// ImportJobConverter преобразует задачи импорта. Правила ценообразования хранятся в JSONB.
type ImportJobConverter struct{}

func (ImportJobConverter) ToModel(entity *domain.ImportJob) (*ImportJobModel, error) {
	if entity == nil {
		return nil, nil
	}

	var rules []byte
	if entity.PricingRules != nil {
		raw, err := json.Marshal(entity.PricingRules)
		if err != nil {
			return nil, fmt.Errorf("marshal pricing rules: %w", err)
		}
		rules = raw
	}

	return &ImportJobModel{
		ID:           entity.ID,
		UserID:       nullableString(entity.UserID),
		Supplier:     entity.Supplier,
		Status:       string(entity.Status),
		PricingRules: rules,
		SuccessCount: entity.SuccessCount,
		FailedCount:  entity.FailedCount,
		CreatedAt:    entity.CreatedAt,
		FinishedAt:   entity.FinishedAt,
	}, nil
}

func (ImportJobConverter) ToEntity(model *ImportJobModel) (*domain.ImportJob, error) {
	if model == nil {
		return nil, nil
	}

	var rules *domain.PricingRules
	if len(model.PricingRules) > 0 && string(model.PricingRules) != "null" {
		rules = &domain.PricingRules{}
		if err := json.Unmarshal(model.PricingRules, rules); err != nil {
			return nil, fmt.Errorf("unmarshal pricing rules: %w", err)
		}
	}

	return &domain.ImportJob{
		ID:           model.ID,
		UserID:       derefString(model.UserID),
		Supplier:     model.Supplier,
		Status:       domain.JobStatus(model.Status),
		PricingRules: rules,
		SuccessCount: model.SuccessCount,
		FailedCount:  model.FailedCount,
		CreatedAt:    model.CreatedAt,
		FinishedAt:   model.FinishedAt,
	}, nil
}

// ImportJobItemConverter преобразует позиции задач импорта.
type ImportJobItemConverter struct{}

func (ImportJobItemConverter) ToModel(entity *domain.ImportJobItem) *ImportJobItemModel {
	if entity == nil {
		return nil
	}

	return &ImportJobItemModel{
		ID:         entity.ID,
		JobID:      entity.JobID,
		ExternalID: entity.ExternalID,
		Name:       entity.Name,
		Status:     string(entity.Status),
		Raw:        entity.Raw,
		Error:      entity.Error,
		ProductID:  entity.ProductID,
		CreatedAt:  entity.CreatedAt,
		UpdatedAt:  entity.UpdatedAt,
	}
}

func (ImportJobItemConverter) ToEntity(model *ImportJobItemModel) *domain.ImportJobItem {
	if model == nil {
		return nil
	}

	return &domain.ImportJobItem{
		ID:         model.ID,
		JobID:      model.JobID,
		ExternalID: model.ExternalID,
		Name:       model.Name,
		Status:     domain.ItemStatus(model.Status),
		Raw:        model.Raw,
		Error:      model.Error,
		ProductID:  model.ProductID,
		CreatedAt:  model.CreatedAt,
		UpdatedAt:  model.UpdatedAt,
	}
}

// OutboxEventConverter преобразует сущности OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter struct{}

func (OutboxEventConverter) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	if entity == nil {
		return nil
	}

	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   string(entity.EventType),
		AggregateID: entity.AggregateID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (OutboxEventConverter) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	if model == nil {
		return nil
	}

	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   usecase.OutboxEventType(model.EventType),
		AggregateID: model.AggregateID,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (c OutboxEventConverter) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	res := make([]*usecase.OutboxEvent, 0, len(models))
	for _, m := range models {
		res = append(res, c.ToEntity(m))
	}
	return res
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
