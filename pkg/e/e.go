package e

import "fmt"

var (
	// Внутренние ошибки с транзакциями
	ErrTransactionNotFound = fmt.Errorf("transaction not found")

	// 400 Bad Request
	ErrValidation           = fmt.Errorf("validation error")
	ErrInvalidJSON          = fmt.Errorf("%w: invalid json body", ErrValidation)
	ErrMissingURL           = fmt.Errorf("%w: url is required", ErrValidation)
	ErrInvalidURL           = fmt.Errorf("%w: url is invalid", ErrValidation)
	ErrMissingSupplierLabel = fmt.Errorf("%w: supplierLabel is required", ErrValidation)
	ErrNoCandidates         = fmt.Errorf("%w: products are required", ErrValidation)
	ErrMissingProvider      = fmt.Errorf("%w: provider is required", ErrValidation)
	ErrInvalidPricingRules  = fmt.Errorf("%w: invalid pricing rules", ErrValidation)
	ErrInvalidJobID         = fmt.Errorf("%w: invalid job id", ErrValidation)
	ErrUnsupportedProvider  = fmt.Errorf("unsupported provider")
	ErrUnsupportedMediaType = fmt.Errorf("unsupported media type")

	// Ошибки отдельных позиций пакетного импорта
	ErrCandidateMissingID    = fmt.Errorf("external_id is required")
	ErrCandidateMissingName  = fmt.Errorf("name is required")
	ErrCandidateInvalidPrice = fmt.Errorf("price must not be negative")

	// 401 Unauthorized
	ErrUnauthorized = fmt.Errorf("unauthorized")

	// 404 Not Found
	ErrNotFound    = fmt.Errorf("not found")
	ErrJobNotFound = fmt.Errorf("import job %w", ErrNotFound)

	// 409 Conflict. Текст сохраняется в import_job_items.error как есть.
	ErrDuplicateItem = fmt.Errorf("Already exists")

	// Страница поставщика или изображение недоступны
	ErrFetch = fmt.Errorf("fetch failed")

	// 500 Internal Server Error
	ErrPersistence          = fmt.Errorf("persistence error")
	ErrInternalServerError  = fmt.Errorf("internal server error")
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}

// Mark помечает ошибку err сентинелом kind, сохраняя обе цепочки для errors.Is.
func Mark(kind error, err error) error {
	if err == nil {
		return nil
	}

	return fmt.Errorf("%w: %w", kind, err)
}
