package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type JobStatus string

const (
	JobRunning JobStatus = "running"
	JobSuccess JobStatus = "success"
	JobPartial JobStatus = "partial"
	JobFailed  JobStatus = "failed"
)

type ItemStatus string

const (
	ItemPending ItemStatus = "pending"
	ItemSuccess ItemStatus = "success"
	ItemFailed  ItemStatus = "failed"
)

// ImportJob — аудит-запись одного пакетного импорта.
// Создаётся в статусе running и обновляется один раз при завершении.
type ImportJob struct {
	ID           uuid.UUID
	UserID       string
	Supplier     string
	Status       JobStatus
	PricingRules *PricingRules
	SuccessCount int
	FailedCount  int
	CreatedAt    time.Time
	FinishedAt   *time.Time
}

func NewImportJob(userID, supplier string, rules *PricingRules) *ImportJob {
	return &ImportJob{
		ID:           uuid.New(),
		UserID:       userID,
		Supplier:     supplier,
		Status:       JobRunning,
		PricingRules: rules,
	}
}

// Finish фиксирует счётчики и итоговый статус задачи.
func (j *ImportJob) Finish(success, failed int, at time.Time) {
	j.SuccessCount = success
	j.FailedCount = failed
	j.Status = FinalStatus(success, failed)
	j.FinishedAt = &at
}

// FinalStatus: success без ошибок, failed без успехов, иначе partial.
func FinalStatus(success, failed int) JobStatus {
	switch {
	case failed == 0:
		return JobSuccess
	case success == 0:
		return JobFailed
	default:
		return JobPartial
	}
}

// ImportJobItem — результат обработки одного кандидата внутри задачи.
type ImportJobItem struct {
	ID         uuid.UUID
	JobID      uuid.UUID
	ExternalID string
	Name       string
	Status     ItemStatus
	Raw        json.RawMessage
	Error      *string
	ProductID  *int64
	CreatedAt  time.Time
	UpdatedAt  *time.Time
}

func NewImportJobItem(jobID uuid.UUID, candidate *ExternalProduct) (*ImportJobItem, error) {
	raw, err := json.Marshal(candidate)
	if err != nil {
		return nil, err
	}

	return &ImportJobItem{
		ID:         uuid.New(),
		JobID:      jobID,
		ExternalID: candidate.ExternalID,
		Name:       candidate.Name,
		Status:     ItemPending,
		Raw:        raw,
	}, nil
}
