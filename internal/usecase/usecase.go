package usecase

import (
	"context"

	"github.com/google/uuid"
)

type ImportUC interface {
	ImportByURL(ctx context.Context, req *ImportByURLReq) (*ImportByURLRes, error)
	ImportBatch(ctx context.Context, req *ImportBatchReq) (*ImportBatchRes, error)
	SearchProvider(ctx context.Context, req *SearchReq) (*SearchRes, error)
	GetJob(ctx context.Context, jobID uuid.UUID) (*GetJobRes, error)
}

type AuthUC interface {
	AuthorizeAdmin(ctx context.Context, token string) (string, error)
}
