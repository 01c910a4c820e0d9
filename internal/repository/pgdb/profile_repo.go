package pgdb

import (
	"context"
	"errors"

	"github.com/DRSN-tech/supplier-imports/pkg/e"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
)

// ProfileRepo читает роли пользователей из таблицы profiles.
type ProfileRepo struct {
	pool *pgxpool.Pool
}

func NewProfileRepo(pool *pgxpool.Pool) *ProfileRepo {
	return &ProfileRepo{pool: pool}
}

func (p *ProfileRepo) GetRole(ctx context.Context, userID string) (string, error) {
	var role *string
	err := p.pool.QueryRow(ctx, `SELECT role FROM profiles WHERE id::text = $1`, userID).Scan(&role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", e.ErrNotFound
		}
		return "", e.Mark(e.ErrPersistence, e.Wrap(whereami.WhereAmI(), err))
	}

	if role == nil {
		return "", nil
	}
	return *role, nil
}
