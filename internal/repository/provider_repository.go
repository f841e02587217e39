package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/roadside-assist/internal/domain"
)

// ProviderStore handles persistence for parts providers.
type ProviderStore interface {
	Create(ctx context.Context, provider *domain.PartsProvider) error
	GetByUserID(ctx context.Context, userID string) (*domain.PartsProvider, error)
	SetOpen(ctx context.Context, userID string, open bool) error
	ListOpenVerified(ctx context.Context) ([]domain.PartsProvider, error)
	ListUnverified(ctx context.Context) ([]domain.PartsProvider, error)
	SetVerified(ctx context.Context, userID string, verified bool) error
}

const providerColumns = `id, user_id, shop_name, address, latitude, longitude, is_open, is_verified, created_at, updated_at`

type providerRepository struct {
	pool *pgxpool.Pool
}

// NewProviderRepository instantiates the repository.
func NewProviderRepository(pool *pgxpool.Pool) ProviderStore {
	return &providerRepository{pool: pool}
}

func (r *providerRepository) Create(ctx context.Context, provider *domain.PartsProvider) error {
	const query = `
        INSERT INTO parts_providers (user_id, shop_name, address, latitude, longitude, is_open, is_verified)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		provider.UserID,
		provider.ShopName,
		provider.Address,
		provider.Latitude,
		provider.Longitude,
		provider.Open,
		provider.Verified,
	).Scan(&provider.ID, &provider.CreatedAt, &provider.UpdatedAt)
}

func (r *providerRepository) GetByUserID(ctx context.Context, userID string) (*domain.PartsProvider, error) {
	query := fmt.Sprintf(`SELECT %s FROM parts_providers WHERE user_id=$1`, providerColumns)
	var provider domain.PartsProvider
	if err := scanProvider(r.pool.QueryRow(ctx, query, userID), &provider); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &provider, nil
}

func (r *providerRepository) SetOpen(ctx context.Context, userID string, open bool) error {
	const query = `UPDATE parts_providers SET is_open=$1, updated_at=NOW() WHERE user_id=$2`
	cmd, err := r.pool.Exec(ctx, query, open, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *providerRepository) ListOpenVerified(ctx context.Context) ([]domain.PartsProvider, error) {
	query := fmt.Sprintf(`SELECT %s FROM parts_providers WHERE is_open = true AND is_verified = true`, providerColumns)
	return r.fetchMany(ctx, query)
}

func (r *providerRepository) ListUnverified(ctx context.Context) ([]domain.PartsProvider, error) {
	query := fmt.Sprintf(`SELECT %s FROM parts_providers WHERE is_verified = false ORDER BY created_at ASC`, providerColumns)
	return r.fetchMany(ctx, query)
}

func (r *providerRepository) SetVerified(ctx context.Context, userID string, verified bool) error {
	const query = `UPDATE parts_providers SET is_verified=$1, updated_at=NOW() WHERE user_id=$2`
	cmd, err := r.pool.Exec(ctx, query, verified, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *providerRepository) fetchMany(ctx context.Context, query string, args ...any) ([]domain.PartsProvider, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.PartsProvider
	for rows.Next() {
		var provider domain.PartsProvider
		if err := scanProvider(rows, &provider); err != nil {
			return nil, err
		}
		result = append(result, provider)
	}
	return result, rows.Err()
}

func scanProvider(row pgx.Row, provider *domain.PartsProvider) error {
	return row.Scan(
		&provider.ID,
		&provider.UserID,
		&provider.ShopName,
		&provider.Address,
		&provider.Latitude,
		&provider.Longitude,
		&provider.Open,
		&provider.Verified,
		&provider.CreatedAt,
		&provider.UpdatedAt,
	)
}
