package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/roadside-assist/internal/domain"
)

// MechanicStore handles persistence for mechanic profiles.
type MechanicStore interface {
	Create(ctx context.Context, profile *domain.MechanicProfile) error
	GetByUserID(ctx context.Context, userID string) (*domain.MechanicProfile, error)
	Update(ctx context.Context, profile *domain.MechanicProfile) error
	UpdateLocation(ctx context.Context, userID string, lat, lng float64, at time.Time) (*domain.MechanicProfile, error)
	IncrementTotalJobs(ctx context.Context, userID string) error
	ListEligible(ctx context.Context) ([]domain.MechanicProfile, error)
	ListUnverified(ctx context.Context) ([]domain.MechanicProfile, error)
	SetVerified(ctx context.Context, userID string, verified bool) error
}

const mechanicColumns = `mp.id, mp.user_id, mp.specializations, mp.is_available, mp.is_verified,
               mp.current_latitude, mp.current_longitude, mp.rating, mp.total_jobs,
               mp.location_updated_at, mp.created_at, mp.updated_at`

type mechanicRepository struct {
	pool *pgxpool.Pool
}

// NewMechanicRepository instantiates the repository.
func NewMechanicRepository(pool *pgxpool.Pool) MechanicStore {
	return &mechanicRepository{pool: pool}
}

func (r *mechanicRepository) Create(ctx context.Context, profile *domain.MechanicProfile) error {
	const query = `
        INSERT INTO mechanic_profiles (user_id, specializations, is_available, is_verified, rating, total_jobs)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		profile.UserID,
		profile.Specializations,
		profile.Available,
		profile.Verified,
		profile.Rating,
		profile.TotalJobs,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
}

func (r *mechanicRepository) GetByUserID(ctx context.Context, userID string) (*domain.MechanicProfile, error) {
	query := fmt.Sprintf(`SELECT %s FROM mechanic_profiles mp WHERE mp.user_id=$1`, mechanicColumns)
	return r.fetchSingle(ctx, query, userID)
}

func (r *mechanicRepository) Update(ctx context.Context, profile *domain.MechanicProfile) error {
	const query = `
        UPDATE mechanic_profiles
        SET specializations=$1, is_available=$2, is_verified=$3, rating=$4, total_jobs=$5, updated_at=NOW()
        WHERE user_id=$6`
	cmd, err := r.pool.Exec(ctx, query,
		profile.Specializations,
		profile.Available,
		profile.Verified,
		profile.Rating,
		profile.TotalJobs,
		profile.UserID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mechanicRepository) UpdateLocation(ctx context.Context, userID string, lat, lng float64, at time.Time) (*domain.MechanicProfile, error) {
	query := fmt.Sprintf(`
        UPDATE mechanic_profiles mp
        SET current_latitude=$1, current_longitude=$2, location_updated_at=$3, updated_at=NOW()
        WHERE mp.user_id=$4
        RETURNING %s`, mechanicColumns)
	return r.fetchSingle(ctx, query, lat, lng, at, userID)
}

func (r *mechanicRepository) IncrementTotalJobs(ctx context.Context, userID string) error {
	const query = `UPDATE mechanic_profiles SET total_jobs=total_jobs+1, updated_at=NOW() WHERE user_id=$1`
	cmd, err := r.pool.Exec(ctx, query, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListEligible returns candidates satisfying the matching invariant:
// available, verified, owning account active and a known location. Ranking
// is done by the match engine, not here.
func (r *mechanicRepository) ListEligible(ctx context.Context) ([]domain.MechanicProfile, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM mechanic_profiles mp
        JOIN users u ON mp.user_id = u.id
        WHERE mp.is_available = true
          AND mp.is_verified = true
          AND u.status = 'ACTIVE'
          AND mp.current_latitude IS NOT NULL
          AND mp.current_longitude IS NOT NULL`, mechanicColumns)
	return r.fetchMany(ctx, query)
}

func (r *mechanicRepository) ListUnverified(ctx context.Context) ([]domain.MechanicProfile, error) {
	query := fmt.Sprintf(`SELECT %s FROM mechanic_profiles mp WHERE mp.is_verified = false ORDER BY mp.created_at ASC`, mechanicColumns)
	return r.fetchMany(ctx, query)
}

func (r *mechanicRepository) SetVerified(ctx context.Context, userID string, verified bool) error {
	const query = `UPDATE mechanic_profiles SET is_verified=$1, updated_at=NOW() WHERE user_id=$2`
	cmd, err := r.pool.Exec(ctx, query, verified, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mechanicRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.MechanicProfile, error) {
	var profile domain.MechanicProfile
	if err := scanMechanic(r.pool.QueryRow(ctx, query, args...), &profile); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &profile, nil
}

func (r *mechanicRepository) fetchMany(ctx context.Context, query string, args ...any) ([]domain.MechanicProfile, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.MechanicProfile
	for rows.Next() {
		var profile domain.MechanicProfile
		if err := scanMechanic(rows, &profile); err != nil {
			return nil, err
		}
		result = append(result, profile)
	}
	return result, rows.Err()
}

func scanMechanic(row pgx.Row, profile *domain.MechanicProfile) error {
	return row.Scan(
		&profile.ID,
		&profile.UserID,
		&profile.Specializations,
		&profile.Available,
		&profile.Verified,
		&profile.CurrentLatitude,
		&profile.CurrentLongitude,
		&profile.Rating,
		&profile.TotalJobs,
		&profile.LocationUpdatedAt,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
}
