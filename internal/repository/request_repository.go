package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/roadside-assist/internal/domain"
)

// TransitionPrecondition is the guard TryTransition verifies against the
// live record before applying a mutation. Zero-valued fields are not
// checked.
type TransitionPrecondition struct {
	Status             domain.RequestStatus
	MechanicUnassigned bool
	MechanicID         *string
	NotTerminal        bool
}

// TransitionMutation describes the new state committed when the
// precondition holds. Status is always written; pointer fields are written
// when non-nil, Clear flags write NULL.
type TransitionMutation struct {
	Status                domain.RequestStatus
	AssignMechanic        *string
	ClearMechanic         bool
	AcceptedAt            *time.Time
	ClearAcceptedAt       bool
	StartedAt             *time.Time
	CompletedAt           *time.Time
	EstimatedArrival      *time.Time
	ClearEstimatedArrival bool
}

// RequestStore owns ServiceRequest records. TryTransition is the single
// serialization point for concurrent writers of one record: the guard check
// and the mutation commit are one atomic conditional update, so at most one
// of any set of racing transitions can succeed.
type RequestStore interface {
	Create(ctx context.Context, request *domain.ServiceRequest) error
	GetByID(ctx context.Context, id string) (*domain.ServiceRequest, error)
	TryTransition(ctx context.Context, id string, pre TransitionPrecondition, mut TransitionMutation) (*domain.ServiceRequest, error)
	FindActiveByRequester(ctx context.Context, requesterID string) (*domain.ServiceRequest, error)
	ListByRequester(ctx context.Context, requesterID string) ([]domain.ServiceRequest, error)
	ListByMechanic(ctx context.Context, mechanicID string) ([]domain.ServiceRequest, error)
	ListActiveByMechanic(ctx context.Context, mechanicID string) ([]domain.ServiceRequest, error)
	ListPendingUnassigned(ctx context.Context) ([]domain.ServiceRequest, error)
}

const requestColumns = `id, requester_id, mechanic_id, issue_type, description, latitude, longitude, address,
               status, estimated_arrival, created_at, accepted_at, started_at, completed_at, updated_at`

type requestRepository struct {
	pool *pgxpool.Pool
}

// NewRequestRepository instantiates the Postgres-backed store.
func NewRequestRepository(pool *pgxpool.Pool) RequestStore {
	return &requestRepository{pool: pool}
}

func (r *requestRepository) Create(ctx context.Context, request *domain.ServiceRequest) error {
	const query = `
        INSERT INTO service_requests (requester_id, issue_type, description, latitude, longitude, address, status)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		request.RequesterID,
		request.IssueType,
		request.Description,
		request.Latitude,
		request.Longitude,
		request.Address,
		request.Status,
	).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)
}

func (r *requestRepository) GetByID(ctx context.Context, id string) (*domain.ServiceRequest, error) {
	query := fmt.Sprintf(`SELECT %s FROM service_requests WHERE id=$1`, requestColumns)
	return r.fetchSingle(ctx, query, id)
}

// TryTransition commits the mutation with a single conditional UPDATE whose
// WHERE clause encodes the precondition. Zero rows updated means another
// writer got there first (ErrConflict) or the id is unknown (ErrNotFound).
func (r *requestRepository) TryTransition(ctx context.Context, id string, pre TransitionPrecondition, mut TransitionMutation) (*domain.ServiceRequest, error) {
	sets := []string{}
	args := []any{}

	args = append(args, mut.Status)
	sets = append(sets, fmt.Sprintf("status=$%d", len(args)))
	switch {
	case mut.AssignMechanic != nil:
		args = append(args, *mut.AssignMechanic)
		sets = append(sets, fmt.Sprintf("mechanic_id=$%d", len(args)))
	case mut.ClearMechanic:
		sets = append(sets, "mechanic_id=NULL")
	}
	if mut.AcceptedAt != nil {
		args = append(args, *mut.AcceptedAt)
		sets = append(sets, fmt.Sprintf("accepted_at=$%d", len(args)))
	} else if mut.ClearAcceptedAt {
		sets = append(sets, "accepted_at=NULL")
	}
	if mut.StartedAt != nil {
		args = append(args, *mut.StartedAt)
		sets = append(sets, fmt.Sprintf("started_at=$%d", len(args)))
	}
	if mut.CompletedAt != nil {
		args = append(args, *mut.CompletedAt)
		sets = append(sets, fmt.Sprintf("completed_at=$%d", len(args)))
	}
	if mut.EstimatedArrival != nil {
		args = append(args, *mut.EstimatedArrival)
		sets = append(sets, fmt.Sprintf("estimated_arrival=$%d", len(args)))
	} else if mut.ClearEstimatedArrival {
		sets = append(sets, "estimated_arrival=NULL")
	}
	sets = append(sets, "updated_at=NOW()")

	args = append(args, id)
	clauses := []string{fmt.Sprintf("id=$%d", len(args))}
	if pre.Status != "" {
		args = append(args, pre.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if pre.MechanicUnassigned {
		clauses = append(clauses, "mechanic_id IS NULL")
	}
	if pre.MechanicID != nil {
		args = append(args, *pre.MechanicID)
		clauses = append(clauses, fmt.Sprintf("mechanic_id=$%d", len(args)))
	}
	if pre.NotTerminal {
		clauses = append(clauses, "status NOT IN ('COMPLETED','CANCELLED')")
	}

	query := fmt.Sprintf(`UPDATE service_requests SET %s WHERE %s RETURNING %s`,
		strings.Join(sets, ", "), strings.Join(clauses, " AND "), requestColumns)

	updated, err := r.fetchSingle(ctx, query, args...)
	if err == nil {
		return updated, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	// Distinguish an unknown id from a lost race.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrConflict
}

func (r *requestRepository) FindActiveByRequester(ctx context.Context, requesterID string) (*domain.ServiceRequest, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM service_requests
        WHERE requester_id=$1 AND status NOT IN ('COMPLETED','CANCELLED')
        ORDER BY created_at DESC
        LIMIT 1`, requestColumns)
	return r.fetchSingle(ctx, query, requesterID)
}

func (r *requestRepository) ListByRequester(ctx context.Context, requesterID string) ([]domain.ServiceRequest, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM service_requests
        WHERE requester_id=$1
        ORDER BY created_at DESC`, requestColumns)
	return r.fetchMany(ctx, query, requesterID)
}

func (r *requestRepository) ListByMechanic(ctx context.Context, mechanicID string) ([]domain.ServiceRequest, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM service_requests
        WHERE mechanic_id=$1
        ORDER BY created_at DESC`, requestColumns)
	return r.fetchMany(ctx, query, mechanicID)
}

func (r *requestRepository) ListActiveByMechanic(ctx context.Context, mechanicID string) ([]domain.ServiceRequest, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM service_requests
        WHERE mechanic_id=$1 AND status IN ('ACCEPTED','IN_PROGRESS')
        ORDER BY created_at DESC`, requestColumns)
	return r.fetchMany(ctx, query, mechanicID)
}

func (r *requestRepository) ListPendingUnassigned(ctx context.Context) ([]domain.ServiceRequest, error) {
	query := fmt.Sprintf(`
        SELECT %s FROM service_requests
        WHERE status='PENDING' AND mechanic_id IS NULL
        ORDER BY created_at ASC`, requestColumns)
	return r.fetchMany(ctx, query)
}

func (r *requestRepository) fetchSingle(ctx context.Context, query string, args ...any) (*domain.ServiceRequest, error) {
	var request domain.ServiceRequest
	if err := scanRequest(r.pool.QueryRow(ctx, query, args...), &request); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &request, nil
}

func (r *requestRepository) fetchMany(ctx context.Context, query string, args ...any) ([]domain.ServiceRequest, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ServiceRequest
	for rows.Next() {
		var request domain.ServiceRequest
		if err := scanRequest(rows, &request); err != nil {
			return nil, err
		}
		result = append(result, request)
	}
	return result, rows.Err()
}

func scanRequest(row pgx.Row, request *domain.ServiceRequest) error {
	return row.Scan(
		&request.ID,
		&request.RequesterID,
		&request.MechanicID,
		&request.IssueType,
		&request.Description,
		&request.Latitude,
		&request.Longitude,
		&request.Address,
		&request.Status,
		&request.EstimatedArrival,
		&request.CreatedAt,
		&request.AcceptedAt,
		&request.StartedAt,
		&request.CompletedAt,
		&request.UpdatedAt,
	)
}
