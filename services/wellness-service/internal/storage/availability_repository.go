package storage

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/sharif-mahmud/wellpoint/libs/db"
	"github.com/sharif-mahmud/wellpoint/services/wellness-service/internal/model"
)

const availabilityColumns = `id, provider_id, start_time, end_time, is_booked, created_at`

type AvailabilityRepository struct {
	pool *db.Pool
}

func NewAvailabilityRepository(pool *db.Pool) *AvailabilityRepository {
	return &AvailabilityRepository{pool: pool}
}

func (r *AvailabilityRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *AvailabilityRepository) CreateTx(ctx context.Context, tx pgx.Tx, a *model.ProviderAvailability) error {
	return tx.QueryRow(ctx, `
		INSERT INTO provider_availabilities (provider_id, start_time, end_time, is_booked)
		VALUES ($1, $2, $3, FALSE)
		RETURNING id, created_at
	`, a.ProviderID, a.StartTime, a.EndTime).Scan(&a.ID, &a.CreatedAt)
}

func (r *AvailabilityRepository) ListByProvider(ctx context.Context, providerID int64) ([]model.ProviderAvailability, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+availabilityColumns+`
		FROM provider_availabilities
		WHERE provider_id = $1
		ORDER BY start_time
	`, providerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAvailabilities(rows)
}

// ListOpenByProvider returns unbooked windows that have not yet ended. Callers
// that need strictly future windows filter on start_time themselves.
func (r *AvailabilityRepository) ListOpenByProvider(ctx context.Context, providerID int64, now time.Time) ([]model.ProviderAvailability, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+availabilityColumns+`
		FROM provider_availabilities
		WHERE provider_id = $1 AND is_booked = FALSE AND end_time > $2
		ORDER BY start_time
	`, providerID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAvailabilities(rows)
}

// ListAllOpen returns every unexpired unbooked window joined with the owning
// provider's name and specialty.
func (r *AvailabilityRepository) ListAllOpen(ctx context.Context, now time.Time) ([]model.AvailableSlot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.provider_id, a.start_time, a.end_time, a.is_booked, a.created_at,
		       p.name, COALESCE(p.specialty, '')
		FROM provider_availabilities a
		JOIN providers p ON p.id = a.provider_id
		WHERE a.is_booked = FALSE AND a.end_time > $1
		ORDER BY a.start_time
	`, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	slots := make([]model.AvailableSlot, 0)
	for rows.Next() {
		var s model.AvailableSlot
		if err := rows.Scan(
			&s.ID, &s.ProviderID, &s.StartTime, &s.EndTime, &s.IsBooked, &s.CreatedAt,
			&s.ProviderName, &s.Specialty,
		); err != nil {
			return nil, err
		}
		slots = append(slots, s)
	}
	return slots, rows.Err()
}

func (r *AvailabilityRepository) GetByID(ctx context.Context, id int64) (model.ProviderAvailability, error) {
	var a model.ProviderAvailability
	err := r.pool.QueryRow(ctx, `
		SELECT `+availabilityColumns+`
		FROM provider_availabilities
		WHERE id = $1
	`, id).Scan(&a.ID, &a.ProviderID, &a.StartTime, &a.EndTime, &a.IsBooked, &a.CreatedAt)
	if err != nil {
		return model.ProviderAvailability{}, err
	}
	return a, nil
}

func (r *AvailabilityRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM provider_availabilities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// MarkBookedAt flips the first unbooked window for the provider whose start
// matches the requested instant. It reports whether a window was claimed, so
// manual bookings outside any published window proceed without one.
func MarkBookedAt(ctx context.Context, tx pgx.Tx, providerID int64, start time.Time) (bool, error) {
	tag, err := tx.Exec(ctx, `
		UPDATE provider_availabilities
		SET is_booked = TRUE
		WHERE id = (
			SELECT id FROM provider_availabilities
			WHERE provider_id = $1 AND start_time = $2 AND is_booked = FALSE
			ORDER BY id
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
	`, providerID, start)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanAvailabilities(rows pgx.Rows) ([]model.ProviderAvailability, error) {
	out := make([]model.ProviderAvailability, 0)
	for rows.Next() {
		var a model.ProviderAvailability
		if err := rows.Scan(&a.ID, &a.ProviderID, &a.StartTime, &a.EndTime, &a.IsBooked, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
