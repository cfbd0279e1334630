package storage

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/sharif-mahmud/wellpoint/libs/db"
	"github.com/sharif-mahmud/wellpoint/services/wellness-service/internal/model"
)

const appointmentColumns = `id, appointment_id, user_id, provider_id, date_time,
	consultation_type, COALESCE(notes, ''), cancelled, COALESCE(cancellation_reason, ''), created_at`

type AppointmentRepository struct {
	pool *db.Pool
}

func NewAppointmentRepository(pool *db.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

func (r *AppointmentRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	return r.pool.Begin(ctx)
}

func (r *AppointmentRepository) CreateTx(ctx context.Context, tx pgx.Tx, a *model.Appointment) error {
	return tx.QueryRow(ctx, `
		INSERT INTO appointments (appointment_id, user_id, provider_id, date_time, consultation_type, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, a.AppointmentID, a.UserID, a.ProviderID, a.DateTime, a.ConsultationType, a.Notes).Scan(&a.ID, &a.CreatedAt)
}

func (r *AppointmentRepository) ListByUser(ctx context.Context, userID int64) ([]model.Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE user_id = $1
		ORDER BY date_time
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Appointment, 0)
	for rows.Next() {
		var a model.Appointment
		if err := scanAppointment(rows, &a); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetActiveForUpdate locks an uncancelled appointment row for the duration of
// the transaction. pgx.ErrNoRows covers both missing and already-cancelled.
func (r *AppointmentRepository) GetActiveForUpdate(ctx context.Context, tx pgx.Tx, id int64) (model.Appointment, error) {
	var a model.Appointment
	row := tx.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1 AND cancelled = FALSE
		FOR UPDATE
	`, id)
	if err := scanAppointment(row, &a); err != nil {
		return model.Appointment{}, err
	}
	return a, nil
}

func (r *AppointmentRepository) CancelTx(ctx context.Context, tx pgx.Tx, id int64, reason string) error {
	tag, err := tx.Exec(ctx, `
		UPDATE appointments
		SET cancelled = TRUE, cancellation_reason = $2
		WHERE id = $1 AND cancelled = FALSE
	`, id, reason)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanAppointment(row pgx.Row, a *model.Appointment) error {
	return row.Scan(
		&a.ID,
		&a.AppointmentID,
		&a.UserID,
		&a.ProviderID,
		&a.DateTime,
		&a.ConsultationType,
		&a.Notes,
		&a.Cancelled,
		&a.CancellationReason,
		&a.CreatedAt,
	)
}
