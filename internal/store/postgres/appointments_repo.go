package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"

	"tutora/backend/internal/domain"
	"tutora/backend/internal/store"
)

const confirmedNoOverlapConstraint = "appointments_confirmed_no_overlap"

type AppointmentRepo struct {
	db *bun.DB
}

func NewAppointmentRepo(db *bun.DB) *AppointmentRepo {
	return &AppointmentRepo{db: db}
}

type bookingTx struct {
	tx bun.IDB
}

func (r *AppointmentRepo) InInstructorTransaction(ctx context.Context, instructorID string, fn func(ctx context.Context, tx store.BookingTx) error) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockInstructorCalendar(ctx, tx, instructorID); err != nil {
			return err
		}
		return fn(ctx, bookingTx{tx: tx})
	})
}

func lockInstructorCalendar(ctx context.Context, tx bun.Tx, instructorID string) error {
	_, err := tx.NewRaw("SELECT pg_advisory_xact_lock(hashtext(?))", "instructor:"+instructorID).Exec(ctx)
	return err
}

func (r *AppointmentRepo) Get(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	var appt domain.Appointment
	err := r.db.NewSelect().
		Model(&appt).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Appointment{}, store.ErrNotFound
		}
		return domain.Appointment{}, err
	}
	return appt, nil
}

func (r *AppointmentRepo) ListByParty(ctx context.Context, partyID string, role domain.Role, statuses []domain.AppointmentStatus) ([]domain.Appointment, error) {
	column := "student_id"
	if role == domain.RoleInstructor {
		column = "instructor_id"
	}

	rows := make([]domain.Appointment, 0)
	q := r.db.NewSelect().
		Model(&rows).
		Where("? = ?", bun.Ident(column), partyID)
	if len(statuses) > 0 {
		q = q.Where("status IN (?)", bun.In(statuses))
	}
	if err := q.OrderExpr("start_time DESC").Scan(ctx); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *AppointmentRepo) FindConfirmedOverlapping(ctx context.Context, instructorID string, start, end time.Time) ([]domain.Appointment, error) {
	return bookingTx{tx: r.db}.FindConfirmedOverlapping(ctx, instructorID, start, end)
}

func (t bookingTx) FindConfirmedOverlapping(ctx context.Context, instructorID string, start, end time.Time) ([]domain.Appointment, error) {
	rows := make([]domain.Appointment, 0)
	err := t.tx.NewSelect().
		Model(&rows).
		Where("instructor_id = ?", instructorID).
		Where("status = ?", domain.StatusConfirmed).
		Where("start_time < ?", end).
		Where("end_time > ?", start).
		OrderExpr("start_time ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// InsertAppointment stores a new appointment. A retried insert with an ID that
// already exists returns the stored row when it describes the same booking
// and ErrIdempotencyConflict otherwise.
func (t bookingTx) InsertAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error) {
	m := appt
	res, err := t.tx.NewInsert().
		Model(&m).
		On("CONFLICT (id) DO NOTHING").
		Exec(ctx)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23P01" && pgErr.ConstraintName == confirmedNoOverlapConstraint {
			return domain.Appointment{}, store.ErrConflict
		}
		return domain.Appointment{}, err
	}

	if n, err := res.RowsAffected(); err != nil || n > 0 {
		return m, err
	}

	var existing domain.Appointment
	if err := t.tx.NewSelect().
		Model(&existing).
		Where("id = ?", m.ID).
		Limit(1).
		Scan(ctx); err != nil {
		return domain.Appointment{}, err
	}

	if existing.StudentID != appt.StudentID ||
		existing.InstructorID != appt.InstructorID ||
		existing.SubjectID != appt.SubjectID ||
		existing.LocationDetails != appt.LocationDetails ||
		!existing.StartTime.Equal(appt.StartTime) {
		return domain.Appointment{}, store.ErrIdempotencyConflict
	}

	return existing, nil
}

func (t bookingTx) GetAppointmentForUpdate(ctx context.Context, id uuid.UUID) (domain.Appointment, error) {
	var appt domain.Appointment
	err := t.tx.NewSelect().
		Model(&appt).
		Where("id = ?", id).
		For("UPDATE").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Appointment{}, store.ErrNotFound
		}
		return domain.Appointment{}, err
	}
	return appt, nil
}

func (t bookingTx) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, status domain.AppointmentStatus) (domain.Appointment, error) {
	m := domain.Appointment{ID: id, Status: status}
	err := t.tx.NewUpdate().
		Model(&m).
		Column("status", "updated_at").
		WherePK().
		Returning("*").
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Appointment{}, store.ErrNotFound
		}
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23P01" && pgErr.ConstraintName == confirmedNoOverlapConstraint {
			return domain.Appointment{}, store.ErrConflict
		}
		return domain.Appointment{}, err
	}
	return m, nil
}
