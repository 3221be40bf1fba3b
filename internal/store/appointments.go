package store

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tutora/backend/internal/domain"
)

// BookingTx is the set of appointment operations available while an
// instructor's calendar lock is held.
type BookingTx interface {
	FindConfirmedOverlapping(ctx context.Context, instructorID string, start, end time.Time) ([]domain.Appointment, error)
	InsertAppointment(ctx context.Context, appt domain.Appointment) (domain.Appointment, error)
	GetAppointmentForUpdate(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, status domain.AppointmentStatus) (domain.Appointment, error)
}

type AppointmentRepository interface {
	// InInstructorTransaction runs fn in a transaction serialized against every
	// other booking write for the same instructor.
	InInstructorTransaction(ctx context.Context, instructorID string, fn func(ctx context.Context, tx BookingTx) error) error

	Get(ctx context.Context, id uuid.UUID) (domain.Appointment, error)
	ListByParty(ctx context.Context, partyID string, role domain.Role, statuses []domain.AppointmentStatus) ([]domain.Appointment, error)
	FindConfirmedOverlapping(ctx context.Context, instructorID string, start, end time.Time) ([]domain.Appointment, error)
}

type AvailabilityRepository interface {
	FindRulesByInstructor(ctx context.Context, instructorID string) ([]domain.AvailabilityRule, error)
	ReplaceAllRules(ctx context.Context, instructorID string, rules []domain.AvailabilityRule) ([]domain.AvailabilityRule, error)
}

// Directory answers questions about accounts owned by another service.
type Directory interface {
	// Instructor returns ErrNotFound when no such instructor exists.
	Instructor(ctx context.Context, id string) (domain.Instructor, error)
	Teaches(ctx context.Context, instructorID, subjectID string) (bool, error)
}
