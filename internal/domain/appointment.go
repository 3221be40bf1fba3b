package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// LessonDuration is the fixed length of every booked lesson.
const LessonDuration = time.Hour

type AppointmentStatus string

const (
	StatusPending              AppointmentStatus = "pending"
	StatusConfirmed            AppointmentStatus = "confirmed"
	StatusCompleted            AppointmentStatus = "completed"
	StatusCancelledByUser      AppointmentStatus = "cancelled_by_user"
	StatusCancelledByProfessor AppointmentStatus = "cancelled_by_professor"
)

// Terminal reports whether no further transition is allowed from s.
func (s AppointmentStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelledByUser, StatusCancelledByProfessor:
		return true
	default:
		return false
	}
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelledByUser, StatusCancelledByProfessor:
		return true
	default:
		return false
	}
}

// StatusFilterCancelled selects both cancellation states.
const StatusFilterCancelled = "cancelled"

// ParseStatusFilter turns a listing filter into the set of statuses it selects.
// An empty filter selects everything and returns nil.
func ParseStatusFilter(filter string) ([]AppointmentStatus, error) {
	switch filter {
	case "":
		return nil, nil
	case StatusFilterCancelled:
		return []AppointmentStatus{StatusCancelledByUser, StatusCancelledByProfessor}, nil
	}
	s := AppointmentStatus(filter)
	if !s.Valid() {
		return nil, Unprocessable("unknown status filter " + filter)
	}
	return []AppointmentStatus{s}, nil
}

type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
)

func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleInstructor
}

type Appointment struct {
	bun.BaseModel `bun:"table:appointments"`

	ID              uuid.UUID         `bun:"id,pk,type:uuid"`
	StudentID       string            `bun:"student_id,notnull"`
	InstructorID    string            `bun:"instructor_id,notnull"`
	SubjectID       string            `bun:"subject_id,notnull"`
	StartTime       time.Time         `bun:"start_time,notnull"`
	EndTime         time.Time         `bun:"end_time,notnull"`
	PriceCents      int64             `bun:"price_cents,notnull"`
	LocationDetails string            `bun:"location_details"`
	Status          AppointmentStatus `bun:"status,notnull"`
	CreatedAt       time.Time         `bun:"created_at,notnull"`
	UpdatedAt       time.Time         `bun:"updated_at,notnull"`
}

// OwnedBy reports whether actorID is the party of the appointment for role.
func (a Appointment) OwnedBy(actorID string, role Role) bool {
	switch role {
	case RoleStudent:
		return a.StudentID == actorID
	case RoleInstructor:
		return a.InstructorID == actorID
	default:
		return false
	}
}

func (a *Appointment) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if a.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			a.ID = id
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = now
		}
		if a.UpdatedAt.IsZero() {
			a.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		a.UpdatedAt = now
	}
	return nil
}

// Instructor is the read-only view of an instructor account needed for booking.
type Instructor struct {
	bun.BaseModel `bun:"table:instructors"`

	ID         string `bun:"id,pk"`
	PriceCents int64  `bun:"price_cents,notnull"`
}
