package appointments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"tutora/backend/internal/domain"
	"tutora/backend/internal/events"
	"tutora/backend/internal/service/validation"
	"tutora/backend/internal/store"
)

// TransitionRecorder counts lifecycle operations by action and outcome.
type TransitionRecorder interface {
	ObserveTransition(action, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveTransition(string, string) {}

type Service struct {
	repo      store.AppointmentRepository
	dir       store.Directory
	now       func() time.Time
	publisher events.Publisher
	recorder  TransitionRecorder
	logger    *slog.Logger
	validate  *validator.Validate
	tracer    trace.Tracer
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithPublisher(p events.Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

func WithRecorder(r TransitionRecorder) Option {
	return func(s *Service) { s.recorder = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(repo store.AppointmentRepository, dir store.Directory, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		dir:       dir,
		now:       time.Now,
		publisher: events.NopPublisher{},
		recorder:  nopRecorder{},
		logger:    slog.Default(),
		validate:  validation.New(),
		tracer:    otel.Tracer("tutora/backend/internal/service/appointments"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "appointments")
	return s
}

type CreateInput struct {
	StudentID       string    `json:"student_id" validate:"required,max=128"`
	InstructorID    string    `json:"instructor_id" validate:"required,max=128"`
	SubjectID       string    `json:"subject_id" validate:"required,max=128"`
	StartTime       time.Time `json:"start_time" validate:"required"`
	LocationDetails string    `json:"location_details" validate:"max=255"`
	IdempotencyKey  string    `json:"idempotency_key" validate:"max=256"`
}

// Create books a pending one-hour lesson. The price is copied from the
// instructor at creation time and never changes afterwards.
func (s *Service) Create(ctx context.Context, in CreateInput) (appt domain.Appointment, err error) {
	ctx, span := s.tracer.Start(ctx, "appointments.Create", trace.WithAttributes(
		attribute.String("instructor_id", in.InstructorID),
	))
	defer func() { s.finish(span, domain.ActionCreate, err) }()

	in.StudentID = strings.TrimSpace(in.StudentID)
	in.InstructorID = strings.TrimSpace(in.InstructorID)
	in.SubjectID = strings.TrimSpace(in.SubjectID)
	in.LocationDetails = strings.TrimSpace(in.LocationDetails)
	in.IdempotencyKey = strings.TrimSpace(in.IdempotencyKey)
	if err := validation.Check(s.validate, in); err != nil {
		return domain.Appointment{}, err
	}

	start := in.StartTime.UTC().Truncate(time.Second)
	if !start.After(s.now()) {
		return domain.Appointment{}, domain.Unprocessable("start_time must be in the future")
	}

	instructor, err := s.dir.Instructor(ctx, in.InstructorID)
	if err != nil {
		return domain.Appointment{}, mapStoreError(err, "instructor not found")
	}
	teaches, err := s.dir.Teaches(ctx, instructor.ID, in.SubjectID)
	if err != nil {
		return domain.Appointment{}, fmt.Errorf("check subject: %w", err)
	}
	if !teaches {
		return domain.Appointment{}, domain.Unprocessable("instructor does not teach this subject")
	}

	candidate := domain.Appointment{
		StudentID:       in.StudentID,
		InstructorID:    instructor.ID,
		SubjectID:       in.SubjectID,
		StartTime:       start,
		EndTime:         start.Add(domain.LessonDuration),
		PriceCents:      instructor.PriceCents,
		LocationDetails: in.LocationDetails,
		Status:          domain.StatusPending,
	}
	if in.IdempotencyKey != "" {
		candidate.ID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("tutora:create_appointment:"+in.StudentID+":"+in.IdempotencyKey))
	}

	replayed := false
	err = s.repo.InInstructorTransaction(ctx, instructor.ID, func(ctx context.Context, tx store.BookingTx) error {
		if in.IdempotencyKey != "" {
			existing, err := tx.GetAppointmentForUpdate(ctx, candidate.ID)
			switch {
			case err == nil:
				if !sameBooking(existing, candidate) {
					return store.ErrIdempotencyConflict
				}
				appt = existing
				replayed = true
				return nil
			case !errors.Is(err, store.ErrNotFound):
				return err
			}
		}

		confirmed, err := tx.FindConfirmedOverlapping(ctx, instructor.ID, candidate.StartTime, candidate.EndTime)
		if err != nil {
			return err
		}
		if domain.HasConflict(confirmed, instructor.ID, candidate.StartTime, candidate.EndTime) {
			return domain.Conflict("the instructor already has a confirmed lesson at this time")
		}
		created, err := tx.InsertAppointment(ctx, candidate)
		if err != nil {
			return err
		}
		appt = created
		return nil
	})
	if err != nil {
		return domain.Appointment{}, mapStoreError(err, "appointment not found")
	}

	if replayed {
		s.logger.Info("idempotent create replayed", "appointment_id", appt.ID.String())
		return appt, nil
	}
	s.publish(ctx, domain.ActionCreate, appt)
	return appt, nil
}

// sameBooking reports whether a stored appointment describes the booking
// request in candidate.
func sameBooking(existing, candidate domain.Appointment) bool {
	return existing.StudentID == candidate.StudentID &&
		existing.InstructorID == candidate.InstructorID &&
		existing.SubjectID == candidate.SubjectID &&
		existing.LocationDetails == candidate.LocationDetails &&
		existing.StartTime.Equal(candidate.StartTime)
}

type ListInput struct {
	ActorID string `json:"actor_id" validate:"required"`
	Role    string `json:"role" validate:"required,role"`
	Status  string `json:"status"`
}

// List returns the actor's appointments, newest lesson first.
func (s *Service) List(ctx context.Context, in ListInput) ([]domain.Appointment, error) {
	if err := validation.Check(s.validate, in); err != nil {
		return nil, err
	}
	statuses, err := domain.ParseStatusFilter(strings.TrimSpace(in.Status))
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByParty(ctx, in.ActorID, domain.Role(in.Role), statuses)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return rows, nil
}

type TransitionInput struct {
	ActorID       string    `json:"actor_id" validate:"required"`
	Role          string    `json:"role" validate:"required,role"`
	AppointmentID uuid.UUID `json:"appointment_id" validate:"required"`
}

func (s *Service) Confirm(ctx context.Context, in TransitionInput) (domain.Appointment, error) {
	return s.transition(ctx, domain.ActionConfirm, in)
}

func (s *Service) Reject(ctx context.Context, in TransitionInput) (domain.Appointment, error) {
	return s.transition(ctx, domain.ActionReject, in)
}

func (s *Service) Cancel(ctx context.Context, in TransitionInput) (domain.Appointment, error) {
	return s.transition(ctx, domain.ActionCancel, in)
}

func (s *Service) Complete(ctx context.Context, in TransitionInput) (domain.Appointment, error) {
	return s.transition(ctx, domain.ActionComplete, in)
}

// transition serializes on the instructor's calendar, re-reads the row under
// lock and applies the state machine. Confirmation re-checks confirmed
// overlaps inside the same lock so that two overlapping pending requests can
// never both be confirmed.
func (s *Service) transition(ctx context.Context, action domain.Action, in TransitionInput) (appt domain.Appointment, err error) {
	ctx, span := s.tracer.Start(ctx, "appointments."+titleCase(string(action)), trace.WithAttributes(
		attribute.String("appointment_id", in.AppointmentID.String()),
		attribute.String("role", in.Role),
	))
	defer func() { s.finish(span, action, err) }()

	if err := validation.Check(s.validate, in); err != nil {
		return domain.Appointment{}, err
	}

	current, err := s.repo.Get(ctx, in.AppointmentID)
	if err != nil {
		return domain.Appointment{}, mapStoreError(err, "appointment not found")
	}

	err = s.repo.InInstructorTransaction(ctx, current.InstructorID, func(ctx context.Context, tx store.BookingTx) error {
		locked, err := tx.GetAppointmentForUpdate(ctx, in.AppointmentID)
		if err != nil {
			return err
		}

		next, err := domain.NextStatus(locked, action, in.ActorID, domain.Role(in.Role), s.now())
		if err != nil {
			return err
		}

		if next == domain.StatusConfirmed {
			confirmed, err := tx.FindConfirmedOverlapping(ctx, locked.InstructorID, locked.StartTime, locked.EndTime)
			if err != nil {
				return err
			}
			others := confirmed[:0:0]
			for _, c := range confirmed {
				if c.ID != locked.ID {
					others = append(others, c)
				}
			}
			if domain.HasConflict(others, locked.InstructorID, locked.StartTime, locked.EndTime) {
				return domain.Conflict("the instructor already has a confirmed lesson at this time")
			}
		}

		updated, err := tx.UpdateAppointmentStatus(ctx, locked.ID, next)
		if err != nil {
			return err
		}
		appt = updated
		return nil
	})
	if err != nil {
		return domain.Appointment{}, mapStoreError(err, "appointment not found")
	}

	s.publish(ctx, action, appt)
	return appt, nil
}

func (s *Service) publish(ctx context.Context, action domain.Action, appt domain.Appointment) {
	ev := events.NewAppointmentEvent(action, appt, s.now())
	if err := s.publisher.PublishAppointment(ctx, ev); err != nil {
		s.logger.Warn("publish appointment event failed",
			"action", string(action),
			"appointment_id", appt.ID.String(),
			"err", err,
		)
	}
}

func (s *Service) finish(span trace.Span, action domain.Action, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(domain.KindOf(err))
		if outcome == "" {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}
	span.SetAttributes(attribute.String("outcome", outcome))
	span.End()
	s.recorder.ObserveTransition(string(action), outcome)
}

// mapStoreError turns storage sentinels into business errors and passes
// domain errors through untouched.
func mapStoreError(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	if domain.KindOf(err) != "" {
		return err
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return domain.NotFound(notFoundMsg)
	case errors.Is(err, store.ErrConflict):
		return domain.Conflict("the instructor already has a confirmed lesson at this time")
	case errors.Is(err, store.ErrIdempotencyConflict):
		return domain.Conflict("idempotency key was already used for a different booking")
	}
	return fmt.Errorf("appointments: %w", err)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
