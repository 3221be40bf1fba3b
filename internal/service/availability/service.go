package availability

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"tutora/backend/internal/domain"
	"tutora/backend/internal/service/validation"
	"tutora/backend/internal/store"
)

const (
	DefaultRangeDays = 7
	MaxRangeDays     = 92
)

// SlotObserver is told how many free slots each listing returned.
type SlotObserver interface {
	ObserveSlotsListed(n int)
}

type nopObserver struct{}

func (nopObserver) ObserveSlotsListed(int) {}

type Service struct {
	rules     store.AvailabilityRepository
	appts     store.AppointmentRepository
	dir       store.Directory
	now       func() time.Time
	rangeDays int
	observer  SlotObserver
	logger    *slog.Logger
	validate  *validator.Validate
	tracer    trace.Tracer
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithDefaultRange sets how many days past today FreeSlots covers when the
// caller gives no end date.
func WithDefaultRange(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.rangeDays = days
		}
	}
}

func WithObserver(o SlotObserver) Option {
	return func(s *Service) { s.observer = o }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func NewService(rules store.AvailabilityRepository, appts store.AppointmentRepository, dir store.Directory, opts ...Option) *Service {
	s := &Service{
		rules:     rules,
		appts:     appts,
		dir:       dir,
		now:       time.Now,
		rangeDays: DefaultRangeDays,
		observer:  nopObserver{},
		logger:    slog.Default(),
		validate:  validation.New(),
		tracer:    otel.Tracer("tutora/backend/internal/service/availability"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "availability")
	return s
}

type RuleInput struct {
	DayOfWeek int    `json:"day_of_week" validate:"gte=0,lte=6"`
	StartTime string `json:"start_time" validate:"required,hhmm"`
	EndTime   string `json:"end_time" validate:"required,hhmm"`
}

type ReplaceInput struct {
	InstructorID string      `json:"instructor_id" validate:"required,max=128"`
	Rules        []RuleInput `json:"rules" validate:"dive"`
}

// ReplaceRules swaps the instructor's whole weekly schedule for the submitted
// set. An empty set clears the schedule. Existing appointments are untouched.
func (s *Service) ReplaceRules(ctx context.Context, in ReplaceInput) ([]domain.AvailabilityRule, error) {
	ctx, span := s.tracer.Start(ctx, "availability.ReplaceRules", trace.WithAttributes(
		attribute.String("instructor_id", in.InstructorID),
		attribute.Int("rules", len(in.Rules)),
	))
	defer span.End()

	in.InstructorID = strings.TrimSpace(in.InstructorID)
	if err := validation.Check(s.validate, in); err != nil {
		return nil, err
	}

	rules := make([]domain.AvailabilityRule, 0, len(in.Rules))
	for _, r := range in.Rules {
		start, err := domain.ParseTimeOfDay(r.StartTime)
		if err != nil {
			return nil, domain.Unprocessable(err.Error())
		}
		end, err := domain.ParseTimeOfDay(r.EndTime)
		if err != nil {
			return nil, domain.Unprocessable(err.Error())
		}
		rules = append(rules, domain.AvailabilityRule{
			InstructorID: in.InstructorID,
			DayOfWeek:    int16(r.DayOfWeek),
			StartTime:    start,
			EndTime:      end,
		})
	}
	if err := domain.ValidateRules(rules); err != nil {
		return nil, err
	}

	if err := s.requireInstructor(ctx, in.InstructorID); err != nil {
		return nil, err
	}

	saved, err := s.rules.ReplaceAllRules(ctx, in.InstructorID, rules)
	if err != nil {
		return nil, fmt.Errorf("replace availability rules: %w", err)
	}
	sortRules(saved)

	s.logger.Info("availability replaced", "instructor_id", in.InstructorID, "rules", len(saved))
	return saved, nil
}

// Rules returns the instructor's current weekly schedule ordered by day.
func (s *Service) Rules(ctx context.Context, instructorID string) ([]domain.AvailabilityRule, error) {
	instructorID = strings.TrimSpace(instructorID)
	if instructorID == "" {
		return nil, domain.Unprocessable("instructor_id is required")
	}
	if err := s.requireInstructor(ctx, instructorID); err != nil {
		return nil, err
	}
	rules, err := s.rules.FindRulesByInstructor(ctx, instructorID)
	if err != nil {
		return nil, fmt.Errorf("load availability rules: %w", err)
	}
	sortRules(rules)
	return rules, nil
}

type FreeSlotsInput struct {
	InstructorID string
	// RangeStart and RangeEnd are calendar dates; only their UTC date part is
	// used. Zero values default to today and today plus the default range.
	RangeStart time.Time
	RangeEnd   time.Time
}

func (s *Service) FreeSlots(ctx context.Context, in FreeSlotsInput) ([]time.Time, error) {
	ctx, span := s.tracer.Start(ctx, "availability.FreeSlots", trace.WithAttributes(
		attribute.String("instructor_id", in.InstructorID),
	))
	defer span.End()

	instructorID := strings.TrimSpace(in.InstructorID)
	if instructorID == "" {
		return nil, domain.Unprocessable("instructor_id is required")
	}

	start := in.RangeStart
	if start.IsZero() {
		start = s.now()
	}
	start = domain.DateOf(start)

	end := in.RangeEnd
	if end.IsZero() {
		end = start.AddDate(0, 0, s.rangeDays)
	}
	end = domain.DateOf(end)

	if end.Before(start) {
		return nil, domain.Unprocessable("range end must not be before range start")
	}
	if end.Sub(start) > MaxRangeDays*24*time.Hour {
		return nil, domain.Unprocessable(fmt.Sprintf("range may span at most %d days", MaxRangeDays))
	}

	if err := s.requireInstructor(ctx, instructorID); err != nil {
		return nil, err
	}

	rules, err := s.rules.FindRulesByInstructor(ctx, instructorID)
	if err != nil {
		return nil, fmt.Errorf("load availability rules: %w", err)
	}
	if len(rules) == 0 {
		return []time.Time{}, nil
	}

	windowStart, windowEnd := domain.SlotWindow(start, end)
	confirmed, err := s.appts.FindConfirmedOverlapping(ctx, instructorID, windowStart, windowEnd)
	if err != nil {
		return nil, fmt.Errorf("load confirmed appointments: %w", err)
	}

	slots := domain.FreeSlots(instructorID, rules, confirmed, start, end)
	span.SetAttributes(attribute.Int("slots", len(slots)))
	s.observer.ObserveSlotsListed(len(slots))
	return slots, nil
}

func (s *Service) requireInstructor(ctx context.Context, id string) error {
	if _, err := s.dir.Instructor(ctx, id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.NotFound("instructor not found")
		}
		return fmt.Errorf("load instructor: %w", err)
	}
	return nil
}

func sortRules(rules []domain.AvailabilityRule) {
	sort.Slice(rules, func(i, j int) bool { return rules[i].DayOfWeek < rules[j].DayOfWeek })
}
