package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"tutora/backend/internal/domain"
	"tutora/backend/internal/store"
)

type fakeRules struct {
	rules    map[string][]domain.AvailabilityRule
	findRuns int
	err      error
}

func (f *fakeRules) FindRulesByInstructor(ctx context.Context, instructorID string) ([]domain.AvailabilityRule, error) {
	f.findRuns++
	if f.err != nil {
		return nil, f.err
	}
	return append([]domain.AvailabilityRule(nil), f.rules[instructorID]...), nil
}

func (f *fakeRules) ReplaceAllRules(ctx context.Context, instructorID string, rules []domain.AvailabilityRule) ([]domain.AvailabilityRule, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.rules == nil {
		f.rules = make(map[string][]domain.AvailabilityRule)
	}
	saved := make([]domain.AvailabilityRule, 0, len(rules))
	for _, r := range rules {
		r.ID = uuid.New()
		r.InstructorID = instructorID
		saved = append(saved, r)
	}
	f.rules[instructorID] = saved
	return append([]domain.AvailabilityRule(nil), saved...), nil
}

type fakeAppointments struct {
	store.AppointmentRepository

	confirmed   []domain.Appointment
	windowStart time.Time
	windowEnd   time.Time
	calls       int
}

func (f *fakeAppointments) FindConfirmedOverlapping(ctx context.Context, instructorID string, start, end time.Time) ([]domain.Appointment, error) {
	f.calls++
	f.windowStart, f.windowEnd = start, end
	return f.confirmed, nil
}

type fakeDirectory struct{}

func (fakeDirectory) Instructor(ctx context.Context, id string) (domain.Instructor, error) {
	if id != "i1" {
		return domain.Instructor{}, store.ErrNotFound
	}
	return domain.Instructor{ID: id, PriceCents: 4500}, nil
}

func (fakeDirectory) Teaches(ctx context.Context, instructorID, subjectID string) (bool, error) {
	panic("Teaches not used")
}

type countingObserver struct{ total int }

func (o *countingObserver) ObserveSlotsListed(n int) { o.total += n }

func date(day int) time.Time {
	return time.Date(2026, 1, day, 0, 0, 0, 0, time.UTC)
}

func newTestService(rules *fakeRules, appts *fakeAppointments, opts ...Option) *Service {
	now := time.Date(2026, 1, 4, 13, 45, 0, 0, time.UTC) // Sunday
	opts = append([]Option{WithClock(func() time.Time { return now })}, opts...)
	return NewService(rules, appts, fakeDirectory{}, opts...)
}

func TestReplaceRules_RoundTripsInDayOrder(t *testing.T) {
	rules := &fakeRules{}
	svc := newTestService(rules, &fakeAppointments{})

	saved, err := svc.ReplaceRules(context.Background(), ReplaceInput{
		InstructorID: "i1",
		Rules: []RuleInput{
			{DayOfWeek: 3, StartTime: "09:00", EndTime: "12:00"},
			{DayOfWeek: 1, StartTime: "14:00", EndTime: "18:00"},
		},
	})
	if err != nil {
		t.Fatalf("ReplaceRules error: %v", err)
	}
	if len(saved) != 2 || saved[0].DayOfWeek != 1 || saved[1].DayOfWeek != 3 {
		t.Fatalf("saved = %+v", saved)
	}

	got, err := svc.Rules(context.Background(), "i1")
	if err != nil {
		t.Fatalf("Rules error: %v", err)
	}
	if len(got) != 2 || got[0].StartTime != domain.NewTimeOfDay(14, 0) || got[1].EndTime != domain.NewTimeOfDay(12, 0) {
		t.Fatalf("rules = %+v", got)
	}

	// A second submission replaces, never appends.
	if _, err := svc.ReplaceRules(context.Background(), ReplaceInput{
		InstructorID: "i1",
		Rules:        []RuleInput{{DayOfWeek: 5, StartTime: "08:00", EndTime: "10:00"}},
	}); err != nil {
		t.Fatalf("ReplaceRules error: %v", err)
	}
	got, err = svc.Rules(context.Background(), "i1")
	if err != nil {
		t.Fatalf("Rules error: %v", err)
	}
	if len(got) != 1 || got[0].DayOfWeek != 5 {
		t.Fatalf("rules after replace = %+v", got)
	}

	// An empty submission clears the schedule.
	if _, err := svc.ReplaceRules(context.Background(), ReplaceInput{InstructorID: "i1"}); err != nil {
		t.Fatalf("clear error: %v", err)
	}
	got, err = svc.Rules(context.Background(), "i1")
	if err != nil {
		t.Fatalf("Rules error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("rules after clear = %+v", got)
	}
}

func TestReplaceRules_ValidationLeavesExistingSet(t *testing.T) {
	existing := []domain.AvailabilityRule{{InstructorID: "i1", DayOfWeek: 2, StartTime: domain.NewTimeOfDay(9, 0), EndTime: domain.NewTimeOfDay(10, 0)}}

	tests := []struct {
		name string
		in   ReplaceInput
		want domain.ErrorKind
	}{
		{name: "day out of range", in: ReplaceInput{InstructorID: "i1", Rules: []RuleInput{{DayOfWeek: 7, StartTime: "09:00", EndTime: "10:00"}}}, want: domain.KindUnprocessable},
		{name: "negative day", in: ReplaceInput{InstructorID: "i1", Rules: []RuleInput{{DayOfWeek: -1, StartTime: "09:00", EndTime: "10:00"}}}, want: domain.KindUnprocessable},
		{name: "start after end", in: ReplaceInput{InstructorID: "i1", Rules: []RuleInput{{DayOfWeek: 1, StartTime: "18:00", EndTime: "14:00"}}}, want: domain.KindUnprocessable},
		{name: "bad time format", in: ReplaceInput{InstructorID: "i1", Rules: []RuleInput{{DayOfWeek: 1, StartTime: "2pm", EndTime: "18:00"}}}, want: domain.KindUnprocessable},
		{name: "duplicate day", in: ReplaceInput{InstructorID: "i1", Rules: []RuleInput{
			{DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00"},
			{DayOfWeek: 1, StartTime: "14:00", EndTime: "15:00"},
		}}, want: domain.KindUnprocessable},
		{name: "unknown instructor", in: ReplaceInput{InstructorID: "ghost", Rules: []RuleInput{{DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00"}}}, want: domain.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules := &fakeRules{rules: map[string][]domain.AvailabilityRule{"i1": existing}}
			svc := newTestService(rules, &fakeAppointments{})

			_, err := svc.ReplaceRules(context.Background(), tt.in)
			if got := domain.KindOf(err); got != tt.want {
				t.Fatalf("kind = %q (%v), want %q", got, err, tt.want)
			}
			if len(rules.rules["i1"]) != 1 || rules.rules["i1"][0].DayOfWeek != 2 {
				t.Fatalf("existing rules changed: %+v", rules.rules["i1"])
			}
		})
	}
}

func TestFreeSlots_DefaultRangeIsTodayPlusSevenDays(t *testing.T) {
	rules := &fakeRules{rules: map[string][]domain.AvailabilityRule{
		"i1": {{InstructorID: "i1", DayOfWeek: int16(time.Monday), StartTime: domain.NewTimeOfDay(14, 0), EndTime: domain.NewTimeOfDay(16, 0)}},
	}}
	appts := &fakeAppointments{}
	obs := &countingObserver{}
	svc := newTestService(rules, appts, WithObserver(obs))

	slots, err := svc.FreeSlots(context.Background(), FreeSlotsInput{InstructorID: "i1"})
	if err != nil {
		t.Fatalf("FreeSlots error: %v", err)
	}

	// Sunday the 4th through Sunday the 11th covers one Monday.
	want := []time.Time{
		time.Date(2026, 1, 5, 14, 0, 0, 0, time.UTC),
		time.Date(2026, 1, 5, 15, 0, 0, 0, time.UTC),
	}
	if len(slots) != len(want) {
		t.Fatalf("slots = %v, want %v", slots, want)
	}
	for i := range want {
		if !slots[i].Equal(want[i]) {
			t.Fatalf("slot[%d] = %v, want %v", i, slots[i], want[i])
		}
	}
	if !appts.windowStart.Equal(date(4)) || !appts.windowEnd.Equal(date(12)) {
		t.Fatalf("confirmed window = [%v, %v), want [%v, %v)", appts.windowStart, appts.windowEnd, date(4), date(12))
	}
	if rules.findRuns != 1 || appts.calls != 1 {
		t.Fatalf("loads: rules=%d appointments=%d, want one each", rules.findRuns, appts.calls)
	}
	if obs.total != 2 {
		t.Fatalf("observed %d slots, want 2", obs.total)
	}
}

func TestFreeSlots_ConfirmedBookingRemovesSlot(t *testing.T) {
	rules := &fakeRules{rules: map[string][]domain.AvailabilityRule{
		"i1": {{InstructorID: "i1", DayOfWeek: int16(time.Monday), StartTime: domain.NewTimeOfDay(14, 0), EndTime: domain.NewTimeOfDay(18, 0)}},
	}}
	appts := &fakeAppointments{confirmed: []domain.Appointment{{
		InstructorID: "i1",
		StartTime:    time.Date(2026, 1, 5, 15, 0, 0, 0, time.UTC),
		EndTime:      time.Date(2026, 1, 5, 16, 0, 0, 0, time.UTC),
		Status:       domain.StatusConfirmed,
	}}}
	svc := newTestService(rules, appts)

	slots, err := svc.FreeSlots(context.Background(), FreeSlotsInput{InstructorID: "i1", RangeStart: date(4), RangeEnd: date(10)})
	if err != nil {
		t.Fatalf("FreeSlots error: %v", err)
	}
	if len(slots) != 3 || slots[1].Hour() != 16 {
		t.Fatalf("slots = %v, want 14:00, 16:00, 17:00", slots)
	}
}

func TestFreeSlots_Rejections(t *testing.T) {
	svc := newTestService(&fakeRules{}, &fakeAppointments{})

	tests := []struct {
		name string
		in   FreeSlotsInput
		want domain.ErrorKind
	}{
		{name: "missing instructor", in: FreeSlotsInput{}, want: domain.KindUnprocessable},
		{name: "inverted range", in: FreeSlotsInput{InstructorID: "i1", RangeStart: date(10), RangeEnd: date(4)}, want: domain.KindUnprocessable},
		{name: "range too long", in: FreeSlotsInput{InstructorID: "i1", RangeStart: date(1), RangeEnd: date(1).AddDate(1, 0, 0)}, want: domain.KindUnprocessable},
		{name: "one day past the cap", in: FreeSlotsInput{InstructorID: "i1", RangeStart: date(1), RangeEnd: date(1).AddDate(0, 0, MaxRangeDays+1)}, want: domain.KindUnprocessable},
		{name: "exactly at the cap", in: FreeSlotsInput{InstructorID: "i1", RangeStart: date(1), RangeEnd: date(1).AddDate(0, 0, MaxRangeDays)}},
		{name: "unknown instructor", in: FreeSlotsInput{InstructorID: "ghost"}, want: domain.KindNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.FreeSlots(context.Background(), tt.in)
			if got := domain.KindOf(err); got != tt.want {
				t.Fatalf("kind = %q (%v), want %q", got, err, tt.want)
			}
		})
	}
}

func TestFreeSlots_NoRulesSkipsAppointmentLoad(t *testing.T) {
	appts := &fakeAppointments{}
	svc := newTestService(&fakeRules{}, appts)

	slots, err := svc.FreeSlots(context.Background(), FreeSlotsInput{InstructorID: "i1"})
	if err != nil {
		t.Fatalf("FreeSlots error: %v", err)
	}
	if len(slots) != 0 || appts.calls != 0 {
		t.Fatalf("slots = %v, appointment loads = %d", slots, appts.calls)
	}
}

func TestFreeSlots_StoreErrorIsWrapped(t *testing.T) {
	boom := errors.New("connection refused")
	svc := newTestService(&fakeRules{err: boom}, &fakeAppointments{})

	_, err := svc.FreeSlots(context.Background(), FreeSlotsInput{InstructorID: "i1"})
	if !errors.Is(err, boom) || domain.KindOf(err) != "" {
		t.Fatalf("err = %v, want wrapped infrastructure error", err)
	}
}
