package domain

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// TimeOfDay is a wall-clock time without a date, held as the offset from
// midnight. It maps to a Postgres "time" column.
type TimeOfDay time.Duration

func NewTimeOfDay(hour, minute int) TimeOfDay {
	return TimeOfDay(time.Duration(hour)*time.Hour + time.Duration(minute)*time.Minute)
}

// ParseTimeOfDay accepts "15:04" or "15:04:05".
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}

	var fields [3]int
	for i, p := range parts {
		if i == 2 {
			// Postgres may render fractional seconds.
			p, _, _ = strings.Cut(p, ".")
		}
		if len(p) != 2 {
			return 0, fmt.Errorf("invalid time of day %q", s)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, fmt.Errorf("invalid time of day %q", s)
		}
		fields[i] = n
	}
	if fields[0] > 23 || fields[1] > 59 || fields[2] > 59 {
		return 0, fmt.Errorf("invalid time of day %q", s)
	}

	return TimeOfDay(time.Duration(fields[0])*time.Hour +
		time.Duration(fields[1])*time.Minute +
		time.Duration(fields[2])*time.Second), nil
}

func (t TimeOfDay) Duration() time.Duration {
	return time.Duration(t)
}

// On places t on the calendar day of date.
func (t TimeOfDay) On(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, date.Location()).Add(t.Duration())
}

// String renders "15:04", adding seconds only when they are set.
func (t TimeOfDay) String() string {
	d := t.Duration()
	h := int(d / time.Hour)
	m := int(d % time.Hour / time.Minute)
	sec := int(d % time.Minute / time.Second)
	if sec != 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, sec)
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}

func (t TimeOfDay) Value() (driver.Value, error) {
	d := t.Duration()
	return fmt.Sprintf("%02d:%02d:%02d", int(d/time.Hour), int(d%time.Hour/time.Minute), int(d%time.Minute/time.Second)), nil
}

func (t *TimeOfDay) Scan(src any) error {
	switch v := src.(type) {
	case string:
		parsed, err := ParseTimeOfDay(v)
		if err != nil {
			return err
		}
		*t = parsed
	case []byte:
		parsed, err := ParseTimeOfDay(string(v))
		if err != nil {
			return err
		}
		*t = parsed
	case time.Time:
		*t = TimeOfDay(time.Duration(v.Hour())*time.Hour +
			time.Duration(v.Minute())*time.Minute +
			time.Duration(v.Second())*time.Second)
	case int64:
		// microseconds since midnight
		*t = TimeOfDay(time.Duration(v) * time.Microsecond)
	case nil:
		return errors.New("time of day is null")
	default:
		return fmt.Errorf("cannot scan %T into TimeOfDay", src)
	}
	return nil
}

// AvailabilityRule is one instructor's recurring weekly window for a single
// day. DayOfWeek follows time.Weekday: 0 is Sunday.
type AvailabilityRule struct {
	bun.BaseModel `bun:"table:availability_rules"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	InstructorID string    `bun:"instructor_id,notnull"`
	DayOfWeek    int16     `bun:"day_of_week,notnull"`
	StartTime    TimeOfDay `bun:"start_time,notnull,type:time"`
	EndTime      TimeOfDay `bun:"end_time,notnull,type:time"`
	CreatedAt    time.Time `bun:"created_at,notnull"`
	UpdatedAt    time.Time `bun:"updated_at,notnull"`
}

func (r *AvailabilityRule) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if r.ID == uuid.Nil {
			id, err := uuid.NewV7()
			if err != nil {
				return err
			}
			r.ID = id
		}
		if r.CreatedAt.IsZero() {
			r.CreatedAt = now
		}
		if r.UpdatedAt.IsZero() {
			r.UpdatedAt = now
		}
	case *bun.UpdateQuery:
		r.UpdatedAt = now
	}
	return nil
}

// ValidateRules checks a full weekly submission: day in [0,6], start before
// end, and at most one rule per day.
func ValidateRules(rules []AvailabilityRule) error {
	seen := make(map[int16]struct{}, len(rules))
	for _, r := range rules {
		if r.DayOfWeek < 0 || r.DayOfWeek > 6 {
			return Unprocessable(fmt.Sprintf("day_of_week %d must be between 0 and 6", r.DayOfWeek))
		}
		if r.StartTime >= r.EndTime {
			return Unprocessable(fmt.Sprintf("day_of_week %d: start_time must be before end_time", r.DayOfWeek))
		}
		if _, ok := seen[r.DayOfWeek]; ok {
			return Unprocessable(fmt.Sprintf("day_of_week %d appears more than once", r.DayOfWeek))
		}
		seen[r.DayOfWeek] = struct{}{}
	}
	return nil
}
