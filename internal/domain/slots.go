package domain

import (
	"time"
)

// SlotDuration is the step and length of every generated slot.
const SlotDuration = LessonDuration

// DateOf truncates t to midnight UTC of its calendar day.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FreeSlots projects the weekly rules of instructorID onto every calendar day in
// [rangeStart, rangeEnd] (both dates inclusive, UTC) and returns, in
// chronological order, the start of every one-hour slot that fits inside its
// day's window and does not overlap a confirmed appointment. Pending
// appointments never remove a slot.
func FreeSlots(instructorID string, rules []AvailabilityRule, appts []Appointment, rangeStart, rangeEnd time.Time) []time.Time {
	byDay := make(map[time.Weekday]AvailabilityRule, len(rules))
	for _, r := range rules {
		if r.InstructorID != "" && r.InstructorID != instructorID {
			continue
		}
		byDay[time.Weekday(r.DayOfWeek)] = r
	}

	first := DateOf(rangeStart)
	last := DateOf(rangeEnd)

	out := make([]time.Time, 0, 16)
	for day := first; !day.After(last); day = day.AddDate(0, 0, 1) {
		rule, ok := byDay[day.Weekday()]
		if !ok {
			continue
		}

		windowEnd := rule.EndTime.On(day)
		for slot := rule.StartTime.On(day); !slot.Add(SlotDuration).After(windowEnd); slot = slot.Add(SlotDuration) {
			if HasConflict(appts, instructorID, slot, slot.Add(SlotDuration)) {
				continue
			}
			out = append(out, slot)
		}
	}

	return out
}

// SlotWindow is the absolute interval covering every slot FreeSlots can emit
// for the date range; confirmed appointments are loaded for it once.
func SlotWindow(rangeStart, rangeEnd time.Time) (time.Time, time.Time) {
	return DateOf(rangeStart), DateOf(rangeEnd).AddDate(0, 0, 1)
}
