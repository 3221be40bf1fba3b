package domain

import "time"

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2) share
// any instant. Intervals that only touch at an endpoint do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && e1.After(s2)
}

// Overlapping returns the confirmed appointments of instructorID that overlap
// [start,end).
func Overlapping(appts []Appointment, instructorID string, start, end time.Time) []Appointment {
	var out []Appointment
	for _, a := range appts {
		if a.Status != StatusConfirmed || a.InstructorID != instructorID {
			continue
		}
		if Overlaps(start, end, a.StartTime, a.EndTime) {
			out = append(out, a)
		}
	}
	return out
}

func HasConflict(appts []Appointment, instructorID string, start, end time.Time) bool {
	return len(Overlapping(appts, instructorID, start, end)) > 0
}
