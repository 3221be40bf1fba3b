package domain

import (
	"testing"
	"time"
)

func TestNextStatus(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

	appt := func(status AppointmentStatus, startIn time.Duration) Appointment {
		start := now.Add(startIn)
		return Appointment{
			StudentID:    "s1",
			InstructorID: "i1",
			StartTime:    start,
			EndTime:      start.Add(LessonDuration),
			Status:       status,
		}
	}

	tests := []struct {
		name     string
		appt     Appointment
		action   Action
		actor    string
		role     Role
		want     AppointmentStatus
		wantKind ErrorKind
	}{
		{name: "instructor confirms pending", appt: appt(StatusPending, 48*time.Hour), action: ActionConfirm, actor: "i1", role: RoleInstructor, want: StatusConfirmed},
		{name: "instructor rejects pending", appt: appt(StatusPending, 48*time.Hour), action: ActionReject, actor: "i1", role: RoleInstructor, want: StatusCancelledByProfessor},
		{name: "other instructor cannot confirm", appt: appt(StatusPending, 48*time.Hour), action: ActionConfirm, actor: "i2", role: RoleInstructor, wantKind: KindForbidden},
		{name: "student cannot confirm own booking", appt: appt(StatusPending, 48*time.Hour), action: ActionConfirm, actor: "s1", role: RoleStudent, wantKind: KindForbidden},
		{name: "confirm twice conflicts", appt: appt(StatusConfirmed, 48*time.Hour), action: ActionConfirm, actor: "i1", role: RoleInstructor, wantKind: KindConflict},
		{name: "reject confirmed conflicts", appt: appt(StatusConfirmed, 48*time.Hour), action: ActionReject, actor: "i1", role: RoleInstructor, wantKind: KindConflict},

		{name: "student cancels pending 25h out", appt: appt(StatusPending, 25*time.Hour), action: ActionCancel, actor: "s1", role: RoleStudent, want: StatusCancelledByUser},
		{name: "student cancels confirmed exactly 24h out", appt: appt(StatusConfirmed, 24*time.Hour), action: ActionCancel, actor: "s1", role: RoleStudent, want: StatusCancelledByUser},
		{name: "student cancel 10h out is too late", appt: appt(StatusPending, 10*time.Hour), action: ActionCancel, actor: "s1", role: RoleStudent, wantKind: KindUnprocessable},
		{name: "other student cannot cancel", appt: appt(StatusPending, 48*time.Hour), action: ActionCancel, actor: "s2", role: RoleStudent, wantKind: KindForbidden},
		{name: "instructor cancels confirmed", appt: appt(StatusConfirmed, time.Hour), action: ActionCancel, actor: "i1", role: RoleInstructor, want: StatusCancelledByProfessor},
		{name: "instructor cancel of pending conflicts", appt: appt(StatusPending, 48*time.Hour), action: ActionCancel, actor: "i1", role: RoleInstructor, wantKind: KindConflict},

		{name: "complete after lesson end", appt: appt(StatusConfirmed, -2*time.Hour), action: ActionComplete, actor: "i1", role: RoleInstructor, want: StatusCompleted},
		{name: "complete exactly at lesson end", appt: appt(StatusConfirmed, -LessonDuration), action: ActionComplete, actor: "i1", role: RoleInstructor, want: StatusCompleted},
		{name: "complete 5 minutes before end", appt: appt(StatusConfirmed, -55*time.Minute), action: ActionComplete, actor: "i1", role: RoleInstructor, wantKind: KindUnprocessable},
		{name: "complete pending conflicts", appt: appt(StatusPending, -2*time.Hour), action: ActionComplete, actor: "i1", role: RoleInstructor, wantKind: KindConflict},
		{name: "student cannot complete", appt: appt(StatusConfirmed, -2*time.Hour), action: ActionComplete, actor: "s1", role: RoleStudent, wantKind: KindForbidden},

		{name: "completed is immutable", appt: appt(StatusCompleted, -2*time.Hour), action: ActionCancel, actor: "i1", role: RoleInstructor, wantKind: KindConflict},
		{name: "cancelled by user is immutable", appt: appt(StatusCancelledByUser, 48*time.Hour), action: ActionCancel, actor: "s1", role: RoleStudent, wantKind: KindConflict},
		{name: "cancelled by professor is immutable", appt: appt(StatusCancelledByProfessor, 48*time.Hour), action: ActionConfirm, actor: "i1", role: RoleInstructor, wantKind: KindConflict},
		{name: "unknown action", appt: appt(StatusPending, 48*time.Hour), action: "snooze", actor: "i1", role: RoleInstructor, wantKind: KindUnprocessable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextStatus(tt.appt, tt.action, tt.actor, tt.role, now)
			if tt.wantKind != "" {
				if err == nil {
					t.Fatalf("expected %s error, got status %q", tt.wantKind, got)
				}
				if kind := KindOf(err); kind != tt.wantKind {
					t.Fatalf("kind = %q (%v), want %q", kind, err, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("NextStatus error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("status = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNextStatus_NeverReturnsPending(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	actions := []Action{ActionConfirm, ActionReject, ActionCancel, ActionComplete}
	statuses := []AppointmentStatus{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelledByUser, StatusCancelledByProfessor}
	offsets := []time.Duration{-48 * time.Hour, time.Hour, 48 * time.Hour}

	for _, st := range statuses {
		for _, off := range offsets {
			for _, action := range actions {
				for _, role := range []Role{RoleStudent, RoleInstructor} {
					a := Appointment{
						StudentID:    "s1",
						InstructorID: "i1",
						StartTime:    now.Add(off),
						EndTime:      now.Add(off + LessonDuration),
						Status:       st,
					}
					actor := "s1"
					if role == RoleInstructor {
						actor = "i1"
					}
					got, err := NextStatus(a, action, actor, role, now)
					if err == nil && got == StatusPending {
						t.Fatalf("%s by %s from %s returned pending", action, role, st)
					}
					if err == nil && st.Terminal() {
						t.Fatalf("%s by %s from terminal %s succeeded", action, role, st)
					}
				}
			}
		}
	}
}

func TestParseStatusFilter(t *testing.T) {
	got, err := ParseStatusFilter("")
	if err != nil || got != nil {
		t.Fatalf("empty filter = %v, %v; want nil, nil", got, err)
	}

	got, err = ParseStatusFilter("cancelled")
	if err != nil {
		t.Fatalf("ParseStatusFilter error: %v", err)
	}
	if len(got) != 2 || got[0] != StatusCancelledByUser || got[1] != StatusCancelledByProfessor {
		t.Fatalf("cancelled filter = %v", got)
	}

	got, err = ParseStatusFilter("confirmed")
	if err != nil || len(got) != 1 || got[0] != StatusConfirmed {
		t.Fatalf("confirmed filter = %v, %v", got, err)
	}

	if _, err := ParseStatusFilter("archived"); KindOf(err) != KindUnprocessable {
		t.Fatalf("unknown filter err = %v, want unprocessable", err)
	}
}
