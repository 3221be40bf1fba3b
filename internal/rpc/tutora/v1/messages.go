// Package tutorav1 holds the wire types, codec and service descriptor of the
// tutora.v1.BookingService gRPC API. Messages travel as JSON and every
// timestamp is an RFC 3339 string in UTC.
package tutorav1

type Appointment struct {
	Id              string `json:"id"`
	StudentId       string `json:"student_id"`
	InstructorId    string `json:"instructor_id"`
	SubjectId       string `json:"subject_id"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	PriceCents      int64  `json:"price_cents"`
	LocationDetails string `json:"location_details,omitempty"`
	Status          string `json:"status"`
	CreatedAt       string `json:"created_at,omitempty"`
	UpdatedAt       string `json:"updated_at,omitempty"`
}

type CreateAppointmentRequest struct {
	StudentId       string `json:"student_id"`
	InstructorId    string `json:"instructor_id"`
	SubjectId       string `json:"subject_id"`
	StartTime       string `json:"start_time"`
	LocationDetails string `json:"location_details,omitempty"`
}

type CreateAppointmentResponse struct {
	Appointment *Appointment `json:"appointment"`
}

type ListAppointmentsRequest struct {
	ActorId string `json:"actor_id"`
	Role    string `json:"role"`
	// Status is one of the appointment statuses, "cancelled" for both
	// cancellation states, or empty for all.
	Status string `json:"status,omitempty"`
}

type ListAppointmentsResponse struct {
	Appointments []*Appointment `json:"appointments"`
}

// TransitionAppointmentRequest is shared by Confirm, Reject, Complete and
// Cancel.
type TransitionAppointmentRequest struct {
	ActorId       string `json:"actor_id"`
	Role          string `json:"role"`
	AppointmentId string `json:"appointment_id"`
}

type TransitionAppointmentResponse struct {
	Appointment *Appointment `json:"appointment"`
}

type AvailabilityRule struct {
	DayOfWeek int32  `json:"day_of_week"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type ReplaceAvailabilityRequest struct {
	InstructorId string              `json:"instructor_id"`
	Rules        []*AvailabilityRule `json:"rules"`
}

type ReplaceAvailabilityResponse struct {
	Rules []*AvailabilityRule `json:"rules"`
}

type GetAvailabilityRequest struct {
	InstructorId string `json:"instructor_id"`
}

type GetAvailabilityResponse struct {
	Rules []*AvailabilityRule `json:"rules"`
}

type ListFreeSlotsRequest struct {
	InstructorId string `json:"instructor_id"`
	// RangeStart and RangeEnd are YYYY-MM-DD dates, both inclusive.
	RangeStart string `json:"range_start,omitempty"`
	RangeEnd   string `json:"range_end,omitempty"`
}

type ListFreeSlotsResponse struct {
	Slots []string `json:"slots"`
}
