package grpc

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"tutora/backend/internal/domain"
	tutorav1 "tutora/backend/internal/rpc/tutora/v1"
	"tutora/backend/internal/service/appointments"
	"tutora/backend/internal/service/availability"
)

const errorDomain = "tutora.v1"

type BookingServer struct {
	tutorav1.UnimplementedBookingServiceServer

	appts appointmentsService
	avail availabilityService
	log   *slog.Logger
}

type appointmentsService interface {
	Create(ctx context.Context, in appointments.CreateInput) (domain.Appointment, error)
	List(ctx context.Context, in appointments.ListInput) ([]domain.Appointment, error)
	Confirm(ctx context.Context, in appointments.TransitionInput) (domain.Appointment, error)
	Reject(ctx context.Context, in appointments.TransitionInput) (domain.Appointment, error)
	Complete(ctx context.Context, in appointments.TransitionInput) (domain.Appointment, error)
	Cancel(ctx context.Context, in appointments.TransitionInput) (domain.Appointment, error)
}

type availabilityService interface {
	ReplaceRules(ctx context.Context, in availability.ReplaceInput) ([]domain.AvailabilityRule, error)
	Rules(ctx context.Context, instructorID string) ([]domain.AvailabilityRule, error)
	FreeSlots(ctx context.Context, in availability.FreeSlotsInput) ([]time.Time, error)
}

func NewBookingServer(appts appointmentsService, avail availabilityService, log *slog.Logger) *BookingServer {
	if log == nil {
		log = slog.Default()
	}
	return &BookingServer{
		appts: appts,
		avail: avail,
		log:   log.With(slog.String("component", "grpc.booking")),
	}
}

func (s *BookingServer) CreateAppointment(ctx context.Context, req *tutorav1.CreateAppointmentRequest) (*tutorav1.CreateAppointmentResponse, error) {
	log := s.log.With(slog.String("rpc", "CreateAppointment"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	if strings.TrimSpace(req.StartTime) == "" {
		log.Warn("invalid request", slog.String("reason", "missing_start_time"), slog.String("student_id", req.StudentId))
		return nil, status.Error(codes.InvalidArgument, "start_time is required")
	}
	start, err := time.Parse(time.RFC3339, strings.TrimSpace(req.StartTime))
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_start_time"), slog.String("student_id", req.StudentId))
		return nil, status.Error(codes.InvalidArgument, "start_time must be an RFC 3339 timestamp")
	}

	appt, err := s.appts.Create(ctx, appointments.CreateInput{
		StudentID:       req.StudentId,
		InstructorID:    req.InstructorId,
		SubjectID:       req.SubjectId,
		StartTime:       start,
		LocationDetails: req.LocationDetails,
		IdempotencyKey:  idempotencyKey(ctx),
	})
	if err != nil {
		return nil, toStatus(log, err,
			slog.String("student_id", req.StudentId),
			slog.String("instructor_id", req.InstructorId),
			slog.Time("start_time", start),
		)
	}

	log.Info(
		"appointment created",
		slog.String("appointment_id", appt.ID.String()),
		slog.String("student_id", appt.StudentID),
		slog.String("instructor_id", appt.InstructorID),
		slog.Time("start_time", appt.StartTime),
	)

	return &tutorav1.CreateAppointmentResponse{Appointment: toWireAppointment(appt)}, nil
}

func idempotencyKey(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	values := md.Get("idempotency-key")
	if len(values) == 0 {
		values = md.Get("x-idempotency-key")
	}
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

func (s *BookingServer) ListAppointments(ctx context.Context, req *tutorav1.ListAppointmentsRequest) (*tutorav1.ListAppointmentsResponse, error) {
	log := s.log.With(slog.String("rpc", "ListAppointments"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	appts, err := s.appts.List(ctx, appointments.ListInput{
		ActorID: req.ActorId,
		Role:    req.Role,
		Status:  req.Status,
	})
	if err != nil {
		return nil, toStatus(log, err, slog.String("actor_id", req.ActorId), slog.String("role", req.Role))
	}

	out := make([]*tutorav1.Appointment, 0, len(appts))
	for _, a := range appts {
		out = append(out, toWireAppointment(a))
	}

	log.Debug(
		"appointments listed",
		slog.String("actor_id", req.ActorId),
		slog.String("role", req.Role),
		slog.String("status", req.Status),
		slog.Int("count", len(out)),
	)

	return &tutorav1.ListAppointmentsResponse{Appointments: out}, nil
}

func (s *BookingServer) ConfirmAppointment(ctx context.Context, req *tutorav1.TransitionAppointmentRequest) (*tutorav1.TransitionAppointmentResponse, error) {
	return s.transition(ctx, "ConfirmAppointment", req, s.appts.Confirm)
}

func (s *BookingServer) RejectAppointment(ctx context.Context, req *tutorav1.TransitionAppointmentRequest) (*tutorav1.TransitionAppointmentResponse, error) {
	return s.transition(ctx, "RejectAppointment", req, s.appts.Reject)
}

func (s *BookingServer) CompleteAppointment(ctx context.Context, req *tutorav1.TransitionAppointmentRequest) (*tutorav1.TransitionAppointmentResponse, error) {
	return s.transition(ctx, "CompleteAppointment", req, s.appts.Complete)
}

func (s *BookingServer) CancelAppointment(ctx context.Context, req *tutorav1.TransitionAppointmentRequest) (*tutorav1.TransitionAppointmentResponse, error) {
	return s.transition(ctx, "CancelAppointment", req, s.appts.Cancel)
}

func (s *BookingServer) transition(
	ctx context.Context,
	rpc string,
	req *tutorav1.TransitionAppointmentRequest,
	apply func(context.Context, appointments.TransitionInput) (domain.Appointment, error),
) (*tutorav1.TransitionAppointmentResponse, error) {
	log := s.log.With(slog.String("rpc", rpc))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	id, err := uuid.Parse(req.AppointmentId)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_uuid"), slog.String("actor_id", req.ActorId))
		return nil, status.Error(codes.InvalidArgument, "appointment_id must be a UUID")
	}

	appt, err := apply(ctx, appointments.TransitionInput{
		ActorID:       req.ActorId,
		Role:          req.Role,
		AppointmentID: id,
	})
	if err != nil {
		return nil, toStatus(log, err,
			slog.String("appointment_id", id.String()),
			slog.String("actor_id", req.ActorId),
			slog.String("role", req.Role),
		)
	}

	log.Info(
		"appointment updated",
		slog.String("appointment_id", appt.ID.String()),
		slog.String("actor_id", req.ActorId),
		slog.String("status", string(appt.Status)),
	)

	return &tutorav1.TransitionAppointmentResponse{Appointment: toWireAppointment(appt)}, nil
}

func (s *BookingServer) ReplaceAvailability(ctx context.Context, req *tutorav1.ReplaceAvailabilityRequest) (*tutorav1.ReplaceAvailabilityResponse, error) {
	log := s.log.With(slog.String("rpc", "ReplaceAvailability"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	in := availability.ReplaceInput{
		InstructorID: req.InstructorId,
		Rules:        make([]availability.RuleInput, 0, len(req.Rules)),
	}
	for _, r := range req.Rules {
		if r == nil {
			continue
		}
		in.Rules = append(in.Rules, availability.RuleInput{
			DayOfWeek: int(r.DayOfWeek),
			StartTime: r.StartTime,
			EndTime:   r.EndTime,
		})
	}

	rules, err := s.avail.ReplaceRules(ctx, in)
	if err != nil {
		return nil, toStatus(log, err, slog.String("instructor_id", req.InstructorId))
	}

	log.Info("availability replaced", slog.String("instructor_id", req.InstructorId), slog.Int("rules", len(rules)))
	return &tutorav1.ReplaceAvailabilityResponse{Rules: toWireRules(rules)}, nil
}

func (s *BookingServer) GetAvailability(ctx context.Context, req *tutorav1.GetAvailabilityRequest) (*tutorav1.GetAvailabilityResponse, error) {
	log := s.log.With(slog.String("rpc", "GetAvailability"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	rules, err := s.avail.Rules(ctx, req.InstructorId)
	if err != nil {
		return nil, toStatus(log, err, slog.String("instructor_id", req.InstructorId))
	}
	return &tutorav1.GetAvailabilityResponse{Rules: toWireRules(rules)}, nil
}

func (s *BookingServer) ListFreeSlots(ctx context.Context, req *tutorav1.ListFreeSlotsRequest) (*tutorav1.ListFreeSlotsResponse, error) {
	log := s.log.With(slog.String("rpc", "ListFreeSlots"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	rangeStart, err := parseDate(req.RangeStart)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_range_start"), slog.String("instructor_id", req.InstructorId))
		return nil, status.Error(codes.InvalidArgument, "range_start must be a YYYY-MM-DD date")
	}
	rangeEnd, err := parseDate(req.RangeEnd)
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_range_end"), slog.String("instructor_id", req.InstructorId))
		return nil, status.Error(codes.InvalidArgument, "range_end must be a YYYY-MM-DD date")
	}

	slots, err := s.avail.FreeSlots(ctx, availability.FreeSlotsInput{
		InstructorID: req.InstructorId,
		RangeStart:   rangeStart,
		RangeEnd:     rangeEnd,
	})
	if err != nil {
		return nil, toStatus(log, err, slog.String("instructor_id", req.InstructorId))
	}

	out := make([]string, 0, len(slots))
	for _, slot := range slots {
		out = append(out, formatTime(slot))
	}

	log.Debug("free slots listed", slog.String("instructor_id", req.InstructorId), slog.Int("count", len(out)))
	return &tutorav1.ListFreeSlotsResponse{Slots: out}, nil
}

// toStatus maps business errors onto gRPC codes and hides everything else
// behind Internal. The ErrorInfo reason carries the business error kind.
func toStatus(log *slog.Logger, err error, attrs ...any) error {
	var derr *domain.Error
	if !errors.As(err, &derr) {
		log.Error("request failed", append([]any{slog.Any("err", err)}, attrs...)...)
		return status.Error(codes.Internal, "internal error")
	}

	code := codes.Internal
	switch derr.Kind {
	case domain.KindNotFound:
		code = codes.NotFound
	case domain.KindForbidden:
		code = codes.PermissionDenied
	case domain.KindConflict:
		code = codes.FailedPrecondition
	case domain.KindUnprocessable:
		code = codes.InvalidArgument
	}

	log.Info("request rejected", append([]any{slog.String("kind", string(derr.Kind)), slog.String("reason", derr.Msg)}, attrs...)...)

	st := status.New(code, derr.Msg)
	if detailed, detailErr := st.WithDetails(&errdetails.ErrorInfo{
		Reason: strings.ToUpper(string(derr.Kind)),
		Domain: errorDomain,
	}); detailErr == nil {
		st = detailed
	}
	return st.Err()
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.DateOnly, s)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func toWireAppointment(a domain.Appointment) *tutorav1.Appointment {
	return &tutorav1.Appointment{
		Id:              a.ID.String(),
		StudentId:       a.StudentID,
		InstructorId:    a.InstructorID,
		SubjectId:       a.SubjectID,
		StartTime:       formatTime(a.StartTime),
		EndTime:         formatTime(a.EndTime),
		PriceCents:      a.PriceCents,
		LocationDetails: a.LocationDetails,
		Status:          string(a.Status),
		CreatedAt:       formatTime(a.CreatedAt),
		UpdatedAt:       formatTime(a.UpdatedAt),
	}
}

func toWireRules(rules []domain.AvailabilityRule) []*tutorav1.AvailabilityRule {
	out := make([]*tutorav1.AvailabilityRule, 0, len(rules))
	for _, r := range rules {
		out = append(out, &tutorav1.AvailabilityRule{
			DayOfWeek: int32(r.DayOfWeek),
			StartTime: r.StartTime.String(),
			EndTime:   r.EndTime.String(),
		})
	}
	return out
}
