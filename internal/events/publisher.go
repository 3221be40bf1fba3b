package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"tutora/backend/internal/domain"
)

const DefaultSubjectPrefix = "tutora"

// AppointmentEvent is published after every committed lifecycle change.
type AppointmentEvent struct {
	EventType     string                   `json:"event_type"`
	AppointmentID uuid.UUID                `json:"appointment_id"`
	StudentID     string                   `json:"student_id"`
	InstructorID  string                   `json:"instructor_id"`
	SubjectID     string                   `json:"subject_id"`
	Status        domain.AppointmentStatus `json:"status"`
	StartTime     time.Time                `json:"start_time"`
	EndTime       time.Time                `json:"end_time"`
	OccurredAt    time.Time                `json:"occurred_at"`
}

func NewAppointmentEvent(action domain.Action, appt domain.Appointment, at time.Time) AppointmentEvent {
	return AppointmentEvent{
		EventType:     "appointment." + string(action),
		AppointmentID: appt.ID,
		StudentID:     appt.StudentID,
		InstructorID:  appt.InstructorID,
		SubjectID:     appt.SubjectID,
		Status:        appt.Status,
		StartTime:     appt.StartTime.UTC(),
		EndTime:       appt.EndTime.UTC(),
		OccurredAt:    at.UTC(),
	}
}

type Publisher interface {
	PublishAppointment(ctx context.Context, ev AppointmentEvent) error
}

type conn interface {
	Publish(subj string, data []byte) error
	Drain() error
}

type NatsPublisher struct {
	conn   conn
	prefix string
	logger *slog.Logger
}

func NewNatsPublisher(natsURL, subjectPrefix string, logger *slog.Logger) (*NatsPublisher, error) {
	nc, err := nats.Connect(natsURL,
		nats.Name("tutora-server"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "err", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return newPublisher(nc, subjectPrefix, logger), nil
}

func newPublisher(c conn, subjectPrefix string, logger *slog.Logger) *NatsPublisher {
	if subjectPrefix == "" {
		subjectPrefix = DefaultSubjectPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &NatsPublisher{conn: c, prefix: subjectPrefix, logger: logger}
}

// Subject returns "<prefix>.appointment.<action>" for the event.
func (p *NatsPublisher) Subject(ev AppointmentEvent) string {
	return p.prefix + "." + ev.EventType
}

func (p *NatsPublisher) PublishAppointment(ctx context.Context, ev AppointmentEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", ev.EventType, err)
	}

	subject := p.Subject(ev)
	if err := p.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}

	p.logger.Debug("published event", "subject", subject, "appointment_id", ev.AppointmentID.String())
	return nil
}

// Close flushes pending messages and closes the connection.
func (p *NatsPublisher) Close() error {
	return p.conn.Drain()
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) PublishAppointment(context.Context, AppointmentEvent) error { return nil }
