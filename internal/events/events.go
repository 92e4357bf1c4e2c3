package events

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TimeEntryCreated       Type = "time_entry.created"
	TimeEntryUpdated       Type = "time_entry.updated"
	TimeEntryDeleted       Type = "time_entry.deleted"
	VacationCreated        Type = "vacation.created"
	VacationUpdated        Type = "vacation.updated"
	VacationDeleted        Type = "vacation.deleted"
	ChangeRequestSubmitted Type = "change_request.submitted"
	ChangeRequestResolved  Type = "change_request.resolved"
	MissingEntries         Type = "missing_entries"
)

// ErrQueueFull - очередь событий переполнена, событие отброшено
var ErrQueueFull = errors.New("event queue is full")

// Event - сообщение о произошедшем изменении
type Event struct {
	ID         uuid.UUID         `json:"id"`
	Type       Type              `json:"type"`
	UserID     uint              `json:"user_id"`
	OccurredAt time.Time         `json:"occurred_at"`
	Payload    map[string]string `json:"payload,omitempty"`
}

func New(eventType Type, userID uint, occurredAt time.Time, payload map[string]string) Event {
	return Event{
		ID:         uuid.New(),
		Type:       eventType,
		UserID:     userID,
		OccurredAt: occurredAt,
		Payload:    payload,
	}
}

// Publisher доставляет события получателям. Ошибка доставки не отменяет изменение.
type Publisher interface {
	Publish(ctx context.Context, evt Event) error
}

// Handler обрабатывает событие
type Handler interface {
	Handle(ctx context.Context, evt Event) error
}

type HandlerFunc func(ctx context.Context, evt Event) error

func (f HandlerFunc) Handle(ctx context.Context, evt Event) error {
	return f(ctx, evt)
}

// NopPublisher отбрасывает события
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error {
	return nil
}

// Recorder запоминает опубликованные события
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, evt Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

func (r *Recorder) Handle(ctx context.Context, evt Event) error {
	return r.Publish(ctx, evt)
}

// Events возвращает копию полученных событий
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// OfType возвращает события указанного типа
func (r *Recorder) OfType(t Type) []Event {
	var result []Event
	for _, evt := range r.Events() {
		if evt.Type == t {
			result = append(result, evt)
		}
	}
	return result
}
