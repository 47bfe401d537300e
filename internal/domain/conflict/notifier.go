package conflict

import (
	"github.com/rs/zerolog/log"

	"github.com/kalyan021004/todoboard/internal/domain/actor"
	"github.com/kalyan021004/todoboard/internal/domain/board"
	"github.com/kalyan021004/todoboard/internal/domain/task"
)

// EventType classifies a conflict event for its recipient so clients can
// tailor their prompt.
type EventType string

const (
	// Sent to the actor whose successful write is now being contested.
	YourChangesOverwritten EventType = "YOUR_CHANGES_OVERWRITTEN"
	// Sent to the actor whose write attempt just bounced.
	VersionMismatch EventType = "VERSION_MISMATCH"
)

// RecipientRole says which side of the divergence the recipient is on.
type RecipientRole string

const (
	StaleWriter    RecipientRole = "stale-writer"
	IncomingWriter RecipientRole = "incoming-writer"
)

// Event is one conflict notification addressed to one actor.
type Event struct {
	ConflictId      Id            `json:"conflictId"`
	Board           board.Name    `json:"board"`
	TaskId          task.Id       `json:"taskId"`
	TaskTitle       string        `json:"taskTitle"`
	Type            EventType     `json:"type"`
	Role            RecipientRole `json:"role"`
	CounterpartName actor.Name    `json:"counterpartName"`
}

// Fanout delivers Events to actors. Delivery is advisory: implementations
// must not block the caller and must swallow (and log) their own failures;
// a dropped notification never fails or rolls back conflict detection.
type Fanout interface {
	Publish(to actor.Id, event Event)
}

// Notifier routes a freshly detected Record to the actors that need to act
// on it.
type Notifier interface {
	NotifyDetected(record *Record)
}

// NewNotifier returns a Notifier that pushes over the given Fanout. The
// fanout handle is an explicit dependency on purpose; nothing here reaches
// for a shared global transport.
func NewNotifier(fanout Fanout) Notifier {
	return &notifierImpl{fanout: fanout}
}

type notifierImpl struct {
	fanout Fanout
}

func (n *notifierImpl) NotifyDetected(record *Record) {
	events := EventsForRecord(record)
	if log.Debug().Enabled() {
		log.Debug().
			Str("conflict_id", string(record.ID)).
			Int("recipients", len(events)).
			Msg("Dispatching conflict notifications")
	}
	for to, event := range events {
		n.fanout.Publish(to, event)
	}
}

// EventsForRecord computes the per-recipient events for a Record: one for
// the stale writer (owner of the current version) and one for the incoming
// writer. When both are the same actor, e.g. a user conflicting with their
// own earlier tab, only the incoming-writer event is produced.
func EventsForRecord(record *Record) map[actor.Id]Event {
	events := make(map[actor.Id]Event, 2)

	common := Event{
		ConflictId: record.ID,
		Board:      record.Board,
		TaskId:     record.TaskId,
		TaskTitle:  record.Current.Data.Title,
	}

	if staleWriter := record.Current.ModifiedBy; staleWriter != nil {
		event := common
		event.Type = YourChangesOverwritten
		event.Role = StaleWriter
		if incoming := record.Incoming.ModifiedBy; incoming != nil {
			event.CounterpartName = incoming.Name
		}
		events[staleWriter.ID] = event
	}

	// Inserted second: on a self-conflict this overwrites the stale-writer
	// event, so the actor gets exactly one message.
	if incomingWriter := record.Incoming.ModifiedBy; incomingWriter != nil {
		event := common
		event.Type = VersionMismatch
		event.Role = IncomingWriter
		if current := record.Current.ModifiedBy; current != nil {
			event.CounterpartName = current.Name
		}
		events[incomingWriter.ID] = event
	}

	return events
}

// MockFanout is a Fanout for tests.
type MockFanout struct {
	PublishCalled uint
	Published     map[actor.Id][]Event
}

func (m *MockFanout) Publish(to actor.Id, event Event) {
	m.PublishCalled++
	if m.Published == nil {
		m.Published = make(map[actor.Id][]Event)
	}
	m.Published[to] = append(m.Published[to], event)
}

// MockNotifier is a Notifier for tests.
type MockNotifier struct {
	NotifyDetectedCalled uint
	Notified             []*Record
}

func (m *MockNotifier) NotifyDetected(record *Record) {
	m.NotifyDetectedCalled++
	m.Notified = append(m.Notified, record)
}
