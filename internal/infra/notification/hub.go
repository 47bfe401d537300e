// notification fans conflict events out to connected clients over
// websockets. Delivery is strictly best effort: a subscriber that cannot
// keep up loses events rather than slowing down conflict detection.
package notification

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/kalyan021004/todoboard/internal/config"
	"github.com/kalyan021004/todoboard/internal/domain/actor"
	"github.com/kalyan021004/todoboard/internal/domain/conflict"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

// Hub tracks the open subscriptions per actor and routes published events
// to them. It implements conflict.Fanout.
//
// An actor may hold several subscriptions at once (multiple tabs, multiple
// devices); every one of them gets each event.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[actor.Id]map[*Subscriber]struct{}
	bufferSize  uint
}

func NewHub(settings config.Notifications) *Hub {
	return &Hub{
		subscribers: make(map[actor.Id]map[*Subscriber]struct{}),
		bufferSize:  settings.BufferSize,
	}
}

// Subscriber is one open event stream for one actor.
type Subscriber struct {
	actorId actor.Id
	events  chan conflict.Event
}

// Events is the stream of events for this subscription. It is closed on
// Unsubscribe.
func (s *Subscriber) Events() <-chan conflict.Event {
	return s.events
}

func (h *Hub) Subscribe(id actor.Id) *Subscriber {
	sub := &Subscriber{
		actorId: id,
		events:  make(chan conflict.Event, h.bufferSize),
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	forActor, ok := h.subscribers[id]
	if !ok {
		forActor = make(map[*Subscriber]struct{})
		h.subscribers[id] = forActor
	}
	forActor[sub] = struct{}{}
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	forActor, ok := h.subscribers[sub.actorId]
	if !ok {
		return
	}
	if _, stillThere := forActor[sub]; !stillThere {
		return
	}
	delete(forActor, sub)
	if len(forActor) == 0 {
		delete(h.subscribers, sub.actorId)
	}
	close(sub.events)
}

// Publish delivers the event to every open subscription for the actor
// without ever blocking the caller: a subscription whose buffer is full
// simply drops the event.
func (h *Hub) Publish(to actor.Id, event conflict.Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subscribers[to] {
		select {
		case sub.events <- event:
		default:
			log.Warn().
				Str("actor_id", string(to)).
				Str("conflict_id", string(event.ConflictId)).
				Msg("Subscriber buffer full, dropping conflict event")
		}
	}
}

// SubscriberCount is for tests and diagnostics.
func (h *Hub) SubscriberCount(id actor.Id) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[id])
}

// ServeConn pumps events for the given actor into an upgraded websocket
// connection until the connection dies or the context of the request is
// torn down. Blocks; run from the request handler goroutine.
func (h *Hub) ServeConn(conn *websocket.Conn, id actor.Id) {
	sub := h.Subscribe(id)
	defer h.Unsubscribe(sub)
	defer conn.Close()

	// reader goroutine: we never expect client messages, but reading is
	// what surfaces close frames
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case event, ok := <-sub.events:
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(event); err != nil {
				log.Debug().
					Err(err).
					Str("actor_id", string(id)).
					Msg("Dropping dead event subscriber")
				return
			}
		case <-pingTicker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
