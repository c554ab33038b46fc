package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rustyeddy/papertrader/ledger"
	"github.com/rustyeddy/papertrader/market"
	"github.com/rustyeddy/papertrader/session"
	"github.com/sirupsen/logrus"
)

// Event types sent on the websocket stream.
const (
	EventTick  = "tick"
	EventTrade = "trade"
	EventState = "state"
)

const (
	writeWait  = 5 * time.Second
	hubBacklog = 256
	readLimit  = 512
)

// Event is one message on the websocket stream.
type Event struct {
	Type   string         `json:"type"`
	Quotes []market.Quote `json:"quotes,omitempty"`
	Trade  *ledger.Trade  `json:"trade,omitempty"`
	From   string         `json:"from,omitempty"`
	To     string         `json:"to,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub fans session events out to websocket clients. It is a
// session.Listener; events are queued and never block the session. When the
// queue is full the event is dropped.
type Hub struct {
	clients   map[*websocket.Conn]bool
	broadcast chan []byte
	lock      sync.Mutex
	log       logrus.FieldLogger
}

var _ session.Listener = (*Hub)(nil)

func NewHub(log logrus.FieldLogger) *Hub {
	return &Hub{
		clients:   make(map[*websocket.Conn]bool),
		broadcast: make(chan []byte, hubBacklog),
		log:       log,
	}
}

// Run writes queued events to every client until ctx is done, then closes
// all connections.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.lock.Lock()
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			h.lock.Unlock()
			return
		case message := <-h.broadcast:
			h.lock.Lock()
			for client := range h.clients {
				_ = client.SetWriteDeadline(time.Now().Add(writeWait))
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					client.Close()
					delete(h.clients, client)
				}
			}
			h.lock.Unlock()
		}
	}
}

func (h *Hub) Clients() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return len(h.clients)
}

// ServeWS upgrades the request and registers the connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("websocket upgrade")
		return
	}
	h.lock.Lock()
	h.clients[conn] = true
	h.lock.Unlock()

	go h.drain(conn)
}

// drain reads until the peer goes away so close frames are handled.
func (h *Hub) drain(conn *websocket.Conn) {
	conn.SetReadLimit(readLimit)
	for {
		if _, _, err := conn.NextReader(); err != nil {
			h.lock.Lock()
			if h.clients[conn] {
				conn.Close()
				delete(h.clients, conn)
			}
			h.lock.Unlock()
			return
		}
	}
}

func (h *Hub) Broadcast(ev Event) {
	msg, err := json.Marshal(ev)
	if err != nil {
		h.log.WithError(err).Warn("encode event")
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.log.WithField("type", ev.Type).Debug("event dropped")
	}
}

func (h *Hub) OnTick(q []market.Quote) {
	h.Broadcast(Event{Type: EventTick, Quotes: q})
}

func (h *Hub) OnTrade(t ledger.Trade) {
	h.Broadcast(Event{Type: EventTrade, Trade: &t})
}

func (h *Hub) OnStateChange(from, to session.State) {
	h.Broadcast(Event{Type: EventState, From: from.String(), To: to.String()})
}
