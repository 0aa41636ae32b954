package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/burntcarrot/threadpad/commons"
	"github.com/burntcarrot/threadpad/thread"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// client is a single connected user.
type client struct {
	conn     *websocket.Conn
	id       uuid.UUID
	siteID   uint32
	username string
}

// inbound is a message read from a client's connection.
type inbound struct {
	from *client
	msg  commons.Message
}

// Hub keeps the authoritative thread and relays operations between clients.
// Only the goroutine running run writes to connections.
type Hub struct {
	logger *logrus.Logger

	// mu guards thread, which is also read by the snapshot handler.
	mu     sync.RWMutex
	thread thread.Forest

	clients  map[*client]struct{}
	nextSite uint32

	register   chan *client
	unregister chan *client
	messages   chan inbound

	// done is closed once run returns.
	done chan struct{}
}

func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		logger:     logger,
		thread:     thread.NewForest(),
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		messages:   make(chan inbound),
		done:       make(chan struct{}),
	}
}

// Thread returns a snapshot of the current thread.
func (h *Hub) Thread() thread.Forest {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.thread
}

// run handles registrations and messages until ctx is done.
func (h *Hub) run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				c.conn.Close()
				delete(h.clients, c)
			}
			return

		case c := <-h.register:
			h.nextSite++
			c.siteID = h.nextSite
			h.clients[c] = struct{}{}
			h.logger.Infof("client %v connected, site ID %d", c.id, c.siteID)

			// The site ID comes first, so that the client can make ids before it sees the thread.
			h.send(c, commons.Message{Type: commons.SiteIDMessage, Text: strconv.FormatUint(uint64(c.siteID), 10), ID: c.id})
			h.send(c, commons.Message{Type: commons.DocSyncMessage, Thread: h.Thread()})

		case c := <-h.unregister:
			if _, ok := h.clients[c]; !ok {
				continue
			}
			delete(h.clients, c)
			c.conn.Close()
			h.logger.Infof("client %v (%s) disconnected", c.id, c.username)
			h.broadcastUsers()

		case in := <-h.messages:
			h.handleMsg(in)
		}
	}
}

func (h *Hub) handleMsg(in inbound) {
	msg := in.msg
	msg.ID = in.from.id

	switch msg.Type {
	case commons.JoinMessage:
		in.from.username = msg.Username
		t := time.Now().Format(time.ANSIC)
		color.Green("%s >> %s %s\n", t, msg.Username, msg.Text)
		h.broadcast(msg, in.from)
		h.broadcastUsers()

	case commons.OperationMessage:
		h.mu.Lock()
		f, err := thread.Apply(h.thread, msg.Operation)
		if err == nil {
			h.thread = f
		}
		h.mu.Unlock()

		if err != nil {
			h.logger.Warnf("dropping operation from %v: %v", in.from.id, err)
			return
		}
		h.logger.Debugf("%s %s from %s", msg.Operation.Type, msg.Operation.ID, msg.Username)
		h.broadcast(msg, in.from)

	case commons.DocReqMessage:
		h.send(in.from, commons.Message{Type: commons.DocSyncMessage, Thread: h.Thread()})

	default:
		h.logger.Warnf("unexpected message type %q from %v", msg.Type, in.from.id)
	}
}

// send writes msg to c. A client that can't be written to is dropped.
func (h *Hub) send(c *client, msg commons.Message) {
	if err := c.conn.WriteJSON(msg); err != nil {
		h.logger.Errorf("error sending message to client %v: %v", c.id, err)
		c.conn.Close()
		delete(h.clients, c)
	}
}

// broadcast sends msg to every client except its origin.
func (h *Hub) broadcast(msg commons.Message, origin *client) {
	for c := range h.clients {
		if c != origin {
			h.send(c, msg)
		}
	}
}

func (h *Hub) broadcastUsers() {
	users := make([]string, 0, len(h.clients))
	for c := range h.clients {
		if c.username != "" {
			users = append(users, c.username)
		}
	}
	for c := range h.clients {
		h.send(c, commons.Message{Type: commons.UsersMessage, Users: users})
	}
}

// Upgrader instance to upgrade all HTTP connections to a WebSocket.
var upgrader = websocket.Upgrader{}

// handleConn upgrades the connection, registers the client and reads its messages.
func (h *Hub) handleConn(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Errorf("error upgrading connection to websocket: %v", err)
		return
	}

	c := &client{conn: conn, id: uuid.New()}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	for {
		var msg commons.Message

		// Read message from the connection.
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warnf("read error from %v: %v", c.id, err)
			}
			select {
			case h.unregister <- c:
			case <-h.done:
			}
			return
		}

		select {
		case h.messages <- inbound{from: c, msg: msg}:
		case <-h.done:
			return
		}
	}
}

// handleThread writes the current thread as JSON.
func (h *Hub) handleThread(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.Thread()); err != nil {
		h.logger.Errorf("error writing thread: %v", err)
	}
}

func (h *Hub) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", h.handleConn)
	mux.HandleFunc("/thread", h.handleThread)
	return mux
}
