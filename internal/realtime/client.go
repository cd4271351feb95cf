// Package realtime consumes the managed backend's change-notification
// stream and reconciles it into local state.
//
// The stream speaks phoenix-style channels over a websocket: the client
// joins one topic per watched table, answers with heartbeats, and receives
// a full updated row with every change event. Subscriptions are ephemeral —
// after a reconnect there is no replay of missed notifications; state
// catches up on the next full fetch or the next live event.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	heartbeatInterval = 30 * time.Second
	reconnectDelay    = 5 * time.Second
	writeTimeout      = 10 * time.Second
)

// Event is one decoded change notification.
type Event struct {
	Table  string          // e.g. "kols", "kol_comments", "bounties"
	Type   string          // "INSERT", "UPDATE" or "DELETE"
	Record json.RawMessage // the full updated row
}

// message is the phoenix channel wire envelope.
type message struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     string          `json:"ref,omitempty"`
}

// changePayload is the payload of a postgres change event.
type changePayload struct {
	Type   string          `json:"type"`
	Record json.RawMessage `json:"record"`
}

// Client maintains the websocket subscription and hands every decoded
// change event to the dispatcher. One Client instance serves the whole
// process; per-entity filtering happens downstream.
type Client struct {
	url      string
	tables   []string
	dispatch func(Event)
	ref      atomic.Uint64

	// OnReconnect, when set, fires before each reconnect attempt.
	OnReconnect func()
}

// NewClient watches the given tables. dispatch is called from the read
// loop goroutine, one event at a time.
func NewClient(url string, tables []string, dispatch func(Event)) *Client {
	return &Client{url: url, tables: tables, dispatch: dispatch}
}

// Run connects and consumes events until the context is cancelled,
// reconnecting after transient failures.
func (c *Client) Run(ctx context.Context) {
	log.Printf("realtime: starting (url=%s, tables=%v)", c.url, c.tables)

	for {
		if err := c.connectAndRead(ctx); err != nil {
			if ctx.Err() != nil {
				log.Println("realtime: stopping (context cancelled)")
				return
			}
			log.Printf("realtime: connection error, reconnecting in %s: %v", reconnectDelay, err)
			if c.OnReconnect != nil {
				c.OnReconnect()
			}
			select {
			case <-time.After(reconnectDelay):
			case <-ctx.Done():
				log.Println("realtime: stopping (context cancelled)")
				return
			}
		}
	}
}

func (c *Client) connectAndRead(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	for _, table := range c.tables {
		join := message{
			Topic:   topicFor(table),
			Event:   "phx_join",
			Payload: json.RawMessage(`{}`),
			Ref:     c.nextRef(),
		}
		conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := conn.WriteJSON(join); err != nil {
			return fmt.Errorf("join %s: %w", table, err)
		}
	}
	log.Printf("realtime: subscribed to %d topics", len(c.tables))

	hbCtx, hbCancel := context.WithCancel(ctx)
	defer hbCancel()
	go c.heartbeatLoop(hbCtx, conn)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		ev, ok := decodeEvent(msg)
		if !ok {
			continue
		}
		c.dispatch(ev)
	}
}

func (c *Client) heartbeatLoop(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			hb := message{
				Topic:   "phoenix",
				Event:   "heartbeat",
				Payload: json.RawMessage(`{}`),
				Ref:     c.nextRef(),
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(hb); err != nil {
				// The read loop will surface the broken connection.
				log.Printf("realtime: heartbeat error: %v", err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) nextRef() string {
	return strconv.FormatUint(c.ref.Add(1), 10)
}

// topicFor maps a table name onto its channel topic.
func topicFor(table string) string {
	return "realtime:public:" + table
}

// decodeEvent turns a wire message into an Event. Protocol chatter
// (join replies, heartbeat acks) is skipped.
func decodeEvent(msg message) (Event, bool) {
	switch msg.Event {
	case "INSERT", "UPDATE", "DELETE":
	default:
		return Event{}, false
	}

	var payload changePayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("realtime: undecodable %s payload on %s: %v", msg.Event, msg.Topic, err)
		return Event{}, false
	}

	return Event{
		Table:  tableFrom(msg.Topic),
		Type:   msg.Event,
		Record: payload.Record,
	}, true
}

// tableFrom extracts the table name from a "realtime:public:<table>" topic.
func tableFrom(topic string) string {
	const prefix = "realtime:public:"
	if len(topic) > len(prefix) && topic[:len(prefix)] == prefix {
		return topic[len(prefix):]
	}
	return topic
}
