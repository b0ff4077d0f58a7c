/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"golang.org/x/time/rate"
)

const (
	sendBuffer     = 32
	eventRate      = 5
	eventBurst     = 10
	maxMessageSize = 4096
	writeTimeout   = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Client is one websocket connection. Its identity fields are only touched
// from readPump, which handles events one at a time.
type Client struct {
	conn    *websocket.Conn
	send    chan any
	done    chan struct{}
	once    sync.Once
	limiter *rate.Limiter

	pongWait   time.Duration
	pingPeriod time.Duration

	playerID string
	roomCode string
	token    string
}

// newClient wraps conn. A peer that answers no ping within keepalive is
// treated as gone.
func newClient(conn *websocket.Conn, keepalive time.Duration) *Client {
	return &Client{
		conn:       conn,
		send:       make(chan any, sendBuffer),
		done:       make(chan struct{}),
		limiter:    rate.NewLimiter(eventRate, eventBurst),
		pongWait:   keepalive,
		pingPeriod: keepalive * 9 / 10,
	}
}

func (c *Client) deliver(msg any) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// drop closes the connection; readPump then runs disconnect handling.
func (c *Client) drop() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.pingPeriod)
	defer func() {
		ticker.Stop()
		c.drop()
	}()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) readPump(cfg *Config, g *Registry) {
	defer func() {
		if c.roomCode != "" {
			g.Disconnect(c, c.roomCode, c.playerID)
		}
		c.drop()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.pongWait))
	})

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}

		if !c.limiter.Allow() {
			c.ack(msg.ID, nil, errRateLimited)
			continue
		}

		result, err := c.handle(g, msg)
		if err != nil && errorCode(err) == errServer.code {
			logf(cfg, "ERROR: %s from %s: %v", msg.Event, c.conn.RemoteAddr(), err)
		}
		c.ack(msg.ID, result, err)
	}
}

func (c *Client) ack(id int64, result any, err error) {
	reply := AckMessage{Event: eventAck, ID: id, OK: err == nil, Result: result}
	if err != nil {
		reply.Error = errorCode(err)
		reply.Result = nil
	}
	if !c.deliver(reply) {
		c.drop()
	}
}

func decode(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errBadRequest
	}
	return nil
}

// bind moves this connection's identity to a new seat. Leaving another room
// this way counts as a disconnect from it.
func (c *Client) bind(g *Registry, code, playerID, token string) {
	if c.roomCode != "" && c.roomCode != code {
		g.Disconnect(c, c.roomCode, c.playerID)
	}
	c.roomCode = code
	c.playerID = playerID
	if token != "" {
		c.token = token
	}
}

func (c *Client) handle(g *Registry, msg ClientMessage) (any, error) {
	switch msg.Event {
	case eventResume:
		var req resumeRequest
		if err := decode(msg.Data, &req); err != nil {
			return nil, err
		}
		res, err := g.Resume(c, req.Token)
		if err != nil {
			return nil, err
		}
		c.bind(g, res.RoomCode, res.You, req.Token)
		return res, nil

	case eventRoomCreate:
		var req createRequest
		if err := decode(msg.Data, &req); err != nil {
			return nil, err
		}
		res, err := g.Create(c, req.Name, req.Password)
		if err != nil {
			return nil, err
		}
		c.bind(g, res.RoomCode, res.You, res.Token)
		return res, nil

	case eventRoomJoin:
		var req joinRequest
		if err := decode(msg.Data, &req); err != nil {
			return nil, err
		}
		res, err := g.Join(c, req.Code, req.Name, req.Password)
		if err != nil {
			return nil, err
		}
		c.bind(g, res.State.Code, res.You, res.Token)
		return res, nil

	case eventLeave:
		g.Leave(c.token)
		c.token = ""
		return nil, nil

	case eventAliasSubmit:
		var req aliasRequest
		if err := decode(msg.Data, &req); err != nil {
			return nil, err
		}
		return nil, g.SubmitAlias(req.Code, c.playerID, req.PlayerID, req.Alias)

	case eventRoomReveal:
		var req roomRequest
		if err := decode(msg.Data, &req); err != nil {
			return nil, err
		}
		return nil, g.Reveal(req.Code, c.playerID)

	case eventStartTurns:
		var req roomRequest
		if err := decode(msg.Data, &req); err != nil {
			return nil, err
		}
		return nil, g.StartTurns(req.Code, c.playerID)

	case eventGuess:
		var req guessRequest
		if err := decode(msg.Data, &req); err != nil {
			return nil, err
		}
		correct, err := g.Guess(req.Code, c.playerID, req.PlayerID, req.TargetID, req.AliasText)
		if err != nil {
			return nil, err
		}
		return guessResult{Correct: correct}, nil
	}

	return nil, errBadRequest
}

func serveWS(cfg *Config, g *Registry) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logf(cfg, "ERROR: websocket upgrade from %s: %v", realIP(r), err)
			return
		}

		logf(cfg, "SERVE: Websocket opened by %s", realIP(r))

		client := newClient(conn, cfg.keepalive)

		go client.writePump()
		client.readPump(cfg, g)
	}
}
