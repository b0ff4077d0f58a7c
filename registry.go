/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	roomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	roomCodeLength   = 4
	roomCodeAttempts = 64
	minPasswordLen   = 4
)

var errCodeSpaceExhausted = errors.New("no free room code")

// Registry owns every room, resume session and countdown in the process. It
// is created once at startup and lives as long as the server.
type Registry struct {
	cfg *Config

	mu    sync.RWMutex
	rooms map[string]*Room

	sessions *sessionStore
	timers   *countdowns

	now     func() time.Time
	newCode func() (string, error)
}

func newRegistry(cfg *Config) *Registry {
	g := &Registry{
		cfg:      cfg,
		rooms:    make(map[string]*Room),
		sessions: newSessionStore(),
		now:      time.Now,
		newCode:  randomRoomCode,
	}
	g.timers = newCountdowns(cfg.tick, g.tick)

	return g
}

// randomRoomCode draws each character uniformly from roomCodeAlphabet using
// crypto/rand with rejection sampling.
func randomRoomCode() (string, error) {
	const limit = byte(255 - (256 % len(roomCodeAlphabet)))

	out := make([]byte, 0, roomCodeLength)
	buf := make([]byte, roomCodeLength*2)

	for len(out) < roomCodeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("reading random room code: %w", err)
		}

		for _, b := range buf {
			if b <= limit {
				out = append(out, roomCodeAlphabet[int(b)%len(roomCodeAlphabet)])
				if len(out) == roomCodeLength {
					break
				}
			}
		}
	}

	return string(out), nil
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (g *Registry) room(code string) *Room {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.rooms[normalizeCode(code)]
}

// uniqueCodeLocked retries on collision rather than overwriting a live room.
func (g *Registry) uniqueCodeLocked() (string, error) {
	for range roomCodeAttempts {
		code, err := g.newCode()
		if err != nil {
			return "", err
		}
		if _, exists := g.rooms[code]; !exists {
			return code, nil
		}
	}
	return "", errCodeSpaceExhausted
}

func (g *Registry) Create(sub subscriber, name, password string) (createResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return createResult{}, errNameRequired
	}
	if len([]rune(strings.TrimSpace(password))) < minPasswordLen {
		return createResult{}, errPasswordShort
	}

	playerID := uuid.NewString()

	g.mu.Lock()
	code, err := g.uniqueCodeLocked()
	if err != nil {
		g.mu.Unlock()
		return createResult{}, fmt.Errorf("creating room: %w", err)
	}

	room := newRoom(code, digestPassword(password), g.cfg.settings(), g.now())
	room.addPlayerLocked(playerID, name, true, g.now())
	g.rooms[code] = room
	g.mu.Unlock()

	token := g.sessions.issue(code, playerID)

	room.mu.Lock()
	defer room.mu.Unlock()

	room.attachLocked(sub, playerID)
	room.broadcastStateLocked()

	logf(g.cfg, "ROOMS: Player %q created room %s", name, code)

	return createResult{
		RoomCode: code,
		You:      playerID,
		Token:    token,
		State:    room.snapshotLocked(playerID),
	}, nil
}

func (g *Registry) Join(sub subscriber, code, name, password string) (joinResult, error) {
	room := g.room(code)
	if room == nil {
		return joinResult{}, errRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	p, err := room.joinLocked(uuid.NewString(), name, digestPassword(password), g.now())
	if err != nil {
		return joinResult{}, err
	}

	token := g.sessions.issue(room.code, p.ID)

	room.attachLocked(sub, p.ID)
	room.broadcastStateLocked()

	logf(g.cfg, "ROOMS: Player %q joined room %s", p.Name, room.code)

	return joinResult{
		You:   p.ID,
		Token: token,
		State: room.snapshotLocked(p.ID),
	}, nil
}

func (g *Registry) Resume(sub subscriber, token string) (resumeResult, error) {
	sess, ok := g.sessions.lookup(token)
	if !ok {
		return resumeResult{}, errNoSession
	}

	room := g.room(sess.RoomCode)
	if room == nil {
		return resumeResult{}, errRoomGone
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if room.playerLocked(sess.PlayerID) == nil {
		return resumeResult{}, errRoomGone
	}

	room.attachLocked(sub, sess.PlayerID)
	room.broadcastStateLocked()

	logf(g.cfg, "ROOMS: Player %s resumed in room %s", sess.PlayerID, room.code)

	return resumeResult{
		RoomCode: room.code,
		You:      sess.PlayerID,
		State:    room.snapshotLocked(sess.PlayerID),
	}, nil
}

func (g *Registry) Leave(token string) {
	if token == "" {
		return
	}
	g.sessions.revoke(token)
}

// Disconnect detaches a dropped connection. Host privileges move only when
// the departing player has no other live connection in the room.
func (g *Registry) Disconnect(sub subscriber, code, playerID string) {
	room := g.room(code)
	if room == nil {
		return
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	room.detachLocked(sub)

	if !room.connectedLocked(playerID) && room.migrateHostLocked(playerID) {
		host := "nobody"
		if h := room.hostLocked(); h != nil {
			host = h.Name
		}
		logf(g.cfg, "ROOMS: Host left room %s, host is now %s", room.code, host)
	}

	room.broadcastStateLocked()
}

func (g *Registry) SubmitAlias(code, callerID, playerID, alias string) error {
	room := g.room(code)
	if room == nil {
		return errRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if err := room.submitAliasLocked(callerID, playerID, alias); err != nil {
		return err
	}

	room.broadcastStateLocked()

	return nil
}

func (g *Registry) Reveal(code, callerID string) error {
	room := g.room(code)
	if room == nil {
		return errRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if err := room.revealLocked(callerID); err != nil {
		return err
	}

	logf(g.cfg, "ROOMS: Aliases revealed in room %s", room.code)

	room.broadcastStateLocked()

	return nil
}

func (g *Registry) StartTurns(code, callerID string) error {
	room := g.room(code)
	if room == nil {
		return errRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if err := room.startTurnsLocked(callerID); err != nil {
		return err
	}

	g.timers.start(room.code)

	logf(g.cfg, "TURNS: Started turns in room %s with %d players", room.code, len(room.turnOrder))

	room.broadcastStateLocked()

	return nil
}

func (g *Registry) Guess(code, callerID, playerID, targetID, aliasText string) (bool, error) {
	room := g.room(code)
	if room == nil {
		return false, errRoomNotFound
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	correct, err := room.guessLocked(callerID, playerID, targetID, aliasText)
	if err != nil {
		return false, err
	}

	if room.phase == PhaseInTurns {
		g.timers.start(room.code)
	} else {
		g.timers.stop(room.code)
		logf(g.cfg, "TURNS: Room %s ended, winner %s", room.code, room.winnerID)
	}

	logf(g.cfg, "TURNS: %s guessed %s in room %s (correct: %t)", playerID, targetID, room.code, correct)

	room.broadcastStateLocked()

	return correct, nil
}

// tick is the countdown callback for code. A countdown cancelled while this
// tick waited for the room lock exits without touching the room.
func (g *Registry) tick(code string, cd *countdown) bool {
	room := g.room(code)
	if room == nil {
		return false
	}

	room.mu.Lock()
	defer room.mu.Unlock()

	if cd.ctx.Err() != nil {
		return false
	}
	if room.phase != PhaseInTurns || room.currentTurn == nil {
		return false
	}

	if penalized, expired := room.tickLocked(); expired {
		logf(g.cfg, "TURNS: %s timed out in room %s", penalized, room.code)

		room.broadcastLocked(pushMessage{
			Event: eventRoomPenalty,
			Data:  PenaltyMessage{PlayerID: penalized, Type: "timeout"},
		})
	}

	room.broadcastStateLocked()

	return true
}
