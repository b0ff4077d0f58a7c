/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

// Alibi
//
// Each player joins a password-protected room with a name and submits a
// secret alias. Once the host reveals the pool of aliases, players take turns
// guessing which alias belongs to which player against a countdown.
//
// - A correct guess eliminates the owner, and the guesser keeps the turn with
//   less time than before (chained timer)
// - An incorrect guess, or running out of time, passes the turn to the next
//   player still in the game
// - The game ends when only one player remains
// - Host privileges move to the earliest-joined remaining player when the
//   host's connection drops

package main

import (
	"strings"
	"sync"
	"time"
)

type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhaseRevealed Phase = "revealed"
	PhaseInTurns  Phase = "in_turns"
	PhaseEnded    Phase = "ended"
)

// Settings are copied from the process configuration when a room is created.
type Settings struct {
	BaseTimer          int  `json:"baseTimer"`
	ShrinkStep         int  `json:"shrinkStep"`
	MinTimer           int  `json:"minTimer"`
	PlayersCap         int  `json:"playersCap"`
	TimerShrinkEnabled bool `json:"timerShrinkEnabled"`
}

// Player holds the data we store server-side
type Player struct {
	ID           string
	Name         string
	IsEliminated bool
	IsHost       bool
	Alias        string // empty until submitted
	JoinedAt     time.Time
}

type Turn struct {
	PlayerID      string `json:"playerId"`
	RemainingTime int    `json:"remainingTime"`
}

// subscriber is a connection attached to a room. deliver must not block.
type subscriber interface {
	deliver(msg any) bool
	drop()
}

type Room struct {
	mu sync.Mutex

	code           string
	phase          Phase
	passwordDigest string
	settings       Settings
	createdAt      time.Time

	players      []*Player         // append-only, join order
	aliases      map[string]string // player id -> alias text
	aliasPool    []string          // unclaimed aliases, join order
	turnOrder    []string
	currentTurn  *Turn
	eliminations []string
	winnerID     string

	clients map[subscriber]string // connection -> player id
}

func newRoom(code, passwordDigest string, settings Settings, now time.Time) *Room {
	return &Room{
		code:           code,
		phase:          PhaseLobby,
		passwordDigest: passwordDigest,
		settings:       settings,
		createdAt:      now,
		aliases:        make(map[string]string),
		clients:        make(map[subscriber]string),
	}
}

func (r *Room) addPlayerLocked(id, name string, host bool, now time.Time) *Player {
	p := &Player{
		ID:       id,
		Name:     name,
		IsHost:   host,
		JoinedAt: now,
	}
	r.players = append(r.players, p)

	return p
}

func (r *Room) playerLocked(id string) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) hostLocked() *Player {
	for _, p := range r.players {
		if p.IsHost {
			return p
		}
	}
	return nil
}

func (r *Room) isAliveLocked(id string) bool {
	p := r.playerLocked(id)
	return p != nil && !p.IsEliminated
}

func (r *Room) alivePlayersLocked() []*Player {
	alive := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		if !p.IsEliminated {
			alive = append(alive, p)
		}
	}
	return alive
}

// joinLocked validates a join attempt in the same order clients expect the
// errors to be reported.
func (r *Room) joinLocked(id, name, passwordDigest string, now time.Time) (*Player, error) {
	if r.phase != PhaseLobby {
		return nil, errGameStarted
	}
	if len(r.players) >= r.settings.PlayersCap {
		return nil, errRoomFull
	}
	if passwordDigest != r.passwordDigest {
		return nil, errBadPassword
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errNameRequired
	}

	return r.addPlayerLocked(id, name, false, now), nil
}

func (r *Room) submitAliasLocked(callerID, playerID, alias string) error {
	if playerID != callerID {
		return errNotYourID
	}

	me := r.playerLocked(playerID)
	if me == nil {
		return errNotYourID
	}

	if r.phase != PhaseLobby {
		return errGameStarted
	}

	text := strings.TrimSpace(alias)
	key := normalizeAlias(text)
	if key == "" {
		return errEmptyAlias
	}

	for id, other := range r.aliases {
		if id == playerID {
			continue
		}
		if normalizeAlias(other) == key {
			return errAliasTaken
		}
	}

	r.aliases[playerID] = text
	me.Alias = text
	r.rebuildAliasPoolLocked()

	return nil
}

func (r *Room) rebuildAliasPoolLocked() {
	pool := make([]string, 0, len(r.aliases))
	for _, p := range r.players {
		if alias, ok := r.aliases[p.ID]; ok {
			pool = append(pool, alias)
		}
	}
	r.aliasPool = pool
}

func (r *Room) revealLocked(callerID string) error {
	me := r.playerLocked(callerID)
	if me == nil || !me.IsHost {
		return errHostOnly
	}
	if r.phase != PhaseLobby {
		return errWrongPhase
	}

	for _, p := range r.players {
		if _, ok := r.aliases[p.ID]; !ok {
			return errPendingSubmissions
		}
	}

	r.phase = PhaseRevealed

	return nil
}

func (r *Room) startTurnsLocked(callerID string) error {
	me := r.playerLocked(callerID)
	if me == nil || !me.IsHost {
		return errHostOnly
	}
	if r.phase != PhaseRevealed {
		return errWrongPhase
	}

	order := buildTurnOrder(r.players)
	if len(order) < 2 {
		return errNotEnoughPlayers
	}

	r.turnOrder = order
	r.currentTurn = &Turn{PlayerID: order[0], RemainingTime: r.settings.BaseTimer}
	r.phase = PhaseInTurns

	return nil
}

func (r *Room) attachLocked(sub subscriber, playerID string) {
	if sub == nil {
		return
	}

	previous, seated := r.clients[sub]
	r.clients[sub] = playerID

	// Moving a connection to another seat is a departure from the old one.
	if seated && previous != playerID && !r.connectedLocked(previous) {
		r.migrateHostLocked(previous)
	}

	// A hostless room is reclaimed by the first live player to come back.
	if r.hostLocked() == nil {
		if p := r.playerLocked(playerID); p != nil && !p.IsEliminated {
			p.IsHost = true
		}
	}
}

func (r *Room) detachLocked(sub subscriber) {
	delete(r.clients, sub)
}

func (r *Room) connectedLocked(playerID string) bool {
	for _, id := range r.clients {
		if id == playerID {
			return true
		}
	}
	return false
}

// migrateHostLocked hands host privileges to the next eligible player when
// departingID is the current host. It reports whether anything changed.
func (r *Room) migrateHostLocked(departingID string) bool {
	host := r.hostLocked()
	if host == nil || host.ID != departingID {
		return false
	}

	host.IsHost = false
	if next := r.playerLocked(selectNextHost(r.players, departingID)); next != nil {
		next.IsHost = true
	}

	return true
}

// broadcastLocked sends msg to every attached connection, dropping any whose
// buffer is full.
func (r *Room) broadcastLocked(msg any) {
	for sub := range r.clients {
		if !sub.deliver(msg) {
			delete(r.clients, sub)
			sub.drop()
		}
	}
}

// broadcastStateLocked sends each connection the snapshot redacted for the
// player it belongs to.
func (r *Room) broadcastStateLocked() {
	for sub, viewer := range r.clients {
		if !sub.deliver(pushMessage{Event: eventRoomState, Data: r.snapshotLocked(viewer)}) {
			delete(r.clients, sub)
			sub.drop()
		}
	}
}
