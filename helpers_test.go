/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		bind:        "127.0.0.1",
		port:        8080,
		baseTimer:   15,
		keepalive:   time.Minute,
		minTimer:    3,
		playersCap:  12,
		shrinkStep:  3,
		tick:        time.Hour,
		timerShrink: true,
	}
}

// newTestRegistry returns a registry whose clock advances one second per
// call, so join times are distinct and ordered.
func newTestRegistry(cfg *Config, codes ...string) *Registry {
	g := newRegistry(cfg)

	var mu sync.Mutex
	clock := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		clock = clock.Add(time.Second)
		return clock
	}

	if len(codes) > 0 {
		g.newCode = func() (string, error) {
			mu.Lock()
			defer mu.Unlock()
			code := codes[0]
			if len(codes) > 1 {
				codes = codes[1:]
			}
			return code, nil
		}
	}

	return g
}

// recorder is a subscriber that keeps everything delivered to it.
type recorder struct {
	mu      sync.Mutex
	msgs    []any
	full    bool
	dropped bool
}

func (r *recorder) deliver(msg any) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.full {
		return false
	}
	r.msgs = append(r.msgs, msg)
	return true
}

func (r *recorder) drop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.dropped = true
}

func (r *recorder) events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]string, 0, len(r.msgs))
	for _, m := range r.msgs {
		if p, ok := m.(pushMessage); ok {
			out = append(out, p.Event)
		}
	}
	return out
}

func (r *recorder) lastState(t *testing.T) Snapshot {
	t.Helper()

	r.mu.Lock()
	defer r.mu.Unlock()

	for i := len(r.msgs) - 1; i >= 0; i-- {
		if p, ok := r.msgs[i].(pushMessage); ok && p.Event == eventRoomState {
			return p.Data.(Snapshot)
		}
	}
	require.FailNow(t, "no room:state delivered")
	return Snapshot{}
}

func (r *recorder) penalties() []PenaltyMessage {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []PenaltyMessage
	for _, m := range r.msgs {
		if p, ok := m.(pushMessage); ok && p.Event == eventRoomPenalty {
			out = append(out, p.Data.(PenaltyMessage))
		}
	}
	return out
}

type seat struct {
	id  string
	sub *recorder
}

// setupRoom creates room ABCD with password "pass1" and n players in join
// order. The host is seats[0].
func setupRoom(t *testing.T, g *Registry, n int) []seat {
	t.Helper()

	host := &recorder{}
	created, err := g.Create(host, "player0", "pass1")
	require.NoError(t, err)

	seats := []seat{{id: created.You, sub: host}}
	for i := 1; i < n; i++ {
		sub := &recorder{}
		joined, err := g.Join(sub, created.RoomCode, "player"+string(rune('0'+i)), "pass1")
		require.NoError(t, err)
		seats = append(seats, seat{id: joined.You, sub: sub})
	}
	return seats
}

// startGame submits alias0..aliasN, reveals and starts turns.
func startGame(t *testing.T, g *Registry, seats []seat) {
	t.Helper()

	for i, s := range seats {
		require.NoError(t, g.SubmitAlias("ABCD", s.id, s.id, "alias"+string(rune('0'+i))))
	}
	require.NoError(t, g.Reveal("ABCD", seats[0].id))
	require.NoError(t, g.StartTurns("ABCD", seats[0].id))
}

// stateFor returns the snapshot of room ABCD as viewer sees it.
func stateFor(t *testing.T, g *Registry, viewer string) Snapshot {
	t.Helper()

	room := g.room("ABCD")
	require.NotNil(t, room)

	room.mu.Lock()
	defer room.mu.Unlock()

	return room.snapshotLocked(viewer)
}

func playerView(t *testing.T, s Snapshot, id string) PlayerView {
	t.Helper()

	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	require.FailNow(t, "player not in snapshot", id)
	return PlayerView{}
}
