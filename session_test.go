/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStore(t *testing.T) {
	s := newSessionStore()

	token := s.issue("ABCD", "p1")
	other := s.issue("ABCD", "p2")
	assert.NotEqual(t, token, other)

	sess, ok := s.lookup(token)
	require.True(t, ok)
	assert.Equal(t, session{RoomCode: "ABCD", PlayerID: "p1"}, sess)

	s.revoke(token)
	_, ok = s.lookup(token)
	assert.False(t, ok)

	_, ok = s.lookup(other)
	assert.True(t, ok)
}

func TestResume(t *testing.T) {
	g := newTestRegistry(testConfig(), "ABCD")

	created, err := g.Create(&recorder{}, "alice", "pass1")
	require.NoError(t, err)

	peer := &recorder{}
	joined, err := g.Join(peer, "ABCD", "bob", "pass1")
	require.NoError(t, err)

	_, err = g.Resume(&recorder{}, "not-a-token")
	assert.ErrorIs(t, err, errNoSession)

	before := len(peer.events())

	again := &recorder{}
	res, err := g.Resume(again, created.Token)
	require.NoError(t, err)

	assert.Equal(t, "ABCD", res.RoomCode)
	assert.Equal(t, created.You, res.You)
	assert.Equal(t, PhaseLobby, res.State.Phase)
	assert.Len(t, peer.events(), before+1, "peers observe the rejoin")
	assert.Equal(t, []string{eventRoomState}, again.events())

	_, err = g.Resume(&recorder{}, joined.Token)
	assert.NoError(t, err)
}

func TestResumeRoomGone(t *testing.T) {
	g := newTestRegistry(testConfig(), "ABCD")

	created, err := g.Create(nil, "alice", "pass1")
	require.NoError(t, err)

	g.mu.Lock()
	delete(g.rooms, "ABCD")
	g.mu.Unlock()

	_, err = g.Resume(&recorder{}, created.Token)
	assert.ErrorIs(t, err, errRoomGone)
}

func TestLeaveRevokesOnlyTheSession(t *testing.T) {
	g := newTestRegistry(testConfig(), "ABCD")

	created, err := g.Create(nil, "alice", "pass1")
	require.NoError(t, err)
	_, err = g.Join(nil, "ABCD", "bob", "pass1")
	require.NoError(t, err)

	g.Leave(created.Token)
	g.Leave("")

	_, err = g.Resume(&recorder{}, created.Token)
	assert.ErrorIs(t, err, errNoSession)

	s := stateFor(t, g, created.You)
	assert.Len(t, s.Players, 2)
	assert.True(t, playerView(t, s, created.You).IsHost)
}

func TestDisconnectMigratesHost(t *testing.T) {
	g := newTestRegistry(testConfig(), "ABCD")
	seats := setupRoom(t, g, 3)
	p0, p1, p2 := seats[0].id, seats[1].id, seats[2].id

	g.Disconnect(seats[0].sub, "ABCD", p0)

	s := stateFor(t, g, p1)
	assert.False(t, playerView(t, s, p0).IsHost)
	assert.False(t, playerView(t, s, p0).Connected)
	assert.True(t, playerView(t, s, p1).IsHost)
	assert.False(t, playerView(t, s, p2).IsHost)
	assert.Len(t, s.Players, 3, "disconnect never removes the player")
	assert.Equal(t, s, seats[1].sub.lastState(t))

	assert.ErrorIs(t, g.Reveal("ABCD", p0), errHostOnly)
}

func TestDisconnectOfNonHostKeepsHost(t *testing.T) {
	g := newTestRegistry(testConfig(), "ABCD")
	seats := setupRoom(t, g, 3)

	g.Disconnect(seats[1].sub, "ABCD", seats[1].id)

	s := stateFor(t, g, seats[0].id)
	assert.True(t, playerView(t, s, seats[0].id).IsHost)
	assert.False(t, playerView(t, s, seats[1].id).IsHost)
}

func TestDisconnectWithAnotherLiveConnection(t *testing.T) {
	g := newTestRegistry(testConfig(), "ABCD")

	created, err := g.Create(&recorder{}, "alice", "pass1")
	require.NoError(t, err)
	_, err = g.Join(&recorder{}, "ABCD", "bob", "pass1")
	require.NoError(t, err)

	first := &recorder{}
	_, err = g.Resume(first, created.Token)
	require.NoError(t, err)
	second := &recorder{}
	_, err = g.Resume(second, created.Token)
	require.NoError(t, err)

	g.Disconnect(first, "ABCD", created.You)

	s := stateFor(t, g, created.You)
	assert.True(t, playerView(t, s, created.You).IsHost)
	assert.True(t, playerView(t, s, created.You).Connected)
}

func TestHostlessRoomIsReclaimedOnResume(t *testing.T) {
	g := newTestRegistry(testConfig(), "ABCD")

	host := &recorder{}
	created, err := g.Create(host, "alice", "pass1")
	require.NoError(t, err)
	joined, err := g.Join(&recorder{}, "ABCD", "bob", "pass1")
	require.NoError(t, err)

	require.NoError(t, g.SubmitAlias("ABCD", created.You, created.You, "alias0"))
	require.NoError(t, g.SubmitAlias("ABCD", joined.You, joined.You, "alias1"))
	require.NoError(t, g.Reveal("ABCD", created.You))
	require.NoError(t, g.StartTurns("ABCD", created.You))
	_, err = g.Guess("ABCD", created.You, created.You, joined.You, "alias1")
	require.NoError(t, err)

	// the only other player is eliminated, so nobody can take over
	g.Disconnect(host, "ABCD", created.You)

	s := stateFor(t, g, created.You)
	for _, p := range s.Players {
		assert.False(t, p.IsHost, p.Name)
	}
	assert.Equal(t, PhaseEnded, s.Phase)

	_, err = g.Resume(&recorder{}, created.Token)
	require.NoError(t, err)
	assert.True(t, playerView(t, stateFor(t, g, created.You), created.You).IsHost)
}

func TestDisconnectUnknownRoom(t *testing.T) {
	g := newTestRegistry(testConfig(), "ABCD")

	assert.NotPanics(t, func() {
		g.Disconnect(&recorder{}, "ZZZZ", "nobody")
	})
}

func TestSeatChangeOnOneConnectionMigratesHost(t *testing.T) {
	g := newTestRegistry(testConfig(), "ABCD")

	sub := &recorder{}
	created, err := g.Create(sub, "alice", "pass1")
	require.NoError(t, err)

	joined, err := g.Join(sub, "ABCD", "bob", "pass1")
	require.NoError(t, err)

	s := stateFor(t, g, joined.You)
	assert.False(t, playerView(t, s, created.You).Connected)
	assert.False(t, playerView(t, s, created.You).IsHost, "a seat left behind keeps no host role")
	assert.True(t, playerView(t, s, joined.You).IsHost)

	g.Disconnect(sub, "ABCD", joined.You)

	s = stateFor(t, g, joined.You)
	for _, p := range s.Players {
		assert.False(t, p.Connected, p.Name)
	}
}

func TestSeatChangeKeepsHostWithAnotherConnection(t *testing.T) {
	g := newTestRegistry(testConfig(), "ABCD")

	created, err := g.Create(&recorder{}, "alice", "pass1")
	require.NoError(t, err)

	sub := &recorder{}
	_, err = g.Resume(sub, created.Token)
	require.NoError(t, err)
	_, err = g.Join(sub, "ABCD", "bob", "pass1")
	require.NoError(t, err)

	assert.True(t, playerView(t, stateFor(t, g, created.You), created.You).IsHost)
}
