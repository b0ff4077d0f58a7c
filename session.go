/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"sync"

	"github.com/google/uuid"
)

type session struct {
	RoomCode string
	PlayerID string
}

// sessionStore maps resume tokens to a seat in a room. Entries outlive the
// connection that created them and are only removed on explicit leave.
type sessionStore struct {
	mu      sync.Mutex
	byToken map[string]session
}

func newSessionStore() *sessionStore {
	return &sessionStore{
		byToken: make(map[string]session),
	}
}

func (s *sessionStore) issue(roomCode, playerID string) string {
	token := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.byToken[token] = session{RoomCode: roomCode, PlayerID: playerID}

	return token
}

func (s *sessionStore) lookup(token string) (session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byToken[token]
	return sess, ok
}

func (s *sessionStore) revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byToken, token)
}
