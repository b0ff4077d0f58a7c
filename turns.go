/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"slices"
)

// nextChainTimer is the time allowed after a correct guess. It chains off
// the current remaining time, so consecutive correct guesses speed up.
func nextChainTimer(current, step, minimum int) int {
	return max(minimum, current-step)
}

// buildTurnOrder returns the ids of non-eliminated players by join time,
// falling back to join order on ties.
func buildTurnOrder(players []*Player) []string {
	alive := make([]*Player, 0, len(players))
	for _, p := range players {
		if !p.IsEliminated {
			alive = append(alive, p)
		}
	}

	slices.SortStableFunc(alive, func(a, b *Player) int {
		return a.JoinedAt.Compare(b.JoinedAt)
	})

	order := make([]string, len(alive))
	for i, p := range alive {
		order[i] = p.ID
	}
	return order
}

// nextTurn walks order cyclically from current and returns the first id for
// which alive reports true. If current is not in order the walk starts at the
// beginning. It returns "" when nobody is alive.
func nextTurn(order []string, current string, alive func(string) bool) string {
	n := len(order)
	idx := slices.Index(order, current)

	for i := 1; i <= n; i++ {
		candidate := order[(idx+i+n)%n]
		if alive(candidate) {
			return candidate
		}
	}
	return ""
}

// selectNextHost picks the earliest-joined non-eliminated player other than
// departingID, or "" if nobody qualifies.
func selectNextHost(players []*Player, departingID string) string {
	var next *Player
	for _, p := range players {
		if p.IsEliminated || p.ID == departingID {
			continue
		}
		if next == nil || p.JoinedAt.Before(next.JoinedAt) {
			next = p
		}
	}

	if next == nil {
		return ""
	}
	return next.ID
}

// guessLocked resolves a guess by the current-turn player. Nothing is
// modified when an error is returned.
func (r *Room) guessLocked(callerID, playerID, targetID, aliasText string) (bool, error) {
	if playerID != callerID {
		return false, errNotYourID
	}
	if r.phase != PhaseInTurns || r.currentTurn == nil {
		return false, errNotInTurns
	}
	if r.currentTurn.PlayerID != playerID {
		return false, errNotYourTurn
	}
	if targetID == playerID {
		return false, errBadTarget
	}

	stored, ok := r.aliases[targetID]
	if !ok || stored != aliasText {
		r.advanceTurnLocked()

		return false, nil
	}

	r.eliminateLocked(targetID)

	if alive := r.alivePlayersLocked(); len(alive) == 1 {
		r.endLocked(alive[0].ID)

		return true, nil
	}

	remaining := r.settings.BaseTimer
	if r.settings.TimerShrinkEnabled {
		remaining = nextChainTimer(r.currentTurn.RemainingTime, r.settings.ShrinkStep, r.settings.MinTimer)
	}
	r.currentTurn = &Turn{PlayerID: playerID, RemainingTime: remaining}

	return true, nil
}

func (r *Room) eliminateLocked(id string) {
	p := r.playerLocked(id)
	if p == nil || p.IsEliminated {
		return
	}

	p.IsEliminated = true
	r.eliminations = append(r.eliminations, id)

	if i := slices.Index(r.aliasPool, r.aliases[id]); i >= 0 {
		r.aliasPool = slices.Delete(r.aliasPool, i, i+1)
	}
}

// advanceTurnLocked passes the turn to the next live player with a full
// timer and returns the id of the player who lost it.
func (r *Room) advanceTurnLocked() string {
	previous := r.currentTurn.PlayerID

	r.currentTurn = &Turn{
		PlayerID:      nextTurn(r.turnOrder, previous, r.isAliveLocked),
		RemainingTime: r.settings.BaseTimer,
	}

	return previous
}

// tickLocked counts the current turn down by one. When time runs out the turn
// passes on and the penalized player's id is returned.
func (r *Room) tickLocked() (string, bool) {
	r.currentTurn.RemainingTime--
	if r.currentTurn.RemainingTime > 0 {
		return "", false
	}

	return r.advanceTurnLocked(), true
}

func (r *Room) endLocked(winnerID string) {
	r.phase = PhaseEnded
	r.winnerID = winnerID
	r.currentTurn = nil
}
