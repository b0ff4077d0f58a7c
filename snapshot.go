/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

// PlayerView is one player as seen by a particular viewer.
type PlayerView struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	IsEliminated bool    `json:"isEliminated"`
	IsHost       bool    `json:"isHost"`
	Alias        *string `json:"alias"`
	Submitted    bool    `json:"submitted"`
	Connected    bool    `json:"connected"`
	JoinedAt     int64   `json:"joinedAt"`
}

// Snapshot is the room state pushed to clients. The password digest is
// never included, and the alias owner mapping is redacted per viewer.
type Snapshot struct {
	Code         string            `json:"code"`
	Phase        Phase             `json:"phase"`
	Settings     Settings          `json:"settings"`
	Players      []PlayerView      `json:"players"`
	Aliases      map[string]string `json:"aliases"`
	AliasPool    []string          `json:"aliasPool"`
	TurnOrder    []string          `json:"turnOrder"`
	CurrentTurn  *Turn             `json:"currentTurn"`
	Eliminations []string          `json:"eliminations"`
	WinnerID     *string           `json:"winnerId"`
}

// aliasVisibleLocked reports whether viewer may see which alias owner has.
func (r *Room) aliasVisibleLocked(viewer string, owner *Player) bool {
	return owner.ID == viewer || owner.IsEliminated || r.phase == PhaseEnded
}

func (r *Room) snapshotLocked(viewer string) Snapshot {
	s := Snapshot{
		Code:         r.code,
		Phase:        r.phase,
		Settings:     r.settings,
		Players:      make([]PlayerView, 0, len(r.players)),
		Aliases:      make(map[string]string),
		AliasPool:    []string{},
		TurnOrder:    append([]string{}, r.turnOrder...),
		Eliminations: append([]string{}, r.eliminations...),
	}

	for _, p := range r.players {
		alias, submitted := r.aliases[p.ID]

		view := PlayerView{
			ID:           p.ID,
			Name:         p.Name,
			IsEliminated: p.IsEliminated,
			IsHost:       p.IsHost,
			Submitted:    submitted,
			Connected:    r.connectedLocked(p.ID),
			JoinedAt:     p.JoinedAt.UnixMilli(),
		}

		if submitted && r.aliasVisibleLocked(viewer, p) {
			view.Alias = &alias
			s.Aliases[p.ID] = alias
		}

		s.Players = append(s.Players, view)
	}

	if r.phase != PhaseLobby {
		s.AliasPool = append(s.AliasPool, r.aliasPool...)
	}

	if r.currentTurn != nil {
		turn := *r.currentTurn
		s.CurrentTurn = &turn
	}

	if r.winnerID != "" {
		winner := r.winnerID
		s.WinnerID = &winner
	}

	return s
}
