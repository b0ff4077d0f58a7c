/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import "encoding/json"

const (
	eventAck         = "ack"
	eventAliasSubmit = "alias:submit"
	eventGuess       = "game:guess"
	eventRoomCreate  = "room:create"
	eventRoomJoin    = "room:join"
	eventRoomPenalty = "room:penalty"
	eventRoomReveal  = "room:reveal"
	eventRoomState   = "room:state"
	eventResume      = "session:resume"
	eventLeave       = "session:leave"
	eventStartTurns  = "game:startTurns"
)

// Messages coming from clients
type ClientMessage struct {
	Event string          `json:"event"`
	ID    int64           `json:"id"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type resumeRequest struct {
	Token string `json:"token"`
}

type createRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

type joinRequest struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

type aliasRequest struct {
	Code     string `json:"code"`
	PlayerID string `json:"playerId"`
	Alias    string `json:"alias"`
}

type roomRequest struct {
	Code string `json:"code"`
}

type guessRequest struct {
	Code      string `json:"code"`
	PlayerID  string `json:"playerId"`
	TargetID  string `json:"targetId"`
	AliasText string `json:"aliasText"`
}

// Messages sent to clients
type AckMessage struct {
	Event  string `json:"event"` // always "ack"
	ID     int64  `json:"id"`
	OK     bool   `json:"ok"`
	Error  string `json:"error,omitempty"`
	Result any    `json:"result,omitempty"`
}

type pushMessage struct {
	Event string `json:"event"` // "room:state" or "room:penalty"
	Data  any    `json:"data"`
}

type PenaltyMessage struct {
	PlayerID string `json:"playerId"`
	Type     string `json:"type"` // "timeout"
}

type resumeResult struct {
	RoomCode string   `json:"roomCode"`
	You      string   `json:"you"`
	State    Snapshot `json:"state"`
}

type createResult struct {
	RoomCode string   `json:"roomCode"`
	You      string   `json:"you"`
	Token    string   `json:"token"`
	State    Snapshot `json:"state"`
}

type joinResult struct {
	You   string   `json:"you"`
	Token string   `json:"token"`
	State Snapshot `json:"state"`
}

type guessResult struct {
	Correct bool `json:"correct"`
}
