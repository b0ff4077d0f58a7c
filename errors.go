/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

var logger = zerolog.New(zerolog.ConsoleWriter{
	Out:        os.Stdout,
	TimeFormat: logDate,
	NoColor:    true,
}).With().Timestamp().Logger()

func logf(cfg *Config, format string, args ...any) {
	if cfg == nil || !cfg.verbose {
		return
	}

	logger.Info().Msgf(format, args...)
}

// gameError carries a stable code that is reported to clients verbatim.
type gameError struct {
	code string
}

func (e *gameError) Error() string {
	return e.code
}

var (
	errAliasTaken         = &gameError{"ALIAS_TAKEN"}
	errBadPassword        = &gameError{"BAD_PASSWORD"}
	errBadRequest         = &gameError{"BAD_REQUEST"}
	errBadTarget          = &gameError{"BAD_TARGET"}
	errEmptyAlias         = &gameError{"EMPTY_ALIAS"}
	errGameStarted        = &gameError{"GAME_ALREADY_STARTED"}
	errHostOnly           = &gameError{"HOST_ONLY"}
	errNameRequired       = &gameError{"NAME_REQUIRED"}
	errNoSession          = &gameError{"NO_SESSION"}
	errNotEnoughPlayers   = &gameError{"NOT_ENOUGH_PLAYERS"}
	errNotInTurns         = &gameError{"NOT_IN_TURNS"}
	errNotYourID          = &gameError{"NOT_YOUR_ID"}
	errNotYourTurn        = &gameError{"NOT_YOUR_TURN"}
	errPasswordShort      = &gameError{"PASSWORD_SHORT"}
	errPendingSubmissions = &gameError{"PENDING_SUBMISSIONS"}
	errRateLimited        = &gameError{"RATE_LIMITED"}
	errRoomFull           = &gameError{"ROOM_FULL"}
	errRoomGone           = &gameError{"ROOM_GONE"}
	errRoomNotFound       = &gameError{"ROOM_NOT_FOUND"}
	errServer             = &gameError{"SERVER_ERROR"}
	errWrongPhase         = &gameError{"WRONG_PHASE"}
)

// errorCode maps err to the code sent in an acknowledgment. Anything that is
// not a gameError is an internal fault and is reported generically.
func errorCode(err error) string {
	var ge *gameError
	if errors.As(err, &ge) {
		return ge.code
	}
	return errServer.code
}

func newPage(title, body string) string {
	var htmlBody strings.Builder

	htmlBody.WriteString(`<!DOCTYPE html><html lang="en"><head>`)
	htmlBody.WriteString(`<style>`)
	htmlBody.WriteString(`html,body{height:100%;width:100%;margin:0;font-family:sans-serif;}</style>`)
	htmlBody.WriteString(fmt.Sprintf("<title>%s</title></head>", title))
	htmlBody.WriteString(fmt.Sprintf("<body><p>%s</p></body></html>", body))

	return htmlBody.String()
}
