package irc

import (
	"errors"
	"fmt"
)

// Errors returned by Session operations. They are wrapped with context, so
// compare with errors.Is.
var (
	ErrConnection          = errors.New("connection error")
	ErrProtocol            = errors.New("unexpected server reply")
	ErrMalformedMessage    = errors.New("malformed message")
	ErrParameterOutOfRange = errors.New("parameter out of range")
	ErrMessageTooLong      = errors.New("message too long")
	ErrNotInRoom           = errors.New("not in a room")
	ErrAlreadyInRoom       = errors.New("already in a room")
	ErrNotInLobby          = errors.New("user is not in the lobby")
	ErrToggleStatus        = errors.New("room status cannot be toggled")
	ErrRoomUnavailable     = errors.New("no free room available")
	ErrPartialRoomCreation = errors.New("room joined but not marked as waiting")
)

// ErrNotConnected is returned when a command is issued on a session that has
// been disconnected. It matches ErrConnection.
var ErrNotConnected = fmt.Errorf("%w: session is not connected", ErrConnection)

func connectionError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrConnection, op, err)
}
