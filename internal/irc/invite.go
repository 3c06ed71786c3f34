package irc

import (
	"fmt"
	"slices"
)

// Invite asks nick to join the current room. The nick must be present in the
// lobby; it is matched as a whole name, not a substring.
func (s *Session) Invite(nick string) error {
	if s.room == NoRoom {
		return ErrNotInRoom
	}

	names, err := s.Names(Lobby)
	if err != nil {
		return err
	}
	if !slices.Contains(names, nick) {
		return fmt.Errorf("%w: %s", ErrNotInLobby, nick)
	}

	channel := s.Channel(s.room)
	if err := s.send(inviteLine(channel, nick)); err != nil {
		return err
	}
	s.log.Info().Str("channel", channel).Str("invitee", nick).Msg("invited")
	return nil
}
