package irc

import (
	"fmt"
	"strings"
)

// Scope selects which channel Names lists.
type Scope int

const (
	Lobby Scope = iota
	CurrentRoom
)

// membershipPrefixes are the channel status symbols servers put in front of
// nicknames in NAMES replies.
const membershipPrefixes = "~&@%+"

// Names lists the nicknames present in the lobby or in the current room, in
// the order the server sent them.
func (s *Session) Names(scope Scope) ([]string, error) {
	channel := s.lobby
	if scope == CurrentRoom {
		if s.room == NoRoom {
			return nil, ErrNotInRoom
		}
		channel = s.Channel(s.room)
	}

	if err := s.send(namesLine(channel)); err != nil {
		return nil, err
	}

	names := []string{}
	for {
		reply, err := s.readReply(channel, rplNamreply, rplEndofnames)
		if err != nil {
			return nil, err
		}
		switch {
		case reply.IsError():
			return nil, fmt.Errorf("%w: NAMES %s: %s", ErrProtocol, channel, reply.Trailing)
		case reply.Command == rplEndofnames:
			return names, nil
		case !reply.hasColon:
			return nil, fmt.Errorf("%w: no name list in %q", ErrProtocol, reply.Raw)
		}
		names = append(names, splitNames(reply.Trailing)...)
	}
}

func splitNames(list string) []string {
	var names []string
	for _, token := range strings.Fields(list) {
		nick := strings.TrimLeft(token, membershipPrefixes)
		if nick == "" {
			continue
		}
		names = append(names, nick)
	}
	return names
}
