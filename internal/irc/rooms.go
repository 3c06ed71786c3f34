package irc

import (
	"errors"
	"fmt"
	"strings"
)

// Room ids range over [0, MaxRoom].
const (
	MaxRoom = 999
	NoRoom  = -1
)

// Topic text marking a room's status.
const (
	TopicWaiting = "WAITING"
	TopicPlaying = "PLAYING"
)

// Status of a room as read from its channel topic. It is never cached.
type Status int

const (
	StatusUnset Status = iota
	StatusWaiting
	StatusPlaying
)

func (st Status) String() string {
	switch st {
	case StatusUnset:
		return "unset"
	case StatusWaiting:
		return "waiting"
	case StatusPlaying:
		return "playing"
	default:
		return "unknown"
	}
}

// Channel returns the channel name of room id.
func (s *Session) Channel(id int) string {
	return roomName(s.prefix, id)
}

// CurrentRoom returns the joined room id, or NoRoom.
func (s *Session) CurrentRoom() int {
	return s.room
}

func (s *Session) roomChannel(id int) (string, error) {
	if id < 0 || id > MaxRoom {
		return "", fmt.Errorf("%w: room %d outside [0, %d]", ErrParameterOutOfRange, id, MaxRoom)
	}
	return s.Channel(id), nil
}

// JoinRoom joins room id and makes it the current room.
func (s *Session) JoinRoom(id int) error {
	channel, err := s.roomChannel(id)
	if err != nil {
		return err
	}
	if err := s.send(joinLine(channel)); err != nil {
		return err
	}
	// Servers ignore a JOIN for a channel we are already on.
	if id != s.room {
		s.expectJoin(channel)
	}
	s.room = id
	s.log.Info().Str("channel", channel).Msg("joined room")
	return nil
}

// LeaveRoom parts the current room.
func (s *Session) LeaveRoom() error {
	if s.room == NoRoom {
		return ErrNotInRoom
	}
	channel := s.Channel(s.room)
	if err := s.send(partLine(channel)); err != nil {
		return err
	}
	s.room = NoRoom
	s.log.Info().Str("channel", channel).Msg("left room")
	return nil
}

// RoomStatus fetches the topic of room id and classifies it.
func (s *Session) RoomStatus(id int) (Status, error) {
	channel, err := s.roomChannel(id)
	if err != nil {
		return StatusUnset, err
	}
	return s.fetchStatus(channel)
}

// ToggleRoomStatus reads the status of room id and flips a waiting room to
// playing or a playing room to waiting. It returns the status it read. An
// unset room is reported without being modified.
//
// The read and the write are separate commands: two sessions toggling the
// same room concurrently may both observe the same status.
func (s *Session) ToggleRoomStatus(id int) (Status, error) {
	channel, err := s.roomChannel(id)
	if err != nil {
		return StatusUnset, err
	}

	st, err := s.fetchStatus(channel)
	if err != nil || st == StatusUnset {
		return st, err
	}

	next := TopicPlaying
	if st == StatusPlaying {
		next = TopicWaiting
	}
	if err := s.send(topicSetLine(channel, next)); err != nil {
		return st, err
	}
	s.log.Info().Str("channel", channel).Str("from", st.String()).Str("to", next).Msg("toggled room")
	return st, nil
}

// AvailableRoom probes rooms in order and returns the first one without a
// topic, or NoRoom if every room is taken. Rooms whose topic cannot be
// classified count as taken.
func (s *Session) AvailableRoom() (int, error) {
	for id := 0; id <= MaxRoom; id++ {
		st, err := s.fetchStatus(s.Channel(id))
		if errors.Is(err, ErrConnection) {
			return NoRoom, err
		}
		if err != nil {
			s.log.Debug().Err(err).Int("room", id).Msg("treating room as taken")
			continue
		}
		if st == StatusUnset {
			return id, nil
		}
	}
	return NoRoom, nil
}

// CreateRoom joins the first free room and marks it waiting. If the join
// succeeds but the topic cannot be set the session stays in the room and
// ErrPartialRoomCreation is returned along with the room id.
func (s *Session) CreateRoom() (int, error) {
	if s.room != NoRoom {
		return NoRoom, fmt.Errorf("%w: %s", ErrAlreadyInRoom, s.Channel(s.room))
	}

	id, err := s.AvailableRoom()
	if err != nil {
		return NoRoom, err
	}
	if id == NoRoom {
		return NoRoom, ErrRoomUnavailable
	}

	channel := s.Channel(id)
	if err := s.send(joinLine(channel)); err != nil {
		return NoRoom, err
	}
	s.expectJoin(channel)
	s.room = id

	if err := s.send(topicSetLine(channel, TopicWaiting)); err != nil {
		return id, fmt.Errorf("%w: %s: %w", ErrPartialRoomCreation, channel, err)
	}
	s.log.Info().Str("channel", channel).Msg("created room")
	return id, nil
}

func (s *Session) fetchStatus(channel string) (Status, error) {
	if err := s.send(topicFetchLine(channel)); err != nil {
		return StatusUnset, err
	}
	reply, err := s.readReply(channel, rplNotopic, rplTopic)
	if err != nil {
		return StatusUnset, err
	}
	return s.classify(reply)
}

// classify maps a topic reply onto a status. Only the trailing parameter is
// inspected so nicknames and channel names cannot match a marker. A room
// whose channel does not exist yet is free.
func (s *Session) classify(reply Message) (Status, error) {
	switch {
	case reply.Command == rplNotopic, reply.Command == errNosuchchannel, strings.Contains(reply.Trailing, s.noTopic):
		return StatusUnset, nil
	case strings.Contains(reply.Trailing, TopicWaiting):
		return StatusWaiting, nil
	case strings.Contains(reply.Trailing, TopicPlaying):
		return StatusPlaying, nil
	}
	return StatusUnset, fmt.Errorf("%w: unexpected topic reply %q", ErrToggleStatus, reply.Raw)
}
