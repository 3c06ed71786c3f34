package irc

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
)

// Protocol limits.
const (
	MaxNickLen    = 9
	MaxMessageLen = 512
	MaxLineLen    = 512
)

// Defaults used when Params leaves a field empty.
const (
	DefaultLobbyChannel  = "#cruce-lobby"
	DefaultRoomPrefix    = "#cruce-game"
	DefaultNoTopicMarker = "No topic is set"
)

// Transport is the raw line connection a Session talks through.
type Transport interface {
	Connect(host string, port int) error
	Send(b []byte) error
	// ReadLine returns exactly one line, with or without its CRLF.
	ReadLine(maxLen int) ([]byte, error)
	Disconnect() error
}

// Params defines how to connect and which channels make up the game.
type Params struct {
	Server   string
	Port     int
	Nickname string

	LobbyChannel  string
	RoomPrefix    string
	NoTopicMarker string // substring of a topic reply meaning "room is free"

	Logger *zerolog.Logger
	// OnUnsolicited receives lines skipped while waiting for a reply.
	OnUnsolicited func(Message)
}

// Session is one connection to the server under one nickname. It owns the
// only client-side state: whether we are connected and which room we are in.
// A Session is not safe for concurrent use.
type Session struct {
	t         Transport
	nick      string
	lobby     string
	prefix    string
	noTopic   string
	connected bool
	room      int
	// joins counts JOIN replies still to come per lower-cased channel.
	joins     map[string]int

	log           zerolog.Logger
	onUnsolicited func(Message)
}

// Connect opens the transport and registers under params.Nickname, joining
// the lobby. The whole registration is sent in a single write.
func Connect(t Transport, params Params) (*Session, error) {
	if n := utf8.RuneCountInString(params.Nickname); n < 1 || n > MaxNickLen {
		return nil, fmt.Errorf("%w: nickname must be 1 to %d characters, got %d", ErrParameterOutOfRange, MaxNickLen, n)
	}
	if strings.ContainsAny(params.Nickname, " \r\n\x00") {
		return nil, fmt.Errorf("%w: nickname %q contains forbidden characters", ErrParameterOutOfRange, params.Nickname)
	}

	s := &Session{
		t:             t,
		nick:          params.Nickname,
		lobby:         orDefault(params.LobbyChannel, DefaultLobbyChannel),
		prefix:        orDefault(params.RoomPrefix, DefaultRoomPrefix),
		noTopic:       orDefault(params.NoTopicMarker, DefaultNoTopicMarker),
		room:          NoRoom,
		joins:         map[string]int{},
		log:           zerolog.Nop(),
		onUnsolicited: params.OnUnsolicited,
	}
	if params.Logger != nil {
		s.log = params.Logger.With().Str("nick", params.Nickname).Logger()
	}

	if err := t.Connect(params.Server, params.Port); err != nil {
		return nil, connectionError(fmt.Sprintf("connect to %s:%d", params.Server, params.Port), err)
	}
	s.connected = true

	if err := s.send(string(handshake(s.nick, s.lobby))); err != nil {
		_ = t.Disconnect()
		s.connected = false
		return nil, err
	}
	s.expectJoin(s.lobby)

	s.log.Info().Str("server", params.Server).Int("port", params.Port).Str("lobby", s.lobby).Msg("connected")
	return s, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// Disconnect sends QUIT and closes the transport. If QUIT cannot be sent the
// transport is left open.
func (s *Session) Disconnect() error {
	if err := s.send(quitLine()); err != nil {
		return err
	}
	s.connected = false
	s.room = NoRoom
	clear(s.joins)

	if err := s.t.Disconnect(); err != nil {
		return connectionError("disconnect", err)
	}
	s.log.Info().Msg("disconnected")
	return nil
}

// Nick returns the nickname the session registered with.
func (s *Session) Nick() string {
	return s.nick
}

// Connected reports whether Disconnect has not been called yet.
func (s *Session) Connected() bool {
	return s.connected
}

// Lobby returns the lobby channel name.
func (s *Session) Lobby() string {
	return s.lobby
}

// SendLobbyMessage broadcasts text to the lobby channel.
func (s *Session) SendLobbyMessage(text string) error {
	if len(text) > MaxMessageLen {
		return fmt.Errorf("%w: %d bytes, limit is %d", ErrMessageTooLong, len(text), MaxMessageLen)
	}
	if strings.ContainsAny(text, "\r\n\x00") {
		return fmt.Errorf("%w: message contains line breaks", ErrParameterOutOfRange)
	}
	return s.send(privmsgLine(s.lobby, text))
}

func (s *Session) send(line string) error {
	if !s.connected {
		return ErrNotConnected
	}
	s.log.Debug().Str("line", strings.TrimRight(line, crlf)).Msg("send")
	if err := s.t.Send([]byte(line)); err != nil {
		return connectionError("send", err)
	}
	return nil
}
